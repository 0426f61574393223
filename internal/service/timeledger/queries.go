package timeledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// GetEntry returns one time entry of the caller's account.
func (s *Service) GetEntry(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if entryID == uuid.Nil {
		return nil, domain.NewValidationError("entry_id", "required")
	}

	entry, err := s.entries.GetByID(ctx, accountID, entryID)
	if err != nil {
		return nil, fmt.Errorf("get time entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns all time entries of the caller's account.
func (s *Service) ListEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.entries.List(ctx, accountID)
}

// ListByProject returns the account's entries on one project.
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if projectID == uuid.Nil {
		return nil, domain.NewValidationError("project_id", "required")
	}
	return s.entries.ListByProject(ctx, accountID, projectID)
}

// ListByDateRange returns entries dated within [from, to).
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "must be after from")
	}
	return s.entries.ListByDateRange(ctx, accountID, from, to)
}

// SelectBillable returns billable entries not yet attached to an invoice.
// With a project ID the pool is scoped to that project; with uuid.Nil it
// spans the whole account. This is the candidate pool BillEntries draws from.
func (s *Service) SelectBillable(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.entries.ListUnbilledBillable(ctx, accountID, projectID)
}
