package timeledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// EditTime updates the mutable fields of an unbilled entry. Entries already
// attached to an invoice are immutable and fail with ErrConflict.
func (s *Service) EditTime(ctx context.Context, input EditTimeInput) (*domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.entries.GetByID(ctx, accountID, input.EntryID)
	if err != nil {
		return nil, fmt.Errorf("load time entry: %w", err)
	}
	if entry.IsBilled() {
		return nil, fmt.Errorf("time entry %s is billed: %w", entry.ID, domain.ErrConflict)
	}

	if input.Date != nil {
		entry.Date = *input.Date
	}
	if input.Duration != nil {
		entry.Duration = *input.Duration
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.Billable != nil {
		entry.Billable = *input.Billable
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("update time entry: %w", err)
	}

	s.log.InfoContext(ctx, "time entry updated",
		slog.String("entry_id", entry.ID.String()))

	return entry, nil
}

// DeleteTime removes an unbilled entry. Billed entries fail with ErrConflict.
func (s *Service) DeleteTime(ctx context.Context, entryID uuid.UUID) error {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if entryID == uuid.Nil {
		return domain.NewValidationError("entry_id", "required")
	}

	entry, err := s.entries.GetByID(ctx, accountID, entryID)
	if err != nil {
		return fmt.Errorf("load time entry: %w", err)
	}
	if entry.IsBilled() {
		return fmt.Errorf("time entry %s is billed: %w", entry.ID, domain.ErrConflict)
	}

	if err := s.entries.Delete(ctx, accountID, entryID); err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}

	s.log.InfoContext(ctx, "time entry deleted",
		slog.String("entry_id", entryID.String()))

	return nil
}
