package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// GetInvoice returns one invoice of the caller's account.
func (s *Service) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if invoiceID == uuid.Nil {
		return nil, domain.NewValidationError("invoice_id", "required")
	}

	inv, err := s.invoices.GetByID(ctx, accountID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListInvoices returns all invoices of the caller's account.
func (s *Service) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.invoices.List(ctx, accountID)
}

// ListByStatus returns the account's invoices carrying one stored status.
func (s *Service) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "invalid value")
	}
	return s.invoices.ListByStatus(ctx, accountID, status)
}

// ListByClient returns the account's invoices issued to one client.
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "required")
	}
	return s.invoices.ListByClient(ctx, accountID, clientID)
}

// ListByProject returns the account's invoices issued for one project.
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if projectID == uuid.Nil {
		return nil, domain.NewValidationError("project_id", "required")
	}
	return s.invoices.ListByProject(ctx, accountID, projectID)
}

// ListByDueDateRange returns invoices due within [from, to).
func (s *Service) ListByDueDateRange(ctx context.Context, from, to time.Time) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !to.After(from) {
		return nil, domain.NewValidationError("to", "must be after from")
	}
	return s.invoices.ListByDueDateRange(ctx, accountID, from, to)
}

// ListOverdue returns the invoices overdue at the service clock's current
// instant: stored overdue plus pending invoices whose due date has passed.
func (s *Service) ListOverdue(ctx context.Context) ([]domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.invoices.ListOverdue(ctx, accountID, s.now())
}
