package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// TransitionStatus moves an invoice through the status state machine.
// Allowed moves: pending -> paid | overdue | cancelled, overdue -> paid |
// cancelled. Everything else fails with a TransitionError. Entering paid
// stamps paidDate; no other transition touches it.
//
// The transition runs under a row lock so two racing moves on the same
// invoice serialize; a lost race retries a bounded number of times.
func (s *Service) TransitionStatus(ctx context.Context, input TransitionInput) (*domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Invoice
	err := s.retryConflict(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			inv, getErr := s.invoices.GetByIDForUpdate(txCtx, accountID, input.InvoiceID)
			if getErr != nil {
				return fmt.Errorf("load invoice: %w", getErr)
			}

			if !domain.CanTransition(inv.Status, input.Status) {
				return &domain.TransitionError{From: inv.Status, To: input.Status}
			}

			paidDate := inv.PaidDate
			if input.Status == domain.InvoiceStatusPaid {
				now := s.now()
				paidDate = &now
			}

			if updErr := s.invoices.UpdateStatus(txCtx, accountID, inv.ID, input.Status, paidDate); updErr != nil {
				return fmt.Errorf("update status: %w", updErr)
			}

			inv.Status = input.Status
			inv.PaidDate = paidDate
			updated = inv
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "invoice status changed",
		slog.String("invoice_id", updated.ID.String()),
		slog.String("status", updated.Status.String()))

	return updated, nil
}
