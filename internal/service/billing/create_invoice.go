package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// CreateInvoice creates a pending invoice for the caller's account. The
// total is always recomputed from items and taxes; a caller-supplied amount
// does not exist in this API by design of the input type. The reference is
// drawn from the per-account monthly counter inside the same transaction as
// the insert.
//
// Due-date policy: invoices due before the start of the issue day (UTC) are
// rejected rather than created already-overdue.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(s.cfg.MaxItemsPerInvoice); err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if input.DueDate.Before(dayStart) {
		return nil, domain.NewValidationError("due_date", "must not be in the past")
	}

	project, err := s.projects.GetByID(ctx, accountID, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}
	if project.ClientID != input.ClientID {
		return nil, domain.NewValidationError("client_id", "does not match the project's client")
	}

	items := make([]domain.InvoiceItem, len(input.Items))
	for i, item := range input.Items {
		items[i] = domain.InvoiceItem{
			Description: item.Description,
			Hours:       item.Hours,
			Rate:        item.Rate,
		}
	}
	var taxes []domain.Tax
	for _, tax := range input.Taxes {
		taxes = append(taxes, domain.Tax{Name: tax.Name, Rate: tax.Rate})
	}

	inv := &domain.Invoice{
		ID:        uuid.New(),
		AccountID: accountID,
		ProjectID: input.ProjectID,
		ClientID:  input.ClientID,
		Amount:    domain.ComputeTotal(items, taxes),
		Status:    domain.InvoiceStatusPending,
		DueDate:   input.DueDate,
		IssueDate: now,
		Items:     items,
		Taxes:     taxes,
		Notes:     input.Notes,
		Terms:     input.Terms,
	}

	err = s.retryConflict(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			seq, seqErr := s.invoices.NextReferenceSeq(txCtx, accountID, domain.ReferencePeriod(now))
			if seqErr != nil {
				return fmt.Errorf("next reference seq: %w", seqErr)
			}
			inv.Reference = domain.FormatReference(now, seq)

			if createErr := s.invoices.Create(txCtx, inv); createErr != nil {
				return fmt.Errorf("create invoice: %w", createErr)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "invoice created",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("reference", inv.Reference),
		slog.Float64("amount", inv.Amount))

	return inv, nil
}
