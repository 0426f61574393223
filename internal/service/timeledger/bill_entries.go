package timeledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// BillEntries turns the project's unbilled billable time into a pending
// invoice and links the entries to it, atomically. Each entry becomes one
// line item priced at the project's hourly rate; once stamped, entries are
// immutable.
//
// When input.EntryIDs is non-empty, only those entries are billed; an ID
// that is unknown, already billed, or not billable fails the whole call.
func (s *Service) BillEntries(ctx context.Context, input BillEntriesInput) (*domain.Invoice, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
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

	candidates, err := s.entries.ListUnbilledBillable(ctx, accountID, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("select billable entries: %w", err)
	}

	selected := candidates
	if len(input.EntryIDs) > 0 {
		selected, err = filterEntries(candidates, input.EntryIDs)
		if err != nil {
			return nil, err
		}
	}
	if len(selected) == 0 {
		return nil, domain.NewValidationError("entries", "no unbilled billable time to invoice")
	}
	if len(selected) > s.cfg.MaxItemsPerInvoice {
		return nil, domain.NewValidationError("entries", "too many entries for one invoice")
	}

	items := make([]domain.InvoiceItem, len(selected))
	entryIDs := make([]uuid.UUID, len(selected))
	for i, e := range selected {
		desc := e.Description
		if desc == "" {
			desc = "Tracked time, " + e.Date.UTC().Format("2006-01-02")
		}
		items[i] = domain.InvoiceItem{
			Description: desc,
			Hours:       e.Hours(),
			Rate:        project.Rate,
		}
		entryIDs[i] = e.ID
	}

	inv := &domain.Invoice{
		ID:        uuid.New(),
		AccountID: accountID,
		ProjectID: project.ID,
		ClientID:  project.ClientID,
		Amount:    domain.ComputeTotal(items, input.Taxes),
		Status:    domain.InvoiceStatusPending,
		DueDate:   input.DueDate,
		IssueDate: now,
		Items:     items,
		Taxes:     input.Taxes,
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

			stamped, stampErr := s.entries.StampInvoice(txCtx, accountID, inv.ID, entryIDs)
			if stampErr != nil {
				return fmt.Errorf("link entries: %w", stampErr)
			}
			// A racing edit or billing run took some entries between the
			// snapshot read and the stamp; roll back and retry.
			if stamped != int64(len(entryIDs)) {
				return fmt.Errorf("entries changed underneath billing: %w", domain.ErrConflict)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "time billed onto invoice",
		slog.String("invoice_id", inv.ID.String()),
		slog.String("reference", inv.Reference),
		slog.Int("entries", len(entryIDs)),
		slog.Float64("amount", inv.Amount))

	return inv, nil
}

// filterEntries resolves the requested IDs against the unbilled-billable
// candidate pool, preserving candidate (chronological) order.
func filterEntries(candidates []domain.TimeEntry, ids []uuid.UUID) ([]domain.TimeEntry, error) {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var selected []domain.TimeEntry
	for _, e := range candidates {
		if wanted[e.ID] {
			selected = append(selected, e)
			delete(wanted, e.ID)
		}
	}
	if len(wanted) > 0 {
		return nil, domain.NewValidationError("entry_ids", "contains entries that are unknown, billed, or not billable")
	}
	return selected, nil
}
