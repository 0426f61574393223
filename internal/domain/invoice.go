package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvoiceItem is one billed line: hours of work at an hourly rate.
type InvoiceItem struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
}

// Amount returns the line total.
func (i InvoiceItem) Amount() float64 {
	return i.Hours * i.Rate
}

// Tax is a named percentage applied to the pre-tax subtotal.
// Rate is a fraction: 0.21 means 21%.
type Tax struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// Invoice represents a bill issued to a client for project work.
// Items and taxes are immutable after creation; only the status moves.
type Invoice struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	ProjectID uuid.UUID
	ClientID  uuid.UUID
	Reference string
	Amount    float64
	Status    InvoiceStatus
	DueDate   time.Time
	IssueDate time.Time
	PaidDate  *time.Time
	Items     []InvoiceItem
	Taxes     []Tax
	Notes     *string
	Terms     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal returns the pre-tax sum over all line items.
func (inv *Invoice) Subtotal() float64 {
	var sum float64
	for _, item := range inv.Items {
		sum += item.Amount()
	}
	return sum
}

// ComputeTotal returns the invoice total: the pre-tax subtotal plus every
// tax applied to that same subtotal. Taxes never compound.
func ComputeTotal(items []InvoiceItem, taxes []Tax) float64 {
	var sub float64
	for _, item := range items {
		sub += item.Amount()
	}
	total := sub
	for _, tax := range taxes {
		total += sub * tax.Rate
	}
	return total
}

// IsOverdue reports whether the invoice is pending payment past its due
// date at the given instant. Stored status overdue also qualifies.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceStatusOverdue {
		return true
	}
	return inv.Status == InvoiceStatusPending && inv.DueDate.Before(now)
}

// invoiceTransitions is the full table of allowed status moves.
// Invoices are created as pending; paid and cancelled are terminal;
// draft is never a transition target.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

// CanTransition reports whether from -> to is an allowed status move.
func CanTransition(from, to InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// FormatReference renders the human-readable invoice reference for the
// given issue month and per-account monthly sequence number, e.g.
// "INV-2509-0042" for the 42nd invoice issued in September 2025.
func FormatReference(issued time.Time, seq int) string {
	return fmt.Sprintf("INV-%02d%02d-%04d", issued.Year()%100, int(issued.Month()), seq)
}

// ReferencePeriod returns the "YYMM" counter bucket for an issue date.
func ReferencePeriod(issued time.Time) string {
	return fmt.Sprintf("%02d%02d", issued.Year()%100, int(issued.Month()))
}
