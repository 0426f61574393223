package billing

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
)

// ItemInput is one invoice line as supplied by the caller. The line amount
// and the invoice total are always recomputed server-side.
type ItemInput struct {
	Description string
	Hours       float64
	Rate        float64
}

// TaxInput is one named tax rate as supplied by the caller.
type TaxInput struct {
	Name string
	Rate float64
}

// CreateInvoiceInput holds the parameters for creating an invoice.
type CreateInvoiceInput struct {
	ProjectID uuid.UUID
	ClientID  uuid.UUID
	DueDate   time.Time
	Items     []ItemInput
	Taxes     []TaxInput
	Notes     *string
	Terms     *string
}

// Validate checks all fields and collects all errors. Due-date policy
// (no invoices due in the past) is checked against the service clock in
// CreateInvoice, not here.
func (i *CreateInvoiceInput) Validate(maxItems int) error {
	var errs []domain.FieldError

	if i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "required"})
	}
	if i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "required"})
	}
	if i.DueDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "due_date", Message: "required"})
	}

	if len(i.Items) == 0 {
		errs = append(errs, domain.FieldError{Field: "items", Message: "required (at least 1)"})
	} else if len(i.Items) > maxItems {
		errs = append(errs, domain.FieldError{Field: "items", Message: "too many (max " + strconv.Itoa(maxItems) + ")"})
	}
	for idx, item := range i.Items {
		if item.Description == "" {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("items", idx, "description"),
				Message: "required",
			})
		}
		if item.Hours < 0 {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("items", idx, "hours"),
				Message: "must be >= 0",
			})
		}
		if item.Rate < 0 {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("items", idx, "rate"),
				Message: "must be >= 0",
			})
		}
	}

	for idx, tax := range i.Taxes {
		if tax.Name == "" {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("taxes", idx, "name"),
				Message: "required",
			})
		}
		if tax.Rate < 0 {
			errs = append(errs, domain.FieldError{
				Field:   fieldIdx("taxes", idx, "rate"),
				Message: "must be >= 0",
			})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// TransitionInput holds the parameters for a status transition.
type TransitionInput struct {
	InvoiceID uuid.UUID
	Status    domain.InvoiceStatus
}

// Validate checks all fields and collects all errors.
func (i *TransitionInput) Validate() error {
	var errs []domain.FieldError

	if i.InvoiceID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "invoice_id", Message: "required"})
	}
	if !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// fieldIdx formats a nested field path like "items[0].rate".
func fieldIdx(parent string, idx int, field string) string {
	return parent + "[" + strconv.Itoa(idx) + "]." + field
}
