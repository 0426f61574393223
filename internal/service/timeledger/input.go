package timeledger

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
)

// RecordTimeInput holds the parameters for recording a work session.
type RecordTimeInput struct {
	ProjectID   uuid.UUID
	TaskID      *uuid.UUID
	Date        time.Time
	Duration    int // minutes
	Description string
	Billable    bool
}

// Validate checks all fields and collects all errors.
func (i *RecordTimeInput) Validate() error {
	var errs []domain.FieldError

	if i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "required"})
	}
	if i.TaskID != nil && *i.TaskID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "task_id", Message: "must be a valid id when set"})
	}
	if i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "required"})
	}
	if i.Duration <= 0 {
		errs = append(errs, domain.FieldError{Field: "duration", Message: "must be positive minutes"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// EditTimeInput holds the parameters for editing an unbilled entry.
// Nil fields are left unchanged.
type EditTimeInput struct {
	EntryID     uuid.UUID
	Date        *time.Time
	Duration    *int
	Description *string
	Billable    *bool
}

// Validate checks all fields and collects all errors.
func (i *EditTimeInput) Validate() error {
	var errs []domain.FieldError

	if i.EntryID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "entry_id", Message: "required"})
	}
	if i.Date != nil && i.Date.IsZero() {
		errs = append(errs, domain.FieldError{Field: "date", Message: "must be a valid timestamp when set"})
	}
	if i.Duration != nil && *i.Duration <= 0 {
		errs = append(errs, domain.FieldError{Field: "duration", Message: "must be positive minutes"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// BillEntriesInput holds the parameters for billing unbilled billable time
// onto a new invoice.
type BillEntriesInput struct {
	ProjectID uuid.UUID
	// EntryIDs narrows the billing run to specific entries. Empty means all
	// unbilled billable entries of the project.
	EntryIDs []uuid.UUID
	DueDate  time.Time
	Taxes    []domain.Tax
	Notes    *string
	Terms    *string
}

// Validate checks all fields and collects all errors.
func (i *BillEntriesInput) Validate() error {
	var errs []domain.FieldError

	if i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "required"})
	}
	if i.DueDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "due_date", Message: "required"})
	}
	for idx, id := range i.EntryIDs {
		if id == uuid.Nil {
			errs = append(errs, domain.FieldError{
				Field:   "entry_ids[" + strconv.Itoa(idx) + "]",
				Message: "must be a valid id",
			})
		}
	}
	for idx, tax := range i.Taxes {
		if tax.Name == "" {
			errs = append(errs, domain.FieldError{
				Field:   "taxes[" + strconv.Itoa(idx) + "].name",
				Message: "required",
			})
		}
		if tax.Rate < 0 {
			errs = append(errs, domain.FieldError{
				Field:   "taxes[" + strconv.Itoa(idx) + "].rate",
				Message: "must be >= 0",
			})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
