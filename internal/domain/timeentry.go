package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry represents one tracked work session on a project.
// Durations are stored in whole minutes.
//
// An entry with a non-nil InvoiceID is billed: it is immutable and excluded
// from unbilled-billable selections.
type TimeEntry struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	ProjectID   uuid.UUID
	TaskID      *uuid.UUID
	Date        time.Time
	Duration    int
	Description string
	Billable    bool
	InvoiceID   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsBilled reports whether the entry has been attached to an invoice.
func (e *TimeEntry) IsBilled() bool {
	return e.InvoiceID != nil
}

// Hours converts the tracked duration to fractional hours.
func (e *TimeEntry) Hours() float64 {
	return float64(e.Duration) / 60.0
}
