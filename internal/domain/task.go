package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task represents a unit of work, optionally attached to a project.
type Task struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	ProjectID      *uuid.UUID
	Title          string
	Description    string
	Status         TaskStatus
	Priority       TaskPriority
	AssignedTo     *string
	DueDate        *time.Time
	CompletedDate  *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen reports whether the task still counts toward workload
// distributions (everything except completed).
func (t *Task) IsOpen() bool {
	return t.Status != TaskStatusCompleted
}
