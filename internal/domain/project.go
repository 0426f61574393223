package domain

import (
	"time"

	"github.com/google/uuid"
)

// Milestone is an embedded project checkpoint. Ordered, not unique.
type Milestone struct {
	Title       string  `json:"title"`
	DueDate     int64   `json:"dueDate"`
	Completed   bool    `json:"completed"`
	Description *string `json:"description,omitempty"`
}

// TeamMember is an embedded project collaborator. Ordered, not unique.
type TeamMember struct {
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Email *string `json:"email,omitempty"`
}

// Project represents a billable engagement for a client.
// Invariant: ClientID references a client of the same account.
type Project struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	ClientID    uuid.UUID
	Name        string
	Description string
	Rate        float64
	Status      ProjectStatus
	StartDate   time.Time
	EndDate     *time.Time
	Tags        []string
	Milestones  []Milestone
	Team        []TeamMember
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
