package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a customer or prospect owned by one account.
type Client struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Name            string
	Email           string
	Phone           *string
	Address         *string
	Company         *string
	Website         *string
	Notes           *string
	Tags            []string
	Source          *string
	Status          ClientStatus
	LastContactDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
