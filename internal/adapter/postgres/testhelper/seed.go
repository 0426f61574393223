package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/freeops-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedClient creates an active client for the given account.
func SeedClient(t *testing.T, pool *pgxpool.Pool, accountID uuid.UUID) domain.Client {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	client := domain.Client{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      "Test Client " + suffix,
		Email:     "client-" + suffix + "@example.com",
		Status:    domain.ClientStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO clients (id, account_id, name, email, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		client.ID, client.AccountID, client.Name, client.Email, client.Status.String(),
		client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedClient insert: %v", err)
	}

	return client
}

// SeedProject creates an active project under the given client.
func SeedProject(t *testing.T, pool *pgxpool.Pool, accountID, clientID uuid.UUID, rate float64) domain.Project {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	project := domain.Project{
		ID:        uuid.New(),
		AccountID: accountID,
		ClientID:  clientID,
		Name:      "Test Project " + suffix,
		Rate:      rate,
		Status:    domain.ProjectStatusActive,
		StartDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO projects (id, account_id, client_id, name, rate, status, start_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		project.ID, project.AccountID, project.ClientID, project.Name, project.Rate,
		project.Status.String(), project.StartDate, project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProject insert: %v", err)
	}

	return project
}

// SeedTimeEntry creates a billable, unbilled time entry on the project.
func SeedTimeEntry(t *testing.T, pool *pgxpool.Pool, accountID, projectID uuid.UUID, date time.Time, minutes int) domain.TimeEntry {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := domain.TimeEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		ProjectID:   projectID,
		Date:        date,
		Duration:    minutes,
		Description: "work session " + uniqueSuffix(),
		Billable:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO time_entries (id, account_id, project_id, entry_date, duration, description, billable, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.AccountID, entry.ProjectID, entry.Date, entry.Duration,
		entry.Description, entry.Billable, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTimeEntry insert: %v", err)
	}

	return entry
}

// SeedInvoice creates a pending invoice with one line item at the given
// hours and rate; amount is computed the same way the billing service does.
func SeedInvoice(t *testing.T, pool *pgxpool.Pool, accountID, projectID, clientID uuid.UUID, hours, rate float64, due time.Time) domain.Invoice {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	items := []domain.InvoiceItem{{Description: "work " + suffix, Hours: hours, Rate: rate}}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("testhelper: SeedInvoice marshal items: %v", err)
	}
	inv := domain.Invoice{
		ID:        uuid.New(),
		AccountID: accountID,
		ProjectID: projectID,
		ClientID:  clientID,
		Reference: "INV-" + domain.ReferencePeriod(now) + "-" + suffix,
		Amount:    domain.ComputeTotal(items, nil),
		Status:    domain.InvoiceStatusPending,
		DueDate:   due,
		IssueDate: now,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO invoices (id, account_id, project_id, client_id, reference, amount, status, due_date, issue_date, items, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.AccountID, inv.ProjectID, inv.ClientID, inv.Reference, inv.Amount,
		inv.Status.String(), inv.DueDate, inv.IssueDate, itemsJSON,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInvoice insert: %v", err)
	}

	return inv
}
