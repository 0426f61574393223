package timeentry

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/freeops-backend/internal/adapter/postgres"
	"github.com/avelichko/freeops-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const table = "time_entries"

var columns = []string{
	"id", "account_id", "project_id", "task_id", "invoice_id", "entry_date",
	"duration", "description", "billable", "created_at", "updated_at",
}

// Repo persists time entries. All queries are account-scoped.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, e *domain.TimeEntry) error {
	sql, args, err := psql.Insert(table).
		Columns("id", "account_id", "project_id", "task_id", "entry_date",
			"duration", "description", "billable").
		Values(e.ID, e.AccountID, e.ProjectID, e.TaskID, e.Date,
			e.Duration, e.Description, e.Billable).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, sql, args...).Scan(&e.CreatedAt, &e.UpdatedAt); err != nil {
		return postgres.MapError(err, "time_entry", e.ID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.TimeEntry, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	e, err := scanEntry(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "time_entry", id)
	}
	return e, nil
}

// Update rewrites the mutable fields of an unbilled entry. The invoice_id
// guard makes billed entries immutable even under a racing BillEntries.
func (r *Repo) Update(ctx context.Context, e *domain.TimeEntry) error {
	sql, args, err := psql.Update(table).
		Set("project_id", e.ProjectID).
		Set("task_id", e.TaskID).
		Set("entry_date", e.Date).
		Set("duration", e.Duration).
		Set("description", e.Description).
		Set("billable", e.Billable).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": e.AccountID, "id": e.ID, "invoice_id": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "time_entry", e.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time_entry %s: %w", e.ID, domain.ErrConflict)
	}
	return nil
}

// Delete removes an unbilled entry. Billed entries stay put.
func (r *Repo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	sql, args, err := psql.Delete(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id, "invoice_id": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "time_entry", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time_entry %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// List returns all entries of the account, most recent work first.
func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]domain.TimeEntry, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID})
}

func (r *Repo) ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "project_id": projectID})
}

func (r *Repo) ListByTask(ctx context.Context, accountID, taskID uuid.UUID) ([]domain.TimeEntry, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "task_id": taskID})
}

// ListByDateRange returns entries dated within [from, to).
func (r *Repo) ListByDateRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.TimeEntry, error) {
	return r.list(ctx, accountID, squirrel.And{
		squirrel.Eq{"account_id": accountID},
		squirrel.GtOrEq{"entry_date": from},
		squirrel.Lt{"entry_date": to},
	})
}

// ListUnbilledBillable returns billable entries not yet attached to any
// invoice, oldest work first so invoices read chronologically. A zero
// projectID lifts the project filter and scans the whole account.
func (r *Repo) ListUnbilledBillable(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	where := squirrel.Eq{
		"account_id": accountID,
		"billable":   true,
		"invoice_id": nil,
	}
	if projectID != uuid.Nil {
		where["project_id"] = projectID
	}
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("entry_date ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	return r.query(ctx, accountID, sql, args)
}

// StampInvoice attaches the invoice to the given entries and returns how many
// rows were stamped. Entries already billed, not billable, or outside the
// account are left untouched, so the caller can detect a partial match.
func (r *Repo) StampInvoice(ctx context.Context, accountID, invoiceID uuid.UUID, entryIDs []uuid.UUID) (int64, error) {
	if len(entryIDs) == 0 {
		return 0, nil
	}

	sql, args, err := psql.Update(table).
		Set("invoice_id", invoiceID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{
			"account_id": accountID,
			"id":         entryIDs,
			"billable":   true,
			"invoice_id": nil,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "time_entry", invoiceID)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) list(ctx context.Context, accountID uuid.UUID, where squirrel.Sqlizer) ([]domain.TimeEntry, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("entry_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	return r.query(ctx, accountID, sql, args)
}

func (r *Repo) query(ctx context.Context, accountID uuid.UUID, sql string, args []any) ([]domain.TimeEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "time_entry", accountID)
	}
	defer rows.Close()

	var result []domain.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, postgres.MapError(err, "time_entry", accountID)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "time_entry", accountID)
	}
	return result, nil
}

func scanEntry(row pgx.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	err := row.Scan(
		&e.ID, &e.AccountID, &e.ProjectID, &e.TaskID, &e.InvoiceID, &e.Date,
		&e.Duration, &e.Description, &e.Billable, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
