package invoice

import (
	"context"
	"encoding/json"
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

const table = "invoices"

var columns = []string{
	"id", "account_id", "project_id", "client_id", "reference", "amount",
	"status", "due_date", "issue_date", "paid_date", "items", "taxes",
	"notes", "terms", "created_at", "updated_at",
}

// Repo persists invoices. All reads and writes are account-scoped; a row
// belonging to another account behaves as if it did not exist.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a new invoice. Items and taxes are stored as jsonb.
func (r *Repo) Create(ctx context.Context, inv *domain.Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("marshal invoice items: %w", err)
	}
	var taxes []byte
	if inv.Taxes != nil {
		taxes, err = json.Marshal(inv.Taxes)
		if err != nil {
			return fmt.Errorf("marshal invoice taxes: %w", err)
		}
	}

	sql, args, err := psql.Insert(table).
		Columns("id", "account_id", "project_id", "client_id", "reference",
			"amount", "status", "due_date", "issue_date", "paid_date",
			"items", "taxes", "notes", "terms").
		Values(inv.ID, inv.AccountID, inv.ProjectID, inv.ClientID, inv.Reference,
			inv.Amount, inv.Status.String(), inv.DueDate, inv.IssueDate, inv.PaidDate,
			items, taxes, inv.Notes, inv.Terms).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, sql, args...).Scan(&inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return postgres.MapError(err, "invoice", inv.ID)
	}
	return nil
}

// GetByID returns the invoice with the given ID within the account.
func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Invoice, error) {
	return r.getOne(ctx, id, squirrel.Eq{"account_id": accountID, "id": id}, "")
}

// GetByIDForUpdate locks the invoice row for the duration of the enclosing
// transaction. Used by status transitions to serialize concurrent moves.
func (r *Repo) GetByIDForUpdate(ctx context.Context, accountID, id uuid.UUID) (*domain.Invoice, error) {
	return r.getOne(ctx, id, squirrel.Eq{"account_id": accountID, "id": id}, "FOR UPDATE")
}

func (r *Repo) getOne(ctx context.Context, id uuid.UUID, where squirrel.Eq, suffix string) (*domain.Invoice, error) {
	qb := psql.Select(columns...).From(table).Where(where)
	if suffix != "" {
		qb = qb.Suffix(suffix)
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	inv, err := scanInvoice(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "invoice", id)
	}
	return inv, nil
}

// UpdateStatus moves the invoice to a new status and stamps paid_date.
// paidDate must be nil for every status except paid.
func (r *Repo) UpdateStatus(ctx context.Context, accountID, id uuid.UUID, status domain.InvoiceStatus, paidDate *time.Time) error {
	sql, args, err := psql.Update(table).
		Set("status", status.String()).
		Set("paid_date", paidDate).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "invoice", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns all invoices of the account, newest issue date first.
func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID})
}

// ListByStatus returns the account's invoices carrying the given stored status.
func (r *Repo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "status": status.String()})
}

// ListByClient returns the account's invoices issued to one client.
func (r *Repo) ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "client_id": clientID})
}

// ListByProject returns the account's invoices issued for one project.
func (r *Repo) ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "project_id": projectID})
}

// ListByDueDateRange returns invoices due within [from, to).
func (r *Repo) ListByDueDateRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.And{
		squirrel.Eq{"account_id": accountID},
		squirrel.GtOrEq{"due_date": from},
		squirrel.Lt{"due_date": to},
	})
}

// ListOverdue returns invoices that are overdue at the given instant: stored
// status overdue, plus pending invoices whose due date has passed.
func (r *Repo) ListOverdue(ctx context.Context, accountID uuid.UUID, now time.Time) ([]domain.Invoice, error) {
	return r.list(ctx, accountID, squirrel.And{
		squirrel.Eq{"account_id": accountID},
		squirrel.Or{
			squirrel.Eq{"status": domain.InvoiceStatusOverdue.String()},
			squirrel.And{
				squirrel.Eq{"status": domain.InvoiceStatusPending.String()},
				squirrel.Lt{"due_date": now},
			},
		},
	})
}

func (r *Repo) list(ctx context.Context, accountID uuid.UUID, where squirrel.Sqlizer) ([]domain.Invoice, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("issue_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "invoice", accountID)
	}
	defer rows.Close()

	var result []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, postgres.MapError(err, "invoice", accountID)
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "invoice", accountID)
	}
	return result, nil
}

// NextReferenceSeq bumps and returns the per-account sequence for the given
// "YYMM" period. Must run inside the same transaction as the invoice insert
// so an aborted create does not burn a number visibly out of order.
func (r *Repo) NextReferenceSeq(ctx context.Context, accountID uuid.UUID, period string) (int, error) {
	const sql = `
		INSERT INTO invoice_counters (account_id, period, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (account_id, period)
		DO UPDATE SET last_seq = invoice_counters.last_seq + 1
		RETURNING last_seq`

	q := postgres.QuerierFromCtx(ctx, r.pool)
	var seq int
	if err := q.QueryRow(ctx, sql, accountID, period).Scan(&seq); err != nil {
		return 0, postgres.MapError(err, "invoice_counter", accountID)
	}
	return seq, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv    domain.Invoice
		status string
		items  []byte
		taxes  []byte
	)
	err := row.Scan(
		&inv.ID, &inv.AccountID, &inv.ProjectID, &inv.ClientID, &inv.Reference,
		&inv.Amount, &status, &inv.DueDate, &inv.IssueDate, &inv.PaidDate,
		&items, &taxes, &inv.Notes, &inv.Terms, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatus(status)
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("unmarshal invoice items: %w", err)
	}
	if len(taxes) > 0 {
		if err := json.Unmarshal(taxes, &inv.Taxes); err != nil {
			return nil, fmt.Errorf("unmarshal invoice taxes: %w", err)
		}
	}
	return &inv, nil
}
