package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/freeops-backend/internal/adapter/postgres"
	"github.com/avelichko/freeops-backend/internal/domain"
)

// Repo runs the read-only aggregate queries behind reporting. Everything is
// recomputed from current rows on each call; nothing is materialized.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// MonthlyRevenue buckets the account's invoices by the UTC calendar month of
// their due date. Only months holding at least one invoice produce a bucket;
// buckets come back ascending.
func (r *Repo) MonthlyRevenue(ctx context.Context, accountID uuid.UUID) ([]domain.MonthBucket, error) {
	const sql = `
		SELECT date_trunc('month', due_date AT TIME ZONE 'UTC') AS month,
		       COALESCE(SUM(amount), 0) AS total,
		       COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0) AS paid
		FROM invoices
		WHERE account_id = $1
		GROUP BY 1
		ORDER BY 1 ASC`

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, accountID)
	if err != nil {
		return nil, postgres.MapError(err, "invoice", accountID)
	}
	defer rows.Close()

	var buckets []domain.MonthBucket
	for rows.Next() {
		var b domain.MonthBucket
		if err := rows.Scan(&b.Month, &b.Total, &b.Paid); err != nil {
			return nil, postgres.MapError(err, "invoice", accountID)
		}
		b.Month = time.Date(b.Month.Year(), b.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "invoice", accountID)
	}
	return buckets, nil
}

// ProjectStatusCounts groups the account's projects by status.
func (r *Repo) ProjectStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	const sql = `
		SELECT status, COUNT(*)
		FROM projects
		WHERE account_id = $1
		GROUP BY status`
	return r.distribution(ctx, accountID, sql, "project")
}

// InvoiceStatusCounts groups the account's invoices by stored status.
func (r *Repo) InvoiceStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	const sql = `
		SELECT status, COUNT(*)
		FROM invoices
		WHERE account_id = $1
		GROUP BY status`
	return r.distribution(ctx, accountID, sql, "invoice")
}

// OpenTaskPriorityCounts groups the account's non-completed tasks by priority.
func (r *Repo) OpenTaskPriorityCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	const sql = `
		SELECT priority, COUNT(*)
		FROM tasks
		WHERE account_id = $1 AND status <> 'completed'
		GROUP BY priority`
	return r.distribution(ctx, accountID, sql, "task")
}

func (r *Repo) distribution(ctx context.Context, accountID uuid.UUID, sql, entity string) (domain.Distribution, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, accountID)
	if err != nil {
		return nil, postgres.MapError(err, entity, accountID)
	}
	defer rows.Close()

	dist := domain.Distribution{}
	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, postgres.MapError(err, entity, accountID)
		}
		dist[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, entity, accountID)
	}
	return dist, nil
}

// BillableMinutes sums the duration of billable entries dated in [from, to).
func (r *Repo) BillableMinutes(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error) {
	const sql = `
		SELECT COALESCE(SUM(duration), 0)
		FROM time_entries
		WHERE account_id = $1 AND billable AND entry_date >= $2 AND entry_date < $3`

	q := postgres.QuerierFromCtx(ctx, r.pool)
	var minutes int
	if err := q.QueryRow(ctx, sql, accountID, from, to).Scan(&minutes); err != nil {
		return 0, postgres.MapError(err, "time_entry", accountID)
	}
	return minutes, nil
}

// InvoiceRollup reads the invoice slice of the top-line snapshot in one
// query so its fields cannot disagree with each other.
func (r *Repo) InvoiceRollup(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.InvoiceRollup, error) {
	const sql = `
		SELECT COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'overdue'
		                           OR (status = 'pending' AND due_date < $2))
		FROM invoices
		WHERE account_id = $1`

	q := postgres.QuerierFromCtx(ctx, r.pool)
	var s domain.InvoiceRollup
	err := q.QueryRow(ctx, sql, accountID, now).
		Scan(&s.PaidRevenue, &s.PendingRevenue, &s.PendingCount, &s.OverdueCount)
	if err != nil {
		return domain.InvoiceRollup{}, postgres.MapError(err, "invoice", accountID)
	}
	return s, nil
}

// CountProjectsByStatus counts the account's projects in one status.
func (r *Repo) CountProjectsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) (int, error) {
	const sql = `SELECT COUNT(*) FROM projects WHERE account_id = $1 AND status = $2`
	return r.count(ctx, "project", sql, accountID, status.String())
}

// CountClientsByStatus counts the account's clients in one status.
func (r *Repo) CountClientsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) (int, error) {
	const sql = `SELECT COUNT(*) FROM clients WHERE account_id = $1 AND status = $2`
	return r.count(ctx, "client", sql, accountID, status.String())
}

// CountUrgentOpenTasks counts non-completed tasks at urgent priority.
func (r *Repo) CountUrgentOpenTasks(ctx context.Context, accountID uuid.UUID) (int, error) {
	const sql = `
		SELECT COUNT(*)
		FROM tasks
		WHERE account_id = $1 AND priority = 'urgent' AND status <> 'completed'`
	return r.count(ctx, "task", sql, accountID)
}

func (r *Repo) count(ctx context.Context, entity, sql string, args ...any) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	var n int
	if err := q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, entity, uuid.Nil)
	}
	return n, nil
}
