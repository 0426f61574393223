package task

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/freeops-backend/internal/adapter/postgres"
	"github.com/avelichko/freeops-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const table = "tasks"

var columns = []string{
	"id", "account_id", "project_id", "title", "description", "status",
	"priority", "assigned_to", "due_date", "completed_date",
	"estimated_hours", "actual_hours", "tags", "created_at", "updated_at",
}

// Repo persists tasks. All queries are account-scoped.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, t *domain.Task) error {
	sql, args, err := psql.Insert(table).
		Columns("id", "account_id", "project_id", "title", "description",
			"status", "priority", "assigned_to", "due_date", "completed_date",
			"estimated_hours", "actual_hours", "tags").
		Values(t.ID, t.AccountID, t.ProjectID, t.Title, t.Description,
			t.Status.String(), t.Priority.String(), t.AssignedTo, t.DueDate,
			t.CompletedDate, t.EstimatedHours, t.ActualHours, t.Tags).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, sql, args...).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return postgres.MapError(err, "task", t.ID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Task, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	t, err := scanTask(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "task", id)
	}
	return t, nil
}

func (r *Repo) Update(ctx context.Context, t *domain.Task) error {
	sql, args, err := psql.Update(table).
		Set("project_id", t.ProjectID).
		Set("title", t.Title).
		Set("description", t.Description).
		Set("status", t.Status.String()).
		Set("priority", t.Priority.String()).
		Set("assigned_to", t.AssignedTo).
		Set("due_date", t.DueDate).
		Set("completed_date", t.CompletedDate).
		Set("estimated_hours", t.EstimatedHours).
		Set("actual_hours", t.ActualHours).
		Set("tags", t.Tags).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": t.AccountID, "id": t.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "task", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the task. Fails with ErrConflict while time entries still
// reference it.
func (r *Repo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	sql, args, err := psql.Delete(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "task", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Task, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID})
}

func (r *Repo) ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Task, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "project_id": projectID})
}

func (r *Repo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.TaskStatus) ([]domain.Task, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "status": status.String()})
}

// ListOpenByPriority returns non-completed tasks at one priority.
func (r *Repo) ListOpenByPriority(ctx context.Context, accountID uuid.UUID, priority domain.TaskPriority) ([]domain.Task, error) {
	return r.list(ctx, accountID, squirrel.And{
		squirrel.Eq{"account_id": accountID, "priority": priority.String()},
		squirrel.NotEq{"status": domain.TaskStatusCompleted.String()},
	})
}

func (r *Repo) list(ctx context.Context, accountID uuid.UUID, where squirrel.Sqlizer) ([]domain.Task, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "task", accountID)
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, postgres.MapError(err, "task", accountID)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "task", accountID)
	}
	return result, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
	)
	err := row.Scan(
		&t.ID, &t.AccountID, &t.ProjectID, &t.Title, &t.Description, &status,
		&priority, &t.AssignedTo, &t.DueDate, &t.CompletedDate,
		&t.EstimatedHours, &t.ActualHours, &t.Tags, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	return &t, nil
}
