package project

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelichko/freeops-backend/internal/adapter/postgres"
	"github.com/avelichko/freeops-backend/internal/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const table = "projects"

var columns = []string{
	"id", "account_id", "client_id", "name", "description", "rate", "status",
	"start_date", "end_date", "tags", "milestones", "team",
	"created_at", "updated_at",
}

// Repo persists projects. All queries are account-scoped.
// Milestones and team members are embedded jsonb documents.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, p *domain.Project) error {
	milestones, team, err := marshalEmbedded(p)
	if err != nil {
		return err
	}

	sql, args, err := psql.Insert(table).
		Columns("id", "account_id", "client_id", "name", "description", "rate",
			"status", "start_date", "end_date", "tags", "milestones", "team").
		Values(p.ID, p.AccountID, p.ClientID, p.Name, p.Description, p.Rate,
			p.Status.String(), p.StartDate, p.EndDate, p.Tags, milestones, team).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, sql, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return postgres.MapError(err, "project", p.ID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	p, err := scanProject(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "project", id)
	}
	return p, nil
}

func (r *Repo) Update(ctx context.Context, p *domain.Project) error {
	milestones, team, err := marshalEmbedded(p)
	if err != nil {
		return err
	}

	sql, args, err := psql.Update(table).
		Set("client_id", p.ClientID).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("rate", p.Rate).
		Set("status", p.Status.String()).
		Set("start_date", p.StartDate).
		Set("end_date", p.EndDate).
		Set("tags", p.Tags).
		Set("milestones", milestones).
		Set("team", team).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": p.AccountID, "id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "project", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the project. Fails with ErrConflict while tasks, time
// entries or invoices still reference it.
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
		return postgres.MapError(err, "project", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID})
}

func (r *Repo) ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Project, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "client_id": clientID})
}

func (r *Repo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) ([]domain.Project, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "status": status.String()})
}

func (r *Repo) list(ctx context.Context, accountID uuid.UUID, where squirrel.Sqlizer) ([]domain.Project, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("start_date DESC", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "project", accountID)
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, postgres.MapError(err, "project", accountID)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "project", accountID)
	}
	return result, nil
}

func marshalEmbedded(p *domain.Project) (milestones, team []byte, err error) {
	if p.Milestones != nil {
		milestones, err = json.Marshal(p.Milestones)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal project milestones: %w", err)
		}
	}
	if p.Team != nil {
		team, err = json.Marshal(p.Team)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal project team: %w", err)
		}
	}
	return milestones, team, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p          domain.Project
		status     string
		milestones []byte
		team       []byte
	)
	err := row.Scan(
		&p.ID, &p.AccountID, &p.ClientID, &p.Name, &p.Description, &p.Rate,
		&status, &p.StartDate, &p.EndDate, &p.Tags, &milestones, &team,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	if len(milestones) > 0 {
		if err := json.Unmarshal(milestones, &p.Milestones); err != nil {
			return nil, fmt.Errorf("unmarshal project milestones: %w", err)
		}
	}
	if len(team) > 0 {
		if err := json.Unmarshal(team, &p.Team); err != nil {
			return nil, fmt.Errorf("unmarshal project team: %w", err)
		}
	}
	return &p, nil
}
