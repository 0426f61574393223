package client

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

const table = "clients"

var columns = []string{
	"id", "account_id", "name", "email", "phone", "address", "company",
	"website", "notes", "tags", "source", "status", "last_contact_date",
	"created_at", "updated_at",
}

// Repo persists clients. All queries are account-scoped.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, c *domain.Client) error {
	sql, args, err := psql.Insert(table).
		Columns("id", "account_id", "name", "email", "phone", "address",
			"company", "website", "notes", "tags", "source", "status",
			"last_contact_date").
		Values(c.ID, c.AccountID, c.Name, c.Email, c.Phone, c.Address,
			c.Company, c.Website, c.Notes, c.Tags, c.Source, c.Status.String(),
			c.LastContactDate).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, sql, args...).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return postgres.MapError(err, "client", c.ID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	c, err := scanClient(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "client", id)
	}
	return c, nil
}

func (r *Repo) Update(ctx context.Context, c *domain.Client) error {
	sql, args, err := psql.Update(table).
		Set("name", c.Name).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("address", c.Address).
		Set("company", c.Company).
		Set("website", c.Website).
		Set("notes", c.Notes).
		Set("tags", c.Tags).
		Set("source", c.Source).
		Set("status", c.Status.String()).
		Set("last_contact_date", c.LastContactDate).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": c.AccountID, "id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "client", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the client. Fails with ErrConflict while projects or
// invoices still reference it.
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
		return postgres.MapError(err, "client", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Client, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID})
}

func (r *Repo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) ([]domain.Client, error) {
	return r.list(ctx, accountID, squirrel.Eq{"account_id": accountID, "status": status.String()})
}

// ListByTag returns clients carrying the given tag.
func (r *Repo) ListByTag(ctx context.Context, accountID uuid.UUID, tag string) ([]domain.Client, error) {
	return r.list(ctx, accountID, squirrel.And{
		squirrel.Eq{"account_id": accountID},
		squirrel.Expr("tags @> ?", []string{tag}),
	})
}

// TouchContact stamps last_contact_date, refreshing updated_at.
func (r *Repo) TouchContact(ctx context.Context, accountID, id uuid.UUID, at time.Time) error {
	sql, args, err := psql.Update(table).
		Set("last_contact_date", at).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"account_id": accountID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "client", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, accountID uuid.UUID, where squirrel.Sqlizer) ([]domain.Client, error) {
	sql, args, err := psql.Select(columns...).From(table).
		Where(where).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "client", accountID)
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, postgres.MapError(err, "client", accountID)
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "client", accountID)
	}
	return result, nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c      domain.Client
		status string
	)
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Company, &c.Website, &c.Notes, &c.Tags, &c.Source, &status,
		&c.LastContactDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = domain.ClientStatus(status)
	return &c, nil
}
