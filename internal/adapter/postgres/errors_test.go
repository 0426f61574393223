package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avelichko/freeops-backend/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if err := MapError(nil, "invoice", uuid.New()); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	err := MapError(pgx.ErrNoRows, "invoice", uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	err := MapError(context.DeadlineExceeded, "invoice", uuid.New())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("deadline error should pass through, got %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Error("deadline error must not map to ErrNotFound")
	}

	err = MapError(context.Canceled, "invoice", uuid.New())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancel error should pass through, got %v", err)
	}
}

func TestMapError_UniqueViolation(t *testing.T) {
	t.Parallel()

	err := MapError(&pgconn.PgError{Code: "23505"}, "invoice", uuid.New())
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestMapError_ForeignKeyMissingParent(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:   "23503",
		Detail: `Key (project_id)=(x) is not present in table "projects".`,
	}
	err := MapError(pgErr, "invoice", uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMapError_ForeignKeyRestrictDelete(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{
		Code:   "23503",
		Detail: `Key (id)=(x) is still referenced from table "invoices".`,
	}
	err := MapError(pgErr, "project", uuid.New())
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestMapError_CheckViolation(t *testing.T) {
	t.Parallel()

	err := MapError(&pgconn.PgError{Code: "23514"}, "time_entry", uuid.New())
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestMapError_SerializationFailure(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"40001", "40P01"} {
		err := MapError(&pgconn.PgError{Code: code}, "invoice", uuid.New())
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("code %s: expected ErrConflict, got %v", code, err)
		}
	}
}

func TestMapError_UnknownWrapped(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("connection refused")
	id := uuid.New()
	err := MapError(base, "invoice", id)
	if !errors.Is(err, base) {
		t.Errorf("original error should be wrapped, got %v", err)
	}
}
