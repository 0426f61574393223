package client

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

type mockClientRepo struct {
	CreateFunc       func(ctx context.Context, c *domain.Client) error
	GetByIDFunc      func(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error)
	UpdateFunc       func(ctx context.Context, c *domain.Client) error
	DeleteFunc       func(ctx context.Context, accountID, id uuid.UUID) error
	ListFunc         func(ctx context.Context, accountID uuid.UUID) ([]domain.Client, error)
	ListByStatusFunc func(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) ([]domain.Client, error)
	ListByTagFunc    func(ctx context.Context, accountID uuid.UUID, tag string) ([]domain.Client, error)
	TouchContactFunc func(ctx context.Context, accountID, id uuid.UUID, at time.Time) error
}

func (m *mockClientRepo) Create(ctx context.Context, c *domain.Client) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, c)
	}
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, accountID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockClientRepo) Update(ctx context.Context, c *domain.Client) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, c)
	}
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, accountID, id)
	}
	return nil
}

func (m *mockClientRepo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Client, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *mockClientRepo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) ([]domain.Client, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, accountID, status)
	}
	return nil, nil
}

func (m *mockClientRepo) ListByTag(ctx context.Context, accountID uuid.UUID, tag string) ([]domain.Client, error) {
	if m.ListByTagFunc != nil {
		return m.ListByTagFunc(ctx, accountID, tag)
	}
	return nil, nil
}

func (m *mockClientRepo) TouchContact(ctx context.Context, accountID, id uuid.UUID, at time.Time) error {
	if m.TouchContactFunc != nil {
		return m.TouchContactFunc(ctx, accountID, id, at)
	}
	return nil
}

func newTestService() (*Service, *mockClientRepo) {
	repo := &mockClientRepo{}
	return NewService(slog.Default(), repo), repo
}

func authCtx() (context.Context, uuid.UUID) {
	accountID := uuid.New()
	return ctxutil.WithAccountID(context.Background(), accountID), accountID
}

var fixedNow = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

func TestService_Create_Defaults(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	svc.SetClock(func() time.Time { return fixedNow })
	ctx, accountID := authCtx()

	var created *domain.Client
	repo.CreateFunc = func(_ context.Context, c *domain.Client) error {
		created = c
		return nil
	}

	c, err := svc.Create(ctx, CreateInput{Name: "Acme", Email: "billing@acme.test"})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, accountID, c.AccountID)
	assert.Equal(t, domain.ClientStatusActive, c.Status)
	require.NotNil(t, c.LastContactDate)
	assert.Equal(t, fixedNow, *c.LastContactDate)
}

func TestService_Create_Invalid(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx, _ := authCtx()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{Email: "a@b.test"}},
		{"missing email", CreateInput{Name: "Acme"}},
		{"bad email", CreateInput{Name: "Acme", Email: "not-an-address"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestService_Update_PartialFields(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	ctx, accountID := authCtx()

	existing := domain.Client{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      "Acme",
		Email:     "old@acme.test",
		Status:    domain.ClientStatusProspect,
	}
	repo.GetByIDFunc = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Client, error) {
		cp := existing
		return &cp, nil
	}

	newStatus := domain.ClientStatusActive
	updated, err := svc.Update(ctx, UpdateInput{ClientID: existing.ID, Status: &newStatus})
	require.NoError(t, err)

	assert.Equal(t, domain.ClientStatusActive, updated.Status)
	assert.Equal(t, "Acme", updated.Name)
	assert.Equal(t, "old@acme.test", updated.Email)
}

func TestService_TouchContact(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	svc.SetClock(func() time.Time { return fixedNow })
	ctx, accountID := authCtx()

	clientID := uuid.New()
	var gotAt time.Time
	repo.TouchContactFunc = func(_ context.Context, aID, id uuid.UUID, at time.Time) error {
		assert.Equal(t, accountID, aID)
		assert.Equal(t, clientID, id)
		gotAt = at
		return nil
	}

	require.NoError(t, svc.TouchContact(ctx, clientID))
	assert.Equal(t, fixedNow, gotAt)
}

func TestService_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Acme", Email: "a@b.test"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	err = svc.TouchContact(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
