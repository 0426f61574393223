package project

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

type mockProjectRepo struct {
	CreateFunc       func(ctx context.Context, p *domain.Project) error
	GetByIDFunc      func(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error)
	UpdateFunc       func(ctx context.Context, p *domain.Project) error
	DeleteFunc       func(ctx context.Context, accountID, id uuid.UUID) error
	ListFunc         func(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error)
	ListByClientFunc func(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Project, error)
	ListByStatusFunc func(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) ([]domain.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, accountID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, accountID, id)
	}
	return nil
}

func (m *mockProjectRepo) List(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Project, error) {
	if m.ListByClientFunc != nil {
		return m.ListByClientFunc(ctx, accountID, clientID)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) ([]domain.Project, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, accountID, status)
	}
	return nil, nil
}

type mockClientRepo struct {
	GetByIDFunc func(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error)
}

func (m *mockClientRepo) GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, accountID, id)
	}
	return nil, domain.ErrNotFound
}

func newTestService() (*Service, *mockProjectRepo, *mockClientRepo) {
	projects := &mockProjectRepo{}
	clients := &mockClientRepo{}
	return NewService(slog.Default(), projects, clients), projects, clients
}

func authCtx() (context.Context, uuid.UUID) {
	accountID := uuid.New()
	return ctxutil.WithAccountID(context.Background(), accountID), accountID
}

func TestService_Create(t *testing.T) {
	t.Parallel()
	svc, projects, clients := newTestService()
	ctx, accountID := authCtx()

	clientID := uuid.New()
	clients.GetByIDFunc = func(_ context.Context, aID, id uuid.UUID) (*domain.Client, error) {
		assert.Equal(t, accountID, aID)
		assert.Equal(t, clientID, id)
		return &domain.Client{ID: clientID, AccountID: accountID}, nil
	}

	var created *domain.Project
	projects.CreateFunc = func(_ context.Context, p *domain.Project) error {
		created = p
		return nil
	}

	p, err := svc.Create(ctx, CreateInput{
		ClientID:  clientID,
		Name:      "Website redesign",
		Rate:      85,
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, accountID, p.AccountID)
	assert.Equal(t, domain.ProjectStatusActive, p.Status)
	assert.Equal(t, 85.0, p.Rate)
}

func TestService_Create_UnknownClient(t *testing.T) {
	t.Parallel()
	svc, _, clients := newTestService()
	ctx, _ := authCtx()

	clients.GetByIDFunc = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Client, error) {
		return nil, domain.ErrNotFound
	}

	_, err := svc.Create(ctx, CreateInput{
		ClientID:  uuid.New(),
		Name:      "Orphan",
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Create_Invalid(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx, _ := authCtx()

	start := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing client", CreateInput{Name: "P", StartDate: start}},
		{"missing name", CreateInput{ClientID: uuid.New(), StartDate: start}},
		{"negative rate", CreateInput{ClientID: uuid.New(), Name: "P", Rate: -1, StartDate: start}},
		{"missing start date", CreateInput{ClientID: uuid.New(), Name: "P"}},
		{"end before start", CreateInput{ClientID: uuid.New(), Name: "P", StartDate: start, EndDate: &before}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestService_Update_ReassignClient(t *testing.T) {
	t.Parallel()
	svc, projects, clients := newTestService()
	ctx, accountID := authCtx()

	oldClient := uuid.New()
	newClient := uuid.New()
	existing := domain.Project{
		ID:        uuid.New(),
		AccountID: accountID,
		ClientID:  oldClient,
		Name:      "Website redesign",
		Status:    domain.ProjectStatusActive,
		StartDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
	}
	projects.GetByIDFunc = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Project, error) {
		cp := existing
		return &cp, nil
	}

	var resolved bool
	clients.GetByIDFunc = func(_ context.Context, _, id uuid.UUID) (*domain.Client, error) {
		resolved = true
		assert.Equal(t, newClient, id)
		return &domain.Client{ID: newClient, AccountID: accountID}, nil
	}

	updated, err := svc.Update(ctx, UpdateInput{ProjectID: existing.ID, ClientID: &newClient})
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, newClient, updated.ClientID)
	assert.Equal(t, "Website redesign", updated.Name)
}

func TestService_Update_EndBeforeStart(t *testing.T) {
	t.Parallel()
	svc, projects, _ := newTestService()
	ctx, accountID := authCtx()

	start := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	projects.GetByIDFunc = func(context.Context, uuid.UUID, uuid.UUID) (*domain.Project, error) {
		return &domain.Project{
			ID:        uuid.New(),
			AccountID: accountID,
			ClientID:  uuid.New(),
			Name:      "P",
			StartDate: start,
		}, nil
	}

	before := start.AddDate(0, 0, -7)
	_, err := svc.Update(ctx, UpdateInput{ProjectID: uuid.New(), EndDate: &before})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Delete_Conflict(t *testing.T) {
	t.Parallel()
	svc, projects, _ := newTestService()
	ctx, _ := authCtx()

	projects.DeleteFunc = func(context.Context, uuid.UUID, uuid.UUID) error {
		return domain.ErrConflict
	}

	err := svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{ClientID: uuid.New(), Name: "P", StartDate: time.Now()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.List(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	err = svc.Delete(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
