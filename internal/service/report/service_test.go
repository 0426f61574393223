package report

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

// ===========================================================================
// Manual mock (moq-style with func fields)
// ===========================================================================

type mockAggregateRepo struct {
	MonthlyRevenueFunc         func(ctx context.Context, accountID uuid.UUID) ([]domain.MonthBucket, error)
	ProjectStatusCountsFunc    func(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	InvoiceStatusCountsFunc    func(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	OpenTaskPriorityCountsFunc func(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	BillableMinutesFunc        func(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error)
	InvoiceRollupFunc          func(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.InvoiceRollup, error)
	CountProjectsByStatusFunc  func(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) (int, error)
	CountClientsByStatusFunc   func(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) (int, error)
	CountUrgentOpenTasksFunc   func(ctx context.Context, accountID uuid.UUID) (int, error)
}

func (m *mockAggregateRepo) MonthlyRevenue(ctx context.Context, accountID uuid.UUID) ([]domain.MonthBucket, error) {
	if m.MonthlyRevenueFunc != nil {
		return m.MonthlyRevenueFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *mockAggregateRepo) ProjectStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	if m.ProjectStatusCountsFunc != nil {
		return m.ProjectStatusCountsFunc(ctx, accountID)
	}
	return domain.Distribution{}, nil
}

func (m *mockAggregateRepo) InvoiceStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	if m.InvoiceStatusCountsFunc != nil {
		return m.InvoiceStatusCountsFunc(ctx, accountID)
	}
	return domain.Distribution{}, nil
}

func (m *mockAggregateRepo) OpenTaskPriorityCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error) {
	if m.OpenTaskPriorityCountsFunc != nil {
		return m.OpenTaskPriorityCountsFunc(ctx, accountID)
	}
	return domain.Distribution{}, nil
}

func (m *mockAggregateRepo) BillableMinutes(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error) {
	if m.BillableMinutesFunc != nil {
		return m.BillableMinutesFunc(ctx, accountID, from, to)
	}
	return 0, nil
}

func (m *mockAggregateRepo) InvoiceRollup(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.InvoiceRollup, error) {
	if m.InvoiceRollupFunc != nil {
		return m.InvoiceRollupFunc(ctx, accountID, now)
	}
	return domain.InvoiceRollup{}, nil
}

func (m *mockAggregateRepo) CountProjectsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) (int, error) {
	if m.CountProjectsByStatusFunc != nil {
		return m.CountProjectsByStatusFunc(ctx, accountID, status)
	}
	return 0, nil
}

func (m *mockAggregateRepo) CountClientsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) (int, error) {
	if m.CountClientsByStatusFunc != nil {
		return m.CountClientsByStatusFunc(ctx, accountID, status)
	}
	return 0, nil
}

func (m *mockAggregateRepo) CountUrgentOpenTasks(ctx context.Context, accountID uuid.UUID) (int, error) {
	if m.CountUrgentOpenTasksFunc != nil {
		return m.CountUrgentOpenTasksFunc(ctx, accountID)
	}
	return 0, nil
}

// ===========================================================================
// Helpers
// ===========================================================================

func newTestService() (*Service, *mockAggregateRepo) {
	repo := &mockAggregateRepo{}
	return NewService(slog.Default(), repo), repo
}

func authCtx() (context.Context, uuid.UUID) {
	accountID := uuid.New()
	return ctxutil.WithAccountID(context.Background(), accountID), accountID
}

var fixedNow = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

// ===========================================================================
// MonthlyRevenue / MonthlyBillableHours
// ===========================================================================

func TestService_MonthlyRevenue(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	ctx, accountID := authCtx()

	expected := []domain.MonthBucket{
		{Month: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), Total: 1500, Paid: 500},
		{Month: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), Total: 800, Paid: 800},
	}
	repo.MonthlyRevenueFunc = func(_ context.Context, aID uuid.UUID) ([]domain.MonthBucket, error) {
		assert.Equal(t, accountID, aID)
		return expected, nil
	}

	got, err := svc.MonthlyRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	for _, b := range got {
		assert.LessOrEqual(t, b.Paid, b.Total)
	}
}

func TestService_MonthlyBillableHours_CurrentMonthWindow(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	svc.SetClock(func() time.Time { return fixedNow })
	ctx, _ := authCtx()

	var gotFrom, gotTo time.Time
	repo.BillableMinutesFunc = func(_ context.Context, _ uuid.UUID, from, to time.Time) (int, error) {
		gotFrom, gotTo = from, to
		return 120, nil
	}

	hours, err := svc.MonthlyBillableHours(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2.0, hours)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), gotFrom)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), gotTo)
}

func TestService_MonthlyBillableHours_FractionalResult(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	svc.SetClock(func() time.Time { return fixedNow })
	ctx, _ := authCtx()

	repo.BillableMinutesFunc = func(context.Context, uuid.UUID, time.Time, time.Time) (int, error) {
		return 90, nil
	}

	hours, err := svc.MonthlyBillableHours(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, hours, 1e-9)
}

// ===========================================================================
// StatusDistribution
// ===========================================================================

func TestService_StatusDistribution(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	ctx, _ := authCtx()

	repo.ProjectStatusCountsFunc = func(context.Context, uuid.UUID) (domain.Distribution, error) {
		return domain.Distribution{"active": 3, "paused": 1}, nil
	}
	repo.InvoiceStatusCountsFunc = func(context.Context, uuid.UUID) (domain.Distribution, error) {
		return domain.Distribution{"pending": 2, "paid": 5}, nil
	}
	repo.OpenTaskPriorityCountsFunc = func(context.Context, uuid.UUID) (domain.Distribution, error) {
		return domain.Distribution{"urgent": 1, "medium": 4}, nil
	}

	projects, err := svc.StatusDistribution(ctx, domain.DistributionKindProjects)
	require.NoError(t, err)
	assert.Equal(t, domain.Distribution{"active": 3, "paused": 1}, projects)

	invoices, err := svc.StatusDistribution(ctx, domain.DistributionKindInvoices)
	require.NoError(t, err)
	assert.Equal(t, domain.Distribution{"pending": 2, "paid": 5}, invoices)

	tasks, err := svc.StatusDistribution(ctx, domain.DistributionKindTasks)
	require.NoError(t, err)
	assert.Equal(t, domain.Distribution{"urgent": 1, "medium": 4}, tasks)
}

func TestService_StatusDistribution_InvalidKind(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx, _ := authCtx()

	_, err := svc.StatusDistribution(ctx, domain.DistributionKind("bogus"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ===========================================================================
// TopLineStats
// ===========================================================================

func TestService_TopLineStats(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService()
	svc.SetClock(func() time.Time { return fixedNow })
	ctx, _ := authCtx()

	repo.InvoiceRollupFunc = func(_ context.Context, _ uuid.UUID, now time.Time) (domain.InvoiceRollup, error) {
		assert.Equal(t, fixedNow, now)
		return domain.InvoiceRollup{
			PaidRevenue:    2500,
			PendingRevenue: 800,
			PendingCount:   2,
			OverdueCount:   1,
		}, nil
	}
	repo.CountProjectsByStatusFunc = func(_ context.Context, _ uuid.UUID, status domain.ProjectStatus) (int, error) {
		assert.Equal(t, domain.ProjectStatusActive, status)
		return 4, nil
	}
	repo.CountClientsByStatusFunc = func(_ context.Context, _ uuid.UUID, status domain.ClientStatus) (int, error) {
		assert.Equal(t, domain.ClientStatusActive, status)
		return 3, nil
	}
	repo.CountUrgentOpenTasksFunc = func(context.Context, uuid.UUID) (int, error) {
		return 2, nil
	}

	stats, err := svc.TopLineStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, &domain.TopLineStats{
		PaidRevenue:     2500,
		PendingRevenue:  800,
		PendingInvoices: 2,
		OverdueInvoices: 1,
		ActiveProjects:  4,
		ActiveClients:   3,
		UrgentTasks:     2,
	}, stats)
}

func TestService_Unauthenticated(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.MonthlyRevenue(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.MonthlyBillableHours(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.StatusDistribution(ctx, domain.DistributionKindProjects)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.TopLineStats(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
