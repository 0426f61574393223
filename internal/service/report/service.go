package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type aggregateRepo interface {
	MonthlyRevenue(ctx context.Context, accountID uuid.UUID) ([]domain.MonthBucket, error)
	ProjectStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	InvoiceStatusCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	OpenTaskPriorityCounts(ctx context.Context, accountID uuid.UUID) (domain.Distribution, error)
	BillableMinutes(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int, error)
	InvoiceRollup(ctx context.Context, accountID uuid.UUID, now time.Time) (domain.InvoiceRollup, error)
	CountProjectsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) (int, error)
	CountClientsByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) (int, error)
	CountUrgentOpenTasks(ctx context.Context, accountID uuid.UUID) (int, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service derives reporting rollups from the current store. Everything is
// recomputed per call; there is no cache or materialized state to drift.
type Service struct {
	log        *slog.Logger
	aggregates aggregateRepo
	now        func() time.Time
}

// NewService creates a new Report service.
func NewService(logger *slog.Logger, aggregates aggregateRepo) *Service {
	return &Service{
		log:        logger.With("service", "report"),
		aggregates: aggregates,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
