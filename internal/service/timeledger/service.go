package timeledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/config"
	"github.com/avelichko/freeops-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type entryRepo interface {
	Create(ctx context.Context, e *domain.TimeEntry) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.TimeEntry, error)
	Update(ctx context.Context, e *domain.TimeEntry) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.TimeEntry, error)
	ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.TimeEntry, error)
	ListByDateRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.TimeEntry, error)
	ListUnbilledBillable(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.TimeEntry, error)
	StampInvoice(ctx context.Context, accountID, invoiceID uuid.UUID, entryIDs []uuid.UUID) (int64, error)
}

type projectRepo interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error)
}

type taskRepo interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Task, error)
}

type invoiceRepo interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	NextReferenceSeq(ctx context.Context, accountID uuid.UUID, period string) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the time ledger: recording and editing work sessions,
// selecting billable time, and turning unbilled billable time into an
// invoice that the entries are then linked to.
type Service struct {
	log      *slog.Logger
	entries  entryRepo
	projects projectRepo
	tasks    taskRepo
	invoices invoiceRepo
	tx       txManager
	cfg      config.BillingConfig
	now      func() time.Time
}

// NewService creates a new TimeLedger service.
func NewService(
	logger *slog.Logger,
	entries entryRepo,
	projects projectRepo,
	tasks taskRepo,
	invoices invoiceRepo,
	tx txManager,
	cfg config.BillingConfig,
) *Service {
	return &Service{
		log:      logger.With("service", "timeledger"),
		entries:  entries,
		projects: projects,
		tasks:    tasks,
		invoices: invoices,
		tx:       tx,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) retryConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < s.cfg.TransitionRetries; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		s.log.WarnContext(ctx, "write conflict, retrying",
			slog.Int("attempt", attempt+1))
	}
	return err
}
