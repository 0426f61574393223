package billing

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

type invoiceRepo interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, accountID, id uuid.UUID) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, accountID, id uuid.UUID, status domain.InvoiceStatus, paidDate *time.Time) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Invoice, error)
	ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.InvoiceStatus) ([]domain.Invoice, error)
	ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Invoice, error)
	ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Invoice, error)
	ListByDueDateRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Invoice, error)
	ListOverdue(ctx context.Context, accountID uuid.UUID, now time.Time) ([]domain.Invoice, error)
	NextReferenceSeq(ctx context.Context, accountID uuid.UUID, period string) (int, error)
}

type projectRepo interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the invoice lifecycle: creation with server-computed
// totals and reference numbers, and the status state machine.
type Service struct {
	log      *slog.Logger
	invoices invoiceRepo
	projects projectRepo
	tx       txManager
	cfg      config.BillingConfig
	now      func() time.Time
}

// NewService creates a new Billing service.
func NewService(
	logger *slog.Logger,
	invoices invoiceRepo,
	projects projectRepo,
	tx txManager,
	cfg config.BillingConfig,
) *Service {
	return &Service{
		log:      logger.With("service", "billing"),
		invoices: invoices,
		projects: projects,
		tx:       tx,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// retryConflict runs fn, repeating it when it loses a write race, up to the
// configured bound. Any other error surfaces immediately.
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
