package report

import (
	"context"
	"fmt"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// TopLineStats assembles the dashboard headline numbers: revenue by payment
// state, pending/overdue invoice counts, active projects and clients, and
// urgent open tasks. One read per entity, no caching.
func (s *Service) TopLineStats(ctx context.Context) (*domain.TopLineStats, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	rollup, err := s.aggregates.InvoiceRollup(ctx, accountID, s.now())
	if err != nil {
		return nil, fmt.Errorf("invoice rollup: %w", err)
	}

	activeProjects, err := s.aggregates.CountProjectsByStatus(ctx, accountID, domain.ProjectStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count active projects: %w", err)
	}

	activeClients, err := s.aggregates.CountClientsByStatus(ctx, accountID, domain.ClientStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count active clients: %w", err)
	}

	urgentTasks, err := s.aggregates.CountUrgentOpenTasks(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("count urgent tasks: %w", err)
	}

	return &domain.TopLineStats{
		PaidRevenue:     rollup.PaidRevenue,
		PendingRevenue:  rollup.PendingRevenue,
		PendingInvoices: rollup.PendingCount,
		OverdueInvoices: rollup.OverdueCount,
		ActiveProjects:  activeProjects,
		ActiveClients:   activeClients,
		UrgentTasks:     urgentTasks,
	}, nil
}
