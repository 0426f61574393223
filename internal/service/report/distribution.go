package report

import (
	"context"
	"fmt"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// StatusDistribution counts the account's records per category: projects by
// status, invoices by stored status, or non-completed tasks by priority.
func (s *Service) StatusDistribution(ctx context.Context, kind domain.DistributionKind) (domain.Distribution, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !kind.IsValid() {
		return nil, domain.NewValidationError("kind", "invalid value")
	}

	var (
		dist domain.Distribution
		err  error
	)
	switch kind {
	case domain.DistributionKindProjects:
		dist, err = s.aggregates.ProjectStatusCounts(ctx, accountID)
	case domain.DistributionKindInvoices:
		dist, err = s.aggregates.InvoiceStatusCounts(ctx, accountID)
	case domain.DistributionKindTasks:
		dist, err = s.aggregates.OpenTaskPriorityCounts(ctx, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s distribution: %w", kind, err)
	}
	return dist, nil
}
