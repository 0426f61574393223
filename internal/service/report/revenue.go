package report

import (
	"context"
	"fmt"
	"time"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// MonthlyRevenue returns per-month invoice totals, bucketed by the UTC
// calendar month of the due date, ascending. Months without invoices
// produce no bucket.
func (s *Service) MonthlyRevenue(ctx context.Context) ([]domain.MonthBucket, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	buckets, err := s.aggregates.MonthlyRevenue(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	return buckets, nil
}

// MonthlyBillableHours sums billable time tracked in the current UTC
// calendar month, in fractional hours.
func (s *Service) MonthlyBillableHours(ctx context.Context) (float64, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return 0, domain.ErrUnauthorized
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	minutes, err := s.aggregates.BillableMinutes(ctx, accountID, monthStart, nextMonth)
	if err != nil {
		return 0, fmt.Errorf("billable minutes: %w", err)
	}
	return float64(minutes) / 60.0, nil
}
