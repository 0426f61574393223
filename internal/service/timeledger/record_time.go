package timeledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

// RecordTime creates a time entry for a project of the caller's account.
func (s *Service) RecordTime(ctx context.Context, input RecordTimeInput) (*domain.TimeEntry, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.projects.GetByID(ctx, accountID, input.ProjectID); err != nil {
		return nil, fmt.Errorf("resolve project: %w", err)
	}

	if input.TaskID != nil {
		if _, err := s.tasks.GetByID(ctx, accountID, *input.TaskID); err != nil {
			return nil, fmt.Errorf("resolve task: %w", err)
		}
	}

	entry := &domain.TimeEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		ProjectID:   input.ProjectID,
		TaskID:      input.TaskID,
		Date:        input.Date,
		Duration:    input.Duration,
		Description: input.Description,
		Billable:    input.Billable,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create time entry: %w", err)
	}

	s.log.InfoContext(ctx, "time recorded",
		slog.String("entry_id", entry.ID.String()),
		slog.String("project_id", entry.ProjectID.String()),
		slog.Int("minutes", entry.Duration))

	return entry, nil
}
