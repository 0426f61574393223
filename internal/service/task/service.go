package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

type taskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Task, error)
	ListByProject(ctx context.Context, accountID, projectID uuid.UUID) ([]domain.Task, error)
	ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.TaskStatus) ([]domain.Task, error)
	ListOpenByPriority(ctx context.Context, accountID uuid.UUID, priority domain.TaskPriority) ([]domain.Task, error)
}

type projectRepo interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error)
}

// Service implements task management. Tasks may float free of any project;
// when attached, the project must belong to the caller's account.
type Service struct {
	log      *slog.Logger
	tasks    taskRepo
	projects projectRepo
	now      func() time.Time
}

// NewService creates a new Task service.
func NewService(logger *slog.Logger, tasks taskRepo, projects projectRepo) *Service {
	return &Service{
		log:      logger.With("service", "task"),
		tasks:    tasks,
		projects: projects,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInput holds the parameters for creating a task.
type CreateInput struct {
	ProjectID      *uuid.UUID
	Title          string
	Description    string
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	AssignedTo     *string
	DueDate        *time.Time
	EstimatedHours *float64
	Tags           []string
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.Title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if i.ProjectID != nil && *i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "must be a valid id when set"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}
	if i.Priority != nil && !i.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "invalid value"})
	}
	if i.EstimatedHours != nil && *i.EstimatedHours < 0 {
		errs = append(errs, domain.FieldError{Field: "estimated_hours", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Create creates a task. New tasks default to backlog status and medium
// priority.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		if _, err := s.projects.GetByID(ctx, accountID, *input.ProjectID); err != nil {
			return nil, fmt.Errorf("resolve project: %w", err)
		}
	}

	status := domain.TaskStatusBacklog
	if input.Status != nil {
		status = *input.Status
	}
	priority := domain.TaskPriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
	}
	t := &domain.Task{
		ID:             uuid.New(),
		AccountID:      accountID,
		ProjectID:      input.ProjectID,
		Title:          input.Title,
		Description:    input.Description,
		Status:         status,
		Priority:       priority,
		AssignedTo:     input.AssignedTo,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
		Tags:           input.Tags,
	}
	if status == domain.TaskStatusCompleted {
		now := s.now()
		t.CompletedDate = &now
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log.InfoContext(ctx, "task created",
		slog.String("task_id", t.ID.String()),
		slog.String("priority", t.Priority.String()))

	return t, nil
}

// UpdateInput holds the parameters for updating a task. Nil leaves a field
// unchanged; status moves go through TransitionStatus instead.
type UpdateInput struct {
	TaskID         uuid.UUID
	ProjectID      *uuid.UUID
	Title          *string
	Description    *string
	Priority       *domain.TaskPriority
	AssignedTo     *string
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.TaskID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "task_id", Message: "required"})
	}
	if i.Title != nil && *i.Title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "must not be empty"})
	}
	if i.Priority != nil && !i.Priority.IsValid() {
		errs = append(errs, domain.FieldError{Field: "priority", Message: "invalid value"})
	}
	if i.EstimatedHours != nil && *i.EstimatedHours < 0 {
		errs = append(errs, domain.FieldError{Field: "estimated_hours", Message: "must be >= 0"})
	}
	if i.ActualHours != nil && *i.ActualHours < 0 {
		errs = append(errs, domain.FieldError{Field: "actual_hours", Message: "must be >= 0"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Update edits a task. Reattaching to a project re-checks ownership.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	t, err := s.tasks.GetByID(ctx, accountID, input.TaskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}

	if input.ProjectID != nil {
		if *input.ProjectID == uuid.Nil {
			t.ProjectID = nil
		} else {
			if _, err := s.projects.GetByID(ctx, accountID, *input.ProjectID); err != nil {
				return nil, fmt.Errorf("resolve project: %w", err)
			}
			t.ProjectID = input.ProjectID
		}
	}
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		t.AssignedTo = input.AssignedTo
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		t.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		t.ActualHours = input.ActualHours
	}
	if input.Tags != nil {
		t.Tags = input.Tags
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// TransitionStatus moves a task to another workflow state. Entering
// completed stamps completed_date; leaving it clears the stamp.
func (s *Service) TransitionStatus(ctx context.Context, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if taskID == uuid.Nil {
		return nil, domain.NewValidationError("task_id", "required")
	}
	if !to.IsValid() {
		return nil, domain.NewValidationError("status", "invalid value")
	}

	t, err := s.tasks.GetByID(ctx, accountID, taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}
	if t.Status == to {
		return t, nil
	}

	switch {
	case to == domain.TaskStatusCompleted:
		now := s.now()
		t.CompletedDate = &now
	case t.Status == domain.TaskStatusCompleted:
		t.CompletedDate = nil
	}
	from := t.Status
	t.Status = to

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.log.InfoContext(ctx, "task status changed",
		slog.String("task_id", t.ID.String()),
		slog.String("from", from.String()),
		slog.String("to", to.String()))

	return t, nil
}

// Delete removes a task. Tasks with time entries fail with ErrConflict
// rather than cascading.
func (s *Service) Delete(ctx context.Context, taskID uuid.UUID) error {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if taskID == uuid.Nil {
		return domain.NewValidationError("task_id", "required")
	}

	if err := s.tasks.Delete(ctx, accountID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.log.InfoContext(ctx, "task deleted",
		slog.String("task_id", taskID.String()))

	return nil
}

// Get returns one task of the caller's account.
func (s *Service) Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if taskID == uuid.Nil {
		return nil, domain.NewValidationError("task_id", "required")
	}
	return s.tasks.GetByID(ctx, accountID, taskID)
}

// List returns all tasks of the caller's account.
func (s *Service) List(ctx context.Context) ([]domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.tasks.List(ctx, accountID)
}

// ListByProject returns the account's tasks attached to one project.
func (s *Service) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if projectID == uuid.Nil {
		return nil, domain.NewValidationError("project_id", "required")
	}
	return s.tasks.ListByProject(ctx, accountID, projectID)
}

// ListByStatus returns the account's tasks in one workflow state.
func (s *Service) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "invalid value")
	}
	return s.tasks.ListByStatus(ctx, accountID, status)
}

// ListOpenByPriority returns the account's non-completed tasks at one
// priority.
func (s *Service) ListOpenByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !priority.IsValid() {
		return nil, domain.NewValidationError("priority", "invalid value")
	}
	return s.tasks.ListOpenByPriority(ctx, accountID, priority)
}
