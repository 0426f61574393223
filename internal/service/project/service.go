package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

type projectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Project, error)
	ListByClient(ctx context.Context, accountID, clientID uuid.UUID) ([]domain.Project, error)
	ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ProjectStatus) ([]domain.Project, error)
}

type clientRepo interface {
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error)
}

// Service implements project management. Every project belongs to a client
// of the same account; that ownership is checked on create and on client
// reassignment.
type Service struct {
	log      *slog.Logger
	projects projectRepo
	clients  clientRepo
	now      func() time.Time
}

// NewService creates a new Project service.
func NewService(logger *slog.Logger, projects projectRepo, clients clientRepo) *Service {
	return &Service{
		log:      logger.With("service", "project"),
		projects: projects,
		clients:  clients,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInput holds the parameters for creating a project.
type CreateInput struct {
	ClientID    uuid.UUID
	Name        string
	Description string
	Rate        float64
	Status      *domain.ProjectStatus
	StartDate   time.Time
	EndDate     *time.Time
	Tags        []string
	Milestones  []domain.Milestone
	Team        []domain.TeamMember
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "required"})
	}
	if i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if i.Rate < 0 {
		errs = append(errs, domain.FieldError{Field: "rate", Message: "must be >= 0"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}
	if i.StartDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "start_date", Message: "required"})
	}
	if i.EndDate != nil && !i.StartDate.IsZero() && i.EndDate.Before(i.StartDate) {
		errs = append(errs, domain.FieldError{Field: "end_date", Message: "must not precede start_date"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Create creates a project under one of the caller's clients.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.clients.GetByID(ctx, accountID, input.ClientID); err != nil {
		return nil, fmt.Errorf("resolve client: %w", err)
	}

	status := domain.ProjectStatusActive
	if input.Status != nil {
		status = *input.Status
	}
	p := &domain.Project{
		ID:          uuid.New(),
		AccountID:   accountID,
		ClientID:    input.ClientID,
		Name:        input.Name,
		Description: input.Description,
		Rate:        input.Rate,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Tags:        input.Tags,
		Milestones:  input.Milestones,
		Team:        input.Team,
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.log.InfoContext(ctx, "project created",
		slog.String("project_id", p.ID.String()),
		slog.String("client_id", p.ClientID.String()))

	return p, nil
}

// UpdateInput holds the parameters for updating a project. Nil leaves a
// field unchanged.
type UpdateInput struct {
	ProjectID   uuid.UUID
	ClientID    *uuid.UUID
	Name        *string
	Description *string
	Rate        *float64
	Status      *domain.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Tags        []string
	Milestones  []domain.Milestone
	Team        []domain.TeamMember
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.ProjectID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "project_id", Message: "required"})
	}
	if i.ClientID != nil && *i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "must be a valid id when set"})
	}
	if i.Name != nil && *i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must not be empty"})
	}
	if i.Rate != nil && *i.Rate < 0 {
		errs = append(errs, domain.FieldError{Field: "rate", Message: "must be >= 0"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Update edits a project. Reassigning the client re-checks ownership.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, accountID, input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	if input.ClientID != nil && *input.ClientID != p.ClientID {
		if _, err := s.clients.GetByID(ctx, accountID, *input.ClientID); err != nil {
			return nil, fmt.Errorf("resolve client: %w", err)
		}
		p.ClientID = *input.ClientID
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Rate != nil {
		p.Rate = *input.Rate
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	if input.StartDate != nil {
		p.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		p.EndDate = input.EndDate
	}
	if input.Tags != nil {
		p.Tags = input.Tags
	}
	if input.Milestones != nil {
		p.Milestones = input.Milestones
	}
	if input.Team != nil {
		p.Team = input.Team
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return nil, domain.NewValidationError("end_date", "must not precede start_date")
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a project. Projects with tasks, time entries or invoices
// fail with ErrConflict rather than cascading.
func (s *Service) Delete(ctx context.Context, projectID uuid.UUID) error {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if projectID == uuid.Nil {
		return domain.NewValidationError("project_id", "required")
	}

	if err := s.projects.Delete(ctx, accountID, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	s.log.InfoContext(ctx, "project deleted",
		slog.String("project_id", projectID.String()))

	return nil
}

// Get returns one project of the caller's account.
func (s *Service) Get(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if projectID == uuid.Nil {
		return nil, domain.NewValidationError("project_id", "required")
	}
	return s.projects.GetByID(ctx, accountID, projectID)
}

// List returns all projects of the caller's account.
func (s *Service) List(ctx context.Context) ([]domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.projects.List(ctx, accountID)
}

// ListByClient returns the account's projects under one client.
func (s *Service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "required")
	}
	return s.projects.ListByClient(ctx, accountID, clientID)
}

// ListByStatus returns the account's projects in one status.
func (s *Service) ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "invalid value")
	}
	return s.projects.ListByStatus(ctx, accountID, status)
}
