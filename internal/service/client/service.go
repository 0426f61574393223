package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/pkg/ctxutil"
)

type clientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Client, error)
	ListByStatus(ctx context.Context, accountID uuid.UUID, status domain.ClientStatus) ([]domain.Client, error)
	ListByTag(ctx context.Context, accountID uuid.UUID, tag string) ([]domain.Client, error)
	TouchContact(ctx context.Context, accountID, id uuid.UUID, at time.Time) error
}

// Service implements client management.
type Service struct {
	log     *slog.Logger
	clients clientRepo
	now     func() time.Time
}

// NewService creates a new Client service.
func NewService(logger *slog.Logger, clients clientRepo) *Service {
	return &Service{
		log:     logger.With("service", "client"),
		clients: clients,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Intended for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateInput holds the parameters for creating a client.
type CreateInput struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
	Company *string
	Website *string
	Notes   *string
	Tags    []string
	Source  *string
	Status  *domain.ClientStatus
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	if i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	}
	if i.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "required"})
	} else if _, err := mail.ParseAddress(i.Email); err != nil {
		errs = append(errs, domain.FieldError{Field: "email", Message: "invalid address"})
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Create creates a client. New clients default to active and start with
// last_contact_date set to the creation instant.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	status := domain.ClientStatusActive
	if input.Status != nil {
		status = *input.Status
	}
	now := s.now()
	c := &domain.Client{
		ID:              uuid.New(),
		AccountID:       accountID,
		Name:            input.Name,
		Email:           input.Email,
		Phone:           input.Phone,
		Address:         input.Address,
		Company:         input.Company,
		Website:         input.Website,
		Notes:           input.Notes,
		Tags:            input.Tags,
		Source:          input.Source,
		Status:          status,
		LastContactDate: &now,
	}

	if err := s.clients.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.InfoContext(ctx, "client created",
		slog.String("client_id", c.ID.String()))

	return c, nil
}

// UpdateInput holds the parameters for updating a client. Nil leaves a
// field unchanged.
type UpdateInput struct {
	ClientID uuid.UUID
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Company  *string
	Website  *string
	Notes    *string
	Tags     []string
	Source   *string
	Status   *domain.ClientStatus
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	if i.ClientID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "client_id", Message: "required"})
	}
	if i.Name != nil && *i.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must not be empty"})
	}
	if i.Email != nil {
		if *i.Email == "" {
			errs = append(errs, domain.FieldError{Field: "email", Message: "must not be empty"})
		} else if _, err := mail.ParseAddress(*i.Email); err != nil {
			errs = append(errs, domain.FieldError{Field: "email", Message: "invalid address"})
		}
	}
	if i.Status != nil && !i.Status.IsValid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "invalid value"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Update edits a client in place.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	c, err := s.clients.GetByID(ctx, accountID, input.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Email != nil {
		c.Email = *input.Email
	}
	if input.Phone != nil {
		c.Phone = input.Phone
	}
	if input.Address != nil {
		c.Address = input.Address
	}
	if input.Company != nil {
		c.Company = input.Company
	}
	if input.Website != nil {
		c.Website = input.Website
	}
	if input.Notes != nil {
		c.Notes = input.Notes
	}
	if input.Tags != nil {
		c.Tags = input.Tags
	}
	if input.Source != nil {
		c.Source = input.Source
	}
	if input.Status != nil {
		c.Status = *input.Status
	}

	if err := s.clients.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return c, nil
}

// Delete removes a client. Clients with projects or invoices fail with
// ErrConflict rather than cascading.
func (s *Service) Delete(ctx context.Context, clientID uuid.UUID) error {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return domain.NewValidationError("client_id", "required")
	}

	if err := s.clients.Delete(ctx, accountID, clientID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.log.InfoContext(ctx, "client deleted",
		slog.String("client_id", clientID.String()))

	return nil
}

// Get returns one client of the caller's account.
func (s *Service) Get(ctx context.Context, clientID uuid.UUID) (*domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "required")
	}
	return s.clients.GetByID(ctx, accountID, clientID)
}

// List returns all clients of the caller's account.
func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return s.clients.List(ctx, accountID)
}

// ListByStatus returns the account's clients in one status.
func (s *Service) ListByStatus(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "invalid value")
	}
	return s.clients.ListByStatus(ctx, accountID, status)
}

// ListByTag returns the account's clients carrying one tag.
func (s *Service) ListByTag(ctx context.Context, tag string) ([]domain.Client, error) {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if tag == "" {
		return nil, domain.NewValidationError("tag", "required")
	}
	return s.clients.ListByTag(ctx, accountID, tag)
}

// TouchContact refreshes the client's last contact stamp to now.
func (s *Service) TouchContact(ctx context.Context, clientID uuid.UUID) error {
	accountID, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}
	if clientID == uuid.Nil {
		return domain.NewValidationError("client_id", "required")
	}
	return s.clients.TouchContact(ctx, accountID, clientID, s.now())
}
