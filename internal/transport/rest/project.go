package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/project"
)

// projectService defines the minimal interface needed by ProjectHandler.
type projectService interface {
	Create(ctx context.Context, input project.CreateInput) (*domain.Project, error)
	Update(ctx context.Context, input project.UpdateInput) (*domain.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error
	Get(ctx context.Context, projectID uuid.UUID) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Project, error)
	ListByStatus(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error)
}

// ProjectHandler serves project REST endpoints.
type ProjectHandler struct {
	svc projectService
	log *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(svc projectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, log: logger.With("handler", "project")}
}

type createProjectRequest struct {
	ClientID    uuid.UUID           `json:"clientId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Rate        float64             `json:"rate"`
	Status      *string             `json:"status,omitempty"`
	StartDate   time.Time           `json:"startDate"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Milestones  []domain.Milestone  `json:"milestones,omitempty"`
	Team        []domain.TeamMember `json:"team,omitempty"`
}

type updateProjectRequest struct {
	ClientID    *uuid.UUID          `json:"clientId,omitempty"`
	Name        *string             `json:"name,omitempty"`
	Description *string             `json:"description,omitempty"`
	Rate        *float64            `json:"rate,omitempty"`
	Status      *string             `json:"status,omitempty"`
	StartDate   *time.Time          `json:"startDate,omitempty"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Milestones  []domain.Milestone  `json:"milestones,omitempty"`
	Team        []domain.TeamMember `json:"team,omitempty"`
}

type projectResponse struct {
	ID          string              `json:"id"`
	ClientID    string              `json:"clientId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Rate        float64             `json:"rate"`
	Status      string              `json:"status"`
	StartDate   time.Time           `json:"startDate"`
	EndDate     *time.Time          `json:"endDate,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Milestones  []domain.Milestone  `json:"milestones,omitempty"`
	Team        []domain.TeamMember `json:"team,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

func toProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID.String(),
		ClientID:    p.ClientID.String(),
		Name:        p.Name,
		Description: p.Description,
		Rate:        p.Rate,
		Status:      p.Status.String(),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Tags:        p.Tags,
		Milestones:  p.Milestones,
		Team:        p.Team,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectList(projects []domain.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out
}

func projectStatusPtr(s *string) *domain.ProjectStatus {
	if s == nil {
		return nil
	}
	v := domain.ProjectStatus(*s)
	return &v
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), project.CreateInput{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Rate:        req.Rate,
		Status:      projectStatusPtr(req.Status),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
		Milestones:  req.Milestones,
		Team:        req.Team,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// List handles GET /api/projects. Supports ?client_id= and ?status=.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if clientID, err := queryUUID(r, "client_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
		return
	} else if clientID != uuid.Nil {
		projects, err := h.svc.ListByClient(ctx, clientID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProjectList(projects))
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		projects, err := h.svc.ListByStatus(ctx, domain.ProjectStatus(status))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toProjectList(projects))
		return
	}

	projects, err := h.svc.List(ctx)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectList(projects))
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), project.UpdateInput{
		ProjectID:   id,
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Rate:        req.Rate,
		Status:      projectStatusPtr(req.Status),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Tags:        req.Tags,
		Milestones:  req.Milestones,
		Team:        req.Team,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
