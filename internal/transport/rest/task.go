package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/task"
)

// taskService defines the minimal interface needed by TaskHandler.
type taskService interface {
	Create(ctx context.Context, input task.CreateInput) (*domain.Task, error)
	Update(ctx context.Context, input task.UpdateInput) (*domain.Task, error)
	TransitionStatus(ctx context.Context, taskID uuid.UUID, to domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, taskID uuid.UUID) error
	Get(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]domain.Task, error)
	ListOpenByPriority(ctx context.Context, priority domain.TaskPriority) ([]domain.Task, error)
}

// TaskHandler serves task REST endpoints.
type TaskHandler struct {
	svc taskService
	log *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(svc taskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: logger.With("handler", "task")}
}

type createTaskRequest struct {
	ProjectID      *uuid.UUID `json:"projectId,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         *string    `json:"status,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	AssignedTo     *string    `json:"assignedTo,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

type updateTaskRequest struct {
	ProjectID      *uuid.UUID `json:"projectId,omitempty"`
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	AssignedTo     *string    `json:"assignedTo,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	ActualHours    *float64   `json:"actualHours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
}

type taskTransitionRequest struct {
	Status string `json:"status"`
}

type taskResponse struct {
	ID             string     `json:"id"`
	ProjectID      *string    `json:"projectId,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     *string    `json:"assignedTo,omitempty"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CompletedDate  *time.Time `json:"completedDate,omitempty"`
	EstimatedHours *float64   `json:"estimatedHours,omitempty"`
	ActualHours    *float64   `json:"actualHours,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func toTaskResponse(t *domain.Task) taskResponse {
	resp := taskResponse{
		ID:             t.ID.String(),
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status.String(),
		Priority:       t.Priority.String(),
		AssignedTo:     t.AssignedTo,
		DueDate:        t.DueDate,
		CompletedDate:  t.CompletedDate,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Tags:           t.Tags,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.ProjectID != nil {
		s := t.ProjectID.String()
		resp.ProjectID = &s
	}
	return resp
}

func toTaskList(tasks []domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}

func taskStatusPtr(s *string) *domain.TaskStatus {
	if s == nil {
		return nil
	}
	v := domain.TaskStatus(*s)
	return &v
}

func taskPriorityPtr(s *string) *domain.TaskPriority {
	if s == nil {
		return nil
	}
	v := domain.TaskPriority(*s)
	return &v
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.svc.Create(r.Context(), task.CreateInput{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         taskStatusPtr(req.Status),
		Priority:       taskPriorityPtr(req.Priority),
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		Tags:           req.Tags,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskResponse(t))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	t, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// List handles GET /api/tasks. Supports ?project_id=, ?status= and
// ?priority= (open tasks at that priority).
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if projectID, err := queryUUID(r, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	} else if projectID != uuid.Nil {
		tasks, err := h.svc.ListByProject(ctx, projectID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTaskList(tasks))
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		tasks, err := h.svc.ListByStatus(ctx, domain.TaskStatus(status))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTaskList(tasks))
		return
	}

	if priority := r.URL.Query().Get("priority"); priority != "" {
		tasks, err := h.svc.ListOpenByPriority(ctx, domain.TaskPriority(priority))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTaskList(tasks))
		return
	}

	tasks, err := h.svc.List(ctx)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskList(tasks))
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.svc.Update(r.Context(), task.UpdateInput{
		TaskID:         id,
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       taskPriorityPtr(req.Priority),
		AssignedTo:     req.AssignedTo,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.Tags,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// Transition handles POST /api/tasks/{id}/transition.
func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.svc.TransitionStatus(r.Context(), id, domain.TaskStatus(req.Status))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
