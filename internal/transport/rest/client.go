package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/client"
)

// clientService defines the minimal interface needed by ClientHandler.
type clientService interface {
	Create(ctx context.Context, input client.CreateInput) (*domain.Client, error)
	Update(ctx context.Context, input client.UpdateInput) (*domain.Client, error)
	Delete(ctx context.Context, clientID uuid.UUID) error
	Get(ctx context.Context, clientID uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	ListByStatus(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error)
	ListByTag(ctx context.Context, tag string) ([]domain.Client, error)
	TouchContact(ctx context.Context, clientID uuid.UUID) error
}

// ClientHandler serves client REST endpoints.
type ClientHandler struct {
	svc clientService
	log *slog.Logger
}

// NewClientHandler creates a ClientHandler.
func NewClientHandler(svc clientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, log: logger.With("handler", "client")}
}

type createClientRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
	Company *string  `json:"company,omitempty"`
	Website *string  `json:"website,omitempty"`
	Notes   *string  `json:"notes,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Source  *string  `json:"source,omitempty"`
	Status  *string  `json:"status,omitempty"`
}

type updateClientRequest struct {
	Name    *string  `json:"name,omitempty"`
	Email   *string  `json:"email,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
	Company *string  `json:"company,omitempty"`
	Website *string  `json:"website,omitempty"`
	Notes   *string  `json:"notes,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Source  *string  `json:"source,omitempty"`
	Status  *string  `json:"status,omitempty"`
}

type clientResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           *string    `json:"phone,omitempty"`
	Address         *string    `json:"address,omitempty"`
	Company         *string    `json:"company,omitempty"`
	Website         *string    `json:"website,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Source          *string    `json:"source,omitempty"`
	Status          string     `json:"status"`
	LastContactDate *time.Time `json:"lastContactDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Address:         c.Address,
		Company:         c.Company,
		Website:         c.Website,
		Notes:           c.Notes,
		Tags:            c.Tags,
		Source:          c.Source,
		Status:          c.Status.String(),
		LastContactDate: c.LastContactDate,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toClientList(clients []domain.Client) []clientResponse {
	out := make([]clientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, toClientResponse(&clients[i]))
	}
	return out
}

func clientStatusPtr(s *string) *domain.ClientStatus {
	if s == nil {
		return nil
	}
	v := domain.ClientStatus(*s)
	return &v
}

// Create handles POST /api/clients.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.Create(r.Context(), client.CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
		Website: req.Website,
		Notes:   req.Notes,
		Tags:    req.Tags,
		Source:  req.Source,
		Status:  clientStatusPtr(req.Status),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClientResponse(c))
}

// Get handles GET /api/clients/{id}.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(c))
}

// List handles GET /api/clients. Supports ?status= and ?tag=.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if status := r.URL.Query().Get("status"); status != "" {
		clients, err := h.svc.ListByStatus(ctx, domain.ClientStatus(status))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientList(clients))
		return
	}

	if tag := r.URL.Query().Get("tag"); tag != "" {
		clients, err := h.svc.ListByTag(ctx, tag)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientList(clients))
		return
	}

	clients, err := h.svc.List(ctx)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientList(clients))
}

// Update handles PUT /api/clients/{id}.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req updateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.svc.Update(r.Context(), client.UpdateInput{
		ClientID: id,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Company:  req.Company,
		Website:  req.Website,
		Notes:    req.Notes,
		Tags:     req.Tags,
		Source:   req.Source,
		Status:   clientStatusPtr(req.Status),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(c))
}

// Delete handles DELETE /api/clients/{id}.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TouchContact handles POST /api/clients/{id}/touch-contact.
func (h *ClientHandler) TouchContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := h.svc.TouchContact(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
