package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/timeledger"
)

// timeledgerService defines the minimal interface needed by TimeEntryHandler.
type timeledgerService interface {
	RecordTime(ctx context.Context, input timeledger.RecordTimeInput) (*domain.TimeEntry, error)
	EditTime(ctx context.Context, input timeledger.EditTimeInput) (*domain.TimeEntry, error)
	DeleteTime(ctx context.Context, entryID uuid.UUID) error
	GetEntry(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntry, error)
	ListEntries(ctx context.Context) ([]domain.TimeEntry, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
	SelectBillable(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error)
	BillEntries(ctx context.Context, input timeledger.BillEntriesInput) (*domain.Invoice, error)
}

// TimeEntryHandler serves time-entry REST endpoints.
type TimeEntryHandler struct {
	svc timeledgerService
	log *slog.Logger
}

// NewTimeEntryHandler creates a TimeEntryHandler.
func NewTimeEntryHandler(svc timeledgerService, logger *slog.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{svc: svc, log: logger.With("handler", "timeentry")}
}

type recordTimeRequest struct {
	ProjectID   uuid.UUID  `json:"projectId"`
	TaskID      *uuid.UUID `json:"taskId,omitempty"`
	Date        time.Time  `json:"date"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	Billable    bool       `json:"billable"`
}

type editTimeRequest struct {
	Date        *time.Time `json:"date,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	Description *string    `json:"description,omitempty"`
	Billable    *bool      `json:"billable,omitempty"`
}

type billEntriesRequest struct {
	ProjectID uuid.UUID           `json:"projectId"`
	EntryIDs  []uuid.UUID         `json:"entryIds,omitempty"`
	DueDate   time.Time           `json:"dueDate"`
	Taxes     []invoiceTaxPayload `json:"taxes,omitempty"`
	Notes     *string             `json:"notes,omitempty"`
	Terms     *string             `json:"terms,omitempty"`
}

type timeEntryResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	TaskID      *string    `json:"taskId,omitempty"`
	Date        time.Time  `json:"date"`
	Duration    int        `json:"duration"`
	Description string     `json:"description"`
	Billable    bool       `json:"billable"`
	InvoiceID   *string    `json:"invoiceId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTimeEntryResponse(e *domain.TimeEntry) timeEntryResponse {
	resp := timeEntryResponse{
		ID:          e.ID.String(),
		ProjectID:   e.ProjectID.String(),
		Date:        e.Date,
		Duration:    e.Duration,
		Description: e.Description,
		Billable:    e.Billable,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.TaskID != nil {
		s := e.TaskID.String()
		resp.TaskID = &s
	}
	if e.InvoiceID != nil {
		s := e.InvoiceID.String()
		resp.InvoiceID = &s
	}
	return resp
}

func toTimeEntryList(entries []domain.TimeEntry) []timeEntryResponse {
	out := make([]timeEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toTimeEntryResponse(&entries[i]))
	}
	return out
}

// Create handles POST /api/time-entries.
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recordTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.RecordTime(r.Context(), timeledger.RecordTimeInput{
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Date:        req.Date,
		Duration:    req.Duration,
		Description: req.Description,
		Billable:    req.Billable,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTimeEntryResponse(entry))
}

// Get handles GET /api/time-entries/{id}.
func (h *TimeEntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimeEntryResponse(entry))
}

// List handles GET /api/time-entries. Supports ?project_id= and
// ?from=&to= (entry-date range, to exclusive).
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if projectID, err := queryUUID(r, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	} else if projectID != uuid.Nil {
		entries, err := h.svc.ListByProject(ctx, projectID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTimeEntryList(entries))
		return
	}

	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}
	if !from.IsZero() || !to.IsZero() {
		entries, err := h.svc.ListByDateRange(ctx, from, to)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toTimeEntryList(entries))
		return
	}

	entries, err := h.svc.ListEntries(ctx)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeEntryList(entries))
}

// Update handles PUT /api/time-entries/{id}.
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var req editTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.EditTime(r.Context(), timeledger.EditTimeInput{
		EntryID:     id,
		Date:        req.Date,
		Duration:    req.Duration,
		Description: req.Description,
		Billable:    req.Billable,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimeEntryResponse(entry))
}

// Delete handles DELETE /api/time-entries/{id}.
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.svc.DeleteTime(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Billable handles GET /api/time-entries/billable. An optional ?project_id=
// narrows the pool to one project; without it the whole account is scanned.
func (h *TimeEntryHandler) Billable(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryUUID(r, "project_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	entries, err := h.svc.SelectBillable(r.Context(), projectID)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimeEntryList(entries))
}

// Bill handles POST /api/time-entries/bill.
func (h *TimeEntryHandler) Bill(w http.ResponseWriter, r *http.Request) {
	var req billEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := timeledger.BillEntriesInput{
		ProjectID: req.ProjectID,
		EntryIDs:  req.EntryIDs,
		DueDate:   req.DueDate,
		Notes:     req.Notes,
		Terms:     req.Terms,
	}
	for _, tax := range req.Taxes {
		input.Taxes = append(input.Taxes, domain.Tax(tax))
	}

	inv, err := h.svc.BillEntries(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}
