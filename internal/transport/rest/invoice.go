package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/billing"
)

// billingService defines the minimal interface needed by InvoiceHandler.
type billingService interface {
	CreateInvoice(ctx context.Context, input billing.CreateInvoiceInput) (*domain.Invoice, error)
	TransitionStatus(ctx context.Context, input billing.TransitionInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]domain.Invoice, error)
	ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)
	ListByDueDateRange(ctx context.Context, from, to time.Time) ([]domain.Invoice, error)
	ListOverdue(ctx context.Context) ([]domain.Invoice, error)
}

// InvoiceHandler serves invoice REST endpoints.
type InvoiceHandler struct {
	svc billingService
	log *slog.Logger
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(svc billingService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, log: logger.With("handler", "invoice")}
}

type invoiceItemPayload struct {
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
}

type invoiceTaxPayload struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

type createInvoiceRequest struct {
	ProjectID uuid.UUID            `json:"projectId"`
	ClientID  uuid.UUID            `json:"clientId"`
	DueDate   time.Time            `json:"dueDate"`
	Items     []invoiceItemPayload `json:"items"`
	Taxes     []invoiceTaxPayload  `json:"taxes,omitempty"`
	Notes     *string              `json:"notes,omitempty"`
	Terms     *string              `json:"terms,omitempty"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

type invoiceResponse struct {
	ID        string               `json:"id"`
	ProjectID string               `json:"projectId"`
	ClientID  string               `json:"clientId"`
	Reference string               `json:"reference"`
	Amount    float64              `json:"amount"`
	Status    string               `json:"status"`
	DueDate   time.Time            `json:"dueDate"`
	IssueDate time.Time            `json:"issueDate"`
	PaidDate  *time.Time           `json:"paidDate,omitempty"`
	Items     []invoiceItemPayload `json:"items"`
	Taxes     []invoiceTaxPayload  `json:"taxes,omitempty"`
	Notes     *string              `json:"notes,omitempty"`
	Terms     *string              `json:"terms,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	items := make([]invoiceItemPayload, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, invoiceItemPayload(item))
	}
	var taxes []invoiceTaxPayload
	for _, tax := range inv.Taxes {
		taxes = append(taxes, invoiceTaxPayload(tax))
	}
	return invoiceResponse{
		ID:        inv.ID.String(),
		ProjectID: inv.ProjectID.String(),
		ClientID:  inv.ClientID.String(),
		Reference: inv.Reference,
		Amount:    inv.Amount,
		Status:    inv.Status.String(),
		DueDate:   inv.DueDate,
		IssueDate: inv.IssueDate,
		PaidDate:  inv.PaidDate,
		Items:     items,
		Taxes:     taxes,
		Notes:     inv.Notes,
		Terms:     inv.Terms,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

func toInvoiceList(invoices []domain.Invoice) []invoiceResponse {
	out := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		out = append(out, toInvoiceResponse(&invoices[i]))
	}
	return out
}

// Create handles POST /api/invoices.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := billing.CreateInvoiceInput{
		ProjectID: req.ProjectID,
		ClientID:  req.ClientID,
		DueDate:   req.DueDate,
		Notes:     req.Notes,
		Terms:     req.Terms,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, billing.ItemInput(item))
	}
	for _, tax := range req.Taxes {
		input.Taxes = append(input.Taxes, billing.TaxInput(tax))
	}

	inv, err := h.svc.CreateInvoice(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

// Get handles GET /api/invoices/{id}.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// List handles GET /api/invoices. Supports the mutually independent
// filters ?status=, ?client_id=, ?project_id= and ?from=&to= (due-date
// range, to exclusive); without filters it returns every invoice.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if status := r.URL.Query().Get("status"); status != "" {
		invoices, err := h.svc.ListByStatus(ctx, domain.InvoiceStatus(status))
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceList(invoices))
		return
	}

	if clientID, err := queryUUID(r, "client_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
		return
	} else if clientID != uuid.Nil {
		invoices, err := h.svc.ListByClient(ctx, clientID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceList(invoices))
		return
	}

	if projectID, err := queryUUID(r, "project_id"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	} else if projectID != uuid.Nil {
		invoices, err := h.svc.ListByProject(ctx, projectID)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceList(invoices))
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
		invoices, err := h.svc.ListByDueDateRange(ctx, from, to)
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInvoiceList(invoices))
		return
	}

	invoices, err := h.svc.ListInvoices(ctx)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceList(invoices))
}

// Overdue handles GET /api/invoices/overdue.
func (h *InvoiceHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.svc.ListOverdue(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceList(invoices))
}

// Transition handles POST /api/invoices/{id}/transition.
func (h *InvoiceHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.svc.TransitionStatus(r.Context(), billing.TransitionInput{
		InvoiceID: id,
		Status:    domain.InvoiceStatus(req.Status),
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}
