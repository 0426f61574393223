package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/freeops-backend/internal/domain"
	"github.com/avelichko/freeops-backend/internal/service/billing"
)

type billingServiceMock struct {
	CreateInvoiceFunc      func(ctx context.Context, input billing.CreateInvoiceInput) (*domain.Invoice, error)
	TransitionStatusFunc   func(ctx context.Context, input billing.TransitionInput) (*domain.Invoice, error)
	GetInvoiceFunc         func(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoicesFunc       func(ctx context.Context) ([]domain.Invoice, error)
	ListByStatusFunc       func(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error)
	ListByClientFunc       func(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error)
	ListByProjectFunc      func(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error)
	ListByDueDateRangeFunc func(ctx context.Context, from, to time.Time) ([]domain.Invoice, error)
	ListOverdueFunc        func(ctx context.Context) ([]domain.Invoice, error)
}

func (m *billingServiceMock) CreateInvoice(ctx context.Context, input billing.CreateInvoiceInput) (*domain.Invoice, error) {
	return m.CreateInvoiceFunc(ctx, input)
}

func (m *billingServiceMock) TransitionStatus(ctx context.Context, input billing.TransitionInput) (*domain.Invoice, error) {
	return m.TransitionStatusFunc(ctx, input)
}

func (m *billingServiceMock) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return m.GetInvoiceFunc(ctx, invoiceID)
}

func (m *billingServiceMock) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return m.ListInvoicesFunc(ctx)
}

func (m *billingServiceMock) ListByStatus(ctx context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
	return m.ListByStatusFunc(ctx, status)
}

func (m *billingServiceMock) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Invoice, error) {
	return m.ListByClientFunc(ctx, clientID)
}

func (m *billingServiceMock) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Invoice, error) {
	return m.ListByProjectFunc(ctx, projectID)
}

func (m *billingServiceMock) ListByDueDateRange(ctx context.Context, from, to time.Time) ([]domain.Invoice, error) {
	return m.ListByDueDateRangeFunc(ctx, from, to)
}

func (m *billingServiceMock) ListOverdue(ctx context.Context) ([]domain.Invoice, error) {
	return m.ListOverdueFunc(ctx)
}

func testInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		ProjectID: uuid.New(),
		ClientID:  uuid.New(),
		Reference: "INV-2509-0001",
		Amount:    500,
		Status:    domain.InvoiceStatusPending,
		DueDate:   time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC),
		IssueDate: time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC),
		Items:     []domain.InvoiceItem{{Description: "Consulting", Hours: 10, Rate: 50}},
	}
}

func TestInvoiceHandler_Create(t *testing.T) {
	t.Parallel()

	inv := testInvoice()
	svc := &billingServiceMock{
		CreateInvoiceFunc: func(_ context.Context, input billing.CreateInvoiceInput) (*domain.Invoice, error) {
			assert.Len(t, input.Items, 1)
			return inv, nil
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	body := fmt.Sprintf(`{"projectId":%q,"clientId":%q,"dueDate":"2025-10-01T00:00:00Z","items":[{"description":"Consulting","hours":10,"rate":50}]}`,
		inv.ProjectID, inv.ClientID)
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp invoiceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INV-2509-0001", resp.Reference)
	assert.Equal(t, 500.0, resp.Amount)
	assert.Equal(t, "pending", resp.Status)
}

func TestInvoiceHandler_Create_BadBody(t *testing.T) {
	t.Parallel()

	h := NewInvoiceHandler(&billingServiceMock{}, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceHandler_Create_ValidationError(t *testing.T) {
	t.Parallel()

	svc := &billingServiceMock{
		CreateInvoiceFunc: func(context.Context, billing.CreateInvoiceInput) (*domain.Invoice, error) {
			return nil, domain.NewValidationError("items", "required")
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceHandler_Transition_Invalid(t *testing.T) {
	t.Parallel()

	svc := &billingServiceMock{
		TransitionStatusFunc: func(context.Context, billing.TransitionInput) (*domain.Invoice, error) {
			return nil, &domain.TransitionError{From: domain.InvoiceStatusPaid, To: domain.InvoiceStatusPending}
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+uuid.NewString()+"/transition",
		bytes.NewBufferString(`{"status":"pending"}`))
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()

	h.Transition(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestInvoiceHandler_Transition_Paid(t *testing.T) {
	t.Parallel()

	inv := testInvoice()
	inv.Status = domain.InvoiceStatusPaid
	paid := time.Date(2025, time.September, 20, 9, 0, 0, 0, time.UTC)
	inv.PaidDate = &paid

	svc := &billingServiceMock{
		TransitionStatusFunc: func(_ context.Context, input billing.TransitionInput) (*domain.Invoice, error) {
			assert.Equal(t, inv.ID, input.InvoiceID)
			assert.Equal(t, domain.InvoiceStatusPaid, input.Status)
			return inv, nil
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+inv.ID.String()+"/transition",
		bytes.NewBufferString(`{"status":"paid"}`))
	req.SetPathValue("id", inv.ID.String())
	rec := httptest.NewRecorder()

	h.Transition(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp invoiceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "paid", resp.Status)
	require.NotNil(t, resp.PaidDate)
	assert.Equal(t, paid, *resp.PaidDate)
}

func TestInvoiceHandler_Get_NotFound(t *testing.T) {
	t.Parallel()

	svc := &billingServiceMock{
		GetInvoiceFunc: func(context.Context, uuid.UUID) (*domain.Invoice, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+uuid.NewString(), nil)
	req.SetPathValue("id", uuid.NewString())
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvoiceHandler_Get_BadID(t *testing.T) {
	t.Parallel()

	h := NewInvoiceHandler(&billingServiceMock{}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoiceHandler_List_StatusFilter(t *testing.T) {
	t.Parallel()

	svc := &billingServiceMock{
		ListByStatusFunc: func(_ context.Context, status domain.InvoiceStatus) ([]domain.Invoice, error) {
			assert.Equal(t, domain.InvoiceStatusPaid, status)
			return []domain.Invoice{*testInvoice()}, nil
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices?status=paid", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []invoiceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestInvoiceHandler_Overdue(t *testing.T) {
	t.Parallel()

	svc := &billingServiceMock{
		ListOverdueFunc: func(context.Context) ([]domain.Invoice, error) {
			return nil, nil
		},
	}
	h := NewInvoiceHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/invoices/overdue", nil)
	rec := httptest.NewRecorder()

	h.Overdue(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []invoiceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Empty(t, resp)
}
