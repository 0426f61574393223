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
	"github.com/avelichko/freeops-backend/internal/service/timeledger"
)

type timeledgerServiceMock struct {
	RecordTimeFunc      func(ctx context.Context, input timeledger.RecordTimeInput) (*domain.TimeEntry, error)
	EditTimeFunc        func(ctx context.Context, input timeledger.EditTimeInput) (*domain.TimeEntry, error)
	DeleteTimeFunc      func(ctx context.Context, entryID uuid.UUID) error
	GetEntryFunc        func(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntry, error)
	ListEntriesFunc     func(ctx context.Context) ([]domain.TimeEntry, error)
	ListByProjectFunc   func(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error)
	ListByDateRangeFunc func(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
	SelectBillableFunc  func(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error)
	BillEntriesFunc     func(ctx context.Context, input timeledger.BillEntriesInput) (*domain.Invoice, error)
}

func (m *timeledgerServiceMock) RecordTime(ctx context.Context, input timeledger.RecordTimeInput) (*domain.TimeEntry, error) {
	return m.RecordTimeFunc(ctx, input)
}

func (m *timeledgerServiceMock) EditTime(ctx context.Context, input timeledger.EditTimeInput) (*domain.TimeEntry, error) {
	return m.EditTimeFunc(ctx, input)
}

func (m *timeledgerServiceMock) DeleteTime(ctx context.Context, entryID uuid.UUID) error {
	return m.DeleteTimeFunc(ctx, entryID)
}

func (m *timeledgerServiceMock) GetEntry(ctx context.Context, entryID uuid.UUID) (*domain.TimeEntry, error) {
	return m.GetEntryFunc(ctx, entryID)
}

func (m *timeledgerServiceMock) ListEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	return m.ListEntriesFunc(ctx)
}

func (m *timeledgerServiceMock) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	return m.ListByProjectFunc(ctx, projectID)
}

func (m *timeledgerServiceMock) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	return m.ListByDateRangeFunc(ctx, from, to)
}

func (m *timeledgerServiceMock) SelectBillable(ctx context.Context, projectID uuid.UUID) ([]domain.TimeEntry, error) {
	return m.SelectBillableFunc(ctx, projectID)
}

func (m *timeledgerServiceMock) BillEntries(ctx context.Context, input timeledger.BillEntriesInput) (*domain.Invoice, error) {
	return m.BillEntriesFunc(ctx, input)
}

func TestTimeEntryHandler_Create(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	entry := &domain.TimeEntry{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Date:        time.Date(2025, time.September, 10, 0, 0, 0, 0, time.UTC),
		Duration:    90,
		Description: "API integration",
		Billable:    true,
	}
	svc := &timeledgerServiceMock{
		RecordTimeFunc: func(_ context.Context, input timeledger.RecordTimeInput) (*domain.TimeEntry, error) {
			assert.Equal(t, projectID, input.ProjectID)
			assert.Equal(t, 90, input.Duration)
			return entry, nil
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	body := fmt.Sprintf(`{"projectId":%q,"date":"2025-09-10T00:00:00Z","duration":90,"description":"API integration","billable":true}`, projectID)
	req := httptest.NewRequest(http.MethodPost, "/api/time-entries", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp timeEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 90, resp.Duration)
	assert.True(t, resp.Billable)
	assert.Nil(t, resp.InvoiceID)
}

func TestTimeEntryHandler_Update_Billed(t *testing.T) {
	t.Parallel()

	svc := &timeledgerServiceMock{
		EditTimeFunc: func(context.Context, timeledger.EditTimeInput) (*domain.TimeEntry, error) {
			return nil, fmt.Errorf("time entry is billed: %w", domain.ErrConflict)
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodPut, "/api/time-entries/"+id, bytes.NewBufferString(`{"duration":60}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTimeEntryHandler_Delete(t *testing.T) {
	t.Parallel()

	entryID := uuid.New()
	svc := &timeledgerServiceMock{
		DeleteTimeFunc: func(_ context.Context, id uuid.UUID) error {
			assert.Equal(t, entryID, id)
			return nil
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodDelete, "/api/time-entries/"+entryID.String(), nil)
	req.SetPathValue("id", entryID.String())
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTimeEntryHandler_Bill(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	inv := testInvoice()
	svc := &timeledgerServiceMock{
		BillEntriesFunc: func(_ context.Context, input timeledger.BillEntriesInput) (*domain.Invoice, error) {
			assert.Equal(t, projectID, input.ProjectID)
			assert.Empty(t, input.EntryIDs)
			return inv, nil
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	body := fmt.Sprintf(`{"projectId":%q,"dueDate":"2025-10-01T00:00:00Z"}`, projectID)
	req := httptest.NewRequest(http.MethodPost, "/api/time-entries/bill", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.Bill(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp invoiceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, inv.Reference, resp.Reference)
}

func TestTimeEntryHandler_Billable(t *testing.T) {
	t.Parallel()

	projectID := uuid.New()
	svc := &timeledgerServiceMock{
		SelectBillableFunc: func(_ context.Context, id uuid.UUID) ([]domain.TimeEntry, error) {
			assert.Equal(t, projectID, id)
			return []domain.TimeEntry{{ID: uuid.New(), ProjectID: projectID, Duration: 30, Billable: true}}, nil
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/time-entries/billable?project_id="+projectID.String(), nil)
	rec := httptest.NewRecorder()

	h.Billable(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []timeEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 1)
}

func TestTimeEntryHandler_Billable_NoProjectFilter(t *testing.T) {
	t.Parallel()

	svc := &timeledgerServiceMock{
		SelectBillableFunc: func(_ context.Context, id uuid.UUID) ([]domain.TimeEntry, error) {
			assert.Equal(t, uuid.Nil, id)
			return []domain.TimeEntry{
				{ID: uuid.New(), ProjectID: uuid.New(), Duration: 45, Billable: true},
				{ID: uuid.New(), ProjectID: uuid.New(), Duration: 60, Billable: true},
			}, nil
		},
	}
	h := NewTimeEntryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/time-entries/billable", nil)
	rec := httptest.NewRecorder()

	h.Billable(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []timeEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
}
