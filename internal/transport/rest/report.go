package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/avelichko/freeops-backend/internal/domain"
)

// reportService defines the minimal interface needed by ReportHandler.
type reportService interface {
	MonthlyRevenue(ctx context.Context) ([]domain.MonthBucket, error)
	StatusDistribution(ctx context.Context, kind domain.DistributionKind) (domain.Distribution, error)
	MonthlyBillableHours(ctx context.Context) (float64, error)
	TopLineStats(ctx context.Context) (*domain.TopLineStats, error)
}

// ReportHandler serves reporting REST endpoints.
type ReportHandler struct {
	svc reportService
	log *slog.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(svc reportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, log: logger.With("handler", "report")}
}

type monthBucketResponse struct {
	Month time.Time `json:"month"`
	Total float64   `json:"total"`
	Paid  float64   `json:"paid"`
}

type statsResponse struct {
	PaidRevenue     float64 `json:"paidRevenue"`
	PendingRevenue  float64 `json:"pendingRevenue"`
	PendingInvoices int     `json:"pendingInvoices"`
	OverdueInvoices int     `json:"overdueInvoices"`
	ActiveProjects  int     `json:"activeProjects"`
	ActiveClients   int     `json:"activeClients"`
	UrgentTasks     int     `json:"urgentTasks"`
}

// Revenue handles GET /api/reports/revenue.
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.MonthlyRevenue(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]monthBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, monthBucketResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// Distribution handles GET /api/reports/distribution?kind=.
func (h *ReportHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	kind := domain.DistributionKind(r.URL.Query().Get("kind"))

	dist, err := h.svc.StatusDistribution(r.Context(), kind)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dist)
}

// Hours handles GET /api/reports/hours.
func (h *ReportHandler) Hours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.svc.MonthlyBillableHours(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"billableHours": hours})
}

// Stats handles GET /api/reports/stats.
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.TopLineStats(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse(*stats))
}
