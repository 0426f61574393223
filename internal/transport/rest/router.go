package rest

import (
	"net/http"

	"github.com/avelichko/freeops-backend/internal/transport/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health    *HealthHandler
	Invoice   *InvoiceHandler
	TimeEntry *TimeEntryHandler
	Report    *ReportHandler
	Client    *ClientHandler
	Project   *ProjectHandler
	Task      *TaskHandler
}

// NewRouter builds the HTTP routing table. Health probes stay outside the
// auth middleware; everything under /api/ requires a bearer token.
func NewRouter(h Handlers, auth middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health.Live)
	mux.HandleFunc("GET /readyz", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	api := http.NewServeMux()

	api.HandleFunc("POST /api/invoices", h.Invoice.Create)
	api.HandleFunc("GET /api/invoices", h.Invoice.List)
	api.HandleFunc("GET /api/invoices/overdue", h.Invoice.Overdue)
	api.HandleFunc("GET /api/invoices/{id}", h.Invoice.Get)
	api.HandleFunc("POST /api/invoices/{id}/transition", h.Invoice.Transition)

	api.HandleFunc("POST /api/time-entries", h.TimeEntry.Create)
	api.HandleFunc("GET /api/time-entries", h.TimeEntry.List)
	api.HandleFunc("GET /api/time-entries/billable", h.TimeEntry.Billable)
	api.HandleFunc("POST /api/time-entries/bill", h.TimeEntry.Bill)
	api.HandleFunc("GET /api/time-entries/{id}", h.TimeEntry.Get)
	api.HandleFunc("PUT /api/time-entries/{id}", h.TimeEntry.Update)
	api.HandleFunc("DELETE /api/time-entries/{id}", h.TimeEntry.Delete)

	api.HandleFunc("GET /api/reports/revenue", h.Report.Revenue)
	api.HandleFunc("GET /api/reports/distribution", h.Report.Distribution)
	api.HandleFunc("GET /api/reports/hours", h.Report.Hours)
	api.HandleFunc("GET /api/reports/stats", h.Report.Stats)

	api.HandleFunc("POST /api/clients", h.Client.Create)
	api.HandleFunc("GET /api/clients", h.Client.List)
	api.HandleFunc("GET /api/clients/{id}", h.Client.Get)
	api.HandleFunc("PUT /api/clients/{id}", h.Client.Update)
	api.HandleFunc("DELETE /api/clients/{id}", h.Client.Delete)
	api.HandleFunc("POST /api/clients/{id}/touch-contact", h.Client.TouchContact)

	api.HandleFunc("POST /api/projects", h.Project.Create)
	api.HandleFunc("GET /api/projects", h.Project.List)
	api.HandleFunc("GET /api/projects/{id}", h.Project.Get)
	api.HandleFunc("PUT /api/projects/{id}", h.Project.Update)
	api.HandleFunc("DELETE /api/projects/{id}", h.Project.Delete)

	api.HandleFunc("POST /api/tasks", h.Task.Create)
	api.HandleFunc("GET /api/tasks", h.Task.List)
	api.HandleFunc("GET /api/tasks/{id}", h.Task.Get)
	api.HandleFunc("PUT /api/tasks/{id}", h.Task.Update)
	api.HandleFunc("DELETE /api/tasks/{id}", h.Task.Delete)
	api.HandleFunc("POST /api/tasks/{id}/transition", h.Task.Transition)

	mux.Handle("/api/", auth(api))

	return mux
}
