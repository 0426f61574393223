package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/avelichko/freeops-backend/internal/adapter/postgres"
	clientrepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/client"
	invoicerepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/invoice"
	projectrepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/project"
	reportrepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/report"
	taskrepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/task"
	timeentryrepo "github.com/avelichko/freeops-backend/internal/adapter/postgres/timeentry"
	"github.com/avelichko/freeops-backend/internal/auth"
	"github.com/avelichko/freeops-backend/internal/config"
	"github.com/avelichko/freeops-backend/internal/service/billing"
	"github.com/avelichko/freeops-backend/internal/service/client"
	"github.com/avelichko/freeops-backend/internal/service/project"
	"github.com/avelichko/freeops-backend/internal/service/report"
	"github.com/avelichko/freeops-backend/internal/service/task"
	"github.com/avelichko/freeops-backend/internal/service/timeledger"
	"github.com/avelichko/freeops-backend/internal/transport/middleware"
	"github.com/avelichko/freeops-backend/internal/transport/rest"
)

// Run wires the application together and blocks until ctx is cancelled or
// the HTTP server fails. Shutdown is graceful within the configured timeout.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting freeops backend", "version", BuildVersion())

	if cfg.Database.MigrateOnStart {
		if err := Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	clients := clientrepo.NewRepo(pool)
	projects := projectrepo.NewRepo(pool)
	tasks := taskrepo.NewRepo(pool)
	entries := timeentryrepo.NewRepo(pool)
	invoices := invoicerepo.NewRepo(pool)
	reports := reportrepo.NewRepo(pool)
	tx := postgres.NewTxManager(pool)

	billingSvc := billing.NewService(logger, invoices, projects, tx, cfg.Billing)
	ledgerSvc := timeledger.NewService(logger, entries, projects, tasks, invoices, tx, cfg.Billing)
	reportSvc := report.NewService(logger, reports)
	clientSvc := client.NewService(logger, clients)
	projectSvc := project.NewService(logger, projects, clients)
	taskSvc := task.NewService(logger, tasks, projects)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	handlers := rest.Handlers{
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
		Invoice:   rest.NewInvoiceHandler(billingSvc, logger),
		TimeEntry: rest.NewTimeEntryHandler(ledgerSvc, logger),
		Report:    rest.NewReportHandler(reportSvc, logger),
		Client:    rest.NewClientHandler(clientSvc, logger),
		Project:   rest.NewProjectHandler(projectSvc, logger),
		Task:      rest.NewTaskHandler(taskSvc, logger),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.MaxPerMinute, cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if cfg.RateLimit.Enabled {
		mws = append(mws, limiter.Limit())
	}

	router := rest.NewRouter(handlers, middleware.Auth(jwtManager))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      middleware.Chain(mws...)(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
