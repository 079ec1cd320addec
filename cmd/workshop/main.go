package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/app"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/auth"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/dashboard"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/invoices"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobcards"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/observability"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/parts"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/cache"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/db"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/rbac"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	shared.SetDisplayLocation(cfg.DisplayTimezone)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "workshop_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)
	locker := shared.NewLocker(redisClient, cfg.JobCardLockTTL)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	roleHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	partsRepo := parts.NewRepository(dbpool)

	jobCardRepo := jobcards.NewRepository(dbpool)
	jobCardService := jobcards.NewService(jobCardRepo, partsRepo, locker, auditLogger, logger)
	jobCardHandler := jobcards.NewHandler(logger, jobCardService, rbacMiddleware, metrics)

	invoiceRepo := invoices.NewRepository(dbpool)
	invoiceNotifier := jobs.NewInvoiceNotifier(jobClient)
	invoiceService := invoices.NewService(invoiceRepo, jobCardService, locker, auditLogger, invoiceNotifier, logger)
	invoiceHandler := invoices.NewHandler(logger, invoiceService, rbacMiddleware, metrics)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardTTL)
	dashboardService := dashboard.NewService(dashboardRepo, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthHandler:      authHandler,
		JobCardHandler:   jobCardHandler,
		InvoiceHandler:   invoiceHandler,
		DashboardHandler: dashboardHandler,
		RoleHandler:      roleHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
