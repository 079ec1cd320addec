package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/app"
	jobmetrics "github.com/Jacobmwita/FINAL-LEWA--sub002/internal/jobs"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/platform/db"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/internal/shared"
	"github.com/Jacobmwita/FINAL-LEWA--sub002/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)
	staleJob := jobs.NewStaleScanJob(pool, logger, metrics)
	invoiceEmail := jobs.InvoiceEmailHandler{
		FinanceEmail: cfg.FinanceEmail,
		Enqueuer:     client,
	}

	staleTask, err := jobs.NewStaleScanTask(jobs.StaleScanPayload{})
	if err != nil {
		logger.Error("build stale scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeStaleScan, Handler: staleJob.Handle},
			{Type: jobs.TaskTypeInvoiceEmail, Handler: invoiceEmail.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: staleTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
