package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/app"
	"github.com/worldrep/worldrep-report/internal/observability"
	"github.com/worldrep/worldrep-report/internal/platform/cache"
	"github.com/worldrep/worldrep-report/internal/platform/db"
	"github.com/worldrep/worldrep-report/jobs"
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

	logger := app.NewLogger(cfg, "worker")

	pool, err := db.New(ctx, cfg.PGDSN, db.WithMaxConns(cfg.PGMaxConns), db.WithStatementTimeout(cfg.PGStatementTimeout))
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledgerRepo := ledger.NewRepository(pool)
	dims, err := ledgerRepo.AccountingDimensions(ctx)
	if err != nil {
		logger.Error("load accounting dimensions", slog.Any("error", err))
		os.Exit(1)
	}
	registry, err := app.BuildRegistry(cfg, dims)
	if err != nil {
		logger.Error("register report filters", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	pnlService := pnl.NewService(ledgerRepo, registry,
		pnl.WithCache(pnl.NewCache(redisClient, cfg.ReportCacheTTL)),
		pnl.WithObserver(metrics),
		pnl.WithLogger(logger),
	)

	warmupJob := jobs.NewReportWarmupJob(pnlService, cfg.WarmupCompanies, logger, metrics.Jobs())
	bumpJob := jobs.NewCacheBumpJob(pnlService, logger, metrics.Jobs())

	warmupTask, err := jobs.NewReportWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	var cron []jobs.CronRegistration
	if cfg.WarmupCron != "" {
		cron = append(cron, jobs.CronRegistration{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskReportCacheBump, Handler: bumpJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("warmup_cron", cfg.WarmupCron), slog.Int("companies", len(cfg.WarmupCompanies)))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
