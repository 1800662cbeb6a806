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

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	pnlhttp "github.com/worldrep/worldrep-report/internal/accounting/pnl/http"
	"github.com/worldrep/worldrep-report/internal/app"
	"github.com/worldrep/worldrep-report/internal/i18n"
	"github.com/worldrep/worldrep-report/internal/observability"
	"github.com/worldrep/worldrep-report/internal/platform/cache"
	"github.com/worldrep/worldrep-report/internal/platform/db"
	"github.com/worldrep/worldrep-report/jobs"
	"github.com/worldrep/worldrep-report/report"
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

	logger := app.NewLogger(cfg, "reportd")

	dbpool, err := db.New(ctx, cfg.PGDSN, db.WithMaxConns(cfg.PGMaxConns), db.WithStatementTimeout(cfg.PGStatementTimeout))
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ledgerRepo := ledger.NewRepository(dbpool)
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
	reportCache := pnl.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, pnl.BumpChannel); err != nil {
		logger.Warn("subscribe report cache bumps", slog.Any("error", err))
	}
	pnlService := pnl.NewService(ledgerRepo, registry,
		pnl.WithCache(reportCache),
		pnl.WithObserver(metrics),
		pnl.WithLogger(logger),
	)

	translator := i18n.New(i18n.Parse(cfg.DefaultLanguage))
	reportClient := report.NewClient(cfg.GotenbergURL)
	reportsHandler := pnlhttp.NewHandler(logger, pnlService, registry, translator, reportClient)
	pdfHandler := report.NewHandler(reportClient, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		ReportsHandler: reportsHandler,
		PDFHandler:     pdfHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.Int("dimensions", len(dims)))
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
