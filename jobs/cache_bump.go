package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/worldrep/worldrep-report/internal/jobs"
)

// CacheInvalidator drops every cached report.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheBumpJob invalidates cached reports after ledger postings.
type CacheBumpJob struct {
	Invalidator CacheInvalidator
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
}

// NewCacheBumpJob wires dependencies for the cache bump handler.
func NewCacheBumpJob(invalidator CacheInvalidator, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Invalidator: invalidator, Logger: logger, Metrics: metrics}
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Invalidator == nil {
		return errors.New("cache bump: handler not configured")
	}
	var payload CacheBumpPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("cache bump: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskReportCacheBump)
	err := j.Invalidator.Invalidate(ctx)
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("bump report cache", slog.String("job", TaskReportCacheBump), slog.Any("error", err))
	} else {
		logger.Info("report cache bumped", slog.String("job", TaskReportCacheBump), slog.String("reason", payload.Reason))
	}
	return tracker.End(err)
}
