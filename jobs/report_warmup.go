package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	jobmetrics "github.com/worldrep/worldrep-report/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportWarmer prebuilds the current fiscal year statement of a company.
type ReportWarmer interface {
	Warmup(ctx context.Context, company string) (pnl.Report, error)
}

// ReportWarmupJob pre-populates the report cache for configured companies.
type ReportWarmupJob struct {
	Warmer    ReportWarmer
	Companies []string
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Timeout   time.Duration
	clock     func() time.Time
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(warmer ReportWarmer, companies []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Warmer:    warmer,
		Companies: cleanCompanies(companies),
		Logger:    logger,
		Metrics:   metrics,
		Timeout:   20 * time.Second,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warmup tasks. Every company is attempted; failures
// are joined into the returned error so asynq retries the task.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("report warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	companies := cleanCompanies(payload.Companies)
	if len(companies) == 0 {
		companies = j.Companies
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if len(companies) == 0 {
		logger.Info("no companies configured for warmup")
		return resultErr
	}
	logger.Info("starting report warmup", slog.Int("companies", len(companies)))

	start := j.now()
	var errs []error
	for _, company := range companies {
		if err := j.warmCompany(ctx, company); err != nil {
			logger.Error("warm company", slog.String("company", company), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("%s: %w", company, err))
			continue
		}
		j.metrics().AddWarmed(company, 1)
	}
	resultErr = errors.Join(errs...)
	logger.Info("completed report warmup",
		slog.Int("companies", len(companies)),
		slog.Int("failed", len(errs)),
		slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *ReportWarmupJob) warmCompany(ctx context.Context, company string) error {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	_, err := j.Warmer.Warmup(ctx, company)
	return err
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
