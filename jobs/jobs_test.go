package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	jobmetrics "github.com/worldrep/worldrep-report/internal/jobs"
	_ "github.com/worldrep/worldrep-report/testing"
)

type fakeWarmer struct {
	failures map[string]error
	warmed   []string
}

func (f *fakeWarmer) Warmup(_ context.Context, company string) (pnl.Report, error) {
	if err := f.failures[company]; err != nil {
		return pnl.Report{}, err
	}
	f.warmed = append(f.warmed, company)
	return pnl.Report{Company: company}, nil
}

type fakeInvalidator struct {
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}

func TestNewReportWarmupTaskCleansCompanies(t *testing.T) {
	task, err := NewReportWarmupTask(" Acme ", "", "Acme", "Globex")
	require.NoError(t, err)
	assert.Equal(t, TaskReportWarmup, task.Type())

	var payload ReportWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, []string{"Acme", "Globex"}, payload.Companies)
}

func TestReportWarmupUsesPayloadCompanies(t *testing.T) {
	warmer := &fakeWarmer{}
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	job := NewReportWarmupJob(warmer, []string{"Configured"}, nil, metrics)

	task, err := NewReportWarmupTask("Acme", "Globex")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"Acme", "Globex"}, warmer.warmed)

	count, err := testutil.GatherAndCount(reg, "worldrep_report_warmups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestReportWarmupFallsBackToConfiguredCompanies(t *testing.T) {
	warmer := &fakeWarmer{}
	job := NewReportWarmupJob(warmer, []string{"Acme", " ", "Acme"}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskReportWarmup, nil)))
	assert.Equal(t, []string{"Acme"}, warmer.warmed)
}

func TestReportWarmupContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	warmer := &fakeWarmer{failures: map[string]error{"Acme": boom}}
	reg := prometheus.NewRegistry()
	job := NewReportWarmupJob(warmer, nil, nil, jobmetrics.NewMetrics(reg))

	task, err := NewReportWarmupTask("Acme", "Globex")
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"Globex"}, warmer.warmed)

	count, err := testutil.GatherAndCount(reg, "worldrep_jobs_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReportWarmupRejectsBadPayload(t *testing.T) {
	job := NewReportWarmupJob(&fakeWarmer{}, nil, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskReportWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCacheBumpJob(t *testing.T) {
	inv := &fakeInvalidator{}
	job := NewCacheBumpJob(inv, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := NewCacheBumpTask(" journal posted ")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, 1, inv.calls)

	var payload CacheBumpPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "journal posted", payload.Reason)

	inv.err = errors.New("redis down")
	assert.Error(t, job.Handle(context.Background(), task))

	var nilJob *CacheBumpJob
	assert.Error(t, nilJob.Handle(context.Background(), task))
}

func TestNewWorkerRejectsInvalidCron(t *testing.T) {
	mr := miniredis.RunT(t)
	task, err := NewReportWarmupTask()
	require.NoError(t, err)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	assert.Error(t, err)

	w, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Handlers:  []TaskHandler{{Type: TaskReportWarmup, Handler: NewReportWarmupJob(&fakeWarmer{}, nil, nil, nil).Handle}},
		Cron:      []CronRegistration{{Spec: "15 1 * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, w.scheduler)
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil).MountRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}
