package jobs

import (
	"encoding/json"
	"strings"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup prebuilds the current year P and L for companies.
	TaskReportWarmup = "report:pl:warmup"
	// TaskReportCacheBump invalidates cached reports after ledger postings.
	TaskReportCacheBump = "report:cache:bump"
)

// ReportWarmupPayload lists the companies to warm. An empty list falls back to
// the worker's configured companies.
type ReportWarmupPayload struct {
	Companies []string `json:"companies,omitempty"`
}

// CacheBumpPayload records why cached reports are invalidated.
type CacheBumpPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewReportWarmupTask constructs a warmup task.
func NewReportWarmupTask(companies ...string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportWarmupPayload{Companies: cleanCompanies(companies)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// NewCacheBumpTask constructs a cache invalidation task.
func NewCacheBumpTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(CacheBumpPayload{Reason: strings.TrimSpace(reason)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportCacheBump, data), nil
}

func cleanCompanies(companies []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
