package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/observability"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
	_ "github.com/worldrep/worldrep-report/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 10*time.Minute, cfg.ReportCacheTTL)
	assert.Equal(t, 10, cfg.ReportDimensionPosition)
	assert.Equal(t, "15 1 * * *", cfg.WarmupCron)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigLists(t *testing.T) {
	t.Setenv("REPORT_HIDDEN_ROWS", "total:opex,profit_from_operations")
	t.Setenv("WARMUP_COMPANIES", "Acme,Globex")
	t.Setenv("APP_ENV", "production")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"total:opex", "profit_from_operations"}, cfg.ReportHiddenRows)
	assert.Equal(t, []string{"Acme", "Globex"}, cfg.WarmupCompanies)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("REPORT_DIMENSION_POSITION", "-1")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"}, "reportd")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	out := buf.String()
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"service":"reportd"`)
}

func TestNewLoggerDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, nil, "").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestInTestMode(t *testing.T) {
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestRouterHealthAndHeaders(t *testing.T) {
	router := NewRouter(RouterParams{Config: &Config{}, Metrics: observability.NewMetrics()})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "worldrep_http_requests_total")
}

func TestBuildRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filters.yml")
	require.NoError(t, os.WriteFile(path, []byte(`reports:
  P and L:
    filters:
      - fieldname: accumulated_values
        label: Accumulated Values
        fieldtype: Check
        default: 0
`), 0o600))

	cfg := &Config{
		ReportDimensionPosition: 10,
		ReportFiltersFile:       path,
		ReportHiddenRows:        []string{" total:opex ", ""},
	}
	dims := []reportfilter.Dimension{{Fieldname: "branch", Label: "Branch", DocumentType: "Branch"}}
	reg, err := BuildRegistry(cfg, dims)
	require.NoError(t, err)

	filters, err := reg.Filters(pnl.ReportName)
	require.NoError(t, err)
	assert.Equal(t, "branch", filters[10].Fieldname)

	d, ok := reg.Filter(pnl.ReportName, pnl.FieldAccumulatedValues)
	require.True(t, ok)
	assert.False(t, d.CheckDefault())

	hidden := reg.RunRowHooks(pnl.ReportName, []string{"total:income", "total:opex"})
	assert.Equal(t, map[string]struct{}{"total:opex": {}}, hidden)
}

func TestBuildRegistryRejectsBadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.yml")
	require.NoError(t, os.WriteFile(path, []byte("reports: ["), 0o600))
	_, err := BuildRegistry(&Config{ReportFiltersFile: path}, nil)
	assert.Error(t, err)
}
