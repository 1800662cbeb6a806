// Package http exposes the profit and loss report over HTTP.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"golang.org/x/text/language"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/i18n"
	"github.com/worldrep/worldrep-report/internal/platform/httpx"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

// ReportService builds profit and loss statements.
type ReportService interface {
	Defaults(company string) pnl.Filters
	Build(ctx context.Context, f pnl.Filters) (pnl.Report, error)
}

// PDFRenderer converts statement HTML into PDF.
type PDFRenderer interface {
	Ready() bool
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Handler wires HTTP interactions for the profit and loss report.
type Handler struct {
	logger     *slog.Logger
	service    ReportService
	registry   *reportfilter.Registry
	translator *i18n.Translator
	pdf        PDFRenderer
	rateLimit  func(http.Handler) http.Handler
}

// NewHandler constructs the report handler. Exports are limited to 10 requests
// per minute per client address.
func NewHandler(logger *slog.Logger, service ReportService, registry *reportfilter.Registry, translator *i18n.Translator, pdf PDFRenderer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{
		logger:     logger,
		service:    service,
		registry:   registry,
		translator: translator,
		pdf:        pdf,
		rateLimit:  limiter,
	}
}

// MountRoutes registers the report endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/reports/{report}/filters", h.HandleFilters)
	r.Get("/api/reports/p-and-l", h.HandleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/reports/p-and-l/export.csv", h.HandleExportCSV)
		r.Get("/reports/p-and-l/export.xlsx", h.HandleExportXLSX)
		r.Get("/reports/p-and-l/pdf", h.HandleExportPDF)
	})
}

// HandleFilters returns the localized filter descriptors of a report. The
// report segment accepts the registry name or its slug ("p-and-l").
func (h *Handler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	name := reportName(h.registry, chi.URLParam(r, "report"))
	filters, err := h.registry.Filters(name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	tag := h.language(r)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"report":   name,
		"language": tag.String(),
		"filters":  reportfilter.Localize(filters, h.translator.Func(tag)),
	})
}

// HandleGet returns the statement as JSON.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	report, ok := h.build(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, pnl.Localize(report, h.formatter(r)))
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (pnl.Report, bool) {
	filters, errs := h.parseFilters(r)
	if len(errs) > 0 {
		httpx.InvalidParams(w, errs)
		return pnl.Report{}, false
	}
	report, err := h.service.Build(r.Context(), filters)
	if err != nil {
		h.respondError(w, err)
		return pnl.Report{}, false
	}
	return report, true
}

func (h *Handler) language(r *http.Request) language.Tag {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return h.translator.Match(lang)
	}
	return h.translator.Match(r.Header.Get("Accept-Language"))
}

func (h *Handler) formatter(r *http.Request) reports.Formatter {
	return h.translator.Formatter(h.language(r))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pnl.ErrInvalidFilters),
		errors.Is(err, reports.ErrFiscalYearNotFound),
		errors.Is(err, reports.ErrInvalidPeriodRange):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledger.ErrCompanyNotFound),
		errors.Is(err, reportfilter.ErrUnknownReport):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, pnl.ErrFinanceBookConflict),
		errors.Is(err, ledger.ErrRateNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	default:
		h.logger.Error("build p and l report", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func reportName(reg *reportfilter.Registry, segment string) string {
	if reg.Has(segment) {
		return segment
	}
	for _, name := range reg.Names() {
		if slug(name) == strings.ToLower(segment) {
			return name
		}
	}
	return segment
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
