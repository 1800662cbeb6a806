package pnl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

var (
	// ErrInvalidFilters indicates the filters failed validation.
	ErrInvalidFilters = errors.New("pnl: invalid filters")
	// ErrFinanceBookConflict indicates a non default finance book was combined
	// with default book entries.
	ErrFinanceBookConflict = errors.New("To use a different finance book, please uncheck 'Include Default FB Entries'")
)

// Account types that split expenses into statement sections.
const (
	AccountTypeCOGS = "Cost of Goods Sold"
	AccountTypeTax  = "Tax"
)

// Repository abstracts the ledger reads needed to build the statement.
type Repository interface {
	Company(ctx context.Context, name string) (ledger.Company, error)
	FiscalYears(ctx context.Context, company string) ([]reports.FiscalYear, error)
	Accounts(ctx context.Context, q ledger.AccountQuery) ([]reports.Account, error)
	GLEntries(ctx context.Context, q ledger.EntryQuery) ([]reports.GLEntry, error)
	CostCenterDescendants(ctx context.Context, names []string) ([]string, error)
	AccountingDimensions(ctx context.Context) ([]reportfilter.Dimension, error)
	DimensionDescendants(ctx context.Context, dim reportfilter.Dimension, names []string) ([]string, error)
	ExchangeRates(ctx context.Context, from, to string, upTo time.Time) (ledger.RateTable, error)
}

// Observer receives build and cache measurements.
type Observer interface {
	ObserveBuild(report string, d time.Duration, err error)
	ObserveCache(report string, hit bool)
}

// Report is a built profit and loss statement.
type Report struct {
	RunID           string                `json:"run_id"`
	Name            string                `json:"name"`
	Filters         Filters               `json:"filters"`
	Company         string                `json:"company"`
	Currency        string                `json:"currency"`
	View            reports.View          `json:"view"`
	Periods         []reports.Period      `json:"periods"`
	Columns         []reports.Column      `json:"columns"`
	Rows            []reports.Row         `json:"rows"`
	Summary         []reports.SummaryItem `json:"summary"`
	MissingAccounts []string              `json:"missing_accounts,omitempty"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// DefaultBuildTimeout bounds a shared build once it is detached from callers.
const DefaultBuildTimeout = 2 * time.Minute

// ServiceOption customises the service.
type ServiceOption func(*Service)

// WithCache enables the Redis report cache.
func WithCache(c *Cache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithObserver records build metrics.
func WithObserver(o Observer) ServiceOption {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithBuildTimeout overrides DefaultBuildTimeout.
func WithBuildTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.buildTimeout = d
		}
	}
}

// Service builds the profit and loss statement.
type Service struct {
	repo     Repository
	registry *reportfilter.Registry
	cache    *Cache
	observer Observer
	logger   *slog.Logger
	validate *validator.Validate
	group    singleflight.Group
	now      func() time.Time

	buildTimeout time.Duration
}

// NewService constructs the service. The registry supplies filter defaults and
// post-render row hooks.
func NewService(repo Repository, registry *reportfilter.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		registry: registry,
		logger:   slog.Default(),
		validate: validator.New(),
		now:      time.Now,

		buildTimeout: DefaultBuildTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns filters for company seeded from registered defaults.
func (s *Service) Defaults(company string) Filters {
	return DefaultFilters(s.registry, company)
}

// Build returns the statement for filters, served from cache when possible.
// Row hooks run on every call so configuration changes apply to cached reports.
func (s *Service) Build(ctx context.Context, f Filters) (Report, error) {
	if s == nil || s.repo == nil {
		return Report{}, errors.New("pnl: service not initialised")
	}
	if err := s.validateFilters(f); err != nil {
		return Report{}, err
	}

	key, err := keyReport(f)
	if err != nil {
		return Report{}, err
	}
	versioned, err := s.cache.BuildKey(ctx, key)
	if err != nil {
		s.logger.Warn("report cache version", slog.Any("error", err))
		versioned = key
	}

	report, err := s.shared(ctx, versioned, func(ctx context.Context) (Report, error) {
		var cached Report
		var built *Report
		var buildErr error
		hit, err := s.cache.FetchJSON(ctx, versioned, &cached, func(ctx context.Context) (any, error) {
			r, err := s.build(ctx, f)
			if err != nil {
				buildErr = err
				return nil, err
			}
			built = &r
			return r, nil
		})
		switch {
		case buildErr != nil:
			return Report{}, buildErr
		case err != nil && built != nil:
			s.logger.Warn("report cache store", slog.Any("error", err))
			return *built, nil
		case err != nil:
			s.logger.Warn("report cache fetch", slog.Any("error", err))
			return s.build(ctx, f)
		case s.cache != nil && s.observer != nil:
			s.observer.ObserveCache(ReportName, hit)
		}
		return cached, nil
	})
	if err != nil {
		return Report{}, err
	}
	report.Rows = s.applyRowHooks(report.Rows)
	return report, nil
}

// shared collapses concurrent builds of the same key. The build runs detached
// from the callers' cancellation; each caller returns when its own context is done.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (Report, error)) (Report, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.buildTimeout)
		defer cancel()
		return fn(bctx)
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		return res.Val.(Report), nil
	}
}

// Invalidate bumps the cache version so later builds recompute.
func (s *Service) Invalidate(ctx context.Context) error {
	_, err := s.cache.Bump(ctx)
	return err
}

// CurrentFiscalYear returns the fiscal year of company that contains the
// service clock's date.
func (s *Service) CurrentFiscalYear(ctx context.Context, company string) (string, error) {
	years, err := s.repo.FiscalYears(ctx, company)
	if err != nil {
		return "", err
	}
	today := s.now().UTC()
	for _, fy := range years {
		if !today.Before(fy.StartDate) && today.Before(fy.EndDate.AddDate(0, 0, 1)) {
			return fy.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s on %s", reports.ErrFiscalYearNotFound, company, today.Format("2006-01-02"))
}

// Warmup builds the default report of the current fiscal year for company.
func (s *Service) Warmup(ctx context.Context, company string) (Report, error) {
	fy, err := s.CurrentFiscalYear(ctx, company)
	if err != nil {
		return Report{}, err
	}
	f := s.Defaults(company)
	f.FilterBasedOn = reports.BasedOnFiscalYear
	f.FromFiscalYear, f.ToFiscalYear = fy, fy
	return s.Build(ctx, f)
}

func (s *Service) validateFilters(f Filters) error {
	if err := s.validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	switch f.FilterBasedOn {
	case reports.BasedOnFiscalYear:
		if f.FromFiscalYear == "" || f.ToFiscalYear == "" {
			return fmt.Errorf("%w: from_fiscal_year and to_fiscal_year are required", ErrInvalidFilters)
		}
	case reports.BasedOnDateRange:
		if f.PeriodStartDate.IsZero() || f.PeriodEndDate.IsZero() {
			return fmt.Errorf("%w: period_start_date and period_end_date are required", ErrInvalidFilters)
		}
	}
	return nil
}

type sectionSpec struct {
	name    string
	root    reports.RootType
	balance reports.BalanceMustBe
	include []string
	exclude []string
}

var sectionSpecs = []sectionSpec{
	{name: reports.SectionIncome, root: reports.RootIncome, balance: reports.BalanceCredit},
	{name: reports.SectionCOGS, root: reports.RootExpense, balance: reports.BalanceDebit, include: []string{AccountTypeCOGS}},
	{name: reports.SectionOPEX, root: reports.RootExpense, balance: reports.BalanceDebit, exclude: []string{AccountTypeCOGS, AccountTypeTax}},
	{name: reports.SectionTax, root: reports.RootExpense, balance: reports.BalanceDebit, include: []string{AccountTypeTax}},
}

func (s *Service) build(ctx context.Context, f Filters) (report Report, err error) {
	start := s.now()
	defer func() {
		if s.observer != nil {
			s.observer.ObserveBuild(ReportName, s.now().Sub(start), err)
		}
	}()

	company, err := s.repo.Company(ctx, f.Company)
	if err != nil {
		return Report{}, err
	}
	books, err := f.financeBooks(company.DefaultFinanceBook)
	if err != nil {
		return Report{}, err
	}
	years, err := s.repo.FiscalYears(ctx, f.Company)
	if err != nil {
		return Report{}, fmt.Errorf("pnl: fiscal years: %w", err)
	}
	periods, err := reports.BuildPeriods(f.periodParams(years))
	if err != nil {
		return Report{}, err
	}
	view, err := reports.ParseView(f.SelectedView)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}

	base := ledger.EntryQuery{
		Company:              f.Company,
		FromDate:             periods[0].YearStartDate,
		ToDate:               periods[len(periods)-1].ToDate,
		FinanceBooks:         books,
		Projects:             f.Project,
		IgnoreClosingEntries: true,
	}
	if base.CostCenters, err = s.repo.CostCenterDescendants(ctx, f.CostCenter); err != nil {
		return Report{}, fmt.Errorf("pnl: cost centers: %w", err)
	}
	if len(f.CostCenter) > 0 && len(base.CostCenters) == 0 {
		return Report{}, fmt.Errorf("%w: cost center %s not found", ErrInvalidFilters, strings.Join(f.CostCenter, ", "))
	}
	if base.Dimensions, err = s.expandDimensions(ctx, f.Dimensions); err != nil {
		return Report{}, err
	}

	currency := company.DefaultCurrency
	var rate reports.RateFunc
	if f.PresentationCurrency != "" && f.PresentationCurrency != company.DefaultCurrency {
		currency = f.PresentationCurrency
		table, err := s.repo.ExchangeRates(ctx, company.DefaultCurrency, currency, base.ToDate)
		if err != nil {
			return Report{}, fmt.Errorf("pnl: exchange rates: %w", err)
		}
		rate = func(_, _ string, on time.Time) (float64, error) { return table.At(on) }
	}

	sections := make([]reports.Section, len(sectionSpecs))
	missing := make([][]string, len(sectionSpecs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range sectionSpecs {
		g.Go(func() error {
			sec, miss, err := s.section(gctx, spec, base, periods, currency, company.DefaultCurrency, rate, f.AccumulatedValues)
			if err != nil {
				return fmt.Errorf("pnl: %s section: %w", spec.name, err)
			}
			sections[i], missing[i] = sec, miss
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	in := reports.ProfitAndLossInput{
		Periods:  periods,
		Currency: currency,
		Income:   sections[0],
		COGS:     sections[1],
		OPEX:     sections[2],
		Tax:      sections[3],
	}
	statement := reports.BuildProfitAndLoss(in)
	summary := reports.BuildSummary(reports.SummaryParams{
		Periods:     periods,
		Periodicity: reports.Periodicity(f.Periodicity),
		Accumulated: f.AccumulatedValues,
		Currency:    currency,
		Statement:   statement,
		Income:      in.Income,
		COGS:        in.COGS,
		OPEX:        in.OPEX,
		Tax:         in.Tax,
	})
	columns := reports.Columns(reports.Periodicity(f.Periodicity), periods, f.AccumulatedValues)

	report = Report{
		RunID:       uuid.NewString(),
		Name:        ReportName,
		Filters:     f,
		Company:     company.Name,
		Currency:    currency,
		View:        view,
		Periods:     periods,
		Columns:     reports.ViewColumns(columns, view),
		Rows:        reports.ApplyView(statement.Rows, periods, view),
		Summary:     summary,
		GeneratedAt: s.now().UTC(),
	}
	for _, m := range missing {
		report.MissingAccounts = append(report.MissingAccounts, m...)
	}
	if len(report.MissingAccounts) > 0 {
		s.logger.Warn("ledger entries reference unknown accounts",
			slog.String("company", f.Company), slog.Any("accounts", report.MissingAccounts))
	}
	return report, nil
}

func (s *Service) section(ctx context.Context, spec sectionSpec, base ledger.EntryQuery, periods []reports.Period,
	currency, companyCurrency string, rate reports.RateFunc, accumulated bool) (reports.Section, []string, error) {
	accounts, err := s.repo.Accounts(ctx, ledger.AccountQuery{
		Company:             base.Company,
		RootType:            spec.root,
		AccountTypes:        spec.include,
		ExcludeAccountTypes: spec.exclude,
	})
	if err != nil {
		return reports.Section{}, nil, err
	}
	var entries []reports.GLEntry
	leaves := leafAccounts(accounts)
	if len(leaves) > 0 {
		q := base
		q.Accounts = leaves
		if entries, err = s.repo.GLEntries(ctx, q); err != nil {
			return reports.Section{}, nil, err
		}
		if rate != nil {
			if entries, err = reports.ConvertEntries(entries, companyCurrency, currency, rate); err != nil {
				return reports.Section{}, nil, err
			}
		}
	}
	sec, missing := reports.BuildSection(reports.SectionParams{
		Name:        spec.name,
		Root:        spec.root,
		Balance:     spec.balance,
		Accounts:    accounts,
		Entries:     entries,
		Periods:     periods,
		Currency:    currency,
		Accumulated: accumulated,
	})
	return sec, missing, nil
}

func (s *Service) expandDimensions(ctx context.Context, selected map[string][]string) (map[string][]string, error) {
	if len(selected) == 0 {
		return nil, nil
	}
	dims, err := s.repo.AccountingDimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("pnl: dimensions: %w", err)
	}
	known := make(map[string]reportfilter.Dimension, len(dims))
	for _, dim := range dims {
		known[dim.Fieldname] = dim
	}
	out := make(map[string][]string, len(selected))
	for field, values := range selected {
		if len(values) == 0 {
			continue
		}
		dim, ok := known[field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown dimension %s", ErrInvalidFilters, field)
		}
		expanded, err := s.repo.DimensionDescendants(ctx, dim, values)
		if err != nil {
			return nil, fmt.Errorf("pnl: dimension %s: %w", field, err)
		}
		if len(expanded) == 0 {
			return nil, fmt.Errorf("%w: %s %s not found", ErrInvalidFilters, field, strings.Join(values, ", "))
		}
		out[field] = expanded
	}
	return out, nil
}

func (s *Service) applyRowHooks(rows []reports.Row) []reports.Row {
	if s.registry == nil || len(rows) == 0 {
		return rows
	}
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	hidden := s.registry.RunRowHooks(ReportName, keys)
	if len(hidden) == 0 {
		return rows
	}
	out := make([]reports.Row, len(rows))
	for i, r := range rows {
		if _, ok := hidden[r.Key]; ok {
			r.Hidden = true
		}
		out[i] = r
	}
	return out
}

func leafAccounts(accounts []reports.Account) []string {
	var out []string
	for _, a := range accounts {
		if !a.IsGroup {
			out = append(out, a.Name)
		}
	}
	return out
}
