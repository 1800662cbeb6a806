package pnl

import (
	"context"
	"sync"
	"time"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fakeRepo struct {
	mu          sync.Mutex
	company     ledger.Company
	years       []reports.FiscalYear
	accounts    map[string][]reports.Account
	entries     []reports.GLEntry
	rates       ledger.RateTable
	dims        []reportfilter.Dimension
	descendants map[string][]string
	costCenters map[string][]string

	// gate blocks Company until closed; entered reports each call.
	gate    chan struct{}
	entered chan struct{}

	companyCalls int
	entryCalls   int
	queries      []ledger.EntryQuery
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		company: ledger.Company{Name: "Acme", DefaultCurrency: "USD"},
		years:   []reports.FiscalYear{{Name: "2024", StartDate: day(2024, 1, 1), EndDate: day(2024, 12, 31)}},
		accounts: map[string][]reports.Account{
			"income": {
				{Name: "Income", AccountName: "Income", RootType: reports.RootIncome, ReportType: "Profit and Loss", IsGroup: true},
				{Name: "Sales - A", AccountName: "Sales", ParentAccount: "Income", RootType: reports.RootIncome, ReportType: "Profit and Loss"},
			},
			"cogs": {{Name: "COGS - A", AccountName: "Cost of Goods Sold", ParentAccount: "Expenses", RootType: reports.RootExpense, AccountType: AccountTypeCOGS}},
			"opex": {{Name: "Salary - A", AccountName: "Salary", ParentAccount: "Expenses", RootType: reports.RootExpense}},
			"tax":  {{Name: "Income Tax - A", AccountName: "Income Tax", ParentAccount: "Expenses", RootType: reports.RootExpense, AccountType: AccountTypeTax}},
		},
		entries: []reports.GLEntry{
			{Account: "Sales - A", PostingDate: day(2024, 2, 10), Credit: 1000, AccountCurrency: "USD"},
			{Account: "COGS - A", PostingDate: day(2024, 2, 11), Debit: 300, AccountCurrency: "USD"},
			{Account: "Salary - A", PostingDate: day(2024, 3, 1), Debit: 200, AccountCurrency: "USD"},
			{Account: "Income Tax - A", PostingDate: day(2024, 3, 20), Debit: 50, AccountCurrency: "USD"},
		},
		dims:        []reportfilter.Dimension{{Fieldname: "branch", DocumentType: "Branch", IsTree: true}},
		descendants: map[string][]string{"HQ": {"HQ", "HQ East"}},
	}
}

func (f *fakeRepo) Company(ctx context.Context, name string) (ledger.Company, error) {
	f.mu.Lock()
	f.companyCalls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return ledger.Company{}, err
	}
	if name != f.company.Name {
		return ledger.Company{}, ledger.ErrCompanyNotFound
	}
	return f.company, nil
}

func (f *fakeRepo) FiscalYears(context.Context, string) ([]reports.FiscalYear, error) {
	return f.years, nil
}

func (f *fakeRepo) Accounts(_ context.Context, q ledger.AccountQuery) ([]reports.Account, error) {
	switch {
	case q.RootType == reports.RootIncome:
		return f.accounts["income"], nil
	case len(q.ExcludeAccountTypes) > 0:
		return f.accounts["opex"], nil
	case len(q.AccountTypes) > 0 && q.AccountTypes[0] == AccountTypeCOGS:
		return f.accounts["cogs"], nil
	case len(q.AccountTypes) > 0 && q.AccountTypes[0] == AccountTypeTax:
		return f.accounts["tax"], nil
	}
	return nil, nil
}

func (f *fakeRepo) GLEntries(_ context.Context, q ledger.EntryQuery) ([]reports.GLEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entryCalls++
	f.queries = append(f.queries, q)
	wanted := make(map[string]bool, len(q.Accounts))
	for _, a := range q.Accounts {
		wanted[a] = true
	}
	var out []reports.GLEntry
	for _, e := range f.entries {
		if wanted[e.Account] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) CostCenterDescendants(_ context.Context, names []string) ([]string, error) {
	if f.costCenters == nil {
		return names, nil
	}
	var out []string
	for _, n := range names {
		out = append(out, f.costCenters[n]...)
	}
	return out, nil
}

func (f *fakeRepo) AccountingDimensions(context.Context) ([]reportfilter.Dimension, error) {
	return f.dims, nil
}

func (f *fakeRepo) DimensionDescendants(_ context.Context, dim reportfilter.Dimension, names []string) ([]string, error) {
	var out []string
	for _, n := range names {
		if d, ok := f.descendants[n]; ok {
			out = append(out, d...)
			continue
		}
		if !dim.IsTree {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExchangeRates(context.Context, string, string, time.Time) (ledger.RateTable, error) {
	if f.rates == nil {
		return nil, ledger.ErrRateNotFound
	}
	return f.rates, nil
}

func (f *fakeRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entryCalls
}

func (f *fakeRepo) companyLookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.companyCalls
}

func (f *fakeRepo) lastQuery() ledger.EntryQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeObserver struct {
	mu     sync.Mutex
	builds int
	hits   int
	misses int
}

func (o *fakeObserver) ObserveBuild(string, time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds++
}

func (o *fakeObserver) ObserveCache(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
		return
	}
	o.misses++
}
