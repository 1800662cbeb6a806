package pnl

import (
	"fmt"
	"time"

	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

// ReportName is the registry key of the profit and loss report.
const ReportName = "P and L"

// DefaultDimensionPosition is where accounting dimension filters are inserted.
const DefaultDimensionPosition = 10

// Filter fieldnames.
const (
	FieldCompany                   = "company"
	FieldFinanceBook               = "finance_book"
	FieldFilterBasedOn             = "filter_based_on"
	FieldPeriodStartDate           = "period_start_date"
	FieldPeriodEndDate             = "period_end_date"
	FieldFromFiscalYear            = "from_fiscal_year"
	FieldToFiscalYear              = "to_fiscal_year"
	FieldPeriodicity               = "periodicity"
	FieldPresentationCurrency      = "presentation_currency"
	FieldCostCenter                = "cost_center"
	FieldProject                   = "project"
	FieldSelectedView              = "selected_view"
	FieldIncludeDefaultBookEntries = "include_default_book_entries"
	FieldAccumulatedValues         = "accumulated_values"
)

// FinancialStatementsBase returns the filters shared by financial statements.
func FinancialStatementsBase() reportfilter.Config {
	dateRange := "eval:doc.filter_based_on == 'Date Range'"
	fiscalYear := "eval:doc.filter_based_on == 'Fiscal Year'"
	return reportfilter.Config{Filters: []reportfilter.Descriptor{
		{Fieldname: FieldCompany, Label: "Company", FieldType: reportfilter.FieldTypeLink, LinkTo: "Company", Required: true},
		{Fieldname: FieldFinanceBook, Label: "Finance Book", FieldType: reportfilter.FieldTypeLink, LinkTo: "Finance Book"},
		{
			Fieldname: FieldFilterBasedOn,
			Label:     "Filter Based On",
			FieldType: reportfilter.FieldTypeSelect,
			Options: []reportfilter.Option{
				{Value: reports.BasedOnFiscalYear, Label: "Fiscal Year"},
				{Value: reports.BasedOnDateRange, Label: "Date Range"},
			},
			Default:  reports.BasedOnFiscalYear,
			Required: true,
		},
		{Fieldname: FieldPeriodStartDate, Label: "Start Date", FieldType: reportfilter.FieldTypeDate, Hidden: true, DependsOn: dateRange},
		{Fieldname: FieldPeriodEndDate, Label: "End Date", FieldType: reportfilter.FieldTypeDate, Hidden: true, DependsOn: dateRange},
		{Fieldname: FieldFromFiscalYear, Label: "Start Year", FieldType: reportfilter.FieldTypeLink, LinkTo: "Fiscal Year", DependsOn: fiscalYear},
		{Fieldname: FieldToFiscalYear, Label: "End Year", FieldType: reportfilter.FieldTypeLink, LinkTo: "Fiscal Year", DependsOn: fiscalYear},
		{
			Fieldname: FieldPeriodicity,
			Label:     "Periodicity",
			FieldType: reportfilter.FieldTypeSelect,
			Options: []reportfilter.Option{
				{Value: string(reports.PeriodicityMonthly), Label: "Monthly"},
				{Value: string(reports.PeriodicityQuarterly), Label: "Quarterly"},
				{Value: string(reports.PeriodicityHalfYearly), Label: "Half-Yearly"},
				{Value: string(reports.PeriodicityYearly), Label: "Yearly"},
			},
			Default:  string(reports.PeriodicityYearly),
			Required: true,
		},
		{Fieldname: FieldPresentationCurrency, Label: "Currency", FieldType: reportfilter.FieldTypeLink, LinkTo: "Currency"},
		{Fieldname: FieldCostCenter, Label: "Cost Center", FieldType: reportfilter.FieldTypeMultiSelectList, LinkTo: "Cost Center"},
		{Fieldname: FieldProject, Label: "Project", FieldType: reportfilter.FieldTypeMultiSelectList, LinkTo: "Project"},
	}}
}

// RegisterFilters installs the P and L filter configuration: the shared base,
// the accounting dimensions at position, then the report's own filters. It is
// idempotent; registering again updates filters in place.
func RegisterFilters(reg *reportfilter.Registry, dims []reportfilter.Dimension, position int) error {
	reg.Extend(ReportName, FinancialStatementsBase())
	if err := reg.AddDimensions(ReportName, position, dims); err != nil {
		return fmt.Errorf("pnl: add dimensions: %w", err)
	}
	for _, d := range ownFilters() {
		if err := reg.Upsert(ReportName, d); err != nil {
			return fmt.Errorf("pnl: register %s: %w", d.Fieldname, err)
		}
	}
	return nil
}

func ownFilters() []reportfilter.Descriptor {
	return []reportfilter.Descriptor{
		{
			Fieldname: FieldSelectedView,
			Label:     "Select View",
			FieldType: reportfilter.FieldTypeSelect,
			Options: []reportfilter.Option{
				{Value: string(reports.ViewReport), Label: "Report View"},
				{Value: string(reports.ViewGrowth), Label: "Growth View"},
				{Value: string(reports.ViewMargin), Label: "Margin View"},
			},
			Default:  string(reports.ViewReport),
			Required: true,
		},
		{Fieldname: FieldIncludeDefaultBookEntries, Label: "Include Default FB Entries", FieldType: reportfilter.FieldTypeCheck, Default: 1},
		{Fieldname: FieldAccumulatedValues, Label: "Accumulated Values", FieldType: reportfilter.FieldTypeCheck, Default: 1},
	}
}

// Filters are the parameters of one P and L run.
type Filters struct {
	Company                   string              `json:"company" validate:"required"`
	FinanceBook               string              `json:"finance_book,omitempty"`
	FilterBasedOn             string              `json:"filter_based_on" validate:"required,oneof='Fiscal Year' 'Date Range'"`
	PeriodStartDate           time.Time           `json:"period_start_date,omitempty"`
	PeriodEndDate             time.Time           `json:"period_end_date,omitempty"`
	FromFiscalYear            string              `json:"from_fiscal_year,omitempty"`
	ToFiscalYear              string              `json:"to_fiscal_year,omitempty"`
	Periodicity               string              `json:"periodicity" validate:"required,oneof=Monthly Quarterly Half-Yearly Yearly"`
	PresentationCurrency      string              `json:"presentation_currency,omitempty" validate:"omitempty,len=3"`
	CostCenter                []string            `json:"cost_center,omitempty"`
	Project                   []string            `json:"project,omitempty"`
	SelectedView              string              `json:"selected_view" validate:"required,oneof=Report Growth Margin"`
	IncludeDefaultBookEntries bool                `json:"include_default_book_entries"`
	AccumulatedValues         bool                `json:"accumulated_values"`
	Dimensions                map[string][]string `json:"dimensions,omitempty"`
}

// DefaultFilters seeds Filters from the registered descriptor defaults.
func DefaultFilters(reg *reportfilter.Registry, company string) Filters {
	f := Filters{
		Company:       company,
		FilterBasedOn: reports.BasedOnFiscalYear,
		Periodicity:   string(reports.PeriodicityYearly),
		SelectedView:  string(reports.ViewReport),
	}
	if reg == nil {
		return f
	}
	if d, ok := reg.Filter(ReportName, FieldFilterBasedOn); ok {
		if v, ok := d.Default.(string); ok {
			f.FilterBasedOn = v
		}
	}
	if d, ok := reg.Filter(ReportName, FieldPeriodicity); ok {
		if v, ok := d.Default.(string); ok {
			f.Periodicity = v
		}
	}
	if d, ok := reg.Filter(ReportName, FieldSelectedView); ok {
		if v, ok := d.Default.(string); ok {
			f.SelectedView = v
		}
	}
	if d, ok := reg.Filter(ReportName, FieldIncludeDefaultBookEntries); ok {
		f.IncludeDefaultBookEntries = d.CheckDefault()
	}
	if d, ok := reg.Filter(ReportName, FieldAccumulatedValues); ok {
		f.AccumulatedValues = d.CheckDefault()
	}
	return f
}

func (f Filters) periodParams(years []reports.FiscalYear) reports.PeriodParams {
	return reports.PeriodParams{
		BasedOn:        f.FilterBasedOn,
		FromFiscalYear: f.FromFiscalYear,
		ToFiscalYear:   f.ToFiscalYear,
		StartDate:      f.PeriodStartDate,
		EndDate:        f.PeriodEndDate,
		Periodicity:    reports.Periodicity(f.Periodicity),
		Accumulated:    f.AccumulatedValues,
		FiscalYears:    years,
	}
}

// financeBooks lists the books whose entries are included. The empty book
// stands for entries posted without one.
func (f Filters) financeBooks(companyDefault string) ([]string, error) {
	if !f.IncludeDefaultBookEntries {
		return []string{f.FinanceBook, ""}, nil
	}
	if f.FinanceBook != "" && companyDefault != "" && f.FinanceBook != companyDefault {
		return nil, ErrFinanceBookConflict
	}
	return []string{f.FinanceBook, companyDefault, ""}, nil
}
