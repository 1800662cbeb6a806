package pnl

import (
	"fmt"

	"github.com/worldrep/worldrep-report/internal/accounting/reports"
)

// Localize returns a copy of the report with statement, column and summary
// labels rendered through f. A nil f renders the source text.
func Localize(r Report, f reports.Formatter) Report {
	out := r
	out.Rows = reports.LabelRows(r.Rows, f)
	out.Columns = reports.LabelColumns(r.Columns, f)
	out.Summary = reports.LabelSummary(r.Summary, f)
	return out
}

// ViewModel prepares a localized report for export and PDF rendering.
func ViewModel(r Report, f reports.Formatter) reports.StatementViewModel {
	if f == nil {
		f = fmt.Sprintf
	}
	lr := Localize(r, f)
	return reports.StatementViewModel{
		Title:       f("Profit and Loss Statement"),
		CompanyName: lr.Company,
		PeriodLabel: periodLabel(lr.Periods),
		Currency:    lr.Currency,
		View:        lr.View,
		Columns:     lr.Columns,
		Rows:        lr.Rows,
		Summary:     lr.Summary,
	}
}

func periodLabel(periods []reports.Period) string {
	if len(periods) == 0 {
		return ""
	}
	return periods[0].FromDate.Format("02 Jan 2006") + " - " + periods[len(periods)-1].ToDate.Format("02 Jan 2006")
}
