package reports

import (
	"strconv"
	"strings"
)

// StatementViewModel holds export/PDF data for a rendered statement.
type StatementViewModel struct {
	Title       string
	CompanyName string
	PeriodLabel string
	Currency    string
	View        View
	Columns     []Column
	Rows        []Row
	Summary     []SummaryItem
}

// VisibleColumns skips hidden columns.
func (vm StatementViewModel) VisibleColumns() []Column {
	out := make([]Column, 0, len(vm.Columns))
	for _, c := range vm.Columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Header returns the labels of the visible columns.
func (vm StatementViewModel) Header() []string {
	cols := vm.VisibleColumns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Label)
	}
	return out
}

// Cells renders a row aligned with the visible columns. Account names are
// indented with two spaces per level.
func (vm StatementViewModel) Cells(r Row) []string {
	cols := vm.VisibleColumns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		switch c.Fieldname {
		case "account":
			out = append(out, strings.Repeat("  ", r.Indent)+r.AccountName)
		case "total":
			if r.Total == nil || r.Kind == RowSpacer {
				out = append(out, "")
				continue
			}
			out = append(out, formatAmount(*r.Total))
		default:
			v, ok := r.Values[c.Fieldname]
			if !ok {
				out = append(out, "")
				continue
			}
			out = append(out, formatAmount(v))
		}
	}
	return out
}

// VisibleRows skips rows hidden by post-render hooks.
func (vm StatementViewModel) VisibleRows() []Row {
	out := make([]Row, 0, len(vm.Rows))
	for _, r := range vm.Rows {
		if !r.Hidden {
			out = append(out, r)
		}
	}
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
