package pnl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldrep/worldrep-report/internal/reportfilter"
	_ "github.com/worldrep/worldrep-report/testing"
)

func fieldnames(filters []reportfilter.Descriptor) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Fieldname)
	}
	return out
}

func TestRegisterFiltersIsIdempotent(t *testing.T) {
	reg := reportfilter.NewRegistry()
	dims := []reportfilter.Dimension{{Fieldname: "branch", DocumentType: "Branch"}}

	require.NoError(t, RegisterFilters(reg, dims, DefaultDimensionPosition))
	require.NoError(t, RegisterFilters(reg, dims, DefaultDimensionPosition))

	filters, err := reg.Filters(ReportName)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"company", "finance_book", "filter_based_on", "period_start_date", "period_end_date",
		"from_fiscal_year", "to_fiscal_year", "periodicity", "presentation_currency", "cost_center",
		"branch", "project", "selected_view", "include_default_book_entries", "accumulated_values",
	}, fieldnames(filters))
	assert.Empty(t, reg.Duplicates(ReportName))

	view, ok := reg.Filter(ReportName, FieldSelectedView)
	require.True(t, ok)
	assert.Equal(t, "Select View", view.Label)
	assert.Equal(t, "Report", view.Default)
	assert.True(t, view.Required)
	require.Len(t, view.Options, 3)
	assert.Equal(t, "Margin View", view.Options[2].Label)

	book, ok := reg.Filter(ReportName, FieldIncludeDefaultBookEntries)
	require.True(t, ok)
	assert.Equal(t, reportfilter.FieldTypeCheck, book.FieldType)
	assert.True(t, book.CheckDefault())

	// The strict path flags a second registration instead of duplicating it.
	err = reg.Append(ReportName, view)
	assert.True(t, errors.Is(err, reportfilter.ErrDuplicateFilter))
}

func TestRegisterFiltersLeavesBaseUntouched(t *testing.T) {
	reg := reportfilter.NewRegistry()
	require.NoError(t, RegisterFilters(reg, nil, DefaultDimensionPosition))
	assert.Len(t, FinancialStatementsBase().Filters, 11)
	assert.Empty(t, reg.RunRowHooks(ReportName, []string{"total:opex", "net_profit"}))
}

func TestDefaultFilters(t *testing.T) {
	reg := reportfilter.NewRegistry()
	require.NoError(t, RegisterFilters(reg, nil, DefaultDimensionPosition))

	f := DefaultFilters(reg, "Acme")
	assert.Equal(t, "Acme", f.Company)
	assert.Equal(t, "Fiscal Year", f.FilterBasedOn)
	assert.Equal(t, "Yearly", f.Periodicity)
	assert.Equal(t, "Report", f.SelectedView)
	assert.True(t, f.IncludeDefaultBookEntries)
	assert.True(t, f.AccumulatedValues)

	require.NoError(t, reg.Upsert(ReportName, reportfilter.Descriptor{
		Fieldname: FieldAccumulatedValues, Label: "Accumulated Values", FieldType: reportfilter.FieldTypeCheck, Default: 0,
	}))
	assert.False(t, DefaultFilters(reg, "Acme").AccumulatedValues)
}

func TestFinanceBooks(t *testing.T) {
	f := Filters{FinanceBook: "Tax Book", IncludeDefaultBookEntries: true}
	_, err := f.financeBooks("Main Book")
	assert.True(t, errors.Is(err, ErrFinanceBookConflict))

	books, err := f.financeBooks("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tax Book", "", ""}, books)

	f.IncludeDefaultBookEntries = false
	books, err = f.financeBooks("Main Book")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tax Book", ""}, books)
}
