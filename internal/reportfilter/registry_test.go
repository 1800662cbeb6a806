package reportfilter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	return Config{Filters: []Descriptor{
		{Fieldname: "company", Label: "Company", FieldType: FieldTypeLink, LinkTo: "Company", Required: true},
		{Fieldname: "periodicity", Label: "Periodicity", FieldType: FieldTypeSelect, Options: []Option{{Value: "Monthly", Label: "Monthly"}, {Value: "Yearly", Label: "Yearly"}}, Default: "Yearly"},
	}}
}

func fieldnames(filters []Descriptor) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.Fieldname)
	}
	return out
}

func TestExtendCopiesBase(t *testing.T) {
	reg := NewRegistry()
	base := baseConfig()
	reg.Extend("P and L", base)

	require.NoError(t, reg.Upsert("P and L", Descriptor{Fieldname: "accumulated_values", Label: "Accumulated Values", FieldType: FieldTypeCheck, Default: 1}))

	assert.Len(t, base.Filters, 2, "base must not be mutated")
	filters, err := reg.Filters("P and L")
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "periodicity", "accumulated_values"}, fieldnames(filters))

	reg.Extend("P and L", base)
	filters, err = reg.Filters("P and L")
	require.NoError(t, err)
	assert.Len(t, filters, 3, "second Extend keeps registered filters")
}

func TestUpsertReplacesInPlace(t *testing.T) {
	reg := NewRegistry()
	reg.Extend("P and L", baseConfig())

	first := Descriptor{Fieldname: "include_default_book_entries", Label: "Include Default Book Entries", FieldType: FieldTypeCheck, Default: 1}
	second := Descriptor{Fieldname: "include_default_book_entries", Label: "Include Default FB Entries", FieldType: FieldTypeCheck, Default: true}
	require.NoError(t, reg.Upsert("P and L", first))
	require.NoError(t, reg.Upsert("P and L", Descriptor{Fieldname: "x", Label: "X", FieldType: FieldTypeData}))
	require.NoError(t, reg.Upsert("P and L", second))

	filters, err := reg.Filters("P and L")
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "periodicity", "include_default_book_entries", "x"}, fieldnames(filters))
	assert.Equal(t, "Include Default FB Entries", filters[2].Label)
	assert.Equal(t, 1, filters[2].Default)
	assert.Empty(t, reg.Duplicates("P and L"))
}

func TestAppendRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	reg.Extend("P and L", baseConfig())

	d := Descriptor{Fieldname: "include_default_book_entries", Label: "Include Default Book Entries", FieldType: FieldTypeCheck, Default: 1}
	require.NoError(t, reg.Append("P and L", d))
	err := reg.Append("P and L", d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateFilter))
}

func TestUnknownReport(t *testing.T) {
	reg := NewRegistry()
	err := reg.Upsert("Balance Sheet", Descriptor{Fieldname: "a", Label: "A", FieldType: FieldTypeData})
	assert.ErrorIs(t, err, ErrUnknownReport)
	_, err = reg.Filters("Balance Sheet")
	assert.ErrorIs(t, err, ErrUnknownReport)
}

func TestInsertAndAddDimensions(t *testing.T) {
	reg := NewRegistry()
	reg.Extend("P and L", baseConfig())

	require.NoError(t, reg.AddDimensions("P and L", 1, []Dimension{
		{Fieldname: "branch", Label: "Branch", DocumentType: "Branch"},
		{Fieldname: "region", DocumentType: "Region", IsTree: true},
	}))
	require.NoError(t, reg.AddDimensions("P and L", 10, []Dimension{{Fieldname: "branch", DocumentType: "Branch"}}))

	filters, err := reg.Filters("P and L")
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "branch", "region", "periodicity"}, fieldnames(filters))
	assert.Equal(t, "Region", filters[2].Label)
	assert.Equal(t, FieldTypeMultiSelectList, filters[1].FieldType)
}

func TestDescriptorValidate(t *testing.T) {
	cases := []struct {
		name string
		d    Descriptor
		ok   bool
	}{
		{"missing fieldname", Descriptor{FieldType: FieldTypeCheck}, false},
		{"unknown type", Descriptor{Fieldname: "a", FieldType: "Slider"}, false},
		{"select without options", Descriptor{Fieldname: "a", FieldType: FieldTypeSelect}, false},
		{"select bad default", Descriptor{Fieldname: "a", FieldType: FieldTypeSelect, Options: []Option{{Value: "Report"}}, Default: "Growth"}, false},
		{"select ok", Descriptor{Fieldname: "a", FieldType: FieldTypeSelect, Options: []Option{{Value: "Report"}}, Default: "Report"}, true},
		{"check bad default", Descriptor{Fieldname: "a", FieldType: FieldTypeCheck, Default: 2}, false},
		{"check float default", Descriptor{Fieldname: "a", FieldType: FieldTypeCheck, Default: float64(1)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidDescriptor)
			}
		})
	}
}

func TestRowHooks(t *testing.T) {
	reg := NewRegistry()
	reg.Extend("P and L", baseConfig())

	assert.Empty(t, reg.RunRowHooks("P and L", []string{"total:expense"}))

	reg.OnRowsRendered("P and L", HideRows("total:expense"))
	hidden := reg.RunRowHooks("P and L", []string{"account:Sales", "total:expense", "net_profit"})
	assert.Equal(t, map[string]struct{}{"total:expense": {}}, hidden)
}

func TestLocalize(t *testing.T) {
	filters := []Descriptor{{Fieldname: "selected_view", Label: "Select View", FieldType: FieldTypeSelect, Options: []Option{{Value: "Report", Label: "Report View"}}}}
	out := Localize(filters, func(s string) string { return "[" + s + "]" })
	assert.Equal(t, "[Select View]", out[0].Label)
	assert.Equal(t, "[Report View]", out[0].Options[0].Label)
	assert.Equal(t, "Report View", filters[0].Options[0].Label)
}
