package reportfilter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overridesYAML = `
reports:
  P and L:
    position: 1
    filters:
      - fieldname: include_default_book_entries
        label: Include Default FB Entries
        fieldtype: Check
        default: 0
      - fieldname: cost_center_group
        label: Cost Center Group
        fieldtype: Data
    hide_rows:
      - total:expense
`

func TestApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(overridesYAML), 0o600))

	ov, err := LoadOverrides(path)
	require.NoError(t, err)

	reg := NewRegistry()
	reg.Extend("P and L", baseConfig())
	require.NoError(t, reg.Upsert("P and L", Descriptor{Fieldname: "include_default_book_entries", Label: "Include Default Book Entries", FieldType: FieldTypeCheck, Default: 1}))
	require.NoError(t, ov.Apply(reg))

	filters, err := reg.Filters("P and L")
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "cost_center_group", "periodicity", "include_default_book_entries"}, fieldnames(filters))
	assert.Equal(t, 0, filters[3].Default)
	assert.Contains(t, reg.RunRowHooks("P and L", []string{"total:expense"}), "total:expense")
}

func TestLoadOverridesMissingFile(t *testing.T) {
	ov, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, ov.Reports)
}

func TestParseOverridesRejectsDuplicates(t *testing.T) {
	_, err := ParseOverrides([]byte(`
reports:
  P and L:
    filters:
      - {fieldname: a, label: A, fieldtype: Data}
      - {fieldname: a, label: A again, fieldtype: Data}
`))
	assert.ErrorIs(t, err, ErrDuplicateFilter)
}
