package reportfilter

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides is the on-disk shape of operator supplied filter changes.
//
//	reports:
//	  P and L:
//	    position: 10
//	    filters:
//	      - fieldname: include_default_book_entries
//	        label: Include Default FB Entries
//	        fieldtype: Check
//	        default: 0
type Overrides struct {
	Reports map[string]ReportOverride `yaml:"reports"`
}

// ReportOverride lists descriptors upserted into one report.
type ReportOverride struct {
	// Position is where new filters are inserted; omitted means append.
	Position *int         `yaml:"position,omitempty"`
	Filters  []Descriptor `yaml:"filters"`
	Hide     []string     `yaml:"hide_rows,omitempty"`
}

// LoadOverrides reads an overrides file. A missing file yields empty overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Overrides{}, nil
		}
		return Overrides{}, fmt.Errorf("reportfilter: read overrides: %w", err)
	}
	return ParseOverrides(raw)
}

// ParseOverrides decodes YAML overrides.
func ParseOverrides(raw []byte) (Overrides, error) {
	var out Overrides
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return Overrides{}, fmt.Errorf("reportfilter: parse overrides: %w", err)
	}
	for name, rep := range out.Reports {
		if dups := DuplicateFieldnames(rep.Filters); len(dups) > 0 {
			return Overrides{}, fmt.Errorf("%w: %v in overrides for %s", ErrDuplicateFilter, dups, name)
		}
	}
	return out, nil
}

// Apply upserts every override into the registry. Reports must already exist.
func (o Overrides) Apply(r *Registry) error {
	for name, rep := range o.Reports {
		pos := -1
		if rep.Position != nil {
			pos = *rep.Position
		}
		inserted := 0
		for _, d := range rep.Filters {
			_, exists := r.Filter(name, d.Fieldname)
			at := pos
			if pos >= 0 {
				at = pos + inserted
			}
			if err := r.Insert(name, at, d); err != nil {
				return fmt.Errorf("reportfilter: apply override %s.%s: %w", name, d.Fieldname, err)
			}
			if !exists {
				inserted++
			}
		}
		if len(rep.Hide) > 0 {
			if !r.Has(name) {
				return fmt.Errorf("%w: %s", ErrUnknownReport, name)
			}
			r.OnRowsRendered(name, HideRows(rep.Hide...))
		}
	}
	return nil
}
