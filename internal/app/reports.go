package app

import (
	"fmt"
	"strings"

	"github.com/worldrep/worldrep-report/internal/accounting/pnl"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

// BuildRegistry registers the report filters with the given accounting
// dimensions, then applies the operator overrides file and hidden rows.
func BuildRegistry(cfg *Config, dims []reportfilter.Dimension) (*reportfilter.Registry, error) {
	position := pnl.DefaultDimensionPosition
	var overridesPath string
	var hidden []string
	if cfg != nil {
		position = cfg.ReportDimensionPosition
		overridesPath = cfg.ReportFiltersFile
		hidden = cfg.ReportHiddenRows
	}

	reg := reportfilter.NewRegistry()
	if err := pnl.RegisterFilters(reg, dims, position); err != nil {
		return nil, err
	}
	overrides, err := reportfilter.LoadOverrides(overridesPath)
	if err != nil {
		return nil, err
	}
	if err := overrides.Apply(reg); err != nil {
		return nil, err
	}
	if dups := reg.Duplicates(pnl.ReportName); len(dups) > 0 {
		return nil, fmt.Errorf("app: duplicate filters on %s: %s", pnl.ReportName, strings.Join(dups, ", "))
	}

	keys := make([]string, 0, len(hidden))
	for _, k := range hidden {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		reg.OnRowsRendered(pnl.ReportName, reportfilter.HideRows(keys...))
	}
	return reg, nil
}
