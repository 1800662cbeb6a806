package reports

import (
	"fmt"
	"math"
)

// View selects how statement amounts are presented.
type View string

const (
	ViewReport View = "Report"
	ViewGrowth View = "Growth"
	ViewMargin View = "Margin"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch View(s) {
	case ViewReport, ViewGrowth, ViewMargin:
		return View(s), nil
	case "":
		return ViewReport, nil
	}
	return "", fmt.Errorf("reports: unknown view %q", s)
}

// ApplyView rewrites row values for the requested view. Growth shows the
// percentage change against the previous period; Margin shows each amount as a
// percentage of the income total row. Undefined cells (first period of
// Growth, zero bases) are left out of Values. The input rows are not modified.
func ApplyView(rows []Row, periods []Period, view View) []Row {
	out := make([]Row, 0, len(rows))
	if view == ViewReport || view == "" {
		for _, r := range rows {
			out = append(out, r.Clone())
		}
		return out
	}

	var base Row
	for _, r := range rows {
		if r.Key == TotalKey(SectionIncome) {
			base = r
			break
		}
	}

	for _, r := range rows {
		r = r.Clone()
		if r.Kind == RowSpacer || r.Kind == RowHeader {
			out = append(out, r)
			continue
		}
		values := make(map[string]float64, len(periods))
		for i, p := range periods {
			switch view {
			case ViewGrowth:
				if i == 0 {
					continue
				}
				prev := r.Value(periods[i-1].Key)
				if prev == 0 {
					continue
				}
				values[p.Key] = round((r.Value(p.Key)-prev)/math.Abs(prev)*100, 2)
			case ViewMargin:
				b := base.Value(p.Key)
				if b == 0 {
					continue
				}
				values[p.Key] = round(r.Value(p.Key)/b*100, 2)
			}
		}
		r.Values = values
		r.Total = nil
		out = append(out, r)
	}
	return out
}

// ViewColumns adapts columns to the view: percentages drop the Total column.
func ViewColumns(cols []Column, view View) []Column {
	if view == ViewReport || view == "" {
		return cols
	}
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Fieldname == "total" {
			continue
		}
		if c.FieldType == "Currency" {
			c.FieldType = "Percent"
			c.Options = ""
		}
		out = append(out, c)
	}
	return out
}
