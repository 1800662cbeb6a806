package reports

import "fmt"

// Formatter translates key and substitutes args, like fmt.Sprintf.
type Formatter func(key string, args ...any) string

func (f Formatter) orDefault() Formatter {
	if f == nil {
		return fmt.Sprintf
	}
	return f
}

// LabelRows fills AccountName of statement rows that carry a Label. Label
// arguments are translated before substitution.
func LabelRows(rows []Row, f Formatter) []Row {
	f = f.orDefault()
	out := make([]Row, len(rows))
	for i, r := range rows {
		r = r.Clone()
		if r.Label != "" {
			args := make([]any, len(r.LabelArgs))
			for j, a := range r.LabelArgs {
				args[j] = f(a)
			}
			r.AccountName = f(r.Label, args...)
		}
		out[i] = r
	}
	return out
}

// LabelSummary translates summary labels.
func LabelSummary(items []SummaryItem, f Formatter) []SummaryItem {
	f = f.orDefault()
	out := make([]SummaryItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Label != "" {
			out[i].Label = f(out[i].Label)
		}
	}
	return out
}

// LabelColumns translates fixed column labels. Period labels are kept.
func LabelColumns(cols []Column, f Formatter) []Column {
	f = f.orDefault()
	out := make([]Column, len(cols))
	copy(out, cols)
	for i := range out {
		switch out[i].Fieldname {
		case "account", "currency", "total":
			out[i].Label = f(out[i].Label)
		}
	}
	return out
}
