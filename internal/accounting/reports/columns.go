package reports

// Column describes one output column of a statement.
type Column struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	FieldType string `json:"fieldtype"`
	Options   string `json:"options,omitempty"`
	Width     int    `json:"width,omitempty"`
	Hidden    bool   `json:"hidden,omitempty"`
}

// Columns returns the account column, the hidden currency column, one column
// per period and a Total column unless periods are yearly or accumulated.
func Columns(periodicity Periodicity, periods []Period, accumulated bool) []Column {
	cols := []Column{
		{Fieldname: "account", Label: "Account", FieldType: "Link", Options: "Account", Width: 300},
		{Fieldname: "currency", Label: "Currency", FieldType: "Link", Options: "Currency", Hidden: true},
	}
	for _, p := range periods {
		cols = append(cols, Column{
			Fieldname: p.Key,
			Label:     p.Label,
			FieldType: "Currency",
			Options:   "currency",
			Width:     150,
		})
	}
	if periodicity != PeriodicityYearly && !accumulated {
		cols = append(cols, Column{
			Fieldname: "total",
			Label:     "Total",
			FieldType: "Currency",
			Options:   "currency",
			Width:     150,
		})
	}
	return cols
}
