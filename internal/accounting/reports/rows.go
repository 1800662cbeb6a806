package reports

import (
	"math"
	"strings"
)

// RowKind distinguishes ledger rows from rows computed by the statement.
type RowKind string

const (
	RowAccount  RowKind = "account"
	RowTotal    RowKind = "total"
	RowHeader   RowKind = "header"
	RowComputed RowKind = "computed"
	RowSpacer   RowKind = "spacer"
)

// Row is one line of a financial statement. Values are keyed by Period.Key.
// Label is the untranslated text for non-account rows; LabelArgs are
// translated and substituted into it.
type Row struct {
	Key            string             `json:"key"`
	Kind           RowKind            `json:"kind"`
	Account        string             `json:"account,omitempty"`
	AccountName    string             `json:"account_name,omitempty"`
	Label          string             `json:"label,omitempty"`
	LabelArgs      []string           `json:"label_args,omitempty"`
	ParentAccount  string             `json:"parent_account,omitempty"`
	Indent         int                `json:"indent"`
	AccountType    string             `json:"account_type,omitempty"`
	IsGroup        bool               `json:"is_group,omitempty"`
	IncludeInGross bool               `json:"include_in_gross,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	OpeningBalance float64            `json:"opening_balance"`
	Values         map[string]float64 `json:"values,omitempty"`
	Total          *float64           `json:"total,omitempty"`
	HasValue       bool               `json:"has_value,omitempty"`
	WarnIfNegative bool               `json:"warn_if_negative,omitempty"`
	Bold           bool               `json:"bold,omitempty"`
	Hidden         bool               `json:"hidden,omitempty"`
}

// IsRoot reports whether the row is a top-level ledger account.
func (r Row) IsRoot() bool {
	return r.Kind == RowAccount && r.Indent == 0
}

// Value returns the amount for a period key, zero when absent.
func (r Row) Value(key string) float64 {
	if r.Values == nil {
		return 0
	}
	return r.Values[key]
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	out := r
	if r.Values != nil {
		out.Values = make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			out.Values[k] = v
		}
	}
	if r.Total != nil {
		t := *r.Total
		out.Total = &t
	}
	if r.LabelArgs != nil {
		out.LabelArgs = append([]string(nil), r.LabelArgs...)
	}
	return out
}

// Stable row keys used by hooks and exports.
const (
	KeyGrossProfit          = "gross_profit"
	KeyProfitFromOperations = "profit_from_operations"
	KeyNetProfit            = "net_profit"
)

// AccountKey is the stable key of a ledger account row.
func AccountKey(account string) string {
	return "account:" + account
}

// TotalKey is the stable key of a section total row.
func TotalKey(section string) string {
	return "total:" + strings.ToLower(section)
}

// SpacerKey is the stable key of the blank row following a section total.
func SpacerKey(section string) string {
	return "spacer:" + strings.ToLower(section)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func floatPtr(v float64) *float64 {
	return &v
}
