package reports

import (
	"math"
	"time"
)

// zeroThreshold is the smallest absolute amount treated as a value.
const zeroThreshold = 0.005

// GLEntry is a posted general ledger line.
type GLEntry struct {
	Account                 string
	PostingDate             time.Time
	Debit                   float64
	Credit                  float64
	DebitInAccountCurrency  float64
	CreditInAccountCurrency float64
	AccountCurrency         string
	FiscalYear              string
	IsOpening               bool
}

// CalculateValues adds debit minus credit of each entry into its account for
// every period the entry falls in. With accumulated set, periods carry running
// balances from the start of the window. Entries for unknown accounts are
// skipped and their account names returned.
func CalculateValues(t *Tree, entries []GLEntry, periods []Period, accumulated bool) []string {
	if len(periods) == 0 {
		return nil
	}
	var missing []string
	seen := make(map[string]struct{})
	yearStart := periods[0].YearStartDate
	for _, e := range entries {
		n, ok := t.byName[e.Account]
		if !ok {
			if _, dup := seen[e.Account]; !dup {
				seen[e.Account] = struct{}{}
				missing = append(missing, e.Account)
			}
			continue
		}
		amount := e.Debit - e.Credit
		posted := truncateDay(e.PostingDate)
		for _, p := range periods {
			if posted.After(p.ToDate) {
				continue
			}
			if accumulated || !posted.Before(p.FromDate) {
				n.Values[p.Key] += amount
			}
		}
		if posted.Before(yearStart) {
			n.Opening += amount
		}
	}
	return missing
}

// AccumulateIntoParents rolls child values up into their parents, deepest first.
func AccumulateIntoParents(t *Tree, periods []Period) {
	for i := len(t.Nodes) - 1; i >= 0; i-- {
		n := t.Nodes[i]
		parent, ok := t.byName[n.ParentAccount]
		if n.ParentAccount == "" || !ok {
			continue
		}
		for _, p := range periods {
			parent.Values[p.Key] += n.Values[p.Key]
		}
		parent.Opening += n.Opening
	}
}

// PrepareRows converts the tree into display rows. Credit sections flip the
// sign so that their natural balance is positive.
func PrepareRows(t *Tree, balance BalanceMustBe, periods []Period, currency string) []Row {
	rows := make([]Row, 0, len(t.Nodes))
	sign := 1.0
	if balance == BalanceCredit {
		sign = -1
	}
	for _, n := range t.Nodes {
		name := n.AccountName
		if n.AccountNumber != "" {
			name = n.AccountNumber + " - " + n.AccountName
		}
		row := Row{
			Key:            AccountKey(n.Name),
			Kind:           RowAccount,
			Account:        n.Name,
			AccountName:    name,
			ParentAccount:  n.ParentAccount,
			Indent:         n.Indent,
			AccountType:    n.AccountType,
			IsGroup:        n.IsGroup,
			IncludeInGross: n.IncludeInGross,
			Currency:       currency,
			OpeningBalance: sign * n.Opening,
			Values:         make(map[string]float64, len(periods)),
		}
		var total float64
		for _, p := range periods {
			v := round(sign*n.Values[p.Key], 3)
			if v == 0 {
				v = 0 // drop negative zero
			}
			row.Values[p.Key] = v
			if math.Abs(v) >= zeroThreshold {
				row.HasValue = true
				total += v
			}
		}
		row.Total = floatPtr(total)
		rows = append(rows, row)
	}
	return rows
}

// FilterZeroRows drops rows without values unless a direct child has one.
func FilterZeroRows(rows []Row, t *Tree, showZero bool) []Row {
	hasValue := make(map[string]bool, len(rows))
	for _, r := range rows {
		hasValue[r.Account] = r.HasValue
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if showZero || r.HasValue {
			out = append(out, r)
			continue
		}
		for _, child := range t.Children(r.Account) {
			if hasValue[child.Name] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// AddTotalRow appends "Total <root> (<balance>)" summing root rows, followed by
// a spacer. Nothing is appended when there are no root rows.
func AddTotalRow(rows []Row, section string, root RootType, balance BalanceMustBe, periods []Period, currency string) []Row {
	total := Row{
		Key:       TotalKey(section),
		Kind:      RowTotal,
		Label:     "Total %s (%s)",
		LabelArgs: []string{string(root), string(balance)},
		Currency:  currency,
		Values:    make(map[string]float64, len(periods)),
		Bold:      true,
	}
	found := false
	var sum float64
	for _, r := range rows {
		if !r.IsRoot() {
			continue
		}
		found = true
		for _, p := range periods {
			total.Values[p.Key] += r.Value(p.Key)
		}
		if r.Total != nil {
			sum += *r.Total
		}
		total.OpeningBalance += r.OpeningBalance
	}
	if !found {
		return rows
	}
	total.Total = floatPtr(sum)
	return append(rows, total, Row{Key: SpacerKey(section), Kind: RowSpacer})
}

// Section is the rendered rows of one account selection.
type Section struct {
	Name string
	Rows []Row
}

// Empty reports whether the section has no rows.
func (s Section) Empty() bool {
	return len(s.Rows) == 0
}

// RootSum totals the top-level account rows for a period key.
func (s Section) RootSum(key string) float64 {
	var sum float64
	for _, r := range s.Rows {
		if r.IsRoot() {
			sum += round(r.Value(key), 3)
		}
	}
	return sum
}

// HasPositiveTotal reports whether any account row has a positive total.
func (s Section) HasPositiveTotal() bool {
	for _, r := range s.Rows {
		if r.Kind == RowAccount && r.Total != nil && *r.Total > 0 {
			return true
		}
	}
	return false
}

// SectionParams configures BuildSection.
type SectionParams struct {
	Name        string
	Root        RootType
	Balance     BalanceMustBe
	Accounts    []Account
	Entries     []GLEntry
	Periods     []Period
	Currency    string
	Accumulated bool
	ShowZero    bool
	Depth       int
}

// BuildSection runs the tree, value, row and total pipeline for one selection.
// It returns the section and the accounts referenced by entries but missing
// from the selection.
func BuildSection(p SectionParams) (Section, []string) {
	sec := Section{Name: p.Name}
	if len(p.Accounts) == 0 {
		return sec, nil
	}
	tree := BuildTree(p.Accounts, p.Depth)
	missing := CalculateValues(tree, p.Entries, p.Periods, p.Accumulated)
	AccumulateIntoParents(tree, p.Periods)
	rows := PrepareRows(tree, p.Balance, p.Periods, p.Currency)
	rows = FilterZeroRows(rows, tree, p.ShowZero)
	sec.Rows = AddTotalRow(rows, p.Name, p.Root, p.Balance, p.Periods, p.Currency)
	return sec, missing
}
