package reports

import (
	"sort"
	"strings"
	"unicode"
)

// RootType is the top-level classification of a ledger account.
type RootType string

const (
	RootAsset     RootType = "Asset"
	RootLiability RootType = "Liability"
	RootEquity    RootType = "Equity"
	RootIncome    RootType = "Income"
	RootExpense   RootType = "Expense"
)

// BalanceMustBe is the natural side of an account section.
type BalanceMustBe string

const (
	BalanceDebit  BalanceMustBe = "Debit"
	BalanceCredit BalanceMustBe = "Credit"
)

// Account is a chart of accounts node as stored in the ledger.
type Account struct {
	Name           string
	AccountNumber  string
	AccountName    string
	ParentAccount  string
	RootType       RootType
	ReportType     string
	AccountType    string
	IsGroup        bool
	IncludeInGross bool
	Lft            int
	Rgt            int
}

// Node is an account placed in the report tree, carrying its computed values.
type Node struct {
	Account
	Indent  int
	Values  map[string]float64
	Opening float64
}

// Tree is the display ordered account hierarchy of a section.
type Tree struct {
	Nodes    []*Node
	byName   map[string]*Node
	children map[string][]*Node
}

// DefaultTreeDepth bounds how deep the account hierarchy is rendered.
const DefaultTreeDepth = 20

// BuildTree orders accounts depth-first with indentation. Accounts whose parent
// is not part of the selection are promoted to roots so filtered selections
// (for example only Cost of Goods Sold accounts) still render.
func BuildTree(accounts []Account, depth int) *Tree {
	if depth <= 0 {
		depth = DefaultTreeDepth
	}
	t := &Tree{
		byName:   make(map[string]*Node, len(accounts)),
		children: make(map[string][]*Node),
	}
	for _, acc := range accounts {
		t.byName[acc.Name] = &Node{Account: acc, Values: make(map[string]float64)}
	}
	var roots []*Node
	for _, acc := range accounts {
		n := t.byName[acc.Name]
		if _, ok := t.byName[acc.ParentAccount]; acc.ParentAccount == "" || !ok {
			roots = append(roots, n)
			continue
		}
		t.children[acc.ParentAccount] = append(t.children[acc.ParentAccount], n)
	}

	var walk func(nodes []*Node, level int, isRoot bool)
	walk = func(nodes []*Node, level int, isRoot bool) {
		if level >= depth {
			return
		}
		sortNodes(nodes, isRoot)
		for _, n := range nodes {
			n.Indent = level
			t.Nodes = append(t.Nodes, n)
			walk(t.children[n.Name], level+1, false)
		}
	}
	walk(roots, 0, true)
	return t
}

// Node returns the node for an account name.
func (t *Tree) Node(name string) (*Node, bool) {
	n, ok := t.byName[name]
	return n, ok
}

// Children lists the direct children of an account.
func (t *Tree) Children(name string) []*Node {
	return t.children[name]
}

func sortNodes(nodes []*Node, isRoot bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !isRoot || (numbered(a.Name) && numbered(b.Name)) {
			return a.Name < b.Name
		}
		if ra, rb := rootRank(a.Account), rootRank(b.Account); ra != rb {
			return ra < rb
		}
		return a.Name < b.Name
	})
}

func numbered(name string) bool {
	head := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(head) == 0 {
		return false
	}
	for _, r := range head[0] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// rootRank orders balance sheet roots before profit and loss roots and
// Asset, Liability, Equity, Income, Expense within them.
func rootRank(a Account) int {
	rank := 0
	if a.ReportType != "Balance Sheet" {
		rank = 10
	}
	switch a.RootType {
	case RootAsset:
		return rank + 1
	case RootLiability:
		return rank + 2
	case RootEquity:
		return rank + 3
	case RootIncome:
		return rank + 4
	case RootExpense:
		return rank + 5
	}
	return rank + 6
}
