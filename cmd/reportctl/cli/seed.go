package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DemoCompany is the company created by Seed.
const DemoCompany = "Worldrep Demo"

type seedAccount struct {
	name, number, label, parent, root, accountType string
	group                                          bool
	lft, rgt                                       int
}

type seedEntry struct {
	account       string
	date          string
	debit, credit float64
	costCenter    string
	branch        string
}

var demoAccounts = []seedAccount{
	{name: "Income - WD", number: "4000", label: "Income", root: "Income", group: true, lft: 1, rgt: 6},
	{name: "Sales - WD", number: "4100", label: "Sales", parent: "Income - WD", root: "Income", lft: 2, rgt: 3},
	{name: "Service - WD", number: "4200", label: "Service", parent: "Income - WD", root: "Income", lft: 4, rgt: 5},
	{name: "Expenses - WD", number: "5000", label: "Expenses", root: "Expense", group: true, lft: 7, rgt: 16},
	{name: "Cost of Goods Sold - WD", number: "5100", label: "Cost of Goods Sold", parent: "Expenses - WD", root: "Expense", accountType: "Cost of Goods Sold", lft: 8, rgt: 9},
	{name: "Salary - WD", number: "5200", label: "Salary", parent: "Expenses - WD", root: "Expense", lft: 10, rgt: 11},
	{name: "Rent - WD", number: "5300", label: "Rent", parent: "Expenses - WD", root: "Expense", lft: 12, rgt: 13},
	{name: "Income Tax - WD", number: "5400", label: "Income Tax", parent: "Expenses - WD", root: "Expense", accountType: "Tax", lft: 14, rgt: 15},
}

var demoEntries = []seedEntry{
	{account: "Sales - WD", date: "2024-02-15", credit: 12000, costCenter: "Main - WD", branch: "HQ"},
	{account: "Sales - WD", date: "2024-05-20", credit: 15000, costCenter: "Main - WD", branch: "HQ East"},
	{account: "Service - WD", date: "2024-08-01", credit: 4000, costCenter: "Main - WD", branch: "HQ"},
	{account: "Cost of Goods Sold - WD", date: "2024-02-15", debit: 7000, costCenter: "Main - WD", branch: "HQ"},
	{account: "Cost of Goods Sold - WD", date: "2024-05-20", debit: 8500, costCenter: "Main - WD", branch: "HQ East"},
	{account: "Salary - WD", date: "2024-03-31", debit: 3000, costCenter: "Main - WD", branch: "HQ"},
	{account: "Salary - WD", date: "2024-09-30", debit: 3000, costCenter: "Main - WD", branch: "HQ"},
	{account: "Rent - WD", date: "2024-06-30", debit: 1800, costCenter: "Main - WD", branch: "HQ"},
	{account: "Income Tax - WD", date: "2024-12-31", debit: 1200, costCenter: "Main - WD", branch: "HQ"},
}

// Seed inserts a demo company with one fiscal year of postings. Existing rows
// are left untouched.
func Seed(ctx context.Context, tx pgx.Tx) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO companies (name, default_currency, default_finance_book) VALUES ($1, 'USD', NULL)
ON CONFLICT (name) DO NOTHING`, DemoCompany)
	batch.Queue(`INSERT INTO fiscal_years (name, company, year_start_date, year_end_date) VALUES ('2024', $1, '2024-01-01', '2024-12-31')
ON CONFLICT (name) DO NOTHING`, DemoCompany)
	batch.Queue(`INSERT INTO cost_centers (name, company, lft, rgt) VALUES ('Main - WD', $1, 1, 2)
ON CONFLICT (name) DO NOTHING`, DemoCompany)
	batch.Queue(`INSERT INTO accounting_dimensions (fieldname, label, document_type, is_tree, idx) VALUES ('branch', 'Branch', 'Branch', TRUE, 1)
ON CONFLICT (fieldname) DO NOTHING`)
	batch.Queue(`CREATE TABLE IF NOT EXISTS branch (name TEXT PRIMARY KEY, lft INTEGER NOT NULL, rgt INTEGER NOT NULL)`)
	batch.Queue(`INSERT INTO branch (name, lft, rgt) VALUES ('HQ', 1, 4), ('HQ East', 2, 3) ON CONFLICT (name) DO NOTHING`)
	batch.Queue(`INSERT INTO currency_exchange (from_currency, to_currency, date, exchange_rate) VALUES ('USD', 'EUR', '2024-01-01', 0.91)
ON CONFLICT DO NOTHING`)
	for _, a := range demoAccounts {
		batch.Queue(`INSERT INTO accounts (name, company, account_number, account_name, parent_account, root_type, report_type,
    account_type, is_group, lft, rgt)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, 'Profit and Loss', NULLIF($7, ''), $8, $9, $10)
ON CONFLICT (name) DO NOTHING`, a.name, DemoCompany, a.number, a.label, a.parent, a.root, a.accountType, a.group, a.lft, a.rgt)
	}
	for i, e := range demoEntries {
		date, err := time.Parse("2006-01-02", e.date)
		if err != nil {
			return fmt.Errorf("seed: entry %d date: %w", i, err)
		}
		batch.Queue(`INSERT INTO gl_entries (company, account, posting_date, debit, credit, debit_in_account_currency,
    credit_in_account_currency, account_currency, fiscal_year, cost_center, voucher_type, voucher_no, dimensions)
SELECT $1, $2, $3, $4, $5, $4, $5, 'USD', '2024', $6, 'Journal Entry', $7, jsonb_build_object('branch', $8::text)
WHERE NOT EXISTS (SELECT 1 FROM gl_entries WHERE voucher_no = $7)`,
			DemoCompany, e.account, date, e.debit, e.credit, e.costCenter, fmt.Sprintf("JV-DEMO-%03d", i+1), e.branch)
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("seed: statement %d: %w", i+1, err)
		}
	}
	return results.Close()
}
