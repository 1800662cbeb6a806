package ledger

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/worldrep/worldrep-report/internal/accounting/reports"
	"github.com/worldrep/worldrep-report/internal/reportfilter"
)

//go:embed schema.sql
var schema string

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads the general ledger.
type Repository struct {
	db Querier
}

// NewRepository constructs a ledger repository.
func NewRepository(db Querier) *Repository {
	return &Repository{db: db}
}

// ApplySchema creates the ledger tables when missing.
func (r *Repository) ApplySchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ledger: apply schema: %w", err)
	}
	return nil
}

// Company loads a company by name.
func (r *Repository) Company(ctx context.Context, name string) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `SELECT name, default_currency, COALESCE(default_finance_book, '')
FROM companies WHERE name = $1`, name).Scan(&c.Name, &c.DefaultCurrency, &c.DefaultFinanceBook)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, fmt.Errorf("%w: %s", ErrCompanyNotFound, name)
		}
		return Company{}, err
	}
	return c, nil
}

// FiscalYears lists the fiscal years shared by all companies or owned by company.
func (r *Repository) FiscalYears(ctx context.Context, company string) ([]reports.FiscalYear, error) {
	rows, err := r.db.Query(ctx, `SELECT name, year_start_date, year_end_date FROM fiscal_years
WHERE company IS NULL OR company = $1 ORDER BY year_start_date`, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []reports.FiscalYear
	for rows.Next() {
		var fy reports.FiscalYear
		if err := rows.Scan(&fy.Name, &fy.StartDate, &fy.EndDate); err != nil {
			return nil, err
		}
		years = append(years, fy)
	}
	return years, rows.Err()
}

// Accounts lists accounts of one root type in tree order.
func (r *Repository) Accounts(ctx context.Context, q AccountQuery) ([]reports.Account, error) {
	sql, args := buildAccountQuery(q)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []reports.Account
	for rows.Next() {
		var a reports.Account
		var root string
		if err := rows.Scan(&a.Name, &a.AccountNumber, &a.AccountName, &a.ParentAccount, &root,
			&a.ReportType, &a.AccountType, &a.IsGroup, &a.IncludeInGross, &a.Lft, &a.Rgt); err != nil {
			return nil, err
		}
		a.RootType = reports.RootType(root)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GLEntries lists posted, non-cancelled entries matching q.
func (r *Repository) GLEntries(ctx context.Context, q EntryQuery) ([]reports.GLEntry, error) {
	sql, args := buildEntryQuery(q)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []reports.GLEntry
	for rows.Next() {
		var e reports.GLEntry
		if err := rows.Scan(&e.Account, &e.PostingDate, &e.Debit, &e.Credit, &e.DebitInAccountCurrency,
			&e.CreditInAccountCurrency, &e.AccountCurrency, &e.FiscalYear, &e.IsOpening); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CostCenterDescendants expands cost centers to themselves and all descendants.
func (r *Repository) CostCenterDescendants(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return r.descendants(ctx, "cost_centers", names)
}

// AccountingDimensions lists enabled dimensions in display order.
func (r *Repository) AccountingDimensions(ctx context.Context) ([]reportfilter.Dimension, error) {
	rows, err := r.db.Query(ctx, `SELECT fieldname, COALESCE(label, ''), document_type, is_tree
FROM accounting_dimensions WHERE NOT disabled ORDER BY idx, fieldname`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dims []reportfilter.Dimension
	for rows.Next() {
		var d reportfilter.Dimension
		if err := rows.Scan(&d.Fieldname, &d.Label, &d.DocumentType, &d.IsTree); err != nil {
			return nil, err
		}
		dims = append(dims, d)
	}
	return dims, rows.Err()
}

// DimensionDescendants expands values of a tree dimension. Values of flat
// dimensions are returned unchanged.
func (r *Repository) DimensionDescendants(ctx context.Context, dim reportfilter.Dimension, names []string) ([]string, error) {
	if !dim.IsTree || len(names) == 0 {
		return names, nil
	}
	return r.descendants(ctx, dimensionTable(dim.DocumentType), names)
}

func (r *Repository) descendants(ctx context.Context, table string, names []string) ([]string, error) {
	ident := pgx.Identifier{table}.Sanitize()
	sql := fmt.Sprintf(`SELECT DISTINCT c.name FROM %s c JOIN %s p ON c.lft >= p.lft AND c.rgt <= p.rgt
WHERE p.name = ANY($1) ORDER BY c.name`, ident, ident)
	rows, err := r.db.Query(ctx, sql, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ExchangeRates loads the rate history from one currency to another up to a
// date. Inverse quotes are used when no direct quote exists.
func (r *Repository) ExchangeRates(ctx context.Context, from, to string, upTo time.Time) (RateTable, error) {
	rates, err := r.rates(ctx, from, to, upTo)
	if err != nil {
		return nil, err
	}
	if len(rates) > 0 {
		return NewRateTable(rates), nil
	}
	inverse, err := r.rates(ctx, to, from, upTo)
	if err != nil {
		return nil, err
	}
	if len(inverse) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrRateNotFound, from, to)
	}
	for i := range inverse {
		inverse[i].Rate = 1 / inverse[i].Rate
	}
	return NewRateTable(inverse), nil
}

func (r *Repository) rates(ctx context.Context, from, to string, upTo time.Time) ([]Rate, error) {
	rows, err := r.db.Query(ctx, `SELECT date, exchange_rate::float8 FROM currency_exchange
WHERE from_currency = $1 AND to_currency = $2 AND date <= $3 AND exchange_rate <> 0 ORDER BY date`, from, to, upTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Rate
	for rows.Next() {
		var rate Rate
		if err := rows.Scan(&rate.Date, &rate.Rate); err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}

func buildAccountQuery(q AccountQuery) (string, []any) {
	conditions := []string{"company = $1", "root_type = $2"}
	args := []any{q.Company, string(q.RootType)}
	argPos := 3
	if len(q.AccountTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("account_type = ANY($%d)", argPos))
		args = append(args, q.AccountTypes)
		argPos++
	}
	if len(q.ExcludeAccountTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("COALESCE(account_type, '') <> ALL($%d)", argPos))
		args = append(args, q.ExcludeAccountTypes)
	}
	sql := `SELECT name, COALESCE(account_number, ''), account_name, COALESCE(parent_account, ''), root_type,
       report_type, COALESCE(account_type, ''), is_group, include_in_gross, lft, rgt
FROM accounts
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY lft, name`
	return sql, args
}

func buildEntryQuery(q EntryQuery) (string, []any) {
	conditions := []string{"company = $1", "NOT is_cancelled", "posting_date <= $2"}
	args := []any{q.Company, q.ToDate}
	argPos := 3

	add := func(cond string, arg any) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, arg)
		argPos++
	}

	if !q.FromDate.IsZero() {
		add("posting_date >= $%d", q.FromDate)
	}
	if len(q.Accounts) > 0 {
		add("account = ANY($%d)", q.Accounts)
	}
	if len(q.FinanceBooks) > 0 {
		add("(finance_book = ANY($%d) OR finance_book IS NULL OR finance_book = '')", q.FinanceBooks)
	}
	if len(q.CostCenters) > 0 {
		add("cost_center = ANY($%d)", q.CostCenters)
	}
	if len(q.Projects) > 0 {
		add("project = ANY($%d)", q.Projects)
	}
	for _, field := range sortedKeys(q.Dimensions) {
		values := q.Dimensions[field]
		if len(values) == 0 {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("dimensions ->> $%d = ANY($%d)", argPos, argPos+1))
		args = append(args, field, values)
		argPos += 2
	}
	if q.IgnoreClosingEntries {
		add("voucher_type <> $%d", ClosingVoucherType)
	}
	if q.IgnoreOpeningEntries {
		conditions = append(conditions, "NOT is_opening")
	}

	sql := `SELECT account, posting_date, debit::float8, credit::float8, debit_in_account_currency::float8,
       credit_in_account_currency::float8, COALESCE(account_currency, ''), COALESCE(fiscal_year, ''), is_opening
FROM gl_entries
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY account, posting_date`
	return sql, args
}

func dimensionTable(documentType string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(documentType)), " ", "_")
}
