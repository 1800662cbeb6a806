package ledger

import (
	"errors"
	"sort"
	"time"

	"github.com/worldrep/worldrep-report/internal/accounting/reports"
)

var (
	// ErrCompanyNotFound indicates the company does not exist.
	ErrCompanyNotFound = errors.New("ledger: company not found")
	// ErrRateNotFound indicates no exchange rate is recorded for the pair.
	ErrRateNotFound = errors.New("ledger: exchange rate not found")
)

// ClosingVoucherType marks entries that close a fiscal year into equity.
const ClosingVoucherType = "Period Closing Voucher"

// Company is the reporting entity.
type Company struct {
	Name               string
	DefaultCurrency    string
	DefaultFinanceBook string
}

// AccountQuery selects chart of accounts nodes for one statement section.
type AccountQuery struct {
	Company             string
	RootType            reports.RootType
	AccountTypes        []string
	ExcludeAccountTypes []string
}

// EntryQuery selects posted ledger lines. Empty slices do not filter.
type EntryQuery struct {
	Company      string
	FromDate     time.Time
	ToDate       time.Time
	Accounts     []string
	FinanceBooks []string
	CostCenters  []string
	Projects     []string
	// Dimensions maps a dimension fieldname to accepted values.
	Dimensions map[string][]string

	IgnoreClosingEntries bool
	IgnoreOpeningEntries bool
}

// Rate is the conversion rate effective from Date.
type Rate struct {
	Date time.Time
	Rate float64
}

// RateTable is a rate history for one currency pair, ordered by date.
type RateTable []Rate

// NewRateTable sorts rates by date.
func NewRateTable(rates []Rate) RateTable {
	t := append(RateTable(nil), rates...)
	sort.Slice(t, func(i, j int) bool { return t[i].Date.Before(t[j].Date) })
	return t
}

// At returns the latest rate effective on or before the given date.
func (t RateTable) At(on time.Time) (float64, error) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Date.After(on) })
	if i == 0 {
		return 0, ErrRateNotFound
	}
	return t[i-1].Rate, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
