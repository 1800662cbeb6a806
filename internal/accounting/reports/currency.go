package reports

import (
	"fmt"
	"time"
)

// RateFunc returns the conversion rate from one currency to another on a date.
type RateFunc func(from, to string, on time.Time) (float64, error)

// ConvertEntries restates entries in the presentation currency. Entries booked
// in the presentation currency keep their account currency amounts; others
// are converted from the company currency at the posting date rate.
func ConvertEntries(entries []GLEntry, companyCurrency, presentation string, rate RateFunc) ([]GLEntry, error) {
	if presentation == "" || presentation == companyCurrency {
		return entries, nil
	}
	out := make([]GLEntry, len(entries))
	for i, e := range entries {
		if e.AccountCurrency == presentation {
			e.Debit = e.DebitInAccountCurrency
			e.Credit = e.CreditInAccountCurrency
			out[i] = e
			continue
		}
		r, err := rate(companyCurrency, presentation, e.PostingDate)
		if err != nil {
			return nil, fmt.Errorf("reports: convert %s to %s: %w", companyCurrency, presentation, err)
		}
		e.Debit *= r
		e.Credit *= r
		out[i] = e
	}
	return out, nil
}
