package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
)

// RateSource reads company currencies and exchange rates.
type RateSource interface {
	Company(ctx context.Context, name string) (ledger.Company, error)
	ExchangeRates(ctx context.Context, from, to string, upTo time.Time) (ledger.RateTable, error)
}

// RatesCLI offers operational checks on presentation currency rates.
type RatesCLI struct {
	source RateSource
}

// NewRatesCLI constructs a new helper instance.
func NewRatesCLI(source RateSource) (*RatesCLI, error) {
	if source == nil {
		return nil, errors.New("rates cli: source required")
	}
	return &RatesCLI{source: source}, nil
}

// RatesValidateOptions defines available flags for the rates validate command.
type RatesValidateOptions struct {
	Company    string
	Currencies []string
	On         string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RatesValidateSummary describes the JSON response for rates validate.
type RatesValidateSummary struct {
	OK      bool         `json:"ok"`
	Company string       `json:"company"`
	From    string       `json:"from"`
	On      string       `json:"on"`
	Rates   []RateResult `json:"rates"`
	Gaps    []string     `json:"gaps"`
}

// RateResult is one resolved presentation currency rate.
type RateResult struct {
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

// ValidateCommand checks that every presentation currency converts from the
// company currency on the given date. It exits 10 when a rate is missing.
func (c *RatesCLI) ValidateCommand(ctx context.Context, opts RatesValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if strings.TrimSpace(opts.Company) == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "rates validate: --company is required")
		return 1
	}
	on, err := time.Parse("2006-01-02", strings.TrimSpace(opts.On))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "rates validate: invalid date %q (expected YYYY-MM-DD)\n", opts.On)
		return 1
	}
	company, err := c.source.Company(ctx, opts.Company)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "rates validate: %v\n", err)
		return 1
	}

	summary := RatesValidateSummary{
		Company: company.Name,
		From:    company.DefaultCurrency,
		On:      on.Format("2006-01-02"),
		Rates:   []RateResult{},
		Gaps:    []string{},
	}
	for _, to := range opts.Currencies {
		to = strings.ToUpper(strings.TrimSpace(to))
		if to == "" || to == company.DefaultCurrency {
			continue
		}
		table, err := c.source.ExchangeRates(ctx, company.DefaultCurrency, to, on)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: %v\n", err)
			return 1
		}
		rate, err := table.At(on)
		if errors.Is(err, ledger.ErrRateNotFound) {
			summary.Gaps = append(summary.Gaps, to)
			continue
		}
		summary.Rates = append(summary.Rates, RateResult{To: to, Rate: rate})
	}
	summary.OK = len(summary.Gaps) == 0

	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: encode json: %v\n", err)
			return 1
		}
	} else {
		renderRatesHuman(opts.Stdout, summary)
	}
	if !summary.OK {
		return 10
	}
	return 0
}

func renderRatesHuman(out io.Writer, s RatesValidateSummary) {
	_, _ = fmt.Fprintf(out, "Rates for %s (%s) on %s\n", s.Company, s.From, s.On)
	for _, r := range s.Rates {
		_, _ = fmt.Fprintf(out, " - %s/%s %.6f\n", s.From, r.To, r.Rate)
	}
	if len(s.Gaps) == 0 {
		_, _ = fmt.Fprintln(out, "All presentation currencies have a rate.")
		return
	}
	_, _ = fmt.Fprintf(out, "%d currency(ies) without a rate: %s\n", len(s.Gaps), strings.Join(s.Gaps, ", "))
}
