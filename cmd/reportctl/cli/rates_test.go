package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worldrep/worldrep-report/internal/accounting/ledger"
)

type stubRateSource struct {
	currency string
	rates    map[string]ledger.RateTable
}

func (s stubRateSource) Company(_ context.Context, name string) (ledger.Company, error) {
	if s.currency == "" {
		return ledger.Company{}, fmt.Errorf("%w: %s", ledger.ErrCompanyNotFound, name)
	}
	return ledger.Company{Name: name, DefaultCurrency: s.currency}, nil
}

func (s stubRateSource) ExchangeRates(_ context.Context, from, to string, _ time.Time) (ledger.RateTable, error) {
	table, ok := s.rates[from+to]
	if !ok {
		return nil, nil
	}
	return table, nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestRatesValidateJSONSuccess(t *testing.T) {
	source := stubRateSource{
		currency: "USD",
		rates: map[string]ledger.RateTable{
			"USDEUR": ledger.NewRateTable([]ledger.Rate{{Date: day("2024-01-01"), Rate: 0.91}}),
		},
	}
	cli, err := NewRatesCLI(source)
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	exitCode := cli.ValidateCommand(context.Background(), RatesValidateOptions{
		Company:    "Acme",
		Currencies: []string{"eur", "USD"},
		On:         "2024-06-30",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	require.Zero(t, exitCode)
	require.Empty(t, stderr.String())

	var summary RatesValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.True(t, summary.OK)
	require.Equal(t, []RateResult{{To: "EUR", Rate: 0.91}}, summary.Rates)
}

func TestRatesValidateJSONGaps(t *testing.T) {
	source := stubRateSource{
		currency: "USD",
		rates: map[string]ledger.RateTable{
			"USDEUR": ledger.NewRateTable([]ledger.Rate{{Date: day("2024-07-01"), Rate: 0.91}}),
		},
	}
	cli, err := NewRatesCLI(source)
	require.NoError(t, err)

	stdout := new(bytes.Buffer)
	exitCode := cli.ValidateCommand(context.Background(), RatesValidateOptions{
		Company:    "Acme",
		Currencies: []string{"EUR", "GBP"},
		On:         "2024-06-30",
		JSONOutput: true,
		Stdout:     stdout,
		Stderr:     new(bytes.Buffer),
	})
	require.Equal(t, 10, exitCode)

	var summary RatesValidateSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.False(t, summary.OK)
	require.Equal(t, []string{"EUR", "GBP"}, summary.Gaps)
}

func TestRatesValidateInvalidInput(t *testing.T) {
	cli, err := NewRatesCLI(stubRateSource{})
	require.NoError(t, err)

	stderr := new(bytes.Buffer)
	exitCode := cli.ValidateCommand(context.Background(), RatesValidateOptions{Company: "Acme", On: "30/06/2024", Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "invalid date")

	stderr.Reset()
	exitCode = cli.ValidateCommand(context.Background(), RatesValidateOptions{Company: "Acme", On: "2024-06-30", Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "company not found")
}

func TestSeedDataIsConsistent(t *testing.T) {
	names := make(map[string]seedAccount, len(demoAccounts))
	for _, a := range demoAccounts {
		names[a.name] = a
	}
	for _, a := range demoAccounts {
		if a.parent != "" {
			parent, ok := names[a.parent]
			require.True(t, ok, a.name)
			require.True(t, parent.lft < a.lft && a.rgt < parent.rgt, a.name)
		}
	}
	for _, e := range demoEntries {
		a, ok := names[e.account]
		require.True(t, ok, e.account)
		require.False(t, a.group, e.account)
	}
}
