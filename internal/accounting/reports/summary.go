package reports

// SummaryItem is a headline card shown above the statement.
type SummaryItem struct {
	Type      string `json:"type,omitempty"`
	Value     any    `json:"value"`
	Label     string `json:"label,omitempty"`
	Datatype  string `json:"datatype,omitempty"`
	Currency  string `json:"currency,omitempty"`
	Indicator string `json:"indicator,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Amount returns the numeric value of a non separator item.
func (s SummaryItem) Amount() float64 {
	v, _ := s.Value.(float64)
	return v
}

// SummaryParams feeds BuildSummary.
type SummaryParams struct {
	Periods     []Period
	Periodicity Periodicity
	Accumulated bool
	Currency    string
	Statement   ProfitAndLoss
	Income      Section
	COGS        Section
	OPEX        Section
	Tax         Section
}

// BuildSummary computes Total Income - Total Expense = Net Profit. Accumulated
// periods already carry running balances, so only the last one is read.
func BuildSummary(p SummaryParams) []SummaryItem {
	periods := p.Periods
	if p.Accumulated && len(periods) > 0 {
		periods = periods[len(periods)-1:]
	}
	var income, expense, net float64
	for _, pd := range periods {
		income += p.Income.RootSum(pd.Key)
		expense += p.COGS.RootSum(pd.Key) + p.OPEX.RootSum(pd.Key) + p.Tax.RootSum(pd.Key)
		net += p.Statement.NetProfit.Value(pd.Key)
	}

	incomeLabel, expenseLabel, profitLabel := "Total Income", "Total Expense", "Net Profit"
	if len(p.Periods) == 1 && p.Periodicity == PeriodicityYearly {
		incomeLabel, expenseLabel, profitLabel = "Total Income This Year", "Total Expense This Year", "Profit This Year"
	}
	indicator := "Red"
	if net > 0 {
		indicator = "Green"
	}
	return []SummaryItem{
		{Value: round(income, 3), Label: incomeLabel, Datatype: "Currency", Currency: p.Currency},
		{Type: "separator", Value: "-"},
		{Value: round(expense, 3), Label: expenseLabel, Datatype: "Currency", Currency: p.Currency},
		{Type: "separator", Value: "=", Color: "blue"},
		{Value: round(net, 3), Label: profitLabel, Datatype: "Currency", Currency: p.Currency, Indicator: indicator},
	}
}
