package reports

// Section names used as stable key prefixes.
const (
	SectionIncome = "income"
	SectionCOGS   = "cogs"
	SectionOPEX   = "opex"
	SectionTax    = "tax"
)

// ProfitAndLossInput carries the four account sections of the statement.
type ProfitAndLossInput struct {
	Periods  []Period
	Currency string
	Income   Section
	COGS     Section
	OPEX     Section
	Tax      Section
}

// ProfitAndLoss is the assembled statement.
type ProfitAndLoss struct {
	Rows        []Row
	GrossProfit Row
	NetProfit   Row
	TotalOPEX   *Row
	TotalTax    *Row
	TotalCOGS   *Row
}

// BuildProfitAndLoss lays out income, cost of goods sold, operating expenses
// and taxes with their subtotals:
//
//	Gross Profit           = Income - COGS
//	Profit from Operations = Gross Profit - OPEX
//	Net Profit             = Gross Profit - OPEX - Taxes
//
// Subtotals are computed for every period from the top-level account rows.
func BuildProfitAndLoss(in ProfitAndLossInput) ProfitAndLoss {
	var out ProfitAndLoss
	rows := make([]Row, 0, len(in.Income.Rows)+len(in.COGS.Rows)+len(in.OPEX.Rows)+len(in.Tax.Rows)+8)
	rows = append(rows, in.Income.Rows...)

	if !in.COGS.Empty() {
		rows = append(rows, Row{
			Key:   "cogs:header",
			Kind:  RowHeader,
			Label: "Cost of Goods Sold (COGS)",
			Bold:  true,
		})
		rows = append(rows, in.COGS.Rows...)
		total := computedRow("cogs:total", "Total COGS", in.Currency, in.Periods, in.COGS.RootSum)
		total.Bold = true
		out.TotalCOGS = &total
		rows = append(rows, total)
	}

	gross := computedRow(KeyGrossProfit, "Gross Profit", in.Currency, in.Periods, func(key string) float64 {
		return in.Income.RootSum(key) - in.COGS.RootSum(key)
	})
	gross.WarnIfNegative = true
	out.GrossProfit = gross
	rows = append(rows, gross)

	if in.OPEX.HasPositiveTotal() {
		rows = append(rows, in.OPEX.Rows...)
		total := computedRow("opex:total", "Total OPEX", in.Currency, in.Periods, in.OPEX.RootSum)
		total.Bold = true
		out.TotalOPEX = &total
		rows = append(rows, total)

		ops := computedRow(KeyProfitFromOperations, "Profit from Operations", in.Currency, in.Periods, func(key string) float64 {
			return gross.Value(key) - total.Value(key)
		})
		ops.WarnIfNegative = true
		rows = append(rows, ops)
	}

	if !in.Tax.Empty() {
		total := computedRow("tax:total", "Taxes and Zakat", in.Currency, in.Periods, in.Tax.RootSum)
		total.Bold = true
		out.TotalTax = &total
		rows = append(rows, total)
		rows = append(rows, in.Tax.Rows...)
	}

	net := computedRow(KeyNetProfit, "Net Profit for the year", in.Currency, in.Periods, func(key string) float64 {
		v := gross.Value(key)
		if out.TotalOPEX != nil {
			v -= out.TotalOPEX.Value(key)
		}
		if out.TotalTax != nil {
			v -= out.TotalTax.Value(key)
		}
		return v
	})
	net.WarnIfNegative = true
	net.Bold = true
	out.NetProfit = net
	rows = append(rows, net)

	out.Rows = rows
	return out
}

func computedRow(key, label, currency string, periods []Period, value func(key string) float64) Row {
	row := Row{
		Key:      key,
		Kind:     RowComputed,
		Label:    label,
		Currency: currency,
		Values:   make(map[string]float64, len(periods)),
	}
	var total float64
	for _, p := range periods {
		v := round(value(p.Key), 3)
		row.Values[p.Key] = v
		total += v
		if v != 0 {
			row.HasValue = true
		}
	}
	row.Total = floatPtr(round(total, 3))
	return row
}
