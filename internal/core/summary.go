package core

import "github.com/shopspring/decimal"

// ConvertFunc converts an amount between two currencies synchronously.
// Implementations must not block on the network.
type ConvertFunc func(amount float64, from, to string) float64

// Summary aggregates a set of records: totals, balance, per-category and
// per-source breakdowns, and counts per type. Currency is the target
// currency the amounts were converted to, or empty when amounts are the
// stored, unconverted values.
type Summary struct {
	TotalIncome   float64            `json:"totalIncome"`
	TotalExpenses float64            `json:"totalExpenses"`
	Balance       float64            `json:"balance"`
	ByCategory    map[string]float64 `json:"byCategory"`
	BySource      map[string]float64 `json:"bySource"`
	ExpenseCount  int                `json:"expenseCount"`
	IncomeCount   int                `json:"incomeCount"`
	Currency      string             `json:"currency,omitempty"`
}

// Summarize reduces records to a Summary. When target is non-empty and
// conv is non-nil, every amount is converted to the target currency
// before accumulation. Totals are accumulated with decimals and rounded
// to two fractional digits on output.
func Summarize(records []Record, target string, conv ConvertFunc) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	bySource := map[string]decimal.Decimal{}

	s := Summary{Currency: target}
	for _, r := range records {
		amount := r.Amount
		if target != "" && conv != nil {
			amount = conv(amount, r.Currency, target)
		}
		d := decimal.NewFromFloat(amount)
		switch r.Type {
		case TypeExpense:
			expenses = expenses.Add(d)
			byCategory[r.Category] = byCategory[r.Category].Add(d)
			s.ExpenseCount++
		case TypeIncome:
			income = income.Add(d)
			bySource[r.Source] = bySource[r.Source].Add(d)
			s.IncomeCount++
		}
	}

	s.TotalIncome = round2(income)
	s.TotalExpenses = round2(expenses)
	s.Balance = round2(income.Sub(expenses))
	s.ByCategory = roundMap(byCategory)
	s.BySource = roundMap(bySource)
	return s
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func roundMap(in map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = round2(v)
	}
	return out
}
