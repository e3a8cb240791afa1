package core

import "testing"

func sampleRecords(t *testing.T) []Record {
	t.Helper()
	e1, _ := NewExpense(30, "2024-01-10", "Food", "", "USD")
	e2, _ := NewExpense(20, "2024-01-12", "Food", "", "USD")
	e3, _ := NewExpense(50, "2024-01-15", "Transportation", "", "USD")
	i1, _ := NewIncome(200, "2024-01-01", "Salary", "", "USD")
	return []Record{e1.AsRecord(), e2.AsRecord(), e3.AsRecord(), i1.AsRecord()}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords(t), "", nil)

	if s.TotalExpenses != 100 {
		t.Errorf("TotalExpenses = %v, want 100", s.TotalExpenses)
	}
	if s.TotalIncome != 200 {
		t.Errorf("TotalIncome = %v, want 200", s.TotalIncome)
	}
	if s.Balance != 100 {
		t.Errorf("Balance = %v, want 100", s.Balance)
	}
	if s.ExpenseCount != 3 || s.IncomeCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", s.ExpenseCount, s.IncomeCount)
	}
	if s.ByCategory["Food"] != 50 {
		t.Errorf("ByCategory[Food] = %v, want 50", s.ByCategory["Food"])
	}
	if s.ByCategory["Transportation"] != 50 {
		t.Errorf("ByCategory[Transportation] = %v, want 50", s.ByCategory["Transportation"])
	}
	if s.BySource["Salary"] != 200 {
		t.Errorf("BySource[Salary] = %v, want 200", s.BySource["Salary"])
	}
	if s.Currency != "" {
		t.Errorf("Currency = %q, want empty for unconverted totals", s.Currency)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, "", nil)
	if s.TotalIncome != 0 || s.TotalExpenses != 0 || s.Balance != 0 {
		t.Errorf("empty summary has non-zero totals: %+v", s)
	}
	if len(s.ByCategory) != 0 || len(s.BySource) != 0 {
		t.Errorf("empty summary has breakdowns: %+v", s)
	}
}

func TestSummarizeConverted(t *testing.T) {
	// Halve every amount on the way into the target currency.
	conv := func(amount float64, from, to string) float64 { return amount / 2 }

	s := Summarize(sampleRecords(t), "EUR", conv)
	if s.TotalExpenses != 50 {
		t.Errorf("converted TotalExpenses = %v, want 50", s.TotalExpenses)
	}
	if s.TotalIncome != 100 {
		t.Errorf("converted TotalIncome = %v, want 100", s.TotalIncome)
	}
	if s.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", s.Currency)
	}
}

func TestSummarizeDecimalAccumulation(t *testing.T) {
	// 0.1 added ten times is exactly 1.00 with decimal accumulation.
	var records []Record
	for range [10]struct{}{} {
		e, _ := NewExpense(0.1, "2024-01-10", "Food", "", "USD")
		records = append(records, e.AsRecord())
	}
	s := Summarize(records, "", nil)
	if s.TotalExpenses != 1 {
		t.Errorf("TotalExpenses = %v, want exactly 1", s.TotalExpenses)
	}
}
