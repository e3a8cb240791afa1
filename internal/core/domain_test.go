package core

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func testCatalog() Catalog {
	return DefaultCatalog()
}

func validExpense(t *testing.T) Expense {
	t.Helper()
	e, err := NewExpense(42.50, "2024-01-15", "Food", "groceries", "USD")
	if err != nil {
		t.Fatalf("NewExpense: %v", err)
	}
	return e
}

func TestNewExpenseNormalizes(t *testing.T) {
	e, err := NewExpense(12.345, "2024-1-5", "Food", "lunch", "USD")
	if err != nil {
		t.Fatalf("NewExpense: %v", err)
	}
	if e.Date != "2024-01-05" {
		t.Errorf("date = %q, want 2024-01-05", e.Date)
	}
	if e.Amount != 12.35 {
		t.Errorf("amount = %v, want 12.35 (half-up)", e.Amount)
	}
	if e.ID == "" {
		t.Error("expected a generated id")
	}
	if e.CreatedAt == "" {
		t.Error("expected a creation timestamp")
	}
	if e.Type != TypeExpense {
		t.Errorf("type = %q, want %q", e.Type, TypeExpense)
	}
}

func TestNewExpenseBadDate(t *testing.T) {
	if _, err := NewExpense(1, "not-a-date", "Food", "", "USD"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
	if _, err := NewExpense(1, "", "Food", "", "USD"); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestExpenseValidateAmountBounds(t *testing.T) {
	cases := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{"zero", 0, true},
		{"negative", -5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
		{"over cap", 1_000_000_000, true},
		{"at cap", 999_999_999, false},
		{"normal", 42.50, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExpense(t)
			e.Amount = tc.amount
			msgs := e.Validate(testCatalog())
			if tc.wantErr {
				if len(msgs) == 0 {
					t.Fatalf("amount %v: expected violations", tc.amount)
				}
				if !strings.Contains(strings.Join(msgs, "; "), "amount") {
					t.Errorf("expected an amount-related message, got %v", msgs)
				}
			} else if len(msgs) != 0 {
				t.Fatalf("amount %v: unexpected violations %v", tc.amount, msgs)
			}
		})
	}
}

func TestExpenseValidateDate(t *testing.T) {
	e := validExpense(t)
	e.Date = "15/01/2024"
	if msgs := e.Validate(testCatalog()); len(msgs) == 0 {
		t.Fatal("expected violation for non-canonical date")
	}

	e = validExpense(t)
	e.Date = "2999-01-01"
	if msgs := e.Validate(testCatalog()); len(msgs) == 0 {
		t.Fatal("expected violation for future date")
	}
}

func TestExpenseValidateDescriptionLength(t *testing.T) {
	e := validExpense(t)
	e.Description = strings.Repeat("x", MaxDescriptionLen)
	if msgs := e.Validate(testCatalog()); len(msgs) != 0 {
		t.Fatalf("description at limit: unexpected violations %v", msgs)
	}
	e.Description = strings.Repeat("x", MaxDescriptionLen+1)
	if msgs := e.Validate(testCatalog()); len(msgs) == 0 {
		t.Fatal("expected violation for over-long description")
	}
}

func TestExpenseValidateCategory(t *testing.T) {
	e := validExpense(t)
	e.Category = "Gambling"
	msgs := e.Validate(testCatalog())
	if len(msgs) == 0 {
		t.Fatal("expected violation for unknown category")
	}
	if !strings.Contains(msgs[0], "category") {
		t.Errorf("expected a category message, got %v", msgs)
	}
}

func TestIncomeValidateSource(t *testing.T) {
	i, err := NewIncome(1000, "2024-02-01", "Salary", "", "USD")
	if err != nil {
		t.Fatalf("NewIncome: %v", err)
	}
	if msgs := i.Validate(testCatalog()); len(msgs) != 0 {
		t.Fatalf("unexpected violations %v", msgs)
	}
	i.Source = "Lottery"
	if msgs := i.Validate(testCatalog()); len(msgs) == 0 {
		t.Fatal("expected violation for unknown source")
	}
}

func TestValidateMultipleViolationsOrdered(t *testing.T) {
	e := validExpense(t)
	e.Amount = -1
	e.Category = "Nope"
	msgs := e.Validate(testCatalog())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 violations, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "amount") || !strings.Contains(msgs[1], "category") {
		t.Errorf("violations out of order: %v", msgs)
	}
}

func TestExpenseJSONRoundTrip(t *testing.T) {
	e := validExpense(t)
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Expense
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != e {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, e)
	}
}

func TestIncomeJSONRoundTrip(t *testing.T) {
	i, err := NewIncome(2500, "2024-03-01", "Freelance", "invoice 12", "EUR")
	if err != nil {
		t.Fatalf("NewIncome: %v", err)
	}
	data, err := json.Marshal(i)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Income
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != i {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, i)
	}
}

func TestAsRecordTagging(t *testing.T) {
	e := validExpense(t)
	r := e.AsRecord()
	if r.Type != TypeExpense || r.Category != e.Category || r.Source != "" {
		t.Errorf("expense record badly tagged: %+v", r)
	}

	i, _ := NewIncome(10, "2024-01-01", "Gift", "", "USD")
	ri := i.AsRecord()
	if ri.Type != TypeIncome || ri.Source != "Gift" || ri.Category != "" {
		t.Errorf("income record badly tagged: %+v", ri)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024-1-5", "2024-01-05", true},
		{"2024/01/15", "2024-01-15", true},
		{" 2024-01-15 ", "2024-01-15", true},
		{"", "", false},
		{"January 15", "", false},
		{"2024-13-01", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizeDate(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("NormalizeDate(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("NormalizeDate(%q): expected error", tc.in)
		}
	}
}
