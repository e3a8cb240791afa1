package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"

	// MaxAmount is the upper bound for a single transaction amount.
	MaxAmount = 999_999_999

	// MaxDescriptionLen bounds the free-text description.
	MaxDescriptionLen = 500

	// DateLayout is the canonical sortable date form used for storage
	// and range comparison.
	DateLayout = "2006-01-02"

	// SettingCurrency is the settings key holding the display currency.
	SettingCurrency = "currency"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

type (
	TransactionType string

	// Transaction holds the fields shared by expenses and income.
	Transaction struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Date        string  `json:"date"`
		Description string  `json:"description"`
		Currency    string  `json:"currency"`
		CreatedAt   string  `json:"createdAt"`
	}

	Expense struct {
		Transaction
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
	}

	Income struct {
		Transaction
		Source string          `json:"source"`
		Type   TransactionType `json:"type"`
	}

	// Settings maps preference keys to values. The only key the core
	// interprets is SettingCurrency; unknown keys round-trip untouched.
	Settings map[string]string

	// Record is the type-tagged union of Expense and Income used by
	// query results. Exactly one of Category/Source is set, selected
	// by Type.
	Record struct {
		Transaction
		Type     TransactionType `json:"type"`
		Category string          `json:"category,omitempty"`
		Source   string          `json:"source,omitempty"`
	}
)

// NewExpense builds an expense from raw inputs: the date is normalized to
// DateLayout, the amount rounded half-up to two decimals, and a fresh id
// and creation timestamp are assigned. Returns an error only for a date
// that cannot be parsed at all; all other rule violations are left to
// Validate so callers get the full message list.
func NewExpense(amount float64, date, category, description, currency string) (Expense, error) {
	base, err := newTransaction(amount, date, description, currency)
	if err != nil {
		return Expense{}, err
	}
	return Expense{Transaction: base, Category: category, Type: TypeExpense}, nil
}

// NewIncome builds an income entry. Same normalization rules as NewExpense.
func NewIncome(amount float64, date, source, description, currency string) (Income, error) {
	base, err := newTransaction(amount, date, description, currency)
	if err != nil {
		return Income{}, err
	}
	return Income{Transaction: base, Source: source, Type: TypeIncome}, nil
}

func newTransaction(amount float64, date, description, currency string) (Transaction, error) {
	normalized, err := NormalizeDate(date)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ID:          uuid.NewString(),
		Amount:      RoundAmount(amount),
		Date:        normalized,
		Description: description,
		Currency:    currency,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// NormalizeDate parses a calendar date and returns it in DateLayout.
// Single-digit day and month are accepted on input.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("date is required")
	}
	for _, layout := range []string{DateLayout, "2006-1-2", "2006/01/02", "2006/1/2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, s)
}

// RoundAmount rounds to two fractional digits, half up.
func RoundAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}

// validate checks the shared base fields and returns the violations in a
// fixed order: amount, date, description.
func (t Transaction) validate() []string {
	var msgs []string

	switch {
	case math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0):
		msgs = append(msgs, "amount must be a finite number")
	case t.Amount <= 0:
		msgs = append(msgs, "amount must be greater than zero")
	case t.Amount > MaxAmount:
		msgs = append(msgs, fmt.Sprintf("amount must not exceed %d", MaxAmount))
	}

	if t.Date == "" {
		msgs = append(msgs, "date is required")
	} else if parsed, err := time.Parse(DateLayout, t.Date); err != nil {
		msgs = append(msgs, fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", t.Date))
	} else if parsed.After(endOfToday()) {
		msgs = append(msgs, "date cannot be in the future")
	}

	if len(t.Description) > MaxDescriptionLen {
		msgs = append(msgs, fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen))
	}

	return msgs
}

func endOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
}

// Validate returns nil for a valid expense, otherwise an ordered list of
// human-readable violations. Pure: it consults only the value and the
// given catalog.
func (e Expense) Validate(cat Catalog) []string {
	msgs := e.Transaction.validate()
	if !contains(cat.Categories, e.Category) {
		msgs = append(msgs, fmt.Sprintf("category must be one of: %s", strings.Join(cat.Categories, ", ")))
	}
	return msgs
}

// Validate returns nil for a valid income entry, otherwise the ordered
// violation list.
func (i Income) Validate(cat Catalog) []string {
	msgs := i.Transaction.validate()
	if !contains(cat.Sources, i.Source) {
		msgs = append(msgs, fmt.Sprintf("source must be one of: %s", strings.Join(cat.Sources, ", ")))
	}
	return msgs
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// AsRecord tags the expense for query results.
func (e Expense) AsRecord() Record {
	return Record{Transaction: e.Transaction, Type: TypeExpense, Category: e.Category}
}

// AsRecord tags the income entry for query results.
func (i Income) AsRecord() Record {
	return Record{Transaction: i.Transaction, Type: TypeIncome, Source: i.Source}
}
