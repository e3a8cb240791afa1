// Package services provides the orchestration façade over the storage
// port and the domain model: CRUD, filtering, sorting, summaries and
// prefix lookup. Business-rule failures come back inside a Result;
// only storage-level problems are returned as errors.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/NotIntruder/Expense-Tracker/internal/amqp"
	"github.com/NotIntruder/Expense-Tracker/internal/core"
	"github.com/NotIntruder/Expense-Tracker/internal/storage"
)

// Result is the uniform outcome shape consumed by front ends. Message
// carries joined validation violations or a not-found note on failure.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Record  *core.Record `json:"record,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Message: msg}
}

func success(msg string, rec core.Record) Result {
	return Result{Success: true, Message: msg, Record: &rec}
}

// Filters selects transactions. Zero values mean "no constraint".
// Category is applied only together with Type=expense, Source only with
// Type=income; all present filters compose conjunctively.
type Filters struct {
	Type      core.TransactionType
	StartDate string
	EndDate   string
	Category  string
	Source    string
}

// TransactionUpdates carries partial overrides for the shared fields.
// Nil pointers mean "keep the stored value".
type TransactionUpdates struct {
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
	Currency    *string  `json:"currency,omitempty"`
}

type ExpenseUpdates struct {
	TransactionUpdates
	Category *string `json:"category,omitempty"`
}

type IncomeUpdates struct {
	TransactionUpdates
	Source *string `json:"source,omitempty"`
}

// TransactionService is a stateless façade; it owns no persistent state
// and can be recreated per call context. The event client and converter
// are optional (nil disables them).
type TransactionService struct {
	repo    storage.Repository
	catalog core.Catalog
	events  *amqp.Client
	convert core.ConvertFunc
}

func NewTransactionService(repo storage.Repository, catalog core.Catalog, events *amqp.Client, convert core.ConvertFunc) *TransactionService {
	return &TransactionService{
		repo:    repo,
		catalog: catalog,
		events:  events,
		convert: convert,
	}
}

// AddExpense validates and persists a new expense. Construction and
// validation failures are reported in the Result; the error return is
// reserved for storage problems.
func (s *TransactionService) AddExpense(ctx context.Context, amount float64, date, category, description, currency string) (Result, error) {
	if currency == "" {
		currency = s.catalog.DefaultCurrency
	}
	e, err := core.NewExpense(amount, date, category, description, currency)
	if err != nil {
		return failure(err.Error()), nil
	}
	if msgs := e.Validate(s.catalog); len(msgs) > 0 {
		return failure(strings.Join(msgs, "; ")), nil
	}
	if err := s.repo.AddExpense(ctx, e); err != nil {
		return Result{}, fmt.Errorf("add expense: %w", err)
	}
	s.publishEvent(ctx, amqp.ActionCreated, core.TypeExpense, e.ID, e.Date)
	return success("expense added", e.AsRecord()), nil
}

// AddIncome validates and persists a new income entry.
func (s *TransactionService) AddIncome(ctx context.Context, amount float64, date, source, description, currency string) (Result, error) {
	if currency == "" {
		currency = s.catalog.DefaultCurrency
	}
	i, err := core.NewIncome(amount, date, source, description, currency)
	if err != nil {
		return failure(err.Error()), nil
	}
	if msgs := i.Validate(s.catalog); len(msgs) > 0 {
		return failure(strings.Join(msgs, "; ")), nil
	}
	if err := s.repo.AddIncome(ctx, i); err != nil {
		return Result{}, fmt.Errorf("add income: %w", err)
	}
	s.publishEvent(ctx, amqp.ActionCreated, core.TypeIncome, i.ID, i.Date)
	return success("income added", i.AsRecord()), nil
}

// GetTransactions loads both collections, tags each record with its type
// and applies the filters, returning the result sorted by date
// descending. Ties keep storage order.
func (s *TransactionService) GetTransactions(ctx context.Context, f Filters) ([]core.Record, error) {
	start, end, err := normalizeRange(f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}

	records := []core.Record{}
	if f.Type == "" || f.Type == core.TypeExpense {
		expenses, err := s.repo.GetExpenses(ctx)
		if err != nil {
			return nil, fmt.Errorf("load expenses: %w", err)
		}
		for _, e := range expenses {
			records = append(records, e.AsRecord())
		}
	}
	if f.Type == "" || f.Type == core.TypeIncome {
		income, err := s.repo.GetIncome(ctx)
		if err != nil {
			return nil, fmt.Errorf("load income: %w", err)
		}
		for _, i := range income {
			records = append(records, i.AsRecord())
		}
	}

	filtered := records[:0]
	for _, r := range records {
		if start != "" && r.Date < start {
			continue
		}
		if end != "" && r.Date > end {
			continue
		}
		if f.Type == core.TypeExpense && f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.Type == core.TypeIncome && f.Source != "" && r.Source != f.Source {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date > filtered[j].Date
	})
	return filtered, nil
}

// GetSummary reduces the filtered transactions to totals, breakdowns and
// counts. When targetCurrency is non-empty and a converter is wired,
// amounts are converted before accumulation; otherwise the stored,
// unconverted amounts are aggregated.
func (s *TransactionService) GetSummary(ctx context.Context, f Filters, targetCurrency string) (core.Summary, error) {
	records, err := s.GetTransactions(ctx, f)
	if err != nil {
		return core.Summary{}, err
	}
	if s.convert == nil {
		targetCurrency = ""
	}
	return core.Summarize(records, targetCurrency, s.convert), nil
}

// FindTransactionByID matches the first expense, then the first income,
// whose id starts with the given prefix. Ambiguity is not detected:
// with multiple matches the first in storage order wins, a known
// limitation kept for short-prefix convenience.
func (s *TransactionService) FindTransactionByID(ctx context.Context, prefix string) (Result, error) {
	if prefix == "" {
		return failure("transaction id is required"), nil
	}
	expenses, err := s.repo.GetExpenses(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load expenses: %w", err)
	}
	for _, e := range expenses {
		if strings.HasPrefix(e.ID, prefix) {
			return success("transaction found", e.AsRecord()), nil
		}
	}
	income, err := s.repo.GetIncome(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load income: %w", err)
	}
	for _, i := range income {
		if strings.HasPrefix(i.ID, prefix) {
			return success("transaction found", i.AsRecord()), nil
		}
	}
	return failure("transaction not found"), nil
}

// UpdateExpense merges the explicitly present fields over the stored
// expense, re-validates the whole reconstructed value and persists only
// if valid.
func (s *TransactionService) UpdateExpense(ctx context.Context, id string, u ExpenseUpdates) (Result, error) {
	expenses, err := s.repo.GetExpenses(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load expenses: %w", err)
	}
	var current *core.Expense
	for idx := range expenses {
		if expenses[idx].ID == id {
			current = &expenses[idx]
			break
		}
	}
	if current == nil {
		return failure("expense not found"), nil
	}

	merged := *current
	if msg, ok := applyTransactionUpdates(&merged.Transaction, u.TransactionUpdates); !ok {
		return failure(msg), nil
	}
	if u.Category != nil {
		merged.Category = *u.Category
	}
	if msgs := merged.Validate(s.catalog); len(msgs) > 0 {
		return failure(strings.Join(msgs, "; ")), nil
	}

	found, err := s.repo.UpdateExpense(ctx, id, merged)
	if err != nil {
		return Result{}, fmt.Errorf("update expense: %w", err)
	}
	if !found {
		return failure("expense not found"), nil
	}
	return success("expense updated", merged.AsRecord()), nil
}

// UpdateIncome mirrors UpdateExpense for income entries.
func (s *TransactionService) UpdateIncome(ctx context.Context, id string, u IncomeUpdates) (Result, error) {
	income, err := s.repo.GetIncome(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load income: %w", err)
	}
	var current *core.Income
	for idx := range income {
		if income[idx].ID == id {
			current = &income[idx]
			break
		}
	}
	if current == nil {
		return failure("income not found"), nil
	}

	merged := *current
	if msg, ok := applyTransactionUpdates(&merged.Transaction, u.TransactionUpdates); !ok {
		return failure(msg), nil
	}
	if u.Source != nil {
		merged.Source = *u.Source
	}
	if msgs := merged.Validate(s.catalog); len(msgs) > 0 {
		return failure(strings.Join(msgs, "; ")), nil
	}

	found, err := s.repo.UpdateIncome(ctx, id, merged)
	if err != nil {
		return Result{}, fmt.Errorf("update income: %w", err)
	}
	if !found {
		return failure("income not found"), nil
	}
	return success("income updated", merged.AsRecord()), nil
}

// DeleteExpense removes the expense with the exact id; a miss is a
// reported failure, not an error.
func (s *TransactionService) DeleteExpense(ctx context.Context, id string) (Result, error) {
	found, err := s.repo.DeleteExpense(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("delete expense: %w", err)
	}
	if !found {
		return failure("expense not found"), nil
	}
	s.publishEvent(ctx, amqp.ActionDeleted, core.TypeExpense, id, "")
	return Result{Success: true, Message: "expense deleted"}, nil
}

// DeleteIncome removes the income entry with the exact id.
func (s *TransactionService) DeleteIncome(ctx context.Context, id string) (Result, error) {
	found, err := s.repo.DeleteIncome(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("delete income: %w", err)
	}
	if !found {
		return failure("income not found"), nil
	}
	s.publishEvent(ctx, amqp.ActionDeleted, core.TypeIncome, id, "")
	return Result{Success: true, Message: "income deleted"}, nil
}

// DeleteTransaction discovers which collection holds the id and deletes
// from it; expenses are checked first.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) (Result, error) {
	res, err := s.DeleteExpense(ctx, id)
	if err != nil || res.Success {
		return res, err
	}
	res, err = s.DeleteIncome(ctx, id)
	if err != nil || res.Success {
		return res, err
	}
	return failure("transaction not found"), nil
}

// DisplayCurrency returns the user's preferred display currency, falling
// back to the catalog default when unset.
func (s *TransactionService) DisplayCurrency(ctx context.Context) (string, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}
	if c := settings[core.SettingCurrency]; c != "" {
		return c, nil
	}
	return s.catalog.DefaultCurrency, nil
}

// SetDisplayCurrency stores the preferred display currency.
func (s *TransactionService) SetDisplayCurrency(ctx context.Context, currency string) (Result, error) {
	valid := false
	for _, c := range s.catalog.Currencies {
		if c.Code == currency || c.Symbol == currency {
			valid = true
			break
		}
	}
	if !valid {
		return failure(fmt.Sprintf("unsupported currency %q", currency)), nil
	}
	if err := s.repo.SaveSettings(ctx, core.Settings{core.SettingCurrency: currency}); err != nil {
		return Result{}, fmt.Errorf("save settings: %w", err)
	}
	return Result{Success: true, Message: "currency updated"}, nil
}

// applyTransactionUpdates copies present fields onto base, normalizing a
// supplied date. Returns a failure message when the date is unparseable.
func applyTransactionUpdates(base *core.Transaction, u TransactionUpdates) (string, bool) {
	if u.Amount != nil {
		base.Amount = core.RoundAmount(*u.Amount)
	}
	if u.Date != nil {
		normalized, err := core.NormalizeDate(*u.Date)
		if err != nil {
			return err.Error(), false
		}
		base.Date = normalized
	}
	if u.Description != nil {
		base.Description = *u.Description
	}
	if u.Currency != nil {
		base.Currency = *u.Currency
	}
	return "", true
}

// normalizeRange validates the optional inclusive date bounds. Future
// dates are permitted here; the bounds only constrain the range.
func normalizeRange(start, end string) (string, string, error) {
	var err error
	if start != "" {
		if start, err = core.NormalizeDate(start); err != nil {
			return "", "", fmt.Errorf("invalid start date: %w", err)
		}
	}
	if end != "" {
		if end, err = core.NormalizeDate(end); err != nil {
			return "", "", fmt.Errorf("invalid end date: %w", err)
		}
	}
	return start, end, nil
}

// publishEvent notifies the optional broker; failures are logged and
// never fail the operation that triggered them.
func (s *TransactionService) publishEvent(ctx context.Context, action string, txType core.TransactionType, id, date string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(action, txType, id, date)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "type", txType, "id", id, "error", err)
	}
}
