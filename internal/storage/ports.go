package storage

import (
	"context"

	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

// Repository is the persistence port consumed by the service layer.
// Update and delete operations report whether the id matched instead of
// failing on a miss; only I/O-level problems surface as errors.
type Repository interface {
	GetExpenses(ctx context.Context) ([]core.Expense, error)
	GetIncome(ctx context.Context) ([]core.Income, error)

	AddExpense(ctx context.Context, e core.Expense) error
	AddIncome(ctx context.Context, i core.Income) error

	UpdateExpense(ctx context.Context, id string, e core.Expense) (bool, error)
	UpdateIncome(ctx context.Context, id string, i core.Income) (bool, error)

	DeleteExpense(ctx context.Context, id string) (bool, error)
	DeleteIncome(ctx context.Context, id string) (bool, error)

	GetSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, partial core.Settings) error

	Close() error
}
