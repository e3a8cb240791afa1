package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

func newTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteExpenseRoundTrip(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	e := testExpense(t, 42.50, "2024-01-15", "Food")
	require.NoError(t, repo.AddExpense(ctx, e))

	expenses, err := repo.GetExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, e, expenses[0])
}

func TestSQLiteIncomeUpdateDelete(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	i := testIncome(t, 1000, "2024-02-01", "Salary")
	require.NoError(t, repo.AddIncome(ctx, i))

	changed := i
	changed.Amount = 1200
	found, err := repo.UpdateIncome(ctx, i.ID, changed)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.UpdateIncome(ctx, "missing", changed)
	require.NoError(t, err)
	assert.False(t, found)

	income, err := repo.GetIncome(ctx)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, 1200.0, income[0].Amount)

	found, err = repo.DeleteIncome(ctx, i.ID)
	require.NoError(t, err)
	assert.True(t, found)

	income, err = repo.GetIncome(ctx)
	require.NoError(t, err)
	assert.Empty(t, income)
}

func TestSQLiteSettingsUpsert(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSettings(ctx, core.Settings{core.SettingCurrency: "USD"}))
	require.NoError(t, repo.SaveSettings(ctx, core.Settings{core.SettingCurrency: "EUR", "theme": "dark"}))

	settings, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings[core.SettingCurrency])
	assert.Equal(t, "dark", settings["theme"])
}

func TestSQLiteMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	// Re-opening the same database runs migrations again without error.
	repo, err = NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}
