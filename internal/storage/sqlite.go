package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NotIntruder/Expense-Tracker/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the alternative Repository backend for users who
// prefer a database file over the JSON document. It offers the same port
// but none of the document-level backup artifacts; SQLite's own journal
// provides the crash safety there.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetExpenses implements Repository.
func (r *SQLiteRepository) GetExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, date, description, currency, created_at, category FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		e.Type = core.TypeExpense
		if err := rows.Scan(&e.ID, &e.Amount, &e.Date, &e.Description, &e.Currency, &e.CreatedAt, &e.Category); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetIncome implements Repository.
func (r *SQLiteRepository) GetIncome(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount, date, description, currency, created_at, source FROM income ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var i core.Income
		i.Type = core.TypeIncome
		if err := rows.Scan(&i.ID, &i.Amount, &i.Date, &i.Description, &i.Currency, &i.CreatedAt, &i.Source); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// AddExpense implements Repository.
func (r *SQLiteRepository) AddExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, date, description, currency, created_at, category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount, e.Date, e.Description, e.Currency, e.CreatedAt, e.Category)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// AddIncome implements Repository.
func (r *SQLiteRepository) AddIncome(ctx context.Context, i core.Income) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO income (id, amount, date, description, currency, created_at, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Amount, i.Date, i.Description, i.Currency, i.CreatedAt, i.Source)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

// UpdateExpense implements Repository.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id string, e core.Expense) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, date = ?, description = ?, currency = ?, category = ? WHERE id = ?`,
		e.Amount, e.Date, e.Description, e.Currency, e.Category, id)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}
	return rowsAffected(res)
}

// UpdateIncome implements Repository.
func (r *SQLiteRepository) UpdateIncome(ctx context.Context, id string, i core.Income) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE income SET amount = ?, date = ?, description = ?, currency = ?, source = ? WHERE id = ?`,
		i.Amount, i.Date, i.Description, i.Currency, i.Source, id)
	if err != nil {
		return false, fmt.Errorf("update income: %w", err)
	}
	return rowsAffected(res)
}

// DeleteExpense implements Repository.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	return rowsAffected(res)
}

// DeleteIncome implements Repository.
func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM income WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete income: %w", err)
	}
	return rowsAffected(res)
}

// GetSettings implements Repository.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	settings := core.Settings{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// SaveSettings implements Repository with an upsert per key.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, partial core.Settings) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settings tx: %w", err)
	}
	for k, v := range partial {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert setting %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func rowsAffected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
