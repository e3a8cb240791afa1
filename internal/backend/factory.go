package backend

import (
	"fmt"
	"log/slog"

	"github.com/NotIntruder/Expense-Tracker/internal/storage"
)

func errInvalidType(t Type) error {
	return fmt.Errorf("invalid backend type %q (valid: %v)", t, Types())
}

func errMissing(what string, t Type) error {
	return fmt.Errorf("%s is required for the %s backend", what, t)
}

// Factory creates repositories based on configuration.
type Factory struct {
	logger *slog.Logger
}

// NewFactory creates a backend factory.
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the repository described by the config.
func (f *Factory) Create(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case FileBackend:
		store, err := storage.NewFileStore(cfg.DataFilePath)
		if err != nil {
			return nil, fmt.Errorf("initialize file store: %w", err)
		}
		f.logger.Info("Initialized file backend", "path", cfg.DataFilePath)
		return &Result{Repository: store, Cleanup: store.Close}, nil

	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Repository: repo, Cleanup: repo.Close}, nil

	default:
		return nil, errInvalidType(cfg.Type)
	}
}
