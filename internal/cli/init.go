// Package cli provides common initialization for cmd entry points:
// logging, .env loading, configuration and backend construction.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/NotIntruder/Expense-Tracker/internal/amqp"
	"github.com/NotIntruder/Expense-Tracker/internal/backend"
	"github.com/NotIntruder/Expense-Tracker/internal/config"
	applog "github.com/NotIntruder/Expense-Tracker/internal/log"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend builds the configured repository, or exits on failure.
func InitBackend(logger *applog.Logger, cfg *config.Config) *backend.Result {
	factory := backend.NewFactory(slog.Default())
	result, err := factory.Create(cfg.BackendConfig())
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			applog.FieldBackend, cfg.DataBackend, applog.FieldError, err)
		os.Exit(1)
	}
	return result
}

// InitEventClient connects the optional AMQP publisher. A missing URL or
// a failed connection yields nil; event publishing is never required.
func InitEventClient(logger *applog.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client, continuing without events",
			applog.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}
