package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NotIntruder/Expense-Tracker/internal/backend"
	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

type Config struct {
	// Storage
	DataBackend  string
	DataFilePath string
	SQLiteDBPath string

	// AMQP (optional event publishing)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Exchange rates
	RatesURL     string
	RatesTimeout time.Duration

	// Catalog override file (optional)
	CatalogFile string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "file"),
		DataFilePath: getEnv("DATA_FILE_PATH", "./data/transactions.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/tracker.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "tracker"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		RatesURL:     getEnv("RATES_URL", "https://api.exchangerate-api.com/v4/latest/USD"),
		RatesTimeout: getEnvDuration("RATES_TIMEOUT", 10*time.Second),

		CatalogFile: getEnv("CATALOG_FILE", ""),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	backendType := backend.Type(c.DataBackend)
	if !backendType.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, backend.Types()))
	}

	if backendType == backend.FileBackend && c.DataFilePath == "" {
		errors = append(errors, "data file path cannot be empty when using file backend")
	}

	if backendType == backend.SQLiteBackend {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RatesURL != "" {
		if parsedURL, err := url.Parse(c.RatesURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid rates URL '%s': %v", c.RatesURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid rates URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.RatesTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rates timeout %v: must be at least 1 second", c.RatesTimeout))
	} else if c.RatesTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rates timeout %v: must be at most 1 minute", c.RatesTimeout))
	}

	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("catalog file does not exist: %s", c.CatalogFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// BackendConfig converts the application config to backend config.
func (c *Config) BackendConfig() backend.Config {
	return backend.Config{
		Type:         backend.Type(c.DataBackend),
		DataFilePath: c.DataFilePath,
		SQLiteDBPath: c.SQLiteDBPath,
	}
}

// LoadCatalog returns the bundled catalog, with any fields present in
// the optional YAML catalog file overriding the defaults.
func (c *Config) LoadCatalog() (core.Catalog, error) {
	cat := core.DefaultCatalog()
	if c.CatalogFile == "" {
		return cat, nil
	}

	data, err := os.ReadFile(c.CatalogFile)
	if err != nil {
		return cat, fmt.Errorf("read catalog file: %w", err)
	}
	var override core.Catalog
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cat, fmt.Errorf("parse catalog file %s: %w", c.CatalogFile, err)
	}

	if len(override.Categories) > 0 {
		cat.Categories = override.Categories
	}
	if len(override.Sources) > 0 {
		cat.Sources = override.Sources
	}
	if len(override.Currencies) > 0 {
		cat.Currencies = override.Currencies
	}
	if override.DefaultCurrency != "" {
		cat.DefaultCurrency = override.DefaultCurrency
	}
	return cat, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
