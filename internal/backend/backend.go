// Package backend selects and constructs the storage repository from
// configuration: the JSON file store by default, SQLite as an
// alternative. Either backend may carry an optional AMQP event client.
package backend

import (
	"github.com/NotIntruder/Expense-Tracker/internal/storage"
)

// Type identifies a storage backend.
type Type string

const (
	FileBackend   Type = "file"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true for a recognized backend type.
func (t Type) IsValid() bool {
	switch t {
	case FileBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{FileBackend, SQLiteBackend}
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result carries the constructed repository and its cleanup function
// (nil when nothing needs releasing).
type Result struct {
	Repository storage.Repository
	Cleanup    CleanupFunc
}

// Config holds what the factory needs to build a backend.
type Config struct {
	Type Type

	// File backend
	DataFilePath string

	// SQLite backend
	SQLiteDBPath string
}

// Validate checks the configuration for the selected type.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return errInvalidType(c.Type)
	}
	switch c.Type {
	case FileBackend:
		if c.DataFilePath == "" {
			return errMissing("data file path", FileBackend)
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errMissing("SQLite database path", SQLiteBackend)
		}
	}
	return nil
}
