package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestTypeIsValid(t *testing.T) {
	tests := []struct {
		t    Type
		want bool
	}{
		{FileBackend, true},
		{SQLiteBackend, true},
		{Type("postgres"), false},
		{Type(""), false},
	}
	for _, tt := range tests {
		if got := tt.t.IsValid(); got != tt.want {
			t.Errorf("Type(%q).IsValid() = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "file backend ok",
			cfg:  Config{Type: FileBackend, DataFilePath: "/tmp/data.json"},
		},
		{
			name:    "file backend missing path",
			cfg:     Config{Type: FileBackend},
			wantErr: "data file path is required",
		},
		{
			name: "sqlite backend ok",
			cfg:  Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/data.db"},
		},
		{
			name:    "sqlite backend missing path",
			cfg:     Config{Type: SQLiteBackend},
			wantErr: "SQLite database path is required",
		},
		{
			name:    "unknown type",
			cfg:     Config{Type: "postgres"},
			wantErr: "invalid backend type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFactoryCreateFile(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.Create(Config{
		Type:         FileBackend,
		DataFilePath: filepath.Join(t.TempDir(), "transactions.json"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if result.Repository == nil {
		t.Fatal("Create() returned nil repository")
	}
	defer result.Cleanup()

	// The repository must be usable out of the box.
	if _, err := result.Repository.GetExpenses(context.Background()); err != nil {
		t.Errorf("GetExpenses() error = %v", err)
	}
}

func TestFactoryCreateSQLite(t *testing.T) {
	factory := NewFactory(nil)
	result, err := factory.Create(Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "tracker.db"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if result.Repository == nil {
		t.Fatal("Create() returned nil repository")
	}
	defer result.Cleanup()

	if _, err := result.Repository.GetIncome(context.Background()); err != nil {
		t.Errorf("GetIncome() error = %v", err)
	}
}

func TestFactoryCreateInvalid(t *testing.T) {
	factory := NewFactory(nil)
	if _, err := factory.Create(Config{Type: "postgres"}); err == nil {
		t.Error("Create() = nil error for invalid type")
	}
	if _, err := factory.Create(Config{Type: FileBackend}); err == nil {
		t.Error("Create() = nil error for missing file path")
	}
}
