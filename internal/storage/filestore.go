// Package storage provides the persistence backends: a crash-safe JSON
// document store (the default) and a SQLite repository.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NotIntruder/Expense-Tracker/internal/core"
)

const (
	// MaxFileSize caps the persisted document at 10 MiB, both on read
	// and on write.
	MaxFileSize = 10 << 20

	// maxBackups is the total number of timestamped backup files kept
	// alongside the live document.
	maxBackups = 3
)

var (
	// ErrStorageLimit reports a document too large to read or write.
	ErrStorageLimit = errors.New("storage limit exceeded")

	// ErrStorageIO reports a failed filesystem operation.
	ErrStorageIO = errors.New("storage I/O failure")
)

// Document is the unit of persistence: every mutation rewrites it in full,
// so a reader can never observe a partially appended record.
type Document struct {
	Expenses []core.Expense `json:"expenses"`
	Income   []core.Income  `json:"income"`
	Settings core.Settings  `json:"settings"`
}

func emptyDocument() Document {
	return Document{
		Expenses: []core.Expense{},
		Income:   []core.Income{},
		Settings: core.Settings{},
	}
}

// rawDocument defers per-field decoding so a malformed field can be reset
// to its empty form without rejecting the whole document.
type rawDocument struct {
	Expenses json.RawMessage `json:"expenses"`
	Income   json.RawMessage `json:"income"`
	Settings json.RawMessage `json:"settings"`
}

// FileStore persists the Document as a single JSON file with atomic
// replace, timestamped backup rotation and corruption quarantine. It
// serializes in-process access with a mutex; cross-process safety relies
// on the atomic rename only (last writer wins).
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the given path, creating the
// parent directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the live document path.
func (s *FileStore) Path() string {
	return s.path
}

// Close implements Repository. The store holds no open handles.
func (s *FileStore) Close() error { return nil }

// ReadDocument loads the document. A missing or empty file yields an
// empty document. Unparseable content is quarantined to a
// `.corrupted.<timestamp>.bak` sibling and the live file reset to empty;
// the read never fails with a parse error. A file over MaxFileSize fails
// with ErrStorageLimit.
func (s *FileStore) ReadDocument(ctx context.Context) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readDocument(ctx)
}

func (s *FileStore) readDocument(ctx context.Context) (Document, error) {
	info, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: stat %s: %v", ErrStorageIO, s.path, err)
	}
	if info.Size() > MaxFileSize {
		return Document{}, fmt.Errorf("%w: %s is %d bytes (max %d)", ErrStorageLimit, s.path, info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read %s: %v", ErrStorageIO, s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return emptyDocument(), nil
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return s.recoverCorrupted(ctx, data, err)
	}

	doc := emptyDocument()
	if len(raw.Expenses) > 0 {
		if err := json.Unmarshal(raw.Expenses, &doc.Expenses); err != nil {
			slog.WarnContext(ctx, "Resetting malformed expenses field", "path", s.path, "error", err)
			doc.Expenses = []core.Expense{}
		}
	}
	if len(raw.Income) > 0 {
		if err := json.Unmarshal(raw.Income, &doc.Income); err != nil {
			slog.WarnContext(ctx, "Resetting malformed income field", "path", s.path, "error", err)
			doc.Income = []core.Income{}
		}
	}
	if len(raw.Settings) > 0 {
		if err := json.Unmarshal(raw.Settings, &doc.Settings); err != nil {
			slog.WarnContext(ctx, "Resetting malformed settings field", "path", s.path, "error", err)
			doc.Settings = core.Settings{}
		}
	}
	if doc.Expenses == nil {
		doc.Expenses = []core.Expense{}
	}
	if doc.Income == nil {
		doc.Income = []core.Income{}
	}
	if doc.Settings == nil {
		doc.Settings = core.Settings{}
	}
	return doc, nil
}

// recoverCorrupted quarantines the unreadable bytes and resets the live
// file to an empty document. The quarantine file is retained indefinitely.
func (s *FileStore) recoverCorrupted(ctx context.Context, data []byte, parseErr error) (Document, error) {
	quarantine := fmt.Sprintf("%s.corrupted.%s.bak", s.path, backupStamp())
	if err := os.WriteFile(quarantine, data, 0o644); err != nil {
		slog.ErrorContext(ctx, "Failed to quarantine corrupted document", "path", quarantine, "error", err)
	} else {
		slog.WarnContext(ctx, "Corrupted document quarantined",
			"path", s.path,
			"quarantine", quarantine,
			"parse_error", parseErr)
	}

	doc := emptyDocument()
	payload, err := marshalDocument(doc)
	if err != nil {
		return doc, nil
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		slog.ErrorContext(ctx, "Failed to reset corrupted document", "path", s.path, "error", err)
	}
	return doc, nil
}

// WriteDocument atomically replaces the live file with the serialized
// document: write to a temp file in the same directory, then rename over
// the original. Backups of the previous content are rotated first; on any
// mid-write failure the temp file is removed and the original is left
// untouched.
func (s *FileStore) WriteDocument(ctx context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDocument(ctx, doc)
}

func (s *FileStore) writeDocument(ctx context.Context, doc Document) error {
	payload, err := marshalDocument(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if len(payload) > MaxFileSize {
		return fmt.Errorf("%w: document is %d bytes (max %d)", ErrStorageLimit, len(payload), MaxFileSize)
	}

	liveExists := true
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		liveExists = false
	}

	transient := s.path + ".bak"
	if liveExists {
		// Rotation failure must never block the write it protects.
		if err := s.rotateBackups(ctx); err != nil {
			slog.WarnContext(ctx, "Backup rotation failed", "path", s.path, "error", err)
		}
		if err := copyFile(s.path, transient); err != nil {
			slog.WarnContext(ctx, "Transient backup copy failed", "path", s.path, "error", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", ErrStorageIO, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp file: %v", ErrStorageIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync temp file: %v", ErrStorageIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp file: %v", ErrStorageIO, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", ErrStorageIO, s.path, err)
	}

	if liveExists {
		if err := os.Remove(transient); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "Failed to remove transient backup", "path", transient, "error", err)
		}
	}
	return nil
}

// rotateBackups copies the live file to a fresh timestamped backup and
// prunes old ones so at most maxBackups remain, newest first.
func (s *FileStore) rotateBackups(ctx context.Context) error {
	backup := fmt.Sprintf("%s.backup.%s.json", s.path, backupStamp())
	if err := copyFile(s.path, backup); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	matches, err := filepath.Glob(s.path + ".backup.*.json")
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}
	if len(matches) <= maxBackups {
		return nil
	}

	type backupFile struct {
		path    string
		modTime time.Time
	}
	files := make([]backupFile, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		files = append(files, backupFile{path: m, modTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})

	for _, old := range files[min(maxBackups, len(files)):] {
		if err := os.Remove(old.path); err != nil {
			slog.WarnContext(ctx, "Failed to prune old backup", "path", old.path, "error", err)
		}
	}
	return nil
}

// backupStamp renders an ISO-8601 UTC timestamp with colons and dots
// replaced by dashes so it is safe in file names.
func backupStamp() string {
	stamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.ReplaceAll(stamp, ":", "-")
	return strings.ReplaceAll(stamp, ".", "-")
}

func marshalDocument(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// GetExpenses implements Repository.
func (s *FileStore) GetExpenses(ctx context.Context) ([]core.Expense, error) {
	doc, err := s.ReadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Expenses, nil
}

// GetIncome implements Repository.
func (s *FileStore) GetIncome(ctx context.Context) ([]core.Income, error) {
	doc, err := s.ReadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Income, nil
}

// AddExpense implements Repository with a full read-modify-write cycle.
func (s *FileStore) AddExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return err
	}
	doc.Expenses = append(doc.Expenses, e)
	return s.writeDocument(ctx, doc)
}

// AddIncome implements Repository.
func (s *FileStore) AddIncome(ctx context.Context, i core.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return err
	}
	doc.Income = append(doc.Income, i)
	return s.writeDocument(ctx, doc)
}

// UpdateExpense implements Repository. Returns false when no expense has
// the exact id.
func (s *FileStore) UpdateExpense(ctx context.Context, id string, e core.Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return false, err
	}
	for idx := range doc.Expenses {
		if doc.Expenses[idx].ID == id {
			doc.Expenses[idx] = e
			return true, s.writeDocument(ctx, doc)
		}
	}
	return false, nil
}

// UpdateIncome implements Repository.
func (s *FileStore) UpdateIncome(ctx context.Context, id string, i core.Income) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return false, err
	}
	for idx := range doc.Income {
		if doc.Income[idx].ID == id {
			doc.Income[idx] = i
			return true, s.writeDocument(ctx, doc)
		}
	}
	return false, nil
}

// DeleteExpense implements Repository.
func (s *FileStore) DeleteExpense(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return false, err
	}
	for idx := range doc.Expenses {
		if doc.Expenses[idx].ID == id {
			doc.Expenses = append(doc.Expenses[:idx], doc.Expenses[idx+1:]...)
			return true, s.writeDocument(ctx, doc)
		}
	}
	return false, nil
}

// DeleteIncome implements Repository.
func (s *FileStore) DeleteIncome(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return false, err
	}
	for idx := range doc.Income {
		if doc.Income[idx].ID == id {
			doc.Income = append(doc.Income[:idx], doc.Income[idx+1:]...)
			return true, s.writeDocument(ctx, doc)
		}
	}
	return false, nil
}

// GetSettings implements Repository.
func (s *FileStore) GetSettings(ctx context.Context) (core.Settings, error) {
	doc, err := s.ReadDocument(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Settings, nil
}

// SaveSettings implements Repository: a shallow merge where the given
// keys override existing ones.
func (s *FileStore) SaveSettings(ctx context.Context, partial core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.readDocument(ctx)
	if err != nil {
		return err
	}
	for k, v := range partial {
		doc.Settings[k] = v
	}
	return s.writeDocument(ctx, doc)
}
