package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/history"
)

const lockRetryDelay = 50 * time.Millisecond

// JSONFile keeps the history as one human-readable JSON document.
type JSONFile struct {
	path string
	lock *flock.Flock
}

var _ history.Backend = (*JSONFile)(nil)

// NewJSONFile stores history at path, guarded by a sibling "<path>.lock" file.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the history file location.
func (j *JSONFile) Path() string {
	return j.path
}

// Load returns an empty record when the file does not exist yet.
func (j *JSONFile) Load(ctx context.Context) (domain.HistoryRecord, error) {
	if _, err := os.Stat(j.path); errors.Is(err, fs.ErrNotExist) {
		return domain.EmptyHistory(), nil
	}

	locked, err := j.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("lock history: %w", err)
	}
	if locked {
		defer j.lock.Unlock()
	}

	raw, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.EmptyHistory(), nil
		}
		return domain.HistoryRecord{}, fmt.Errorf("read history: %w", err)
	}

	record := domain.EmptyHistory()
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("decode history %s: %w", j.path, err)
	}
	return record, nil
}

// Save replaces the file atomically: the record is written to a temp file in
// the same directory and renamed over the target.
func (j *JSONFile) Save(ctx context.Context, record domain.HistoryRecord) error {
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	locked, err := j.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	if locked {
		defer j.lock.Unlock()
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		cleanup()
		return fmt.Errorf("replace history: %w", err)
	}

	return nil
}
