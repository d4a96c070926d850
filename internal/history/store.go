// Package history keeps the record of recently delivered items so daily
// selections do not repeat themselves.
//
// The record is loaded once when the Store is opened, mutated in memory while
// selections run, and written back through a Backend by Flush. A Store is safe
// for concurrent use; callers that need load-mutate-persist to be atomic across
// a whole selection run must serialise those runs themselves.
package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
)

const (
	DefaultWindow   = 50
	DefaultCapacity = 100
)

// Backend persists the whole record at once.
type Backend interface {
	Load(ctx context.Context) (domain.HistoryRecord, error)
	Save(ctx context.Context, record domain.HistoryRecord) error
}

// Options bounds the record.
type Options struct {
	// Window is how many of the most recent entries per kind count as duplicates.
	Window int
	// Capacity is how many entries per kind are kept.
	Capacity int
}

// Store is the in-memory view of the selection history.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	record   domain.HistoryRecord
	window   int
	capacity int
	failures int
	logger   *slog.Logger
}

// Open loads the record from backend. Unreadable history is not fatal: the
// store starts empty and the problem is logged.
func Open(ctx context.Context, backend Backend, opts Options, log *slog.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Window > opts.Capacity {
		opts.Window = opts.Capacity
	}

	s := &Store{
		backend:  backend,
		window:   opts.Window,
		capacity: opts.Capacity,
		logger:   log,
		record:   domain.EmptyHistory(),
	}

	if backend != nil {
		rec, err := backend.Load(ctx)
		if err != nil {
			log.Warn("history unreadable, starting empty", "error", err)
		} else {
			s.record = rec
		}
	}

	for _, kind := range []domain.Kind{domain.KindArticle, domain.KindVideo} {
		items := s.record.Items(kind)
		if items == nil {
			items = []domain.Item{}
		}
		s.record.SetItems(kind, tail(items, s.capacity))
	}

	return s
}

// IsDuplicate reports whether item's fingerprint is among the most recent
// Window entries of kind.
func (s *Store) IsDuplicate(item domain.Item, kind domain.Kind) bool {
	key := item.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, past := range tail(s.record.Items(kind), s.window) {
		if past.Key() == key {
			return true
		}
	}
	return false
}

// Record appends item to kind's sequence and evicts the oldest entries beyond capacity.
func (s *Store) Record(item domain.Item, kind domain.Kind) {
	if item.Fingerprint == "" {
		item.Fingerprint = domain.Fingerprint(item.Title, item.URL)
	}
	if item.Kind == "" {
		item.Kind = kind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.record.Items(kind), item)
	if len(items) > s.capacity {
		// Copy so the evicted prefix does not stay reachable through the backing array.
		items = append([]domain.Item(nil), tail(items, s.capacity)...)
	}
	s.record.SetItems(kind, items)
}

// Flush stamps last_update and writes the record. Write failures are logged
// and counted, never returned: the in-memory record stays authoritative.
func (s *Store) Flush(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.LastUpdate = now.UTC().Format(time.RFC3339)
	if s.backend == nil {
		return
	}

	if err := s.backend.Save(ctx, s.copyLocked()); err != nil {
		s.failures++
		s.logger.Error("history persist failed", "error", err, "failures", s.failures)
		return
	}
	s.failures = 0
}

// Failures returns the number of consecutive failed flushes.
func (s *Store) Failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() domain.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() domain.HistoryRecord {
	return domain.HistoryRecord{
		Articles:   append([]domain.Item{}, s.record.Articles...),
		Videos:     append([]domain.Item{}, s.record.Videos...),
		LastUpdate: s.record.LastUpdate,
	}
}

func tail(items []domain.Item, n int) []domain.Item {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
