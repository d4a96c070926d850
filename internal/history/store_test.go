package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
)

type memoryBackend struct {
	mu      sync.Mutex
	record  domain.HistoryRecord
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryBackend) Load(context.Context) (domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record, m.loadErr
}

func (m *memoryBackend) Save(_ context.Context, rec domain.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.record = rec
	return nil
}

func item(i int) domain.Item {
	return domain.Item{Title: fmt.Sprintf("Focus %d", i), URL: fmt.Sprintf("https://example.com/%d", i)}
}

func TestOpenWithUnreadableHistoryStartsEmpty(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	s := Open(context.Background(), &memoryBackend{loadErr: errors.New("bad json")}, Options{}, logging.NewWithWriter(&logs, "info"))

	snap := s.Snapshot()
	if len(snap.Articles) != 0 || len(snap.Videos) != 0 || snap.LastUpdate != "" {
		t.Fatalf("expected empty record, got %+v", snap)
	}
	if snap.Articles == nil || snap.Videos == nil {
		t.Fatalf("sequences must be non-nil")
	}
	if !strings.Contains(logs.String(), "bad json") {
		t.Fatalf("load failure should be logged: %s", logs.String())
	}
}

func TestRecordKeepsMostRecentCapacity(t *testing.T) {
	t.Parallel()

	s := Open(context.Background(), nil, Options{}, nil)
	for i := 0; i < 250; i++ {
		s.Record(item(i), domain.KindArticle)
	}
	s.Record(item(0), domain.KindVideo)

	snap := s.Snapshot()
	if len(snap.Articles) != DefaultCapacity {
		t.Fatalf("expected %d articles, got %d", DefaultCapacity, len(snap.Articles))
	}
	for i, it := range snap.Articles {
		want := item(150 + i)
		if it.URL != want.URL {
			t.Fatalf("position %d: got %s, want %s", i, it.URL, want.URL)
		}
		if it.Fingerprint != domain.Fingerprint(want.Title, want.URL) {
			t.Fatalf("fingerprint not computed on record")
		}
	}
	if len(snap.Videos) != 1 {
		t.Fatalf("kinds must be independent, got %d videos", len(snap.Videos))
	}
}

func TestIsDuplicateUsesRecencyWindow(t *testing.T) {
	t.Parallel()

	s := Open(context.Background(), nil, Options{}, nil)
	for i := 0; i < 100; i++ {
		s.Record(item(i), domain.KindArticle)
	}

	if s.IsDuplicate(item(10), domain.KindArticle) {
		t.Fatalf("item outside the last %d must not count as duplicate", DefaultWindow)
	}
	if !s.IsDuplicate(item(50), domain.KindArticle) {
		t.Fatalf("oldest item inside the window must be a duplicate")
	}
	if !s.IsDuplicate(item(99), domain.KindArticle) {
		t.Fatalf("newest item must be a duplicate")
	}
	if s.IsDuplicate(item(99), domain.KindVideo) {
		t.Fatalf("duplicates are per kind")
	}
}

func TestOpenTruncatesOversizedHistory(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{record: domain.HistoryRecord{LastUpdate: "2026-01-01T00:00:00Z"}}
	for i := 0; i < 20; i++ {
		backend.record.Videos = append(backend.record.Videos, item(i))
	}

	s := Open(context.Background(), backend, Options{Window: 50, Capacity: 5}, nil)
	snap := s.Snapshot()
	if len(snap.Videos) != 5 || snap.Videos[0].URL != item(15).URL {
		t.Fatalf("unexpected videos after open: %+v", snap.Videos)
	}
	if snap.Articles == nil {
		t.Fatalf("missing sequence must default to empty")
	}
	// Window is clamped to capacity.
	if !s.IsDuplicate(item(15), domain.KindVideo) {
		t.Fatalf("expected duplicate within clamped window")
	}
}

func TestFlushPersistsAndStampsLastUpdate(t *testing.T) {
	t.Parallel()

	backend := &memoryBackend{}
	s := Open(context.Background(), backend, Options{}, nil)
	s.Record(item(1), domain.KindArticle)

	now := time.Date(2026, time.October, 19, 7, 30, 0, 0, time.FixedZone("X", 3600))
	s.Flush(context.Background(), now)

	if backend.saves != 1 {
		t.Fatalf("expected one save, got %d", backend.saves)
	}
	if backend.record.LastUpdate != "2026-10-19T06:30:00Z" {
		t.Fatalf("unexpected last_update %q", backend.record.LastUpdate)
	}
	if len(backend.record.Articles) != 1 {
		t.Fatalf("record not persisted: %+v", backend.record)
	}

	// The saved copy must not alias the live record.
	s.Record(item(2), domain.KindArticle)
	if len(backend.record.Articles) != 1 {
		t.Fatalf("persisted record aliases in-memory state")
	}
}

func TestFlushSwallowsErrors(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	backend := &memoryBackend{saveErr: errors.New("disk full")}
	s := Open(context.Background(), backend, Options{}, logging.NewWithWriter(&logs, "info"))
	s.Record(item(1), domain.KindVideo)

	s.Flush(context.Background(), time.Now())
	s.Flush(context.Background(), time.Now())

	if s.Failures() != 2 {
		t.Fatalf("expected 2 failures, got %d", s.Failures())
	}
	if len(s.Snapshot().Videos) != 1 {
		t.Fatalf("in-memory state must survive a failed flush")
	}
	if !strings.Contains(logs.String(), "disk full") {
		t.Fatalf("failure should be logged: %s", logs.String())
	}

	backend.mu.Lock()
	backend.saveErr = nil
	backend.mu.Unlock()
	s.Flush(context.Background(), time.Now())
	if s.Failures() != 0 {
		t.Fatalf("successful flush should reset failures")
	}
}

func TestStoreConcurrentRecord(t *testing.T) {
	t.Parallel()

	s := Open(context.Background(), &memoryBackend{}, Options{}, nil)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				it := item(g*10 + i)
				s.Record(it, domain.KindArticle)
				_ = s.IsDuplicate(it, domain.KindArticle)
			}
		}(g)
	}
	wg.Wait()

	if got := len(s.Snapshot().Articles); got != 80 {
		t.Fatalf("expected 80 entries, got %d", got)
	}
}
