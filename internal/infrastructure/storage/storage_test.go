package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/history"
)

func sampleRecord() domain.HistoryRecord {
	fetched := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	return domain.HistoryRecord{
		Articles: []domain.Item{
			domain.NewItem(domain.KindArticle, "Tiny habits", "https://zenhabits.net/tiny", "zenhabits.net", fetched),
			domain.NewItem(domain.KindArticle, "Deep focus", "https://hbr.org/focus", "hbr.org", fetched),
		},
		Videos: []domain.Item{
			domain.NewItem(domain.KindVideo, "Morning routine", "https://www.youtube.com/watch?v=1", "Matt D'Avella", fetched),
		},
		LastUpdate: "2026-10-18T09:00:00Z",
	}
}

func assertRecord(t *testing.T, got, want domain.HistoryRecord) {
	t.Helper()
	if got.LastUpdate != want.LastUpdate {
		t.Fatalf("last_update: got %q, want %q", got.LastUpdate, want.LastUpdate)
	}
	for _, kind := range []domain.Kind{domain.KindArticle, domain.KindVideo} {
		g, w := got.Items(kind), want.Items(kind)
		if len(g) != len(w) {
			t.Fatalf("%s: got %d items, want %d", kind, len(g), len(w))
		}
		for i := range w {
			if g[i].URL != w[i].URL || g[i].Title != w[i].Title || g[i].Origin != w[i].Origin ||
				g[i].Fingerprint != w[i].Fingerprint || !g[i].FetchedAt.Equal(w[i].FetchedAt) {
				t.Fatalf("%s[%d]: got %+v, want %+v", kind, i, g[i], w[i])
			}
		}
	}
}

func TestJSONFileMissingFile(t *testing.T) {
	t.Parallel()

	j := NewJSONFile(filepath.Join(t.TempDir(), "nested", "history.json"))
	rec, err := j.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Articles == nil || rec.Videos == nil || len(rec.Articles)+len(rec.Videos) != 0 || rec.LastUpdate != "" {
		t.Fatalf("expected empty record, got %+v", rec)
	}
}

func TestJSONFileRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "state", "history.json")
	j := NewJSONFile(path)
	ctx := context.Background()

	want := sampleRecord()
	if err := j.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := NewJSONFile(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertRecord(t, got, want)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	for _, key := range []string{`"articles"`, `"videos"`, `"last_update"`, "\n  "} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("history file missing %q:\n%s", key, raw)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestJSONFileCorruptIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewJSONFile(path).Load(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}

	// The store turns that error into an empty history.
	s := history.Open(context.Background(), NewJSONFile(path), history.Options{}, nil)
	if snap := s.Snapshot(); len(snap.Articles) != 0 || snap.LastUpdate != "" {
		t.Fatalf("expected empty history, got %+v", snap)
	}
}

func TestJSONFileSaveFailsOnUnwritableTarget(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory where the file should be makes the rename fail.
	path := filepath.Join(dir, "history.json")
	if err := os.MkdirAll(filepath.Join(path, "child"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := NewJSONFile(path).Save(context.Background(), sampleRecord()); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "history.db")

	db, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	empty, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(empty.Articles)+len(empty.Videos) != 0 || empty.LastUpdate != "" {
		t.Fatalf("expected empty record, got %+v", empty)
	}

	want := sampleRecord()
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertRecord(t, got, want)

	// A second save replaces rather than appends.
	want.Articles = want.Articles[1:]
	want.LastUpdate = "2026-10-19T09:00:00Z"
	if err := db.Save(ctx, want); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err = db.Load(ctx)
	if err != nil {
		t.Fatalf("Load again: %v", err)
	}
	assertRecord(t, got, want)
}

func TestSQLiteBackedStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	s := history.Open(ctx, db, history.Options{}, nil)
	it := domain.NewItem(domain.KindArticle, "Focus", "https://example.com/focus", "example.com", time.Now())
	s.Record(it, domain.KindArticle)
	s.Flush(ctx, time.Now())

	reopened := history.Open(ctx, db, history.Options{}, nil)
	if !reopened.IsDuplicate(it, domain.KindArticle) {
		t.Fatalf("recorded item should be a duplicate after reopen")
	}
	if reopened.Snapshot().LastUpdate == "" {
		t.Fatalf("last_update should be persisted")
	}
}
