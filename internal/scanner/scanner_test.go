package scanner

import (
	"context"
	"testing"

	"github.com/AnuragC07/curatd/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, Request) ([]domain.Item, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "page"})

	if _, err := reg.Resolve("page"); err != nil {
		t.Fatalf("resolve page: %v", err)
	}
	if _, err := reg.Resolve("rss"); err == nil {
		t.Fatalf("expected error for unknown scanner")
	}

	var zero Registry
	zero.Register(stubScanner{name: "youtube"})
	if _, err := zero.Resolve("youtube"); err != nil {
		t.Fatalf("zero registry should accept registrations: %v", err)
	}
}

func TestQueryAccepts(t *testing.T) {
	t.Parallel()

	seen := domain.Item{Title: "Focus tips", URL: "https://a/1"}
	fresh := domain.Item{Title: "Focus drills", URL: "https://a/2"}
	off := domain.Item{Title: "Gardening", URL: "https://a/3"}

	q := Query{
		Match: func(title string) bool { return title != "Gardening" },
		Seen:  func(item domain.Item) bool { return item.URL == seen.URL },
	}

	if q.Accepts(seen) {
		t.Fatalf("seen item accepted")
	}
	if !q.Accepts(fresh) {
		t.Fatalf("fresh item rejected")
	}
	if q.Accepts(off) {
		t.Fatalf("irrelevant item accepted")
	}
	if (Query{}).Accepts(fresh) {
		t.Fatalf("nil matcher must reject")
	}
}
