package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/ports"
)

type stubNotifier struct {
	name    string
	err     error
	bundles []domain.Bundle
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) PublishDigest(_ context.Context, bundle domain.Bundle) error {
	s.bundles = append(s.bundles, bundle)
	return s.err
}

func TestDigestPublishesToEveryNotifier(t *testing.T) {
	t.Parallel()

	src := &fakeSource{items: map[string][]domain.Item{
		"site": {item(domain.KindArticle, "Focus tips", "https://site.example/1")},
	}}
	sel := newTestSelector(t, src, nil, sources("site"), nil)

	broken := &stubNotifier{name: "telegram", err: errors.New("chat not found")}
	ok := &stubNotifier{name: "email"}
	d := NewDigest(DigestDeps{Selector: sel, Notifiers: []ports.Notifier{broken, ok}, Articles: 2, Videos: 2})

	err := d.Run(context.Background(), fixedNow)
	if err == nil || !errors.Is(err, broken.err) {
		t.Fatalf("expected joined notifier error, got %v", err)
	}
	if len(broken.bundles) != 1 || len(ok.bundles) != 1 {
		t.Fatalf("every notifier should be attempted")
	}
	if len(ok.bundles[0].Articles) != 1 {
		t.Fatalf("unexpected bundle %+v", ok.bundles[0])
	}
	if sel.History().Snapshot().LastUpdate == "" {
		t.Fatalf("digest run should flush history")
	}
}

func TestDigestSkipsEmptyBundle(t *testing.T) {
	t.Parallel()

	sel := newTestSelector(t, &fakeSource{}, nil, sources("site"), sources("channel"))
	n := &stubNotifier{name: "email"}
	d := NewDigest(DigestDeps{Selector: sel, Notifiers: []ports.Notifier{n}, Articles: 2, Videos: 2})

	if err := d.Run(context.Background(), fixedNow); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(n.bundles) != 0 {
		t.Fatalf("empty bundle should not be published")
	}
}

func TestDigestWithoutNotifiersIsNoop(t *testing.T) {
	t.Parallel()

	src := &fakeSource{}
	d := NewDigest(DigestDeps{Selector: newTestSelector(t, src, nil, sources("site"), nil)})
	if err := d.Run(context.Background(), fixedNow); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.callCount() != 0 {
		t.Fatalf("no selection expected without notifiers")
	}
}
