package relevance

import (
	"strings"
	"testing"
)

func TestIsRelevant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		keywords []string
		want     bool
	}{
		{name: "empty text", text: "", keywords: DefaultKeywords, want: false},
		{name: "empty text with empty keyword", text: "", keywords: []string{""}, want: false},
		{name: "exact keyword", text: "productivity", keywords: DefaultKeywords, want: true},
		{name: "mixed case", text: "My MORNING Routine for 2026", keywords: DefaultKeywords, want: true},
		{name: "keyword case", text: "how to build habits", keywords: []string{"HABITS"}, want: true},
		{name: "substring inside word", text: "Unfocused? Try this", keywords: []string{"focus"}, want: true},
		{name: "no match", text: "Best pizza in Naples", keywords: DefaultKeywords, want: false},
		{name: "nil keywords", text: "productivity", keywords: nil, want: false},
		{name: "multi word keyword needs adjacency", text: "time is management", keywords: []string{"time management"}, want: false},
		{name: "unicode folding", text: "STRASSE der Gewohnheit", keywords: []string{"straße"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsRelevant(tt.text, tt.keywords); got != tt.want {
				t.Fatalf("IsRelevant(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestKeywordsMatcherAgreesWithIsRelevant(t *testing.T) {
	t.Parallel()

	match := Keywords(DefaultKeywords)
	titles := []string{
		"",
		"Growth Mindset Explained",
		"A quiet weekend",
		"10 Efficiency hacks",
		"DISCIPLINE equals freedom",
		"Cooking with cast iron",
	}
	for _, title := range titles {
		if match(title) != IsRelevant(title, DefaultKeywords) {
			t.Fatalf("matcher disagrees on %q", title)
		}
	}
}

func TestTags(t *testing.T) {
	t.Parallel()

	if Tags(nil) != nil {
		t.Fatalf("nil tags should yield nil matcher")
	}
	if Tags([]string{"", "   ", "\t"}) != nil {
		t.Fatalf("blank tags should yield nil matcher")
	}

	match := Tags([]string{"  Focus ", "sleep"})
	if match == nil {
		t.Fatalf("expected matcher")
	}
	if !match("How I FOCUS for 4 hours") {
		t.Fatalf("expected focus match")
	}
	if !match("Sleep better tonight") {
		t.Fatalf("expected sleep match")
	}
	if match("Budget travel") {
		t.Fatalf("unexpected match")
	}
	if match("") {
		t.Fatalf("empty title must not match")
	}
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	got := NormalizeTags([]string{" Focus", "focus", "", "Deep Work ", "  "})
	want := []string{"focus", "deep work"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}
}
