// Package relevance decides whether a title fits the curated topics.
package relevance

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultKeywords is the topic list used when no tags are supplied.
var DefaultKeywords = []string{
	"productivity",
	"habits",
	"morning routine",
	"time management",
	"focus",
	"discipline",
	"goals",
	"motivation",
	"mindset",
	"self improvement",
	"personal development",
	"efficiency",
	"life improvement",
	"better life",
	"success",
	"growth",
}

// Matcher reports whether a title qualifies.
type Matcher func(text string) bool

// IsRelevant reports whether any keyword occurs in text, ignoring case.
// Empty text never matches.
func IsRelevant(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	folded := fold(text)
	for _, kw := range keywords {
		if strings.Contains(folded, fold(kw)) {
			return true
		}
	}
	return false
}

// Keywords returns a matcher over a fixed keyword list.
func Keywords(keywords []string) Matcher {
	folded := make([]string, len(keywords))
	for i, kw := range keywords {
		folded[i] = fold(kw)
	}
	return containsAny(folded)
}

// Tags returns a matcher that accepts a title containing any of the tags.
// It returns nil when no usable tag remains after normalisation.
func Tags(tags []string) Matcher {
	normalized := NormalizeTags(tags)
	if len(normalized) == 0 {
		return nil
	}
	return containsAny(normalized)
}

// NormalizeTags trims and case-folds tags, dropping blanks and repeats.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = fold(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func containsAny(folded []string) Matcher {
	return func(text string) bool {
		if text == "" {
			return false
		}
		t := fold(text)
		for _, kw := range folded {
			if strings.Contains(t, kw) {
				return true
			}
		}
		return false
	}
}

// fold builds a fresh Caser per call; a Caser carries state and must not be shared.
func fold(s string) string {
	return cases.Fold().String(s)
}
