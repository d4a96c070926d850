package scanner

import (
	"context"
	"fmt"

	"github.com/AnuragC07/curatd/internal/domain"
)

// Query carries the filters a scan applies to each candidate title.
type Query struct {
	// Match decides topical fit; a nil Match accepts nothing.
	Match func(title string) bool
	// Seen excludes recently delivered items; nil means nothing is excluded.
	Seen func(item domain.Item) bool
}

// Accepts applies both filters to a candidate.
func (q Query) Accepts(item domain.Item) bool {
	if q.Match == nil || !q.Match(item.Title) {
		return false
	}
	if q.Seen != nil && q.Seen(item) {
		return false
	}
	return true
}

// Request carries all parameters required to execute a scan.
type Request struct {
	SiteName string
	URL      string
	Kind     domain.Kind
	Query    Query
	// Limit caps returned items, Window caps inspected raw entries.
	Limit   int
	Window  int
	Options map[string]string
}

// Scanner captures a single strategy implementation (web page, YouTube channel, etc.).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Item, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered", name)
}
