package parser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/ports"
	"github.com/AnuragC07/curatd/internal/scanner"
)

// StrategySource implements CandidateSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	fetch    config.FetchConfig
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with the per-kind fetch bounds.
func NewStrategySource(reg *scanner.Registry, fetch config.FetchConfig, log *slog.Logger) *StrategySource {
	if log == nil {
		log = logging.Discard()
	}
	return &StrategySource{
		registry: reg,
		fetch:    fetch,
		logger:   log,
	}
}

// Candidates runs the source's scanner. Every failure, including a scanner panic,
// is logged and turned into an empty result so one bad source never aborts a run.
func (s *StrategySource) Candidates(ctx context.Context, kind domain.Kind, source config.Source, query scanner.Query) (items []domain.Item) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scanner panicked", "source", source.Name, "url", source.URL, "panic", fmt.Sprint(r))
			items = nil
		}
	}()

	if s.registry == nil {
		s.logger.Error("scanner registry is not configured", "source", source.Name)
		return nil
	}

	strategy, err := s.registry.Resolve(source.Scanner)
	if err != nil {
		s.logger.Warn("skip source", "source", source.Name, "error", err)
		return nil
	}

	req := scanner.Request{
		SiteName: source.Name,
		URL:      source.URL,
		Kind:     kind,
		Query:    query,
		Options:  source.Options,
	}
	switch kind {
	case domain.KindVideo:
		req.Limit, req.Window = s.fetch.VideoLimit, s.fetch.VideoWindow
	default:
		req.Limit, req.Window = s.fetch.ArticleLimit, s.fetch.ArticleWindow
	}

	results, err := strategy.Scan(ctx, req)
	if err != nil {
		s.logger.Warn("source failed", "source", source.Name, "url", source.URL, "error", err)
		return nil
	}

	for i := range results {
		if results[i].Origin == "" {
			results[i].Origin = source.Name
		}
		if results[i].Kind == "" {
			results[i].Kind = kind
		}
	}
	s.logger.Debug("source produced candidates", "source", source.Name, "count", len(results))
	return results
}
