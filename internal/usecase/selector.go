package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/history"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/ports"
	"github.com/AnuragC07/curatd/internal/relevance"
	"github.com/AnuragC07/curatd/internal/scanner"
)

const (
	dailyOversample = 4
	tagOversample   = 6
	defaultTagCount = 5
)

// ErrInvalidCount is returned for a negative requested item count.
var ErrInvalidCount = errors.New("item count must not be negative")

// SelectorDeps wires the collaborators of a Selector.
type SelectorDeps struct {
	Source   ports.CandidateSource
	History  *history.Store
	Pacer    ports.Pacer
	Rand     *rand.Rand
	Clock    func() time.Time
	Articles []config.Source
	Videos   []config.Source
	Keywords []string
	Logger   *slog.Logger
}

// Selector picks the daily and tag-driven bundles from the configured sources.
type Selector struct {
	source   ports.CandidateSource
	history  *history.Store
	pacer    ports.Pacer
	clock    func() time.Time
	articles []config.Source
	videos   []config.Source
	match    relevance.Matcher
	logger   *slog.Logger

	// run serialises daily selections so each load-mutate-persist cycle of
	// the history is applied as a whole.
	run sync.Mutex

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewSelector constructs the selection use case.
func NewSelector(deps SelectorDeps) *Selector {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if len(deps.Keywords) == 0 {
		deps.Keywords = relevance.DefaultKeywords
	}
	if deps.History == nil {
		deps.History = history.Open(context.Background(), nil, history.Options{}, deps.Logger)
	}

	return &Selector{
		source:   deps.Source,
		history:  deps.History,
		pacer:    deps.Pacer,
		clock:    deps.Clock,
		articles: deps.Articles,
		videos:   deps.Videos,
		match:    relevance.Keywords(deps.Keywords),
		logger:   deps.Logger,
		rng:      deps.Rand,
	}
}

// History exposes the store the selector records into.
func (s *Selector) History() *history.Store {
	return s.history
}

// SelectDaily returns up to articleCount articles and videoCount videos that
// match the keyword list and were not delivered recently. The chosen items are
// recorded only after both kinds have been picked, and the history is
// persisted once at the end of the run; a failed run leaves it untouched.
func (s *Selector) SelectDaily(ctx context.Context, articleCount, videoCount int) (domain.Bundle, error) {
	if articleCount < 0 || videoCount < 0 {
		return domain.Bundle{}, ErrInvalidCount
	}

	s.run.Lock()
	defer s.run.Unlock()

	articles, err := s.pickDaily(ctx, domain.KindArticle, s.articles, articleCount)
	if err != nil {
		return domain.Bundle{}, err
	}
	videos, err := s.pickDaily(ctx, domain.KindVideo, s.videos, videoCount)
	if err != nil {
		return domain.Bundle{}, err
	}

	for _, it := range articles {
		s.history.Record(it, domain.KindArticle)
	}
	for _, it := range videos {
		s.history.Record(it, domain.KindVideo)
	}
	s.history.Flush(ctx, s.clock())

	s.logger.Info("daily selection complete", "articles", len(articles), "videos", len(videos))
	return domain.Bundle{Articles: articles, Videos: videos}, nil
}

func (s *Selector) pickDaily(ctx context.Context, kind domain.Kind, sources []config.Source, count int) ([]domain.Item, error) {
	if count == 0 {
		return []domain.Item{}, nil
	}

	query := scanner.Query{
		Match: s.match,
		Seen: func(it domain.Item) bool {
			return s.history.IsDuplicate(it, kind)
		},
	}

	pool, err := s.gather(ctx, kind, sources, query, count*dailyOversample)
	if err != nil {
		return nil, err
	}

	s.randMu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	s.randMu.Unlock()

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool, nil
}

// SelectByTags returns the first items, in arrival order, whose titles
// contain any of the tags. It neither consults nor updates the history.
// Counts of zero or less fall back to five.
func (s *Selector) SelectByTags(ctx context.Context, tags []string, articleCount, videoCount int) (domain.TagBundle, error) {
	match := relevance.Tags(tags)
	if match == nil {
		return domain.NewTagBundle(nil, nil), nil
	}
	if articleCount <= 0 {
		articleCount = defaultTagCount
	}
	if videoCount <= 0 {
		videoCount = defaultTagCount
	}

	query := scanner.Query{Match: match}

	articles, err := s.gather(ctx, domain.KindArticle, s.articles, query, articleCount*tagOversample)
	if err != nil {
		return domain.TagBundle{}, err
	}
	videos, err := s.gather(ctx, domain.KindVideo, s.videos, query, videoCount*tagOversample)
	if err != nil {
		return domain.TagBundle{}, err
	}

	articles = firstN(articles, articleCount)
	videos = firstN(videos, videoCount)

	s.logger.Info("tag selection complete", "tags", relevance.NormalizeTags(tags), "articles", len(articles), "videos", len(videos))
	return domain.NewTagBundle(articles, videos), nil
}

// gather visits sources in random order until target candidates have
// accumulated. The result is unique by URL in arrival order.
func (s *Selector) gather(ctx context.Context, kind domain.Kind, sources []config.Source, query scanner.Query, target int) ([]domain.Item, error) {
	order := make([]config.Source, len(sources))
	copy(order, sources)
	s.randMu.Lock()
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	s.randMu.Unlock()

	var (
		pool []domain.Item
		urls = map[string]struct{}{}
	)
	for _, src := range order {
		if len(pool) >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.pacer != nil {
			if err := s.pacer.Wait(ctx, src.URL); err != nil {
				return nil, err
			}
		}
		if s.source == nil {
			continue
		}

		for _, it := range s.source.Candidates(ctx, kind, src, query) {
			if !query.Accepts(it) {
				continue
			}
			if _, dup := urls[it.URL]; dup {
				continue
			}
			urls[it.URL] = struct{}{}
			pool = append(pool, s.complete(it, kind, src))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pool == nil {
		pool = []domain.Item{}
	}
	return pool, nil
}

func (s *Selector) complete(it domain.Item, kind domain.Kind, src config.Source) domain.Item {
	if it.Kind == "" {
		it.Kind = kind
	}
	if it.Origin == "" {
		it.Origin = src.Name
	}
	if it.FetchedAt.IsZero() {
		it.FetchedAt = s.clock()
	}
	if it.Fingerprint == "" {
		it.Fingerprint = domain.Fingerprint(it.Title, it.URL)
	}
	return it
}

func firstN(items []domain.Item, n int) []domain.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}
