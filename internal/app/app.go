package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AnuragC07/curatd/internal/api"
	"github.com/AnuragC07/curatd/internal/config"
	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/history"
	"github.com/AnuragC07/curatd/internal/infrastructure/mailer"
	"github.com/AnuragC07/curatd/internal/infrastructure/parser"
	"github.com/AnuragC07/curatd/internal/infrastructure/scheduler"
	"github.com/AnuragC07/curatd/internal/infrastructure/storage"
	"github.com/AnuragC07/curatd/internal/infrastructure/telegram"
	"github.com/AnuragC07/curatd/internal/infrastructure/throttle"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/ports"
	"github.com/AnuragC07/curatd/internal/scanner"
	"github.com/AnuragC07/curatd/internal/usecase"
)

const stopTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	selector   *usecase.Selector
	newsletter *usecase.Newsletter
	digest     *usecase.Digest
	closers    []io.Closer
}

// New builds the application from configuration. The history backend is
// opened here, so Close must be called when done.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	backend, err := a.historyBackend(ctx)
	if err != nil {
		return nil, err
	}
	store := history.Open(ctx, backend, history.Options{
		Window:   cfg.History.Window,
		Capacity: cfg.History.Capacity,
	}, baseLogger.With("component", "history", "backend", cfg.History.Backend, "path", cfg.History.Path))

	client := parser.NewHTTPClient(cfg.Fetch.Timeout)
	identity := parser.NewIdentity(cfg.Fetch.UserAgents)

	registry := scanner.NewRegistry()
	registry.Register(parser.NewPageScanner(client, identity, baseLogger.With("component", "scanner.page")))
	registry.Register(parser.NewYouTubeScanner(client, identity, cfg.Fetch.FeedBase, baseLogger.With("component", "scanner.youtube")))

	source := parser.NewStrategySource(registry, cfg.Fetch, baseLogger.With("component", "source"))

	a.selector = usecase.NewSelector(usecase.SelectorDeps{
		Source:   source,
		History:  store,
		Pacer:    throttle.New(cfg.Fetch.MinDelay, cfg.Fetch.MaxDelay, cfg.Fetch.HostInterval),
		Articles: cfg.Articles,
		Videos:   cfg.Videos,
		Keywords: cfg.Keywords,
		Logger:   baseLogger.With("component", "selector"),
	})

	brevo := mailer.NewBrevo(cfg.Email, nil)
	a.newsletter = usecase.NewNewsletter(brevo, cfg.Email.Subject, baseLogger.With("component", "newsletter"))

	var notifiers []ports.Notifier
	if cfg.EmailEnabled() && len(cfg.Digest.Recipients) > 0 {
		notifiers = append(notifiers, mailer.NewDigestNotifier(brevo, cfg.Digest.Recipients, cfg.Email.Subject))
	}
	if tg := telegram.NewNotifier(cfg.Digest.Telegram); tg.Configured() {
		notifiers = append(notifiers, tg)
	}
	a.digest = usecase.NewDigest(usecase.DigestDeps{
		Selector:  a.selector,
		Notifiers: notifiers,
		Articles:  cfg.Digest.Articles,
		Videos:    cfg.Digest.Videos,
		Logger:    baseLogger.With("component", "digest"),
	})

	return a, nil
}

func (a *Application) historyBackend(ctx context.Context) (history.Backend, error) {
	switch a.cfg.History.Backend {
	case config.BackendSQLite:
		db, err := storage.OpenSQLite(ctx, a.cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite history: %w", err)
		}
		a.closers = append(a.closers, db)
		return db, nil
	default:
		return storage.NewJSONFile(a.cfg.History.Path), nil
	}
}

// Daily selects the daily bundle.
func (a *Application) Daily(ctx context.Context, articles, videos int) (domain.Bundle, error) {
	return a.selector.SelectDaily(ctx, articles, videos)
}

// Tags selects content matching tags.
func (a *Application) Tags(ctx context.Context, tags []string, articles, videos int) (domain.TagBundle, error) {
	return a.selector.SelectByTags(ctx, tags, articles, videos)
}

// History returns the current selection history.
func (a *Application) History() domain.HistoryRecord {
	return a.selector.History().Snapshot()
}

// Serve runs the HTTP API, and the digest scheduler when enabled, until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	if a.cfg.Digest.Enabled {
		sched := usecase.NewScheduler(scheduler.NewTicker(a.cfg.Digest.Interval), a.digest)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start digest scheduler: %w", err)
		}
		a.logger.Info("digest scheduler started", "interval", a.cfg.Digest.Interval)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
			defer cancel()
			if err := sched.Stop(stopCtx); err != nil {
				a.logger.Warn("stop digest scheduler", "error", err)
			}
		}()
	}

	server := api.NewServer(a.cfg.Server, api.Deps{
		Content:    a.selector,
		Newsletter: a.newsletter,
	}, a.logger.With("component", "http"))
	return server.ListenAndServe(ctx)
}

// Close releases the history backend.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
