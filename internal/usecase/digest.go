package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnuragC07/curatd/internal/domain"
	"github.com/AnuragC07/curatd/internal/logging"
	"github.com/AnuragC07/curatd/internal/ports"
)

// DigestDeps wires the periodic digest.
type DigestDeps struct {
	Selector  *Selector
	Notifiers []ports.Notifier
	Articles  int
	Videos    int
	Logger    *slog.Logger
}

// Digest selects a daily bundle and publishes it to every notifier.
type Digest struct {
	selector  *Selector
	notifiers []ports.Notifier
	articles  int
	videos    int
	logger    *slog.Logger
}

// NewDigest constructs the digest use case.
func NewDigest(deps DigestDeps) *Digest {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Digest{
		selector:  deps.Selector,
		notifiers: deps.Notifiers,
		articles:  deps.Articles,
		videos:    deps.Videos,
		logger:    deps.Logger,
	}
}

// Run performs one digest cycle. A failing notifier does not stop the others;
// their errors are joined into the result.
func (d *Digest) Run(ctx context.Context, now time.Time) error {
	if d.selector == nil || len(d.notifiers) == 0 {
		return nil
	}

	bundle, err := d.selector.SelectDaily(ctx, d.articles, d.videos)
	if err != nil {
		return fmt.Errorf("select digest: %w", err)
	}
	if len(bundle.Articles)+len(bundle.Videos) == 0 {
		d.logger.Info("digest skipped, nothing new", "at", now.Format(time.RFC3339))
		return nil
	}

	return d.publish(ctx, bundle)
}

func (d *Digest) publish(ctx context.Context, bundle domain.Bundle) error {
	var errs []error
	for _, n := range d.notifiers {
		if err := n.PublishDigest(ctx, bundle); err != nil {
			d.logger.Warn("digest delivery failed", "notifier", n.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		d.logger.Info("digest delivered", "notifier", n.Name(), "articles", len(bundle.Articles), "videos", len(bundle.Videos))
	}
	return errors.Join(errs...)
}
