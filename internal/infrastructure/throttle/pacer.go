// Package throttle spaces out requests to the content sources.
package throttle

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnuragC07/curatd/internal/ports"
)

// Pacer waits a random pause before each call and keeps a token bucket per
// host, so concurrent selections still respect each remote server.
type Pacer struct {
	minDelay time.Duration
	maxDelay time.Duration
	every    time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	jitter   func(min, max time.Duration) time.Duration
}

var _ ports.Pacer = (*Pacer)(nil)

// New builds a pacer. A zero hostInterval disables the per-host limit.
func New(minDelay, maxDelay, hostInterval time.Duration) *Pacer {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Pacer{
		minDelay: minDelay,
		maxDelay: maxDelay,
		every:    hostInterval,
		limiters: map[string]*rate.Limiter{},
		jitter:   randomBetween,
	}
}

// Wait blocks for the courtesy pause and then for the target host's token.
func (p *Pacer) Wait(ctx context.Context, target string) error {
	if d := p.jitter(p.minDelay, p.maxDelay); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if lim := p.limiter(target); lim != nil {
		return lim.Wait(ctx)
	}
	return ctx.Err()
}

func (p *Pacer) limiter(target string) *rate.Limiter {
	if p.every <= 0 {
		return nil
	}
	host := hostOf(target)

	p.mu.Lock()
	defer p.mu.Unlock()
	lim, ok := p.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.every), 1)
		p.limiters[host] = lim
	}
	return lim
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Hostname()
}

func randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min+1)
}
