package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AnuragC07/curatd/internal/ports"
)

// Ticker runs a job right away and then once per interval.
type Ticker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*Ticker)(nil)

// NewTicker builds a scheduler firing every interval.
func NewTicker(interval time.Duration) *Ticker {
	return &Ticker{interval: interval}
}

// Start launches the loop. Calling Start on a running ticker is a no-op.
func (t *Ticker) Start(ctx context.Context, job func(context.Context)) error {
	if job == nil {
		return nil
	}
	if t.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done

	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-stop:
			cancel()
		case <-runCtx.Done():
		}
	}()

	go func() {
		defer close(done)
		defer cancel()

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		job(runCtx)
		for {
			select {
			case <-ticker.C:
				job(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop halts the loop and waits for an in-flight job until ctx expires.
func (t *Ticker) Stop(ctx context.Context) error {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
