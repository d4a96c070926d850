package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	tick := NewTicker(10 * time.Millisecond)
	if err := tick.Start(context.Background(), func(context.Context) { runs.Add(1) }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := tick.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if runs.Load() < 3 {
		t.Fatalf("expected at least 3 runs, got %d", runs.Load())
	}

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Fatalf("job ran after Stop")
	}
}

func TestTickerStopCancelsJobContext(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	tick := NewTicker(time.Hour)
	err := tick.Start(context.Background(), func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(cancelled)
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	<-started
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tick.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-cancelled:
	default:
		t.Fatalf("job context was not cancelled")
	}
}

func TestTickerRejectsZeroInterval(t *testing.T) {
	t.Parallel()

	if err := NewTicker(0).Start(context.Background(), func(context.Context) {}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if err := NewTicker(0).Stop(context.Background()); err != nil {
		t.Fatalf("Stop on idle ticker: %v", err)
	}
}
