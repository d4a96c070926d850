package usecase

import (
	"context"
	"time"

	"github.com/AnuragC07/curatd/internal/ports"
)

// Scheduler wires the recurring driver with the digest use case.
type Scheduler struct {
	driver ports.Scheduler
	digest *Digest
	clock  func() time.Time
}

// NewScheduler returns a helper to start/stop the recurring digest.
func NewScheduler(driver ports.Scheduler, digest *Digest) *Scheduler {
	return &Scheduler{driver: driver, digest: digest, clock: time.Now}
}

// Start registers the digest with the provided scheduler. Failed cycles are
// logged by the digest and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.digest == nil {
		return nil
	}

	job := func(runCtx context.Context) {
		if err := s.digest.Run(runCtx, s.clock()); err != nil {
			s.digest.logger.Error("digest run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
