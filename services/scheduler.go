// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const sweepTimeout = 5 * time.Minute

// StartSweepScheduler wires both lifecycle sweeps onto a one-minute cadence.
// Each tick takes the cooperative lock for its mode (a nil lock always
// grants) so overlapping ticks skip instead of racing; the conditional row
// updates in the store remain the correctness backstop either way.
func (s *LifecycleService) StartSweepScheduler(lock *SweepLock) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.runLocked(lock, "start", s.RunStartSweep)
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.runLocked(lock, "completion", s.RunCompletionSweep)
		}),
	)
}

func (s *LifecycleService) runLocked(lock *SweepLock, mode string, sweep func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	release, ok := lock.Acquire(ctx, mode)
	if !ok {
		log.Printf("[SWEEP] %s sweep skipped: previous run still holds the lock", mode)
		return
	}
	defer release()

	if err := sweep(ctx); err != nil {
		// Abort this invocation; next tick retries from scratch.
		log.Printf("❌ [SWEEP] %s sweep failed: %v", mode, err)
	}
}
