package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"event-lifecycle-system/models"
)

// EventStore is the lifecycle engine's view of the event table. Page
// methods use keyset pagination on id (afterID == "" starts the scan) and
// never return cancelled events. Mark methods are conditional updates that
// report whether this call actually transitioned the row, so overlapping
// sweeps race safely.
type EventStore interface {
	// PageStartCandidates: cancelled_at IS NULL, status NULL or scheduled.
	PageStartCandidates(ctx context.Context, afterID string, limit int) ([]models.Event, error)
	// PageCompletionCandidates: cancelled_at IS NULL, status anything but completed.
	PageCompletionCandidates(ctx context.Context, afterID string, limit int) ([]models.Event, error)
	// PageRatingCandidates: approved, not cancelled, not yet rating-notified,
	// date on or before maxDate.
	PageRatingCandidates(ctx context.Context, maxDate string, afterID string, limit int) ([]models.Event, error)

	MarkInProgress(ctx context.Context, eventID string) (bool, error)
	MarkCompleted(ctx context.Context, eventID string) (bool, error)
}

const defaultSweepBatchSize = 200

// LifecycleService runs the periodic status sweeps. It holds no state
// between runs; every invocation re-derives transitions from the stored
// rows and the injected clock, so crashed or overlapping runs are safe.
type LifecycleService struct {
	Events    EventStore
	Notifier  *RatingNotifier
	Now       func() time.Time
	BatchSize int
}

func NewLifecycleService(events EventStore, notifier *RatingNotifier) *LifecycleService {
	return &LifecycleService{
		Events:    events,
		Notifier:  notifier,
		Now:       time.Now,
		BatchSize: defaultSweepBatchSize,
	}
}

// RunStartSweep moves events whose start instant has passed into
// in_progress. Safe to re-run at any cadence.
func (s *LifecycleService) RunStartSweep(ctx context.Context) error {
	now := s.Now()
	var scanned, started int

	afterID := ""
	for {
		page, err := s.Events.PageStartCandidates(ctx, afterID, s.BatchSize)
		if err != nil {
			return fmt.Errorf("start sweep: load candidates: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			ev := &page[i]
			scanned++

			tr, err := DeriveTransition(ev, now)
			if err != nil {
				// Bad stored data: skip this cycle, retried automatically next tick.
				log.Printf("⚠️ [SWEEP] Skipping event %s: %v", ev.ID, err)
				continue
			}
			if tr != TransitionStart {
				continue
			}

			ok, err := s.Events.MarkInProgress(ctx, ev.ID)
			if err != nil {
				log.Printf("❌ [SWEEP] Failed to start event %s: %v", ev.ID, err)
				continue
			}
			if ok {
				started++
			} else {
				log.Printf("[SWEEP] Event %s already claimed by a concurrent sweep", ev.ID)
			}
		}
		afterID = page[len(page)-1].ID
		if len(page) < s.BatchSize {
			break
		}
	}

	if started > 0 {
		log.Printf("✅ [SWEEP] Start sweep: %d of %d candidate(s) moved to in_progress", started, scanned)
	}
	return nil
}

// RunCompletionSweep moves events whose end instant has passed into
// completed, then hands the cycle to the rating notifier. The notifier is
// invoked once per successful sweep regardless of how many events
// transitioned; it re-filters eligibility itself.
func (s *LifecycleService) RunCompletionSweep(ctx context.Context) error {
	now := s.Now()
	var scanned, completed int

	afterID := ""
	for {
		page, err := s.Events.PageCompletionCandidates(ctx, afterID, s.BatchSize)
		if err != nil {
			return fmt.Errorf("completion sweep: load candidates: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			ev := &page[i]
			scanned++

			tr, err := DeriveTransition(ev, now)
			if err != nil {
				log.Printf("⚠️ [SWEEP] Skipping event %s: %v", ev.ID, err)
				continue
			}
			if tr != TransitionComplete {
				continue
			}

			ok, err := s.Events.MarkCompleted(ctx, ev.ID)
			if err != nil {
				log.Printf("❌ [SWEEP] Failed to complete event %s: %v", ev.ID, err)
				continue
			}
			if ok {
				completed++
			} else {
				log.Printf("[SWEEP] Event %s already claimed by a concurrent sweep", ev.ID)
			}
		}
		afterID = page[len(page)-1].ID
		if len(page) < s.BatchSize {
			break
		}
	}

	if completed > 0 {
		log.Printf("✅ [SWEEP] Completion sweep: %d of %d candidate(s) moved to completed", completed, scanned)
	}

	if s.Notifier != nil {
		if err := s.Notifier.Run(ctx); err != nil {
			return fmt.Errorf("completion sweep: rating notifier: %w", err)
		}
	}
	return nil
}
