package stores

import (
	"context"

	"event-lifecycle-system/models"

	"gorm.io/gorm"
)

// EventStore is the GORM-backed event table boundary used by the lifecycle
// engine. Cancelled events never appear in any candidate page.
type EventStore struct {
	DB *gorm.DB
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{DB: db}
}

func (s *EventStore) PageStartCandidates(ctx context.Context, afterID string, limit int) ([]models.Event, error) {
	q := s.DB.WithContext(ctx).
		Where("cancelled_at IS NULL").
		Where("game_status IS NULL OR game_status = ?", models.StatusScheduled)
	return pageEvents(q, afterID, limit)
}

func (s *EventStore) PageCompletionCandidates(ctx context.Context, afterID string, limit int) ([]models.Event, error) {
	q := s.DB.WithContext(ctx).
		Where("cancelled_at IS NULL").
		Where("game_status IS NULL OR game_status IN ?", []string{models.StatusScheduled, models.StatusInProgress})
	return pageEvents(q, afterID, limit)
}

// PageRatingCandidates prefilters to events whose start date is on or
// before maxDate (ISO date strings compare lexically); the notifier checks
// the exact effective end instant itself.
func (s *EventStore) PageRatingCandidates(ctx context.Context, maxDate string, afterID string, limit int) ([]models.Event, error) {
	q := s.DB.WithContext(ctx).
		Where("cancelled_at IS NULL").
		Where("is_approved = ?", true).
		Where("is_rating_notified = ?", false).
		Where("date <= ?", maxDate)
	return pageEvents(q, afterID, limit)
}

// pageEvents applies keyset pagination by id. Candidates that transition
// mid-scan simply drop out of later pages; the cursor only moves forward.
func pageEvents(q *gorm.DB, afterID string, limit int) ([]models.Event, error) {
	if afterID != "" {
		q = q.Where("id > ?", afterID)
	}
	var events []models.Event
	if err := q.Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// MarkInProgress transitions scheduled (or never-swept) events to
// in_progress. The status condition makes the update a compare-and-swap:
// zero rows affected means a concurrent sweep, a cancellation or a later
// transition won the race.
func (s *EventStore) MarkInProgress(ctx context.Context, eventID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND cancelled_at IS NULL", eventID).
		Where("game_status IS NULL OR game_status = ?", models.StatusScheduled).
		Update("game_status", models.StatusInProgress)
	return res.RowsAffected > 0, res.Error
}

// MarkCompleted transitions any not-yet-completed, non-cancelled event to
// completed. Same compare-and-swap semantics as MarkInProgress.
func (s *EventStore) MarkCompleted(ctx context.Context, eventID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND cancelled_at IS NULL", eventID).
		Where("game_status IS NULL OR game_status IN ?", []string{models.StatusScheduled, models.StatusInProgress}).
		Update("game_status", models.StatusCompleted)
	return res.RowsAffected > 0, res.Error
}
