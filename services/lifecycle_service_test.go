package services

import (
	"context"
	"testing"
	"time"

	"event-lifecycle-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLifecycle(store *fakeEventStore) *LifecycleService {
	s := NewLifecycleService(store, nil)
	s.Now = func() time.Time { return testNow }
	return s
}

func scheduled(id, date, start, end string) *models.Event {
	status := models.StatusScheduled
	return &models.Event{ID: id, Date: date, StartTime: start, EndTime: end, GameStatus: &status}
}

func TestStartSweepMovesEventsInWindow(t *testing.T) {
	store := newFakeEventStore(
		scheduled("ev-1", "2025-06-01", "11:00", "14:00"), // started an hour ago
		scheduled("ev-2", "2025-06-01", "13:00", "15:00"), // not started yet
		scheduled("ev-3", "2025-06-01", "09:00", "10:00"), // already over — start sweep leaves it alone
	)
	s := newTestLifecycle(store)

	require.NoError(t, s.RunStartSweep(context.Background()))

	assert.Equal(t, models.StatusInProgress, store.status("ev-1"))
	assert.Equal(t, models.StatusScheduled, store.status("ev-2"))
	assert.Equal(t, models.StatusScheduled, store.status("ev-3"))
}

func TestStartSweepTreatsNilStatusAsScheduled(t *testing.T) {
	store := newFakeEventStore(
		&models.Event{ID: "ev-1", Date: "2025-06-01", StartTime: "11:00", EndTime: "14:00"},
	)
	s := newTestLifecycle(store)

	require.NoError(t, s.RunStartSweep(context.Background()))

	assert.Equal(t, models.StatusInProgress, store.status("ev-1"))
}

func TestCompletionSweepMarksEndedEvents(t *testing.T) {
	inProgress := models.StatusInProgress
	store := newFakeEventStore(
		scheduled("ev-1", "2025-06-01", "09:00", "10:00"), // ended, never started
		&models.Event{ID: "ev-2", Date: "2025-06-01", StartTime: "08:00", EndTime: "11:30", GameStatus: &inProgress},
		scheduled("ev-3", "2025-06-01", "11:00", "14:00"), // still running
		scheduled("ev-4", "2025-06-02", "09:00", "10:00"), // tomorrow
	)
	s := newTestLifecycle(store)

	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusCompleted, store.status("ev-1"))
	assert.Equal(t, models.StatusCompleted, store.status("ev-2"))
	assert.Equal(t, models.StatusScheduled, store.status("ev-3"))
	assert.Equal(t, models.StatusScheduled, store.status("ev-4"))
}

func TestCompletionSweepBoundaryIsHalfOpen(t *testing.T) {
	// now == effective end exactly: complete, not in progress.
	store := newFakeEventStore(scheduled("ev-1", "2025-06-01", "10:00", "12:00"))
	s := newTestLifecycle(store)

	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusCompleted, store.status("ev-1"))
}

func TestSweepsIgnoreCancelledEvents(t *testing.T) {
	cancelledAt := testNow.Add(-24 * time.Hour)
	ev := scheduled("ev-1", "2025-05-01", "09:00", "10:00") // long over
	ev.CancelledAt = &cancelledAt
	store := newFakeEventStore(ev)
	s := newTestLifecycle(store)

	require.NoError(t, s.RunStartSweep(context.Background()))
	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusScheduled, store.status("ev-1"))
	assert.False(t, ev.IsRatingNotified)
}

func TestCompletionSweepIsolatesMalformedEvents(t *testing.T) {
	store := newFakeEventStore(
		scheduled("ev-1", "not-a-date", "09:00", "10:00"),
		scheduled("ev-2", "2025-06-01", "09:00", "10:00"),
	)
	s := newTestLifecycle(store)

	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusScheduled, store.status("ev-1"))
	assert.Equal(t, models.StatusCompleted, store.status("ev-2"))
}

func TestCompletionSweepIdempotent(t *testing.T) {
	store := newFakeEventStore(scheduled("ev-1", "2025-06-01", "09:00", "10:00"))
	s := newTestLifecycle(store)

	require.NoError(t, s.RunCompletionSweep(context.Background()))
	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusCompleted, store.status("ev-1"))
}

func TestSweepPagesThroughCandidates(t *testing.T) {
	store := newFakeEventStore(
		scheduled("ev-1", "2025-06-01", "08:00", "09:00"),
		scheduled("ev-2", "2025-06-01", "08:00", "09:30"),
		scheduled("ev-3", "2025-06-01", "08:00", "10:00"),
	)
	s := newTestLifecycle(store)
	s.BatchSize = 1

	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusCompleted, store.status("ev-1"))
	assert.Equal(t, models.StatusCompleted, store.status("ev-2"))
	assert.Equal(t, models.StatusCompleted, store.status("ev-3"))
}

func TestCompletionSweepInvokesNotifier(t *testing.T) {
	ev := scheduled("ev-1", "2025-06-01", "09:00", "10:00")
	ev.IsApproved = true
	ev.CreatedBy = "organizer"
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	notifier := NewRatingNotifier(store, &fakeParticipantStore{byEvent: map[string][]string{
		"ev-1": {"alice", "bob"},
	}}, notifStore, nil)
	notifier.Now = func() time.Time { return testNow }

	s := NewLifecycleService(store, notifier)
	s.Now = func() time.Time { return testNow }

	require.NoError(t, s.RunCompletionSweep(context.Background()))

	assert.Equal(t, models.StatusCompleted, store.status("ev-1"))
	assert.True(t, ev.IsRatingNotified)
	require.Contains(t, notifStore.prompts, "ev-1")
	assert.ElementsMatch(t, []string{"alice", "bob"}, notifStore.prompts["ev-1"].recipients)
}
