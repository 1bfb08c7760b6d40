package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"event-lifecycle-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func endedEvent(id string, participants ...string) (*models.Event, *fakeParticipantStore) {
	status := models.StatusCompleted
	ev := &models.Event{
		ID: id, Name: "Sunday Open Play",
		Date: "2025-06-01", StartTime: "09:00", EndTime: "10:00",
		GameStatus: &status,
		IsApproved: true,
		CreatedBy:  "organizer",
		VenueID:    "venue-9",
	}
	return ev, &fakeParticipantStore{byEvent: map[string][]string{id: participants}}
}

func newTestNotifier(store *fakeEventStore, participants *fakeParticipantStore, notifStore *fakeNotificationStore, pub DeliveryPublisher) *RatingNotifier {
	rn := NewRatingNotifier(store, participants, notifStore, pub)
	rn.Now = func() time.Time { return testNow }
	return rn
}

func TestNotifierFanOutExcludesOrganizer(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice", "bob", "organizer", "", "alice")
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	pub := &fakePublisher{}
	rn := newTestNotifier(store, participants, notifStore, pub)

	require.NoError(t, rn.Run(context.Background()))

	require.Contains(t, notifStore.prompts, "ev-1")
	prompt := notifStore.prompts["ev-1"]
	assert.ElementsMatch(t, []string{"alice", "bob"}, prompt.recipients)
	assert.Equal(t, models.NotificationTypeRateVenue, prompt.notification.Type)
	assert.Equal(t, "organizer", prompt.notification.CreatedBy)
	assert.True(t, ev.IsRatingNotified)

	var payload models.RateVenuePayload
	require.NoError(t, json.Unmarshal([]byte(prompt.notification.Data), &payload))
	assert.Equal(t, "ev-1", payload.EventID)
	assert.Equal(t, "venue-9", payload.VenueID)
	assert.Contains(t, payload.Message, "Sunday Open Play")

	// Delivery trigger fired once, after commit.
	require.Len(t, pub.published, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, pub.published[0].recipients)
}

func TestNotifierEmptyParticipantsMarksWithoutNotification(t *testing.T) {
	ev, participants := endedEvent("ev-1", "organizer") // organizer only
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	rn := newTestNotifier(store, participants, notifStore, nil)

	require.NoError(t, rn.Run(context.Background()))

	assert.True(t, ev.IsRatingNotified)
	assert.Empty(t, notifStore.prompts)
}

func TestNotifierAtMostOnce(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice")
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	rn := newTestNotifier(store, participants, notifStore, nil)

	require.NoError(t, rn.Run(context.Background()))
	first := notifStore.prompts["ev-1"].notification.ID
	require.NoError(t, rn.Run(context.Background()))

	require.Len(t, notifStore.prompts, 1)
	assert.Equal(t, first, notifStore.prompts["ev-1"].notification.ID)
}

func TestNotifierSkipsEventsStillRunning(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice")
	ev.EndTime = "18:00" // ends after testNow; date prefilter alone would pick it up
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	rn := newTestNotifier(store, participants, notifStore, nil)

	require.NoError(t, rn.Run(context.Background()))

	assert.False(t, ev.IsRatingNotified)
	assert.Empty(t, notifStore.prompts)
}

func TestNotifierSkipsUnapprovedEvents(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice")
	ev.IsApproved = false
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	rn := newTestNotifier(store, participants, notifStore, nil)

	require.NoError(t, rn.Run(context.Background()))

	assert.False(t, ev.IsRatingNotified)
	assert.Empty(t, notifStore.prompts)
}

func TestNotifierFailedFanOutStaysEligible(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice")
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	notifStore.failErr = errors.New("connection reset")
	rn := newTestNotifier(store, participants, notifStore, nil)

	// Failure is isolated: the run itself still succeeds.
	require.NoError(t, rn.Run(context.Background()))
	assert.False(t, ev.IsRatingNotified)
	assert.Empty(t, notifStore.prompts)

	// Next cycle retries the whole unit.
	notifStore.failErr = nil
	require.NoError(t, rn.Run(context.Background()))
	assert.True(t, ev.IsRatingNotified)
	require.Len(t, notifStore.prompts, 1)
}

func TestNotifierPublisherFailureDoesNotUndoCommit(t *testing.T) {
	ev, participants := endedEvent("ev-1", "alice")
	store := newFakeEventStore(ev)
	notifStore := newFakeNotificationStore(store)
	pub := &fakePublisher{failErr: errors.New("nats down")}
	rn := newTestNotifier(store, participants, notifStore, pub)

	require.NoError(t, rn.Run(context.Background()))

	assert.True(t, ev.IsRatingNotified)
	require.Len(t, notifStore.prompts, 1)
	assert.Empty(t, pub.published)
}

func TestNotifierIsolatesFailuresAcrossEvents(t *testing.T) {
	bad, _ := endedEvent("ev-1", "alice")
	bad.Date = "not-a-date"
	good, _ := endedEvent("ev-2", "bob")
	store := newFakeEventStore(bad, good)
	notifStore := newFakeNotificationStore(store)
	rn := newTestNotifier(store, &fakeParticipantStore{byEvent: map[string][]string{
		"ev-1": {"alice"},
		"ev-2": {"bob"},
	}}, notifStore, nil)

	require.NoError(t, rn.Run(context.Background()))

	assert.False(t, bad.IsRatingNotified)
	assert.True(t, good.IsRatingNotified)
	require.Len(t, notifStore.prompts, 1)
	assert.Contains(t, notifStore.prompts, "ev-2")
}
