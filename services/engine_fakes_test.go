package services

import (
	"context"
	"sort"

	"event-lifecycle-system/models"
)

// In-memory store fakes mirroring the SQL semantics of the stores package.

type fakeEventStore struct {
	events map[string]*models.Event
}

func newFakeEventStore(events ...*models.Event) *fakeEventStore {
	s := &fakeEventStore{events: make(map[string]*models.Event)}
	for _, ev := range events {
		s.events[ev.ID] = ev
	}
	return s
}

func (s *fakeEventStore) page(afterID string, limit int, match func(*models.Event) bool) ([]models.Event, error) {
	ids := make([]string, 0, len(s.events))
	for id := range s.events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var page []models.Event
	for _, id := range ids {
		if id <= afterID {
			continue
		}
		ev := s.events[id]
		if ev.CancelledAt != nil || !match(ev) {
			continue
		}
		page = append(page, *ev)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (s *fakeEventStore) PageStartCandidates(_ context.Context, afterID string, limit int) ([]models.Event, error) {
	return s.page(afterID, limit, func(ev *models.Event) bool {
		return ev.GameStatus == nil || *ev.GameStatus == models.StatusScheduled
	})
}

func (s *fakeEventStore) PageCompletionCandidates(_ context.Context, afterID string, limit int) ([]models.Event, error) {
	return s.page(afterID, limit, func(ev *models.Event) bool {
		return ev.GameStatus == nil || *ev.GameStatus != models.StatusCompleted
	})
}

func (s *fakeEventStore) PageRatingCandidates(_ context.Context, maxDate string, afterID string, limit int) ([]models.Event, error) {
	return s.page(afterID, limit, func(ev *models.Event) bool {
		return ev.IsApproved && !ev.IsRatingNotified && ev.Date <= maxDate
	})
}

func (s *fakeEventStore) MarkInProgress(_ context.Context, eventID string) (bool, error) {
	ev, ok := s.events[eventID]
	if !ok || ev.CancelledAt != nil {
		return false, nil
	}
	if ev.GameStatus != nil && *ev.GameStatus != models.StatusScheduled {
		return false, nil
	}
	status := models.StatusInProgress
	ev.GameStatus = &status
	return true, nil
}

func (s *fakeEventStore) MarkCompleted(_ context.Context, eventID string) (bool, error) {
	ev, ok := s.events[eventID]
	if !ok || ev.CancelledAt != nil {
		return false, nil
	}
	if ev.GameStatus != nil && *ev.GameStatus == models.StatusCompleted {
		return false, nil
	}
	status := models.StatusCompleted
	ev.GameStatus = &status
	return true, nil
}

func (s *fakeEventStore) status(eventID string) string {
	ev := s.events[eventID]
	if ev.GameStatus == nil {
		return ""
	}
	return *ev.GameStatus
}

type fakeParticipantStore struct {
	byEvent map[string][]string
}

func (s *fakeParticipantStore) DistinctParticipantIDs(_ context.Context, eventID string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range s.byEvent[eventID] {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

type createdPrompt struct {
	notification models.Notification
	recipients   []string
}

type fakeNotificationStore struct {
	events  *fakeEventStore
	prompts map[string]createdPrompt // by event id
	failErr error                    // injected fan-out failure
}

func newFakeNotificationStore(events *fakeEventStore) *fakeNotificationStore {
	return &fakeNotificationStore{events: events, prompts: make(map[string]createdPrompt)}
}

func (s *fakeNotificationStore) CreateRatingPrompt(_ context.Context, eventID string, n *models.Notification, recipientIDs []string) (bool, error) {
	if s.failErr != nil {
		// Whole unit rolls back: no prompt stored, flag untouched.
		return false, s.failErr
	}
	ev, ok := s.events.events[eventID]
	if !ok || ev.IsRatingNotified || ev.CancelledAt != nil {
		return false, nil
	}
	ev.IsRatingNotified = true
	s.prompts[eventID] = createdPrompt{notification: *n, recipients: append([]string(nil), recipientIDs...)}
	return true, nil
}

func (s *fakeNotificationStore) MarkRatingNotified(_ context.Context, eventID string) (bool, error) {
	ev, ok := s.events.events[eventID]
	if !ok || ev.IsRatingNotified || ev.CancelledAt != nil {
		return false, nil
	}
	ev.IsRatingNotified = true
	return true, nil
}

type fakePublisher struct {
	published []createdPrompt
	failErr   error
}

func (p *fakePublisher) NotificationCreated(_ context.Context, n *models.Notification, recipientIDs []string) error {
	if p.failErr != nil {
		return p.failErr
	}
	p.published = append(p.published, createdPrompt{notification: *n, recipients: recipientIDs})
	return nil
}
