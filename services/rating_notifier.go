package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"event-lifecycle-system/models"

	"github.com/google/uuid"
)

// ParticipantStore reads the join relation between events and users.
type ParticipantStore interface {
	// DistinctParticipantIDs returns the de-duplicated external user ids
	// registered on the event. Organizer filtering happens in the notifier.
	DistinctParticipantIDs(ctx context.Context, eventID string) ([]string, error)
}

// NotificationStore persists rating prompts. Both methods are atomic per
// event — the notification, its fan-out rows and the event's notified flag
// commit or roll back together — and return false when another run already
// claimed the event.
type NotificationStore interface {
	CreateRatingPrompt(ctx context.Context, eventID string, n *models.Notification, recipientIDs []string) (bool, error)
	MarkRatingNotified(ctx context.Context, eventID string) (bool, error)
}

// DeliveryPublisher announces committed fan-outs to downstream delivery
// (push/email workers listening on the broker). Publishing is best-effort;
// a failure never rolls back the stored notification.
type DeliveryPublisher interface {
	NotificationCreated(ctx context.Context, n *models.Notification, recipientIDs []string) error
}

// RatingNotifier prompts participants of freshly ended events to rate the
// venue. For any event the prompt is created at most once, guarded by the
// is_rating_notified flag flipped inside the same transaction as the
// fan-out.
type RatingNotifier struct {
	Events        EventStore
	Participants  ParticipantStore
	Notifications NotificationStore
	Publisher     DeliveryPublisher // nil = delivery trigger disabled
	Now           func() time.Time
	BatchSize     int
}

func NewRatingNotifier(events EventStore, participants ParticipantStore, notifications NotificationStore, publisher DeliveryPublisher) *RatingNotifier {
	return &RatingNotifier{
		Events:        events,
		Participants:  participants,
		Notifications: notifications,
		Publisher:     publisher,
		Now:           time.Now,
		BatchSize:     defaultSweepBatchSize,
	}
}

// Run scans approved, ended, never-notified events and emits one rating
// prompt per event. One event's failure is logged and does not block the
// rest of the batch; the event stays eligible for the next run.
func (rn *RatingNotifier) Run(ctx context.Context) error {
	now := rn.Now()
	maxDate := now.Format(models.DateLayout)

	afterID := ""
	for {
		page, err := rn.Events.PageRatingCandidates(ctx, maxDate, afterID, rn.BatchSize)
		if err != nil {
			return fmt.Errorf("load rating candidates: %w", err)
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			ev := &page[i]
			if err := rn.notifyEvent(ctx, ev, now); err != nil {
				log.Printf("❌ [NOTIFIER] Event %s: %v", ev.ID, err)
			}
		}
		afterID = page[len(page)-1].ID
		if len(page) < rn.BatchSize {
			break
		}
	}
	return nil
}

func (rn *RatingNotifier) notifyEvent(ctx context.Context, ev *models.Event, now time.Time) error {
	// The store prefilters by date only; re-check the exact end instant here.
	end, err := EffectiveEnd(ev)
	if err != nil {
		return err
	}
	if now.Before(end) {
		return nil // still running, reconsidered next cycle
	}

	ids, err := rn.Participants.DistinctParticipantIDs(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == ev.CreatedBy {
			continue
		}
		recipients = append(recipients, id)
	}

	// Nobody to prompt: flip the flag so the event is never reconsidered.
	if len(recipients) == 0 {
		if _, err := rn.Notifications.MarkRatingNotified(ctx, ev.ID); err != nil {
			return fmt.Errorf("mark notified: %w", err)
		}
		log.Printf("[NOTIFIER] Event %s ended with no participants to prompt", ev.ID)
		return nil
	}

	payload, err := json.Marshal(models.RateVenuePayload{
		Message: fmt.Sprintf("How was %s? Rate the venue to help other players.", ev.Name),
		EventID: ev.ID,
		VenueID: ev.VenueID,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	n := &models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationTypeRateVenue,
		Data:      string(payload),
		CreatedBy: ev.CreatedBy,
	}

	created, err := rn.Notifications.CreateRatingPrompt(ctx, ev.ID, n, recipients)
	if err != nil {
		return fmt.Errorf("create rating prompt: %w", err)
	}
	if !created {
		log.Printf("[NOTIFIER] Event %s already notified by a concurrent run", ev.ID)
		return nil
	}

	log.Printf("✅ [NOTIFIER] Rating prompt for event %s fanned out to %d participant(s)", ev.ID, len(recipients))

	if rn.Publisher != nil {
		if err := rn.Publisher.NotificationCreated(ctx, n, recipients); err != nil {
			log.Printf("⚠️ [NOTIFIER] Delivery publish failed for notification %s: %v", n.ID, err)
		}
	}
	return nil
}
