package stores

import (
	"context"
	"errors"

	"event-lifecycle-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errAlreadyNotified = errors.New("event already rating-notified")

// NotificationStore persists rating prompts and their fan-out rows.
type NotificationStore struct {
	DB *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{DB: db}
}

// CreateRatingPrompt writes the notification, one UserNotification per
// recipient and the event's notified flag in a single transaction. The flag
// flip doubles as the claim: if another run (or a cancellation) got there
// first, nothing is written and created is false. A failure partway rolls
// the whole unit back so the event stays eligible for the next sweep.
func (s *NotificationStore) CreateRatingPrompt(ctx context.Context, eventID string, n *models.Notification, recipientIDs []string) (bool, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Event{}).
			Where("id = ? AND is_rating_notified = ? AND cancelled_at IS NULL", eventID, false).
			Update("is_rating_notified", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAlreadyNotified
		}

		if err := tx.Create(n).Error; err != nil {
			return err
		}

		fanOut := make([]models.UserNotification, 0, len(recipientIDs))
		for _, userID := range recipientIDs {
			fanOut = append(fanOut, models.UserNotification{
				ID:             uuid.NewString(),
				NotificationID: n.ID,
				ExternalUserID: userID,
				ActionState:    models.ActionStatePending,
			})
		}
		return tx.Create(&fanOut).Error
	})
	if errors.Is(err, errAlreadyNotified) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkRatingNotified flips the flag without creating a notification — the
// empty-participant case. Conditional for the same race-safety reasons.
func (s *NotificationStore) MarkRatingNotified(ctx context.Context, eventID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND is_rating_notified = ? AND cancelled_at IS NULL", eventID, false).
		Update("is_rating_notified", true)
	return res.RowsAffected > 0, res.Error
}
