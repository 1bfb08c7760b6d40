package models

import (
	"time"
)

// Notification type tags.
const (
	NotificationTypeRateVenue = "rate_venue"
)

// UserNotification action states.
const (
	ActionStatePending   = "pending"
	ActionStateDone      = "done"
	ActionStateDismissed = "dismissed"
)

// Notification is one logical alert. Delivery to individual users happens
// through UserNotification fan-out rows, never through this record directly.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Type      string    `json:"type" gorm:"type:varchar(32);index;not null"`
	Data      string    `json:"data" gorm:"type:jsonb"` // free-form payload: message text + correlated ids
	CreatedBy string    `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Recipients []UserNotification `json:"recipients,omitempty" gorm:"foreignKey:NotificationID"`
}

// UserNotification is one (Notification, recipient) fan-out record. Its
// creation is the trigger point for downstream push/email delivery — that
// delivery is owned by external services listening on the broker.
type UserNotification struct {
	ID             string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NotificationID string `json:"notification_id" gorm:"not null;index"`
	ExternalUserID string `json:"external_user_id" gorm:"not null;index"`

	IsRead      bool   `json:"is_read" gorm:"default:false"`
	Pinned      bool   `json:"pinned" gorm:"default:false"`
	ActionState string `json:"action_state" gorm:"type:varchar(16);default:'pending'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Notification *Notification `json:"notification,omitempty" gorm:"foreignKey:NotificationID"`
}

// RateVenuePayload is the Data JSON carried by rate_venue notifications.
type RateVenuePayload struct {
	Message string `json:"message"`
	EventID string `json:"event_id"`
	VenueID string `json:"venue_id,omitempty"`
}
