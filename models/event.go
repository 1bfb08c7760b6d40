package models

import (
	"time"

	"gorm.io/gorm"
)

// Temporal phases stored in game_status. A NULL status means the event was
// created before the lifecycle engine first saw it and is treated as
// StatusScheduled everywhere.
const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Layouts of the stored civil date/time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event represents one scheduled activity at a venue — a standalone game,
// a tournament game, or an open-play session.
type Event struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"index"`
	Description string `json:"description"`

	// Civil date/time fields stored as strings exactly as submitted.
	// Single-day events carry date + start_time + end_time; multi-day
	// events additionally carry end_date + end_date_end_time, which then
	// take precedence for the effective end instant.
	Date           string  `json:"date" gorm:"type:varchar(10);not null;index"`
	StartTime      string  `json:"start_time" gorm:"type:varchar(5);not null"`
	EndTime        string  `json:"end_time" gorm:"type:varchar(5)"`
	EndDate        *string `json:"end_date,omitempty" gorm:"type:varchar(10)"`
	EndDateEndTime *string `json:"end_date_end_time,omitempty" gorm:"type:varchar(5)"`

	// Mutated only by the lifecycle sweeps.
	GameStatus       *string `json:"game_status,omitempty" gorm:"type:varchar(16);index"`
	IsRatingNotified bool    `json:"is_rating_notified" gorm:"default:false"`

	// Cancellation is terminal: once set, the event is frozen out of every
	// sweep and keeps whatever status it had.
	CancelledAt *time.Time `json:"cancelled_at,omitempty" gorm:"index"`

	IsApproved bool `json:"is_approved" gorm:"default:false"`

	CreatedBy     string `json:"created_by" gorm:"index;not null"`
	VenueID       string `json:"venue_id" gorm:"index"`
	CoverPhotoURL string `json:"cover_photo_url,omitempty"`

	Participants []EventParticipant `json:"participants,omitempty" gorm:"foreignKey:EventID"`

	Timestamps
}

// EventParticipant links one platform user to one event. The composite
// unique index keeps repeated joins idempotent.
type EventParticipant struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID        string    `json:"event_id" gorm:"not null;uniqueIndex:idx_event_participant"`
	ExternalUserID string    `json:"external_user_id" gorm:"not null;index;uniqueIndex:idx_event_participant"`
	JoinedAt       time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
