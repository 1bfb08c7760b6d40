package models

// Venue is a bookable location events are hosted at. Rating prompts
// reference venues by id in their payload.
type Venue struct {
	ID       string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name     string `json:"name" gorm:"not null"`
	Slug     string `json:"slug" gorm:"index"`
	Address  string `json:"address"`
	City     string `json:"city" gorm:"index"`
	PhotoURL string `json:"photo_url,omitempty"`

	CreatedBy string `json:"created_by" gorm:"index"`

	Timestamps
}
