package stores

import (
	"context"

	"event-lifecycle-system/models"

	"gorm.io/gorm"
)

// ParticipantStore reads the event↔user join relation.
type ParticipantStore struct {
	DB *gorm.DB
}

func NewParticipantStore(db *gorm.DB) *ParticipantStore {
	return &ParticipantStore{DB: db}
}

// DistinctParticipantIDs returns the de-duplicated, non-empty external user
// ids registered on the event.
func (s *ParticipantStore) DistinctParticipantIDs(ctx context.Context, eventID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.EventParticipant{}).
		Where("event_id = ? AND external_user_id <> ''", eventID).
		Distinct().
		Pluck("external_user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
