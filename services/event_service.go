package services

import (
	"errors"
	"log"
	"path/filepath"
	"time"

	"event-lifecycle-system/models"
	"event-lifecycle-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// CreateEvent registers a new scheduled event. Temporal fields are
// validated as parseable here so the sweeps normally only ever see clean
// data; the engine still tolerates malformed rows that arrive by other
// paths (imports, manual fixes).
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	ev := &models.Event{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: c.FormValue("description"),
		Date:        c.FormValue("date"),
		StartTime:   c.FormValue("start_time"),
		EndTime:     c.FormValue("end_time"),
		CreatedBy:   userID,
		VenueID:     c.FormValue("venue_id"),
		GameStatus:  strPtr(models.StatusScheduled),
	}
	if endDate := c.FormValue("end_date"); endDate != "" {
		endDateEndTime := c.FormValue("end_date_end_time")
		if endDateEndTime == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_date requires end_date_end_time"})
		}
		ev.EndDate = &endDate
		ev.EndDateEndTime = &endDateEndTime
	}

	start, err := EffectiveStart(ev)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date and start_time must be YYYY-MM-DD and HH:MM"})
	}
	end, err := EffectiveEnd(ev)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end fields must be YYYY-MM-DD and HH:MM"})
	}
	if !end.After(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "event must end after it starts"})
	}

	// Optional cover photo → R2 (small, public asset)
	if photo, err := c.FormFile("cover_photo"); err == nil && photo.Size > 0 {
		ext := filepath.Ext(photo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "events/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(photo, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload cover photo"})
		}
		ev.CoverPhotoURL = url
	}

	if err := s.DB.Create(ev).Error; err != nil {
		log.Printf("❌ [EVENTS] Failed to create event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create event"})
	}
	return c.Status(fiber.StatusCreated).JSON(ev)
}

// GetAllEvents lists events, optionally filtered by venue, status or date.
func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	q := s.DB.Model(&models.Event{})
	if venueID := c.Query("venue_id"); venueID != "" {
		q = q.Where("venue_id = ?", venueID)
	}
	if status := c.Query("status"); status != "" {
		if status == models.StatusScheduled {
			q = q.Where("game_status IS NULL OR game_status = ?", status)
		} else {
			q = q.Where("game_status = ?", status)
		}
	}
	if from := c.Query("from"); from != "" {
		q = q.Where("date >= ?", from)
	}

	var events []models.Event
	if err := q.Order("date, start_time").Limit(c.QueryInt("limit", 50)).Offset(c.QueryInt("offset", 0)).Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch events"})
	}
	return c.JSON(events)
}

func (s *EventService) GetEventByID(c *fiber.Ctx) error {
	var ev models.Event
	if err := s.DB.Preload("Participants").First(&ev, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(ev)
}

// JoinEvent registers the current user on the event. Joining twice is a
// no-op thanks to the composite unique index + DoNothing upsert.
func (s *EventService) JoinEvent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var ev models.Event
	if err := s.DB.First(&ev, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if ev.CancelledAt != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "event is cancelled"})
	}
	if ev.GameStatus != nil && *ev.GameStatus == models.StatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "event already ended"})
	}

	participant := models.EventParticipant{
		ID:             uuid.NewString(),
		EventID:        ev.ID,
		ExternalUserID: userID,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&participant).Error; err != nil {
		log.Printf("❌ [EVENTS] Failed to join event %s: %v", ev.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to join event"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"event_id": ev.ID, "external_user_id": userID})
}

func (s *EventService) LeaveEvent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}
	res := s.DB.Where("event_id = ? AND external_user_id = ?", c.Params("id"), userID).
		Delete(&models.EventParticipant{})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to leave event"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not a participant"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CancelEvent freezes the event: the sweeps and the rating notifier never
// touch it again. Only the organizer (or an admin) may cancel, and only once.
func (s *EventService) CancelEvent(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	var ev models.Event
	if err := s.DB.First(&ev, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if ev.CreatedBy != userID && !hasRole(c, "admin") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "only the organizer can cancel this event"})
	}

	res := s.DB.Model(&models.Event{}).
		Where("id = ? AND cancelled_at IS NULL", ev.ID).
		Update("cancelled_at", time.Now())
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to cancel event"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "event already cancelled"})
	}
	log.Printf("✅ [EVENTS] Event %s cancelled by %s", ev.ID, userID)
	return c.JSON(fiber.Map{"id": ev.ID, "cancelled": true})
}

// ApproveEvent marks the event eligible for rating prompts once it ends.
func (s *EventService) ApproveEvent(c *fiber.Ctx) error {
	if !hasRole(c, "admin") {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin role required"})
	}
	res := s.DB.Model(&models.Event{}).
		Where("id = ? AND cancelled_at IS NULL", c.Params("id")).
		Update("is_approved", true)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to approve event"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "event not found or cancelled"})
	}
	return c.JSON(fiber.Map{"id": c.Params("id"), "is_approved": true})
}

func hasRole(c *fiber.Ctx, role string) bool {
	roles, _ := c.Locals("user_roles").([]string)
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
