package services

import (
	"log"

	"event-lifecycle-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// GetMyNotifications returns the current user's fan-out rows, pinned first,
// then newest first.
func (s *NotificationService) GetMyNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	q := s.DB.Preload("Notification").Where("external_user_id = ?", userID)
	if c.QueryBool("unread") {
		q = q.Where("is_read = ?", false)
	}

	var rows []models.UserNotification
	if err := q.Order("pinned DESC, created_at DESC").
		Limit(c.QueryInt("limit", 50)).
		Offset(c.QueryInt("offset", 0)).
		Find(&rows).Error; err != nil {
		log.Printf("❌ [NOTIFICATIONS] Failed to list for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch notifications"})
	}
	return c.JSON(rows)
}

// MarkRead flips is_read on one of the user's own rows.
func (s *NotificationService) MarkRead(c *fiber.Ctx) error {
	return s.updateOwn(c, map[string]interface{}{"is_read": true})
}

// TogglePin pins or unpins one of the user's own rows.
func (s *NotificationService) TogglePin(c *fiber.Ctx) error {
	var body struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	return s.updateOwn(c, map[string]interface{}{"pinned": body.Pinned})
}

// SetActionState records the user's interaction with an actionable prompt.
func (s *NotificationService) SetActionState(c *fiber.Ctx) error {
	var body struct {
		ActionState string `json:"action_state"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	switch body.ActionState {
	case models.ActionStatePending, models.ActionStateDone, models.ActionStateDismissed:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid action_state"})
	}
	return s.updateOwn(c, map[string]interface{}{"action_state": body.ActionState})
}

// updateOwn guards every mutation by ownership: the row must belong to the
// requesting user.
func (s *NotificationService) updateOwn(c *fiber.Ctx, changes map[string]interface{}) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	res := s.DB.Model(&models.UserNotification{}).
		Where("id = ? AND external_user_id = ?", c.Params("id"), userID).
		Updates(changes)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update notification"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
