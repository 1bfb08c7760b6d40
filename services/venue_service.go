package services

import (
	"errors"
	"log"
	"path/filepath"

	"event-lifecycle-system/models"
	"event-lifecycle-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type VenueService struct {
	DB *gorm.DB
}

func NewVenueService(db *gorm.DB) *VenueService {
	return &VenueService{DB: db}
}

func (s *VenueService) CreateVenue(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing user context"})
	}

	name := c.FormValue("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}

	venue := &models.Venue{
		ID:        uuid.NewString(),
		Name:      name,
		Slug:      slug.Make(name),
		Address:   c.FormValue("address"),
		City:      c.FormValue("city"),
		CreatedBy: userID,
	}

	if photo, err := c.FormFile("photo"); err == nil && photo.Size > 0 {
		ext := filepath.Ext(photo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "venues/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(photo, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload venue photo"})
		}
		venue.PhotoURL = url
	}

	if err := s.DB.Create(venue).Error; err != nil {
		log.Printf("❌ [VENUES] Failed to create venue: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create venue"})
	}
	return c.Status(fiber.StatusCreated).JSON(venue)
}

func (s *VenueService) GetAllVenues(c *fiber.Ctx) error {
	q := s.DB.Model(&models.Venue{})
	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}

	var venues []models.Venue
	if err := q.Order("name").Limit(c.QueryInt("limit", 50)).Offset(c.QueryInt("offset", 0)).Find(&venues).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch venues"})
	}
	return c.JSON(venues)
}

func (s *VenueService) GetVenueByID(c *fiber.Ctx) error {
	var venue models.Venue
	if err := s.DB.First(&venue, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "venue not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(venue)
}
