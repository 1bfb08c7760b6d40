// handlers/venue.go
package handlers

import (
	"event-lifecycle-system/middleware"
	"event-lifecycle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupVenueRoutes(app *fiber.App, venueService *services.VenueService) {
	app.Get("/venues", venueService.GetAllVenues)
	app.Get("/venues/:id", venueService.GetVenueByID)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/venues", venueService.CreateVenue)
}
