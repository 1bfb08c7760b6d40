// handlers/event.go
package handlers

import (
	"event-lifecycle-system/middleware"
	"event-lifecycle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/events", eventService.GetAllEvents)
	app.Get("/events/:id", eventService.GetEventByID)

	// 🔐 Secured routes — require user context (userID, roles), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/events", eventService.CreateEvent)
	secured.Post("/events/:id/participants", eventService.JoinEvent)
	secured.Delete("/events/:id/participants", eventService.LeaveEvent)
	secured.Post("/events/:id/cancel", eventService.CancelEvent)

	// Admin-only: approval gates rating prompts
	secured.Post("/s/admin/events/:id/approve", eventService.ApproveEvent)
}
