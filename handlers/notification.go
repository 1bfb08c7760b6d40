// handlers/notification.go
package handlers

import (
	"event-lifecycle-system/middleware"
	"event-lifecycle-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App, notificationService *services.NotificationService) {
	// All notification routes are per-user — user context required throughout
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/notifications", notificationService.GetMyNotifications)
	secured.Patch("/notifications/:id/read", notificationService.MarkRead)
	secured.Patch("/notifications/:id/pin", notificationService.TogglePin)
	secured.Patch("/notifications/:id/action", notificationService.SetActionState)
}
