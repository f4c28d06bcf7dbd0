package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Dashboard state refreshed by the poller
		api.Get("/traffic", handler.GetDashboard)

		// On-demand generators
		traffic := api.Group("/traffic")
		traffic.Get("/current", handler.GetCurrentTraffic)
		traffic.Get("/stats", handler.GetTrafficStats)
		traffic.Get("/history", handler.GetTrafficHistory)
		traffic.Get("/recorded", handler.GetRecordedTraffic)
		traffic.Get("/forecast", handler.GetForecast)
		traffic.Get("/route", handler.GetRoute)

		api.Get("/prediction/accuracy", handler.GetAccuracy)
	}
}

// ErrorHandler renders errors as a JSON envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
