package handlers

import (
	"tunedex/internal/app"
	"tunedex/internal/handlers/middleware"
	"tunedex/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) (err error) {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewQueueHandler(*app, api).Register()
	NewPlaylistHandler(*app, api).Register()
	NewTasteHandler(*app, api).Register()

	return nil
}
