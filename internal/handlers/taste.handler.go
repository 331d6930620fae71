package handlers

import (
	"tunedex/internal/app"
	tasteController "tunedex/internal/controllers/taste"
	"tunedex/internal/handlers/middleware"
	"tunedex/internal/logger"
	"tunedex/internal/services"

	"github.com/gofiber/fiber/v2"
)

type TasteHandler struct {
	Handler
	tasteController tasteController.TasteControllerInterface
	sessionService  *services.SessionService
}

func NewTasteHandler(app app.App, router fiber.Router) *TasteHandler {
	log := logger.New("handlers").File("taste_handler")
	return &TasteHandler{
		tasteController: app.Controllers.Taste,
		sessionService:  app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *TasteHandler) Register() {
	taste := h.router.Group("/taste", h.middleware.RequireAuth(h.sessionService))
	taste.Get("/artists", h.topArtists)
	taste.Get("/genres", h.topGenres)
}

func (h *TasteHandler) topArtists(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	entities, err := h.tasteController.TopArtists(c.UserContext(), user)
	if err != nil {
		h.log.Function("topArtists").Er("failed to rank artists", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"artists": entities,
	})
}

func (h *TasteHandler) topGenres(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	entities, err := h.tasteController.TopGenres(c.UserContext(), user)
	if err != nil {
		h.log.Function("topGenres").Er("failed to rank genres", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"genres": entities,
	})
}
