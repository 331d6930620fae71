package handlers

import (
	"errors"
	"tunedex/internal/app"
	playlistController "tunedex/internal/controllers/playlist"
	"tunedex/internal/handlers/middleware"
	"tunedex/internal/logger"
	"tunedex/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PlaylistHandler struct {
	Handler
	playlistController playlistController.PlaylistControllerInterface
	sessionService     *services.SessionService
}

func NewPlaylistHandler(app app.App, router fiber.Router) *PlaylistHandler {
	log := logger.New("handlers").File("playlist_handler")
	return &PlaylistHandler{
		playlistController: app.Controllers.Playlist,
		sessionService:     app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PlaylistHandler) Register() {
	playlists := h.router.Group("/playlists", h.middleware.RequireAuth(h.sessionService))
	playlists.Get("/today", h.getToday)
}

// getToday serves the day's mood playlist: tracks the user scored 7+, best
// first. A completed day where nothing scored that high returns an empty
// item list, not a 404.
func (h *PlaylistHandler) getToday(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	playlist, err := h.playlistController.GetToday(c.UserContext(), user)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "No playlist yet, finish rating today's queue",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(playlist)
}
