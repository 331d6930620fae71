package handlers

import (
	"errors"
	"tunedex/internal/app"
	queueController "tunedex/internal/controllers/queue"
	"tunedex/internal/handlers/middleware"
	"tunedex/internal/logger"
	"tunedex/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type QueueHandler struct {
	Handler
	queueController queueController.QueueControllerInterface
	sessionService  *services.SessionService
}

func NewQueueHandler(app app.App, router fiber.Router) *QueueHandler {
	log := logger.New("handlers").File("queue_handler")
	return &QueueHandler{
		queueController: app.Controllers.Queue,
		sessionService:  app.Services.Session,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *QueueHandler) Register() {
	queue := h.router.Group("/queue", h.middleware.RequireAuth(h.sessionService))
	queue.Post("/today", h.ensureToday)
	queue.Get("/today", h.getToday)
	queue.Post("/items/:id/rate", h.rateItem)
	queue.Post("/items/:id/skip", h.skipItem)
}

func (h *QueueHandler) ensureToday(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	result, err := h.queueController.EnsureToday(c.UserContext(), user)
	if err != nil {
		return queueError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *QueueHandler) getToday(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	result, err := h.queueController.GetToday(c.UserContext(), user)
	if err != nil {
		return queueError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

type rateRequest struct {
	Score int `json:"score"`
}

func (h *QueueHandler) rateItem(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid queue item ID",
		})
	}

	var req rateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.queueController.Rate(c.UserContext(), user, itemID, req.Score)
	if err != nil {
		return queueError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *QueueHandler) skipItem(c *fiber.Ctx) error {
	user := middleware.GetUser(c)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid queue item ID",
		})
	}

	result, err := h.queueController.Skip(c.UserContext(), user, itemID)
	if err != nil {
		return queueError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// queueError maps the service outcome taxonomy to distinct HTTP responses.
// NoCredential and BuildFailed stay separate so the client can offer
// "connect" vs "retry" remediation.
func queueError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNoCredential):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "no_credential",
			"message": "Connect a Spotify account to build your daily queue",
		})
	case errors.Is(err, services.ErrBuildFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "build_failed",
			"message": "Could not build today's queue, try again",
		})
	case errors.Is(err, services.ErrInvalidScore):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid_score",
			"message": "Score must be between 1 and 10",
		})
	case errors.Is(err, services.ErrMutationFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "mutation_failed",
			"message": "Could not save your rating, try again",
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not_found",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal_error",
		})
	}
}
