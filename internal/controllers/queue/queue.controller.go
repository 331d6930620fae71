package queueController

import (
	"context"
	"time"
	"tunedex/internal/database"
	"tunedex/internal/repositories"
	"tunedex/internal/services"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QueueWithStatus pairs the stored queue with its derived lifecycle state for
// the read endpoints.
type QueueWithStatus struct {
	Queue  *DailyQueue `json:"queue"`
	Status QueueStatus `json:"status"`
}

type QueueControllerInterface interface {
	EnsureToday(ctx context.Context, user *User) (*QueueWithStatus, error)
	GetToday(ctx context.Context, user *User) (*QueueWithStatus, error)
	Rate(ctx context.Context, user *User, itemID uuid.UUID, score int) (*QueueWithStatus, error)
	Skip(ctx context.Context, user *User, itemID uuid.UUID) (*QueueWithStatus, error)
}

type QueueController struct {
	queueRepo         repositories.DailyQueueRepository
	queueService      *services.QueueService
	ratingService     *services.RatingService
	completionService *services.CompletionService
	db                database.DB
}

func New(
	repos repositories.Repository,
	svcs services.Service,
	db database.DB,
) QueueControllerInterface {
	return &QueueController{
		queueRepo:         repos.DailyQueue,
		queueService:      svcs.Queue,
		ratingService:     svcs.Rating,
		completionService: svcs.Completion,
		db:                db,
	}
}

func (c *QueueController) EnsureToday(
	ctx context.Context,
	user *User,
) (*QueueWithStatus, error) {
	log := logger.New("queueController").TraceFromContext(ctx).Function("EnsureToday")

	queue, err := c.queueService.EnsureDailyQueue(ctx, user)
	if err != nil {
		return nil, err
	}

	status, err := c.completionService.Check(ctx, queue.ID)
	if err != nil {
		return nil, log.Err("failed to derive queue status", err, "queueID", queue.ID)
	}

	return &QueueWithStatus{Queue: queue, Status: status}, nil
}

func (c *QueueController) GetToday(
	ctx context.Context,
	user *User,
) (*QueueWithStatus, error) {
	log := logger.New("queueController").TraceFromContext(ctx).Function("GetToday")

	queue, err := c.todayQueue(ctx, user)
	if err != nil {
		return nil, err
	}

	status, err := c.completionService.Check(ctx, queue.ID)
	if err != nil {
		return nil, log.Err("failed to derive queue status", err, "queueID", queue.ID)
	}

	return &QueueWithStatus{Queue: queue, Status: status}, nil
}

func (c *QueueController) Rate(
	ctx context.Context,
	user *User,
	itemID uuid.UUID,
	score int,
) (*QueueWithStatus, error) {
	status, err := c.ratingService.Rate(ctx, user, itemID, score)
	if err != nil {
		return nil, err
	}

	return c.refreshed(ctx, user, status)
}

func (c *QueueController) Skip(
	ctx context.Context,
	user *User,
	itemID uuid.UUID,
) (*QueueWithStatus, error) {
	status, err := c.ratingService.Skip(ctx, user, itemID)
	if err != nil {
		return nil, err
	}

	return c.refreshed(ctx, user, status)
}

func (c *QueueController) todayQueue(ctx context.Context, user *User) (*DailyQueue, error) {
	queue, err := c.queueRepo.GetByUserAndDate(
		ctx,
		c.db.SQL,
		user.ID,
		user.LocalDay(time.Now()),
	)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, services.ErrNotFound
		}
		return nil, err
	}

	return queue, nil
}

func (c *QueueController) refreshed(
	ctx context.Context,
	user *User,
	status QueueStatus,
) (*QueueWithStatus, error) {
	queue, err := c.todayQueue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &QueueWithStatus{Queue: queue, Status: status}, nil
}
