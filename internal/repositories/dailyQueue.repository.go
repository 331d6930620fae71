package repositories

import (
	"context"
	"fmt"
	"time"
	"tunedex/internal/database"
	"tunedex/internal/logger"
	. "tunedex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DAILY_QUEUE_CACHE_PREFIX = "daily_queues"
	DAILY_QUEUE_CACHE_EXPIRY = 24 * time.Hour
)

type DailyQueueRepository interface {
	GetByUserAndDate(
		ctx context.Context,
		tx *gorm.DB,
		userID uuid.UUID,
		date time.Time,
	) (*DailyQueue, error)
	GetByID(ctx context.Context, tx *gorm.DB, queueID uuid.UUID) (*DailyQueue, error)
	GetItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*DailyQueueItem, error)
	Create(ctx context.Context, tx *gorm.DB, queue *DailyQueue) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*DailyQueueItem) error
	SetItemScore(
		ctx context.Context,
		tx *gorm.DB,
		itemID uuid.UUID,
		score int,
		ratedAt time.Time,
	) (int, error)
	SetItemSkipped(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (int, error)
	Complete(
		ctx context.Context,
		tx *gorm.DB,
		queueID uuid.UUID,
		mood string,
		completedAt time.Time,
	) (bool, error)
	ClearQueueCache(ctx context.Context, userID uuid.UUID, date time.Time) error
}

type dailyQueueRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewDailyQueueRepository(cache database.CacheClient) DailyQueueRepository {
	return &dailyQueueRepository{
		cache: cache,
		log:   logger.New("dailyQueueRepository"),
	}
}

func queueCacheKey(userID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s:%s", userID, date.Format("2006-01-02"))
}

func (r *dailyQueueRepository) GetByUserAndDate(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	date time.Time,
) (*DailyQueue, error) {
	log := r.log.Function("GetByUserAndDate")

	var cached *DailyQueue
	found, err := database.NewCacheBuilder(r.cache, queueCacheKey(userID, date)).
		WithContext(ctx).
		WithHash(DAILY_QUEUE_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get daily queue from cache", "userID", userID, "error", err)
	}

	if found {
		return cached, nil
	}

	queue, err := gorm.G[*DailyQueue](tx).
		Preload("Items", func(db gorm.PreloadBuilder) error {
			db.Order("position ASC")
			return nil
		}).
		Preload("Items.Track", nil).
		Where(DailyQueue{UserID: userID}).
		Where("date = ?", date).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get daily queue", err, "userID", userID)
	}

	err = database.NewCacheBuilder(r.cache, queueCacheKey(userID, date)).
		WithContext(ctx).
		WithHash(DAILY_QUEUE_CACHE_PREFIX).
		WithStruct(queue).
		WithTTL(DAILY_QUEUE_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to set daily queue in cache", "userID", userID, "error", err)
	}

	return queue, nil
}

func (r *dailyQueueRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
) (*DailyQueue, error) {
	log := r.log.Function("GetByID")

	queue, err := gorm.G[*DailyQueue](tx).
		Preload("Items", func(db gorm.PreloadBuilder) error {
			db.Order("position ASC")
			return nil
		}).
		Preload("Items.Track", nil).
		Where("id = ?", queueID).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get daily queue by id", err, "queueID", queueID)
	}

	return queue, nil
}

func (r *dailyQueueRepository) GetItem(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
) (*DailyQueueItem, error) {
	log := r.log.Function("GetItem")

	item, err := gorm.G[*DailyQueueItem](tx).
		Preload("Track", nil).
		Where("id = ?", itemID).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get queue item", err, "itemID", itemID)
	}

	return item, nil
}

func (r *dailyQueueRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	queue *DailyQueue,
) error {
	log := r.log.Function("Create")

	err := gorm.G[DailyQueue](tx).Create(ctx, queue)
	if err != nil {
		// Duplicate key means a concurrent build won the (user, date) race;
		// the caller falls back to re-reading the winner.
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return log.Err("failed to create daily queue", err, "userID", queue.UserID)
	}

	return nil
}

func (r *dailyQueueRepository) CreateItems(
	ctx context.Context,
	tx *gorm.DB,
	items []*DailyQueueItem,
) error {
	log := r.log.Function("CreateItems")

	if len(items) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return log.Err("failed to create queue items", err, "count", len(items))
	}

	return nil
}

// SetItemScore resolves a pending item with a score. The resolution-state
// guard makes the first resolution final: an already scored or skipped item
// matches zero rows.
func (r *dailyQueueRepository) SetItemScore(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
	score int,
	ratedAt time.Time,
) (int, error) {
	log := r.log.Function("SetItemScore")

	rows, err := gorm.G[DailyQueueItem](tx).
		Where("id = ? AND score IS NULL AND skipped = ?", itemID, false).
		Updates(ctx, DailyQueueItem{Score: &score, RatedAt: &ratedAt})
	if err != nil {
		return 0, log.Err("failed to set item score", err, "itemID", itemID)
	}

	return rows, nil
}

func (r *dailyQueueRepository) SetItemSkipped(
	ctx context.Context,
	tx *gorm.DB,
	itemID uuid.UUID,
) (int, error) {
	log := r.log.Function("SetItemSkipped")

	rows, err := gorm.G[DailyQueueItem](tx).
		Where("id = ? AND score IS NULL AND skipped = ?", itemID, false).
		Update(ctx, "skipped", true)
	if err != nil {
		return 0, log.Err("failed to set item skipped", err, "itemID", itemID)
	}

	return rows, nil
}

// Complete persists the mood and completion timestamp. The completed_at IS
// NULL guard makes the transition idempotent under the completion race: only
// one caller observes won=true.
func (r *dailyQueueRepository) Complete(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
	mood string,
	completedAt time.Time,
) (bool, error) {
	log := r.log.Function("Complete")

	result := tx.WithContext(ctx).Model(&DailyQueue{}).
		Where("id = ? AND completed_at IS NULL", queueID).
		Updates(map[string]any{"mood": mood, "completed_at": completedAt})
	if result.Error != nil {
		return false, log.Err("failed to complete queue", result.Error, "queueID", queueID)
	}

	return result.RowsAffected > 0, nil
}

func (r *dailyQueueRepository) ClearQueueCache(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) error {
	return database.NewCacheBuilder(r.cache, queueCacheKey(userID, date)).
		WithContext(ctx).
		WithHash(DAILY_QUEUE_CACHE_PREFIX).
		Delete()
}
