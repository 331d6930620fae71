package repositories

import (
	"context"
	"tunedex/internal/logger"
	. "tunedex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DailyPlaylistRepository interface {
	GetByQueueID(ctx context.Context, tx *gorm.DB, queueID uuid.UUID) (*DailyPlaylist, error)
	Create(ctx context.Context, tx *gorm.DB, playlist *DailyPlaylist) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []*DailyPlaylistItem) error
}

type dailyPlaylistRepository struct {
	log logger.Logger
}

func NewDailyPlaylistRepository() DailyPlaylistRepository {
	return &dailyPlaylistRepository{
		log: logger.New("dailyPlaylistRepository"),
	}
}

func (r *dailyPlaylistRepository) GetByQueueID(
	ctx context.Context,
	tx *gorm.DB,
	queueID uuid.UUID,
) (*DailyPlaylist, error) {
	log := r.log.Function("GetByQueueID")

	playlist, err := gorm.G[*DailyPlaylist](tx).
		Preload("Items", func(db gorm.PreloadBuilder) error {
			db.Order("position ASC")
			return nil
		}).
		Preload("Items.Track", nil).
		Where("queue_id = ?", queueID).
		First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get playlist by queue", err, "queueID", queueID)
	}

	return playlist, nil
}

func (r *dailyPlaylistRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	playlist *DailyPlaylist,
) error {
	log := r.log.Function("Create")

	err := gorm.G[DailyPlaylist](tx).Create(ctx, playlist)
	if err != nil {
		// The unique queue index turns a materialize race into a duplicate
		// key error; callers treat it as "someone else already completed it".
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return log.Err("failed to create playlist", err, "queueID", playlist.QueueID)
	}

	return nil
}

func (r *dailyPlaylistRepository) CreateItems(
	ctx context.Context,
	tx *gorm.DB,
	items []*DailyPlaylistItem,
) error {
	log := r.log.Function("CreateItems")

	if len(items) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return log.Err("failed to create playlist items", err, "count", len(items))
	}

	return nil
}
