package playlistController

import (
	"context"
	"time"
	"tunedex/internal/database"
	"tunedex/internal/repositories"
	"tunedex/internal/services"

	. "tunedex/internal/models"

	"gorm.io/gorm"
)

type PlaylistControllerInterface interface {
	GetToday(ctx context.Context, user *User) (*DailyPlaylist, error)
}

type PlaylistController struct {
	queueRepo    repositories.DailyQueueRepository
	playlistRepo repositories.DailyPlaylistRepository
	db           database.DB
}

func New(repos repositories.Repository, db database.DB) PlaylistControllerInterface {
	return &PlaylistController{
		queueRepo:    repos.DailyQueue,
		playlistRepo: repos.DailyPlaylist,
		db:           db,
	}
}

// GetToday returns today's materialized playlist. "No playlist yet" is
// distinct from a playlist with zero items: an empty item list is a valid
// completed result.
func (c *PlaylistController) GetToday(ctx context.Context, user *User) (*DailyPlaylist, error) {
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

	playlist, err := c.playlistRepo.GetByQueueID(ctx, c.db.SQL, queue.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, services.ErrNotFound
		}
		return nil, err
	}

	return playlist, nil
}
