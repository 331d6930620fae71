package repositories

import (
	"tunedex/internal/database"
)

type Repository struct {
	User          UserRepository
	Track         TrackRepository
	Rating        RatingRepository
	DailyQueue    DailyQueueRepository
	DailyPlaylist DailyPlaylistRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:          NewUserRepository(db),
		Track:         NewTrackRepository(),
		Rating:        NewRatingRepository(),
		DailyQueue:    NewDailyQueueRepository(db.Cache.General),
		DailyPlaylist: NewDailyPlaylistRepository(),
	}
}
