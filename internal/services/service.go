package services

import (
	"tunedex/config"
	"tunedex/internal/database"
	"tunedex/internal/repositories"
)

type Service struct {
	Transaction *TransactionService
	Session     *SessionService
	Spotify     *SpotifyService
	TagLookup   *TagLookupService
	Queue       *QueueService
	Playlist    *PlaylistService
	Completion  *CompletionService
	Rating      *RatingService
	Taste       *TasteService
	Scheduler   *SchedulerService
}

func New(db database.DB, config config.Config, repos repositories.Repository) Service {
	transactionService := NewTransactionService(db)
	sessionService := NewSessionService(config, db.Cache.Session)
	spotifyService := NewSpotifyService(config)
	tagLookupService := NewTagLookupService(config, db.Cache.ClientAPI)
	schedulerService := NewSchedulerService()

	playlistService := NewPlaylistService(repos)
	completionService := NewCompletionService(repos, playlistService, db.SQL)
	queueService := NewQueueService(
		repos,
		transactionService,
		spotifyService,
		tagLookupService,
		sessionService,
		db.SQL,
	)
	ratingService := NewRatingService(repos, completionService, transactionService, db.SQL)
	tasteService := NewTasteService(repos, db.SQL)

	return Service{
		Transaction: transactionService,
		Session:     sessionService,
		Spotify:     spotifyService,
		TagLookup:   tagLookupService,
		Queue:       queueService,
		Playlist:    playlistService,
		Completion:  completionService,
		Rating:      ratingService,
		Taste:       tasteService,
		Scheduler:   schedulerService,
	}
}
