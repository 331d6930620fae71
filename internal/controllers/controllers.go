package controllers

import (
	"tunedex/internal/database"
	"tunedex/internal/repositories"
	"tunedex/internal/services"

	playlistController "tunedex/internal/controllers/playlist"
	queueController "tunedex/internal/controllers/queue"
	tasteController "tunedex/internal/controllers/taste"
)

type Controllers struct {
	Queue    queueController.QueueControllerInterface
	Playlist playlistController.PlaylistControllerInterface
	Taste    tasteController.TasteControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	db database.DB,
) Controllers {
	return Controllers{
		Queue:    queueController.New(repos, services, db),
		Playlist: playlistController.New(repos, db),
		Taste:    tasteController.New(services),
	}
}
