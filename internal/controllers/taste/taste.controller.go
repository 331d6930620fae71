package tasteController

import (
	"context"
	"tunedex/internal/services"
	"tunedex/internal/taste"

	. "tunedex/internal/models"
)

type TasteControllerInterface interface {
	TopArtists(ctx context.Context, user *User) ([]taste.Entity, error)
	TopGenres(ctx context.Context, user *User) ([]taste.Entity, error)
}

type TasteController struct {
	tasteService *services.TasteService
}

func New(svcs services.Service) TasteControllerInterface {
	return &TasteController{
		tasteService: svcs.Taste,
	}
}

func (c *TasteController) TopArtists(ctx context.Context, user *User) ([]taste.Entity, error) {
	return c.tasteService.TopArtists(ctx, user.ID)
}

func (c *TasteController) TopGenres(ctx context.Context, user *User) ([]taste.Entity, error) {
	return c.tasteService.TopGenres(ctx, user.ID)
}
