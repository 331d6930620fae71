package services

import (
	"context"
	"tunedex/internal/repositories"
	"tunedex/internal/taste"

	. "tunedex/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TasteService computes the ranked artist/genre summaries from the full
// rating history. Summaries are derived fresh on every read; they have no
// persisted lifecycle of their own.
type TasteService struct {
	ratingRepo repositories.RatingRepository
	db         *gorm.DB
	log        logger.Logger
}

func NewTasteService(repos repositories.Repository, db *gorm.DB) *TasteService {
	return &TasteService{
		ratingRepo: repos.Rating,
		db:         db,
		log:        logger.New("tasteService"),
	}
}

func (s *TasteService) TopArtists(ctx context.Context, userID uuid.UUID) ([]taste.Entity, error) {
	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	return taste.Top(taste.RankArtists(history), taste.TopArtists), nil
}

func (s *TasteService) TopGenres(ctx context.Context, userID uuid.UUID) ([]taste.Entity, error) {
	history, err := s.history(ctx, userID)
	if err != nil {
		return nil, err
	}

	return taste.Top(taste.RankGenres(history), taste.TopGenres), nil
}

func (s *TasteService) history(ctx context.Context, userID uuid.UUID) ([]taste.RatedTrack, error) {
	log := s.log.Function("history")

	ratings, err := s.ratingRepo.GetUserRatings(ctx, s.db, userID)
	if err != nil {
		return nil, log.Err("failed to load rating history", err, "userID", userID)
	}

	return ratedTracksFor(ratings), nil
}

func ratedTracksFor(ratings []*Rating) []taste.RatedTrack {
	history := make([]taste.RatedTrack, 0, len(ratings))
	for _, rating := range ratings {
		history = append(history, taste.RatedTrack{
			Score:      rating.Score,
			Artists:    rating.Track.Artists,
			Genres:     rating.Track.GenreTags,
			ArtworkURL: rating.Track.ArtworkURL,
		})
	}
	return history
}
