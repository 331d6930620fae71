package repositories

import (
	"context"
	"tunedex/internal/logger"
	. "tunedex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error
	GetUserRatings(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*Rating, error)
}

type ratingRepository struct {
	log logger.Logger
}

func NewRatingRepository() RatingRepository {
	return &ratingRepository{
		log: logger.New("ratingRepository"),
	}
}

// Upsert writes the permanent rating history keyed on (user, track), so
// re-rating the same track overwrites the historical score.
func (r *ratingRepository) Upsert(ctx context.Context, tx *gorm.DB, rating *Rating) error {
	log := r.log.Function("Upsert")

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "track_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "rated_at", "updated_at"}),
	}).Create(rating).Error
	if err != nil {
		return log.Err(
			"failed to upsert rating",
			err,
			"userID", rating.UserID,
			"trackID", rating.TrackID,
		)
	}

	return nil
}

func (r *ratingRepository) GetUserRatings(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
) ([]*Rating, error) {
	log := r.log.Function("GetUserRatings")

	ratings, err := gorm.G[*Rating](tx).
		Preload("Track", nil).
		Where("user_id = ?", userID).
		Order("rated_at ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get user ratings", err, "userID", userID)
	}

	return ratings, nil
}
