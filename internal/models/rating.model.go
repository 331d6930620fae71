package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Rating is the permanent per-(user, track) rating history. Queue scoring
// upserts here on the (user_id, track_id) pair, so a later re-rating of the
// same track elsewhere in the app overwrites the historical score.
type Rating struct {
	BaseUUIDModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_track,composite:0" json:"userId"`
	TrackID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_user_track,composite:1" json:"trackId"`
	Track   Track     `gorm:"foreignKey:TrackID"                                                json:"track"`
	Score   int       `gorm:"type:int;not null"                                                 json:"score"`
	RatedAt time.Time `gorm:"not null"                                                          json:"ratedAt"`
}

func (r *Rating) BeforeSave(tx *gorm.DB) error {
	if r.Score < MinScore || r.Score > MaxScore {
		return gorm.ErrInvalidValue
	}
	return nil
}
