package repositories

import (
	"context"
	"tunedex/internal/logger"
	. "tunedex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackRepository interface {
	UpsertBySpotifyID(ctx context.Context, tx *gorm.DB, tracks []*Track) error
	GetBySpotifyIDs(ctx context.Context, tx *gorm.DB, spotifyIDs []string) (map[string]*Track, error)
}

type trackRepository struct {
	log logger.Logger
}

func NewTrackRepository() TrackRepository {
	return &trackRepository{
		log: logger.New("trackRepository"),
	}
}

// UpsertBySpotifyID inserts or refreshes catalog rows keyed by the external
// track ID. The catalog is a shared idempotent cache, so conflicts update
// metadata (artwork, preview URL, tags) rather than erroring.
func (r *trackRepository) UpsertBySpotifyID(
	ctx context.Context,
	tx *gorm.DB,
	tracks []*Track,
) error {
	log := r.log.Function("UpsertBySpotifyID")

	if len(tracks) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "spotify_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "artists", "artwork_url", "preview_url", "genre_tags", "updated_at",
		}),
	}).Create(&tracks).Error
	if err != nil {
		return log.Err("failed to upsert tracks", err, "count", len(tracks))
	}

	return nil
}

// GetBySpotifyIDs re-reads catalog rows after an upsert to obtain internal
// IDs; upserts are not guaranteed to return rows on all backends.
func (r *trackRepository) GetBySpotifyIDs(
	ctx context.Context,
	tx *gorm.DB,
	spotifyIDs []string,
) (map[string]*Track, error) {
	log := r.log.Function("GetBySpotifyIDs")

	if len(spotifyIDs) == 0 {
		return map[string]*Track{}, nil
	}

	tracks, err := gorm.G[*Track](tx).Where("spotify_id IN ?", spotifyIDs).Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get tracks by spotify ids", err, "count", len(spotifyIDs))
	}

	result := make(map[string]*Track, len(tracks))
	for _, track := range tracks {
		result[track.SpotifyID] = track
	}

	return result, nil
}
