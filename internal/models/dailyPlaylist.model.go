package models

import (
	"github.com/google/uuid"
)

// DailyPlaylist is the derived playlist for a completed queue. The unique
// queue index is the safety net for the completion race: a second materialize
// attempt fails its insert instead of duplicating the playlist.
type DailyPlaylist struct {
	BaseUUIDModel
	QueueID uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex" json:"queueId"`
	UserID  uuid.UUID           `gorm:"type:uuid;not null;index"       json:"userId"`
	Mood    string              `gorm:"type:varchar(20);not null"      json:"mood"`
	Items   []DailyPlaylistItem `gorm:"foreignKey:PlaylistID"          json:"items"`
}

type DailyPlaylistItem struct {
	BaseUUIDModel
	PlaylistID uuid.UUID `gorm:"type:uuid;not null;index" json:"playlistId"`
	TrackID    uuid.UUID `gorm:"type:uuid;not null"       json:"trackId"`
	Track      Track     `gorm:"foreignKey:TrackID"       json:"track"`
	Score      int       `gorm:"type:int;not null"        json:"score"`
	Position   int       `gorm:"type:int;not null"        json:"position"`
}
