package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Track is the shared catalog row for an external (Spotify) track. Rows are
// upserted by external ID during queue builds, so repeated discovery refreshes
// metadata like preview URLs instead of erroring.
type Track struct {
	BaseUUIDModel
	SpotifyID  string                       `gorm:"column:spotify_id;type:text;not null;uniqueIndex" json:"spotifyId"`
	Title      string                       `gorm:"type:text;not null"                               json:"title"`
	Artists    datatypes.JSONSlice[string]  `gorm:"type:jsonb"                                       json:"artists"`
	ArtworkURL *string                      `gorm:"type:text"                                        json:"artworkUrl,omitempty"`
	PreviewURL *string                      `gorm:"type:text"                                        json:"previewUrl,omitempty"`
	GenreTags  datatypes.JSONSlice[string]  `gorm:"type:jsonb"                                       json:"genreTags"`
}

func (t *Track) BeforeSave(tx *gorm.DB) error {
	if t.SpotifyID == "" || t.Title == "" {
		return gorm.ErrInvalidValue
	}
	return nil
}

// PrimaryArtist returns the first credited artist, or "" for an untagged row.
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}
