package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	BaseUUIDModel
	DisplayName string  `gorm:"type:text"               json:"displayName"`
	Email       *string `gorm:"type:text;uniqueIndex"   json:"email"`
	IsActive    bool    `gorm:"type:bool;default:true"  json:"isActive"`

	// IANA zone name used to resolve the user's local calendar day.
	Timezone string `gorm:"type:text;default:'UTC'" json:"timezone"`

	// Spotify account linkage. RefreshToken empty means the account is not
	// connected and queue builds report "no source".
	SpotifyUserID       *string    `gorm:"column:spotify_user_id;type:text;uniqueIndex" json:"-"`
	SpotifyRefreshToken string     `gorm:"column:spotify_refresh_token;type:text"       json:"-"`
	LastLoginAt         *time.Time `gorm:"type:timestamp"                               json:"lastLoginAt,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Timezone == "" {
		u.Timezone = "UTC"
	}
	return nil
}

// Location resolves the user's timezone, falling back to UTC when the stored
// zone name is invalid.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalDay truncates now to the user's local calendar day, normalized to a
// UTC date value so it matches the date column.
func (u *User) LocalDay(now time.Time) time.Time {
	local := now.In(u.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
