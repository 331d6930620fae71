package repositories

import (
	"context"
	"time"
	"tunedex/internal/database"
	"tunedex/internal/logger"
	. "tunedex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_PREFIX = "users"
	USER_CACHE_EXPIRY = 1 * time.Hour
)

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*User, error)
	GetBySpotifyUserID(ctx context.Context, tx *gorm.DB, spotifyUserID string) (*User, error)
	GetLinkedUsers(ctx context.Context, tx *gorm.DB) ([]*User, error)
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	ClearUserCache(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		cache: db.Cache.User,
		log:   logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*User, error) {
	log := r.log.Function("GetByID")

	var cached *User
	found, err := database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get user from cache", "userID", id, "error", err)
	}

	if found {
		return cached, nil
	}

	user, err := gorm.G[*User](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get user", err, "userID", id)
	}

	err = database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		Set()
	if err != nil {
		log.Warn("failed to set user in cache", "userID", id, "error", err)
	}

	return user, nil
}

func (r *userRepository) GetBySpotifyUserID(
	ctx context.Context,
	tx *gorm.DB,
	spotifyUserID string,
) (*User, error) {
	log := r.log.Function("GetBySpotifyUserID")

	user, err := gorm.G[*User](tx).Where("spotify_user_id = ?", spotifyUserID).First(ctx)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get user by spotify id", err, "spotifyUserID", spotifyUserID)
	}

	return user, nil
}

func (r *userRepository) GetLinkedUsers(ctx context.Context, tx *gorm.DB) ([]*User, error) {
	log := r.log.Function("GetLinkedUsers")

	users, err := gorm.G[*User](tx).
		Where("is_active = ? AND spotify_refresh_token <> ''", true).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to get linked users", err)
	}

	return users, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *User) error {
	log := r.log.Function("Update")

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := r.ClearUserCache(ctx, user.ID); err != nil {
		log.Warn("failed to clear user cache", "userID", user.ID, "error", err)
	}

	return nil
}

func (r *userRepository) ClearUserCache(ctx context.Context, id uuid.UUID) error {
	return database.NewCacheBuilder(r.cache, id).
		WithContext(ctx).
		WithHash(USER_CACHE_PREFIX).
		Delete()
}
