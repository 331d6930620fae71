package database

import (
	"tunedex/internal/logger"
	"tunedex/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		&models.User{},
		&models.Track{},
		&models.Rating{},
		&models.DailyQueue{},
		&models.DailyQueueItem{},
		&models.DailyPlaylist{},
		&models.DailyPlaylistItem{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_daily_queue_items_queue_position ON daily_queue_items(queue_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_daily_playlist_items_playlist_position ON daily_playlist_items(playlist_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_ratings_user_rated_at ON ratings(user_id, rated_at DESC)",
	}

	for _, index := range indexes {
		if err := db.SQL.Exec(index).Error; err != nil {
			log.Error("Failed to create index", "index", index, "error", err)
			return err
		}
	}

	log.Info("Additional indexes created successfully")
	return nil
}
