package database

import (
	"gorm.io/gorm"

	"agro-advisor/internal/domain"
)

// Models lists every table owned by the relational store.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.CropRecord{},
		&domain.DetectionRecord{},
		&domain.WeatherCacheEntry{},
	}
}

func Migrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
