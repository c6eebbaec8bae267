package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agro-advisor/internal/domain"
)

// WeatherRepo is the weather_cache table. Entries older than StaleAfter read
// as a miss.
type WeatherRepo struct {
	db         *gorm.DB
	StaleAfter time.Duration
	Now        func() time.Time
}

func NewWeatherRepo(db *gorm.DB, staleAfter time.Duration) *WeatherRepo {
	if staleAfter <= 0 {
		staleAfter = domain.WeatherStaleAfter
	}
	return &WeatherRepo{db: db, StaleAfter: staleAfter, Now: time.Now}
}

var _ domain.WeatherCache = (*WeatherRepo)(nil)

func (r *WeatherRepo) Get(ctx context.Context, location string) (*domain.Forecast, bool, error) {
	var e domain.WeatherCacheEntry
	err := r.db.WithContext(ctx).First(&e, "location = ?", domain.LocationKey(location)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.Storage("read weather cache", err)
	}
	if r.Now().Sub(e.LastUpdated) >= r.StaleAfter {
		return nil, false, nil
	}
	var f domain.Forecast
	if err := json.Unmarshal(e.Data, &f); err != nil {
		// unreadable payload is refreshed like a stale one
		return nil, false, nil
	}
	return &f, true, nil
}

func (r *WeatherRepo) Put(ctx context.Context, location string, f *domain.Forecast) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	e := domain.WeatherCacheEntry{
		Location:    domain.LocationKey(location),
		Data:        b,
		LastUpdated: r.Now(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "last_updated"}),
	}).Create(&e).Error
	if err != nil {
		return domain.Storage("write weather cache", err)
	}
	return nil
}
