package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// WeatherStaleAfter is the default staleness window of a cached forecast.
const WeatherStaleAfter = time.Hour

type DailyForecast struct {
	Date          string  `json:"date"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
}

type Forecast struct {
	Location      string          `json:"location"`
	Temp          float64         `json:"temp"`
	Humidity      int             `json:"humidity"`
	WindSpeed     float64         `json:"windSpeed"`
	Precipitation float64         `json:"precipitation"`
	UVIndex       string          `json:"uvIndex"`
	Daily         []DailyForecast `json:"daily"`
}

type WeatherCacheEntry struct {
	Location    string         `gorm:"primaryKey;size:128"`
	Data        datatypes.JSON `gorm:"not null"`
	LastUpdated time.Time      `gorm:"not null"`
}

func (WeatherCacheEntry) TableName() string { return "weather_cache" }

// WeatherCache maps a location to a forecast. Get reports ok=false for a
// missing or stale entry.
type WeatherCache interface {
	Get(ctx context.Context, location string) (f *Forecast, ok bool, err error)
	Put(ctx context.Context, location string, f *Forecast) error
}

// LocationKey is the cache key for a user-entered location.
func LocationKey(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// ForecastProvider is the external forecast collaborator.
type ForecastProvider interface {
	Fetch(ctx context.Context, location string) (*Forecast, error)
}

// Classifier is the external leaf-disease classifier. Confidence is 0..100.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (label string, confidence float64, err error)
}

// FileStore persists uploaded images and returns a path reference.
type FileStore interface {
	Save(ctx context.Context, data []byte, username string) (string, error)
	// Remove deletes one file returned by Save; a missing file is not an error.
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, username string) error
}
