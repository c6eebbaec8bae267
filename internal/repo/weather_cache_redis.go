package repo

import (
	"context"
	"errors"
	"time"

	"agro-advisor/internal/core/cache"
	"agro-advisor/internal/domain"
)

const weatherKeyPrefix = "weather:"

type redisEntry struct {
	Forecast    domain.Forecast `json:"forecast"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// RedisWeatherCache keeps forecasts in redis. Keys expire with the staleness
// window; LastUpdated is checked as well so a clock-injected Now behaves like
// the table-backed cache.
type RedisWeatherCache struct {
	c          *cache.Cache
	StaleAfter time.Duration
	Now        func() time.Time
}

func NewRedisWeatherCache(c *cache.Cache, staleAfter time.Duration) *RedisWeatherCache {
	if staleAfter <= 0 {
		staleAfter = domain.WeatherStaleAfter
	}
	return &RedisWeatherCache{c: c, StaleAfter: staleAfter, Now: time.Now}
}

var _ domain.WeatherCache = (*RedisWeatherCache)(nil)

func (r *RedisWeatherCache) Get(ctx context.Context, location string) (*domain.Forecast, bool, error) {
	e, err := cache.GetJSON[redisEntry](r.c, ctx, weatherKeyPrefix+domain.LocationKey(location))
	if errors.Is(err, cache.ErrMiss) || (err == nil && e == nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.Storage("read weather cache", err)
	}
	if r.Now().Sub(e.LastUpdated) >= r.StaleAfter {
		return nil, false, nil
	}
	return &e.Forecast, true, nil
}

func (r *RedisWeatherCache) Put(ctx context.Context, location string, f *domain.Forecast) error {
	e := redisEntry{Forecast: *f, LastUpdated: r.Now()}
	if err := cache.SetJSON(r.c, ctx, weatherKeyPrefix+domain.LocationKey(location), e, r.StaleAfter); err != nil {
		return domain.Storage("write weather cache", err)
	}
	return nil
}
