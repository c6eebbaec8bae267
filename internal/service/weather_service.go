package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"agro-advisor/internal/domain"
)

// WeatherService reads forecasts through the cache and refreshes misses from
// the provider. Concurrent misses for one location share a single fetch.
type WeatherService struct {
	cache    domain.WeatherCache
	provider domain.ForecastProvider
	log      *zap.Logger
	sf       singleflight.Group

	// FetchTimeout bounds one shared provider fetch.
	FetchTimeout time.Duration
}

const defaultFetchTimeout = 15 * time.Second

func NewWeatherService(cache domain.WeatherCache, provider domain.ForecastProvider, log *zap.Logger) *WeatherService {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeatherService{cache: cache, provider: provider, log: log, FetchTimeout: defaultFetchTimeout}
}

// Forecast returns the forecast for location and whether it came from cache.
// A cache read failure is treated as a miss; a cache write failure is logged.
func (s *WeatherService) Forecast(ctx context.Context, location string) (*domain.Forecast, bool, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, false, domain.ErrInvalidLocation
	}

	f, ok, err := s.cache.Get(ctx, location)
	if err != nil {
		s.log.Warn("weather cache read", zap.String("location", location), zap.Error(err))
	}
	if ok {
		weatherCacheTotal.WithLabelValues("hit").Inc()
		return f, true, nil
	}
	weatherCacheTotal.WithLabelValues("miss").Inc()

	v, err, _ := s.sf.Do(domain.LocationKey(location), func() (any, error) {
		// 共享的请求不随第一个调用方取消
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.FetchTimeout)
		defer cancel()
		f, err := s.provider.Fetch(fctx, location)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(fctx, location, f); err != nil {
			s.log.Warn("weather cache write", zap.String("location", location), zap.Error(err))
		}
		return f, nil
	})
	if err != nil {
		s.log.Error("forecast fetch", zap.String("location", location), zap.Error(err))
		return nil, false, err
	}
	return v.(*domain.Forecast), false, nil
}
