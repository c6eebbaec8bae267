// Package forecast provides a synthetic 7-day forecast used until a real
// weather provider is configured.
package forecast

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"

	"agro-advisor/internal/domain"
)

const Days = 7

var uvLevels = []string{"Low", "Moderate", "High"}

// Mock generates a plausible forecast. Output is deterministic per location
// and calendar day so repeated fetches agree.
type Mock struct {
	Now func() time.Time
}

func NewMock() *Mock { return &Mock{Now: time.Now} }

var _ domain.ForecastProvider = (*Mock)(nil)

func (m *Mock) Fetch(ctx context.Context, location string) (*domain.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.Now()
	rng := rand.New(rand.NewPCG(seed(location), uint64(now.YearDay())))

	base := 15 + rng.Float64()*15
	f := &domain.Forecast{
		Location:  location,
		Temp:      round1(base),
		Humidity:  40 + rng.IntN(41),
		WindSpeed: round1(5 + rng.Float64()*20),
		UVIndex:   uvLevels[rng.IntN(len(uvLevels))],
		Daily:     make([]domain.DailyForecast, 0, Days),
	}
	for i := 0; i < Days; i++ {
		f.Daily = append(f.Daily, domain.DailyForecast{
			Date:          now.AddDate(0, 0, i).Format(domain.DateLayout),
			Temperature:   round1(base + rng.Float64()*10 - 5),
			Precipitation: float64(rng.IntN(31)),
		})
	}
	f.Precipitation = f.Daily[0].Precipitation
	return f, nil
}

func seed(location string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(domain.LocationKey(location)))
	return h.Sum64()
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
