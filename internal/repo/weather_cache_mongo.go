package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agro-advisor/internal/domain"
)

const weatherCollection = "weather_cache"

type mongoWeather struct {
	Location    string          `bson:"_id"`
	Data        domain.Forecast `bson:"data"`
	LastUpdated int64           `bson:"last_updated"`
}

// MongoWeatherCache keeps one document per location.
type MongoWeatherCache struct {
	coll       *mongo.Collection
	StaleAfter time.Duration
	Now        func() time.Time
}

func NewMongoWeatherCache(db *mongo.Database, staleAfter time.Duration) *MongoWeatherCache {
	if staleAfter <= 0 {
		staleAfter = domain.WeatherStaleAfter
	}
	return &MongoWeatherCache{coll: db.Collection(weatherCollection), StaleAfter: staleAfter, Now: time.Now}
}

var _ domain.WeatherCache = (*MongoWeatherCache)(nil)

func (r *MongoWeatherCache) Get(ctx context.Context, location string) (*domain.Forecast, bool, error) {
	var doc mongoWeather
	err := r.coll.FindOne(ctx, bson.M{"_id": domain.LocationKey(location)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.Storage("read weather cache", fmt.Errorf("find forecast: %w", err))
	}
	if r.Now().Sub(time.UnixMilli(doc.LastUpdated)) >= r.StaleAfter {
		return nil, false, nil
	}
	return &doc.Data, true, nil
}

func (r *MongoWeatherCache) Put(ctx context.Context, location string, f *domain.Forecast) error {
	key := domain.LocationKey(location)
	doc := mongoWeather{Location: key, Data: *f, LastUpdated: r.Now().UnixMilli()}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return domain.Storage("write weather cache", fmt.Errorf("upsert forecast: %w", err))
	}
	return nil
}
