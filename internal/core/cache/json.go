package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON returns ErrMiss for an absent key.
func GetJSON[T any](c *Cache, ctx context.Context, key string) (*T, error) {
	b, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decode[T](b)
}

func SetJSON(c *Cache, ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, b, ttl)
}

func decode[T any](b []byte) (*T, error) {
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
