package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"sensor-dashboard/models"
)

// HistoryKey is where the buffer snapshot lives in redis.
const HistoryKey = "sensor:history"

// KeyValueStore is the subset of *redis.Client the cache uses.
type KeyValueStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// HistoryCache keeps the rolling window in redis so a restarted process
// resumes with the same history instead of an empty chart.
type HistoryCache struct {
	client KeyValueStore
	key    string
	ttl    time.Duration
}

func NewHistoryCache(client KeyValueStore, ttl time.Duration) *HistoryCache {
	return &HistoryCache{
		client: client,
		key:    HistoryKey,
		ttl:    ttl,
	}
}

// Save overwrites the stored window with snapshot.
func (c *HistoryCache) Save(ctx context.Context, snapshot []models.Reading) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("history cache: marshal: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("history cache: set: %w", err)
	}
	return nil
}

// Restore returns the stored window, oldest first. A missing key is not an
// error and yields no readings.
func (c *HistoryCache) Restore(ctx context.Context) ([]models.Reading, error) {
	data, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history cache: get: %w", err)
	}

	var readings []models.Reading
	if err := json.Unmarshal([]byte(data), &readings); err != nil {
		return nil, fmt.Errorf("history cache: unmarshal: %w", err)
	}
	return readings, nil
}
