package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"submerge/model"
)

const globalTracksKey = "tracks:global"

// TrackCache holds the deduplicated global track list between aggregation
// fetches so the search endpoint does not fan out per request.
type TrackCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTrackCache creates a track cache over the shared Redis client.
func NewTrackCache(ttl time.Duration) *TrackCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TrackCache{client: RedisClient, ttl: ttl}
}

// GetGlobal returns the cached global track list, or nil on a miss.
func (c *TrackCache) GetGlobal(ctx context.Context) ([]model.Track, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, globalTracksKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached track list: %w", err)
	}
	var tracks []model.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode cached track list: %w", err)
	}
	return tracks, nil
}

// SetGlobal stores the global track list with the cache TTL.
func (c *TrackCache) SetGlobal(ctx context.Context, tracks []model.Track) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal track list: %w", err)
	}
	return c.client.Set(ctx, globalTracksKey, data, c.ttl).Err()
}
