package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"submerge/model"
)

// ProfileCache keeps resolved author profiles so a feed snapshot does not hit
// the users table once per post.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a profile cache over the shared Redis client.
func NewProfileCache(ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{client: RedisClient, ttl: ttl}
}

func profileKey(uid int64) string {
	return fmt.Sprintf("profile:%d", uid)
}

// Get returns the cached profile, or nil on a miss.
func (c *ProfileCache) Get(ctx context.Context, uid int64) (*model.User, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, profileKey(uid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached profile %d: %w", uid, err)
	}
	var user model.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile %d: %w", uid, err)
	}
	return &user, nil
}

// Set stores a profile with the cache TTL.
func (c *ProfileCache) Set(ctx context.Context, user *model.User) error {
	if c.client == nil || user == nil {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal profile %d: %w", user.ID, err)
	}
	return c.client.Set(ctx, profileKey(user.ID), data, c.ttl).Err()
}

// Invalidate drops a cached profile, e.g. after a follow mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, uid int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, profileKey(uid)).Err()
}
