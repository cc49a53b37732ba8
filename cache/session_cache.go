package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"submerge/model"
)

// SessionCache stores hydrated sessions keyed by uid. A session lives as
// long as its token; logout deletes it.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a session cache over the shared Redis client.
func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionCache{client: RedisClient, ttl: ttl}
}

func sessionKey(uid int64) string {
	return fmt.Sprintf("session:%d", uid)
}

// Get returns the cached session, or nil on a miss.
func (c *SessionCache) Get(ctx context.Context, uid int64) (*model.Session, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, sessionKey(uid)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached session %d: %w", uid, err)
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode cached session %d: %w", uid, err)
	}
	return &session, nil
}

// Set stores a session with the cache TTL.
func (c *SessionCache) Set(ctx context.Context, session *model.Session) error {
	if c.client == nil || session == nil {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session %d: %w", session.UID, err)
	}
	return c.client.Set(ctx, sessionKey(session.UID), data, c.ttl).Err()
}

// Delete removes a session on logout.
func (c *SessionCache) Delete(ctx context.Context, uid int64) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, sessionKey(uid)).Err()
}
