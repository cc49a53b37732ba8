package cache

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// postsChangedChannel carries change notifications for the posts collection.
// Writers publish after every post mutation; the feed synchronizer treats
// each message as a snapshot trigger.
const postsChangedChannel = "posts:changed"

// PublishPostsChanged signals that the posts collection changed.
func PublishPostsChanged(ctx context.Context, reason string) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Publish(ctx, postsChangedChannel, reason).Err()
}

// SubscribePostsChanged subscribes to post change notifications. The caller
// owns the returned subscription and must close it.
func SubscribePostsChanged(ctx context.Context) *redis.PubSub {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Subscribe(ctx, postsChangedChannel)
}
