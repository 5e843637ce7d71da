package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPresenceTTL = 24 * time.Hour

// RedisPresence counts live sockets per user across every relay process.
// A user is online while the counter is positive. The TTL bounds how long a
// crashed process can leave a stale count behind.
type RedisPresence struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisPresence(client *redis.Client, ttl time.Duration) *RedisPresence {
	if ttl <= 0 {
		ttl = defaultPresenceTTL
	}
	return &RedisPresence{
		redis: client,
		ttl:   ttl,
	}
}

func presenceKey(userID string) string {
	return fmt.Sprintf("user_online_sockets_%s", userID)
}

func lastSeenKey(userID string) string {
	return fmt.Sprintf("user_last_seen_%s", userID)
}

func (rp *RedisPresence) Connected(ctx context.Context, userID string) error {
	key := presenceKey(userID)
	pipe := rp.redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rp.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (rp *RedisPresence) Disconnected(ctx context.Context, userID string) error {
	key := presenceKey(userID)
	count, err := rp.redis.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count <= 0 {
		if err := rp.redis.Del(ctx, key).Err(); err != nil {
			return err
		}
	}
	return rp.redis.Set(ctx, lastSeenKey(userID), time.Now().UTC().Format(time.RFC3339), rp.ttl).Err()
}

func (rp *RedisPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	count, err := rp.redis.Get(ctx, presenceKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (rp *RedisPresence) LastSeen(ctx context.Context, userID string) (*time.Time, error) {
	value, err := rp.redis.Get(ctx, lastSeenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	lastSeen, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &lastSeen, nil
}
