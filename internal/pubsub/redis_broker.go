package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	redisModels "coffeeRelay/internal/models/redis"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker shares room emissions between relay processes over one Redis
// pub/sub channel.
type RedisBroker struct {
	redis   *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBroker(client *redis.Client, channel string, logger *zap.Logger) *RedisBroker {
	if channel == "" {
		channel = redisModels.REDIS_CHANNEL_ROOMS
	}
	return &RedisBroker{
		redis:   client,
		channel: channel,
		logger:  logger,
	}
}

func (rb *RedisBroker) Publish(ctx context.Context, message redisModels.RedisPublishedMessage) error {
	jsonMessage, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal published message: %w", err)
	}
	return rb.redis.Publish(ctx, rb.channel, jsonMessage).Err()
}

// Subscribe confirms the subscription before returning, then hands every
// message to handler from a single goroutine until the returned closer is
// closed.
func (rb *RedisBroker) Subscribe(ctx context.Context, handler func(redisModels.RedisPublishedMessage)) (io.Closer, error) {
	rb.logger.Info("subscribing to redis channel", zap.String("channel", rb.channel))
	pubsub := rb.redis.Subscribe(ctx, rb.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", rb.channel, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var message redisModels.RedisPublishedMessage
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				rb.logger.Warn("error unmarshalling redis message", zap.Error(err))
				continue
			}
			handler(message)
		}
		rb.logger.Info("redis subscription closed", zap.String("channel", rb.channel))
	}()

	return pubsub, nil
}
