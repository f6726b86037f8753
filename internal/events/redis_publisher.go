package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel events are forwarded on.
const DefaultChannel = "tickets.events"

// redisDispatcher decorates an in-process dispatcher, forwarding every
// published event as JSON on a Redis channel for out-of-process consumers.
// Local subscribers are served regardless of Redis availability.
type redisDispatcher struct {
	inner   Dispatcher
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisDispatcher wraps inner with Redis pub/sub forwarding. An empty
// channel falls back to DefaultChannel.
func NewRedisDispatcher(inner Dispatcher, client *redis.Client, channel string, logger *zap.Logger) Dispatcher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &redisDispatcher{inner: inner, client: client, channel: channel, logger: logger}
}

func (d *redisDispatcher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Warn("event marshal failed", zap.String("event_id", event.ID), zap.Error(err))
		return d.inner.Publish(ctx, event)
	}
	if err := d.client.Publish(ctx, d.channel, payload).Err(); err != nil {
		d.logger.Warn("redis publish failed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return d.inner.Publish(ctx, event)
}

func (d *redisDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.inner.Subscribe(eventType, handler)
}
