package notification

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
)

// StreamField is the stream entry field holding the JSON event
const StreamField = "signal"

// RedisNotifier publishes events as JSON on a pub/sub channel.
// When a stream is set the event is also appended there, so late consumers can replay it.
type RedisNotifier struct {
	redis   storage.Publisher
	channel string
	stream  string
}

// NewRedisNotifier creates a Redis notifier; stream may be empty
func NewRedisNotifier(redis storage.Publisher, channel, stream string) *RedisNotifier {
	return &RedisNotifier{
		redis:   redis,
		channel: channel,
		stream:  stream,
	}
}

// Name returns the backend name
func (r *RedisNotifier) Name() string {
	return "redis"
}

// Send publishes the event
func (r *RedisNotifier) Send(ctx context.Context, event models.SignalEvent) error {
	if err := r.redis.Publish(ctx, r.channel, event); err != nil {
		return fmt.Errorf("redis: publish to %s: %w", r.channel, err)
	}
	if r.stream != "" {
		if _, err := r.redis.AppendStream(ctx, r.stream, StreamField, event); err != nil {
			return fmt.Errorf("redis: append to %s: %w", r.stream, err)
		}
	}
	return nil
}
