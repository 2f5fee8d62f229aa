package storage

import (
	"context"
	"time"
)

// KeyValueStore holds JSON documents under expiring keys
type KeyValueStore interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// GetJSON decodes the value into dest and reports whether the key existed
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Publisher fans JSON messages out to live subscribers and to a replayable stream
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	// AppendStream stores value as JSON under field and returns the entry ID
	AppendStream(ctx context.Context, stream, field string, value interface{}) (string, error)
}

// Subscriber reads what a Publisher wrote
type Subscriber interface {
	// Subscribe delivers channel messages until ctx ends
	Subscribe(ctx context.Context, channels ...string) (<-chan PubSubMessage, error)
	// ReadStream returns up to count of the newest stream entries, oldest first
	ReadStream(ctx context.Context, stream string, count int64) ([]StreamMessage, error)
}

// RedisClient is the full set of Redis operations the monitor uses
type RedisClient interface {
	KeyValueStore
	Publisher
	Subscriber
	Close() error
}

// StreamMessage is one stream entry; Values maps field to JSON text
type StreamMessage struct {
	ID     string
	Stream string
	Values map[string]string
}

// PubSubMessage is one message received on a channel
type PubSubMessage struct {
	Channel string
	Message string
}
