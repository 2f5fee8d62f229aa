package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MockRedisClient keeps keys, channels and streams in memory.
// The *Err fields make the matching operations fail.
type MockRedisClient struct {
	mu sync.Mutex

	Data       map[string]string
	TTLs       map[string]time.Duration
	StreamData []StreamMessage
	PubSubData []PubSubMessage

	PublishErr   error
	GetErr       error
	SetErr       error
	SubscribeErr error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		Data: make(map[string]string),
		TTLs: make(map[string]time.Duration),
	}
}

func (m *MockRedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SetErr != nil {
		return m.SetErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.Data[key] = string(data)
	m.TTLs[key] = ttl
	return nil
}

func (m *MockRedisClient) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return false, m.GetErr
	}
	value, ok := m.Data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(value), dest)
}

func (m *MockRedisClient) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Data, key)
	delete(m.TTLs, key)
	return nil
}

func (m *MockRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishErr != nil {
		return m.PublishErr
	}
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	m.PubSubData = append(m.PubSubData, PubSubMessage{Channel: channel, Message: string(data)})
	return nil
}

// AppendStream numbers entries "<n>-0" in append order
func (m *MockRedisClient) AppendStream(ctx context.Context, stream, field string, value interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishErr != nil {
		return "", m.PublishErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	id := fmt.Sprintf("%d-0", len(m.StreamData)+1)
	m.StreamData = append(m.StreamData, StreamMessage{
		ID:     id,
		Stream: stream,
		Values: map[string]string{field: string(data)},
	})
	return id, nil
}

func (m *MockRedisClient) ReadStream(ctx context.Context, stream string, count int64) ([]StreamMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var matched []StreamMessage
	for _, msg := range m.StreamData {
		if msg.Stream == stream {
			matched = append(matched, msg)
		}
	}
	if count > 0 && int64(len(matched)) > count {
		matched = matched[int64(len(matched))-count:]
	}
	return matched, nil
}

// Subscribe replays the recorded messages for the channels, then closes
func (m *MockRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan PubSubMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SubscribeErr != nil {
		return nil, m.SubscribeErr
	}
	wanted := make(map[string]bool, len(channels))
	for _, c := range channels {
		wanted[c] = true
	}
	ch := make(chan PubSubMessage, len(m.PubSubData))
	for _, msg := range m.PubSubData {
		if wanted[msg.Channel] {
			ch <- msg
		}
	}
	close(ch)
	return ch, nil
}

// Published returns a copy of the recorded pub/sub messages
func (m *MockRedisClient) Published() []PubSubMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PubSubMessage(nil), m.PubSubData...)
}

// Streamed returns a copy of the recorded stream entries
func (m *MockRedisClient) Streamed() []StreamMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]StreamMessage(nil), m.StreamData...)
}

func (m *MockRedisClient) Close() error {
	return nil
}
