package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// BarCache holds recently fetched bar windows keyed by symbol
type BarCache interface {
	// Get returns the cached bars and whether the entry was present and fresh
	Get(ctx context.Context, symbol string) ([]models.Bar, bool, error)
	// Set stores bars for the cache TTL
	Set(ctx context.Context, symbol string, bars []models.Bar) error
	// Delete drops a symbol's entry
	Delete(ctx context.Context, symbol string) error
}

type memoryEntry struct {
	bars    []models.Bar
	expires time.Time
}

// MemoryCache is an in-process BarCache with per-entry expiry
type MemoryCache struct {
	ttl     time.Duration
	entries map[string]memoryEntry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns a copy of a fresh entry
func (c *MemoryCache) Get(ctx context.Context, symbol string) ([]models.Bar, bool, error) {
	c.mu.RLock()
	entry, exists := c.entries[symbol]
	c.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		// the entry may have been refreshed meanwhile
		if current, ok := c.entries[symbol]; ok && !c.now().Before(current.expires) {
			delete(c.entries, symbol)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	out := make([]models.Bar, len(entry.bars))
	copy(out, entry.bars)
	return out, true, nil
}

// Set stores a copy of bars
func (c *MemoryCache) Set(ctx context.Context, symbol string, bars []models.Bar) error {
	stored := make([]models.Bar, len(bars))
	copy(stored, bars)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[symbol] = memoryEntry{
		bars:    stored,
		expires: c.now().Add(c.ttl),
	}
	return nil
}

// Delete drops a symbol's entry
func (c *MemoryCache) Delete(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, symbol)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
