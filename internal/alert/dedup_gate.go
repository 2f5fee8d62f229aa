package alert

import (
	"sync"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// DedupGate remembers which (symbol, bar, kind) keys have already been reported.
// Keys never expire; the gate lives as long as the monitoring session that owns it.
type DedupGate struct {
	mu   sync.Mutex
	seen map[models.DedupKey]struct{}
}

// NewDedupGate creates an empty gate
func NewDedupGate() *DedupGate {
	return &DedupGate{
		seen: make(map[models.DedupKey]struct{}),
	}
}

// Accept records the event key and reports whether this is its first observation
func (g *DedupGate) Accept(event models.SignalEvent) bool {
	key := event.Key()

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.seen[key]; exists {
		logger.Debug("Duplicate signal suppressed",
			logger.Symbol(key.Symbol),
			logger.Kind(string(key.Kind)),
			logger.String("idempotency_key", key.String()),
		)
		return false
	}

	g.seen[key] = struct{}{}
	return true
}

// Seen reports whether a key was already accepted without recording it
func (g *DedupGate) Seen(key models.DedupKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, exists := g.seen[key]
	return exists
}

// Len returns the number of recorded keys
func (g *DedupGate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.seen)
}

// Reset forgets every key
func (g *DedupGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seen = make(map[models.DedupKey]struct{})
}
