package series

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// DefaultMaxBars is the number of bars kept per symbol when no limit is given
const DefaultMaxBars = 500

// Series is the ordered bar history of one symbol
type Series struct {
	Symbol string

	mu         sync.RWMutex
	bars       []models.Bar
	maxBars    int
	lastUpdate time.Time
}

// Upsert applies one bar to the series.
// A bar with the newest timestamp replaces the newest bar (the live bar still forming),
// a later bar is appended, and an earlier bar is rejected.
func (s *Series) Upsert(bar models.Bar) error {
	if err := s.check(bar); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.bars); n > 0 {
		last := s.bars[n-1].Timestamp
		switch {
		case bar.Timestamp.Equal(last):
			s.bars[n-1] = bar
			s.lastUpdate = time.Now()
			return nil
		case bar.Timestamp.Before(last):
			return fmt.Errorf("bar at %s precedes newest bar at %s: %w",
				bar.Timestamp.Format(time.RFC3339), last.Format(time.RFC3339), models.ErrNonMonotonicTimestamp)
		}
	}

	s.bars = append(s.bars, bar)
	s.trim()
	s.lastUpdate = time.Now()
	return nil
}

// Merge applies a fetched window of bars, oldest first.
// Bars older than the newest stored bar are already known and skipped.
// It returns the number of bars appended or replaced.
func (s *Series) Merge(bars []models.Bar) (int, error) {
	if err := models.ValidateSeries(bars); err != nil {
		return 0, err
	}
	for i := range bars {
		if bars[i].Symbol != s.Symbol {
			return 0, fmt.Errorf("bar %d belongs to %q, series is %q: %w", i, bars[i].Symbol, s.Symbol, models.ErrInvalidSymbol)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, bar := range bars {
		n := len(s.bars)
		if n > 0 {
			last := s.bars[n-1].Timestamp
			if bar.Timestamp.Before(last) {
				continue
			}
			if bar.Timestamp.Equal(last) {
				s.bars[n-1] = bar
				applied++
				continue
			}
		}
		s.bars = append(s.bars, bar)
		applied++
	}
	s.trim()
	if applied > 0 {
		s.lastUpdate = time.Now()
	}
	return applied, nil
}

// Snapshot returns a copy of the bars, oldest first
func (s *Series) Snapshot() []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Len returns the number of stored bars
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bars)
}

// Last returns the newest bar
func (s *Series) Last() (models.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bars) == 0 {
		return models.Bar{}, false
	}
	return s.bars[len(s.bars)-1], true
}

// LastUpdate returns when the series last changed
func (s *Series) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdate
}

func (s *Series) check(bar models.Bar) error {
	if bar.Symbol != s.Symbol {
		return fmt.Errorf("bar belongs to %q, series is %q: %w", bar.Symbol, s.Symbol, models.ErrInvalidSymbol)
	}
	return bar.Validate()
}

// trim drops the oldest bars beyond maxBars; caller holds the lock
func (s *Series) trim() {
	if s.maxBars <= 0 || len(s.bars) <= s.maxBars {
		return
	}
	excess := len(s.bars) - s.maxBars
	kept := make([]models.Bar, s.maxBars)
	copy(kept, s.bars[excess:])
	s.bars = kept
}

// Store manages the series of every monitored symbol
type Store struct {
	series  map[string]*Series
	mu      sync.RWMutex
	maxBars int // Maximum number of bars to keep per symbol
}

// NewStore creates a new store
func NewStore(maxBars int) *Store {
	if maxBars <= 0 {
		maxBars = DefaultMaxBars
	}

	return &Store{
		series:  make(map[string]*Series),
		maxBars: maxBars,
	}
}

// MaxBars returns the per-symbol bar limit
func (st *Store) MaxBars() int {
	return st.maxBars
}

// GetOrCreate gets an existing series or creates a new one
func (st *Store) GetOrCreate(symbol string) (*Series, error) {
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}

	st.mu.RLock()
	s, exists := st.series[symbol]
	st.mu.RUnlock()

	if exists {
		return s, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	// Double-check after acquiring write lock
	if s, exists := st.series[symbol]; exists {
		return s, nil
	}

	s = &Series{
		Symbol:  symbol,
		bars:    make([]models.Bar, 0, st.maxBars),
		maxBars: st.maxBars,
	}
	st.series[symbol] = s
	return s, nil
}

// Get gets a series (returns nil if not found)
func (st *Store) Get(symbol string) *Series {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return st.series[symbol]
}

// Merge applies a fetched window to the symbol's series, creating it if needed
func (st *Store) Merge(symbol string, bars []models.Bar) (int, error) {
	s, err := st.GetOrCreate(symbol)
	if err != nil {
		return 0, err
	}
	return s.Merge(bars)
}

// Snapshot returns a copy of a symbol's bars, or nil for an unknown symbol
func (st *Store) Snapshot(symbol string) []models.Bar {
	s := st.Get(symbol)
	if s == nil {
		return nil
	}
	return s.Snapshot()
}

// Symbols returns the tracked symbols in sorted order
func (st *Store) Symbols() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()

	symbols := make([]string, 0, len(st.series))
	for symbol := range st.series {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Remove drops a symbol's series
func (st *Store) Remove(symbol string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.series, symbol)
}

// Count returns the number of tracked symbols
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.series)
}
