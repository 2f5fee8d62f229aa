package data

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// MockProvider generates synthetic bars for any symbol.
// Each bar is derived from (symbol, bar slot) only, so overlapping fetches agree on shared bars.
type MockProvider struct {
	name     string
	interval time.Duration
	bars     int
	now      func() time.Time
}

// NewMockProvider creates a new mock provider
func NewMockProvider(config ProviderConfig) (Provider, error) {
	interval := config.BarInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	bars := config.Bars
	if bars <= 0 {
		bars = 390
	}

	return &MockProvider{
		name:     "mock",
		interval: interval,
		bars:     bars,
		now:      time.Now,
	}, nil
}

// GetName returns the provider name
func (m *MockProvider) GetName() string {
	return m.name
}

// FetchBars returns the latest window of synthetic bars ending at the current slot
func (m *MockProvider) FetchBars(ctx context.Context, symbol string) ([]models.Bar, error) {
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := symbolSeed(symbol)
	basePrice := 20.0 + float64(seed%400) // between 20 and 420

	last := m.now().UTC().Truncate(m.interval)
	lastSlot := last.UnixNano() / int64(m.interval)

	out := make([]models.Bar, m.bars)
	for i := range out {
		slot := lastSlot - int64(m.bars-1-i)
		out[i] = m.barAt(symbol, seed, basePrice, slot)
	}
	return out, nil
}

// barAt builds the bar for one slot from slow waves plus slot-seeded noise
func (m *MockProvider) barAt(symbol string, seed uint32, basePrice float64, slot int64) models.Bar {
	rng := rand.New(rand.NewSource(int64(seed) ^ slot))

	k := float64(slot)
	phase := float64(seed % 97)
	trend := 0.06*math.Sin((k+phase)/61) + 0.025*math.Sin((k+phase)/13)
	closePrice := basePrice * (1 + trend + (rng.Float64()-0.5)*0.004)
	openPrice := closePrice * (1 + (rng.Float64()-0.5)*0.003)

	high := math.Max(openPrice, closePrice) * (1 + rng.Float64()*0.002)
	low := math.Min(openPrice, closePrice) * (1 - rng.Float64()*0.002)

	volume := 5000 + rng.Float64()*5000
	if rng.Intn(20) == 0 {
		volume *= 2.5 // occasional surge
	}

	return models.Bar{
		Symbol:    symbol,
		Timestamp: time.Unix(0, slot*int64(m.interval)).UTC(),
		Open:      openPrice,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    math.Round(volume),
	}
}

func symbolSeed(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}
