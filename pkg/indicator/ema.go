package indicator

import (
	"fmt"
)

// EMA calculates the Exponential Moving Average
// EMA = (Value - Previous EMA) * Multiplier + Previous EMA
// Multiplier = 2 / (Period + 1)
// The first value seeds the average directly (no SMA warm-up).
type EMA struct {
	period     int
	name       string
	multiplier float64
	value      float64
	ready      bool
	processed  int
}

// NewEMA creates a new EMA calculator with the specified period
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("EMA period must be at least 1, got %d", period)
	}

	return &EMA{
		period:     period,
		name:       fmt.Sprintf("ema_%d", period),
		multiplier: 2.0 / float64(period+1),
	}, nil
}

// Name returns the indicator name
func (e *EMA) Name() string {
	return e.name
}

// Period returns the smoothing period
func (e *EMA) Period() int {
	return e.period
}

// Update processes the next value and returns the new EMA
func (e *EMA) Update(x float64) float64 {
	e.processed++

	if !e.ready {
		e.value = x
		e.ready = true
		return e.value
	}

	// Written as a correction to the previous value so a constant input stays exactly constant
	e.value = (x-e.value)*e.multiplier + e.value
	return e.value
}

// Value returns the current EMA value
func (e *EMA) Value() (float64, error) {
	if !e.ready {
		return 0, fmt.Errorf("EMA not ready: need at least 1 value")
	}
	return e.value, nil
}

// Reset clears the EMA state
func (e *EMA) Reset() {
	e.value = 0
	e.ready = false
	e.processed = 0
}

// IsReady returns true once the first value has been seen
func (e *EMA) IsReady() bool {
	return e.ready
}

// BarsProcessed returns the number of values processed
func (e *EMA) BarsProcessed() int {
	return e.processed
}

// EMASeries applies a fresh EMA of the given period to every element of xs
func EMASeries(xs []float64, period int) ([]float64, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = ema.Update(x)
	}
	return out, nil
}
