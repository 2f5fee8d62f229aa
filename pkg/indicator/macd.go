package indicator

import (
	"fmt"
)

// MACD tracks the Moving Average Convergence Divergence of a price stream.
// line = EMA(fast) - EMA(slow), signal = EMA(signal) of line, histogram = line - signal
type MACD struct {
	name   string
	fast   *EMA
	slow   *EMA
	signal *EMA

	line      float64
	signalVal float64
	ready     bool
}

// MACDValue is one MACD observation
type MACDValue struct {
	Line      float64
	Signal    float64
	Histogram float64
}

// NewMACD creates a MACD calculator
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("MACD fast period (%d) must be less than slow period (%d)", fastPeriod, slowPeriod)
	}
	fast, err := NewEMA(fastPeriod)
	if err != nil {
		return nil, fmt.Errorf("MACD fast: %w", err)
	}
	slow, err := NewEMA(slowPeriod)
	if err != nil {
		return nil, fmt.Errorf("MACD slow: %w", err)
	}
	signal, err := NewEMA(signalPeriod)
	if err != nil {
		return nil, fmt.Errorf("MACD signal: %w", err)
	}

	return &MACD{
		name:   fmt.Sprintf("macd_%d_%d_%d", fastPeriod, slowPeriod, signalPeriod),
		fast:   fast,
		slow:   slow,
		signal: signal,
	}, nil
}

// Name returns the indicator name
func (m *MACD) Name() string {
	return m.name
}

// Next feeds a close price and returns line, signal and histogram
func (m *MACD) Next(price float64) MACDValue {
	m.line = m.fast.Update(price) - m.slow.Update(price)
	m.signalVal = m.signal.Update(m.line)
	m.ready = true
	return m.current()
}

// Update feeds a close price and returns the MACD line
func (m *MACD) Update(price float64) float64 {
	return m.Next(price).Line
}

// Value returns the current MACD line
func (m *MACD) Value() (float64, error) {
	if !m.ready {
		return 0, fmt.Errorf("MACD not ready: need at least 1 value")
	}
	return m.line, nil
}

// Current returns the latest full observation
func (m *MACD) Current() (MACDValue, error) {
	if !m.ready {
		return MACDValue{}, fmt.Errorf("MACD not ready: need at least 1 value")
	}
	return m.current(), nil
}

func (m *MACD) current() MACDValue {
	return MACDValue{
		Line:      m.line,
		Signal:    m.signalVal,
		Histogram: m.line - m.signalVal,
	}
}

// Reset clears the MACD state
func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = 0
	m.signalVal = 0
	m.ready = false
}

// IsReady returns true once the first price has been seen
func (m *MACD) IsReady() bool {
	return m.ready
}
