package models

import (
	"fmt"
	"math"
	"time"
)

// Bar represents one OHLCV bar for an instrument
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if b.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ErrInvalidPrice
		}
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Volume < 0 || math.IsNaN(b.Volume) {
		return ErrInvalidVolume
	}
	return nil
}

// ValidateSeries checks every bar and that timestamps are strictly increasing
func ValidateSeries(bars []Bar) error {
	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return fmt.Errorf("bar %d (%s): %w", i, bars[i].Timestamp.Format(time.RFC3339), err)
		}
		if i > 0 && !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("bar %d (%s): %w", i, bars[i].Timestamp.Format(time.RFC3339), ErrNonMonotonicTimestamp)
		}
	}
	return nil
}

// SignalKind identifies which trading rule produced a signal
type SignalKind string

const (
	BuyReversal         SignalKind = "BUY_REVERSAL"
	BuyBreakout         SignalKind = "BUY_BREAKOUT"
	SellReversal        SignalKind = "SELL_REVERSAL"
	SellBreakoutFailure SignalKind = "SELL_BREAKOUT_FAILURE"
)

// AllSignalKinds lists the kinds in rule priority order
var AllSignalKinds = []SignalKind{BuyReversal, BuyBreakout, SellReversal, SellBreakoutFailure}

// Valid reports whether k is a known kind
func (k SignalKind) Valid() bool {
	switch k {
	case BuyReversal, BuyBreakout, SellReversal, SellBreakoutFailure:
		return true
	}
	return false
}

// IsBuy returns true for the buy-side kinds
func (k SignalKind) IsBuy() bool {
	return k == BuyReversal || k == BuyBreakout
}

// SignalEvent is a detected trading condition on one bar.
// Events are values; nothing mutates them after the classifier returns.
type SignalEvent struct {
	ID           string             `json:"id"`
	Symbol       string             `json:"symbol"`
	BarTimestamp time.Time          `json:"bar_timestamp"`
	Kind         SignalKind         `json:"kind"`
	Price        float64            `json:"price"`
	StopLoss     float64            `json:"stop_loss"`
	Target       *float64           `json:"target,omitempty"`
	Rationale    string             `json:"rationale"`
	Indicators   map[string]float64 `json:"indicators,omitempty"`
}

// Key returns the dedup key of the event
func (e *SignalEvent) Key() DedupKey {
	return DedupKey{
		Symbol:       e.Symbol,
		BarTimestamp: e.BarTimestamp.UnixNano(),
		Kind:         e.Kind,
	}
}

// HasTarget reports whether a take-profit target was suggested
func (e *SignalEvent) HasTarget() bool {
	return e.Target != nil
}

// Validate validates a SignalEvent
func (e *SignalEvent) Validate() error {
	if e.ID == "" {
		return ErrInvalidEventID
	}
	if e.Symbol == "" {
		return ErrInvalidSymbol
	}
	if e.BarTimestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if !e.Kind.Valid() {
		return ErrInvalidSignalKind
	}
	if e.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// DedupKey identifies a (symbol, bar, kind) tuple that may be reported once
type DedupKey struct {
	Symbol       string
	BarTimestamp int64 // unix nanoseconds
	Kind         SignalKind
}

// String formats the key as {kind}:{symbol}:{unix_nanos}
func (k DedupKey) String() string {
	return fmt.Sprintf("%s:%s:%d", k.Kind, k.Symbol, k.BarTimestamp)
}
