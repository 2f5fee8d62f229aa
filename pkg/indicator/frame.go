package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// Config holds indicator periods and the warm-up threshold
type Config struct {
	FastPeriod int `yaml:"ema_fast" json:"ema_fast"` // default 5
	MidPeriod  int `yaml:"ema_mid" json:"ema_mid"`   // default 10
	SlowPeriod int `yaml:"ema_slow" json:"ema_slow"` // default 20

	MACDFast   int `yaml:"macd_fast" json:"macd_fast"`     // default 12
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow"`     // default 26
	MACDSignal int `yaml:"macd_signal" json:"macd_signal"` // default 9

	// Window is the rolling window for average volume and resistance
	Window int `yaml:"window" json:"window"` // default 20

	// MinWarmup is the number of bars required before a frame is considered ready
	MinWarmup int `yaml:"min_warmup" json:"min_warmup"` // default 50
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		FastPeriod: 5,
		MidPeriod:  10,
		SlowPeriod: 20,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		Window:     20,
		MinWarmup:  50,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	for name, p := range map[string]int{
		"ema_fast":    c.FastPeriod,
		"ema_mid":     c.MidPeriod,
		"ema_slow":    c.SlowPeriod,
		"macd_fast":   c.MACDFast,
		"macd_slow":   c.MACDSlow,
		"macd_signal": c.MACDSignal,
	} {
		if p < 1 {
			return fmt.Errorf("%s period must be at least 1, got %d", name, p)
		}
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be less than macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.Window < 2 {
		return fmt.Errorf("window must be at least 2, got %d", c.Window)
	}
	if c.MinWarmup < 0 {
		return fmt.Errorf("min_warmup must not be negative, got %d", c.MinWarmup)
	}
	return nil
}

// Point is one bar enriched with its indicator values
type Point struct {
	models.Bar

	EMAFast float64 `json:"ema_fast"`
	EMAMid  float64 `json:"ema_mid"`
	EMASlow float64 `json:"ema_slow"`

	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	MACDHist   float64 `json:"macd_hist"`

	// AvgVolume is NaN for the first Window-1 points
	AvgVolume float64 `json:"avg_volume"`
	// Resistance is the highest high of the Window bars before this one; NaN until Window bars precede it
	Resistance float64 `json:"resistance"`
}

// HasAvgVolume reports whether the rolling volume baseline is defined
func (p Point) HasAvgVolume() bool {
	return !math.IsNaN(p.AvgVolume)
}

// HasResistance reports whether the resistance level is defined
func (p Point) HasResistance() bool {
	return !math.IsNaN(p.Resistance)
}

// Frame is the indicator series derived from one bar series
type Frame struct {
	Symbol string
	Points []Point
	// Ready is false while the series is shorter than the warm-up threshold
	Ready bool
}

// Len returns the number of points
func (f *Frame) Len() int {
	return len(f.Points)
}

// Last returns the newest point, or nil for an empty frame
func (f *Frame) Last() *Point {
	if len(f.Points) == 0 {
		return nil
	}
	return &f.Points[len(f.Points)-1]
}

// Compute derives the indicator frame for an ordered bar series.
// It is pure and never fails; an invalid config yields an empty, not-ready frame.
func Compute(bars []models.Bar, cfg Config) Frame {
	frame := Frame{}
	if len(bars) > 0 {
		frame.Symbol = bars[0].Symbol
	}
	if len(bars) == 0 || cfg.Validate() != nil {
		return frame
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i := range bars {
		closes[i] = bars[i].Close
		highs[i] = bars[i].High
		volumes[i] = bars[i].Volume
	}

	// periods were validated above
	emaFast, _ := EMASeries(closes, cfg.FastPeriod)
	emaMid, _ := EMASeries(closes, cfg.MidPeriod)
	emaSlow, _ := EMASeries(closes, cfg.SlowPeriod)
	macd, _ := NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)

	avgVolume := RollingMean(volumes, cfg.Window)
	resistance := Shift(RollingMax(highs, cfg.Window), 1)

	frame.Points = make([]Point, len(bars))
	for i := range bars {
		m := macd.Next(closes[i])
		frame.Points[i] = Point{
			Bar:        bars[i],
			EMAFast:    emaFast[i],
			EMAMid:     emaMid[i],
			EMASlow:    emaSlow[i],
			MACD:       m.Line,
			MACDSignal: m.Signal,
			MACDHist:   m.Histogram,
			AvgVolume:  avgVolume[i],
			Resistance: resistance[i],
		}
	}
	frame.Ready = len(bars) >= cfg.MinWarmup

	return frame
}
