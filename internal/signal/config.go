package signal

import (
	"fmt"
)

// Mode selects which bars of a frame are evaluated
type Mode int

const (
	// ModeTail evaluates only the newest bar against its predecessor
	ModeTail Mode = iota
	// ModeScan evaluates every bar from index 1 and keeps the newest events
	ModeScan
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeTail:
		return "tail"
	case ModeScan:
		return "scan"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Policy controls how many rules may fire on one bar
type Policy string

const (
	// PolicyPriority stops at the first matching rule, so at most one event per bar
	PolicyPriority Policy = "priority"
	// PolicyIndependent evaluates every rule and emits all matches
	PolicyIndependent Policy = "independent"
)

// ParsePolicy converts a string to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyPriority, "":
		return PolicyPriority, nil
	case PolicyIndependent:
		return PolicyIndependent, nil
	default:
		return "", fmt.Errorf("unknown signal policy %q (want %q or %q)", s, PolicyPriority, PolicyIndependent)
	}
}

// Config holds classifier thresholds
type Config struct {
	VolumeSurge      float64 `yaml:"volume_surge" json:"volume_surge"`           // volume must exceed avg * VolumeSurge
	BuyStopBuffer    float64 `yaml:"buy_stop_buffer" json:"buy_stop_buffer"`     // applied to the recent low
	SellStopBuffer   float64 `yaml:"sell_stop_buffer" json:"sell_stop_buffer"`   // applied to the recent high
	TargetMultiplier float64 `yaml:"target_multiplier" json:"target_multiplier"` // applied to resistance on breakouts
	StopLookback     int     `yaml:"stop_lookback" json:"stop_lookback"`         // bars before the signal bar used for stops
	MinBars          int     `yaml:"min_bars" json:"min_bars"`                   // shortest series worth classifying; frames below the indicator MinWarmup are never classified either
	ScanLimit        int     `yaml:"scan_limit" json:"scan_limit"`               // newest events kept in scan mode
	Policy           Policy  `yaml:"policy" json:"policy"`
}

// Target multiplier bounds
const (
	MinTargetMultiplier = 1.02
	MaxTargetMultiplier = 1.05
)

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		VolumeSurge:      1.2,
		BuyStopBuffer:    0.98,
		SellStopBuffer:   1.02,
		TargetMultiplier: 1.02,
		StopLookback:     10,
		MinBars:          30,
		ScanLimit:        5,
		Policy:           PolicyPriority,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.VolumeSurge <= 0 {
		return fmt.Errorf("volume_surge must be positive, got %v", c.VolumeSurge)
	}
	if c.BuyStopBuffer <= 0 || c.BuyStopBuffer >= 1 {
		return fmt.Errorf("buy_stop_buffer must be in (0, 1), got %v", c.BuyStopBuffer)
	}
	if c.SellStopBuffer <= 1 {
		return fmt.Errorf("sell_stop_buffer must be greater than 1, got %v", c.SellStopBuffer)
	}
	if c.TargetMultiplier < MinTargetMultiplier || c.TargetMultiplier > MaxTargetMultiplier {
		return fmt.Errorf("target_multiplier must be between %.2f and %.2f, got %v",
			MinTargetMultiplier, MaxTargetMultiplier, c.TargetMultiplier)
	}
	if c.StopLookback < 0 {
		return fmt.Errorf("stop_lookback must not be negative, got %d", c.StopLookback)
	}
	if c.MinBars < 0 {
		return fmt.Errorf("min_bars must not be negative, got %d", c.MinBars)
	}
	if c.ScanLimit < 1 {
		return fmt.Errorf("scan_limit must be at least 1, got %d", c.ScanLimit)
	}
	if _, err := ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	return nil
}
