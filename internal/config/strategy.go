package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohamedkhairy/signal-monitor/internal/signal"
	"github.com/mohamedkhairy/signal-monitor/pkg/indicator"
)

// Strategy is the tunable part of the configuration, loadable from a YAML file
type Strategy struct {
	Indicators indicator.Config `json:"indicators" yaml:"indicators"`
	Signals    signal.Config    `json:"signals" yaml:"signals"`
}

// DefaultStrategy returns the default periods and thresholds
func DefaultStrategy() Strategy {
	return Strategy{
		Indicators: indicator.DefaultConfig(),
		Signals:    signal.DefaultConfig(),
	}
}

// Validate checks both halves of the strategy
func (s *Strategy) Validate() error {
	if err := s.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if err := s.Signals.Validate(); err != nil {
		return fmt.Errorf("signals: %w", err)
	}
	return nil
}

// LoadStrategyFile loads a strategy from a YAML or JSON file.
// Keys missing from the file keep their default values.
func LoadStrategyFile(path string) (*Strategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read strategy file: %w", err)
	}

	s := DefaultStrategy()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, &s); err != nil {
		s = DefaultStrategy()
		if jerr := json.Unmarshal(data, &s); jerr != nil {
			return nil, fmt.Errorf("parse strategy (tried YAML and JSON): %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy: %w", err)
	}

	return &s, nil
}

// SaveToFile writes the strategy as YAML, or JSON for a .json path
func (s *Strategy) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("marshal strategy: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write strategy file: %w", err)
	}

	return nil
}
