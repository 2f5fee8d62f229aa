package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

// CSVProvider reads bars from {dir}/{SYMBOL}.csv files with rows:
//
//	time,open,high,low,close,volume
//
// where time is RFC3339, RFC3339Nano or unix seconds.
// A header row ("time,..." or "timestamp,...") is allowed and empty rows are skipped.
// The file is re-read on every fetch, so an appending writer is picked up.
type CSVProvider struct {
	dir   string
	limit int
}

// NewCSVProvider creates a new CSV provider
func NewCSVProvider(config ProviderConfig) (Provider, error) {
	if config.CSVDir == "" {
		return nil, errors.New("csv provider requires a directory")
	}
	info, err := os.Stat(config.CSVDir)
	if err != nil {
		return nil, fmt.Errorf("csv directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csv directory: %s is not a directory", config.CSVDir)
	}

	return &CSVProvider{dir: config.CSVDir, limit: config.Bars}, nil
}

// GetName returns the provider name
func (p *CSVProvider) GetName() string {
	return "csv"
}

// FetchBars reads the symbol's file and returns its newest bars
func (p *CSVProvider) FetchBars(ctx context.Context, symbol string) ([]models.Bar, error) {
	if symbol == "" || strings.ContainsAny(symbol, `/\`) {
		return nil, models.ErrInvalidSymbol
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
		}
		return nil, err
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.limit > 0 && len(bars) > p.limit {
		bars = bars[len(bars)-p.limit:]
	}
	return bars, nil
}

// ReadBarsCSV parses bar rows for one symbol and validates their order
func ReadBarsCSV(r io.Reader, symbol string) ([]models.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []models.Bar
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		// Allow a single header row
		if line == 1 && isHeader(row[0]) {
			continue
		}

		bar, err := parseBarRow(row, symbol)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	if err := models.ValidateSeries(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func parseBarRow(row []string, symbol string) (models.Bar, error) {
	// Need: time,open,high,low,close,volume
	if len(row) < 6 {
		return models.Bar{}, fmt.Errorf("want 6 fields, got %d: %w", len(row), models.ErrInvalidBar)
	}

	ts, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return models.Bar{}, err
	}

	var values [5]float64
	for i := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("bad number %q: %w", row[i+1], err)
		}
		values[i] = v
	}

	return models.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad time %q: %w", s, models.ErrInvalidTimestamp)
}

func isHeader(field string) bool {
	field = strings.ToLower(strings.TrimSpace(field))
	return field == "time" || field == "timestamp"
}
