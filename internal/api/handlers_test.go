package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/monitor"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
	"github.com/mohamedkhairy/signal-monitor/pkg/indicator"
)

type fakeSession struct {
	running bool
	stats   monitor.Stats
	recent  []monitor.Delivery
	points  map[string]indicator.Point
}

func (f *fakeSession) IsRunning() bool                        { return f.running }
func (f *fakeSession) Symbols() []string                      { return []string{"AAPL", "NVDA"} }
func (f *fakeSession) GetStats() monitor.Stats                { return f.stats }
func (f *fakeSession) Recent() []monitor.Delivery             { return f.recent }
func (f *fakeSession) LastPoints() map[string]indicator.Point { return f.points }

func delivery(symbol string, kind models.SignalKind, minute int) monitor.Delivery {
	ts := time.Date(2024, 1, 2, 15, minute, 0, 0, time.UTC)
	return monitor.Delivery{
		Event: models.SignalEvent{
			ID:           symbol + string(kind),
			Symbol:       symbol,
			BarTimestamp: ts,
			Kind:         kind,
			Price:        100,
			StopLoss:     98,
		},
		Result:      notification.DeliveryResult{Success: true, Detail: "delivered via log"},
		DeliveredAt: ts,
	}
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		running: true,
		stats:   monitor.Stats{Ticks: 3, Accepted: 3},
		recent: []monitor.Delivery{
			delivery("AAPL", models.BuyReversal, 0),
			delivery("NVDA", models.SellReversal, 5),
			delivery("AAPL", models.BuyBreakout, 10),
		},
		points: map[string]indicator.Point{
			"AAPL": {
				Bar:        models.Bar{Symbol: "AAPL", Close: 101},
				EMAFast:    100.5,
				AvgVolume:  1200,
				Resistance: math.NaN(),
			},
		},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListSignals(t *testing.T) {
	h := NewHandler(newFakeSession())

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount int
		wantFirst string
	}{
		{"all", "/api/v1/signals", http.StatusOK, 3, "AAPLBUY_REVERSAL"},
		{"by symbol", "/api/v1/signals?symbol=aapl", http.StatusOK, 2, "AAPLBUY_REVERSAL"},
		{"by kind", "/api/v1/signals?kind=sell_reversal", http.StatusOK, 1, "NVDASELL_REVERSAL"},
		{"newest only", "/api/v1/signals?limit=1", http.StatusOK, 1, "AAPLBUY_BREAKOUT"},
		{"bad kind", "/api/v1/signals?kind=HOLD", http.StatusBadRequest, 0, ""},
		{"bad limit", "/api/v1/signals?limit=-2", http.StatusBadRequest, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, h, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Signals []monitor.Delivery `json:"signals"`
				Count   int                `json:"count"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCount, body.Count)
			require.Len(t, body.Signals, tt.wantCount)
			assert.Equal(t, tt.wantFirst, body.Signals[0].Event.ID)
		})
	}
}

func TestGetStats_UndefinedValuesAreNull(t *testing.T) {
	rec := get(t, NewHandler(newFakeSession()), "/api/v1/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, true, body["running"])
	latest := body["latest"].(map[string]interface{})
	aapl := latest["AAPL"].(map[string]interface{})
	assert.Equal(t, 1200.0, aapl["avg_volume"])
	assert.Nil(t, aapl["resistance"])
	assert.Contains(t, aapl, "resistance")

	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, 3.0, stats["ticks"])
}

func TestGetSymbol(t *testing.T) {
	h := NewHandler(newFakeSession())

	rec := get(t, h, "/api/v1/symbols/aapl")
	require.Equal(t, http.StatusOK, rec.Code)
	var p pointView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, 101.0, p.Close)
	assert.Nil(t, p.Resistance)

	rec = get(t, h, "/api/v1/symbols/MSFT")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	session := newFakeSession()
	h := NewHandler(session)

	assert.Equal(t, http.StatusOK, get(t, h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/ready").Code)
	assert.Equal(t, "LIVE", get(t, h, "/live").Body.String())

	session.stats.Ticks = 0
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/ready").Code)

	session.running = false
	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "DOWN")
	assert.Equal(t, http.StatusOK, get(t, h, "/live").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, NewHandler(newFakeSession()), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
