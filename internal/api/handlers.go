package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/monitor"
	"github.com/mohamedkhairy/signal-monitor/pkg/indicator"
)

// SessionView is the read-only part of a monitoring session exposed over HTTP
type SessionView interface {
	IsRunning() bool
	Symbols() []string
	GetStats() monitor.Stats
	Recent() []monitor.Delivery
	LastPoints() map[string]indicator.Point
}

// SignalHandler serves signal and session status endpoints
type SignalHandler struct {
	session SessionView
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(session SessionView) *SignalHandler {
	return &SignalHandler{session: session}
}

// ListSignals handles GET /api/v1/signals
func (h *SignalHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	kind := models.SignalKind(strings.ToUpper(r.URL.Query().Get("kind")))
	if kind != "" && !kind.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown signal kind")
		return
	}

	limit := monitor.DefaultRecentLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = l
	}

	// newest last, keep the newest matches
	all := h.session.Recent()
	filtered := make([]monitor.Delivery, 0, len(all))
	for _, d := range all {
		if symbol != "" && d.Event.Symbol != symbol {
			continue
		}
		if kind != "" && d.Event.Kind != kind {
			continue
		}
		filtered = append(filtered, d)
	}
	if len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"signals": filtered,
		"count":   len(filtered),
	})
}

// pointView is an indicator point with undefined values rendered as null
type pointView struct {
	Symbol     string    `json:"symbol"`
	Timestamp  time.Time `json:"timestamp"`
	Close      float64   `json:"close"`
	Volume     float64   `json:"volume"`
	EMAFast    float64   `json:"ema_fast"`
	EMAMid     float64   `json:"ema_mid"`
	EMASlow    float64   `json:"ema_slow"`
	MACD       float64   `json:"macd"`
	MACDSignal float64   `json:"macd_signal"`
	MACDHist   float64   `json:"macd_hist"`
	AvgVolume  *float64  `json:"avg_volume"`
	Resistance *float64  `json:"resistance"`
}

func newPointView(p indicator.Point) pointView {
	return pointView{
		Symbol:     p.Symbol,
		Timestamp:  p.Timestamp,
		Close:      p.Close,
		Volume:     p.Volume,
		EMAFast:    p.EMAFast,
		EMAMid:     p.EMAMid,
		EMASlow:    p.EMASlow,
		MACD:       p.MACD,
		MACDSignal: p.MACDSignal,
		MACDHist:   p.MACDHist,
		AvgVolume:  defined(p.AvgVolume),
		Resistance: defined(p.Resistance),
	}
}

func defined(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// GetStats handles GET /api/v1/stats
func (h *SignalHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	points := h.session.LastPoints()
	latest := make(map[string]pointView, len(points))
	for symbol, p := range points {
		latest[symbol] = newPointView(p)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.session.IsRunning(),
		"symbols": h.session.Symbols(),
		"stats":   h.session.GetStats(),
		"latest":  latest,
	})
}

// GetSymbol handles GET /api/v1/symbols/{symbol}
func (h *SignalHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	p, ok := h.session.LastPoints()[symbol]
	if !ok {
		respondWithError(w, http.StatusNotFound, "Symbol not evaluated yet")
		return
	}

	respondWithJSON(w, http.StatusOK, newPointView(p))
}

// Health handles GET /health
func (h *SignalHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.session.GetStats()
	status := http.StatusOK
	health := map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]interface{}{
			"session": map[string]interface{}{
				"running":   h.session.IsRunning(),
				"ticks":     stats.Ticks,
				"last_tick": stats.LastTick,
			},
		},
	}
	if !h.session.IsRunning() {
		status = http.StatusServiceUnavailable
		health["status"] = "DOWN"
	}

	respondWithJSON(w, status, health)
}

// Ready handles GET /ready; the service is ready after its first completed tick
func (h *SignalHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.session.IsRunning() && h.session.GetStats().Ticks > 0 {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("NOT READY"))
}

// Live handles GET /live
func (h *SignalHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("LIVE"))
}
