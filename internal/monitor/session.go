package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/alert"
	"github.com/mohamedkhairy/signal-monitor/internal/data"
	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
	"github.com/mohamedkhairy/signal-monitor/internal/series"
	"github.com/mohamedkhairy/signal-monitor/internal/signal"
	"github.com/mohamedkhairy/signal-monitor/pkg/indicator"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// ErrAlreadyRunning is returned by Run when the session loop is active
var ErrAlreadyRunning = errors.New("session is already running")

// DefaultRecentLimit is the number of deliveries kept for inspection
const DefaultRecentLimit = 100

// Config holds configuration for a monitoring session
type Config struct {
	Symbols      []string
	Interval     time.Duration // time between ticks
	FetchWorkers int           // concurrent bar fetches
	Indicators   indicator.Config
	RecentLimit  int // deliveries kept for Recent
}

// Delivery is an accepted event together with its notification outcome
type Delivery struct {
	Event       models.SignalEvent          `json:"event"`
	Result      notification.DeliveryResult `json:"result"`
	DeliveredAt time.Time                   `json:"delivered_at"`
}

// TickResult summarizes one tick
type TickResult struct {
	TraceID       string               `json:"trace_id"`
	Mode          string               `json:"mode"`
	Symbols       int                  `json:"symbols"`
	FetchFailures int                  `json:"fetch_failures"`
	Candidates    int                  `json:"candidates"`
	Accepted      int                  `json:"accepted"`
	Suppressed    int                  `json:"suppressed"`
	Delivered     int                  `json:"delivered"`
	Failed        int                  `json:"failed"`
	Events        []models.SignalEvent `json:"events"` // accepted events, in evaluation order
	Duration      time.Duration        `json:"duration"`
}

// Stats holds cumulative session statistics
type Stats struct {
	Ticks            int64         `json:"ticks"`
	FetchFailures    int64         `json:"fetch_failures"`
	Candidates       int64         `json:"candidates"`
	Accepted         int64         `json:"accepted"`
	Suppressed       int64         `json:"suppressed"`
	Delivered        int64         `json:"delivered"`
	DeliveryFailures int64         `json:"delivery_failures"`
	LastTick         time.Time     `json:"last_tick"`
	LastTickDuration time.Duration `json:"last_tick_duration"`
}

// Session polls bars for a symbol set, classifies the newest bar of each series and
// notifies every new signal once.
type Session struct {
	config     Config
	provider   data.Provider
	store      *series.Store
	classifier *signal.Classifier
	gate       *alert.DedupGate
	notifier   notification.Notifier

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}

	// tickMu serializes ticks so the gate sees events in evaluation order
	tickMu sync.Mutex

	stateMu    sync.RWMutex
	stats      Stats
	recent     []Delivery
	lastPoints map[string]indicator.Point
}

// NewSession creates a new monitoring session
func NewSession(
	config Config,
	provider data.Provider,
	store *series.Store,
	classifier *signal.Classifier,
	gate *alert.DedupGate,
	notifier notification.Notifier,
) (*Session, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if classifier == nil {
		return nil, fmt.Errorf("classifier cannot be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier cannot be nil")
	}
	if len(config.Symbols) == 0 {
		return nil, fmt.Errorf("at least one symbol is required")
	}
	if err := config.Indicators.Validate(); err != nil {
		return nil, fmt.Errorf("invalid indicator config: %w", err)
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.FetchWorkers <= 0 {
		config.FetchWorkers = 10
	}
	if config.RecentLimit <= 0 {
		config.RecentLimit = DefaultRecentLimit
	}
	if store == nil {
		store = series.NewStore(series.DefaultMaxBars)
	}
	if gate == nil {
		gate = alert.NewDedupGate()
	}

	return &Session{
		config:     config,
		provider:   provider,
		store:      store,
		classifier: classifier,
		gate:       gate,
		notifier:   notifier,
		lastPoints: make(map[string]indicator.Point),
	}, nil
}

// RunOnce performs a single tail-mode tick: fetch, store, compute, classify the newest bar,
// filter through the dedup gate and notify.
func (s *Session) RunOnce(ctx context.Context) TickResult {
	return s.tick(ctx, signal.ModeTail)
}

// Backfill performs a scan-mode tick over the whole stored history.
// Accepted events enter the gate, so a following tail tick does not repeat them.
func (s *Session) Backfill(ctx context.Context) TickResult {
	return s.tick(ctx, signal.ModeScan)
}

// Run ticks immediately and then every Interval until ctx is done or Stop is called.
// A tick in progress always completes.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.stopCh = nil
		s.mu.Unlock()
	}()

	logger.Info("Starting monitoring session",
		logger.Int("symbols", len(s.config.Symbols)),
		logger.Duration("interval", s.config.Interval),
		logger.String("provider", s.provider.GetName()),
		logger.String("notifier", s.notifier.Name()),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run initial tick immediately
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Monitoring session cancelled")
			return nil
		case <-stopCh:
			logger.Info("Monitoring session stopped")
			return nil
		case <-ticker.C:
			// Stop wins over a tick that became due at the same time
			select {
			case <-stopCh:
				logger.Info("Monitoring session stopped")
				return nil
			default:
			}
			s.RunOnce(ctx)
		}
	}
}

// Stop ends the Run loop after the current tick
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.stopCh = nil
}

// IsRunning returns whether the Run loop is active
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Symbols returns the monitored symbols
func (s *Session) Symbols() []string {
	out := make([]string, len(s.config.Symbols))
	copy(out, s.config.Symbols)
	return out
}

// GetStats returns a copy of the cumulative statistics
func (s *Session) GetStats() Stats {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.stats
}

// Recent returns the latest deliveries, oldest first
func (s *Session) Recent() []Delivery {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	out := make([]Delivery, len(s.recent))
	copy(out, s.recent)
	return out
}

// LastPoints returns the newest indicator point of every evaluated symbol
func (s *Session) LastPoints() map[string]indicator.Point {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	out := make(map[string]indicator.Point, len(s.lastPoints))
	for symbol, p := range s.lastPoints {
		out[symbol] = p
	}
	return out
}

// Gate returns the session's dedup gate
func (s *Session) Gate() *alert.DedupGate {
	return s.gate
}

func (s *Session) tick(ctx context.Context, mode signal.Mode) TickResult {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	start := time.Now()
	traceID := logger.NewTraceID()
	ctx = logger.WithTraceID(ctx, traceID)
	log := logger.WithContext(ctx)

	result := TickResult{
		TraceID: traceID,
		Mode:    mode.String(),
		Symbols: len(s.config.Symbols),
	}

	fetched := data.FetchAll(ctx, s.provider, s.config.Symbols, s.config.FetchWorkers)
	for _, fr := range fetched {
		if fr.Err != nil {
			s.fetchFailed(&result, fr.Symbol, fr.Err)
			continue
		}
		if _, err := s.store.Merge(fr.Symbol, fr.Bars); err != nil {
			s.fetchFailed(&result, fr.Symbol, err)
			continue
		}

		frame := indicator.Compute(s.store.Snapshot(fr.Symbol), s.config.Indicators)
		frame.Symbol = fr.Symbol
		if last := frame.Last(); last != nil {
			s.stateMu.Lock()
			s.lastPoints[fr.Symbol] = *last
			s.stateMu.Unlock()
		}

		for _, event := range s.classifier.Classify(frame, mode) {
			result.Candidates++
			candidatesTotal.WithLabelValues(string(event.Kind)).Inc()

			if !s.gate.Accept(event) {
				result.Suppressed++
				suppressedTotal.WithLabelValues(string(event.Kind)).Inc()
				continue
			}
			result.Accepted++
			acceptedTotal.WithLabelValues(string(event.Kind)).Inc()
			result.Events = append(result.Events, event)

			s.deliver(ctx, &result, event)
		}
	}

	result.Duration = time.Since(start)
	ticksTotal.WithLabelValues(mode.String()).Inc()
	tickDuration.Observe(result.Duration.Seconds())
	s.updateStats(&result, start)

	log.Debug("Tick complete",
		logger.Mode(result.Mode),
		logger.Int("candidates", result.Candidates),
		logger.Int("accepted", result.Accepted),
		logger.Int("suppressed", result.Suppressed),
		logger.Int("fetch_failures", result.FetchFailures),
		logger.Duration("duration", result.Duration),
	)
	return result
}

func (s *Session) fetchFailed(result *TickResult, symbol string, err error) {
	result.FetchFailures++
	fetchFailures.WithLabelValues(symbol).Inc()
	logger.Warn("Skipping symbol for this tick",
		logger.String("trace_id", result.TraceID),
		logger.Symbol(symbol),
		logger.ErrorField(err),
	)
}

// deliver notifies one accepted event; a failed delivery is not retried and
// the event stays recorded in the gate
func (s *Session) deliver(ctx context.Context, result *TickResult, event models.SignalEvent) {
	res := notification.Deliver(ctx, s.notifier, event)
	if res.Success {
		result.Delivered++
		deliveriesTotal.WithLabelValues("success").Inc()
	} else {
		result.Failed++
		deliveriesTotal.WithLabelValues("failure").Inc()
		logger.Error("Failed to deliver signal",
			logger.String("trace_id", result.TraceID),
			logger.String("event_id", event.ID),
			logger.Symbol(event.Symbol),
			logger.Kind(string(event.Kind)),
			logger.String("detail", res.Detail),
		)
	}

	s.stateMu.Lock()
	s.recent = append(s.recent, Delivery{Event: event, Result: res, DeliveredAt: time.Now()})
	if excess := len(s.recent) - s.config.RecentLimit; excess > 0 {
		s.recent = append(s.recent[:0:0], s.recent[excess:]...)
	}
	s.stateMu.Unlock()
}

func (s *Session) updateStats(result *TickResult, start time.Time) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	s.stats.Ticks++
	s.stats.FetchFailures += int64(result.FetchFailures)
	s.stats.Candidates += int64(result.Candidates)
	s.stats.Accepted += int64(result.Accepted)
	s.stats.Suppressed += int64(result.Suppressed)
	s.stats.Delivered += int64(result.Delivered)
	s.stats.DeliveryFailures += int64(result.Failed)
	s.stats.LastTick = start
	s.stats.LastTickDuration = result.Duration
}
