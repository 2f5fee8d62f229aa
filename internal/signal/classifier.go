package signal

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/pkg/indicator"
)

// rule is one entry of the classification chain
type rule struct {
	kind  models.SignalKind
	label string
	match func(c *Classifier, cur, prev *indicator.Point) bool
}

// rules are listed in priority order
var rules = []rule{
	{
		kind:  models.BuyReversal,
		label: "Buy signal (EMA/MACD reversal)",
		match: func(c *Classifier, cur, prev *indicator.Point) bool {
			return cur.Close > cur.EMAFast && cur.EMAFast > cur.EMAMid &&
				cur.MACD > cur.MACDSignal && cur.MACDSignal > prev.MACDSignal &&
				c.volumeSurge(cur)
		},
	},
	{
		kind:  models.BuyBreakout,
		label: "Buy signal (resistance breakout)",
		match: func(c *Classifier, cur, prev *indicator.Point) bool {
			return cur.HasResistance() &&
				cur.Close > cur.Resistance && cur.Resistance > prev.Close &&
				c.volumeSurge(cur) &&
				cur.MACD > 0
		},
	},
	{
		kind:  models.SellReversal,
		label: "Sell signal (EMA/MACD breakdown)",
		match: func(c *Classifier, cur, prev *indicator.Point) bool {
			return cur.Close < cur.EMAFast && cur.EMAFast < cur.EMAMid &&
				cur.MACD < cur.MACDSignal && cur.MACDSignal < prev.MACDSignal &&
				c.volumeSurge(cur)
		},
	},
	{
		kind:  models.SellBreakoutFailure,
		label: "Sell signal (breakout failure)",
		match: func(c *Classifier, cur, prev *indicator.Point) bool {
			return cur.HasResistance() &&
				cur.Close < cur.Resistance && cur.Resistance < prev.Close &&
				cur.MACD < 0
		},
	},
}

// Classifier turns indicator frames into signal events.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a new classifier
func NewClassifier(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}
	return &Classifier{cfg: cfg}, nil
}

// Config returns the classifier configuration
func (c *Classifier) Config() Config {
	return c.cfg
}

// Classify evaluates a frame in the given mode.
// A frame that is not ready, or shorter than MinBars, yields no events.
func (c *Classifier) Classify(frame indicator.Frame, mode Mode) []models.SignalEvent {
	n := frame.Len()
	if !frame.Ready || n < c.cfg.MinBars || n < 2 {
		return nil
	}

	switch mode {
	case ModeScan:
		var events []models.SignalEvent
		for i := 1; i < n; i++ {
			events = append(events, c.evaluate(frame, i)...)
		}
		if len(events) > c.cfg.ScanLimit {
			events = events[len(events)-c.cfg.ScanLimit:]
		}
		return events
	default:
		return c.evaluate(frame, n-1)
	}
}

// evaluate runs the rule chain on points[i] against points[i-1]
func (c *Classifier) evaluate(frame indicator.Frame, i int) []models.SignalEvent {
	cur := &frame.Points[i]
	prev := &frame.Points[i-1]

	var events []models.SignalEvent
	for idx := range rules {
		r := &rules[idx]
		if !r.match(c, cur, prev) {
			continue
		}
		events = append(events, c.newEvent(frame, i, r))
		if c.cfg.Policy != PolicyIndependent {
			break
		}
	}
	return events
}

// volumeSurge is false whenever the baseline is undefined or not positive
func (c *Classifier) volumeSurge(p *indicator.Point) bool {
	if !p.HasAvgVolume() || p.AvgVolume <= 0 {
		return false
	}
	return p.Volume > p.AvgVolume*c.cfg.VolumeSurge
}

func (c *Classifier) newEvent(frame indicator.Frame, i int, r *rule) models.SignalEvent {
	cur := &frame.Points[i]
	symbol := frame.Symbol
	if symbol == "" {
		symbol = cur.Symbol
	}

	event := models.SignalEvent{
		Symbol:       symbol,
		BarTimestamp: cur.Timestamp,
		Kind:         r.kind,
		Price:        cur.Close,
		Indicators:   indicatorValues(cur),
	}

	from := i - c.cfg.StopLookback
	if from < 0 {
		from = 0
	}
	if r.kind.IsBuy() {
		event.StopLoss = lowestLow(frame.Points[from:i+1]) * c.cfg.BuyStopBuffer
	} else {
		event.StopLoss = highestHigh(frame.Points[from:i+1]) * c.cfg.SellStopBuffer
	}
	if r.kind == models.BuyBreakout {
		target := cur.Resistance * c.cfg.TargetMultiplier
		event.Target = &target
	}

	event.ID = EventID(event.Key())
	event.Rationale = rationale(r.label, &event)
	return event
}

// EventID derives a stable event identifier from its dedup key
func EventID(key models.DedupKey) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key.String())).String()
}

func lowestLow(points []indicator.Point) float64 {
	low := math.Inf(1)
	for i := range points {
		low = math.Min(low, points[i].Low)
	}
	return low
}

func highestHigh(points []indicator.Point) float64 {
	high := math.Inf(-1)
	for i := range points {
		high = math.Max(high, points[i].High)
	}
	return high
}

func indicatorValues(p *indicator.Point) map[string]float64 {
	values := map[string]float64{
		"close":       p.Close,
		"volume":      p.Volume,
		"ema_fast":    p.EMAFast,
		"ema_mid":     p.EMAMid,
		"ema_slow":    p.EMASlow,
		"macd":        p.MACD,
		"macd_signal": p.MACDSignal,
		"macd_hist":   p.MACDHist,
	}
	if p.HasAvgVolume() {
		values["avg_volume"] = p.AvgVolume
	}
	if p.HasResistance() {
		values["resistance"] = p.Resistance
	}
	return values
}

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func rationale(label string, e *models.SignalEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ %s (%s) | stop loss: %s",
		label, price(e.Price), e.BarTimestamp.Format("2006-01-02 15:04:05 MST"), price(e.StopLoss))
	if e.Target != nil {
		fmt.Fprintf(&b, ", target: %s", price(*e.Target))
	}
	return b.String()
}
