package alert

import (
	"sync"
	"testing"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

func testEvent(symbol string, ts time.Time, kind models.SignalKind, price float64) models.SignalEvent {
	return models.SignalEvent{
		ID:           "evt-" + symbol,
		Symbol:       symbol,
		BarTimestamp: ts,
		Kind:         kind,
		Price:        price,
		StopLoss:     price * 0.98,
	}
}

func TestDedupGate_AcceptExactlyOnce(t *testing.T) {
	gate := NewDedupGate()
	ts := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

	accepted := 0
	// the live bar is re-evaluated every poll with drifting values
	for i := 0; i < 12; i++ {
		if gate.Accept(testEvent("AAPL", ts, models.BuyBreakout, 150+float64(i)*0.01)) {
			accepted++
		}
	}

	if accepted != 1 {
		t.Errorf("Expected exactly one acceptance, got %d", accepted)
	}
	if gate.Len() != 1 {
		t.Errorf("Expected 1 key, got %d", gate.Len())
	}
}

func TestDedupGate_DistinctKeys(t *testing.T) {
	gate := NewDedupGate()
	ts := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)

	events := []models.SignalEvent{
		testEvent("AAPL", ts, models.BuyBreakout, 150),
		testEvent("AAPL", ts, models.BuyReversal, 150),                    // different kind
		testEvent("AAPL", ts.Add(5*time.Minute), models.BuyBreakout, 151), // next bar
		testEvent("MSFT", ts, models.BuyBreakout, 380),                    // different symbol
	}

	for i, e := range events {
		if !gate.Accept(e) {
			t.Errorf("Expected event %d to be accepted", i)
		}
	}
	for i, e := range events {
		if gate.Accept(e) {
			t.Errorf("Expected event %d to be suppressed on repeat", i)
		}
	}
	if gate.Len() != len(events) {
		t.Errorf("Expected %d keys, got %d", len(events), gate.Len())
	}
}

func TestDedupGate_SameInstantDifferentZone(t *testing.T) {
	gate := NewDedupGate()
	utc := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	ny := utc.In(time.FixedZone("EST", -5*3600))

	if !gate.Accept(testEvent("AAPL", utc, models.SellReversal, 150)) {
		t.Fatal("Expected first event to be accepted")
	}
	if gate.Accept(testEvent("AAPL", ny, models.SellReversal, 150)) {
		t.Error("Expected the same instant in another zone to be a duplicate")
	}
}

func TestDedupGate_SeenAndReset(t *testing.T) {
	gate := NewDedupGate()
	e := testEvent("TSLA", time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC), models.SellBreakoutFailure, 240)

	if gate.Seen(e.Key()) {
		t.Error("Expected key not to be seen before Accept")
	}
	// Seen must not record
	if !gate.Accept(e) {
		t.Fatal("Expected event to be accepted")
	}
	if !gate.Seen(e.Key()) {
		t.Error("Expected key to be seen after Accept")
	}

	gate.Reset()

	if gate.Len() != 0 {
		t.Errorf("Expected empty gate after reset, got %d", gate.Len())
	}
	if !gate.Accept(e) {
		t.Error("Expected event to be accepted again after reset")
	}
}

func TestDedupGate_Concurrent(t *testing.T) {
	gate := NewDedupGate()
	ts := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	symbols := []string{"AAPL", "MSFT", "NVDA", "AMD", "TSLA"}

	var mu sync.Mutex
	accepted := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, s := range symbols {
				if gate.Accept(testEvent(s, ts, models.BuyReversal, 100)) {
					mu.Lock()
					accepted[s]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	for _, s := range symbols {
		if accepted[s] != 1 {
			t.Errorf("Expected %s to be accepted once, got %d", s, accepted[s])
		}
	}
}
