package series

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
)

var base = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)

func bar(symbol string, i int, px float64) models.Bar {
	return models.Bar{
		Symbol:    symbol,
		Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
		Open:      px,
		High:      px + 1,
		Low:       px - 1,
		Close:     px,
		Volume:    1000,
	}
}

func window(symbol string, from, to int) []models.Bar {
	bars := make([]models.Bar, 0, to-from)
	for i := from; i < to; i++ {
		bars = append(bars, bar(symbol, i, 100+float64(i)))
	}
	return bars
}

func TestStore_GetOrCreate(t *testing.T) {
	st := NewStore(10)

	s, err := st.GetOrCreate("AAPL")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if s.Symbol != "AAPL" {
		t.Errorf("Expected symbol 'AAPL', got '%s'", s.Symbol)
	}

	s2, _ := st.GetOrCreate("AAPL")
	if s != s2 {
		t.Error("Expected same series instance for same symbol")
	}

	if _, err := st.GetOrCreate(""); !errors.Is(err, models.ErrInvalidSymbol) {
		t.Errorf("Expected ErrInvalidSymbol, got %v", err)
	}
}

func TestStore_DefaultMaxBars(t *testing.T) {
	if NewStore(0).MaxBars() != DefaultMaxBars {
		t.Errorf("Expected default max bars %d", DefaultMaxBars)
	}
}

func TestSeries_Upsert(t *testing.T) {
	st := NewStore(10)
	s, _ := st.GetOrCreate("AAPL")

	if err := s.Upsert(bar("AAPL", 0, 100)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(bar("AAPL", 1, 101)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// same timestamp replaces the forming bar
	if err := s.Upsert(bar("AAPL", 1, 101.5)); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 bars, got %d", s.Len())
	}
	last, ok := s.Last()
	if !ok || last.Close != 101.5 {
		t.Errorf("Expected last close 101.5, got %v", last.Close)
	}

	err := s.Upsert(bar("AAPL", 0, 99))
	if !errors.Is(err, models.ErrNonMonotonicTimestamp) {
		t.Errorf("Expected ErrNonMonotonicTimestamp, got %v", err)
	}

	err = s.Upsert(bar("MSFT", 2, 300))
	if !errors.Is(err, models.ErrInvalidSymbol) {
		t.Errorf("Expected ErrInvalidSymbol, got %v", err)
	}

	bad := bar("AAPL", 2, 102)
	bad.Volume = -1
	if err := s.Upsert(bad); !errors.Is(err, models.ErrInvalidVolume) {
		t.Errorf("Expected ErrInvalidVolume, got %v", err)
	}
}

func TestSeries_MergeOverlappingWindows(t *testing.T) {
	st := NewStore(100)

	n, err := st.Merge("AAPL", window("AAPL", 0, 20))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if n != 20 {
		t.Errorf("Expected 20 applied, got %d", n)
	}

	// next poll returns an overlapping window whose last bar is new
	n, err = st.Merge("AAPL", window("AAPL", 10, 25))
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	// bar 19 replaced, bars 20..24 appended
	if n != 6 {
		t.Errorf("Expected 6 applied, got %d", n)
	}

	bars := st.Snapshot("AAPL")
	if len(bars) != 25 {
		t.Fatalf("Expected 25 bars, got %d", len(bars))
	}
	if err := models.ValidateSeries(bars); err != nil {
		t.Errorf("Stored series is not ordered: %v", err)
	}
}

func TestSeries_MergeRejectsInvalidWindow(t *testing.T) {
	st := NewStore(100)

	bars := window("AAPL", 0, 5)
	bars[3], bars[4] = bars[4], bars[3]
	if _, err := st.Merge("AAPL", bars); !errors.Is(err, models.ErrNonMonotonicTimestamp) {
		t.Errorf("Expected ErrNonMonotonicTimestamp, got %v", err)
	}

	if _, err := st.Merge("AAPL", window("MSFT", 0, 5)); !errors.Is(err, models.ErrInvalidSymbol) {
		t.Errorf("Expected ErrInvalidSymbol, got %v", err)
	}

	if got := st.Snapshot("AAPL"); len(got) != 0 {
		t.Errorf("Expected nothing stored after rejected merges, got %d bars", len(got))
	}
}

func TestSeries_TrimsOldestBars(t *testing.T) {
	st := NewStore(10)

	if _, err := st.Merge("AAPL", window("AAPL", 0, 25)); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	bars := st.Snapshot("AAPL")
	if len(bars) != 10 {
		t.Fatalf("Expected 10 bars, got %d", len(bars))
	}
	if !bars[0].Timestamp.Equal(base.Add(15 * 5 * time.Minute)) {
		t.Errorf("Expected oldest kept bar to be bar 15, got %s", bars[0].Timestamp)
	}
}

func TestSeries_SnapshotIsCopy(t *testing.T) {
	st := NewStore(10)
	st.Merge("AAPL", window("AAPL", 0, 3))

	snap := st.Snapshot("AAPL")
	snap[0].Close = -1

	if st.Snapshot("AAPL")[0].Close == -1 {
		t.Error("Expected snapshot mutation not to reach the store")
	}
	if st.Snapshot("UNKNOWN") != nil {
		t.Error("Expected nil snapshot for unknown symbol")
	}
}

func TestStore_SymbolsAndRemove(t *testing.T) {
	st := NewStore(10)
	for _, s := range []string{"MSFT", "AAPL", "NVDA"} {
		st.GetOrCreate(s)
	}

	got := st.Symbols()
	want := []string{"AAPL", "MSFT", "NVDA"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Symbols()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	st.Remove("MSFT")
	if st.Count() != 2 || st.Get("MSFT") != nil {
		t.Error("Expected MSFT to be removed")
	}
}

func TestStore_ConcurrentMerge(t *testing.T) {
	st := NewStore(50)
	symbols := []string{"AAPL", "MSFT", "NVDA", "AMD"}

	var wg sync.WaitGroup
	for _, sym := range symbols {
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(sym string) {
				defer wg.Done()
				if _, err := st.Merge(sym, window(sym, 0, 30)); err != nil {
					t.Errorf("Merge(%s) error = %v", sym, err)
				}
			}(sym)
		}
	}
	wg.Wait()

	for _, sym := range symbols {
		if n := len(st.Snapshot(sym)); n != 30 {
			t.Errorf("Expected 30 bars for %s, got %d", sym, n)
		}
	}
}
