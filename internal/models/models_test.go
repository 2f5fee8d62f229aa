package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestBar_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		bar     *Bar
		wantErr error
	}{
		{
			name:    "valid bar",
			bar:     &Bar{Symbol: "TSLA", Timestamp: now, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
			wantErr: nil,
		},
		{
			name:    "zero volume is valid",
			bar:     &Bar{Symbol: "TSLA", Timestamp: now, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 0},
			wantErr: nil,
		},
		{
			name:    "zero timestamp",
			bar:     &Bar{Symbol: "TSLA", Open: 100, High: 101, Low: 99, Close: 100.5},
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "high below low",
			bar:     &Bar{Symbol: "TSLA", Timestamp: now, Open: 100, High: 98, Low: 99, Close: 100.5},
			wantErr: ErrInvalidBar,
		},
		{
			name:    "negative volume",
			bar:     &Bar{Symbol: "TSLA", Timestamp: now, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: -1},
			wantErr: ErrInvalidVolume,
		},
		{
			name:    "NaN close",
			bar:     &Bar{Symbol: "TSLA", Timestamp: now, Open: 100, High: 101, Low: 99, Close: math.NaN()},
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Bar.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeries(t *testing.T) {
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	bar := func(i int) Bar {
		return Bar{Symbol: "TSLA", Timestamp: start.Add(time.Duration(i) * 5 * time.Minute), Open: 1, High: 2, Low: 1, Close: 1.5, Volume: 10}
	}

	if err := ValidateSeries(nil); err != nil {
		t.Errorf("empty series should be valid, got %v", err)
	}

	ok := []Bar{bar(0), bar(1), bar(2)}
	if err := ValidateSeries(ok); err != nil {
		t.Errorf("expected valid series, got %v", err)
	}

	dup := []Bar{bar(0), bar(1), bar(1)}
	if err := ValidateSeries(dup); !errors.Is(err, ErrNonMonotonicTimestamp) {
		t.Errorf("expected ErrNonMonotonicTimestamp for duplicate timestamp, got %v", err)
	}

	backwards := []Bar{bar(2), bar(1)}
	if err := ValidateSeries(backwards); !errors.Is(err, ErrNonMonotonicTimestamp) {
		t.Errorf("expected ErrNonMonotonicTimestamp, got %v", err)
	}

	neg := []Bar{bar(0), bar(1)}
	neg[1].Volume = -5
	if err := ValidateSeries(neg); !errors.Is(err, ErrInvalidVolume) {
		t.Errorf("expected ErrInvalidVolume, got %v", err)
	}
}

func TestSignalKind(t *testing.T) {
	for _, k := range AllSignalKinds {
		if !k.Valid() {
			t.Errorf("expected %s to be valid", k)
		}
	}
	if SignalKind("HOLD").Valid() {
		t.Error("unexpected valid kind HOLD")
	}
	if !BuyReversal.IsBuy() || !BuyBreakout.IsBuy() {
		t.Error("buy kinds should report IsBuy")
	}
	if SellReversal.IsBuy() || SellBreakoutFailure.IsBuy() {
		t.Error("sell kinds should not report IsBuy")
	}
}

func TestSignalEvent_Key(t *testing.T) {
	ts := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	e1 := SignalEvent{ID: "a", Symbol: "TSLA", BarTimestamp: ts, Kind: BuyReversal, Price: 100}
	e2 := SignalEvent{ID: "b", Symbol: "TSLA", BarTimestamp: ts.In(time.FixedZone("EST", -5*3600)), Kind: BuyReversal, Price: 101}
	e3 := SignalEvent{ID: "c", Symbol: "TSLA", BarTimestamp: ts, Kind: BuyBreakout, Price: 100}

	if e1.Key() != e2.Key() {
		t.Errorf("same instant in different zones should share a key: %v vs %v", e1.Key(), e2.Key())
	}
	if e1.Key() == e3.Key() {
		t.Error("different kinds must not share a key")
	}
	want := "BUY_REVERSAL:TSLA:" + "1704205800000000000"
	if got := e1.Key().String(); got != want {
		t.Errorf("Key().String() = %s, want %s", got, want)
	}
}

func TestSignalEvent_Validate(t *testing.T) {
	ts := time.Now()
	valid := SignalEvent{ID: "x", Symbol: "TSLA", BarTimestamp: ts, Kind: SellReversal, Price: 10}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid event, got %v", err)
	}

	noID := valid
	noID.ID = ""
	if !errors.Is(noID.Validate(), ErrInvalidEventID) {
		t.Error("expected ErrInvalidEventID")
	}

	badKind := valid
	badKind.Kind = "HOLD"
	if !errors.Is(badKind.Validate(), ErrInvalidSignalKind) {
		t.Error("expected ErrInvalidSignalKind")
	}
}
