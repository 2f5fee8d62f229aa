package indicator

// Calculator is the interface for streaming indicators fed one value at a time
type Calculator interface {
	// Name returns the unique name of this indicator (e.g., "ema_5", "macd_12_26_9")
	Name() string

	// Update feeds the next input value and returns the updated indicator value
	Update(value float64) float64

	// Value returns the current indicator value
	// Returns 0 and error if nothing has been processed
	Value() (float64, error)

	// Reset clears the indicator state
	Reset()

	// IsReady returns true if the indicator has produced a value
	IsReady() bool
}

var (
	_ Calculator = (*EMA)(nil)
	_ Calculator = (*MACD)(nil)
)
