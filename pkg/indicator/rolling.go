package indicator

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// RollingMean returns the trailing simple mean over window values, current value included.
// The first window-1 entries are NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window < 1 || len(xs) < window {
		return out
	}
	if window == 1 {
		copy(out, xs)
		return out
	}

	sma := talib.Sma(xs, window)
	copy(out[window-1:], sma[window-1:])
	return out
}

// RollingMax returns the trailing maximum over window values, current value included.
// The first window-1 entries are NaN.
func RollingMax(xs []float64, window int) []float64 {
	out := nanSeries(len(xs))
	if window < 1 || len(xs) < window {
		return out
	}
	if window == 1 {
		copy(out, xs)
		return out
	}

	highest := talib.Max(xs, window)
	copy(out[window-1:], highest[window-1:])
	return out
}

// Shift moves every value n positions later; the first n entries become NaN.
// Shift(RollingMax(h, w), 1)[i] only depends on h[i-w..i-1].
func Shift(xs []float64, n int) []float64 {
	out := nanSeries(len(xs))
	if n < 0 {
		n = 0
	}
	for i := n; i < len(xs); i++ {
		out[i] = xs[i-n]
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
