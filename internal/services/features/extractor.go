package features

import (
	"math"
	"sort"

	"TradeGate/internal/domain/models"
)

// logEpsilon keeps the log transform defined for zero closes.
const logEpsilon = 1e-9

// LogCloses returns the natural log of each close price.
func LogCloses(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = math.Log(c.Close + logEpsilon)
	}
	return out
}

// Diffs computes first differences d_t = x_t - x_{t-1}.
// It returns a slice of length len(xs)-1, or nil if insufficient data.
func Diffs(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

// OLSSlope fits an ordinary-least-squares line of ys against a 0-based
// index and returns its slope. The denominator carries a small epsilon so
// a single point never divides by zero.
func OLSSlope(ys []float64) float64 {
	n := len(ys)
	if n == 0 {
		return 0
	}
	xMean := float64(n-1) / 2
	yMean := Mean(ys)
	num := 0.0
	den := 0.0
	for i, y := range ys {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	return num / (den + logEpsilon)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, or 0 for fewer
// than 2 samples.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)))
}

// SampleStdDev returns the Bessel-corrected standard deviation, or 0 for
// fewer than 2 samples.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Mean(xs)
	sum2 := 0.0
	for _, x := range xs {
		d := x - mean
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(len(xs)-1))
}

// RollingStd computes a rolling sample standard deviation over the given
// window, dropping the first window-1 undefined positions. The result has
// length len(xs)-window+1, or nil if the series is shorter than the window.
func RollingStd(xs []float64, window int) []float64 {
	if window < 2 || len(xs) < window {
		return nil
	}
	out := make([]float64, 0, len(xs)-window+1)
	for i := window; i <= len(xs); i++ {
		out = append(out, SampleStdDev(xs[i-window:i]))
	}
	return out
}

// Quantile returns the p-quantile of xs using linear interpolation between
// order statistics. p is clamped to [0,1]; an empty slice yields 0.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	p = Clamp01(p)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
