package calculator

import (
	"iter"
	"math"

	"SignalSentinel/internal/model"
)

// WindowStat holds the aggregates of one trailing window.
type WindowStat struct {
	Mean model.Value
	Std  model.Value // sample (N-1) standard deviation
}

// Rolling yields, for every index of values, the mean and sample standard
// deviation of the trailing window ending at that index. Indices with fewer
// than window observations yield undefined aggregates. The sequence reads
// values lazily and can be ranged over any number of times.
func Rolling(values []float64, window int) iter.Seq2[int, WindowStat] {
	return func(yield func(int, WindowStat) bool) {
		for i := range values {
			var st WindowStat
			if window >= 1 && i+1 >= window {
				st = windowStat(values[i+1-window : i+1])
			}
			if !yield(i, st) {
				return
			}
		}
	}
}

// RollingMean materializes the rolling mean column.
func RollingMean(values []float64, window int) []model.Value {
	out := make([]model.Value, len(values))
	for i, st := range Rolling(values, window) {
		out[i] = st.Mean
	}
	return out
}

// RollingStd materializes the rolling sample standard deviation column.
func RollingStd(values []float64, window int) []model.Value {
	out := make([]model.Value, len(values))
	for i, st := range Rolling(values, window) {
		out[i] = st.Std
	}
	return out
}

// windowStat uses the corrected two-pass algorithm. A window of identical
// values reports exactly its value and a zero deviation.
func windowStat(w []float64) WindowStat {
	lo, hi := w[0], w[0]
	sum := 0.0
	for _, v := range w {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		st := WindowStat{Mean: model.Some(lo)}
		if len(w) > 1 {
			st.Std = model.Some(0)
		}
		return st
	}

	n := float64(len(w))
	mean := sum / n
	st := WindowStat{Mean: model.Some(mean)}
	if len(w) < 2 {
		return st
	}
	var sq, dev float64
	for _, v := range w {
		d := v - mean
		sq += d * d
		dev += d
	}
	variance := (sq - dev*dev/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	st.Std = model.Some(math.Sqrt(variance))
	return st
}
