package calculator

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// Smoothing selects how average gains and losses are computed for RSI.
type Smoothing string

const (
	// SmoothingWilder seeds with the simple mean of the first period changes,
	// then applies avg = (prev*(period-1) + x) / period.
	SmoothingWilder Smoothing = "wilder"
	// SmoothingEWM is an exponential average with alpha = 1/period seeded
	// from the first change.
	SmoothingEWM Smoothing = "ewm"
	// SmoothingSMA is a plain trailing mean of the last period changes.
	SmoothingSMA Smoothing = "sma"
)

// ParseSmoothing validates a smoothing name. Empty means Wilder.
func ParseSmoothing(s string) (Smoothing, error) {
	switch Smoothing(s) {
	case "", SmoothingWilder:
		return SmoothingWilder, nil
	case SmoothingEWM, SmoothingSMA:
		return Smoothing(s), nil
	}
	return "", fmt.Errorf("unknown RSI smoothing %q", s)
}

// RSI computes the Relative Strength Index for every index of closes.
// Entry i is defined once period single-bar changes exist (i >= period).
// It is 100 when the average loss is zero and the average gain is positive,
// and undefined when both are zero.
func RSI(closes []float64, period int, smoothing Smoothing) []model.Value {
	out := make([]model.Value, len(closes))
	if period < 1 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	p := float64(period)
	switch smoothing {
	case SmoothingSMA:
		for i := period; i < len(closes); i++ {
			var sumGain, sumLoss float64
			for j := i - period + 1; j <= i; j++ {
				sumGain += gains[j]
				sumLoss += losses[j]
			}
			out[i] = rsiValue(sumGain/p, sumLoss/p)
		}
	case SmoothingEWM:
		avgGain, avgLoss := gains[1], losses[1]
		for i := 2; i < len(closes); i++ {
			avgGain = avgGain + (gains[i]-avgGain)/p
			avgLoss = avgLoss + (losses[i]-avgLoss)/p
			if i >= period {
				out[i] = rsiValue(avgGain, avgLoss)
			}
		}
		if period == 1 {
			out[1] = rsiValue(gains[1], losses[1])
		}
	default:
		var avgGain, avgLoss float64
		for i := 1; i <= period; i++ {
			avgGain += gains[i]
			avgLoss += losses[i]
		}
		avgGain /= p
		avgLoss /= p
		out[period] = rsiValue(avgGain, avgLoss)
		for i := period + 1; i < len(closes); i++ {
			avgGain = (avgGain*(p-1) + gains[i]) / p
			avgLoss = (avgLoss*(p-1) + losses[i]) / p
			out[i] = rsiValue(avgGain, avgLoss)
		}
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) model.Value {
	if avgLoss == 0 {
		if avgGain > 0 {
			return model.Some(100)
		}
		return model.None
	}
	rs := avgGain / avgLoss
	return model.Some(100.0 - 100.0/(1.0+rs))
}
