package calculator

import (
	"errors"
	"math"

	"SignalSentinel/internal/model"
)

// TradingDays52w is the number of daily bars in a 52-week lookback.
const TradingDays52w = 252

// TrailingRange scans the most recent lookback bars and returns the high and low.
func TrailingRange(bars []model.OHLCV, lookback int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	n := len(bars)
	start := n - lookback
	if start < 0 || lookback <= 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		// advisory fields fall back to the close when the provider left them empty
		h, l := bars[i].High, bars[i].Low
		if h == 0 {
			h = bars[i].Close
		}
		if l == 0 {
			l = bars[i].Close
		}
		high = math.Max(high, h)
		low = math.Min(low, l)
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
