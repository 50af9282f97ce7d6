package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

func analyze(t *testing.T, closes []float64) *model.Analysis {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: c}
	}
	a, err := strategy.Analyze(&model.PriceSeries{Symbol: "SPY", Bars: bars}, strategy.DefaultParams())
	require.NoError(t, err)
	return a
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func TestFormatSignalReport_ShortSeriesShowsNA(t *testing.T) {
	msg := FormatSignalReport(analyze(t, []float64{100, 101, 102}))
	assert.Contains(t, msg, "SPY")
	assert.Contains(t, msg, "Close: 102.00")
	assert.Contains(t, msg, "Momentum_1D: +0.99%")
	assert.Contains(t, msg, "Momentum_5D: n/a")
	assert.Contains(t, msg, "RSI(14, wilder): n/a (30/70)")
	assert.Contains(t, msg, "Z-score: n/a (±1.50)")
	assert.Contains(t, msg, "⚪ NEUTRAL")
}

func TestFormatSignalReport_RisingSeriesSells(t *testing.T) {
	a := analyze(t, rising(30))
	msg := FormatSignalReport(a)
	assert.Contains(t, msg, "RSI(14, wilder): 100.0")
	assert.Contains(t, msg, "🔴 SELL")
	assert.Contains(t, msg, "52w range: 100.00 ~ 129.00 (at 100%)")
	assert.Contains(t, msg, "mean reversion 0 buy / 11 sell")
}

func TestFormatSignalReport_Empty(t *testing.T) {
	assert.Equal(t, "No analysis available yet.", FormatSignalReport(nil))
}

func TestFormatHistory(t *testing.T) {
	a := analyze(t, rising(30))
	msg := FormatHistory(a, 3)
	assert.Contains(t, msg, "Recent signals")
	assert.Contains(t, msg, "2024-03-30  129.00  mom=NEUTRAL  mr=SELL")
	assert.Contains(t, msg, "2024-03-28")
	assert.NotContains(t, msg, "2024-03-27")

	quiet := FormatHistory(analyze(t, []float64{100, 100, 100}), 5)
	assert.Contains(t, quiet, "no signals in the last 3 bars")
}
