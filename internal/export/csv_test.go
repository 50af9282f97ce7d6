package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

func TestWriteCSV(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 102, 101, 103}
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Close: c}
	}
	p := strategy.DefaultParams()
	p.MeanReversion.Window = 2
	a, err := strategy.Analyze(&model.PriceSeries{Symbol: "SPY", Bars: bars}, p)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, a))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, []string{
		"Date", "Close",
		"LowerBand", "Momentum_1D", "Momentum_5D", "RSI", "SMA", "STD", "UpperBand", "ZScore",
		"MomentumSignal", "MeanReversionSignal",
	}, recs[0])

	first := recs[1]
	assert.Equal(t, "2024-01-01", first[0])
	assert.Equal(t, "100", first[1])
	for _, c := range first[2:10] {
		assert.Empty(t, c)
	}
	assert.Equal(t, "NEUTRAL", first[10])

	second := recs[2]
	assert.Equal(t, "0.02", second[3])
	assert.Equal(t, "101", second[6])
	assert.Empty(t, second[4])
}

func TestWriteCSV_Nil(t *testing.T) {
	assert.Error(t, WriteCSV(&bytes.Buffer{}, nil))
}
