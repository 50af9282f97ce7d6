package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(closes ...float64) []OHLCV {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]OHLCV, len(closes))
	for i, c := range closes {
		out[i] = OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return out
}

func TestValidate_Accepts(t *testing.T) {
	s := &PriceSeries{Symbol: "SPY", Bars: bars(100, 101, 0, 99)}
	require.NoError(t, s.Validate())
}

func TestValidate_Rejects(t *testing.T) {
	dup := bars(1, 2, 3)
	dup[2].Time = dup[1].Time
	unordered := bars(1, 2, 3)
	unordered[1].Time, unordered[2].Time = unordered[2].Time, unordered[1].Time
	missing := bars(1, 2, 3)
	missing[1].Close = math.NaN()

	tests := []struct {
		name  string
		s     *PriceSeries
		index int
	}{
		{"nil", nil, -1},
		{"empty", &PriceSeries{}, -1},
		{"duplicate", &PriceSeries{Bars: dup}, 2},
		{"out of order", &PriceSeries{Bars: unordered}, 2},
		{"missing close", &PriceSeries{Bars: missing}, 1},
		{"negative close", &PriceSeries{Bars: bars(1, -2)}, 1},
		{"infinite close", &PriceSeries{Bars: bars(1, math.Inf(1))}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSeries))
			var ise *InvalidSeriesError
			require.True(t, errors.As(err, &ise))
			assert.Equal(t, tt.index, ise.Index)
		})
	}
}

func TestFrame_SetRejectsMisalignedColumn(t *testing.T) {
	s := &PriceSeries{Bars: bars(1, 2, 3)}
	f := NewIndicatorFrame(s.Times())
	assert.Error(t, f.Set("X", []Value{Some(1)}))
	require.NoError(t, f.Set("X", []Value{None, Some(2), Some(3)}))
	assert.Equal(t, None, f.At(0, "X"))
	assert.Equal(t, Some(3), f.At(2, "X"))
	assert.Equal(t, None, f.At(1, "missing"))
	assert.Equal(t, []string{"X"}, f.Names())
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal([]Value{None, Some(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `[null, 1.5]`, string(data))

	var back []Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Value{None, Some(1.5)}, back)
}

func TestSignal_Text(t *testing.T) {
	for _, s := range []Signal{Neutral, Buy, Sell} {
		parsed, err := ParseSignal(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseSignal("HOLD")
	assert.Error(t, err)
}
