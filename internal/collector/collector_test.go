package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/model"
)

func newTestCollector(f Fetcher) *Collector {
	c := NewCollector(f, "SPX500", 60)
	c.Backoff = time.Millisecond
	return c
}

func TestCollect_SortsAndValidates(t *testing.T) {
	bars := generateMockBars(100, 10)
	bars[0], bars[9] = bars[9], bars[0]
	f := &MockFetcher{Bars: bars}

	series, err := newTestCollector(f).Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, series.Len())
	assert.Equal(t, "SPX500", series.Symbol)
	for i := 1; i < series.Len(); i++ {
		assert.True(t, series.Bars[i].Time.After(series.Bars[i-1].Time))
	}
	// the fetcher's slice is left untouched
	assert.True(t, bars[0].Time.After(bars[1].Time))
}

func TestCollect_RetriesThenSucceeds(t *testing.T) {
	f := &MockFetcher{Price: 100, Errs: []error{errors.New("timeout"), errors.New("502")}}
	series, err := newTestCollector(f).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, series.Len())
	assert.Equal(t, 3, f.Calls)
}

func TestCollect_SourceErrorAfterRetries(t *testing.T) {
	boom := errors.New("connection refused")
	f := &MockFetcher{Errs: []error{boom, boom, boom, boom, boom}}
	_, err := newTestCollector(f).Collect(context.Background())

	var se *SourceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "mock", se.Source)
	assert.Equal(t, "SPX500", se.Symbol)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 4, f.Calls)
}

func TestCollect_DataUnavailable(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		_, err := newTestCollector(&MockFetcher{Bars: []model.OHLCV{}}).Collect(context.Background())
		assert.ErrorIs(t, err, ErrDataUnavailable)
	})
	t.Run("not retried", func(t *testing.T) {
		f := &MockFetcher{Errs: []error{ErrDataUnavailable}}
		_, err := newTestCollector(f).Collect(context.Background())
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.Equal(t, 1, f.Calls)
	})
}

func TestCollect_InvalidSeries(t *testing.T) {
	bars := generateMockBars(100, 5)
	bars[3].Time = bars[2].Time
	_, err := newTestCollector(&MockFetcher{Bars: bars}).Collect(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidSeries)
}

func TestCollect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &MockFetcher{Errs: []error{errors.New("boom")}}
	c := newTestCollector(f)
	c.Backoff = time.Hour
	_, err := c.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFetcher(t *testing.T) {
	tests := []struct {
		opts    Options
		name    string
		wantErr bool
	}{
		{Options{}, "yahoo", false},
		{Options{Provider: "rest", BaseURL: "http://localhost"}, "rest", false},
		{Options{Provider: "rest"}, "", true},
		{Options{Provider: "csv", CSVPath: "data/{symbol}.csv"}, "csv", false},
		{Options{Provider: "csv"}, "", true},
		{Options{Provider: "mock"}, "mock", false},
		{Options{Provider: "bloomberg"}, "", true},
	}
	for _, tt := range tests {
		f, err := NewFetcher(tt.opts)
		if tt.wantErr {
			assert.Error(t, err, tt.opts.Provider)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.name, f.Name())
	}
}
