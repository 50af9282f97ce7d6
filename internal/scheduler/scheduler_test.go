package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/strategy"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

type countingRecorder struct {
	recorder.NoopRecorder
	runs int
}

func (c *countingRecorder) RecordAnalysis(_ *model.Analysis) (int64, error) {
	c.runs++
	return int64(c.runs), nil
}

func newTestScheduler(fetcher collector.Fetcher) (*Scheduler, *fakeSender, *countingRecorder) {
	col := collector.NewCollector(fetcher, "SPY", 60)
	col.MaxRetries = 0
	sender := &fakeSender{}
	rec := &countingRecorder{}
	s := NewScheduler(context.Background(), col, strategy.DefaultParams(), sender, rec, metrics.New())
	return s, sender, rec
}

func TestRunNow_PublishesNotifiesAndRecords(t *testing.T) {
	s, sender, rec := newTestScheduler(&collector.MockFetcher{Price: 5000})
	assert.Nil(t, s.Latest())

	a, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, a.Len())
	assert.Same(t, a, s.Latest())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "SignalSentinel")
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RunsTotal.WithLabelValues("ok")))
}

func TestRunNow_CollectFailure(t *testing.T) {
	boom := errors.New("boom")
	s, sender, rec := newTestScheduler(&collector.MockFetcher{Errs: []error{boom}})

	_, err := s.RunNow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, s.Latest())
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "data collection failed")
	assert.Zero(t, rec.runs)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RunsTotal.WithLabelValues("error")))
}

func TestHandleCommand(t *testing.T) {
	s, sender, _ := newTestScheduler(&collector.MockFetcher{Price: 100})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/latest"), "No analysis available")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/signals")

	assert.Empty(t, s.HandleCommand(ctx, "/signals"))
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, s.HandleCommand(ctx, "/latest"), "Close:")
	assert.Contains(t, s.HandleCommand(ctx, "/history@SignalSentinelBot"), "SPY")
}

func TestRegister_RejectsBadCron(t *testing.T) {
	s, _, _ := newTestScheduler(&collector.MockFetcher{Price: 100})
	assert.Error(t, s.Register("not a cron"))
	assert.NoError(t, s.Register("0 0 22 * * 1-5"))
}
