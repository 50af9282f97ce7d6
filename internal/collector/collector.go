package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"SignalSentinel/internal/model"
)

// Collector fetches a daily series and hands it over validated.
type Collector struct {
	Fetcher    Fetcher
	Symbol     string
	Days       int
	MaxRetries int
	Backoff    time.Duration // first retry delay, doubled per attempt
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, days int) *Collector {
	return &Collector{
		Fetcher:    fetcher,
		Symbol:     symbol,
		Days:       days,
		MaxRetries: 3,
		Backoff:    time.Second,
	}
}

// Collect fetches the configured symbol and returns a validated series.
// A source returning no rows yields ErrDataUnavailable; a source that keeps
// failing yields a *SourceError.
func (c *Collector) Collect(ctx context.Context) (*model.PriceSeries, error) {
	bars, err := c.fetchWithRetry(ctx)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s: %w", c.Fetcher.Name(), c.Symbol, ErrDataUnavailable)
	}

	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	series := &model.PriceSeries{
		Symbol:    c.Symbol,
		Bars:      sorted,
		FetchedAt: time.Now(),
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("collect %s: %w", c.Symbol, err)
	}

	log.Printf("[INFO] collected %d bars for %s from %s (%s ~ %s)", len(sorted), c.Symbol, c.Fetcher.Name(),
		sorted[0].Time.Format("2006-01-02"), sorted[len(sorted)-1].Time.Format("2006-01-02"))
	return series, nil
}

func (c *Collector) fetchWithRetry(ctx context.Context) ([]model.OHLCV, error) {
	var lastErr error
	for i := 0; i <= c.MaxRetries; i++ {
		bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Days)
		if err == nil {
			return bars, nil
		}
		if errors.Is(err, ErrDataUnavailable) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, &SourceError{Source: c.Fetcher.Name(), Symbol: c.Symbol, Err: ctx.Err()}
		}
		lastErr = err
		if i == c.MaxRetries {
			break
		}
		backoff := c.Backoff * time.Duration(1<<uint(i))
		log.Printf("[WARN] %s fetch failed (attempt %d/%d): %v, retrying in %v", c.Fetcher.Name(), i+1, c.MaxRetries+1, err, backoff)
		select {
		case <-ctx.Done():
			return nil, &SourceError{Source: c.Fetcher.Name(), Symbol: c.Symbol, Err: ctx.Err()}
		case <-time.After(backoff):
		}
	}
	return nil, &SourceError{
		Source: c.Fetcher.Name(),
		Symbol: c.Symbol,
		Err:    fmt.Errorf("all %d attempts failed: %w", c.MaxRetries+1, lastErr),
	}
}
