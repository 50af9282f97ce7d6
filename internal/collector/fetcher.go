package collector

import (
	"context"
	"errors"
	"fmt"

	"SignalSentinel/internal/model"
)

// ErrDataUnavailable means the source answered but returned no rows.
var ErrDataUnavailable = errors.New("data unavailable")

// SourceError reports a transport or provider failure.
type SourceError struct {
	Source string
	Symbol string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: fetch %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns up to days daily bars, oldest first.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	Name() string
}

// Options selects and configures a data provider.
type Options struct {
	Provider  string // yahoo, rest, csv or mock
	BaseURL   string
	APIKey    string
	CSVPath   string
	Proxy     string
	RateLimit float64
}

// NewFetcher builds the Fetcher named by opts.Provider.
func NewFetcher(opts Options) (Fetcher, error) {
	switch opts.Provider {
	case "", "yahoo":
		return NewYahooFetcher(opts.Proxy, opts.RateLimit), nil
	case "rest":
		if opts.BaseURL == "" {
			return nil, errors.New("rest provider needs a base url")
		}
		return NewRESTFetcher(opts.BaseURL, opts.APIKey, opts.Proxy, opts.RateLimit), nil
	case "csv":
		if opts.CSVPath == "" {
			return nil, errors.New("csv provider needs a path")
		}
		return NewCSVFetcher(opts.CSVPath), nil
	case "mock":
		return &MockFetcher{Price: 5000}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", opts.Provider)
}
