package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidSeries is returned when a PriceSeries breaks the ingestion contract.
var ErrInvalidSeries = errors.New("invalid price series")

// InvalidSeriesError describes which bar broke the contract and why.
type InvalidSeriesError struct {
	Index  int // -1 when the series as a whole is rejected
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidSeries, e.Reason)
	}
	return fmt.Sprintf("%s: bar %d: %s", ErrInvalidSeries, e.Index, e.Reason)
}

func (e *InvalidSeriesError) Unwrap() error { return ErrInvalidSeries }

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds daily bars for one symbol, strictly ascending by time.
type PriceSeries struct {
	Symbol    string    `json:"symbol"`
	Bars      []OHLCV   `json:"bars"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes projects the close field.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Times projects the bar timestamps.
func (s *PriceSeries) Times() []time.Time {
	times := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		times[i] = b.Time
	}
	return times
}

// Validate checks the series is non-empty, strictly time-ordered and that
// every bar carries a usable close.
func (s *PriceSeries) Validate() error {
	if s == nil || len(s.Bars) == 0 {
		return &InvalidSeriesError{Index: -1, Reason: "series is empty"}
	}
	for i, b := range s.Bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) {
			return &InvalidSeriesError{Index: i, Reason: "close is missing"}
		}
		if b.Close < 0 {
			return &InvalidSeriesError{Index: i, Reason: fmt.Sprintf("negative close %.4f", b.Close)}
		}
		if i == 0 {
			continue
		}
		prev := s.Bars[i-1].Time
		switch {
		case b.Time.Equal(prev):
			return &InvalidSeriesError{Index: i, Reason: "duplicate timestamp " + b.Time.Format(time.RFC3339)}
		case b.Time.Before(prev):
			return &InvalidSeriesError{Index: i, Reason: "timestamp out of order " + b.Time.Format(time.RFC3339)}
		}
	}
	return nil
}
