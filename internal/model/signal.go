package model

import (
	"fmt"
	"time"
)

// Signal is the per-timestamp classification produced by an indicator engine.
// It carries no memory of earlier timestamps.
type Signal int

const (
	Neutral Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// ParseSignal is the inverse of String.
func ParseSignal(s string) (Signal, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "NEUTRAL", "":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("unknown signal %q", s)
}

func (s Signal) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signal) UnmarshalText(text []byte) error {
	v, err := ParseSignal(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Engine names one of the indicator pipelines.
type Engine string

const (
	EngineMomentum      Engine = "momentum"
	EngineMeanReversion Engine = "meanrev"
)

// Thresholds carries the parameters a chart needs to annotate an analysis.
type Thresholds struct {
	MomentumPeriods []int   `json:"momentum_periods"`
	RSIPeriod       int     `json:"rsi_period"`
	RSISmoothing    string  `json:"rsi_smoothing"`
	RSILower        float64 `json:"rsi_lower"`
	RSIUpper        float64 `json:"rsi_upper"`
	Window          int     `json:"window"`
	BandK           float64 `json:"band_k"`
}

// Analysis is the full output of one pipeline run over a PriceSeries.
type Analysis struct {
	Symbol        string          `json:"symbol"`
	Closes        []float64       `json:"closes"`
	Frame         *IndicatorFrame `json:"frame"`
	Momentum      []Signal        `json:"momentum"`
	MeanReversion []Signal        `json:"mean_reversion"`
	Thresholds    Thresholds      `json:"thresholds"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// Len returns the number of rows.
func (a *Analysis) Len() int { return a.Frame.Len() }

// Signals returns the signal column of one engine.
func (a *Analysis) Signals(e Engine) []Signal {
	if e == EngineMeanReversion {
		return a.MeanReversion
	}
	return a.Momentum
}

// Snapshot is one row of an Analysis.
type Snapshot struct {
	Time          time.Time        `json:"time"`
	Close         float64          `json:"close"`
	Indicators    map[string]Value `json:"indicators"`
	Momentum      Signal           `json:"momentum"`
	MeanReversion Signal           `json:"mean_reversion"`
}

// At returns row i as a Snapshot.
func (a *Analysis) At(i int) Snapshot {
	return Snapshot{
		Time:          a.Frame.Times[i],
		Close:         a.Closes[i],
		Indicators:    a.Frame.Row(i),
		Momentum:      a.Momentum[i],
		MeanReversion: a.MeanReversion[i],
	}
}

// Latest returns the last row. The analysis must not be empty.
func (a *Analysis) Latest() Snapshot { return a.At(a.Len() - 1) }

// Count tallies the signals of one engine.
func (a *Analysis) Count(e Engine) map[Signal]int {
	counts := map[Signal]int{Neutral: 0, Buy: 0, Sell: 0}
	for _, s := range a.Signals(e) {
		counts[s]++
	}
	return counts
}
