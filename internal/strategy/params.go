package strategy

import (
	"errors"
	"fmt"

	"SignalSentinel/internal/calculator"
)

// ErrInvalidParams is returned when a parameter set cannot drive the engines.
var ErrInvalidParams = errors.New("invalid strategy params")

// MomentumParams configures the momentum engine.
type MomentumParams struct {
	ShortPeriod  int     `yaml:"short_period" json:"short_period"`
	LongPeriod   int     `yaml:"long_period" json:"long_period"` // drives the signal
	RSIPeriod    int     `yaml:"rsi_period" json:"rsi_period"`
	RSISmoothing string  `yaml:"rsi_smoothing" json:"rsi_smoothing"`
	RSILower     float64 `yaml:"rsi_lower" json:"rsi_lower"`
	RSIUpper     float64 `yaml:"rsi_upper" json:"rsi_upper"`
}

// MeanReversionParams configures the mean-reversion engine. BandK is used
// both for the bands and for the Z-score thresholds.
type MeanReversionParams struct {
	Window int     `yaml:"window" json:"window"`
	BandK  float64 `yaml:"band_k" json:"band_k"`
}

// Params groups both engines' parameters.
type Params struct {
	Momentum      MomentumParams      `yaml:"momentum" json:"momentum"`
	MeanReversion MeanReversionParams `yaml:"mean_reversion" json:"mean_reversion"`
}

// DefaultParams returns the conventional settings: 1D/5D momentum, RSI(14)
// with Wilder smoothing and 30/70 thresholds, 20-bar bands at 1.5 sigma.
func DefaultParams() Params {
	return Params{
		Momentum: MomentumParams{
			ShortPeriod:  1,
			LongPeriod:   5,
			RSIPeriod:    14,
			RSISmoothing: string(calculator.SmoothingWilder),
			RSILower:     30,
			RSIUpper:     70,
		},
		MeanReversion: MeanReversionParams{
			Window: 20,
			BandK:  1.5,
		},
	}
}

// WithDefaults fills zero-valued fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	m := &p.Momentum
	if m.ShortPeriod == 0 {
		m.ShortPeriod = d.Momentum.ShortPeriod
	}
	if m.LongPeriod == 0 {
		m.LongPeriod = d.Momentum.LongPeriod
	}
	if m.RSIPeriod == 0 {
		m.RSIPeriod = d.Momentum.RSIPeriod
	}
	if m.RSISmoothing == "" {
		m.RSISmoothing = d.Momentum.RSISmoothing
	}
	if m.RSILower == 0 && m.RSIUpper == 0 {
		m.RSILower, m.RSIUpper = d.Momentum.RSILower, d.Momentum.RSIUpper
	}
	if p.MeanReversion.Window == 0 {
		p.MeanReversion.Window = d.MeanReversion.Window
	}
	if p.MeanReversion.BandK == 0 {
		p.MeanReversion.BandK = d.MeanReversion.BandK
	}
	return p
}

// Validate checks every parameter is usable.
func (p Params) Validate() error {
	m := p.Momentum
	if m.ShortPeriod < 1 || m.LongPeriod < 1 {
		return fmt.Errorf("%w: momentum periods must be >= 1 (got %d, %d)", ErrInvalidParams, m.ShortPeriod, m.LongPeriod)
	}
	if m.RSIPeriod < 1 {
		return fmt.Errorf("%w: rsi_period must be >= 1", ErrInvalidParams)
	}
	if _, err := calculator.ParseSmoothing(m.RSISmoothing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if m.RSILower < 0 || m.RSIUpper > 100 || m.RSILower >= m.RSIUpper {
		return fmt.Errorf("%w: rsi thresholds must satisfy 0 <= lower < upper <= 100 (got %.1f, %.1f)", ErrInvalidParams, m.RSILower, m.RSIUpper)
	}
	if p.MeanReversion.Window < 1 {
		return fmt.Errorf("%w: window must be >= 1", ErrInvalidParams)
	}
	if p.MeanReversion.BandK <= 0 {
		return fmt.Errorf("%w: band_k must be positive", ErrInvalidParams)
	}
	return nil
}
