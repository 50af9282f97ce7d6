package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// MeanReversionEngine computes a rolling mean/deviation envelope and Z-score,
// and classifies each timestamp.
type MeanReversionEngine struct {
	params MeanReversionParams
	rules  []rule[model.Value]
}

// NewMeanReversionEngine builds an engine from validated params.
func NewMeanReversionEngine(p MeanReversionParams) *MeanReversionEngine {
	return &MeanReversionEngine{params: p, rules: meanReversionRules(p.BandK)}
}

// Compute runs the engine over the close prices.
func (e *MeanReversionEngine) Compute(closes []float64) EngineResult {
	n := len(closes)
	k := e.params.BandK
	sma := make([]model.Value, n)
	std := make([]model.Value, n)
	upper := make([]model.Value, n)
	lower := make([]model.Value, n)
	z := make([]model.Value, n)
	signals := make([]model.Signal, n)

	for i, st := range calculator.Rolling(closes, e.params.Window) {
		sma[i], std[i] = st.Mean, st.Std
		mean, okM := st.Mean.Get()
		dev, okD := st.Std.Get()
		if okM && okD {
			upper[i] = model.Some(mean + k*dev)
			lower[i] = model.Some(mean - k*dev)
			if dev != 0 {
				z[i] = model.Some((closes[i] - mean) / dev)
			}
		}
		signals[i] = classify(e.rules, z[i])
	}

	return EngineResult{
		Columns: map[string][]model.Value{
			model.ColSMA:       sma,
			model.ColSTD:       std,
			model.ColUpperBand: upper,
			model.ColLowerBand: lower,
			model.ColZScore:    z,
		},
		Signals: signals,
	}
}
