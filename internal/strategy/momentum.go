package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// EngineResult holds the columns and signals produced by one engine.
type EngineResult struct {
	Columns map[string][]model.Value
	Signals []model.Signal
}

// MomentumEngine computes short/long percentage returns and RSI, and
// classifies each timestamp.
type MomentumEngine struct {
	params    MomentumParams
	smoothing calculator.Smoothing
	rules     []rule[momentumRow]
}

// NewMomentumEngine builds an engine from validated params.
func NewMomentumEngine(p MomentumParams) (*MomentumEngine, error) {
	sm, err := calculator.ParseSmoothing(p.RSISmoothing)
	if err != nil {
		return nil, err
	}
	return &MomentumEngine{params: p, smoothing: sm, rules: momentumRules(p)}, nil
}

// Compute runs the engine over the close prices.
func (e *MomentumEngine) Compute(closes []float64) EngineResult {
	short := calculator.PctChange(closes, e.params.ShortPeriod)
	long := calculator.PctChange(closes, e.params.LongPeriod)
	rsi := calculator.RSI(closes, e.params.RSIPeriod, e.smoothing)

	signals := make([]model.Signal, len(closes))
	for i := range closes {
		signals[i] = classify(e.rules, momentumRow{momentum: long[i], rsi: rsi[i]})
	}

	return EngineResult{
		Columns: map[string][]model.Value{
			model.MomentumColumn(e.params.ShortPeriod): short,
			model.MomentumColumn(e.params.LongPeriod):  long,
			model.ColRSI: rsi,
		},
		Signals: signals,
	}
}
