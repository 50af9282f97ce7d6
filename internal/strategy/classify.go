package strategy

import "SignalSentinel/internal/model"

// rule is one row of a decision table.
type rule[T any] struct {
	signal model.Signal
	match  func(T) bool
}

// classify returns the signal of the first matching rule, Neutral otherwise.
func classify[T any](rules []rule[T], in T) model.Signal {
	for _, r := range rules {
		if r.match(in) {
			return r.signal
		}
	}
	return model.Neutral
}

type momentumRow struct {
	momentum model.Value
	rsi      model.Value
}

// momentumRules:
//
//	momentum > 0 AND lower < RSI < upper  -> Buy
//	momentum < 0 AND RSI > upper          -> Sell
//
// Any undefined operand falls through to Neutral.
func momentumRules(p MomentumParams) []rule[momentumRow] {
	return []rule[momentumRow]{
		{model.Buy, func(r momentumRow) bool {
			m, okM := r.momentum.Get()
			rsi, okR := r.rsi.Get()
			return okM && okR && m > 0 && rsi > p.RSILower && rsi < p.RSIUpper
		}},
		{model.Sell, func(r momentumRow) bool {
			m, okM := r.momentum.Get()
			rsi, okR := r.rsi.Get()
			return okM && okR && m < 0 && rsi > p.RSIUpper
		}},
	}
}

// meanReversionRules:
//
//	Z < -k -> Buy
//	Z >  k -> Sell
func meanReversionRules(k float64) []rule[model.Value] {
	return []rule[model.Value]{
		{model.Buy, func(z model.Value) bool {
			v, ok := z.Get()
			return ok && v < -k
		}},
		{model.Sell, func(z model.Value) bool {
			v, ok := z.Get()
			return ok && v > k
		}},
	}
}

// ClassifyMomentum classifies one timestamp from its long-horizon momentum and RSI.
func ClassifyMomentum(momentum, rsi model.Value, p MomentumParams) model.Signal {
	return classify(momentumRules(p), momentumRow{momentum: momentum, rsi: rsi})
}

// ClassifyMeanReversion classifies one timestamp from its Z-score.
func ClassifyMeanReversion(z model.Value, k float64) model.Signal {
	return classify(meanReversionRules(k), z)
}
