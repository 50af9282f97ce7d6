package calculator

import "SignalSentinel/internal/model"

// PctChange returns values[i]/values[i-period] - 1 for every index. The first
// period entries, and entries whose base value is zero, are undefined.
func PctChange(values []float64, period int) []model.Value {
	out := make([]model.Value, len(values))
	if period < 1 {
		return out
	}
	for i := period; i < len(values); i++ {
		base := values[i-period]
		if base == 0 {
			continue
		}
		out[i] = model.Some(values[i]/base - 1)
	}
	return out
}
