package strategy

import (
	"fmt"
	"time"

	"SignalSentinel/internal/model"
)

// Analyze validates the series and runs both indicator engines over it.
// It is a pure function of its arguments apart from the ComputedAt stamp.
func Analyze(series *model.PriceSeries, p Params) (*model.Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	mom, err := NewMomentumEngine(p.Momentum)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	mr := NewMeanReversionEngine(p.MeanReversion)

	closes := series.Closes()
	momResult := mom.Compute(closes)
	mrResult := mr.Compute(closes)

	frame := model.NewIndicatorFrame(series.Times())
	for _, res := range []EngineResult{momResult, mrResult} {
		for name, col := range res.Columns {
			if err := frame.Set(name, col); err != nil {
				return nil, fmt.Errorf("assemble frame: %w", err)
			}
		}
	}

	return &model.Analysis{
		Symbol:        series.Symbol,
		Closes:        closes,
		Frame:         frame,
		Momentum:      momResult.Signals,
		MeanReversion: mrResult.Signals,
		Thresholds:    p.Thresholds(),
		ComputedAt:    time.Now(),
	}, nil
}

// Thresholds exports the parameters a chart needs for annotations.
func (p Params) Thresholds() model.Thresholds {
	periods := []int{p.Momentum.ShortPeriod}
	if p.Momentum.LongPeriod != p.Momentum.ShortPeriod {
		periods = append(periods, p.Momentum.LongPeriod)
	}
	return model.Thresholds{
		MomentumPeriods: periods,
		RSIPeriod:       p.Momentum.RSIPeriod,
		RSISmoothing:    p.Momentum.RSISmoothing,
		RSILower:        p.Momentum.RSILower,
		RSIUpper:        p.Momentum.RSIUpper,
		Window:          p.MeanReversion.Window,
		BandK:           p.MeanReversion.BandK,
	}
}
