package recorder

import (
	"time"

	"SignalSentinel/internal/model"
)

// RunSummary is the header of one persisted analysis run.
type RunSummary struct {
	ID            int64
	Symbol        string
	ComputedAt    time.Time
	Bars          int
	LastTime      time.Time
	LastClose     float64
	Momentum      model.Signal
	MeanReversion model.Signal
	Params        model.Thresholds
}

// Recorder persists analysis runs for later review.
type Recorder interface {
	RecordAnalysis(a *model.Analysis) (int64, error)
	LatestRun(symbol string) (*RunSummary, error)
	Close() error
}
