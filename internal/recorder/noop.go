package recorder

import "SignalSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.Analysis) (int64, error) { return 0, nil }
func (n *NoopRecorder) LatestRun(_ string) (*RunSummary, error)         { return nil, nil }
func (n *NoopRecorder) Close() error                                    { return nil }
