package recorder

import "UpbitSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAlert(_ *AlertEvent) error              { return nil }
func (n *NoopRecorder) RecordScan(_ *ScanEvent) error                { return nil }
func (n *NoopRecorder) RecordBacktest(_ *model.BacktestResult) error { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
