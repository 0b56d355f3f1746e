package recorder

import "UpbitSentinel/internal/model"

// AlertEvent records one alert that passed the dedup gate and was sent.
type AlertEvent struct {
	Symbol     string
	Kind       model.SignalKind
	Price      float64
	RSI        float64
	BBPosition float64
	BandWidth  float64
	Squeeze    bool
}

// ScanEvent records the summary of one full watchlist pass.
type ScanEvent struct {
	ScanCount    int
	Instruments  int
	SignalsFound int
	DurationMS   int64
}

// Recorder persists monitoring and backtest history for later analysis.
type Recorder interface {
	RecordAlert(evt *AlertEvent) error
	RecordScan(evt *ScanEvent) error
	RecordBacktest(res *model.BacktestResult) error
	Close() error
}
