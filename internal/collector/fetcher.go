package collector

import "UpbitSentinel/internal/model"

// Fetcher defines the interface for pulling daily candle series.
type Fetcher interface {
	FetchDailyBars(symbol string, count int) ([]model.OHLCV, error)
	Name() string
}
