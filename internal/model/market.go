package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Instrument is one watched market: the Upbit symbol plus a display name.
type Instrument struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// DisplayName returns the configured name, falling back to the symbol.
func (i Instrument) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Symbol
}
