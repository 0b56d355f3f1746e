package model

import "time"

// SignalKind identifies one of the three rule outcomes.
type SignalKind string

const (
	SignalBuy     SignalKind = "buy"
	SignalSell50  SignalKind = "sell_50"
	SignalSellAll SignalKind = "sell_all"
)

// SignalSet holds the raw rule outcomes for one instrument at one bar.
// The outcomes are independent; the backtest position machine enforces
// exclusivity of actions (sell_all > sell_50 > buy).
type SignalSet struct {
	Buy     bool
	Sell50  bool
	SellAll bool
}

// Any reports whether at least one signal fired.
func (s SignalSet) Any() bool {
	return s.Buy || s.Sell50 || s.SellAll
}

// Active returns the fired kinds in priority order.
func (s SignalSet) Active() []SignalKind {
	var kinds []SignalKind
	if s.SellAll {
		kinds = append(kinds, SignalSellAll)
	}
	if s.Sell50 {
		kinds = append(kinds, SignalSell50)
	}
	if s.Buy {
		kinds = append(kinds, SignalBuy)
	}
	return kinds
}

// Analysis is a one-shot evaluation of a single instrument's freshest data,
// produced for alerts and the /ticker command.
type Analysis struct {
	Instrument Instrument
	Row        IndicatorRow
	Breakout   bool
	Signals    SignalSet
	Timestamp  time.Time
}

// MonitorStats is a read-only snapshot of the scan scheduler's counters,
// shared with the command listener and message formatters.
type MonitorStats struct {
	Running        bool
	StartTime      time.Time
	ScanCount      int
	SignalsSent    int
	LastSignalTime time.Time
	WatchlistSize  int
	ScanInterval   time.Duration
	AlertRecords   int
}

// Uptime returns the elapsed run time at the given instant.
func (s MonitorStats) Uptime(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return now.Sub(s.StartTime)
}
