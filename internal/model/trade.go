package model

import "time"

// Position is the backtest position state per instrument.
type Position int

const (
	PositionFlat Position = iota
	PositionHalf
	PositionFull
)

func (p Position) String() string {
	switch p {
	case PositionHalf:
		return "HALF"
	case PositionFull:
		return "FULL"
	default:
		return "FLAT"
	}
}

// TradeAction identifies one bookkeeping action in a backtest run.
type TradeAction string

const (
	ActionBuy     TradeAction = "BUY"
	ActionSell50  TradeAction = "SELL_50"
	ActionSellAll TradeAction = "SELL_ALL"
)

// TradeRecord is one entry in the append-only trade log of a backtest run.
type TradeRecord struct {
	Symbol   string
	Action   TradeAction
	Time     time.Time
	Price    float64
	Quantity float64
	Value    float64
}

// RoundTrip pairs a BUY with one of its closing trades for profit measurement.
type RoundTrip struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	ProfitPct  float64
	Winning    bool
}

// EquityPoint is one sample of the portfolio-value curve.
type EquityPoint struct {
	Time           time.Time
	PortfolioValue float64
	Cash           float64
	HoldingValue   float64
}

// BacktestResult aggregates a single-instrument backtest run.
type BacktestResult struct {
	Symbol        string
	InitialValue  float64
	FinalValue    float64
	TotalReturn   float64 // percent
	WinRate       float64 // percent
	TotalTrades   int
	WinningTrades int
	AvgProfit     float64 // percent, winners only
	AvgLoss       float64 // percent, losers only
	ProfitFactor  float64 // +Inf when no losing trades
	MaxDrawdown   float64 // percent
	TestDays      int
	Trades        []TradeRecord
	RoundTrips    []RoundTrip
	Equity        []EquityPoint
}
