package backtest

import (
	"fmt"
	"math"

	"UpbitSentinel/internal/calculator"
	"UpbitSentinel/internal/model"
	"UpbitSentinel/internal/strategy"
)

// Simulator replays the signal rules over historical daily candles with a
// three-state position machine (FLAT, HALF, FULL).
type Simulator struct {
	InitialCapital float64
	Profile        strategy.Profile
	Params         calculator.Params
}

// NewSimulator builds a simulator with the given strategy settings.
func NewSimulator(initialCapital float64, profile strategy.Profile, params calculator.Params) *Simulator {
	return &Simulator{
		InitialCapital: initialCapital,
		Profile:        profile,
		Params:         params,
	}
}

// Run replays one instrument's history. At most one position transition
// happens per bar, sell_all taking priority over sell_50 over buy.
func (s *Simulator) Run(symbol string, bars []model.OHLCV) (*model.BacktestResult, error) {
	if len(bars) < s.Params.MinBars()+1 {
		return nil, fmt.Errorf("%s: need at least %d bars, got %d", symbol, s.Params.MinBars()+1, len(bars))
	}

	rows := calculator.Compute(bars, s.Params)
	res := s.simulate(symbol, rows, len(bars))

	if math.IsNaN(res.FinalValue) {
		return nil, fmt.Errorf("%s: simulation produced NaN portfolio value", symbol)
	}
	return res, nil
}

// simulate walks the indicator rows through the position machine.
func (s *Simulator) simulate(symbol string, rows []model.IndicatorRow, testDays int) *model.BacktestResult {
	cash := s.InitialCapital
	quantity := 0.0
	position := model.PositionFlat

	var trades []model.TradeRecord
	equity := make([]model.EquityPoint, 0, len(rows))

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if !cur.Defined {
			continue
		}
		sig := strategy.Evaluate(prev, cur, s.Profile)
		price := cur.Close

		switch {
		case sig.SellAll && position != model.PositionFlat:
			value := quantity * price
			cash += value
			trades = append(trades, model.TradeRecord{
				Symbol:   symbol,
				Action:   model.ActionSellAll,
				Time:     cur.Time,
				Price:    price,
				Quantity: quantity,
				Value:    value,
			})
			quantity = 0
			position = model.PositionFlat

		case sig.Sell50 && position == model.PositionFull:
			sellQty := quantity / 2
			value := sellQty * price
			cash += value
			quantity -= sellQty
			trades = append(trades, model.TradeRecord{
				Symbol:   symbol,
				Action:   model.ActionSell50,
				Time:     cur.Time,
				Price:    price,
				Quantity: sellQty,
				Value:    value,
			})
			position = model.PositionHalf

		case sig.Buy && position == model.PositionFlat:
			quantity = cash / price
			trades = append(trades, model.TradeRecord{
				Symbol:   symbol,
				Action:   model.ActionBuy,
				Time:     cur.Time,
				Price:    price,
				Quantity: quantity,
				Value:    cash,
			})
			cash = 0
			position = model.PositionFull
		}

		holding := quantity * price
		equity = append(equity, model.EquityPoint{
			Time:           cur.Time,
			PortfolioValue: cash + holding,
			Cash:           cash,
			HoldingValue:   holding,
		})
	}

	// Mark any open position to the final close. This liquidation is
	// valuation only and does not enter the trade log.
	finalValue := cash
	if quantity > 0 {
		finalValue += quantity * rows[len(rows)-1].Close
	}

	res := &model.BacktestResult{
		Symbol:       symbol,
		InitialValue: s.InitialCapital,
		FinalValue:   finalValue,
		TotalReturn:  (finalValue - s.InitialCapital) / s.InitialCapital * 100,
		TestDays:     testDays,
		Trades:       trades,
		Equity:       equity,
	}
	fillMetrics(res)
	return res
}
