package backtest

import (
	"math"

	"UpbitSentinel/internal/model"
)

// fillMetrics derives round trips and performance statistics from a
// result's trade log and equity curve.
func fillMetrics(res *model.BacktestResult) {
	res.RoundTrips = pairRoundTrips(res.Trades)
	res.TotalTrades = len(res.RoundTrips)

	var winners, losers int
	var winSum, lossSum float64
	for _, rt := range res.RoundTrips {
		if rt.Winning {
			winners++
			winSum += rt.ProfitPct
		} else {
			losers++
			lossSum += rt.ProfitPct
		}
	}
	res.WinningTrades = winners
	if res.TotalTrades > 0 {
		res.WinRate = float64(winners) / float64(res.TotalTrades) * 100
	}
	if winners > 0 {
		res.AvgProfit = winSum / float64(winners)
	}
	if losers > 0 {
		res.AvgLoss = lossSum / float64(losers)
	}
	res.ProfitFactor = profitFactor(res.AvgProfit, res.AvgLoss, winners, losers)
	res.MaxDrawdown = maxDrawdown(res.Equity)
}

// pairRoundTrips matches each BUY with every subsequent partial or full
// sell. A SELL_ALL closes the open entry; a SELL_50 measures against it
// while leaving it open.
func pairRoundTrips(trades []model.TradeRecord) []model.RoundTrip {
	var trips []model.RoundTrip
	var entry *model.TradeRecord

	for i := range trades {
		t := trades[i]
		switch t.Action {
		case model.ActionBuy:
			entry = &trades[i]
		case model.ActionSell50, model.ActionSellAll:
			if entry == nil {
				continue
			}
			profit := (t.Price - entry.Price) / entry.Price * 100
			trips = append(trips, model.RoundTrip{
				EntryTime:  entry.Time,
				ExitTime:   t.Time,
				EntryPrice: entry.Price,
				ExitPrice:  t.Price,
				ProfitPct:  profit,
				Winning:    profit > 0,
			})
			if t.Action == model.ActionSellAll {
				entry = nil
			}
		}
	}
	return trips
}

// profitFactor is |avg win / avg loss|, +Inf when there are winners but
// no losers, and 0 with no winners.
func profitFactor(avgProfit, avgLoss float64, winners, losers int) float64 {
	if winners == 0 {
		return 0
	}
	if losers == 0 || avgLoss == 0 {
		return math.Inf(1)
	}
	return math.Abs(avgProfit / avgLoss)
}

// maxDrawdown is the largest percentage fall from a running equity peak.
func maxDrawdown(equity []model.EquityPoint) float64 {
	var peak, worst float64
	for _, p := range equity {
		if p.PortfolioValue > peak {
			peak = p.PortfolioValue
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - p.PortfolioValue) / peak * 100
		if dd > worst {
			worst = dd
		}
	}
	return worst
}
