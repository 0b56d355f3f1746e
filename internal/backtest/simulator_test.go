package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UpbitSentinel/internal/calculator"
	"UpbitSentinel/internal/collector"
	"UpbitSentinel/internal/model"
	"UpbitSentinel/internal/strategy"
)

var testProfile = strategy.Profile{
	Name:             "conservative",
	RSIOverbought:    70,
	Sell50Threshold:  0.80,
	SellAllThreshold: 0.10,
}

func newTestSimulator() *Simulator {
	return NewSimulator(1_000_000, testProfile, calculator.DefaultParams())
}

// neutralRow is a defined row that fires no signal at the given price.
func neutralRow(day int, close float64) model.IndicatorRow {
	return model.IndicatorRow{
		Time:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Close:       close,
		UpperBand:   close * 1.2,
		LowerBand:   close * 0.8,
		BBPosition:  0.5,
		RSI:         55,
		VolumeRatio: 1.0,
		Defined:     true,
	}
}

// buySetup returns a squeezed prev row and a breakout cur row.
func buySetup(day int, close float64) (model.IndicatorRow, model.IndicatorRow) {
	prev := neutralRow(day-1, close*0.95)
	prev.Squeeze = true
	cur := neutralRow(day, close)
	cur.UpperBand = close * 0.98
	cur.LowerBand = close * 0.90
	cur.BBPosition = (close - cur.LowerBand) / (cur.UpperBand - cur.LowerBand)
	cur.RSI = 60
	cur.VolumeRatio = 1.5
	return prev, cur
}

func sell50Row(day int, close float64) model.IndicatorRow {
	r := neutralRow(day, close)
	r.BBPosition = 0.85
	return r
}

func sellAllRow(day int, close float64) model.IndicatorRow {
	r := neutralRow(day, close)
	r.RSI = 25
	return r
}

func TestSimulate_BuyThenSellAll(t *testing.T) {
	s := newTestSimulator()
	prev, buy := buySetup(1, 100)
	rows := []model.IndicatorRow{
		prev,
		buy,
		neutralRow(2, 120),
		sellAllRow(3, 150),
		neutralRow(4, 150),
	}
	res := s.simulate("KRW-BTC", rows, len(rows))

	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ActionBuy, res.Trades[0].Action)
	assert.InDelta(t, 10_000.0, res.Trades[0].Quantity, 1e-9)
	assert.Equal(t, model.ActionSellAll, res.Trades[1].Action)
	assert.InDelta(t, 1_500_000.0, res.Trades[1].Value, 1e-6)

	assert.InDelta(t, 1_500_000.0, res.FinalValue, 1e-6)
	assert.InDelta(t, 50.0, res.TotalReturn, 1e-9)

	require.Equal(t, 1, res.TotalTrades)
	assert.Equal(t, 1, res.WinningTrades)
	assert.Equal(t, 100.0, res.WinRate)
	assert.True(t, math.IsInf(res.ProfitFactor, 1), "no losers means infinite profit factor")
	assert.Equal(t, 0.0, res.MaxDrawdown)
}

func TestSimulate_PartialThenFullExit(t *testing.T) {
	s := newTestSimulator()
	prev, buy := buySetup(1, 100)
	rows := []model.IndicatorRow{
		prev,
		buy,
		sell50Row(2, 160),
		sell50Row(3, 165), // HALF already, must not act again
		sellAllRow(4, 150),
	}
	res := s.simulate("KRW-BTC", rows, len(rows))

	require.Len(t, res.Trades, 3)
	assert.Equal(t, model.ActionBuy, res.Trades[0].Action)
	assert.Equal(t, model.ActionSell50, res.Trades[1].Action)
	assert.InDelta(t, 5_000.0, res.Trades[1].Quantity, 1e-9)
	assert.Equal(t, model.ActionSellAll, res.Trades[2].Action)
	assert.InDelta(t, 5_000.0, res.Trades[2].Quantity, 1e-9)

	// 800,000 from the half sell at 160 plus 750,000 from the exit at 150.
	assert.InDelta(t, 1_550_000.0, res.FinalValue, 1e-6)

	// One BUY measured against both sells.
	require.Equal(t, 2, res.TotalTrades)
	assert.Equal(t, 2, res.WinningTrades)
	assert.InDelta(t, 55.0, res.AvgProfit, 1e-9) // (+60% +50%) / 2
}

func TestSimulate_SellAllBeatsSell50(t *testing.T) {
	s := newTestSimulator()
	prev, buy := buySetup(1, 100)

	both := neutralRow(2, 150)
	both.BBPosition = 0.85 // sell-half territory
	both.RSI = 25          // oversold exit

	rows := []model.IndicatorRow{prev, buy, both}
	res := s.simulate("KRW-BTC", rows, len(rows))

	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ActionSellAll, res.Trades[1].Action)
	assert.InDelta(t, 10_000.0, res.Trades[1].Quantity, 1e-9)
}

func TestSimulate_SellSignalsIgnoredWhenFlat(t *testing.T) {
	s := newTestSimulator()
	rows := []model.IndicatorRow{
		neutralRow(0, 100),
		sell50Row(1, 110),
		sellAllRow(2, 90),
	}
	res := s.simulate("KRW-BTC", rows, len(rows))
	assert.Empty(t, res.Trades)
	assert.Equal(t, s.InitialCapital, res.FinalValue)
}

func TestSimulate_OpenPositionMarkedToFinalClose(t *testing.T) {
	s := newTestSimulator()
	prev, buy := buySetup(1, 100)
	rows := []model.IndicatorRow{prev, buy, neutralRow(2, 130)}
	res := s.simulate("KRW-BTC", rows, len(rows))

	// Liquidation at the last close is valuation only.
	require.Len(t, res.Trades, 1)
	assert.InDelta(t, 1_300_000.0, res.FinalValue, 1e-6)
	assert.Equal(t, 0, res.TotalTrades, "an unclosed entry is not a round trip")
}

func TestSimulate_UndefinedRowsAreSkipped(t *testing.T) {
	s := newTestSimulator()
	prev, buy := buySetup(1, 100)
	buy.Defined = false
	rows := []model.IndicatorRow{prev, buy, neutralRow(2, 130)}
	res := s.simulate("KRW-BTC", rows, len(rows))
	assert.Empty(t, res.Trades)
	assert.Equal(t, s.InitialCapital, res.FinalValue)
}

func TestRun_NoSignalsConservesCapital(t *testing.T) {
	s := newTestSimulator()
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100
	}
	bars := collector.GenerateBars(100, 120)
	for i := range bars {
		bars[i].Close = closes[i]
	}
	res, err := s.Run("KRW-BTC", bars)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, s.InitialCapital, res.FinalValue)
	assert.Equal(t, 0.0, res.TotalReturn)
	assert.Equal(t, 120, res.TestDays)
}

func TestRun_RejectsShortHistory(t *testing.T) {
	s := newTestSimulator()
	_, err := s.Run("KRW-BTC", collector.GenerateBars(100, 10))
	assert.Error(t, err)
}

func TestMaxDrawdown(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
	}
	equity := []model.EquityPoint{
		{Time: day(0), PortfolioValue: 100},
		{Time: day(1), PortfolioValue: 150},
		{Time: day(2), PortfolioValue: 90}, // 40% off the 150 peak
		{Time: day(3), PortfolioValue: 180},
		{Time: day(4), PortfolioValue: 160},
	}
	assert.InDelta(t, 40.0, maxDrawdown(equity), 1e-9)

	monotone := []model.EquityPoint{
		{Time: day(0), PortfolioValue: 100},
		{Time: day(1), PortfolioValue: 110},
		{Time: day(2), PortfolioValue: 120},
	}
	assert.Equal(t, 0.0, maxDrawdown(monotone))
	assert.Equal(t, 0.0, maxDrawdown(nil))
}

func TestProfitFactor(t *testing.T) {
	assert.Equal(t, 0.0, profitFactor(0, 0, 0, 0))
	assert.True(t, math.IsInf(profitFactor(10, 0, 2, 0), 1))
	assert.InDelta(t, 2.0, profitFactor(10, -5, 3, 2), 1e-9)
}
