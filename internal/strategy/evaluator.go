package strategy

import "UpbitSentinel/internal/model"

// RSI window for the breakout buy rule: neutral to early-overbought.
const (
	buyRSIFloor   = 50.0
	buyRSICeiling = 80.0

	// Minimum volume expansion to confirm a breakout.
	breakoutVolumeRatio = 1.2

	// Oversold exit regardless of band position.
	rsiOversold = 30.0
)

// Breakout reports whether the current bar breaks out of a squeeze: the
// previous bar was squeezed and the close escaped the band envelope on
// expanding volume.
func Breakout(prev, cur model.IndicatorRow) bool {
	if !prev.Defined || !cur.Defined {
		return false
	}
	escaped := cur.Close > cur.UpperBand || cur.Close < cur.LowerBand
	return prev.Squeeze && escaped && cur.VolumeRatio > breakoutVolumeRatio
}

// Evaluate derives the signal set for the current bar. It is a pure
// function of the two indicator rows and the profile thresholds.
// Undefined rows and NaN indicator values never produce a signal.
//
// Buy fires on an upward squeeze breakout with RSI in the neutral band.
// Sell-half fires near the upper band, sell-all near the lower band or
// on an oversold RSI.
func Evaluate(prev, cur model.IndicatorRow, p Profile) model.SignalSet {
	var s model.SignalSet
	if !cur.Defined {
		return s
	}

	if Breakout(prev, cur) && cur.Close > cur.UpperBand &&
		cur.HasRSI() && cur.RSI > buyRSIFloor && cur.RSI < buyRSICeiling {
		s.Buy = true
	}

	if cur.HasBBPosition() {
		if cur.BBPosition >= p.Sell50Threshold {
			s.Sell50 = true
		}
		if cur.BBPosition <= p.SellAllThreshold {
			s.SellAll = true
		}
	}
	if cur.HasRSI() && cur.RSI < rsiOversold {
		s.SellAll = true
	}
	return s
}
