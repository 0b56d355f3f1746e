package calculator

import (
	"math"

	"UpbitSentinel/internal/model"
)

// Compute derives one IndicatorRow per input bar. It is a pure function:
// the same series and parameters always yield the same output, and the
// input slice is never modified. Rows before index MinBars()-1 are
// undefined; squeeze additionally needs a full band-width history and
// stays false until enough band widths exist.
func Compute(bars []model.OHLCV, p Params) []model.IndicatorRow {
	n := len(bars)
	rows := make([]model.IndicatorRow, n)

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
		rows[i] = model.IndicatorRow{
			Time:        b.Time,
			Close:       b.Close,
			Volume:      b.Volume,
			SMA:         math.NaN(),
			StdDev:      math.NaN(),
			UpperBand:   math.NaN(),
			LowerBand:   math.NaN(),
			BandWidth:   math.NaN(),
			BBPosition:  math.NaN(),
			RSI:         math.NaN(),
			VolumeRatio: 1.0,
		}
	}
	if n < p.MinBars() {
		return rows
	}

	bandWidths := make([]float64, n)
	for i := range bandWidths {
		bandWidths[i] = math.NaN()
	}

	for i := p.BBPeriod - 1; i < n; i++ {
		mean, std := meanStd(closes[i-p.BBPeriod+1 : i+1])
		upper := mean + p.BBStdMultiplier*std
		lower := mean - p.BBStdMultiplier*std

		rows[i].SMA = mean
		rows[i].StdDev = std
		rows[i].UpperBand = upper
		rows[i].LowerBand = lower
		if mean != 0 {
			rows[i].BandWidth = (upper - lower) / mean
			bandWidths[i] = rows[i].BandWidth
		}
		// Zero-width bands leave the position undefined.
		if width := upper - lower; width > 0 {
			rows[i].BBPosition = (closes[i] - lower) / width
		}
	}

	computeRSI(rows, closes, p.RSIPeriod)
	computeVolumeRatio(rows, volumes, p.VolumePeriod)

	// Squeeze: band width in the bottom quantile of its trailing window.
	// Needs VolatilityLookback consecutive defined band widths.
	for i := p.BBPeriod - 1 + p.VolatilityLookback - 1; i < n; i++ {
		window := bandWidths[i-p.VolatilityLookback+1 : i+1]
		q := quantile(window, p.VolatilityThreshold)
		if !math.IsNaN(q) && !math.IsNaN(bandWidths[i]) {
			rows[i].Squeeze = bandWidths[i] < q
		}
	}

	for i := p.MinBars() - 1; i < n; i++ {
		rows[i].Defined = true
	}
	return rows
}

// computeRSI fills the RSI column using a simple rolling average of gains
// and losses over the trailing period. A window with zero losses yields
// 100; a completely flat window leaves the value undefined.
func computeRSI(rows []model.IndicatorRow, closes []float64, period int) {
	n := len(closes)
	if n < period+1 {
		return
	}
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}
	for i := period; i < n; i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			// flat window, leave NaN
		case avgLoss == 0:
			rows[i].RSI = 100.0
		default:
			rs := avgGain / avgLoss
			rows[i].RSI = 100.0 - 100.0/(1.0+rs)
		}
	}
}

// computeVolumeRatio fills the current-volume vs trailing-mean ratio,
// defaulting to 1.0 when no usable volume data exists.
func computeVolumeRatio(rows []model.IndicatorRow, volumes []float64, period int) {
	n := len(volumes)
	for i := period - 1; i < n; i++ {
		var sum float64
		for j := i - period + 1; j <= i; j++ {
			sum += volumes[j]
		}
		mean := sum / float64(period)
		if mean > 0 {
			rows[i].VolumeRatio = volumes[i] / mean
		}
	}
}
