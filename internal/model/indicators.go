package model

import (
	"math"
	"time"
)

// IndicatorRow holds all technical indicators derived for one bar.
// Rows before the warm-up window carry Defined=false and NaN values.
// BBPosition is NaN when the bands collapse to zero width; callers must
// treat NaN as "no signal", never as 0 or 1.
type IndicatorRow struct {
	Time        time.Time
	Close       float64
	Volume      float64
	SMA         float64
	StdDev      float64
	UpperBand   float64
	LowerBand   float64
	BandWidth   float64
	Squeeze     bool
	BBPosition  float64
	RSI         float64
	VolumeRatio float64
	Defined     bool
}

// HasBBPosition reports whether the band position is usable for comparisons.
func (r IndicatorRow) HasBBPosition() bool {
	return r.Defined && !math.IsNaN(r.BBPosition)
}

// HasRSI reports whether the RSI value is usable for comparisons.
func (r IndicatorRow) HasRSI() bool {
	return r.Defined && !math.IsNaN(r.RSI)
}
