package calculator

// Params holds the indicator window sizes and thresholds.
type Params struct {
	BBPeriod            int
	BBStdMultiplier     float64
	RSIPeriod           int
	VolumePeriod        int
	VolatilityLookback  int
	VolatilityThreshold float64
}

// DefaultParams returns the standard parameter set.
func DefaultParams() Params {
	return Params{
		BBPeriod:            20,
		BBStdMultiplier:     2.0,
		RSIPeriod:           14,
		VolumePeriod:        20,
		VolatilityLookback:  50,
		VolatilityThreshold: 0.2,
	}
}

// MinBars is the number of bars required before any row is defined.
func (p Params) MinBars() int {
	n := p.BBPeriod
	if p.RSIPeriod > n {
		n = p.RSIPeriod
	}
	if p.VolatilityLookback > n {
		n = p.VolatilityLookback
	}
	return n
}
