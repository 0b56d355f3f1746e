package strategy

import "fmt"

// Profile is a resolved strategy threshold set. Thresholds are fixed at
// construction; no profile branching happens during evaluation.
type Profile struct {
	Name             string
	RSIOverbought    float64
	Sell50Threshold  float64 // sell half at or above this band position
	SellAllThreshold float64 // sell everything at or below this band position
}

var profiles = map[string]Profile{
	"conservative": {Name: "conservative", RSIOverbought: 70, Sell50Threshold: 0.80, SellAllThreshold: 0.10},
	"balanced":     {Name: "balanced", RSIOverbought: 65, Sell50Threshold: 0.75, SellAllThreshold: 0.15},
	"aggressive":   {Name: "aggressive", RSIOverbought: 60, Sell50Threshold: 0.70, SellAllThreshold: 0.20},
}

// ResolveProfile maps a profile name to its threshold set.
func ResolveProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown strategy profile %q (want conservative, balanced, or aggressive)", name)
	}
	return p, nil
}
