package strategy

import (
	"math"
	"testing"

	"UpbitSentinel/internal/model"
)

func row(close, upper, lower, rsi, volRatio float64, squeeze bool) model.IndicatorRow {
	width := upper - lower
	pos := math.NaN()
	if width > 0 {
		pos = (close - lower) / width
	}
	return model.IndicatorRow{
		Close:       close,
		UpperBand:   upper,
		LowerBand:   lower,
		BandWidth:   width / ((upper + lower) / 2),
		BBPosition:  pos,
		RSI:         rsi,
		VolumeRatio: volRatio,
		Squeeze:     squeeze,
		Defined:     true,
	}
}

func TestEvaluate_UndefinedRowIsSilent(t *testing.T) {
	prev := row(100, 105, 95, 60, 2.0, true)
	cur := row(110, 105, 95, 60, 2.0, false)
	cur.Defined = false
	if sig := Evaluate(prev, cur, profiles["conservative"]); sig.Any() {
		t.Errorf("undefined row must not signal, got %+v", sig)
	}
}

func TestEvaluate_BuyOnUpwardBreakout(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, true)
	cur := row(110, 105, 95, 60, 1.5, false)
	sig := Evaluate(prev, cur, profiles["conservative"])
	if !sig.Buy {
		t.Error("expected buy on squeeze breakout above upper band")
	}
	// A close above the upper band also sits above the sell-half line;
	// the position machine resolves the precedence.
	if !sig.Sell50 {
		t.Error("expected sell_50 alongside the breakout close")
	}
	if sig.SellAll {
		t.Error("unexpected sell_all")
	}
}

func TestEvaluate_BuyRequiresNeutralRSI(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, true)
	for _, rsi := range []float64{45, 50, 80, 85} {
		cur := row(110, 105, 95, rsi, 1.5, false)
		if sig := Evaluate(prev, cur, profiles["conservative"]); sig.Buy {
			t.Errorf("RSI %.0f outside (50, 80) must not buy", rsi)
		}
	}
	cur := row(110, 105, 95, 79, 1.5, false)
	if sig := Evaluate(prev, cur, profiles["conservative"]); !sig.Buy {
		t.Error("RSI 79 inside the window should buy")
	}
}

func TestEvaluate_BuyRequiresSqueezeAndVolume(t *testing.T) {
	cur := row(110, 105, 95, 60, 1.5, false)

	noSqueeze := row(100, 105, 95, 55, 1.0, false)
	if sig := Evaluate(noSqueeze, cur, profiles["conservative"]); sig.Buy {
		t.Error("no prior squeeze must not buy")
	}

	prev := row(100, 105, 95, 55, 1.0, true)
	lowVolume := row(110, 105, 95, 60, 1.1, false)
	if sig := Evaluate(prev, lowVolume, profiles["conservative"]); sig.Buy {
		t.Error("volume ratio 1.1 must not confirm a breakout")
	}
}

func TestEvaluate_DownwardEscapeIsNotABuy(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, true)
	cur := row(90, 105, 95, 60, 1.5, false)
	if !Breakout(prev, cur) {
		t.Error("downward escape is still a breakout")
	}
	sig := Evaluate(prev, cur, profiles["conservative"])
	if sig.Buy {
		t.Error("downward breakout must not buy")
	}
	if !sig.SellAll {
		t.Error("close below the lower band should sell all")
	}
}

func TestEvaluate_SellThresholdBoundaries(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, false)
	p := profiles["conservative"]

	// BBPosition exactly at the sell-half threshold fires.
	at50 := row(95+0.80*10, 105, 95, 55, 1.0, false)
	if sig := Evaluate(prev, at50, p); !sig.Sell50 {
		t.Errorf("BBPosition %.2f at threshold should sell half", at50.BBPosition)
	}
	below50 := row(95+0.79*10, 105, 95, 55, 1.0, false)
	if sig := Evaluate(prev, below50, p); sig.Sell50 {
		t.Errorf("BBPosition %.2f below threshold must not sell half", below50.BBPosition)
	}

	// BBPosition at or below the sell-all threshold fires.
	atAll := row(95+0.10*10, 105, 95, 55, 1.0, false)
	if sig := Evaluate(prev, atAll, p); !sig.SellAll {
		t.Errorf("BBPosition %.2f at threshold should sell all", atAll.BBPosition)
	}
}

func TestEvaluate_OversoldRSISellsAll(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, false)
	cur := row(100, 105, 95, 25, 1.0, false)
	sig := Evaluate(prev, cur, profiles["balanced"])
	if !sig.SellAll {
		t.Error("RSI below 30 should sell all regardless of band position")
	}
}

func TestEvaluate_NaNIndicatorsAreSilent(t *testing.T) {
	prev := row(100, 105, 95, 55, 1.0, true)
	cur := row(110, 105, 95, 60, 1.5, false)
	cur.RSI = math.NaN()
	cur.BBPosition = math.NaN()
	if sig := Evaluate(prev, cur, profiles["aggressive"]); sig.Any() {
		t.Errorf("NaN indicators must not signal, got %+v", sig)
	}
}

func TestResolveProfile(t *testing.T) {
	for _, name := range []string{"conservative", "balanced", "aggressive"} {
		p, err := ResolveProfile(name)
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		if p.Name != name {
			t.Errorf("expected name %q, got %q", name, p.Name)
		}
		if p.Sell50Threshold <= p.SellAllThreshold {
			t.Errorf("%s: sell-half threshold must sit above sell-all", name)
		}
	}
	if _, err := ResolveProfile("yolo"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
