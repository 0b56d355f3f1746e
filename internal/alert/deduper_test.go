package alert

import (
	"testing"
	"time"

	"UpbitSentinel/internal/model"
)

func newTestDeduper(cooldown time.Duration) (*Deduper, *time.Time) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	d := NewDeduper(cooldown)
	d.now = func() time.Time { return clock }
	return d, &clock
}

func TestShouldFire_CooldownWindow(t *testing.T) {
	d, clock := newTestDeduper(time.Hour)

	if !d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Fatal("first fire must pass")
	}
	if d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Error("immediate repeat must be suppressed")
	}

	*clock = clock.Add(59 * time.Minute)
	if d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Error("repeat inside the cooldown must be suppressed")
	}

	*clock = clock.Add(time.Minute)
	if !d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Error("repeat at exactly the cooldown must pass")
	}
}

func TestShouldFire_IndependentKeys(t *testing.T) {
	d, _ := newTestDeduper(time.Hour)

	if !d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Fatal("first fire must pass")
	}
	if !d.ShouldFire("KRW-BTC", model.SignalSellAll) {
		t.Error("different kind on the same symbol must pass")
	}
	if !d.ShouldFire("KRW-ETH", model.SignalBuy) {
		t.Error("same kind on a different symbol must pass")
	}
	if d.Len() != 3 {
		t.Errorf("expected 3 records, got %d", d.Len())
	}
}

func TestShouldFire_RefireExtendsWindow(t *testing.T) {
	d, clock := newTestDeduper(time.Hour)

	d.ShouldFire("KRW-BTC", model.SignalBuy)
	*clock = clock.Add(time.Hour)
	if !d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Fatal("refire after cooldown must pass")
	}

	// The refire reset the window.
	*clock = clock.Add(30 * time.Minute)
	if d.ShouldFire("KRW-BTC", model.SignalBuy) {
		t.Error("window must restart from the refire")
	}
	if d.Len() != 1 {
		t.Errorf("refire must overwrite, got %d records", d.Len())
	}
}
