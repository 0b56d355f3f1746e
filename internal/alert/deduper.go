package alert

import (
	"sync"
	"time"

	"UpbitSentinel/internal/model"
)

// Deduper gates repeated notifications of the same kind for the same
// instrument within a cooldown window. It records on check: a true
// return has already committed the fire time, so callers must only ask
// when they intend to notify. Records are overwritten on re-fire and
// never deleted; growth is bounded by instruments × signal kinds.
type Deduper struct {
	mu        sync.Mutex
	cooldown  time.Duration
	lastFired map[string]time.Time
	now       func() time.Time
}

// NewDeduper creates a Deduper with the given cooldown.
func NewDeduper(cooldown time.Duration) *Deduper {
	return &Deduper{
		cooldown:  cooldown,
		lastFired: make(map[string]time.Time),
		now:       time.Now,
	}
}

// ShouldFire returns true and records the current time iff no prior
// record exists for (symbol, kind) or the cooldown has fully elapsed.
func (d *Deduper) ShouldFire(symbol string, kind model.SignalKind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := symbol + "_" + string(kind)
	now := d.now()
	if last, ok := d.lastFired[key]; ok && now.Sub(last) < d.cooldown {
		return false
	}
	d.lastFired[key] = now
	return true
}

// Len returns the number of alert records held.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lastFired)
}
