package smooth

import "time"

// Debouncer tracks the stable state of a two-level input. A raw level
// change must hold for the debounce interval before the stable state
// follows it. Time is passed in, never read, so tests drive the clock.
type Debouncer struct {
	interval     time.Duration
	stable       bool
	stableSince  time.Time
	pending      bool
	pendingSince time.Time
	baselined    bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Update feeds one raw level at the given time and returns the stable state.
func (d *Debouncer) Update(active bool, now time.Time) bool {
	if !d.baselined {
		d.stable = active
		d.stableSince = now
		d.pending = active
		d.baselined = true
		return d.stable
	}
	if active == d.stable {
		d.pending = active
		return d.stable
	}
	if active != d.pending {
		d.pending = active
		d.pendingSince = now
		return d.stable
	}
	if now.Sub(d.pendingSince) >= d.interval {
		d.stable = active
		d.stableSince = now
	}
	return d.stable
}

// Stable returns the current debounce-confirmed state.
func (d *Debouncer) Stable() bool {
	return d.stable
}

// StableSince returns when the current stable state was entered.
func (d *Debouncer) StableSince() time.Time {
	return d.stableSince
}
