package calibration

import (
	"log"
	"time"

	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/simgear/pots-to-serial/pkg/smooth"
)

// State of the calibration machine.
type State int

const (
	StateUncalibrated State = iota // running on full-range defaults
	StateIdle                      // running on a persisted record
	StateCalibrating               // widening min/max inside the timed window
	StatePersisting                // record complete, write pending
)

// Event reported by a Tick.
type Event int

const (
	EventStarted Event = iota
	EventCompleted
)

// Calibrator advances the calibration lifecycle one tick at a time.
// All transitions are elapsed-time comparisons against the passed-in
// clock; nothing blocks, so normal sampling continues while the hold
// and the window run down.
type Calibrator struct {
	store     Store
	rec       Record
	working   Record
	state     State
	hold      time.Duration
	window    time.Duration
	deadzone  int
	fullScale int
	sw        *smooth.Debouncer
	calStart  time.Time
	armed     bool
}

// New loads the persisted record through store; an absent or invalid
// record falls back to full-range defaults without persisting.
func New(store Store, cfg config.CalibrationConfig, fullScale int) *Calibrator {
	c := &Calibrator{
		store:     store,
		hold:      time.Duration(cfg.HoldMs) * time.Millisecond,
		window:    time.Duration(cfg.WindowMs) * time.Millisecond,
		deadzone:  int(cfg.DeadzonePct / 100 * float64(fullScale)),
		fullScale: fullScale,
		sw:        smooth.NewDebouncer(time.Duration(cfg.DebounceMs) * time.Millisecond),
		armed:     true,
	}
	rec, err := store.Load()
	if err != nil {
		log.Printf("calibration load error: %v", err)
	}
	if rec.Valid {
		c.rec = rec
		c.state = StateIdle
	} else {
		c.rec = DefaultRecord(fullScale)
		c.state = StateUncalibrated
	}
	return c
}

// Tick feeds one sample of both axes and the raw switch level. It
// returns the lifecycle events that fired on this tick.
func (c *Calibrator) Tick(now time.Time, x, y int, switchActive bool) []Event {
	stable := c.sw.Update(switchActive, now)
	if !stable {
		c.armed = true
	}

	var events []Event
	switch c.state {
	case StateUncalibrated, StateIdle:
		if c.armed && stable && now.Sub(c.sw.StableSince()) >= c.hold {
			c.working = Record{
				X: Axis{Min: x, Center: x, Max: x},
				Y: Axis{Min: y, Center: y, Max: y},
			}
			c.calStart = now
			c.state = StateCalibrating
			c.armed = false
			events = append(events, EventStarted)
		}
	case StateCalibrating:
		c.working.X = widen(c.working.X, x)
		c.working.Y = widen(c.working.Y, y)
		if now.Sub(c.calStart) >= c.window {
			c.working.X.Center = x
			c.working.Y.Center = y
			c.working.Valid = true
			c.rec = c.working
			c.state = StatePersisting
			events = append(events, EventCompleted)
		}
	case StatePersisting:
		if err := c.store.Save(c.rec); err != nil {
			log.Printf("calibration save error: %v", err)
		}
		c.state = StateIdle
	}
	return events
}

func widen(ax Axis, raw int) Axis {
	if raw < ax.Min {
		ax.Min = raw
	}
	if raw > ax.Max {
		ax.Max = raw
	}
	return ax
}

// NormalizeX maps a raw X reading onto -100..+100 using the current record.
func (c *Calibrator) NormalizeX(raw int) float64 {
	return Normalize(raw, c.rec.X, c.deadzone)
}

// NormalizeY maps a raw Y reading onto -100..+100 using the current record.
func (c *Calibrator) NormalizeY(raw int) float64 {
	return Normalize(raw, c.rec.Y, c.deadzone)
}

func (c *Calibrator) State() State {
	return c.state
}

func (c *Calibrator) Record() Record {
	return c.rec
}

// SwitchStable reports the debounce-confirmed switch state.
func (c *Calibrator) SwitchStable() bool {
	return c.sw.Stable()
}
