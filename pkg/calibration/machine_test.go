package calibration

import (
	"testing"
	"time"

	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.CalibrationConfig {
	return config.CalibrationConfig{
		HoldMs:      2000,
		WindowMs:    5000,
		DebounceMs:  20,
		DeadzonePct: 5.0,
	}
}

func TestCalibrator_StartsUncalibratedWithDefaults(t *testing.T) {
	c := New(&MemStore{}, testConfig(), 1023)
	assert.Equal(t, StateUncalibrated, c.State())
	assert.Equal(t, DefaultRecord(1023), c.Record())
	assert.False(t, c.Record().Valid)
}

func TestCalibrator_LoadsPersistedRecord(t *testing.T) {
	store := &MemStore{}
	rec := Record{X: Axis{Min: 10, Center: 500, Max: 1000}, Y: Axis{Min: 20, Center: 510, Max: 1010}, Valid: true}
	require.NoError(t, store.Save(rec))

	c := New(store, testConfig(), 1023)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, rec, c.Record())
}

func TestCalibrator_FullLifecycle(t *testing.T) {
	store := &MemStore{}
	c := New(store, testConfig(), 1023)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// establish the released baseline, then press and hold the switch
	c.Tick(t0, 512, 512, false)
	step := 10 * time.Millisecond
	now := t0
	var events []Event
	for now.Sub(t0) < 3*time.Second {
		now = now.Add(step)
		events = append(events, c.Tick(now, 512, 512, true)...)
		if c.State() == StateCalibrating {
			break
		}
	}
	require.Equal(t, StateCalibrating, c.State(), "hold must trigger calibration")
	assert.Contains(t, events, EventStarted)

	// sampling continues inside the window: sweep the stick
	calStart := now
	events = nil
	raws := []int{512, 100, 50, 900, 1000, 512}
	i := 0
	for now.Sub(calStart) < 5100*time.Millisecond {
		now = now.Add(step)
		r := raws[i%len(raws)]
		i++
		events = append(events, c.Tick(now, r, 1023-r, false)...)
		if c.State() == StatePersisting {
			break
		}
	}
	require.Equal(t, StatePersisting, c.State())
	assert.Contains(t, events, EventCompleted)

	rec := c.Record()
	assert.True(t, rec.Valid)
	assert.Equal(t, 50, rec.X.Min)
	assert.Equal(t, 1000, rec.X.Max)
	assert.Equal(t, 23, rec.Y.Min)
	assert.Equal(t, 973, rec.Y.Max)

	// next tick persists and returns to Idle
	c.Tick(now.Add(step), 512, 512, false)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, store.Saves)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, rec, saved)
}

func TestCalibrator_ShortHoldDoesNotTrigger(t *testing.T) {
	c := New(&MemStore{}, testConfig(), 1023)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Tick(t0, 512, 512, false)
	now := t0
	for now.Sub(t0) < 1500*time.Millisecond {
		now = now.Add(10 * time.Millisecond)
		c.Tick(now, 512, 512, true)
	}
	// released before the 2s hold elapsed
	for i := 0; i < 10; i++ {
		now = now.Add(10 * time.Millisecond)
		c.Tick(now, 512, 512, false)
	}
	assert.Equal(t, StateUncalibrated, c.State())
}

func TestCalibrator_HeldSwitchDoesNotRetrigger(t *testing.T) {
	store := &MemStore{}
	c := New(store, testConfig(), 1023)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Tick(t0, 512, 512, false)
	now := t0
	// hold through trigger, window and persist without ever releasing
	for now.Sub(t0) < 9*time.Second {
		now = now.Add(10 * time.Millisecond)
		c.Tick(now, 512, 512, true)
	}
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, store.Saves, "still-held switch must not restart calibration")
}

func TestCalibrator_NormalizeUsesRecord(t *testing.T) {
	store := &MemStore{}
	require.NoError(t, store.Save(Record{
		X:     Axis{Min: 0, Center: 512, Max: 1023},
		Y:     Axis{Min: 0, Center: 512, Max: 1023},
		Valid: true,
	}))
	c := New(store, testConfig(), 1023)

	assert.Equal(t, 0.0, c.NormalizeX(512))
	assert.InDelta(t, 100.0, c.NormalizeX(1023), 1e-9)
	assert.InDelta(t, -100.0, c.NormalizeY(0), 1e-9)
	// inside the 5% deadzone band
	assert.Equal(t, 0.0, c.NormalizeY(512+40))
}
