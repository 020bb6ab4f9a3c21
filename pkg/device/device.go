// Package device runs one device profile: it pulls raw readings from a
// sensor, pushes them through the per-channel smoothing (and, for the
// joystick profile, the calibration machine) and builds the tick's
// frame snapshot.
package device

import (
	"fmt"
	"time"

	"github.com/simgear/pots-to-serial/pkg/calibration"
	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/simgear/pots-to-serial/pkg/frame"
	"github.com/simgear/pots-to-serial/pkg/sensor"
	"github.com/simgear/pots-to-serial/pkg/smooth"
)

type Device struct {
	cfg      config.Config
	sensor   sensor.Sensor
	chCfgs   []config.ChannelConfig
	channels []*smooth.Channel
	cal      *calibration.Calibrator
	preReads int
}

// New wires a device for cfg.Profile. store is only consulted for the
// joystick profile; other profiles ignore it.
func New(cfg config.Config, sns sensor.Sensor, store calibration.Store) (*Device, error) {
	d := &Device{cfg: cfg, sensor: sns, preReads: 1}
	for _, ch := range cfg.Channels {
		if !ch.Enabled {
			continue
		}
		d.chCfgs = append(d.chCfgs, ch)
		if cfg.Profile == config.ProfilePanel {
			d.channels = append(d.channels, smooth.NewEMAChannel(ch, cfg.FullScale, cfg.SmoothingWeight))
		} else {
			d.channels = append(d.channels, smooth.NewChannel(ch, cfg.FullScale))
		}
		if ch.PreReads > d.preReads {
			d.preReads = ch.PreReads
		}
	}

	if len(d.channels) == 0 {
		return nil, fmt.Errorf("no enabled channels")
	}

	switch cfg.Profile {
	case config.ProfileJoystick:
		if len(d.axisChannels()) < 2 {
			return nil, fmt.Errorf("joystick profile needs two axis channels, have %d", len(d.axisChannels()))
		}
		d.cal = calibration.New(store, cfg.Calibration, cfg.FullScale)
	case config.ProfileHandbrake, config.ProfilePanel, config.ProfileThrottle:
	default:
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	return d, nil
}

// axisChannels returns the smoothing channels that are not the
// calibration switch input.
func (d *Device) axisChannels() []int {
	var idxs []int
	for i, ch := range d.chCfgs {
		if d.cfg.Profile == config.ProfileJoystick && ch.Channel == d.cfg.Calibration.SwitchPin {
			continue
		}
		idxs = append(idxs, i)
	}
	return idxs
}

// Tick performs one sample-smooth-frame pass and returns the snapshot
// for the outputs.
func (d *Device) Tick(now time.Time) (frame.Snapshot, error) {
	raws, err := d.readRaw()
	if err != nil {
		return frame.Snapshot{}, err
	}

	snap := frame.Snapshot{DeviceID: d.cfg.DeviceID, Timestamp: now}
	values := make([]frame.ChannelValue, 0, len(d.channels))
	for i, ch := range d.channels {
		chCfg := d.chCfgs[i]
		pre := chCfg.PreReads
		if pre <= 0 {
			pre = 1
		}
		seq := raws[chCfg.Channel]
		if len(seq) > pre {
			seq = seq[:pre]
		}
		smoothed := ch.UpdateAveraged(seq)
		values = append(values, frame.ChannelValue{
			Channel:  chCfg.Channel,
			Name:     chCfg.Name,
			Raw:      ch.Raw(),
			Smoothed: smoothed,
		})
	}

	switch d.cfg.Profile {
	case config.ProfileHandbrake:
		snap.Channels = values[:1]
		snap.Line = frame.Handbrake(values[0].Smoothed)
	case config.ProfilePanel:
		snap.Channels = values
		snap.Line = frame.Panel(d.cfg.DeviceID, values)
	case config.ProfileThrottle:
		for i := range values {
			values[i].Percent = d.percent(values[i].Smoothed, d.chCfgs[i])
		}
		snap.Channels = values
		snap.Line = frame.Throttle(values)
	case config.ProfileJoystick:
		d.joystickTick(now, values, &snap)
	}
	return snap, nil
}

// joystickTick advances the calibration machine and builds the joystick
// frame. Sampling never stalls during the hold or the window; the
// machine is driven purely by the tick clock.
func (d *Device) joystickTick(now time.Time, values []frame.ChannelValue, snap *frame.Snapshot) {
	axes := d.axisChannels()
	x, y := values[axes[0]], values[axes[1]]

	switchActive := false
	for i, ch := range d.chCfgs {
		if ch.Channel == d.cfg.Calibration.SwitchPin {
			// active low: pressed pulls the input under half scale
			switchActive = values[i].Raw < d.cfg.FullScale/2
		}
	}

	events := d.cal.Tick(now, x.Smoothed, y.Smoothed, switchActive)
	for _, ev := range events {
		switch ev {
		case calibration.EventStarted:
			snap.Markers = append(snap.Markers, frame.Line(frame.MarkerCalibrationStarted))
		case calibration.EventCompleted:
			rec := d.cal.Record()
			snap.Markers = append(snap.Markers,
				frame.Line(frame.MarkerCalibrationComplete),
				frame.Center(rec.X.Center, rec.Y.Center))
		}
	}

	x.Percent = d.cal.NormalizeX(x.Smoothed)
	y.Percent = d.cal.NormalizeY(y.Smoothed)
	snap.Channels = []frame.ChannelValue{x, y}
	snap.Line = frame.Joystick(x.Percent, y.Percent, d.cal.SwitchStable())
}

// readRaw collects preReads immediate readings per channel.
func (d *Device) readRaw() (map[int][]int, error) {
	out := make(map[int][]int, len(d.chCfgs))
	for i := 0; i < d.preReads; i++ {
		readings, err := d.sensor.Read()
		if err != nil {
			return nil, fmt.Errorf("sensor read: %w", err)
		}
		for _, r := range readings {
			out[r.Channel] = append(out[r.Channel], r.Raw)
		}
	}
	return out, nil
}

// percent rescales a smoothed value onto 0..100 between the channel's
// configured min/max (full scale when unset), clamped.
func (d *Device) percent(smoothed int, ch config.ChannelConfig) float64 {
	lo, hi := ch.Min, ch.Max
	if hi == 0 {
		hi = d.cfg.FullScale
	}
	if hi <= lo {
		return 0
	}
	pct := float64(smoothed-lo) / float64(hi-lo) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Calibration exposes the calibrator for inspection; nil outside the
// joystick profile.
func (d *Device) Calibration() *calibration.Calibrator {
	return d.cal
}

func (d *Device) Close() error {
	return d.sensor.Close()
}
