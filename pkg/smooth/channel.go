package smooth

import "github.com/simgear/pots-to-serial/pkg/config"

// averager is the smoothing core shared by Ring and EMA channels.
type averager interface {
	Add(raw int) int
	Mean() int
}

// Channel owns the smoothing state for one analog input: optional
// inversion, a smoothing core, and a hysteresis deadzone against the
// last reported value.
type Channel struct {
	avg       averager
	invert    bool
	fullScale int
	deadzone  int
	lastRaw   int
	last      int
	hasLast   bool
}

// NewChannel builds a ring-buffer smoothed channel from its config.
func NewChannel(cfg config.ChannelConfig, fullScale int) *Channel {
	depth := cfg.Depth
	if depth <= 0 {
		depth = 10
	}
	return &Channel{
		avg:       NewRing(depth),
		invert:    cfg.Invert,
		fullScale: fullScale,
		deadzone:  cfg.Deadzone,
	}
}

// NewEMAChannel builds an exponentially smoothed channel, as used by the
// panel profile.
func NewEMAChannel(cfg config.ChannelConfig, fullScale int, weight float64) *Channel {
	return &Channel{
		avg:       NewEMA(weight),
		invert:    cfg.Invert,
		fullScale: fullScale,
		deadzone:  cfg.Deadzone,
	}
}

// Update feeds one raw sample and returns the reported value. When the
// new smoothed value is within the deadzone of the previous reported
// value, the previous value is kept.
func (c *Channel) Update(raw int) int {
	if c.invert {
		raw = c.fullScale - raw
	}
	c.lastRaw = raw
	smoothed := c.avg.Add(raw)
	if c.deadzone > 0 && c.hasLast && abs(smoothed-c.last) < c.deadzone {
		return c.last
	}
	c.last = smoothed
	c.hasLast = true
	return c.last
}

// UpdateAveraged pre-filters several immediate reads into one sample
// before smoothing.
func (c *Channel) UpdateAveraged(raws []int) int {
	if len(raws) == 0 {
		return c.Value()
	}
	sum := 0
	for _, r := range raws {
		sum += r
	}
	return c.Update(sum / len(raws))
}

// Value returns the last reported value without consuming a sample.
func (c *Channel) Value() int {
	if !c.hasLast {
		return c.avg.Mean()
	}
	return c.last
}

// Raw returns the last raw sample fed in, after inversion.
func (c *Channel) Raw() int {
	return c.lastRaw
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
