// Package calibration holds the persisted per-axis calibration used by
// the joystick profile: min/center/max tracking, normalization into a
// signed percent range, and the timed calibration state machine.
package calibration

// Axis is the calibrated range of one analog axis, in raw counts.
type Axis struct {
	Min    int
	Center int
	Max    int
}

// Record is the process-wide calibration state. It survives power
// cycles through a Store; Valid is false until a calibration window has
// completed at least once.
type Record struct {
	X     Axis
	Y     Axis
	Valid bool
}

// DefaultRecord is the full-range fallback used when no persisted
// record exists or the persisted one is invalid. It is never persisted.
func DefaultRecord(fullScale int) Record {
	ax := Axis{Min: 0, Center: fullScale / 2, Max: fullScale}
	return Record{X: ax, Y: ax}
}
