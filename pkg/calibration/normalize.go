package calibration

// Normalize maps a raw reading onto -100..+100 around the calibrated
// center. Readings within the deadzone of center report zero; the
// remaining travel from the deadzone edge to the axis bound is rescaled
// linearly and clamped. A degenerate axis (center at or inside the
// deadzone of a bound) reports zero rather than dividing by zero.
func Normalize(raw int, ax Axis, deadzone int) float64 {
	off := raw - ax.Center
	if off > -deadzone && off < deadzone {
		return 0
	}
	if off > 0 {
		span := ax.Max - (ax.Center + deadzone)
		if span <= 0 {
			return 0
		}
		v := float64(off-deadzone) / float64(span) * 100
		if v > 100 {
			return 100
		}
		return v
	}
	span := (ax.Center - deadzone) - ax.Min
	if span <= 0 {
		return 0
	}
	v := float64(off+deadzone) / float64(span) * 100
	if v < -100 {
		return -100
	}
	return v
}
