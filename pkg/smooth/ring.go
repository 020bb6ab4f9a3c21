// Package smooth implements the per-channel smoothing used by the device
// profiles: ring-buffer moving averages, weighted exponential smoothing,
// hysteresis deadzones and switch debouncing.
package smooth

// Ring is a fixed-depth circular buffer of raw samples with an O(1)
// running mean. The sum always equals the sum of the buffer contents.
type Ring struct {
	buf []int
	sum int
	idx int
}

func NewRing(depth int) *Ring {
	if depth <= 0 {
		depth = 1
	}
	return &Ring{buf: make([]int, depth)}
}

// Add overwrites the oldest slot with raw and returns the new mean,
// using integer division over the full depth.
func (r *Ring) Add(raw int) int {
	r.sum -= r.buf[r.idx]
	r.buf[r.idx] = raw
	r.sum += raw
	r.idx = (r.idx + 1) % len(r.buf)
	return r.Mean()
}

func (r *Ring) Mean() int {
	return r.sum / len(r.buf)
}

func (r *Ring) Depth() int {
	return len(r.buf)
}
