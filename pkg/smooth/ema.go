package smooth

import "math"

// EMA is a weighted exponential moving average. The first sample primes
// the average so startup does not decay from zero.
type EMA struct {
	value  float64
	weight float64
	primed bool
}

func NewEMA(weight float64) *EMA {
	if weight <= 0 || weight > 1 {
		weight = 0.2
	}
	return &EMA{weight: weight}
}

func (e *EMA) Add(raw int) int {
	if !e.primed {
		e.value = float64(raw)
		e.primed = true
	} else {
		e.value += e.weight * (float64(raw) - e.value)
	}
	return e.Mean()
}

func (e *EMA) Mean() int {
	return int(math.Round(e.value))
}
