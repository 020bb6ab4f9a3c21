package smooth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_MeanOfLastN(t *testing.T) {
	r := NewRing(5)

	// Fill once, then feed more; the mean must track exactly the last 5.
	seq := []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	for i, v := range seq {
		got := r.Add(v)
		if i < 4 {
			continue // buffer not yet filled once
		}
		sum := 0
		for _, w := range seq[i-4 : i+1] {
			sum += w
		}
		assert.Equal(t, sum/5, got, "mean after sample %d", i)
	}
}

func TestRing_SumInvariant(t *testing.T) {
	r := NewRing(4)
	for _, v := range []int{3, 1, 4, 1, 5, 9, 2, 6} {
		r.Add(v)
		sum := 0
		for _, b := range r.buf {
			sum += b
		}
		assert.Equal(t, sum, r.sum, "running sum must equal buffer sum")
	}
}

func TestRing_Idempotence(t *testing.T) {
	r := NewRing(8)
	var got int
	for i := 0; i < 8; i++ {
		got = r.Add(777)
	}
	assert.Equal(t, 777, got, "constant input must converge to exactly that value")
	assert.Equal(t, 777, r.Add(777))
}

func TestRing_ZeroDepthClamped(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, 42, r.Add(42))
	assert.Equal(t, 1, r.Depth())
}

func TestEMA_PrimesOnFirstSample(t *testing.T) {
	e := NewEMA(0.2)
	assert.Equal(t, 512, e.Add(512))
	// 512 + 0.2*(1023-512) = 614.2 -> 614
	assert.Equal(t, 614, e.Add(1023))
}

func TestEMA_InvalidWeightFallsBack(t *testing.T) {
	e := NewEMA(7)
	assert.Equal(t, 0.2, e.weight)
}
