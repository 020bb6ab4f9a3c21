package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Boundaries(t *testing.T) {
	ax := Axis{Min: 0, Center: 512, Max: 1023}
	dz := 51 // 5% of full scale

	tests := []struct {
		name string
		raw  int
		want float64
	}{
		{"center", 512, 0},
		{"inside deadzone high", 512 + dz - 1, 0},
		{"inside deadzone low", 512 - dz + 1, 0},
		{"max", 1023, 100},
		{"min", 0, -100},
		{"beyond max clamps", 2000, 100},
		{"below min clamps", -50, -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(tt.raw, ax, dz), 1e-9)
		})
	}
}

func TestNormalize_LinearBetweenEdgeAndBound(t *testing.T) {
	ax := Axis{Min: 0, Center: 500, Max: 1000}
	dz := 50
	// halfway between the deadzone edge (550) and max (1000)
	got := Normalize(775, ax, dz)
	assert.InDelta(t, 50.0, got, 1e-9)
}

func TestNormalize_DegenerateAxis(t *testing.T) {
	// center coincides with max: positive travel has no span
	ax := Axis{Min: 0, Center: 1023, Max: 1023}
	assert.Equal(t, 0.0, Normalize(1023, ax, 10))
	assert.Equal(t, 0.0, Normalize(1040, ax, 10))
	// negative side still works
	assert.InDelta(t, -100.0, Normalize(0, ax, 10), 1e-9)

	// center at min
	ax = Axis{Min: 0, Center: 0, Max: 1023}
	assert.Equal(t, 0.0, Normalize(0, ax, 10))
	assert.Equal(t, 0.0, Normalize(-20, ax, 10))
}

func TestNormalize_ZeroDeadzone(t *testing.T) {
	ax := Axis{Min: 0, Center: 512, Max: 1024}
	assert.Equal(t, 0.0, Normalize(512, ax, 0))
	assert.InDelta(t, 100.0, Normalize(1024, ax, 0), 1e-9)
}
