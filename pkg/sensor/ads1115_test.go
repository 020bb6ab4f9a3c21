package sensor

import (
	"testing"
)

func TestConfigForChannelBytes(t *testing.T) {
	s := &ADS1115Sensor{}

	// channel 0, sample rate 128 -> expect msb 0xC3 lsb 0x83 (see implementation)
	msb, lsb, err := s.configForChannel(0, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC3 || lsb != 0x83 {
		t.Fatalf("channel0@128 => got %02X %02X; want C3 83", msb, lsb)
	}

	// channel 1, sample rate 128 -> D3 83
	msb, lsb, err = s.configForChannel(1, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xD3 || lsb != 0x83 {
		t.Fatalf("channel1@128 => got %02X %02X; want D3 83", msb, lsb)
	}

	// sample rate 8 for channel 0 -> msb C3 lsb 03 (dr=0)
	msb, lsb, err = s.configForChannel(0, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msb != 0xC3 || lsb != 0x03 {
		t.Fatalf("channel0@8 => got %02X %02X; want C3 03", msb, lsb)
	}

	// invalid channel
	_, _, err = s.configForChannel(9, 128)
	if err == nil {
		t.Fatalf("expected error for invalid channel")
	}
}

func TestToCounts(t *testing.T) {
	tests := []struct {
		raw  int16
		want int
	}{
		{0, 0},
		{32767, 1023},
		{16384, 511},
		{-100, 0},
	}
	for _, tt := range tests {
		if got := toCounts(tt.raw, 1023); got != tt.want {
			t.Fatalf("toCounts(%d) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestFakeSensorScript(t *testing.T) {
	f := NewFakeSensor([]int{0}, 1023)
	f.Script(0, 100, 200)

	for _, want := range []int{100, 200, 200} {
		rs, err := f.Read()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if len(rs) != 1 || rs[0].Raw != want {
			t.Fatalf("read = %+v; want raw %d", rs, want)
		}
	}

	f.Set(0, 7)
	rs, _ := f.Read()
	if rs[0].Raw != 7 {
		t.Fatalf("set value not returned: %+v", rs)
	}
}
