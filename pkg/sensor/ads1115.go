package sensor

import (
	"fmt"
	"time"

	"github.com/simgear/pots-to-serial/pkg/config"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	pointerConv   = 0x00
	pointerConfig = 0x01
)

// ADS1115Sensor reads the configured channels from an ADS1115 over I2C,
// single-shot per channel. Readings are rescaled from the converter's
// 15-bit positive range into counts (0..fullScale).
type ADS1115Sensor struct {
	dev        *i2c.Dev
	bus        i2c.BusCloser
	channels   []int
	sampleRate int
	fullScale  int
}

func NewADS1115Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	dev := &i2c.Dev{Addr: uint16(cfg.I2C.Address), Bus: bus}
	return &ADS1115Sensor{
		dev:        dev,
		bus:        bus,
		channels:   enabledChannels(cfg),
		sampleRate: cfg.SampleRate,
		fullScale:  cfg.FullScale,
	}, nil
}

func (s *ADS1115Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func (s *ADS1115Sensor) Read() ([]Reading, error) {
	out := make([]Reading, 0, len(s.channels))
	now := time.Now()
	for _, ch := range s.channels {
		msb, lsb, err := s.configForChannel(ch, s.sampleRate)
		if err != nil {
			return nil, err
		}
		// write config
		if err := s.dev.Tx([]byte{pointerConfig, msb, lsb}, nil); err != nil {
			return nil, fmt.Errorf("write config: %w", err)
		}
		// wait for conversion (simple sleep)
		delayMs := int(1000.0/float64(s.sampleRate)) + 2
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
		// read conversion
		readBuf := make([]byte, 2)
		if err := s.dev.Tx([]byte{pointerConv}, readBuf); err != nil {
			return nil, fmt.Errorf("read conv: %w", err)
		}
		raw := int16(readBuf[0])<<8 | int16(readBuf[1])
		out = append(out, Reading{Channel: ch, Raw: toCounts(raw, s.fullScale), Timestamp: now})
	}
	return out, nil
}

// toCounts maps a converter reading onto 0..fullScale. Negative readings
// (input below ground) clamp to zero.
func toCounts(raw int16, fullScale int) int {
	if raw < 0 {
		return 0
	}
	return int(int64(raw) * int64(fullScale) / 32767)
}

func (s *ADS1115Sensor) configForChannel(channel, sampleRate int) (byte, byte, error) {
	var mux byte
	switch channel {
	case 0:
		mux = 0x4
	case 1:
		mux = 0x5
	case 2:
		mux = 0x6
	case 3:
		mux = 0x7
	default:
		return 0, 0, fmt.Errorf("invalid channel %d", channel)
	}
	// PGA: use ±4.096V -> bits 001
	pga := byte(0x1)
	// data rate bits
	var dr byte
	switch sampleRate {
	case 8:
		dr = 0x0
	case 16:
		dr = 0x1
	case 32:
		dr = 0x2
	case 64:
		dr = 0x3
	case 128:
		dr = 0x4
	case 250:
		dr = 0x5
	case 475:
		dr = 0x6
	case 860:
		dr = 0x7
	default:
		dr = 0x4
	}
	var cfg uint16 = 0x8000 // OS = 1 (start single conversion)
	cfg |= uint16(mux) << 12
	cfg |= uint16(pga) << 9
	cfg |= 1 << 8 // single-shot mode
	cfg |= uint16(dr) << 5
	// comparator default: disabled (bits 1:0 = 11)
	cfg |= 0x3
	return byte(cfg >> 8), byte(cfg & 0xFF), nil
}
