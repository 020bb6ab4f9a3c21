package sensor

import "time"

// Reading is one raw sample from a single analog channel, in counts
// (0..full-scale, 1023 for the 10-bit inputs this project targets).
type Reading struct {
	Channel   int       `json:"channel"`
	Raw       int       `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
}

type Sensor interface {
	Read() ([]Reading, error)
	Close() error
}
