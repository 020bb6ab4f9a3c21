package sensor

import (
	"sync"
	"time"
)

// FakeSensor is a scriptable in-memory Sensor used for tests and for
// running without hardware. Each channel holds its last set level; Set
// changes it at any time, Script queues a sequence of levels consumed
// one per Read.
type FakeSensor struct {
	channels []int
	levels   map[int]int
	scripts  map[int][]int
	mu       sync.Mutex
}

func NewFakeSensor(channels []int, fullScale int) *FakeSensor {
	levels := make(map[int]int, len(channels))
	for _, ch := range channels {
		levels[ch] = fullScale / 2
	}
	return &FakeSensor{
		channels: channels,
		levels:   levels,
		scripts:  make(map[int][]int),
	}
}

// Set pins a channel to a constant level.
func (f *FakeSensor) Set(channel, raw int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels[channel] = raw
	delete(f.scripts, channel)
}

// Script queues raw values returned by successive Reads; after the script
// is exhausted the last value sticks.
func (f *FakeSensor) Script(channel int, raws ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[channel] = append([]int(nil), raws...)
}

func (f *FakeSensor) Read() ([]Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	out := make([]Reading, 0, len(f.channels))
	for _, ch := range f.channels {
		if script := f.scripts[ch]; len(script) > 0 {
			f.levels[ch] = script[0]
			f.scripts[ch] = script[1:]
		}
		out = append(out, Reading{Channel: ch, Raw: f.levels[ch], Timestamp: now})
	}
	return out, nil
}

func (f *FakeSensor) Close() error { return nil }
