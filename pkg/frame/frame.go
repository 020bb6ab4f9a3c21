// Package frame builds the one-line delimited text frames the devices
// emit each tick, plus the calibration lifecycle marker lines.
package frame

import (
	"strconv"
	"strings"
	"time"
)

const (
	delimiter  = ","
	terminator = "\n"
)

// Calibration lifecycle markers, emitted as bare lines between frames.
const (
	MarkerCalibrationStarted  = "CALIBRATION_STARTED"
	MarkerCalibrationComplete = "CALIBRATION_COMPLETE"
)

// ChannelValue is one channel's contribution to a tick.
type ChannelValue struct {
	Channel  int     `json:"channel"`
	Name     string  `json:"name,omitempty"`
	Raw      int     `json:"raw"`
	Smoothed int     `json:"smoothed"`
	Percent  float64 `json:"percent"`
}

// Snapshot is everything one tick produced: the frame line itself, any
// marker lines that must precede it, and the structured channel values
// for outputs that do not speak the line protocol. It is not retained
// after the outputs have seen it.
type Snapshot struct {
	DeviceID  string
	Line      string
	Markers   []string
	Channels  []ChannelValue
	Timestamp time.Time
}

// Line joins fields with the delimiter and terminates the line. The
// result is written in a single piece so a line-oriented reader never
// observes a partial frame.
func Line(fields ...string) string {
	return strings.Join(fields, delimiter) + terminator
}

// Handbrake is the single-channel schema: `<smoothedValue>`.
func Handbrake(smoothed int) string {
	return Line(strconv.Itoa(smoothed))
}

// Panel is the multi-pot schema: `<id>,<raw1>,<smoothed1>,...`.
func Panel(deviceID string, values []ChannelValue) string {
	fields := make([]string, 0, 1+2*len(values))
	if deviceID != "" {
		fields = append(fields, deviceID)
	}
	for _, v := range values {
		fields = append(fields, strconv.Itoa(v.Raw), strconv.Itoa(v.Smoothed))
	}
	return Line(fields...)
}

// Throttle is the quadrant schema:
// `<tRaw>,<tPct>,<pRaw>,<pPct>,<mRaw>,<mPct>`.
func Throttle(values []ChannelValue) string {
	fields := make([]string, 0, 2*len(values))
	for _, v := range values {
		fields = append(fields, strconv.Itoa(v.Raw), Percent(v.Percent))
	}
	return Line(fields...)
}

// Joystick is `JOYSTICK,<x>,<y>,<switchState>` with normalized axes.
func Joystick(x, y float64, switchState bool) string {
	sw := "0"
	if switchState {
		sw = "1"
	}
	return Line("JOYSTICK", Percent(x), Percent(y), sw)
}

// Center is the `CENTER,<x>,<y>` marker carrying the raw center taken
// at the end of a calibration window.
func Center(x, y int) string {
	return Line("CENTER", strconv.Itoa(x), strconv.Itoa(y))
}

// Percent formats a percentage with one decimal, the precision the
// host-side consumers parse.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Fields splits a frame line back into its fields, dropping the
// terminator. Used by tests and the console output.
func Fields(line string) []string {
	return strings.Split(strings.TrimSuffix(line, terminator), delimiter)
}
