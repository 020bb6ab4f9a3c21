// Package serial writes frame lines to a serial port, one write per
// line, fire-and-forget. This is the transport the original devices
// spoke natively.
package serial

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/simgear/pots-to-serial/pkg/frame"
	"github.com/simgear/pots-to-serial/pkg/output"
)

const DefaultBaudRate = 115200

type SerialOutput struct {
	w      io.Writer
	closer io.Closer
}

func NewSerial(cfg config.SerialConfig) (output.Output, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return &SerialOutput{w: port, closer: port}, nil
}

// newWriterOutput wraps a plain writer; tests use it in place of a port.
func newWriterOutput(w io.Writer) *SerialOutput {
	return &SerialOutput{w: w}
}

// Publish writes each marker line and then the frame line. Every line
// goes out in a single Write so a line-oriented reader on the far end
// never sees a partial frame. Nothing is requeued on error.
func (s *SerialOutput) Publish(snap frame.Snapshot) error {
	for _, m := range snap.Markers {
		if _, err := io.WriteString(s.w, m); err != nil {
			return fmt.Errorf("write marker: %w", err)
		}
	}
	if snap.Line == "" {
		return nil
	}
	if _, err := io.WriteString(s.w, snap.Line); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (s *SerialOutput) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
