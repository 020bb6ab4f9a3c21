package console

import (
	"fmt"
	"time"

	"github.com/simgear/pots-to-serial/pkg/frame"
	"github.com/simgear/pots-to-serial/pkg/output"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(snap frame.Snapshot) error {
	for _, m := range snap.Markers {
		fmt.Print(m)
	}
	for _, v := range snap.Channels {
		fmt.Printf("%s channel=%d raw=%d smoothed=%d percent=%.1f\n",
			snap.Timestamp.Format(time.RFC3339), v.Channel, v.Raw, v.Smoothed, v.Percent)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
