package sensor

import "github.com/simgear/pots-to-serial/pkg/config"

// enabledChannels returns the channel numbers enabled in the config, in
// declaration order.
func enabledChannels(cfg config.Config) []int {
	out := make([]int, 0, len(cfg.Channels))
	for _, c := range cfg.Channels {
		if c.Enabled {
			out = append(out, c.Channel)
		}
	}
	return out
}
