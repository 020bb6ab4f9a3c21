package output

import "github.com/simgear/pots-to-serial/pkg/frame"

type Output interface {
	Publish(frame.Snapshot) error
	Close() error
}

// constructors live in the subpackages
