// Package relay drives the four switched outputs with hardware abstraction.
// The real implementation uses the Linux GPIO character device. The fake
// implementation allows testing without hardware.
package relay

// Driver switches relay outputs.
type Driver interface {
	// Set drives a 0-based channel on or off.
	Set(channel int, on bool) error

	// Close releases output resources.
	Close() error
}

// DefaultPins are the BCM output lines for channels 1..4.
var DefaultPins = []int{16, 17, 18, 19}

// Noop is the driver used when no GPIO hardware is configured; relay state
// stays purely logical.
type Noop struct{}

func (Noop) Set(int, bool) error { return nil }

func (Noop) Close() error { return nil }
