// Package sensor provides per-channel voltage and current readings with
// hardware abstraction. The real implementation drives INA219 monitors over
// the Linux I2C bus. The fake implementation allows testing without
// hardware, and absent sensors degrade to permanent zero readings.
package sensor

import "github.com/sirupsen/logrus"

// Reader reads one channel's instantaneous electrical values.
type Reader interface {
	// Read returns bus voltage (V) and load current (A).
	Read() (voltage, current float64, err error)
}

// DefaultAddresses are the INA219 bus addresses for channels 1..4.
var DefaultAddresses = []uint16{0x40, 0x41, 0x44, 0x45}

// Zero is the permanent reader for an absent sensor.
type Zero struct{}

func (Zero) Read() (float64, float64, error) { return 0, 0, nil }

// Bank groups one reader per channel and absorbs read failures: a failed or
// out-of-range read yields zero so metering never stops. Negative current
// readings from sense-resistor noise clamp to zero.
type Bank struct {
	readers []Reader
	log     *logrus.Logger
}

// NewBank builds a bank over readers, one per channel.
func NewBank(readers []Reader, log *logrus.Logger) *Bank {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bank{readers: readers, log: log}
}

// Read returns voltage and current for a 0-based channel index.
func (b *Bank) Read(ch int) (float64, float64) {
	if ch < 0 || ch >= len(b.readers) {
		return 0, 0
	}
	v, a, err := b.readers[ch].Read()
	if err != nil {
		b.log.WithError(err).WithField("channel", ch+1).Warn("sensor read failed")
		return 0, 0
	}
	if a < 0 {
		a = 0
	}
	return v, a
}
