//go:build linux

package sensor

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ina219"
	"periph.io/x/host/v3"
)

// INA219 reads one channel from an INA219 current monitor.
type INA219 struct {
	dev *ina219.Dev
}

// NewINA219 configures the monitor at addr on bus.
func NewINA219(bus i2c.Bus, addr uint16) (*INA219, error) {
	opts := ina219.DefaultOpts
	opts.Address = int(addr)
	dev, err := ina219.New(bus, &opts)
	if err != nil {
		return nil, fmt.Errorf("ina219 at %#x: %w", addr, err)
	}
	return &INA219{dev: dev}, nil
}

// Read returns bus voltage (V) and load current (A).
func (s *INA219) Read() (float64, float64, error) {
	pm, err := s.dev.Sense()
	if err != nil {
		return 0, 0, fmt.Errorf("ina219 sense: %w", err)
	}
	v := float64(pm.Voltage) / float64(physic.Volt)
	a := float64(pm.Current) / float64(physic.Ampere)
	return v, a, nil
}

// Probe opens the named I2C bus ("" = first available) and attaches one
// monitor per address. Addresses that do not respond get a Zero reader so
// the strip keeps running with the sensors it has. The returned func
// releases the bus.
func Probe(log *logrus.Logger, busName string, addrs []uint16) ([]Reader, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("init host drivers: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus: %w", err)
	}

	readers := make([]Reader, len(addrs))
	for i, addr := range addrs {
		dev, err := NewINA219(bus, addr)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"channel": i + 1,
				"addr":    fmt.Sprintf("%#x", addr),
			}).Warn("sensor not found, channel reads zero")
			readers[i] = Zero{}
			continue
		}
		log.WithFields(logrus.Fields{
			"channel": i + 1,
			"addr":    fmt.Sprintf("%#x", addr),
		}).Info("sensor attached")
		readers[i] = dev
	}
	return readers, bus.Close, nil
}
