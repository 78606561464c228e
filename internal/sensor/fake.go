package sensor

import "errors"

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read consumes the
	// next sample; the last sample repeats once exhausted.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample is a single scripted reading.
type Sample struct {
	Voltage float64
	Current float64
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (float64, float64, error) {
	if f.ReadError != nil {
		return 0, 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, 0, errors.New("no samples configured")
	}
	s := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return s.Voltage, s.Current, nil
}

// Reset rewinds the reader to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
}
