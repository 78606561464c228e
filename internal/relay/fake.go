package relay

// FakeDriver is a test double that records switch calls.
type FakeDriver struct {
	// States holds the last driven value per channel.
	States map[int]bool

	// Calls records every Set invocation in order.
	Calls []Call

	// Err, if set, will be returned by Set()
	Err error

	// Closed tracks if Close was called
	Closed bool
}

// Call is one recorded Set invocation.
type Call struct {
	Channel int
	On      bool
}

// NewFakeDriver creates an empty recorder.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{States: make(map[int]bool)}
}

// Set records the call and updates States.
func (f *FakeDriver) Set(channel int, on bool) error {
	f.Calls = append(f.Calls, Call{Channel: channel, On: on})
	if f.Err != nil {
		return f.Err
	}
	f.States[channel] = on
	return nil
}

// Close marks the driver as closed.
func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}
