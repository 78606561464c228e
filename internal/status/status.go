// Package status provides a thread-safe view of daemon state for HTTP
// handlers. The engine keeps it current through the broadcaster interface.
package status

import (
	"sync"
	"time"

	"github.com/Naresh476n/iot1/internal/engine"
)

// Config contains daemon configuration for display.
type Config struct {
	HTTPAddr  string
	Broker    string
	StoreKind string
	DataDir   string
}

// Snapshot is a point-in-time view of daemon state. It is a value
// type, safe to use after the lock is released.
type Snapshot struct {
	State        engine.Snapshot // last published engine state
	LastStateAt  time.Time
	LastNotified string
	StartTime    time.Time
	Now          time.Time
	Config       Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. It implements
// engine.Broadcaster so every published snapshot and notification lands
// here.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// PublishState implements engine.Broadcaster.
func (t *Tracker) PublishState(s engine.Snapshot) {
	t.mu.Lock()
	t.snap.State = s
	t.snap.LastStateAt = t.now()
	t.mu.Unlock()
}

// PublishNotification implements engine.Broadcaster.
func (t *Tracker) PublishNotification(n engine.Notification) {
	t.mu.Lock()
	t.snap.LastNotified = n.Text
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
