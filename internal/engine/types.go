// Package engine contains the metering and relay-control core for the
// four-channel power strip. All channel state is owned by a single engine
// goroutine; sensors, relays, persistence and broadcasting are injected.
// Time is always injectable via a now() source.
package engine

// NumChannels is the number of switched, metered outlets. Channels are
// identified 1..NumChannels on the wire and indexed 0-based internally.
const NumChannels = 4

// Defaults written to a fresh settings document.
const (
	DefaultUnitPrice    = 8.0
	DefaultLimitSeconds = 12 * 3600
)

// channel is the mutable per-outlet state. Only the engine goroutine touches
// it, so no locking is needed.
type channel struct {
	voltage float64
	current float64
	power   float64

	energyWh float64
	cost     float64

	relay          bool
	onSecondsToday int64

	limitSeconds int64 // 0 = no usage cap
	timerMinutes int   // configured countdown, armed on activation
	timerEnd     int64 // unix seconds; 0 = no timer armed
}

// Snapshot is the full engine state document published to subscribers.
type Snapshot struct {
	Type      string         `json:"type"` // always "state"
	UnitPrice float64        `json:"unitPrice"`
	Loads     []LoadSnapshot `json:"loads"`
}

// LoadSnapshot is one channel's state inside a Snapshot.
type LoadSnapshot struct {
	ID         int     `json:"id"`
	Voltage    float64 `json:"voltage"`
	Current    float64 `json:"current"`
	Power      float64 `json:"power"`
	EnergyWh   float64 `json:"energy"`
	Relay      bool    `json:"relay"`
	OnSecToday int64   `json:"onSecToday"`
	LimitSec   int64   `json:"limitSec"`
	TimerMin   int     `json:"timerMin"`
	TimerEnd   int64   `json:"timerEnd,omitempty"` // present only while armed
	Cost       float64 `json:"cost"`
}

// Notification is one entry of the append-only notification log.
type Notification struct {
	Ts   int64  `json:"ts"`
	Text string `json:"text"`
}

// NotificationMessage is the wire form of a notification event.
type NotificationMessage struct {
	Type string `json:"type"` // always "notification"
	Text string `json:"text"`
}

// Message converts a log entry to its wire form.
func (n Notification) Message() NotificationMessage {
	return NotificationMessage{Type: "notification", Text: n.Text}
}

// Settings is the persisted configuration subset. Live metering state
// (energy, cost, on-seconds) is intentionally not persisted and resets on
// restart.
type Settings struct {
	UnitPrice float64                   `json:"unitPrice"`
	Loads     [NumChannels]LoadSettings `json:"loads"`
}

// LoadSettings is the persisted per-channel configuration.
type LoadSettings struct {
	LimitSec int64 `json:"limitSec"`
	TimerMin int   `json:"timerMin"`
}

// DefaultSettings returns the configuration written when no settings
// document exists yet.
func DefaultSettings() Settings {
	s := Settings{UnitPrice: DefaultUnitPrice}
	for i := range s.Loads {
		s.Loads[i] = LoadSettings{LimitSec: DefaultLimitSeconds}
	}
	return s
}
