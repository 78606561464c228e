package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// SensorBank reads the instantaneous electrical values for one channel.
// Implementations never fail: an absent or broken sensor reads as zero.
type SensorBank interface {
	// Read returns voltage (V) and current (A) for a 0-based channel index.
	Read(channel int) (voltage, current float64)
}

// RelayDriver drives the physical relay outputs.
type RelayDriver interface {
	// Set switches a 0-based channel on or off.
	Set(channel int, on bool) error
}

// SettingsStore persists the configuration subset as one document.
type SettingsStore interface {
	Load() (Settings, error)
	Save(Settings) error
}

// NotificationLog persists the append-only notification history.
type NotificationLog interface {
	Append(Notification) error
	Clear() error
}

// Broadcaster receives every published state snapshot and notification.
// Implementations must not block; slow consumers drop frames.
type Broadcaster interface {
	PublishState(Snapshot)
	PublishNotification(Notification)
}

// MultiBroadcaster fans publishes out to several sinks in order.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) PublishState(s Snapshot) {
	for _, b := range m {
		b.PublishState(s)
	}
}

func (m MultiBroadcaster) PublishNotification(n Notification) {
	for _, b := range m {
		b.PublishNotification(n)
	}
}

// Options configures a new Engine.
type Options struct {
	Sensors   SensorBank
	Relays    RelayDriver
	Settings  SettingsStore
	Notifs    NotificationLog
	Broadcast Broadcaster // nil broadcasts to nobody

	Log *logrus.Logger // nil uses the logrus standard logger

	Now       func() time.Time // nil uses time.Now
	Poll      time.Duration    // scheduler granularity, default 250ms
	QueueSize int              // pending command buffer, default 64
}

// Engine owns all channel state and applies commands and metering ticks in a
// single goroutine. Submit is the only safe entry point from other
// goroutines.
type Engine struct {
	sensors   SensorBank
	relays    RelayDriver
	settings  SettingsStore
	notifs    NotificationLog
	broadcast Broadcaster
	log       *logrus.Logger

	now  func() time.Time
	poll time.Duration

	commands chan Command

	channels  [NumChannels]channel
	unitPrice float64
	lastTick  time.Time
}

// New builds an engine and loads persisted settings. A failed load is logged
// and the engine starts from defaults.
func New(opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Poll <= 0 {
		opts.Poll = 250 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Broadcast == nil {
		opts.Broadcast = MultiBroadcaster{}
	}

	e := &Engine{
		sensors:   opts.Sensors,
		relays:    opts.Relays,
		settings:  opts.Settings,
		notifs:    opts.Notifs,
		broadcast: opts.Broadcast,
		log:       opts.Log,
		now:       opts.Now,
		poll:      opts.Poll,
		commands:  make(chan Command, opts.QueueSize),
	}
	e.lastTick = e.now()

	s, err := e.settings.Load()
	if err != nil {
		e.log.WithError(err).Warn("load settings failed, starting from defaults")
		s = DefaultSettings()
	}
	e.applySettings(s)
	return e
}

// Submit queues a command for the engine goroutine. It never blocks: if the
// queue is full the command is dropped and logged.
func (e *Engine) Submit(cmd Command) {
	select {
	case e.commands <- cmd:
	default:
		e.log.WithField("op", cmd.Op).Warn("command queue full, dropping")
	}
}

// Run drives the engine until ctx is done. Commands are applied as they
// arrive; a metering tick runs at most once per elapsed whole second.
// An initial snapshot is published so transports have state before the
// first tick.
func (e *Engine) Run(ctx context.Context) error {
	e.broadcast.PublishState(e.snapshot())

	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-e.commands:
			e.apply(cmd)
		case <-ticker.C:
			e.maybeTick()
		}
	}
}

// maybeTick runs one tick if at least a whole second has elapsed since the
// previous one. Late wakeups run a single tick, never a catch-up burst, so
// on-time counters advance by wall-clock seconds at most.
func (e *Engine) maybeTick() {
	now := e.now()
	if now.Sub(e.lastTick) < time.Second {
		return
	}
	e.lastTick = now
	e.tick(now)
}

// tick runs one metering and policy pass over all channels, then publishes
// the resulting snapshot.
func (e *Engine) tick(now time.Time) {
	epoch := now.Unix()
	for i := range e.channels {
		c := &e.channels[i]

		v, a := e.sensors.Read(i)
		c.voltage = v
		c.current = a
		c.power = v * a
		c.energyWh += c.power / 3600
		c.cost = c.energyWh / 1000 * e.unitPrice

		if !c.relay {
			continue
		}
		c.onSecondsToday++

		// Limit wins over timer: a limit trip also disarms the timer, so
		// the later timer check cannot fire a second notification.
		if c.limitSeconds > 0 && c.onSecondsToday >= c.limitSeconds {
			e.forceOff(i, fmt.Sprintf("Relay %d auto OFF by limit", i+1))
		}
		if c.timerEnd > 0 && epoch >= c.timerEnd {
			e.forceOff(i, fmt.Sprintf("Relay %d auto OFF by timer", i+1))
		}
	}
	e.broadcast.PublishState(e.snapshot())
}

// forceOff switches a relay off from policy, clearing any armed timer.
func (e *Engine) forceOff(i int, text string) {
	if err := e.relays.Set(i, false); err != nil {
		e.log.WithError(err).WithField("channel", i+1).Warn("relay write failed")
	}
	c := &e.channels[i]
	c.relay = false
	c.timerEnd = 0
	e.notify(text)
}

// apply executes one validated command. Invalid channel ids and unknown ops
// are silent no-ops; every applied command publishes a fresh snapshot.
func (e *Engine) apply(cmd Command) {
	switch cmd.Op {
	case OpRelay:
		if !validChannel(cmd.Channel) {
			return
		}
		i := cmd.Channel - 1
		if err := e.relays.Set(i, cmd.On); err != nil {
			e.log.WithError(err).WithField("channel", cmd.Channel).Warn("relay write failed")
		}
		c := &e.channels[i]
		c.relay = cmd.On
		if cmd.On && c.timerMinutes > 0 {
			c.timerEnd = e.now().Unix() + int64(c.timerMinutes)*60
		} else {
			c.timerEnd = 0
		}
		state := "OFF"
		if cmd.On {
			state = "ON"
		}
		e.notify(fmt.Sprintf("Relay %d %s", cmd.Channel, state))

	case OpSetTimer:
		if !validChannel(cmd.Channel) || cmd.Minutes < 0 {
			return
		}
		c := &e.channels[cmd.Channel-1]
		c.timerMinutes = cmd.Minutes
		if c.relay && cmd.Minutes > 0 {
			c.timerEnd = e.now().Unix() + int64(cmd.Minutes)*60
		} else {
			c.timerEnd = 0
		}
		e.saveSettings()

	case OpSetLimit:
		if !validChannel(cmd.Channel) || cmd.Seconds <= 0 {
			return
		}
		e.channels[cmd.Channel-1].limitSeconds = cmd.Seconds
		e.saveSettings()

	case OpSetPrice:
		e.unitPrice = cmd.Price
		for i := range e.channels {
			c := &e.channels[i]
			c.cost = c.energyWh / 1000 * e.unitPrice
		}
		e.saveSettings()

	case OpClearNotifs:
		if err := e.notifs.Clear(); err != nil {
			e.log.WithError(err).Warn("clear notifications failed")
		}
		// The cleared notice is broadcast but not appended, so a fresh read
		// of the log stays empty.
		e.broadcast.PublishNotification(Notification{Ts: e.now().Unix(), Text: "Notifs cleared"})

	default:
		return
	}
	e.broadcast.PublishState(e.snapshot())
}

// notify appends to the persistent log and fans the event out.
func (e *Engine) notify(text string) {
	n := Notification{Ts: e.now().Unix(), Text: text}
	e.log.WithField("text", text).Info("notification")
	if err := e.notifs.Append(n); err != nil {
		e.log.WithError(err).Warn("append notification failed")
	}
	e.broadcast.PublishNotification(n)
}

// saveSettings persists the configuration subset synchronously. On failure
// the in-memory state stays authoritative and the engine keeps running.
func (e *Engine) saveSettings() {
	if err := e.settings.Save(e.currentSettings()); err != nil {
		e.log.WithError(err).Warn("save settings failed")
	}
}

// applySettings copies persisted configuration into channel state.
func (e *Engine) applySettings(s Settings) {
	e.unitPrice = s.UnitPrice
	for i := range e.channels {
		e.channels[i].limitSeconds = s.Loads[i].LimitSec
		e.channels[i].timerMinutes = s.Loads[i].TimerMin
	}
}

// currentSettings builds the persistable subset from channel state.
func (e *Engine) currentSettings() Settings {
	s := Settings{UnitPrice: e.unitPrice}
	for i := range e.channels {
		s.Loads[i] = LoadSettings{
			LimitSec: e.channels[i].limitSeconds,
			TimerMin: e.channels[i].timerMinutes,
		}
	}
	return s
}

// snapshot builds the published state document.
func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Type:      "state",
		UnitPrice: e.unitPrice,
		Loads:     make([]LoadSnapshot, NumChannels),
	}
	for i := range e.channels {
		c := &e.channels[i]
		s.Loads[i] = LoadSnapshot{
			ID:         i + 1,
			Voltage:    c.voltage,
			Current:    c.current,
			Power:      c.power,
			EnergyWh:   c.energyWh,
			Relay:      c.relay,
			OnSecToday: c.onSecondsToday,
			LimitSec:   c.limitSeconds,
			TimerMin:   c.timerMinutes,
			TimerEnd:   c.timerEnd,
			Cost:       c.cost,
		}
	}
	return s
}
