// Package metrics exposes Prometheus instrumentation for the daemon. The
// Collector mirrors every published snapshot into gauges, so scrapes see
// the same numbers as WebSocket clients.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Naresh476n/iot1/internal/engine"
)

var (
	// VoltageVolts is the last sampled bus voltage per channel.
	VoltageVolts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_voltage_volts",
			Help: "Bus voltage per channel",
		},
		[]string{"channel"},
	)

	// CurrentAmperes is the last sampled load current per channel.
	CurrentAmperes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_current_amperes",
			Help: "Load current per channel",
		},
		[]string{"channel"},
	)

	// PowerWatts is the instantaneous power per channel.
	PowerWatts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_power_watts",
			Help: "Instantaneous power per channel",
		},
		[]string{"channel"},
	)

	// EnergyWattHours is the accumulated energy per channel since boot.
	EnergyWattHours = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_energy_watthours",
			Help: "Accumulated energy per channel since daemon start",
		},
		[]string{"channel"},
	)

	// CostUnits is the accumulated cost per channel in the configured
	// currency.
	CostUnits = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_cost_units",
			Help: "Accumulated energy cost per channel",
		},
		[]string{"channel"},
	)

	// RelayOn is 1 while a channel's relay is closed.
	RelayOn = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_relay_on",
			Help: "Relay state per channel (1 = on)",
		},
		[]string{"channel"},
	)

	// OnSeconds is the usage counter per channel.
	OnSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "powerstrip_relay_on_seconds",
			Help: "Accumulated on-time per channel",
		},
		[]string{"channel"},
	)

	// UnitPrice is the configured price per kWh.
	UnitPrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "powerstrip_unit_price",
			Help: "Configured price per kWh",
		},
	)

	// StatePublishesTotal counts published snapshots (ticks and command
	// confirmations).
	StatePublishesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerstrip_state_publishes_total",
			Help: "Total number of state snapshots published",
		},
	)

	// NotificationsTotal counts broadcast notifications.
	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerstrip_notifications_total",
			Help: "Total number of notifications broadcast",
		},
	)

	// CommandsTotal counts commands accepted at the transports, by name.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerstrip_commands_total",
			Help: "Commands accepted from WebSocket and MQTT, by name",
		},
		[]string{"cmd"},
	)

	// DroppedFramesTotal counts inbound frames discarded before reaching
	// the engine (bad JSON, invalid fields, rate limit).
	DroppedFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "powerstrip_dropped_frames_total",
			Help: "Inbound command frames dropped before reaching the engine",
		},
	)
)

// Collector implements engine.Broadcaster.
type Collector struct{}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) PublishState(s engine.Snapshot) {
	UnitPrice.Set(s.UnitPrice)
	StatePublishesTotal.Inc()
	for _, l := range s.Loads {
		ch := strconv.Itoa(l.ID)
		VoltageVolts.WithLabelValues(ch).Set(l.Voltage)
		CurrentAmperes.WithLabelValues(ch).Set(l.Current)
		PowerWatts.WithLabelValues(ch).Set(l.Power)
		EnergyWattHours.WithLabelValues(ch).Set(l.EnergyWh)
		CostUnits.WithLabelValues(ch).Set(l.Cost)
		OnSeconds.WithLabelValues(ch).Set(float64(l.OnSecToday))

		on := 0.0
		if l.Relay {
			on = 1
		}
		RelayOn.WithLabelValues(ch).Set(on)
	}
}

func (c *Collector) PublishNotification(engine.Notification) {
	NotificationsTotal.Inc()
}
