package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Relays        []RelayJSON `json:"relays"`
	UnitPrice     float64     `json:"unit_price"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	LastStateAt   string      `json:"last_state_at,omitempty"`
	LastNotified  string      `json:"last_notification,omitempty"`
	MQTT          MQTTStatus  `json:"mqtt"`
	WSClients     int         `json:"ws_clients"`
	Config        ConfigJSON  `json:"config"`
}

// RelayJSON summarizes one channel.
type RelayJSON struct {
	ID         int     `json:"id"`
	On         bool    `json:"on"`
	PowerW     float64 `json:"power_w"`
	EnergyWh   float64 `json:"energy_wh"`
	OnSecToday int64   `json:"on_sec_today"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	HTTPAddr  string `json:"http_addr"`
	Broker    string `json:"broker,omitempty"`
	StoreKind string `json:"store"`
	DataDir   string `json:"data_dir,omitempty"`
}

// FormatJSON returns the JSON status for the web endpoint. Live transport
// facts (broker session, client count) are sampled by the caller.
func FormatJSON(snap Snapshot, mqttConnected bool, wsClients int) []byte {
	inner := StatusInner{
		UnitPrice:     snap.State.UnitPrice,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		LastNotified:  snap.LastNotified,
		MQTT:          MQTTStatus{Connected: mqttConnected, Broker: snap.Config.Broker},
		WSClients:     wsClients,
		Config: ConfigJSON{
			HTTPAddr:  snap.Config.HTTPAddr,
			Broker:    snap.Config.Broker,
			StoreKind: snap.Config.StoreKind,
			DataDir:   snap.Config.DataDir,
		},
	}
	if !snap.LastStateAt.IsZero() {
		inner.LastStateAt = snap.LastStateAt.UTC().Format(time.RFC3339)
	}
	for _, l := range snap.State.Loads {
		inner.Relays = append(inner.Relays, RelayJSON{
			ID:         l.ID,
			On:         l.Relay,
			PowerW:     l.Power,
			EnergyWh:   l.EnergyWh,
			OnSecToday: l.OnSecToday,
		})
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
