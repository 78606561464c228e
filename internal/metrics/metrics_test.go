package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Naresh476n/iot1/internal/engine"
)

func TestCollectorMirrorsSnapshot(t *testing.T) {
	c := NewCollector()

	c.PublishState(engine.Snapshot{
		Type:      "state",
		UnitPrice: 8.5,
		Loads: []engine.LoadSnapshot{
			{ID: 1, Voltage: 230, Current: 2, Power: 460, EnergyWh: 12.5, Relay: true, OnSecToday: 300, Cost: 0.10625},
			{ID: 2, Voltage: 0, Current: 0, Power: 0},
		},
	})

	if got := testutil.ToFloat64(UnitPrice); got != 8.5 {
		t.Errorf("UnitPrice: got %v, want 8.5", got)
	}
	if got := testutil.ToFloat64(PowerWatts.WithLabelValues("1")); got != 460 {
		t.Errorf("PowerWatts{1}: got %v, want 460", got)
	}
	if got := testutil.ToFloat64(EnergyWattHours.WithLabelValues("1")); got != 12.5 {
		t.Errorf("EnergyWattHours{1}: got %v, want 12.5", got)
	}
	if got := testutil.ToFloat64(RelayOn.WithLabelValues("1")); got != 1 {
		t.Errorf("RelayOn{1}: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(RelayOn.WithLabelValues("2")); got != 0 {
		t.Errorf("RelayOn{2}: got %v, want 0", got)
	}
	if got := testutil.ToFloat64(OnSeconds.WithLabelValues("1")); got != 300 {
		t.Errorf("OnSeconds{1}: got %v, want 300", got)
	}
}

func TestCollectorCountsNotifications(t *testing.T) {
	c := NewCollector()
	before := testutil.ToFloat64(NotificationsTotal)

	c.PublishNotification(engine.Notification{Ts: 1, Text: "Relay 1 ON"})
	c.PublishNotification(engine.Notification{Ts: 2, Text: "Relay 1 OFF"})

	if got := testutil.ToFloat64(NotificationsTotal) - before; got != 2 {
		t.Errorf("NotificationsTotal delta: got %v, want 2", got)
	}
}
