package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Naresh476n/iot1/internal/engine"
	"github.com/Naresh476n/iot1/internal/hub"
	"github.com/Naresh476n/iot1/internal/status"
	"github.com/Naresh476n/iot1/internal/store"
)

type nopSubmitter struct{}

func (nopSubmitter) Submit(engine.Command) {}

type fakeConnStatus struct{ connected bool }

func (f fakeConnStatus) IsConnected() bool { return f.connected }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker, *store.MemStore) {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		HTTPAddr:  ":8080",
		Broker:    "tcp://192.168.1.50:1883",
		StoreKind: "memory",
	}
	tr := status.NewTracker(start, cfg)
	docs := store.NewMemStore()
	log := quietLogger()
	srv := New(":0", tr, docs, hub.New(nopSubmitter{}, log), nil, log)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr, docs
}

func testState() engine.Snapshot {
	s := engine.Snapshot{Type: "state", UnitPrice: 8}
	for i := 1; i <= engine.NumChannels; i++ {
		s.Loads = append(s.Loads, engine.LoadSnapshot{ID: i, Voltage: 230, LimitSec: 43200})
	}
	s.Loads[1].Relay = true
	s.Loads[1].Current = 2
	s.Loads[1].Power = 460
	return s
}

func TestStatusEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.PublishState(testState())
	tr.PublishNotification(engine.Notification{Ts: 100, Text: "Relay 2 ON"})

	resp, err := http.Get(ts.URL + "/status.json")
	if err != nil {
		t.Fatalf("GET /status.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if len(sj.Status.Relays) != engine.NumChannels {
		t.Fatalf("relays: got %d, want %d", len(sj.Status.Relays), engine.NumChannels)
	}
	if !sj.Status.Relays[1].On {
		t.Error("expected relay 2 on")
	}
	if sj.Status.Relays[1].PowerW != 460 {
		t.Errorf("relay 2 power: got %v, want 460", sj.Status.Relays[1].PowerW)
	}
	if sj.Status.UnitPrice != 8 {
		t.Errorf("unit price: got %v, want 8", sj.Status.UnitPrice)
	}
	if sj.Status.LastNotified != "Relay 2 ON" {
		t.Errorf("last notification: got %q, want Relay 2 ON", sj.Status.LastNotified)
	}
	if sj.Status.MQTT.Connected {
		t.Error("expected MQTT disconnected with no bridge")
	}
	if sj.Status.MQTT.Broker != "tcp://192.168.1.50:1883" {
		t.Errorf("broker: got %q", sj.Status.MQTT.Broker)
	}
	if sj.Status.WSClients != 0 {
		t.Errorf("ws clients: got %d, want 0", sj.Status.WSClients)
	}
	if sj.Status.Config.StoreKind != "memory" {
		t.Errorf("store kind: got %q, want memory", sj.Status.Config.StoreKind)
	}
}

func TestStatusReportsMQTTConnected(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tr := status.NewTracker(start, status.Config{HTTPAddr: ":8080", Broker: "tcp://b:1883"})
	log := quietLogger()
	srv := New(":0", tr, store.NewMemStore(), hub.New(nopSubmitter{}, log), fakeConnStatus{connected: true}, log)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status.json")
	if err != nil {
		t.Fatalf("GET /status.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected")
	}
}

func TestStateEndpoint(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.PublishState(testState())

	resp, err := http.Get(ts.URL + "/state.json")
	if err != nil {
		t.Fatalf("GET /state.json: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var snap engine.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if snap.Type != "state" {
		t.Errorf("type: got %q, want state", snap.Type)
	}
	if len(snap.Loads) != engine.NumChannels {
		t.Fatalf("loads: got %d, want %d", len(snap.Loads), engine.NumChannels)
	}
	if snap.Loads[1].Power != 460 {
		t.Errorf("load 2 power: got %v, want 460", snap.Loads[1].Power)
	}
}

func TestStateBeforeFirstPublish(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/state.json")
	if err != nil {
		t.Fatalf("GET /state.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	var snap engine.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if snap.Type != "" {
		t.Errorf("type before first publish: got %q, want empty", snap.Type)
	}
}

func TestDocumentsServedVerbatim(t *testing.T) {
	ts, _, docs := newTestServer(t)
	raw := []byte(`{"unitPrice":5.5,"loads":[{"limitSec":100,"timerMin":2}]}`)
	if err := docs.Put(store.SettingsDoc, raw); err != nil {
		t.Fatalf("put settings: %v", err)
	}

	resp, err := http.Get(ts.URL + "/settings.json")
	if err != nil {
		t.Fatalf("GET /settings.json: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(raw) {
		t.Errorf("settings body: got %s, want %s", body, raw)
	}
}

func TestMissingDocumentsServeFallbacks(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/settings.json")
	if err != nil {
		t.Fatalf("GET /settings.json: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "{}" {
		t.Errorf("settings fallback: got %s, want {}", body)
	}

	resp, err = http.Get(ts.URL + "/notifs.json")
	if err != nil {
		t.Fatalf("GET /notifs.json: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != `{"notifs":[]}` {
		t.Errorf("notifs fallback: got %s", body)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr, _ := newTestServer(t)
	tr.PublishState(testState())

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Power Strip") {
		t.Error("expected dashboard title in body")
	}
	if !strings.Contains(string(body), `id="relay-4"`) {
		t.Error("expected a row for channel 4")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "# HELP") {
		t.Error("expected Prometheus exposition output")
	}
}

func TestWSRouteMounted(t *testing.T) {
	ts, _, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial /ws: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(ts.URL + "/status.json")
		if err != nil {
			t.Fatalf("GET /status.json: %v", err)
		}
		var sj status.StatusJSON
		json.NewDecoder(resp.Body).Decode(&sj)
		resp.Body.Close()
		if sj.Status.WSClients == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("ws client never counted, got %d", sj.Status.WSClients)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
