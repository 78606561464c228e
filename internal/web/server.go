// Package web serves the embedded dashboard, the raw JSON documents and the
// WebSocket endpoint for the power strip daemon.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Naresh476n/iot1/internal/mqtt"
	"github.com/Naresh476n/iot1/internal/status"
	"github.com/Naresh476n/iot1/internal/store"
)

// CommandHub is the WebSocket fan-out the server mounts at /ws.
type CommandHub interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	ClientCount() int
}

// Server wraps the HTTP surface: dashboard, JSON documents, /ws and /metrics.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	docs       store.DocumentStore
	hub        CommandHub
	mqttStatus mqtt.ConnectionStatus
	log        *logrus.Logger
}

// New creates a web server listening on addr. mqttStatus may be nil when the
// bridge is disabled; the status report then shows the broker as disconnected.
func New(addr string, tracker *status.Tracker, docs store.DocumentStore, hub CommandHub, mqttStatus mqtt.ConnectionStatus, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		tracker:    tracker,
		docs:       docs,
		hub:        hub,
		mqttStatus: mqttStatus,
		log:        log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/state.json", s.handleState)
	mux.HandleFunc("/settings.json", s.handleDoc(store.SettingsDoc, []byte("{}")))
	mux.HandleFunc("/notifs.json", s.handleDoc(store.NotifsDoc, []byte(`{"notifs":[]}`)))
	mux.HandleFunc("/status.json", s.handleStatus)
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/metrics", promhttp.Handler())
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Serve accepts connections on ln. Used by tests with ephemeral listeners.
func (s *Server) Serve(ln net.Listener) error {
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) mqttConnected() bool {
	return s.mqttStatus != nil && s.mqttStatus.IsConnected()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderHTML(w, snap, s.mqttConnected(), s.hub.ClientCount()); err != nil {
		s.log.WithError(err).Warn("render dashboard failed")
	}
}

// handleState serves the last broadcast state document, the same JSON the
// WebSocket and MQTT transports carry.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	data, err := json.Marshal(snap.State)
	if err != nil {
		http.Error(w, "encode state failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleDoc serves a stored document verbatim. A document that does not exist
// yet is served as fallback rather than a 404 so pollers always get valid JSON.
func (s *Server) handleDoc(name string, fallback []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := s.docs.Get(name)
		if err != nil {
			if !errors.Is(err, store.ErrNotExist) {
				s.log.WithError(err).WithField("doc", name).Warn("read document failed")
				http.Error(w, "store unavailable", http.StatusInternalServerError)
				return
			}
			data = fallback
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap, s.mqttConnected(), s.hub.ClientCount()))
}
