// Package hub fans engine state and notifications out to WebSocket clients
// and feeds their command frames back into the engine. Slow clients drop
// frames rather than slow the engine down.
package hub

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Naresh476n/iot1/internal/engine"
	"github.com/Naresh476n/iot1/internal/metrics"
)

const (
	// clientQueueSize bounds the per-client outbound backlog.
	clientQueueSize = 16

	writeTimeout = 5 * time.Second

	// Per-client command rate. Dashboards send a few commands per
	// interaction; anything faster is a runaway script.
	commandRate  = rate.Limit(5)
	commandBurst = 10
)

// Submitter accepts parsed commands; the engine implements it.
type Submitter interface {
	Submit(engine.Command)
}

type client struct {
	id   string
	conn *websocket.Conn
	ring *frameRing
	wake chan struct{}
	done chan struct{}
}

// Hub tracks connected WebSocket clients. It implements engine.Broadcaster.
type Hub struct {
	submit   Submitter
	log      *logrus.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// New builds a hub feeding parsed commands into submit.
func New(submit Submitter, log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		submit: submit,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
			// Dashboards and CLI tools connect from arbitrary origins on
			// the LAN.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// ServeWS upgrades one client connection and pumps it until it drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		ring: newFrameRing(clientQueueSize),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.WithField("client", c.id).Info("websocket client connected")

	go h.writePump(c)
	h.readPump(c)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishState implements engine.Broadcaster.
func (h *Hub) PublishState(s engine.Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		h.log.WithError(err).Error("encode state failed")
		return
	}
	h.broadcast(data)
}

// PublishNotification implements engine.Broadcaster.
func (h *Hub) PublishNotification(n engine.Notification) {
	data, err := json.Marshal(n.Message())
	if err != nil {
		h.log.WithError(err).Error("encode notification failed")
		return
	}
	h.broadcast(data)
}

// broadcast enqueues one frame per client. The publisher never blocks; a
// client that cannot keep up loses its oldest frames.
func (h *Hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.ring.push(frame)
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
}

// readPump decodes command frames from one client. Frames that fail to
// parse are dropped without side effects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)

	limiter := rate.NewLimiter(commandRate, commandBurst)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			h.log.WithField("client", c.id).Debug("websocket client gone")
			return
		}
		if !limiter.Allow() {
			metrics.DroppedFramesTotal.Inc()
			h.log.WithField("client", c.id).Warn("command rate exceeded, dropping frame")
			continue
		}
		cmd, err := engine.ParseCommand(data)
		if err != nil {
			metrics.DroppedFramesTotal.Inc()
			h.log.WithError(err).WithField("client", c.id).Debug("bad command frame dropped")
			continue
		}
		metrics.CommandsTotal.WithLabelValues(string(cmd.Op)).Inc()
		h.submit.Submit(cmd)
	}
}

// writePump drains one client's ring to its connection.
func (h *Hub) writePump(c *client) {
	defer h.remove(c)

	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
			for {
				frame, ok := c.ring.pop()
				if !ok {
					break
				}
				c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					h.log.WithError(err).WithField("client", c.id).Debug("websocket write failed")
					return
				}
			}
		}
	}
}

// remove drops a client exactly once, whichever pump dies first.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.done)
	}
	h.mu.Unlock()
	c.conn.Close()
}
