package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/Naresh476n/iot1/internal/engine"
	"github.com/Naresh476n/iot1/internal/metrics"
)

const (
	connectTimeout   = 10 * time.Second
	subscribeTimeout = 5 * time.Second
	publishTimeout   = 5 * time.Second
)

// Submitter accepts parsed commands; the engine implements it.
type Submitter interface {
	Submit(engine.Command)
}

// Bridge connects the engine to a broker. It implements engine.Broadcaster
// for the outbound direction and subscribes to TopicCommands for the
// inbound one.
type Bridge struct {
	client paho.Client
	submit Submitter
	log    *logrus.Logger
}

// NewBridge connects to the broker. If the broker is unreachable the bridge
// still comes up and the client keeps retrying in the background; only a
// rejected connection is an error.
func NewBridge(broker, clientID string, submit Submitter, log *logrus.Logger) (*Bridge, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := &Bridge{submit: submit, log: log}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(b.onConnectionLost)

	b.client = paho.NewClient(opts)
	token := b.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.WithField("broker", broker).Warn("mqtt broker not reachable yet, retrying in background")
		return b, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return b, nil
}

// onConnect runs on every (re)connection, so the command subscription
// survives broker restarts.
func (b *Bridge) onConnect(client paho.Client) {
	b.log.Info("mqtt connected")
	token := client.Subscribe(TopicCommands, 1, func(_ paho.Client, msg paho.Message) {
		b.handleCommand(msg.Payload())
	})
	go func() {
		if !token.WaitTimeout(subscribeTimeout) {
			b.log.Warn("mqtt subscribe timeout")
			return
		}
		if err := token.Error(); err != nil {
			b.log.WithError(err).Warn("mqtt subscribe failed")
		}
	}()
}

func (b *Bridge) onConnectionLost(_ paho.Client, err error) {
	b.log.WithError(err).Warn("mqtt connection lost")
}

// handleCommand parses one inbound command frame. Bad frames are dropped
// without side effects, matching the WebSocket path.
func (b *Bridge) handleCommand(payload []byte) {
	cmd, err := engine.ParseCommand(payload)
	if err != nil {
		metrics.DroppedFramesTotal.Inc()
		b.log.WithError(err).Debug("bad mqtt command dropped")
		return
	}
	metrics.CommandsTotal.WithLabelValues(string(cmd.Op)).Inc()
	b.submit.Submit(cmd)
}

// PublishState implements engine.Broadcaster.
func (b *Bridge) PublishState(s engine.Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		b.log.WithError(err).Error("encode state failed")
		return
	}
	// QoS 0 (at-most-once): the next tick replaces a lost snapshot anyway.
	b.publishAsync(TopicState, 0, data)
}

// PublishNotification implements engine.Broadcaster.
func (b *Bridge) PublishNotification(n engine.Notification) {
	data, err := json.Marshal(n.Message())
	if err != nil {
		b.log.WithError(err).Error("encode notification failed")
		return
	}
	// QoS 1 (at-least-once): notifications are one-shot.
	b.publishAsync(TopicNotifications, 1, data)
}

// publishAsync fires the publish and checks the token off the hot path; the
// engine's tick never waits on the broker.
func (b *Bridge) publishAsync(topic string, qos byte, payload []byte) {
	token := b.client.Publish(topic, qos, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			b.log.WithField("topic", topic).Warn("mqtt publish timeout")
			return
		}
		if err := token.Error(); err != nil {
			b.log.WithError(err).WithField("topic", topic).Warn("mqtt publish failed")
		}
	}()
}

// IsConnected reports whether the broker session is up.
func (b *Bridge) IsConnected() bool {
	return b.client.IsConnected()
}

// Close disconnects from the broker.
func (b *Bridge) Close() error {
	b.client.Disconnect(1000) // 1 second timeout
	return nil
}
