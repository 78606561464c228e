// Package mqtt bridges the engine to an MQTT broker: state snapshots and
// notifications go out, command frames come in. The bridge is optional; the
// strip is fully operable over WebSocket alone.
package mqtt

// Topics bridged to the broker.
const (
	// TopicState carries the full state snapshot, published once per tick.
	TopicState = "energy/powerstrip/state"

	// TopicNotifications carries notification events.
	TopicNotifications = "energy/powerstrip/notifications"

	// TopicCommands accepts the same JSON command frames as the WebSocket.
	TopicCommands = "energy/powerstrip/commands"
)

// ConnectionStatus reports whether the broker session is active.
type ConnectionStatus interface {
	IsConnected() bool
}
