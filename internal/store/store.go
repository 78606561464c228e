// Package store persists small JSON documents whole. Every write replaces
// the complete document; there are no partial updates. Backends cover a
// plain directory, Redis, and an in-memory map for tests.
package store

import "errors"

// ErrNotExist is returned by Get when a document has never been written.
var ErrNotExist = errors.New("store: document does not exist")

// Document names used by the daemon.
const (
	SettingsDoc = "settings.json"
	NotifsDoc   = "notifs.json"
)

// DocumentStore reads and writes whole named documents.
type DocumentStore interface {
	// Get returns the full document body, or ErrNotExist.
	Get(name string) ([]byte, error)

	// Put replaces the full document body.
	Put(name string, data []byte) error

	// Close releases backend resources.
	Close() error
}
