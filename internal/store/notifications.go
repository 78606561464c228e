package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Naresh476n/iot1/internal/engine"
)

// notifsDoc is the persisted document shape.
type notifsDoc struct {
	Notifs []engine.Notification `json:"notifs"`
}

// Notifications persists the notification history as one JSON document.
// Every append rewrites the whole document; the log grows until cleared.
type Notifications struct {
	docs DocumentStore
	log  *logrus.Logger
}

func NewNotifications(docs DocumentStore, log *logrus.Logger) *Notifications {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifications{docs: docs, log: log}
}

// Append adds one entry to the end of the history.
func (n *Notifications) Append(entry engine.Notification) error {
	doc := n.read()
	doc.Notifs = append(doc.Notifs, entry)
	return n.write(doc)
}

// Clear truncates the history to an empty document.
func (n *Notifications) Clear() error {
	return n.write(notifsDoc{Notifs: []engine.Notification{}})
}

// Entries returns the stored history, oldest first. An absent document is an
// empty history.
func (n *Notifications) Entries() []engine.Notification {
	return n.read().Notifs
}

// read loads the current document. A missing or undecodable document starts
// the history over rather than blocking new entries.
func (n *Notifications) read() notifsDoc {
	var doc notifsDoc
	data, err := n.docs.Get(NotifsDoc)
	if errors.Is(err, ErrNotExist) {
		return doc
	}
	if err != nil {
		n.log.WithError(err).Warn("read notifications failed, starting fresh")
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		n.log.WithError(err).Warn("notifications document corrupt, starting fresh")
		return notifsDoc{}
	}
	return doc
}

func (n *Notifications) write(doc notifsDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := n.docs.Put(NotifsDoc, data); err != nil {
		return fmt.Errorf("write notifications: %w", err)
	}
	return nil
}
