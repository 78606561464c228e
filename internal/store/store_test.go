package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Naresh476n/iot1/internal/engine"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Get(SettingsDoc)
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, s.Put(SettingsDoc, []byte(`{"unitPrice":8}`)))
	data, err := s.Get(SettingsDoc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"unitPrice":8}`, string(data))

	// Put replaces the whole document.
	require.NoError(t, s.Put(SettingsDoc, []byte(`{"unitPrice":9}`)))
	data, err = s.Get(SettingsDoc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"unitPrice":9}`, string(data))

	// A new store over the same directory sees the same documents.
	s2, err := NewFileStore(dir)
	require.NoError(t, err)
	data, err = s2.Get(SettingsDoc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"unitPrice":9}`, string(data))
}

func TestMemStoreIsolation(t *testing.T) {
	s := NewMemStore()
	_, err := s.Get(NotifsDoc)
	assert.ErrorIs(t, err, ErrNotExist)

	in := []byte(`{"notifs":[]}`)
	require.NoError(t, s.Put(NotifsDoc, in))

	out, err := s.Get(NotifsDoc)
	require.NoError(t, err)
	out[0] = 'X'

	again, err := s.Get(NotifsDoc)
	require.NoError(t, err)
	assert.Equal(t, `{"notifs":[]}`, string(again), "callers must not be able to mutate stored documents")
}

func TestSettingsFirstBootWritesDefaults(t *testing.T) {
	docs := NewMemStore()
	s := NewSettings(docs, nil)

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultSettings(), cfg)

	// The defaults document now exists.
	data, err := docs.Get(SettingsDoc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unitPrice":8`)
	assert.Contains(t, string(data), `"limitSec":43200`)
}

func TestSettingsRoundTrip(t *testing.T) {
	docs := NewMemStore()
	s := NewSettings(docs, nil)

	cfg := engine.DefaultSettings()
	cfg.UnitPrice = 11.5
	cfg.Loads[1].LimitSec = 600
	cfg.Loads[3].TimerMin = 45
	require.NoError(t, s.Save(cfg))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestSettingsPartialDocumentMergesDefaults(t *testing.T) {
	docs := NewMemStore()
	require.NoError(t, docs.Put(SettingsDoc, []byte(`{"loads":[{"timerMin":5}]}`)))

	got, err := NewSettings(docs, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultUnitPrice, got.UnitPrice)
	assert.Equal(t, 5, got.Loads[0].TimerMin)
	assert.Equal(t, int64(engine.DefaultLimitSeconds), got.Loads[0].LimitSec)
	assert.Equal(t, engine.DefaultSettings().Loads[1], got.Loads[1])
}

func TestSettingsUnknownKeysIgnored(t *testing.T) {
	docs := NewMemStore()
	require.NoError(t, docs.Put(SettingsDoc, []byte(`{"unitPrice":5,"wifi":"home","loads":[]}`)))

	got, err := NewSettings(docs, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.UnitPrice)
}

func TestSettingsExtraLoadEntriesIgnored(t *testing.T) {
	docs := NewMemStore()
	doc := `{"loads":[{"timerMin":1},{"timerMin":2},{"timerMin":3},{"timerMin":4},{"timerMin":5},{"timerMin":6}]}`
	require.NoError(t, docs.Put(SettingsDoc, []byte(doc)))

	got, err := NewSettings(docs, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, 4, got.Loads[3].TimerMin)
}

func TestSettingsCorruptDocument(t *testing.T) {
	docs := NewMemStore()
	require.NoError(t, docs.Put(SettingsDoc, []byte(`{unitPrice: oops`)))

	got, err := NewSettings(docs, nil).Load()
	assert.Error(t, err)
	assert.Equal(t, engine.DefaultSettings(), got, "corrupt document must fall back to defaults")
}

func TestNotificationsAppendAndEntries(t *testing.T) {
	docs := NewMemStore()
	n := NewNotifications(docs, nil)

	assert.Empty(t, n.Entries())

	require.NoError(t, n.Append(engine.Notification{Ts: 100, Text: "Relay 1 ON"}))
	require.NoError(t, n.Append(engine.Notification{Ts: 101, Text: "Relay 1 OFF"}))

	entries := n.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Relay 1 ON", entries[0].Text, "entries are oldest first")
	assert.Equal(t, int64(101), entries[1].Ts)

	// Wire shape of the stored document.
	data, err := docs.Get(NotifsDoc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ts":100`)
	assert.Contains(t, string(data), `"text":"Relay 1 ON"`)
}

func TestNotificationsClear(t *testing.T) {
	docs := NewMemStore()
	n := NewNotifications(docs, nil)

	require.NoError(t, n.Append(engine.Notification{Ts: 100, Text: "Relay 2 ON"}))
	require.NoError(t, n.Clear())

	assert.Empty(t, n.Entries())
	data, err := docs.Get(NotifsDoc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"notifs":[]}`, string(data))
}

func TestNotificationsCorruptDocumentStartsFresh(t *testing.T) {
	docs := NewMemStore()
	require.NoError(t, docs.Put(NotifsDoc, []byte(`not json at all`)))

	n := NewNotifications(docs, nil)
	require.NoError(t, n.Append(engine.Notification{Ts: 42, Text: "Relay 3 ON"}))

	entries := n.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "Relay 3 ON", entries[0].Text)
}
