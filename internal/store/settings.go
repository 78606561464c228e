package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Naresh476n/iot1/internal/engine"
)

// Settings persists the engine configuration as one JSON document.
type Settings struct {
	docs DocumentStore
	log  *logrus.Logger
}

func NewSettings(docs DocumentStore, log *logrus.Logger) *Settings {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Settings{docs: docs, log: log}
}

// Load returns the stored configuration. On first boot the defaults are
// written out and returned. A document that fails to decode yields the
// defaults alongside the error.
func (s *Settings) Load() (engine.Settings, error) {
	data, err := s.docs.Get(SettingsDoc)
	if errors.Is(err, ErrNotExist) {
		def := engine.DefaultSettings()
		if err := s.Save(def); err != nil {
			s.log.WithError(err).Warn("write default settings failed")
		}
		return def, nil
	}
	if err != nil {
		return engine.DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}
	return decodeSettings(data)
}

// Save replaces the stored configuration.
func (s *Settings) Save(cfg engine.Settings) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.docs.Put(SettingsDoc, data); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// decodeSettings merges a stored document over the defaults, so keys missing
// from an older or hand-edited document keep their default values. Unknown
// keys are ignored.
func decodeSettings(data []byte) (engine.Settings, error) {
	out := engine.DefaultSettings()

	var doc struct {
		UnitPrice *float64 `json:"unitPrice"`
		Loads     []struct {
			LimitSec *int64 `json:"limitSec"`
			TimerMin *int   `json:"timerMin"`
		} `json:"loads"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return out, fmt.Errorf("decode settings: %w", err)
	}

	if doc.UnitPrice != nil {
		out.UnitPrice = *doc.UnitPrice
	}
	for i, l := range doc.Loads {
		if i >= engine.NumChannels {
			break
		}
		if l.LimitSec != nil {
			out.Loads[i].LimitSec = *l.LimitSec
		}
		if l.TimerMin != nil {
			out.Loads[i].TimerMin = *l.TimerMin
		}
	}
	return out, nil
}
