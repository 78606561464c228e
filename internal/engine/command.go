package engine

import (
	"encoding/json"
	"fmt"
)

// Op identifies a command operation.
type Op string

const (
	OpRelay       Op = "relay"
	OpSetTimer    Op = "setTimer"
	OpSetLimit    Op = "setLimit"
	OpSetPrice    Op = "setPrice"
	OpClearNotifs Op = "clearNotifs"
)

// Command is a validated command ready for the engine. Only the fields
// relevant to Op are meaningful.
type Command struct {
	Op      Op
	Channel int     // 1-based channel id for channel-scoped ops
	On      bool    // OpRelay
	Minutes int     // OpSetTimer
	Seconds int64   // OpSetLimit; 0 parses but applies as a no-op
	Price   float64 // OpSetPrice
}

// ParseCommand decodes and validates one JSON command frame. A frame that is
// not valid JSON, names an unknown operation, omits a required field, or
// carries an out-of-range value is rejected; transports drop rejected frames
// without side effects.
func ParseCommand(data []byte) (Command, error) {
	var raw struct {
		Cmd     string   `json:"cmd"`
		ID      *int     `json:"id"`
		State   *bool    `json:"state"`
		Minutes *int     `json:"minutes"`
		Seconds *int64   `json:"seconds"`
		Price   *float64 `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}

	switch Op(raw.Cmd) {
	case OpRelay:
		if raw.ID == nil || raw.State == nil {
			return Command{}, fmt.Errorf("relay: missing id or state")
		}
		if !validChannel(*raw.ID) {
			return Command{}, fmt.Errorf("relay: channel %d out of range", *raw.ID)
		}
		return Command{Op: OpRelay, Channel: *raw.ID, On: *raw.State}, nil

	case OpSetTimer:
		if raw.ID == nil || raw.Minutes == nil {
			return Command{}, fmt.Errorf("setTimer: missing id or minutes")
		}
		if !validChannel(*raw.ID) {
			return Command{}, fmt.Errorf("setTimer: channel %d out of range", *raw.ID)
		}
		if *raw.Minutes < 0 {
			return Command{}, fmt.Errorf("setTimer: negative minutes %d", *raw.Minutes)
		}
		return Command{Op: OpSetTimer, Channel: *raw.ID, Minutes: *raw.Minutes}, nil

	case OpSetLimit:
		if raw.ID == nil || raw.Seconds == nil {
			return Command{}, fmt.Errorf("setLimit: missing id or seconds")
		}
		if !validChannel(*raw.ID) {
			return Command{}, fmt.Errorf("setLimit: channel %d out of range", *raw.ID)
		}
		if *raw.Seconds < 0 {
			return Command{}, fmt.Errorf("setLimit: negative seconds %d", *raw.Seconds)
		}
		return Command{Op: OpSetLimit, Channel: *raw.ID, Seconds: *raw.Seconds}, nil

	case OpSetPrice:
		if raw.Price == nil {
			return Command{}, fmt.Errorf("setPrice: missing price")
		}
		return Command{Op: OpSetPrice, Price: *raw.Price}, nil

	case OpClearNotifs:
		return Command{Op: OpClearNotifs}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q", raw.Cmd)
	}
}

func validChannel(id int) bool {
	return id >= 1 && id <= NumChannels
}
