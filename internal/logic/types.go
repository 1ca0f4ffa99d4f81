// Package logic contains the pure input state machines of the gamepad hub:
// per-button edge detection, listener registries and event counters.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"errors"
	"time"
)

// DefaultLongPressThreshold is the hold time after which a press counts as long.
const DefaultLongPressThreshold = 500 * time.Millisecond

// EventKind identifies one of the four button event channels.
type EventKind string

const (
	EventPress        EventKind = "PRESS"
	EventLongPress    EventKind = "LONG_PRESS"
	EventRelease      EventKind = "RELEASE"
	EventShortRelease EventKind = "SHORT_RELEASE"
)

// EventKinds lists every kind in dispatch priority order.
var EventKinds = []EventKind{EventPress, EventLongPress, EventRelease, EventShortRelease}

var (
	ErrDuplicateListener = errors.New("logic: duplicate listener name")
	ErrUnknownListener   = errors.New("logic: unknown listener name")
	ErrUnknownEventKind  = errors.New("logic: unknown event kind")
)

// ParseEventKind maps a wire name (e.g. "LONG_PRESS") back to its EventKind.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range EventKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", ErrUnknownEventKind
}

// Snapshot is a point-in-time copy of a button's observable state.
type Snapshot struct {
	IsPressed          bool
	RisingEdge         bool
	FallingEdge        bool
	TimeHeld           time.Duration
	TimeReleased       time.Duration
	LongPressThreshold time.Duration
}

// EventCounts tracks the number of each event kind since startup.
type EventCounts struct {
	Press        int
	LongPress    int
	Release      int
	ShortRelease int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
