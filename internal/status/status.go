// Package status provides a thread-safe status tracker for the gamepad-hub daemon.
// It is read by the HTTP handlers and the live feed.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Name        string
	PollMs      int64
	LongPressMs int64
	HeartbeatMs int64
	Broker      string
	HTTPPort    string
}

// MaxRecent is how many button events the tracker remembers.
const MaxRecent = 16

// Event is one button event as seen by the daemon.
type Event struct {
	At     time.Time
	Button controller.ButtonID
	Kind   logic.EventKind
	Held   time.Duration
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Controller    controller.State
	Counts        logic.EventCounts
	Recent        []Event // newest first
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	recent [MaxRecent]Event
	next   int // ring index of the next event
	seen   int
	now    func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update sets the controller state and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state controller.State, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.Controller = state
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordEvent remembers e, evicting the oldest event once MaxRecent are held.
func (t *Tracker) RecordEvent(e Event) {
	t.mu.Lock()
	t.recent[t.next] = e
	t.next = (t.next + 1) % MaxRecent
	if t.seen < MaxRecent {
		t.seen++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Recent = make([]Event, t.seen)
	for i := range s.Recent {
		s.Recent[i] = t.recent[(t.next-1-i+MaxRecent)%MaxRecent]
	}
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
