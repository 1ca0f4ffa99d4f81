// Package mqtt provides MQTT publishing and command subscription with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sweeney/gamepad-hub/internal/command"
	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/logic"
)

// TopicPrefix roots every topic of this daemon.
const TopicPrefix = "gamepad"

// Topics are the MQTT topics of one controller.
type Topics struct {
	Events string // button events
	System string // lifecycle events
	Alert  string // inbound alert commands
	Status string // inbound status commands
	Rumble string // inbound rumble commands
}

// NewTopics returns the topics for the controller called name.
func NewTopics(name string) Topics {
	base := TopicPrefix + "/" + name
	return Topics{
		Events: base + "/events",
		System: base + "/system",
		Alert:  base + "/display/alert",
		Status: base + "/display/status",
		Rumble: base + "/display/rumble",
	}
}

// Commands maps each inbound command topic to its kind.
func (t Topics) Commands() map[string]command.Kind {
	return map[string]command.Kind{
		t.Alert:  command.KindAlert,
		t.Status: command.KindStatus,
		t.Rumble: command.KindRumble,
	}
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event ButtonEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler receives an inbound display command.
type CommandHandler func(kind command.Kind, payload []byte)

// Subscriber delivers inbound display commands.
type Subscriber interface {
	OnCommand(h CommandHandler)
}

// ButtonEvent is one button event of a controller.
type ButtonEvent struct {
	Timestamp  time.Time
	Controller string
	Button     controller.ButtonID
	Kind       logic.EventKind
	Held       time.Duration // time held before the event
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Config     *SystemConfig
	Heartbeat  *HeartbeatInfo
	Network    *NetworkInfo
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemConfig is the daemon configuration reported at startup.
type SystemConfig struct {
	PollMs      int64  `json:"poll_ms"`
	LongPressMs int64  `json:"long_press_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
}

// HeartbeatInfo carries uptime and event counts.
type HeartbeatInfo struct {
	UptimeSeconds int64 `json:"uptime_s"`
	Press         int   `json:"press"`
	LongPress     int   `json:"long_press"`
	Release       int   `json:"release"`
	ShortRelease  int   `json:"short_release"`
}

// NetworkInfo describes the host network as reported by pi-helper.
type NetworkInfo struct {
	Type   string `json:"type"`
	IP     string `json:"ip"`
	Status string `json:"status"`
	SSID   string `json:"ssid,omitempty"`
}

// NewHeartbeatInfo converts counter output to its payload form.
func NewHeartbeatInfo(hb logic.HeartbeatData) *HeartbeatInfo {
	return &HeartbeatInfo{
		UptimeSeconds: int64(hb.Uptime / time.Second),
		Press:         hb.Counts.Press,
		LongPress:     hb.Counts.LongPress,
		Release:       hb.Counts.Release,
		ShortRelease:  hb.Counts.ShortRelease,
	}
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the button event details.
type ButtonPayload struct {
	Timestamp  string `json:"timestamp"`
	Controller string `json:"controller"`
	Button     string `json:"button"`
	Event      string `json:"event"`
	HeldMs     int64  `json:"held_ms"`
}

// FormatPayload creates the JSON payload for a button event.
func FormatPayload(event ButtonEvent) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp:  event.Timestamp.UTC().Format(time.RFC3339Nano),
			Controller: event.Controller,
			Button:     string(event.Button),
			Event:      string(event.Kind),
			HeldMs:     event.Held.Milliseconds(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Config    *SystemConfig  `json:"config,omitempty"`
	Heartbeat *HeartbeatInfo `json:"heartbeat,omitempty"`
	Network   *NetworkInfo   `json:"network,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
			Config:    event.Config,
			Heartbeat: event.Heartbeat,
			Network:   event.Network,
		},
	}
	return json.Marshal(payload)
}

// ValidName reports whether name can be used as a topic level.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/+#")
}
