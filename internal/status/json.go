package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/gamepad-hub/internal/display"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Controller    string       `json:"controller"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Live          LiveJSON     `json:"live"`
	Recent        []EventJSON  `json:"recent_events"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Press        int `json:"press"`
	LongPress    int `json:"long_press"`
	Release      int `json:"release"`
	ShortRelease int `json:"short_release"`
}

// EventJSON is the JSON representation of a remembered button event.
type EventJSON struct {
	Timestamp string `json:"timestamp"`
	Button    string `json:"button"`
	Event     string `json:"event"`
	HeldMs    int64  `json:"held_ms"`
}

// LiveJSON is the fast-changing part of the status: inputs and display.
type LiveJSON struct {
	Buttons map[string]ButtonJSON `json:"buttons"`
	Axes    map[string]float64    `json:"axes"`
	Display DisplayJSON           `json:"display"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Pressed    bool  `json:"pressed"`
	HeldMs     int64 `json:"held_ms"`
	ReleasedMs int64 `json:"released_ms"`
}

// DisplayJSON mirrors what the display shows.
type DisplayJSON struct {
	Rows   []string `json:"rows"`
	Rumble string   `json:"rumble"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	LongPressMs int64  `json:"long_press_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPPort    string `json:"http_port"`
}

func buildLive(snap Snapshot) LiveJSON {
	st := snap.Controller
	live := LiveJSON{
		Buttons: make(map[string]ButtonJSON, len(st.Buttons)),
		Axes:    make(map[string]float64, len(st.Axes)),
		Display: DisplayJSON{
			Rows:   append([]string(nil), st.Lines[:display.TextLines]...),
			Rumble: st.Lines[display.RumbleLine],
		},
	}
	for id, b := range st.Buttons {
		live.Buttons[string(id)] = ButtonJSON{
			Pressed:    b.IsPressed,
			HeldMs:     b.TimeHeld.Milliseconds(),
			ReleasedMs: b.TimeReleased.Milliseconds(),
		}
	}
	for id, v := range st.Axes {
		live.Axes[string(id)] = v
	}
	return live
}

func buildRecent(events []Event) []EventJSON {
	out := make([]EventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, EventJSON{
			Timestamp: e.At.UTC().Format(time.RFC3339Nano),
			Button:    string(e.Button),
			Event:     string(e.Kind),
			HeldMs:    e.Held.Milliseconds(),
		})
	}
	return out
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Controller:    snap.Config.Name,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Press:        snap.Counts.Press,
			LongPress:    snap.Counts.LongPress,
			Release:      snap.Counts.Release,
			ShortRelease: snap.Counts.ShortRelease,
		},
		Live:   buildLive(snap),
		Recent: buildRecent(snap.Recent),
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			LongPressMs: snap.Config.LongPressMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPPort:    snap.Config.HTTPPort,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatLive returns the compact live view sent to websocket clients. It
// carries no timestamps, so equal output means nothing changed.
func FormatLive(snap Snapshot) []byte {
	data, _ := json.Marshal(buildLive(snap))
	return data
}
