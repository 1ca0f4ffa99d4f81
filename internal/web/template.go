package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/gamepad-hub/internal/controller"
	"github.com/sweeney/gamepad-hub/internal/display"
	"github.com/sweeney/gamepad-hub/internal/logic"
	"github.com/sweeney/gamepad-hub/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"ms": func(d time.Duration) int64 { return d.Milliseconds() },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Gamepad {{.Config.Name}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.screen { background: #243; color: #cf8; padding: 6px 10px; white-space: pre; }
.down { color: green; font-weight: bold; }
.up { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Gamepad {{.Config.Name}}<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Display</h2>
<div class="screen">{{range $i, $row := .Rows}}<div id="row-{{$i}}">{{$row}}&nbsp;</div>{{end}}</div>
<p>Rumble: <span id="rumble">{{.Rumble}}</span></p>

<h2>Buttons</h2>
<table>
{{range .Buttons}}<tr><th>{{.ID}}</th><td id="btn-{{.ID}}" class="{{if .State.IsPressed}}down{{else}}up{{end}}">{{if .State.IsPressed}}down {{ms .State.TimeHeld}}ms{{else}}up{{end}}</td></tr>
{{end}}</table>

<h2>Sticks</h2>
<table>
{{range .Axes}}<tr><th>{{.ID}}</th><td id="axis-{{.ID}}">{{printf "%+.2f" .Value}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>PRESS</th><td>{{.Counts.Press}}</td></tr>
<tr><th>LONG_PRESS</th><td>{{.Counts.LongPress}}</td></tr>
<tr><th>RELEASE</th><td>{{.Counts.Release}}</td></tr>
<tr><th>SHORT_RELEASE</th><td>{{.Counts.ShortRelease}}</td></tr>
</table>

<h2>Recent Events</h2>
{{if .Recent}}<table>
{{range .Recent}}<tr><th>{{.At.UTC.Format "15:04:05.000"}}</th><td>{{.Button}} {{.Kind}}{{if .Held}} ({{ms .Held}}ms){{end}}</td></tr>
{{end}}</table>{{else}}<p>none yet</p>{{end}}

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongPressMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    var ws = new WebSocket(proto + "//" + location.host + "/live");

    ws.onopen = function() { setDot("ok", "live"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      var live;
      try { live = JSON.parse(ev.data); } catch (e) { return; }
      live.display.rows.forEach(function(row, i) {
        var el = document.getElementById("row-" + i);
        if (el) el.textContent = row + " ";
      });
      document.getElementById("rumble").textContent = live.display.rumble;
      Object.keys(live.buttons).forEach(function(id) {
        var el = document.getElementById("btn-" + id);
        if (!el) return;
        var b = live.buttons[id];
        el.className = b.pressed ? "down" : "up";
        el.textContent = b.pressed ? "down " + b.held_ms + "ms" : "up";
      });
      Object.keys(live.axes).forEach(function(id) {
        var el = document.getElementById("axis-" + id);
        if (!el) return;
        var v = live.axes[id];
        el.textContent = (v >= 0 ? "+" : "") + v.toFixed(2);
      });
    };
  }
  connect();
})();
</script>
</body>
</html>
`

type buttonRow struct {
	ID    controller.ButtonID
	State logic.Snapshot
}

type axisRow struct {
	ID    controller.AxisID
	Value float64
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	st := snap.Controller
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime  time.Duration
		Rows    []string
		Rumble  string
		Buttons []buttonRow
		Axes    []axisRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Rows:     st.Lines[:display.TextLines],
		Rumble:   st.Lines[display.RumbleLine],
	}
	for _, id := range controller.Buttons {
		b, ok := st.Buttons[id]
		if !ok {
			continue
		}
		data.Buttons = append(data.Buttons, buttonRow{ID: id, State: b})
	}
	for _, id := range controller.Axes {
		if v, ok := st.Axes[id]; ok {
			data.Axes = append(data.Axes, axisRow{ID: id, Value: v})
		}
	}
	indexTmpl.Execute(w, data)
}
