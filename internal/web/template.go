package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Naresh476n/iot1/internal/status"
)

func fmtDuration(d time.Duration) string {
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
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": fmtDuration,
	"secs": func(sec int64) string {
		return fmtDuration(time.Duration(sec) * time.Second)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Power Strip</title>
<style>
body { font-family: monospace; max-width: 760px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
table.loads th, table.loads td { width: auto; white-space: nowrap; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
button, input, select { font-family: monospace; }
#notifs { padding-left: 1.2em; }
</style>
</head>
<body>
<h1>Power Strip<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Loads</h2>
<table class="loads">
<tr><th>#</th><th>Relay</th><th>V</th><th>A</th><th>W</th><th>Wh</th><th>On today</th><th>Limit</th><th>Timer</th><th>Cost</th><th></th></tr>
{{range .State.Loads}}<tr>
<td>{{.ID}}</td>
<td id="relay-{{.ID}}" class="{{if .Relay}}on{{else}}off{{end}}">{{if .Relay}}ON{{else}}OFF{{end}}</td>
<td id="v-{{.ID}}">{{printf "%.1f" .Voltage}}</td>
<td id="a-{{.ID}}">{{printf "%.2f" .Current}}</td>
<td id="w-{{.ID}}">{{printf "%.1f" .Power}}</td>
<td id="wh-{{.ID}}">{{printf "%.1f" .EnergyWh}}</td>
<td id="on-{{.ID}}">{{secs .OnSecToday}}</td>
<td id="limit-{{.ID}}">{{if .LimitSec}}{{secs .LimitSec}}{{else}}off{{end}}</td>
<td id="timer-{{.ID}}">{{if .TimerMin}}{{.TimerMin}}m{{else}}off{{end}}</td>
<td id="cost-{{.ID}}">{{printf "%.2f" .Cost}}</td>
<td><button onclick="relay({{.ID}}, true)">on</button> <button onclick="relay({{.ID}}, false)">off</button></td>
</tr>{{end}}
</table>
<p>Unit price: <span id="price">{{printf "%.2f" .State.UnitPrice}}</span> per kWh</p>

<h2>Controls</h2>
<table>
<tr><th>Channel</th><td><select id="ctl-id"><option>1</option><option>2</option><option>3</option><option>4</option></select></td></tr>
<tr><th>Timer (minutes, 0 disables)</th><td><input id="ctl-timer" type="number" min="0" value="0"> <button onclick="applyTimer()">set</button></td></tr>
<tr><th>Daily limit (seconds)</th><td><input id="ctl-limit" type="number" min="1" value="43200"> <button onclick="applyLimit()">set</button></td></tr>
<tr><th>Unit price</th><td><input id="ctl-price" type="number" min="0" step="0.01" value="{{printf "%.2f" .State.UnitPrice}}"> <button onclick="applyPrice()">set</button></td></tr>
</table>

<h2>Notifications <button onclick="clearNotifs()">clear</button></h2>
<ul id="notifs"></ul>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
{{if .Config.Broker}}<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>{{end}}
<tr><th>Store</th><td>{{.Config.StoreKind}}</td></tr>
<tr><th>WS clients</th><td>{{.WSClients}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/state.json">state</a> · <a href="/settings.json">settings</a> · <a href="/notifs.json">notifs</a> · <a href="/status.json">status</a> · <a href="/metrics">metrics</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var ws = null;

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function fmtSecs(s) {
    s = Math.floor(s);
    var d = Math.floor(s / 86400);
    var h = Math.floor(s % 86400 / 3600);
    var m = Math.floor(s % 3600 / 60);
    var r = s % 60;
    if (d > 0) return d + "d " + h + "h " + m + "m " + r + "s";
    if (h > 0) return h + "h " + m + "m " + r + "s";
    if (m > 0) return m + "m " + r + "s";
    return r + "s";
  }

  function setText(id, text) {
    var el = document.getElementById(id);
    if (el) el.textContent = text;
  }

  function applyState(msg) {
    setText("price", msg.unitPrice.toFixed(2));
    var now = Math.floor(Date.now() / 1000);
    for (var i = 0; i < msg.loads.length; i++) {
      var l = msg.loads[i];
      var relay = document.getElementById("relay-" + l.id);
      if (relay) {
        relay.textContent = l.relay ? "ON" : "OFF";
        relay.className = l.relay ? "on" : "off";
      }
      setText("v-" + l.id, l.voltage.toFixed(1));
      setText("a-" + l.id, l.current.toFixed(2));
      setText("w-" + l.id, l.power.toFixed(1));
      setText("wh-" + l.id, l.energy.toFixed(1));
      setText("on-" + l.id, fmtSecs(l.onSecToday));
      setText("limit-" + l.id, l.limitSec ? fmtSecs(l.limitSec) : "off");
      var timer = l.timerMin ? l.timerMin + "m" : "off";
      if (l.timerEnd) timer += " (" + fmtSecs(Math.max(0, l.timerEnd - now)) + " left)";
      setText("timer-" + l.id, timer);
      setText("cost-" + l.id, l.cost.toFixed(2));
    }
  }

  function clearList() {
    var list = document.getElementById("notifs");
    while (list.firstChild) list.removeChild(list.firstChild);
  }

  function addNotif(text, ts) {
    var list = document.getElementById("notifs");
    var li = document.createElement("li");
    var stamp = ts ? new Date(ts * 1000).toISOString().slice(0, 19) + "Z " : "";
    li.textContent = stamp + text;
    list.insertBefore(li, list.firstChild);
    while (list.children.length > 20) list.removeChild(list.lastChild);
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onerror = function() { setDot("err", "error"); };
    ws.onclose = function() {
      setDot("err", "offline");
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var msg = JSON.parse(ev.data);
        if (msg.type === "state") applyState(msg);
        if (msg.type === "notification") {
          if (msg.text === "Notifs cleared") clearList();
          addNotif(msg.text, Math.floor(Date.now() / 1000));
        }
      } catch (e) {}
    };
  }

  function send(cmd) {
    if (ws && ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(cmd));
  }

  window.relay = function(id, on) {
    send({ cmd: "relay", id: id, state: on });
  };
  window.applyTimer = function() {
    var id = parseInt(document.getElementById("ctl-id").value, 10);
    var min = parseInt(document.getElementById("ctl-timer").value, 10);
    if (!isNaN(id) && !isNaN(min) && min >= 0) send({ cmd: "setTimer", id: id, minutes: min });
  };
  window.applyLimit = function() {
    var id = parseInt(document.getElementById("ctl-id").value, 10);
    var sec = parseInt(document.getElementById("ctl-limit").value, 10);
    if (!isNaN(id) && !isNaN(sec) && sec > 0) send({ cmd: "setLimit", id: id, seconds: sec });
  };
  window.applyPrice = function() {
    var price = parseFloat(document.getElementById("ctl-price").value);
    if (!isNaN(price) && price >= 0) send({ cmd: "setPrice", price: price });
  };
  window.clearNotifs = function() {
    send({ cmd: "clearNotifs" });
  };

  fetch("/notifs.json").then(function(r) {
    return r.json();
  }).then(function(doc) {
    var entries = doc.notifs || [];
    for (var i = 0; i < entries.length; i++) {
      addNotif(entries[i].text, entries[i].ts);
    }
  }).catch(function() {});

  connect();
})();
</script>
</body>
</html>
`

// renderHTML writes the dashboard for snap. Live transport facts come from
// the caller because the tracker only holds engine-published state.
func renderHTML(w io.Writer, snap status.Snapshot, mqttConnected bool, wsClients int) error {
	// Snapshot has an Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime        time.Duration
		MQTTConnected bool
		WSClients     int
	}{
		Snapshot:      snap,
		Uptime:        snap.Uptime(),
		MQTTConnected: mqttConnected,
		WSClients:     wsClients,
	}
	return indexTmpl.Execute(w, data)
}
