package app

// Embedded console pages. Styling is deliberately minimal; the console's
// value is the state it shows, not the chrome.

const consoleCSS = `:root {
  --bg: #0d1117;
  --panel: #161b22;
  --border: #30363d;
  --text: #c9d1d9;
  --muted: #8b949e;
  --accent: #58a6ff;
  --ok: #3fb950;
  --warn: #d29922;
  --danger: #f85149;
}
body { background: var(--bg); color: var(--text); font-family: -apple-system, 'Segoe UI', sans-serif; margin: 0; }
.container { max-width: 1100px; margin: 0 auto; padding: 24px; }
nav { display: flex; gap: 16px; padding: 12px 24px; border-bottom: 1px solid var(--border); }
nav a { color: var(--muted); text-decoration: none; }
nav a:hover { color: var(--accent); }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); gap: 16px; }
.card { background: var(--panel); border: 1px solid var(--border); border-radius: 8px; padding: 16px; }
.card h3 { margin-top: 0; }
.kv { display: flex; justify-content: space-between; padding: 4px 0; border-bottom: 1px solid var(--border); }
.kv span:first-child { color: var(--muted); }
table { width: 100%; border-collapse: collapse; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--border); }
th { color: var(--muted); }
button { background: var(--panel); color: var(--text); border: 1px solid var(--border); border-radius: 6px; padding: 8px 14px; cursor: pointer; }
button.primary { border-color: var(--accent); color: var(--accent); }
button.danger { border-color: var(--danger); color: var(--danger); }
button:disabled { opacity: 0.5; cursor: default; }
input { background: var(--bg); color: var(--text); border: 1px solid var(--border); border-radius: 6px; padding: 8px; width: 100%; box-sizing: border-box; }
label { display: block; margin: 12px 0 4px; color: var(--muted); }
.alert { border: 1px solid var(--danger); color: var(--danger); border-radius: 8px; padding: 12px; margin: 16px 0; }
.note { color: var(--muted); font-size: 13px; }
.pill { border-radius: 10px; padding: 2px 8px; font-size: 12px; }
.pill.ok { background: var(--ok); color: #04260f; }
.pill.bad { background: var(--danger); color: #2d0705; }
`

const consoleNavHTML = `<nav>
  <a href="/">Dashboard</a>
  <a href="/signals">Signals</a>
  <a href="/actions">Actions</a>
  <a href="/raw">Raw</a>
  <a href="/settings">Settings</a>
</nav>`

const dashboardPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>FincsOps Console</title>
<link rel="stylesheet" href="/static/console.css">
</head>
<body>
` + consoleNavHTML + `
<div class="container">
  <div id="alert" class="alert" style="display:none"></div>
  <div class="grid">
    <div class="card">
      <h3>Bot status <span id="running" class="pill bad">unknown</span></h3>
      <div class="kv"><span>Last scrape</span><span id="last_scrape">-</span></div>
      <div class="kv"><span>Latest signal</span><span id="last_new_segment">-</span></div>
      <div class="kv"><span>Scrape attempt</span><span id="scrape_last_attempt">-</span></div>
      <div class="kv"><span>Scrape success</span><span id="scrape_last_success">-</span></div>
      <div class="kv"><span>Poll interval</span><span id="poll_interval">-</span></div>
      <div class="kv"><span>Dry-run</span><span id="dry_run">-</span></div>
      <div class="kv"><span>Last error</span><span id="last_error">-</span></div>
    </div>
    <div class="card">
      <h3>Controls</h3>
      <p>
        <button id="btn-start" class="primary" onclick="command('start')">Start bot</button>
        <button id="btn-stop" class="danger" onclick="command('stop')">Stop bot</button>
        <button id="btn-run-once" onclick="command('run-once')">Run once</button>
        <button id="btn-dry-run" onclick="command('dry-run')">Toggle dry-run</button>
      </p>
      <p id="command-message" class="note"></p>
    </div>
    <div class="card">
      <h3>Saxo connection <span id="saxo_state" class="pill bad">unknown</span></h3>
      <div class="kv"><span>Environment</span><span id="saxo_env">-</span></div>
      <div class="kv"><span>Access token</span><span id="saxo_access">-</span></div>
      <div class="kv"><span>Refresh token</span><span id="saxo_refresh">-</span></div>
      <div class="kv"><span>Equity</span><span id="saxo_equity">-</span></div>
      <div class="kv"><span>Refresh expiry</span><span id="saxo_countdown">-</span></div>
    </div>
    <div class="card">
      <h3>Saxo authorization</h3>
      <p><button onclick="fetchAuthURL()">Get authorization URL</button></p>
      <p id="auth-url" class="note"></p>
      <label>Authorization code</label>
      <input id="auth-code" type="text" placeholder="paste code">
      <p><button class="primary" onclick="exchangeCode()">Save tokens</button></p>
      <p id="auth-message" class="note"></p>
    </div>
    <div class="card">
      <h3>Recent signals</h3>
      <table><thead><tr><th>Detected</th><th>Pair</th><th>Action</th><th>Side</th><th>Size</th></tr></thead>
      <tbody id="signals"></tbody></table>
    </div>
    <div class="card">
      <h3>Recent actions</h3>
      <table><thead><tr><th>Created</th><th>Type</th><th>Broker</th><th>Status</th></tr></thead>
      <tbody id="actions"></tbody></table>
    </div>
  </div>
</div>
<script>
function setText(id, value) { document.getElementById(id).textContent = value; }

function render(state) {
  var card = state.status_card;
  var runEl = document.getElementById('running');
  runEl.textContent = card.running_label;
  runEl.className = 'pill ' + (card.running ? 'ok' : 'bad');
  setText('last_scrape', card.last_scrape);
  setText('last_new_segment', card.last_new_segment);
  setText('scrape_last_attempt', card.scrape_last_attempt);
  setText('scrape_last_success', card.scrape_last_success);
  setText('poll_interval', card.poll_interval + 's');
  setText('dry_run', card.dry_run ? 'on' : 'off');
  setText('last_error', card.last_error);

  var saxoEl = document.getElementById('saxo_state');
  saxoEl.textContent = state.saxo.state;
  saxoEl.className = 'pill ' + (state.saxo.state === 'ok' ? 'ok' : 'bad');
  setText('saxo_env', state.saxo.env || '-');
  setText('saxo_access', state.saxo.has_access_token ? 'yes' : 'no');
  setText('saxo_refresh', state.saxo.has_refresh_token ? 'yes' : 'no');
  setText('saxo_equity', state.saxo.equity);
  setText('saxo_countdown', state.saxo.refresh_countdown);

  var alertEl = document.getElementById('alert');
  if (state.last_sync_error) {
    alertEl.textContent = state.last_sync_error;
    alertEl.style.display = 'block';
  } else {
    alertEl.style.display = 'none';
  }

  document.getElementById('signals').innerHTML = state.signals.map(function(s) {
    return '<tr><td>' + s.detected + '</td><td>' + s.pair + '</td><td>' + s.action +
      '</td><td>' + s.side + '</td><td>' + s.size + '</td></tr>';
  }).join('');
  document.getElementById('actions').innerHTML = state.actions.map(function(a) {
    return '<tr><td>' + a.created + '</td><td>' + a.type + '</td><td>' + a.broker +
      '</td><td>' + a.status + '</td></tr>';
  }).join('');
}

function refresh() {
  fetch('/api/state').then(function(r) { return r.json(); }).then(render);
}

function command(name) {
  var btn = document.getElementById('btn-' + name);
  btn.disabled = true;
  fetch('/api/bot/' + name, { method: 'POST' })
    .then(function(r) { return r.json(); })
    .then(function(state) {
      setText('command-message', state.message || state.phase);
      refresh();
    })
    .catch(function() { setText('command-message', 'operation failed'); })
    .finally(function() { btn.disabled = false; });
}

function fetchAuthURL() {
  fetch('/api/saxo/auth-url')
    .then(function(r) { return r.json(); })
    .then(function(resp) {
      setText('auth-url', resp.url || resp.state.message);
    });
}

function exchangeCode() {
  var code = document.getElementById('auth-code').value;
  fetch('/api/saxo/auth-exchange', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ code: code })
  })
    .then(function(r) { return r.json(); })
    .then(function(state) { setText('auth-message', state.message || state.phase); });
}

refresh();
try {
  var scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(scheme + location.host + '/ws');
  ws.onmessage = function(ev) { render(JSON.parse(ev.data)); };
} catch (e) {
  setInterval(refresh, 5000);
}
</script>
</body>
</html>`

const signalsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Signals - FincsOps</title>
<link rel="stylesheet" href="/static/console.css">
</head>
<body>
` + consoleNavHTML + `
<div class="container">
  <div class="card">
    <h3>Parsed signals</h3>
    <table><thead><tr><th>Detected</th><th>Pair</th><th>Action</th><th>Side</th><th>Size</th><th>Source</th></tr></thead>
    <tbody id="rows"></tbody></table>
  </div>
</div>
<script>
fetch('/api/state').then(function(r) { return r.json(); }).then(function(state) {
  document.getElementById('rows').innerHTML = state.signals.map(function(s) {
    return '<tr><td>' + s.detected + '</td><td>' + s.pair + '</td><td>' + s.action +
      '</td><td>' + s.side + '</td><td>' + s.size + '</td><td class="note">' + s.source + '</td></tr>';
  }).join('');
});
</script>
</body>
</html>`

const actionsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Actions - FincsOps</title>
<link rel="stylesheet" href="/static/console.css">
</head>
<body>
` + consoleNavHTML + `
<div class="container">
  <div class="card">
    <h3>Executed actions</h3>
    <table><thead><tr><th>Created</th><th>Type</th><th>Broker</th><th>Status</th><th>Hash</th><th>Error</th></tr></thead>
    <tbody id="rows"></tbody></table>
  </div>
</div>
<script>
fetch('/api/state').then(function(r) { return r.json(); }).then(function(state) {
  document.getElementById('rows').innerHTML = state.actions.map(function(a) {
    return '<tr><td>' + a.created + '</td><td>' + a.type + '</td><td>' + a.broker +
      '</td><td>' + a.status + '</td><td>' + a.hash + '</td><td class="note">' + (a.error || '-') + '</td></tr>';
  }).join('');
});
</script>
</body>
</html>`

const rawPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Raw captures - FincsOps</title>
<link rel="stylesheet" href="/static/console.css">
</head>
<body>
` + consoleNavHTML + `
<div class="container">
  <div class="card">
    <h3>Raw capture audit</h3>
    <table><thead><tr><th>Captured</th><th>Channel</th><th>Hash</th><th>Processed</th><th>Text</th></tr></thead>
    <tbody id="rows"></tbody></table>
  </div>
</div>
<script>
fetch('/api/raw').then(function(r) { return r.json(); }).then(function(resp) {
  document.getElementById('rows').innerHTML = resp.raw.map(function(c) {
    return '<tr><td>' + c.captured + '</td><td>' + c.channel + '</td><td>' + c.hash +
      '</td><td>' + (c.processed ? 'yes' : 'no') + '</td><td class="note">' + c.text + '</td></tr>';
  }).join('');
});
</script>
</body>
</html>`

const settingsPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Settings - FincsOps</title>
<link rel="stylesheet" href="/static/console.css">
</head>
<body>
` + consoleNavHTML + `
<div class="container">
  <div class="card" style="max-width:560px">
    <h3>Bot settings</h3>
    <p class="note">Editable, non-secret configuration. Credentials stay on the server.</p>
    <label>Poll interval (seconds)</label>
    <input id="poll_interval" type="number" min="1">
    <label>Allowed pairs (comma-separated)</label>
    <input id="allowed_pairs" type="text">
    <label>Max lot cap (0-1)</label>
    <input id="max_lot_cap" type="number" step="0.01" min="0" max="1">
    <label>Dedup window (seconds)</label>
    <input id="dedup_window" type="number" min="0">
    <label>Max open positions</label>
    <input id="max_open_positions" type="number" min="0">
    <label>Max total units</label>
    <input id="max_total_units" type="number" min="0">
    <label>Default dry-run</label>
    <input id="dry_run" type="checkbox" style="width:auto">
    <p><button id="save" class="primary" onclick="save()">Save settings</button></p>
    <p id="message" class="note"></p>
  </div>
</div>
<script>
function val(id) { return document.getElementById(id).value; }

fetch('/api/state').then(function(r) { return r.json(); }).then(function(state) {
  var s = state.settings;
  if (!s) { return; }
  document.getElementById('poll_interval').value = s.poll_interval;
  document.getElementById('allowed_pairs').value = (s.allowed_pairs || []).join(', ');
  document.getElementById('max_lot_cap').value = s.max_lot_cap;
  document.getElementById('dedup_window').value = s.dedup_window;
  document.getElementById('max_open_positions').value = s.max_open_positions;
  document.getElementById('max_total_units').value = s.max_total_units;
  document.getElementById('dry_run').checked = s.dry_run;
});

function save() {
  var btn = document.getElementById('save');
  btn.disabled = true;
  fetch('/api/settings', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({
      poll_interval: val('poll_interval'),
      allowed_pairs: val('allowed_pairs'),
      max_lot_cap: val('max_lot_cap'),
      dedup_window: val('dedup_window'),
      max_open_positions: val('max_open_positions'),
      max_total_units: val('max_total_units'),
      dry_run: document.getElementById('dry_run').checked
    })
  })
    .then(function(r) { return r.json(); })
    .then(function(state) {
      document.getElementById('message').textContent = state.message || state.phase;
    })
    .catch(function() { document.getElementById('message').textContent = 'operation failed'; })
    .finally(function() { btn.disabled = false; });
}
</script>
</body>
</html>`
