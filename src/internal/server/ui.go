// FILE: logport/src/internal/server/ui.go
package server

// Self-contained viewer page. Search and limit are passed through to
// the /logs endpoint so filtering happens server-side against the
// full record set, not just what the page has seen.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>logport</title>
<style>
  body { background: #1a202c; color: #e2e8f0; font-family: monospace; margin: 0; }
  header { padding: 1rem 1.5rem; }
  h1 { margin: 0; font-size: 1.4rem; color: #fff; }
  .controls { display: flex; gap: .75rem; align-items: center; padding: 0 1.5rem 1rem; }
  input[type=text], input[type=number] {
    background: #2d3748; color: #fff; border: 1px solid #4a5568;
    border-radius: 4px; padding: .4rem .6rem;
  }
  input[type=text] { flex-grow: 1; }
  label { color: #a0aec0; font-size: .85rem; }
  .count { color: #718096; font-size: .85rem; margin-left: auto; }
  .wrap { margin: 0 1.5rem 1.5rem; background: #2d3748; border-radius: 6px;
    max-height: calc(100vh - 140px); overflow-y: auto; }
  table { width: 100%; border-collapse: collapse; }
  th { position: sticky; top: 0; background: #1a202c; color: #a0aec0;
    text-align: left; padding: .5rem .75rem; font-size: .8rem; }
  td { padding: .4rem .75rem; border-top: 1px solid #4a5568;
    font-size: .85rem; word-break: break-all; }
  td.ts { white-space: nowrap; color: #a0aec0; }
  td.src { white-space: nowrap; color: #cbd5e0; }
  .error { color: #fc8181; padding: 1rem; }
</style>
</head>
<body>
<header><h1>logport</h1></header>
<div class="controls">
  <input type="text" id="filter" placeholder="Filter (message, address, port)...">
  <label>Limit <input type="number" id="limit" value="500" min="1" style="width:5rem"></label>
  <label><input type="checkbox" id="refresh" checked> Auto-refresh</label>
  <span class="count" id="count"></span>
</div>
<div class="wrap">
  <table>
    <thead><tr><th>Timestamp</th><th>Port</th><th>Address</th><th>Message</th></tr></thead>
    <tbody id="rows"></tbody>
  </table>
  <div id="status"></div>
</div>
<script>
const rows = document.getElementById('rows');
const filterInput = document.getElementById('filter');
const limitInput = document.getElementById('limit');
const refreshToggle = document.getElementById('refresh');
const countEl = document.getElementById('count');
const statusEl = document.getElementById('status');
let timer;

function esc(s) {
  return String(s).replace(/&/g, '&amp;').replace(/</g, '&lt;')
    .replace(/>/g, '&gt;').replace(/"/g, '&quot;');
}

async function fetchLogs() {
  const params = new URLSearchParams();
  if (filterInput.value) params.set('filter', filterInput.value);
  if (limitInput.value) params.set('limit', limitInput.value);
  try {
    const resp = await fetch('/logs?' + params);
    if (!resp.ok) throw new Error('HTTP ' + resp.status);
    const logs = await resp.json();
    statusEl.textContent = '';
    render(logs);
  } catch (err) {
    statusEl.innerHTML = '<div class="error">Failed to load logs: ' + esc(err.message) + '</div>';
  }
}

function render(logs) {
  logs.reverse(); // newest first
  rows.innerHTML = logs.map(l =>
    '<tr><td class="ts">' + esc(l.timestamp) + '</td>' +
    '<td class="src">' + esc(l.port) + '</td>' +
    '<td class="src">' + esc(l.address) + '</td>' +
    '<td>' + esc(l.message) + '</td></tr>').join('');
  countEl.textContent = logs.length + ' records';
}

function schedule() {
  clearInterval(timer);
  if (refreshToggle.checked) timer = setInterval(fetchLogs, 3000);
}

filterInput.addEventListener('input', fetchLogs);
limitInput.addEventListener('change', fetchLogs);
refreshToggle.addEventListener('change', schedule);
fetchLogs();
schedule();
</script>
</body>
</html>
`
