package api

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Document Q&amp;A</title>
<style>
  *, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
  .card { max-width: 640px; width: 90%; background: #1e293b; border-radius: 12px; padding: 2.5rem; box-shadow: 0 25px 50px rgba(0,0,0,0.4); }
  h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: #f8fafc; }
  .subtitle { color: #94a3b8; margin-bottom: 1.75rem; }
  textarea { width: 100%; min-height: 5rem; background: #0f172a; border: 1px solid #334155; border-radius: 8px; color: #e2e8f0; padding: 0.75rem; font-size: 1rem; margin-bottom: 1rem; }
  button { background: #38bdf8; color: #0f172a; border: none; border-radius: 8px; padding: 0.6rem 1.4rem; font-size: 1rem; cursor: pointer; }
  #answer { margin-top: 1.5rem; white-space: pre-wrap; line-height: 1.5; }
  .endpoint { font-family: "SF Mono", monospace; font-size: 0.9rem; color: #a5b4fc; }
  .section { margin-top: 1.75rem; }
  .section-title { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.1em; color: #64748b; margin-bottom: 0.5rem; }
  a { color: #38bdf8; text-decoration: none; }
</style>
</head>
<body>
<div class="card">
  <h1>Document Q&amp;A</h1>
  <p class="subtitle">Ask questions about the ingested PDF collection.</p>
  <textarea id="question" placeholder="Type your question"></textarea>
  <button onclick="ask()">Ask</button>
  <div id="answer"></div>
  <div class="section">
    <div class="section-title">Endpoints</div>
    <p><span class="endpoint">POST /ask</span> &mdash; answer a question</p>
    <p><span class="endpoint">POST /ingest</span> &mdash; index new documents</p>
    <p><a href="/health" class="endpoint">/health</a> &mdash; health check</p>
  </div>
</div>
<script>
async function ask() {
  const question = document.getElementById('question').value;
  const el = document.getElementById('answer');
  el.textContent = '...';
  const resp = await fetch('/ask', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({question})
  });
  const body = await resp.json();
  el.textContent = resp.ok ? body.answer : body.error;
}
</script>
</body>
</html>`

// NewLandingHandler serves a minimal question form at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(landingHTML))
	}
}
