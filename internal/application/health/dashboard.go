package health

import (
	"fmt"
)

// RenderDashboardHTML returns the HTML status page for GET /.
func RenderDashboardHTML(health CollectResult) string {
	headline := "All systems operational"
	if health.Status != "ok" {
		headline = "Service degraded"
	}

	depRows := ""
	for name, dep := range health.Dependencies {
		ping := "-"
		if dep.PingMs != nil {
			ping = fmt.Sprintf("%v ms", dep.PingMs)
		}
		cls := "ok"
		if dep.Status != "connected" && dep.Status != "reachable" {
			cls = "bad"
		}
		depRows += fmt.Sprintf(`<div class="row"><span>%s</span><span class="pill %s">%s · %s</span></div>`, name, cls, dep.Status, ping)
	}

	lastReq := "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		method, _ := m["method"].(string)
		path, _ := m["path"].(string)
		lastReq = method + " " + path
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>VolunHub · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --blue: #2563EB; --dark: #111827; --bg: #F8F9FA; --muted: #64748b; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--dark); font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
    .container { width: 100%%; max-width: 900px; padding: 20px; }
    h1 { font-size: clamp(28px, 5vw, 48px); font-weight: 900; letter-spacing: -2px; text-align: center; margin: 0 0 8px 0; }
    .subtext { text-align: center; color: var(--muted); font-weight: 700; margin-bottom: 30px; }
    .card { background: #fff; border-radius: 24px; box-shadow: 0 25px 80px -20px rgba(37, 99, 235, 0.12); padding: 40px; display: grid; grid-template-columns: repeat(3, 1fr); gap: 40px; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: #94a3b8; margin-bottom: 18px; }
    .big { font-size: clamp(22px, 3vw, 38px); font-weight: 900; letter-spacing: -1px; margin-bottom: 8px; }
    .row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid rgba(0,0,0,0.04); font-size: 14px; font-weight: 700; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 3px 10px; border-radius: 10px; font-size: 11px; font-weight: 900; }
    .pill.ok { background: #DCFCE7; color: #15803D; }
    .pill.bad { background: #FEE2E2; color: #B91C1C; }
    @media (max-width: 700px) { .card { grid-template-columns: 1fr; } }
  </style>
</head>
<body>
  <div class="container">
    <h1>%s</h1>
    <div class="subtext">VolunHub API · uptime %ds · %s · %s</div>
    <div class="card">
      <div>
        <div class="label">Traffic</div>
        <div class="big">%d</div>
        <div class="row"><span>Success rate</span><span>%s%%</span></div>
        <div class="row"><span>Failed</span><span>%d</span></div>
        <div class="row"><span>Avg response</span><span>%v ms</span></div>
      </div>
      <div>
        <div class="label">Dependencies</div>
        %s
      </div>
      <div>
        <div class="label">Runtime</div>
        <div class="row"><span>Heap used</span><span>%d MB</span></div>
        <div class="row"><span>Alloc</span><span>%d MB</span></div>
        <div class="row"><span>Last request</span><span>%s</span></div>
      </div>
    </div>
  </div>
</body>
</html>`,
		headline,
		health.Runtime.UptimeSeconds, health.Runtime.Platform, health.Runtime.GoVersion,
		health.Traffic.TotalRequests, health.Traffic.SuccessRate, health.Traffic.FailedCount, health.Traffic.AvgResponseTime,
		depRows,
		health.Runtime.Memory.HeapUsed, health.Runtime.Memory.RSS, lastReq)
}
