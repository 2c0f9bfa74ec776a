package reporting

import (
	"fmt"
	"html/template"
	"os"

	"fluttersec/internal/scoring"
	"fluttersec/pkg/types"
)

// HTMLReporter renders the standalone report page.
type HTMLReporter struct{}

func NewHTMLReporter() *HTMLReporter {
	return &HTMLReporter{}
}

type htmlData struct {
	Result     *types.AnalysisResult
	Sim        *types.AttackSimulation
	Counts     map[string]int
	Severities []types.Severity
	RiskLevel  string
	ScoreClass string
	Findings   []types.Finding
}

func (r *HTMLReporter) Generate(result *types.AnalysisResult, sim *types.AttackSimulation, outputPath string) error {
	scoreClass := "good"
	switch {
	case result.SecurityScore < 50:
		scoreClass = "bad"
	case result.SecurityScore < 75:
		scoreClass = "warn"
	}

	data := htmlData{
		Result:     result,
		Sim:        sim,
		Counts:     result.CountBySeverity(),
		Severities: types.Severities,
		RiskLevel:  scoring.RiskLevel(result.SecurityScore),
		ScoreClass: scoreClass,
		Findings:   scoring.PriorityFindings(result.Findings, len(result.Findings)),
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer out.Close()

	return htmlTemplate.Execute(out, data)
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"count": func(m map[string]int, k fmt.Stringer) int { return m[k.String()] },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>FlutterSec Report - {{.Result.AppName}}</title>
<style>
  body { font-family: 'Consolas', monospace; background: #0a0a0a; color: #eee; line-height: 1.6; padding: 20px; }
  .container { max-width: 1100px; margin: 0 auto; }
  .panel { background: #161616; border: 1px solid #333; border-radius: 8px; padding: 20px; margin-bottom: 20px; }
  h1 { color: #00ff88; }
  h2 { color: #00aaff; margin-bottom: 10px; }
  .score { font-size: 42px; font-weight: bold; }
  .score.good { color: #00ff88; }
  .score.warn { color: #ffd700; }
  .score.bad { color: #ff4444; }
  table { width: 100%; border-collapse: collapse; }
  th, td { border: 1px solid #333; padding: 8px 12px; text-align: left; }
  .sev-CRITICAL { color: #ff4444; font-weight: bold; }
  .sev-HIGH { color: #ff8c00; font-weight: bold; }
  .sev-MEDIUM { color: #ffd700; }
  .sev-LOW { color: #00aaff; }
  .sev-INFO { color: #888; }
  .finding { border-left: 4px solid #333; padding: 12px 16px; margin: 12px 0; background: #111; }
  .finding.CRITICAL { border-color: #ff4444; }
  .finding.HIGH { border-color: #ff8c00; }
  .finding.MEDIUM { border-color: #ffd700; }
  .finding.LOW { border-color: #00aaff; }
  pre { background: #0d0d0d; padding: 10px; overflow-x: auto; white-space: pre-wrap; }
  .meta { color: #888; font-size: 13px; }
  .timeline { list-style: none; padding-left: 0; }
</style>
</head>
<body>
<div class="container">
  <div class="panel">
    <h1>FlutterSec Security Report</h1>
    <p><strong>{{.Result.AppName}}</strong> ({{.Result.PackageName}}) - {{.Result.Platform}}</p>
    <p class="meta">{{.Result.FilePath}} | scanned {{.Result.Timestamp.Format "2006-01-02 15:04:05"}} | scan {{.Result.ScanID}}</p>
  </div>

  <div class="panel">
    <h2>Security Score</h2>
    <div class="score {{.ScoreClass}}">{{.Result.SecurityScore}}/100</div>
    <p>{{.Result.Grade}} - {{.RiskLevel}}</p>
    <p>Attack surface: {{.Result.AttackSurfaceScore}}/10 | Time to compromise: {{.Result.TimeToCompromiseMinutes}} minutes</p>
  </div>

  <div class="panel">
    <h2>Findings Summary</h2>
    <table>
      <tr><th>Severity</th><th>Count</th></tr>
      {{range .Severities}}<tr><td class="sev-{{.}}">{{.}}</td><td>{{count $.Counts .}}</td></tr>
      {{end}}
    </table>
  </div>

  {{if .Findings}}
  <div class="panel">
    <h2>Findings</h2>
    {{range .Findings}}
    <div class="finding {{.Severity}}">
      <p><span class="sev-{{.Severity}}">[{{.Severity}}]</span> <strong>{{.Title}}</strong></p>
      {{if .FilePath}}<p class="meta">{{.FilePath}}</p>{{end}}
      <pre>{{.Description}}</pre>
      {{if .OWASP}}<p class="meta">{{.OWASP}}{{if .CWE}} | {{.CWE}}{{end}}{{if .CVSSScore}} | CVSS {{printf "%.1f" .CVSSScore}}{{end}}</p>{{end}}
      {{with .Remediation}}
      <p><strong>Fix:</strong> {{.Summary}}</p>
      <ul>{{range .FixSteps}}<li>{{.}}</li>{{end}}</ul>
      {{end}}
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Sim}}
  <div class="panel">
    <h2>Attack Simulation</h2>
    <p>Most likely attacker: <strong>{{.Sim.MostLikelyAttacker}}</strong> | {{.Sim.OverallTimeMinutes}} minutes to compromise</p>
    <ul class="timeline">
      {{range .Sim.AttackScenario}}<li>{{.}}</li>
      {{end}}
    </ul>
  </div>
  {{end}}

  <p class="meta">Generated by fluttersec</p>
</div>
</body>
</html>
`))
