package reporting

import (
	"fmt"
	"os"
	"strings"

	"fluttersec/internal/scoring"
	"fluttersec/pkg/types"
)

// MarkdownReporter renders the report for wikis and pull-request comments.
type MarkdownReporter struct{}

func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

func (r *MarkdownReporter) Generate(result *types.AnalysisResult, sim *types.AttackSimulation, outputPath string) error {
	var sb strings.Builder

	sb.WriteString("# FlutterSec Security Report\n\n")
	sb.WriteString(fmt.Sprintf("**App:** `%s` (`%s`)\n\n", result.AppName, result.PackageName))
	sb.WriteString(fmt.Sprintf("**Platform:** %s\n\n", result.Platform))
	sb.WriteString(fmt.Sprintf("**File:** `%s`\n\n", result.FilePath))
	sb.WriteString(fmt.Sprintf("**Scan Date:** %s\n\n", result.Timestamp.Format("2006-01-02 15:04:05")))
	sb.WriteString("---\n\n")

	sb.WriteString("## Security Score\n\n")
	sb.WriteString(fmt.Sprintf("**%s** (%s)\n\n", scoring.FormatScore(result.SecurityScore), scoring.RiskLevel(result.SecurityScore)))
	sb.WriteString(fmt.Sprintf("Attack surface: **%d/10** | Time to compromise: **%d minutes**\n\n",
		result.AttackSurfaceScore, result.TimeToCompromiseMinutes))

	counts := result.CountBySeverity()
	sb.WriteString("## Findings Summary\n\n")
	sb.WriteString("| Severity | Count |\n|----------|-------|\n")
	for _, s := range types.Severities {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", s, counts[s.String()]))
	}
	sb.WriteString("\n")

	if len(result.Findings) > 0 {
		sb.WriteString("---\n\n## Detailed Findings\n\n")
		for i, f := range scoring.PriorityFindings(result.Findings, len(result.Findings)) {
			sb.WriteString(fmt.Sprintf("### %d. [%s] %s\n\n", i+1, f.Severity, f.Title))
			if f.FilePath != "" {
				sb.WriteString(fmt.Sprintf("**File:** `%s`\n\n", f.FilePath))
			}
			if f.OWASP != "" {
				sb.WriteString(fmt.Sprintf("**OWASP:** %s\n\n", f.OWASP))
			}
			if f.CWE != "" {
				sb.WriteString(fmt.Sprintf("**CWE:** %s\n\n", f.CWE))
			}
			if f.CVSSScore > 0 {
				sb.WriteString(fmt.Sprintf("**CVSS:** %.1f\n\n", f.CVSSScore))
			}
			sb.WriteString(fmt.Sprintf("%s\n\n", f.Description))

			if rem := f.Remediation; rem != nil {
				sb.WriteString(fmt.Sprintf("**Fix:** %s\n\n", rem.Summary))
				for _, step := range rem.FixSteps {
					sb.WriteString(fmt.Sprintf("- %s\n", step))
				}
				sb.WriteString("\n")
				if len(rem.References) > 0 {
					sb.WriteString("**References:**\n")
					for _, ref := range rem.References {
						sb.WriteString(fmt.Sprintf("- %s\n", ref))
					}
					sb.WriteString("\n")
				}
			}
			sb.WriteString("---\n\n")
		}
	}

	if sim != nil {
		sb.WriteString("## Attack Simulation\n\n")
		sb.WriteString(fmt.Sprintf("**Most likely attacker:** %s\n\n", sim.MostLikelyAttacker))
		sb.WriteString(fmt.Sprintf("**Time to compromise:** %d minutes\n\n", sim.OverallTimeMinutes))
		for _, step := range sim.AttackScenario {
			sb.WriteString(step + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n*Generated by fluttersec*\n")
	return os.WriteFile(outputPath, []byte(sb.String()), 0o644)
}
