package reporting

import (
	"fmt"

	"github.com/fatih/color"

	"fluttersec/internal/attacksim"
	"fluttersec/internal/scoring"
	"fluttersec/pkg/types"
)

var severityColors = map[types.Severity]*color.Color{
	types.SeverityCritical: color.New(color.FgRed, color.Bold),
	types.SeverityHigh:     color.New(color.FgHiYellow, color.Bold),
	types.SeverityMedium:   color.New(color.FgYellow),
	types.SeverityLow:      color.New(color.FgBlue),
	types.SeverityInfo:     color.New(color.FgHiBlack),
}

// ConsoleReporter prints the scan summary to stdout. Verbose mode adds
// remediation one-liners and the attack timeline.
type ConsoleReporter struct {
	verbose bool
}

func NewConsoleReporter(verbose bool) *ConsoleReporter {
	return &ConsoleReporter{verbose: verbose}
}

func (r *ConsoleReporter) Generate(result *types.AnalysisResult, sim *types.AttackSimulation, outputPath string) error {
	cyan := color.New(color.FgCyan)
	bold := color.New(color.Bold)

	fmt.Println()
	bold.Printf("%s (%s) [%s]\n", result.AppName, result.PackageName, result.Platform)
	fmt.Printf("File: %s\n\n", result.FilePath)

	scoreColor := color.New(color.FgGreen, color.Bold)
	if result.SecurityScore < 50 {
		scoreColor = color.New(color.FgRed, color.Bold)
	} else if result.SecurityScore < 75 {
		scoreColor = color.New(color.FgYellow, color.Bold)
	}
	cyan.Println("Security Score")
	scoreColor.Printf("  %s", scoring.FormatScore(result.SecurityScore))
	fmt.Printf("  (%s)\n\n", scoring.RiskLevel(result.SecurityScore))

	cyan.Println("Findings Summary")
	counts := result.CountBySeverity()
	for _, s := range types.Severities {
		c := counts[s.String()]
		mark := color.GreenString("ok")
		if c > 0 {
			mark = severityColors[s].Sprint("!!")
		}
		fmt.Printf("  %-8s %4d  %s\n", s, c, mark)
	}
	fmt.Println()

	if len(result.Findings) > 0 {
		cyan.Println("Top Priority Issues")
		for i, f := range scoring.PriorityFindings(result.Findings, 5) {
			severityColors[f.Severity].Printf("  %d. [%s] %s\n", i+1, f.Severity, f.Title)
			if r.verbose && f.Remediation != nil {
				fmt.Printf("     Fix: %s\n", f.Remediation.Summary)
			}
		}
		fmt.Println()
	}

	if sim != nil {
		cyan.Println("Threat Assessment")
		profile := sim.Profiles[sim.MostLikelyAttacker].Profile
		fmt.Printf("  Most likely attacker: %s\n", profile.Level)
		fmt.Printf("  Success rate:         %d%%\n", int(profile.SuccessRate*100))
		fmt.Printf("  Time to compromise:   %d minutes\n\n", sim.OverallTimeMinutes)

		if r.verbose {
			cyan.Println("Attack Scenario")
			for _, step := range sim.AttackScenario {
				fmt.Printf("  %s\n", step)
			}
			fmt.Println()

			cyan.Println("Defense Recommendations")
			for _, rec := range attacksim.DefenseRecommendations(sim.MostLikelyAttacker) {
				fmt.Printf("  %s\n", rec)
			}
			fmt.Println()
		}
	}

	posture := scoring.AnalyzePosture(result)
	fmt.Printf("Recommendation: %s\n", posture.Recommendation)
	return nil
}
