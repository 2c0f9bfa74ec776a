package attacksim

import (
	"fmt"
	"strings"

	"fluttersec/pkg/types"
)

// Simulate evaluates the three attacker profiles against the finding set and
// selects the weakest profile that can exploit it: the worst-case realistic
// attacker, not the one causing most damage.
//
// A profile that cannot exploit always reports zero minutes. In particular the
// advanced profile's 180-minute medium/low branch is reachable only when
// findings exist: an empty finding set yields not-exploitable across the
// board and an overall time of zero, with advanced still named as the
// fallback profile.
func Simulate(findings []types.Finding) *types.AttackSimulation {
	critical := countSeverity(findings, types.SeverityCritical)
	high := countSeverity(findings, types.SeverityHigh)

	profiles := make(map[string]types.ProfileResult, len(levelOrder))
	for _, level := range levelOrder {
		exploitable := canExploit(findings, level)
		profile, _ := Profile(level)
		profiles[level] = types.ProfileResult{
			Profile:             profile,
			CanExploit:          exploitable,
			TimeMinutes:         timeToCompromise(level, exploitable, critical, high),
			ExploitableFindings: exploitableFindings(findings, level),
		}
	}

	selected := LevelAdvanced
	for _, level := range levelOrder {
		if profiles[level].CanExploit {
			selected = level
			break
		}
	}

	return &types.AttackSimulation{
		Profiles:           profiles,
		MostLikelyAttacker: selected,
		OverallTimeMinutes: profiles[selected].TimeMinutes,
		AttackScenario:     attackScenario(findings, selected),
	}
}

// canExploit is the per-profile exploitability predicate.
func canExploit(findings []types.Finding, level string) bool {
	switch level {
	case LevelBeginner:
		// Obvious env-file exposures only.
		for _, f := range findings {
			if f.Severity == types.SeverityCritical && referencesEnvExposure(f) {
				return true
			}
		}
		return false
	case LevelIntermediate:
		for _, f := range findings {
			if f.Severity == types.SeverityCritical || f.Severity == types.SeverityHigh {
				return true
			}
		}
		return false
	default:
		return len(findings) > 0
	}
}

func referencesEnvExposure(f types.Finding) bool {
	return strings.Contains(strings.ToLower(f.Title), ".env") ||
		strings.Contains(strings.ToLower(f.Description), "exposed")
}

// timeToCompromise estimates minutes for one profile. Not exploitable means
// zero, regardless of level.
func timeToCompromise(level string, exploitable bool, critical, high int) int {
	if !exploitable {
		return 0
	}
	switch level {
	case LevelBeginner:
		return 2 // unzip and read the .env
	case LevelIntermediate:
		if critical > 0 {
			return minInt(10, 5+critical*2)
		}
		if high > 0 {
			return minInt(45, 15+high*5)
		}
		return 0
	default:
		if critical > 0 {
			return 30
		}
		if high > 0 {
			return 90
		}
		return 180 // medium/low findings only
	}
}

// exploitableFindings filters titles by the profile's predicate, capped at 10.
func exploitableFindings(findings []types.Finding, level string) []string {
	var titles []string
	for _, f := range findings {
		switch level {
		case LevelBeginner:
			if f.Severity == types.SeverityCritical && strings.Contains(strings.ToLower(f.Title), ".env") {
				titles = append(titles, f.Title)
			}
		case LevelIntermediate:
			if f.Severity == types.SeverityCritical || f.Severity == types.SeverityHigh {
				titles = append(titles, f.Title)
			}
		default:
			titles = append(titles, f.Title)
		}
	}
	if len(titles) > 10 {
		titles = titles[:10]
	}
	return titles
}

// attackScenario renders the fixed timeline script for the selected profile.
// Presentation data only; the exploitability contract lives above.
func attackScenario(findings []types.Finding, level string) []string {
	profile, _ := Profile(level)

	scenario := []string{
		fmt.Sprintf("**Attacker Profile**: %s", profile.Level),
		fmt.Sprintf("**Tools Required**: %s", strings.Join(profile.Tools[:minInt(3, len(profile.Tools))], ", ")),
		fmt.Sprintf("**Success Rate**: %d%%", int(profile.SuccessRate*100)),
		"",
		"**Attack Timeline**:",
	}

	switch level {
	case LevelBeginner:
		envCount := 0
		for _, f := range findings {
			if f.Severity == types.SeverityCritical && strings.Contains(strings.ToLower(f.Title), ".env") {
				envCount++
			}
		}
		if envCount > 0 {
			scenario = append(scenario,
				"- [00:00:30] Download APK/IPA from device or store",
				"- [00:01:00] Extract using unzip command",
				"- [00:01:30] Navigate to assets/flutter_assets/",
				fmt.Sprintf("- [00:02:00] Found %d exposed env file(s) with API endpoints", envCount),
				"- [00:02:30] Extracted all sensitive configuration",
				"",
				"**Result**: Full API access obtained in < 3 minutes",
			)
		}
	case LevelIntermediate:
		scenario = append(scenario,
			"- [00:00] Download and extract app",
			"- [00:05] Decompile with APKTool/JADX",
			"- [00:10] Extract .env and config files",
			"- [00:15] Analyze AndroidManifest/Info.plist",
			"- [00:20] Extract strings from libapp.so/App binary",
			fmt.Sprintf("- [00:25] Map all API endpoints (%d findings to work from)", len(findings)),
			"- [00:30] Complete app infrastructure mapped",
			"",
			"**Result**: Full understanding of app architecture",
		)
	default:
		scenario = append(scenario,
			"- [00:00] Extract and decompile app",
			"- [00:30] Run Blutter to dump Dart classes",
			"- [01:00] Analyze business logic",
			"- [01:30] Setup Frida for runtime analysis",
			"- [02:00] Bypass SSL pinning",
			"- [02:30] Bypass root/jailbreak detection",
			"- [03:00] Intercept and modify API calls",
			"- [04:00] Complete compromise achieved",
			"",
			"**Result**: Full control over app behavior",
		)
	}
	return scenario
}

func countSeverity(findings []types.Finding, s types.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
