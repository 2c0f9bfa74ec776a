package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Severity ranks findings by descending risk. The zero value is the most
// severe so the numeric value doubles as the sort rank.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
	SeverityInfo
)

// Severities lists all levels in rank order, worst first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	case SeverityInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a case-insensitive severity name back to its level.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO":
		return SeverityInfo, nil
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Platform identifies the mobile platform of a scanned package.
type Platform string

const (
	PlatformAndroid Platform = "Android"
	PlatformIOS     Platform = "iOS"
	PlatformUnknown Platform = "Unknown"
)

// Remediation is the fix guidance attached to a finding. Immutable once the
// finding is created.
type Remediation struct {
	Summary      string   `json:"summary"`
	RootCause    string   `json:"root_cause"`
	WhyWrong     string   `json:"why_wrong"`
	FixSteps     []string `json:"fix_steps"`
	CodeBefore   string   `json:"code_before,omitempty"`
	CodeAfter    string   `json:"code_after,omitempty"`
	Verification string   `json:"verification,omitempty"`
	References   []string `json:"references,omitempty"`
}

// Finding is one detected security issue. Detectors create findings; nothing
// mutates them afterwards.
type Finding struct {
	Severity    Severity     `json:"severity"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	FilePath    string       `json:"file_path,omitempty"`
	LineNumber  int          `json:"line_number,omitempty"`
	OWASP       string       `json:"owasp,omitempty"`
	CWE         string       `json:"cwe,omitempty"`
	CVSSScore   float64      `json:"cvss_score,omitempty"`
	Remediation *Remediation `json:"remediation,omitempty"`
}

// AttackerProfile is a fixed capability template for one class of adversary.
// The three profile variants are static configuration, never derived.
type AttackerProfile struct {
	Level        string   `json:"level"`
	TimeMinutes  int      `json:"time_minutes"`
	SuccessRate  float64  `json:"success_rate"`
	Tools        []string `json:"tools"`
	Capabilities []string `json:"capabilities"`
}

// ProfileResult is the simulation outcome for a single attacker profile.
type ProfileResult struct {
	Profile             AttackerProfile `json:"profile"`
	CanExploit          bool            `json:"can_exploit"`
	TimeMinutes         int             `json:"time_minutes"`
	ExploitableFindings []string        `json:"exploitable_findings"`
}

// AttackSimulation aggregates the per-profile outcomes plus the selected
// worst-case-realistic attacker.
type AttackSimulation struct {
	Profiles           map[string]ProfileResult `json:"profiles"`
	MostLikelyAttacker string                   `json:"most_likely_attacker"`
	OverallTimeMinutes int                      `json:"time_to_compromise_minutes"`
	AttackScenario     []string                 `json:"attack_scenario"`
}

// AnalysisResult is the aggregate handed to reporters and the CLI. It is
// assembled by the pipeline and read-only afterwards.
type AnalysisResult struct {
	ScanID                  string           `json:"scan_id"`
	AppName                 string           `json:"app_name"`
	PackageName             string           `json:"package_name"`
	Platform                Platform         `json:"platform"`
	FilePath                string           `json:"file_path"`
	FlutterVersion          string           `json:"flutter_version,omitempty"`
	SecurityScore           int              `json:"security_score"`
	Grade                   string           `json:"grade"`
	AttackSurfaceScore      int              `json:"attack_surface_score"`
	TimeToCompromiseMinutes int              `json:"time_to_compromise_minutes"`
	AttackerProfile         *AttackerProfile `json:"attacker_profile,omitempty"`
	Timestamp               time.Time        `json:"timestamp"`
	Findings                []Finding        `json:"findings"`
}

// AddFinding appends a finding, preserving detector execution order.
func (r *AnalysisResult) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// FindingsBySeverity returns the findings at the given level, in insertion order.
func (r *AnalysisResult) FindingsBySeverity(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// CountBySeverity tallies findings per severity name. Every level is present
// in the map even when zero.
func (r *AnalysisResult) CountBySeverity() map[string]int {
	counts := make(map[string]int, len(Severities))
	for _, s := range Severities {
		counts[s.String()] = 0
	}
	for _, f := range r.Findings {
		counts[f.Severity.String()]++
	}
	return counts
}

// MarshalJSON injects the per-severity findings_count map so every report
// format sees the same document shape.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type alias AnalysisResult
	return json.Marshal(struct {
		alias
		FindingsCount map[string]int `json:"findings_count"`
	}{
		alias:         alias(r),
		FindingsCount: r.CountBySeverity(),
	})
}
