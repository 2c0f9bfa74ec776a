package scoring

import (
	"fmt"
	"sort"

	"fluttersec/pkg/types"
)

const baseScore = 100

// severityWeights are the penalty points per finding severity.
var severityWeights = map[types.Severity]int{
	types.SeverityCritical: 25,
	types.SeverityHigh:     15,
	types.SeverityMedium:   8,
	types.SeverityLow:      3,
	types.SeverityInfo:     0,
}

// CalculateScore reduces the finding set to a 0-100 security score. Higher is
// better; the penalty sum is clamped at zero.
func CalculateScore(findings []types.Finding) int {
	penalty := 0
	for _, f := range findings {
		penalty += severityWeights[f.Severity]
	}
	score := baseScore - penalty
	if score < 0 {
		score = 0
	}
	return score
}

// Grade converts a score to its letter grade. Boundaries are closed above:
// 90 is an A, 89 a B.
func Grade(score int) string {
	switch {
	case score >= 90:
		return "A (Excellent)"
	case score >= 75:
		return "B (Good)"
	case score >= 60:
		return "C (Fair)"
	case score >= 40:
		return "D (Poor)"
	default:
		return "F (Critical)"
	}
}

// RiskLevel describes the score as a risk tier.
func RiskLevel(score int) string {
	switch {
	case score >= 80:
		return "Low Risk"
	case score >= 60:
		return "Medium Risk"
	case score >= 40:
		return "High Risk"
	default:
		return "Critical Risk"
	}
}

// AttackSurface summarizes exposure from critical and high findings on a
// 0-10 scale.
func AttackSurface(findings []types.Finding) int {
	var critical, high int
	for _, f := range findings {
		switch f.Severity {
		case types.SeverityCritical:
			critical++
		case types.SeverityHigh:
			high++
		}
	}
	surface := critical*2 + high
	if surface > 10 {
		surface = 10
	}
	return surface
}

// PriorityFindings returns the limit most severe findings. The sort is stable
// so same-severity findings keep their original relative order.
func PriorityFindings(findings []types.Finding, limit int) []types.Finding {
	sorted := make([]types.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity < sorted[j].Severity
	})
	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Posture is the headline security-posture summary shown in reports.
type Posture struct {
	Score            int            `json:"score"`
	Grade            string         `json:"grade"`
	RiskLevel        string         `json:"risk_level"`
	AttackSurface    int            `json:"attack_surface"`
	FindingsBreak    map[string]int `json:"findings_breakdown"`
	TotalFindings    int            `json:"total_findings"`
	CriticalIssues   int            `json:"critical_issues"`
	NeedsImmediate   bool           `json:"needs_immediate_attention"`
	PriorityFixes    []string       `json:"priority_fixes"`
	Recommendation   string         `json:"recommendation"`
}

// AnalyzePosture derives the posture summary from an assembled result.
func AnalyzePosture(result *types.AnalysisResult) Posture {
	counts := result.CountBySeverity()

	var fixes []string
	for _, f := range PriorityFindings(result.Findings, 3) {
		fixes = append(fixes, f.Title)
	}

	p := Posture{
		Score:          result.SecurityScore,
		Grade:          result.Grade,
		RiskLevel:      RiskLevel(result.SecurityScore),
		AttackSurface:  result.AttackSurfaceScore,
		FindingsBreak:  counts,
		TotalFindings:  len(result.Findings),
		CriticalIssues: counts[types.SeverityCritical.String()],
		NeedsImmediate: counts[types.SeverityCritical.String()] > 0,
		PriorityFixes:  fixes,
	}

	switch {
	case counts[types.SeverityCritical.String()] > 0:
		p.Recommendation = "URGENT: Fix critical issues immediately before production release"
	case counts[types.SeverityHigh.String()] > 0:
		p.Recommendation = "Fix high severity issues within 1 week"
	case counts[types.SeverityMedium.String()] > 0:
		p.Recommendation = "Address medium issues in next sprint"
	default:
		p.Recommendation = "Good security posture! Continue monitoring"
	}
	return p
}

// Comparison reports the score delta between two scans of the same app.
type Comparison struct {
	ScoreImprovement int    `json:"score_improvement"`
	BeforeScore      int    `json:"before_score"`
	AfterScore       int    `json:"after_score"`
	BeforeGrade      string `json:"before_grade"`
	AfterGrade       string `json:"after_grade"`
	FixedCritical    int    `json:"fixed_critical"`
	FixedHigh        int    `json:"fixed_high"`
	FixedTotal       int    `json:"fixed_total"`
	Status           string `json:"status"`
}

// Compare diffs a before/after pair of results, typically around a fix cycle.
func Compare(before, after *types.AnalysisResult) Comparison {
	improvement := after.SecurityScore - before.SecurityScore
	beforeCounts := before.CountBySeverity()
	afterCounts := after.CountBySeverity()

	status := "unchanged"
	if improvement > 0 {
		status = "improved"
	} else if improvement < 0 {
		status = "worse"
	}

	return Comparison{
		ScoreImprovement: improvement,
		BeforeScore:      before.SecurityScore,
		AfterScore:       after.SecurityScore,
		BeforeGrade:      before.Grade,
		AfterGrade:       after.Grade,
		FixedCritical:    beforeCounts[types.SeverityCritical.String()] - afterCounts[types.SeverityCritical.String()],
		FixedHigh:        beforeCounts[types.SeverityHigh.String()] - afterCounts[types.SeverityHigh.String()],
		FixedTotal:       len(before.Findings) - len(after.Findings),
		Status:           status,
	}
}

// Weight exposes the penalty for one severity, mainly for reports.
func Weight(s types.Severity) int {
	return severityWeights[s]
}

// FormatScore renders "87/100 - B (Good)" style summaries.
func FormatScore(score int) string {
	return fmt.Sprintf("%d/100 - %s", score, Grade(score))
}
