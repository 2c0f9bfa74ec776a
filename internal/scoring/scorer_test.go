package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fluttersec/pkg/types"
)

func findingsOf(severities ...types.Severity) []types.Finding {
	out := make([]types.Finding, len(severities))
	for i, s := range severities {
		out[i] = types.Finding{Severity: s, Title: s.String() + " finding"}
	}
	return out
}

func TestCalculateScore(t *testing.T) {
	assert.Equal(t, 100, CalculateScore(nil))
	assert.Equal(t, 75, CalculateScore(findingsOf(types.SeverityCritical)))
	assert.Equal(t, 55, CalculateScore(findingsOf(types.SeverityHigh, types.SeverityHigh, types.SeverityHigh)))
	assert.Equal(t, 92, CalculateScore(findingsOf(types.SeverityMedium)))
	assert.Equal(t, 97, CalculateScore(findingsOf(types.SeverityLow)))
	assert.Equal(t, 100, CalculateScore(findingsOf(types.SeverityInfo)))
}

func TestCalculateScoreClampsAtZero(t *testing.T) {
	var findings []types.Finding
	for i := 0; i < 5; i++ {
		findings = append(findings, types.Finding{Severity: types.SeverityCritical})
	}
	assert.Equal(t, 0, CalculateScore(findings))
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		score int
		grade string
	}{
		{100, "A (Excellent)"},
		{90, "A (Excellent)"},
		{89, "B (Good)"},
		{75, "B (Good)"},
		{74, "C (Fair)"},
		{60, "C (Fair)"},
		{59, "D (Poor)"},
		{40, "D (Poor)"},
		{39, "F (Critical)"},
		{0, "F (Critical)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, Grade(tc.score), "score %d", tc.score)
	}
}

func TestAttackSurface(t *testing.T) {
	assert.Equal(t, 0, AttackSurface(nil))
	assert.Equal(t, 2, AttackSurface(findingsOf(types.SeverityCritical)))
	assert.Equal(t, 3, AttackSurface(findingsOf(types.SeverityCritical, types.SeverityHigh)))
	assert.Equal(t, 3, AttackSurface(findingsOf(types.SeverityHigh, types.SeverityHigh, types.SeverityHigh)))
	// Medium and below never contribute.
	assert.Equal(t, 0, AttackSurface(findingsOf(types.SeverityMedium, types.SeverityLow, types.SeverityInfo)))

	var many []types.Finding
	for i := 0; i < 8; i++ {
		many = append(many, types.Finding{Severity: types.SeverityCritical})
	}
	assert.Equal(t, 10, AttackSurface(many))
}

func TestPriorityFindingsStableOrder(t *testing.T) {
	findings := []types.Finding{
		{Severity: types.SeverityLow, Title: "low-1"},
		{Severity: types.SeverityCritical, Title: "crit-1"},
		{Severity: types.SeverityHigh, Title: "high-1"},
		{Severity: types.SeverityHigh, Title: "high-2"},
		{Severity: types.SeverityCritical, Title: "crit-2"},
	}

	top := PriorityFindings(findings, 4)
	assert.Equal(t, []string{"crit-1", "crit-2", "high-1", "high-2"},
		[]string{top[0].Title, top[1].Title, top[2].Title, top[3].Title})

	// Input slice is untouched.
	assert.Equal(t, "low-1", findings[0].Title)

	all := PriorityFindings(findings, 100)
	assert.Len(t, all, 5)
}

func TestAnalyzePosture(t *testing.T) {
	result := &types.AnalysisResult{
		SecurityScore:      75,
		Grade:              Grade(75),
		AttackSurfaceScore: 2,
		Findings:           findingsOf(types.SeverityCritical),
	}
	p := AnalyzePosture(result)
	assert.True(t, p.NeedsImmediate)
	assert.Equal(t, 1, p.CriticalIssues)
	assert.Contains(t, p.Recommendation, "URGENT")
	assert.Equal(t, []string{"CRITICAL finding"}, p.PriorityFixes)

	clean := &types.AnalysisResult{SecurityScore: 100, Grade: Grade(100)}
	p = AnalyzePosture(clean)
	assert.False(t, p.NeedsImmediate)
	assert.Contains(t, p.Recommendation, "Good security posture")
}

func TestCompare(t *testing.T) {
	before := &types.AnalysisResult{
		SecurityScore: 55,
		Grade:         Grade(55),
		Findings:      findingsOf(types.SeverityCritical, types.SeverityHigh, types.SeverityMedium),
	}
	after := &types.AnalysisResult{
		SecurityScore: 92,
		Grade:         Grade(92),
		Findings:      findingsOf(types.SeverityMedium),
	}

	c := Compare(before, after)
	assert.Equal(t, 37, c.ScoreImprovement)
	assert.Equal(t, "improved", c.Status)
	assert.Equal(t, 1, c.FixedCritical)
	assert.Equal(t, 1, c.FixedHigh)
	assert.Equal(t, 2, c.FixedTotal)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "75/100 - B (Good)", FormatScore(75))
}
