package attacksim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluttersec/pkg/types"
)

func TestSimulateEnvExposure(t *testing.T) {
	findings := []types.Finding{
		{Severity: types.SeverityCritical, Title: ".env File Exposed", Description: "Exposed environment file"},
	}

	sim := Simulate(findings)
	require.NotNil(t, sim)

	assert.Equal(t, LevelBeginner, sim.MostLikelyAttacker)
	assert.Equal(t, 2, sim.OverallTimeMinutes)

	beginner := sim.Profiles[LevelBeginner]
	assert.True(t, beginner.CanExploit)
	assert.Equal(t, 2, beginner.TimeMinutes)
	assert.Equal(t, []string{".env File Exposed"}, beginner.ExploitableFindings)
	assert.Equal(t, "Beginner (Script Kiddie)", beginner.Profile.Level)

	intermediate := sim.Profiles[LevelIntermediate]
	assert.True(t, intermediate.CanExploit)
	assert.Equal(t, 7, intermediate.TimeMinutes) // 5 + 2*1

	advanced := sim.Profiles[LevelAdvanced]
	assert.True(t, advanced.CanExploit)
	assert.Equal(t, 30, advanced.TimeMinutes)
}

func TestSimulateHighOnly(t *testing.T) {
	findings := []types.Finding{
		{Severity: types.SeverityHigh, Title: "Hardcoded URLs"},
		{Severity: types.SeverityHigh, Title: "Hardcoded Secrets"},
		{Severity: types.SeverityHigh, Title: "Sensitive File Exposed: secrets.yaml"},
	}

	sim := Simulate(findings)

	assert.False(t, sim.Profiles[LevelBeginner].CanExploit)
	assert.Equal(t, 0, sim.Profiles[LevelBeginner].TimeMinutes)

	assert.Equal(t, LevelIntermediate, sim.MostLikelyAttacker)
	assert.Equal(t, 30, sim.OverallTimeMinutes) // min(45, 15 + 3*5)

	assert.Equal(t, 90, sim.Profiles[LevelAdvanced].TimeMinutes)
}

func TestSimulateNoFindings(t *testing.T) {
	sim := Simulate(nil)

	// Nothing to exploit: advanced is named as the fallback but its time is
	// zero, never the 180 minute medium/low estimate.
	assert.Equal(t, LevelAdvanced, sim.MostLikelyAttacker)
	assert.Equal(t, 0, sim.OverallTimeMinutes)
	for _, level := range Levels() {
		assert.False(t, sim.Profiles[level].CanExploit, level)
		assert.Equal(t, 0, sim.Profiles[level].TimeMinutes, level)
		assert.Empty(t, sim.Profiles[level].ExploitableFindings, level)
	}
}

func TestSimulateMediumOnly(t *testing.T) {
	findings := []types.Finding{
		{Severity: types.SeverityMedium, Title: "Hardcoded Email Addresses"},
	}

	sim := Simulate(findings)

	assert.False(t, sim.Profiles[LevelBeginner].CanExploit)
	assert.False(t, sim.Profiles[LevelIntermediate].CanExploit)
	assert.Equal(t, 0, sim.Profiles[LevelIntermediate].TimeMinutes)

	assert.Equal(t, LevelAdvanced, sim.MostLikelyAttacker)
	assert.True(t, sim.Profiles[LevelAdvanced].CanExploit)
	assert.Equal(t, 180, sim.OverallTimeMinutes)
}

func TestBeginnerPredicateMatchesDescription(t *testing.T) {
	// "exposed" in the description is enough even without ".env" in the title.
	findings := []types.Finding{
		{Severity: types.SeverityCritical, Title: "Sensitive File Exposed: server.key",
			Description: "Private key exposed in app bundle"},
	}
	sim := Simulate(findings)
	assert.Equal(t, LevelBeginner, sim.MostLikelyAttacker)
	// The listed exploitables stay title-scoped tight, so none match here.
	assert.Empty(t, sim.Profiles[LevelBeginner].ExploitableFindings)
}

func TestIntermediateTimeCaps(t *testing.T) {
	var criticals []types.Finding
	for i := 0; i < 6; i++ {
		criticals = append(criticals, types.Finding{Severity: types.SeverityCritical, Title: "hardcoded key"})
	}
	sim := Simulate(criticals)
	assert.Equal(t, 10, sim.Profiles[LevelIntermediate].TimeMinutes)

	var highs []types.Finding
	for i := 0; i < 10; i++ {
		highs = append(highs, types.Finding{Severity: types.SeverityHigh, Title: "hardcoded url"})
	}
	sim = Simulate(highs)
	assert.Equal(t, 45, sim.Profiles[LevelIntermediate].TimeMinutes)
}

func TestExploitableFindingsCap(t *testing.T) {
	var findings []types.Finding
	for i := 0; i < 15; i++ {
		findings = append(findings, types.Finding{Severity: types.SeverityLow, Title: "info string"})
	}
	sim := Simulate(findings)
	assert.Len(t, sim.Profiles[LevelAdvanced].ExploitableFindings, 10)
}

func TestProfileReturnsCopy(t *testing.T) {
	p, ok := Profile(LevelBeginner)
	require.True(t, ok)
	p.Tools[0] = "mutated"

	again, _ := Profile(LevelBeginner)
	assert.Equal(t, "unzip", again.Tools[0])

	_, ok = Profile("nope")
	assert.False(t, ok)
}

func TestAttackScenarioContent(t *testing.T) {
	findings := []types.Finding{
		{Severity: types.SeverityCritical, Title: ".env File Exposed"},
	}
	sim := Simulate(findings)
	require.NotEmpty(t, sim.AttackScenario)
	assert.Contains(t, sim.AttackScenario[0], "Beginner (Script Kiddie)")

	joined := ""
	for _, line := range sim.AttackScenario {
		joined += line + "\n"
	}
	assert.Contains(t, joined, "Found 1 exposed env file(s)")
}

func TestDefenseRecommendations(t *testing.T) {
	for _, level := range Levels() {
		assert.NotEmpty(t, DefenseRecommendations(level), level)
	}
}
