package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluttersec/internal/attacksim"
	"fluttersec/internal/scoring"
	"fluttersec/pkg/types"
)

func sampleResult() (*types.AnalysisResult, *types.AttackSimulation) {
	result := &types.AnalysisResult{
		ScanID:      "scan-abc",
		AppName:     "Demo App",
		PackageName: "com.example.demo",
		Platform:    types.PlatformAndroid,
		FilePath:    "demo.apk",
		Timestamp:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Findings: []types.Finding{
			{
				Severity:    types.SeverityCritical,
				Title:       ".env File Exposed",
				Description: "Environment configuration file found at 'assets/flutter_assets/.env'.",
				FilePath:    "assets/flutter_assets/.env",
				OWASP:       "M9: Reverse Engineering",
				CWE:         "CWE-312: Cleartext Storage of Sensitive Information",
				CVSSScore:   9.1,
				Remediation: &types.Remediation{
					Summary:  "Remove .env file from production builds",
					FixSteps: []string{"1. Remove .env from pubspec.yaml assets section"},
				},
			},
			{
				Severity: types.SeverityHigh,
				Title:    "URLs Exposed in Binary",
				FilePath: "libapp.so",
			},
		},
	}
	result.SecurityScore = scoring.CalculateScore(result.Findings)
	result.Grade = scoring.Grade(result.SecurityScore)
	result.AttackSurfaceScore = scoring.AttackSurface(result.Findings)

	sim := attacksim.Simulate(result.Findings)
	result.TimeToCompromiseMinutes = sim.OverallTimeMinutes
	profile := sim.Profiles[sim.MostLikelyAttacker].Profile
	result.AttackerProfile = &profile
	return result, sim
}

func TestForOutputFormatSelection(t *testing.T) {
	cases := []struct {
		format string
		path   string
		want   Reporter
	}{
		{"json", "", &JSONReporter{}},
		{"html", "", &HTMLReporter{}},
		{"markdown", "", &MarkdownReporter{}},
		{"", "report.json", &JSONReporter{}},
		{"", "report.html", &HTMLReporter{}},
		{"", "report.md", &MarkdownReporter{}},
		{"terminal", "", &ConsoleReporter{}},
		{"", "", &ConsoleReporter{}},
	}
	for _, tc := range cases {
		r, err := ForOutput(tc.format, tc.path)
		require.NoError(t, err, "format=%q path=%q", tc.format, tc.path)
		assert.IsType(t, tc.want, r, "format=%q path=%q", tc.format, tc.path)
	}

	_, err := ForOutput("xml", "")
	assert.Error(t, err)
}

func TestJSONReporterDocumentShape(t *testing.T) {
	result, sim := sampleResult()
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, NewJSONReporter().Generate(result, sim, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Demo App", doc["app_name"])
	assert.Equal(t, "com.example.demo", doc["package_name"])
	assert.Equal(t, "Android", doc["platform"])
	assert.EqualValues(t, 60, doc["security_score"])
	assert.Equal(t, "C (Fair)", doc["grade"])
	assert.EqualValues(t, 3, doc["attack_surface_score"])

	counts := doc["findings_count"].(map[string]interface{})
	assert.EqualValues(t, 1, counts["CRITICAL"])
	assert.EqualValues(t, 1, counts["HIGH"])

	findings := doc["findings"].([]interface{})
	require.Len(t, findings, 2)
	first := findings[0].(map[string]interface{})
	assert.Equal(t, "CRITICAL", first["severity"])
	assert.Equal(t, ".env File Exposed", first["title"])

	simBlock := doc["attack_simulation"].(map[string]interface{})
	assert.Equal(t, "beginner", simBlock["most_likely_attacker"])
	assert.EqualValues(t, 2, simBlock["time_to_compromise_minutes"])
	profiles := simBlock["profiles"].(map[string]interface{})
	require.Contains(t, profiles, "beginner")
	beginner := profiles["beginner"].(map[string]interface{})
	assert.Equal(t, true, beginner["can_exploit"])
}

func TestMarkdownReporterContent(t *testing.T) {
	result, sim := sampleResult()
	path := filepath.Join(t.TempDir(), "report.md")

	require.NoError(t, NewMarkdownReporter().Generate(result, sim, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "Demo App")
	assert.Contains(t, report, "60/100 - C (Fair)")
	assert.Contains(t, report, ".env File Exposed")
	assert.Contains(t, report, "Remove .env file from production builds")
	assert.Contains(t, report, "Beginner (Script Kiddie)")
}

func TestHTMLReporterContent(t *testing.T) {
	result, sim := sampleResult()
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, NewHTMLReporter().Generate(result, sim, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "<html")
	assert.Contains(t, report, "Demo App")
	assert.Contains(t, report, ".env File Exposed")
	assert.Contains(t, report, "com.example.demo")
}

func TestJSONReporterNilSimulation(t *testing.T) {
	result, _ := sampleResult()
	path := filepath.Join(t.TempDir(), "report.json")

	require.NoError(t, NewJSONReporter().Generate(result, nil, path))

	var doc map[string]interface{}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc, "attack_simulation")
}
