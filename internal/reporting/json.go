package reporting

import (
	"encoding/json"
	"fmt"
	"os"

	"fluttersec/pkg/types"
)

// JSONReporter writes the machine-readable report used in CI/CD gates.
type JSONReporter struct{}

func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

func (r *JSONReporter) Generate(result *types.AnalysisResult, sim *types.AttackSimulation, outputPath string) error {
	// Round-trip through the aggregate's own marshalling so the document keeps
	// the canonical field names (findings_count included), then attach the
	// simulation block.
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	if sim != nil {
		profiles := make(map[string]interface{}, len(sim.Profiles))
		for level, pr := range sim.Profiles {
			profiles[level] = map[string]interface{}{
				"can_exploit":          pr.CanExploit,
				"time_minutes":         pr.TimeMinutes,
				"exploitable_findings": pr.ExploitableFindings,
			}
		}
		doc["attack_simulation"] = map[string]interface{}{
			"most_likely_attacker":       sim.MostLikelyAttacker,
			"time_to_compromise_minutes": sim.OverallTimeMinutes,
			"attack_scenario":            sim.AttackScenario,
			"profiles":                   profiles,
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
