package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fluttersec/internal/attacksim"
	"fluttersec/internal/detectors"
	"fluttersec/internal/extract"
	"fluttersec/internal/scoring"
	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// Engine runs the finding pipeline: extract, detect, score, simulate. The
// produced AnalysisResult is immutable once Scan returns.
type Engine struct {
	config    *types.Config
	detectors []Detector
}

// Task describes one scan run.
type Task struct {
	PackagePath string // path to the .apk/.ipa file (required)
	WorkDir     string // extraction dir; empty means a fresh pipeline-owned temp dir
}

// NewEngine builds the pipeline with the fixed detector order: env files,
// assets, binary strings.
func NewEngine(cfg *types.Config) (*Engine, error) {
	binDetector, err := detectors.NewBinaryStringDetector(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("initializing binary-string detector: %w", err)
	}

	return &Engine{
		config: cfg,
		detectors: []Detector{
			detectors.NewEnvDetector(cfg.Env),
			detectors.NewAssetDetector(cfg.Assets),
			binDetector,
		},
	}, nil
}

// Scan runs the full pipeline for one package and returns the assembled
// result plus the attack simulation outcome. Only the four fatal extraction
// conditions abort a run; detector failures degrade to warnings.
func (e *Engine) Scan(ctx context.Context, task *Task) (*types.AnalysisResult, *types.AttackSimulation, error) {
	start := time.Now()

	extractor, platform, err := extract.ForFile(task.PackagePath)
	if err != nil {
		return nil, nil, err
	}

	layout, err := extractor.Extract(ctx, task.WorkDir)
	if err != nil {
		return nil, nil, err
	}
	// The working directory is deleted exactly once, on every exit path.
	defer func() {
		if cerr := extractor.Cleanup(); cerr != nil {
			logging.L().Debugf("cleanup: %v", cerr)
		}
	}()

	if !extractor.DetectFlutter() {
		logging.L().Warnf("%s does not appear to be a Flutter app, scanning anyway", task.PackagePath)
	}

	result := &types.AnalysisResult{
		ScanID:      uuid.NewString(),
		AppName:     extractor.AppName(),
		PackageName: extractor.PackageID(),
		Platform:    platform,
		FilePath:    task.PackagePath,
		Timestamp:   time.Now(),
	}

	for _, d := range e.detectors {
		findings, derr := d.Detect(ctx, layout)
		if derr != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			logging.L().Warnf("detector %s failed: %v", d.Name(), derr)
		}
		for _, f := range findings {
			result.AddFinding(f)
		}
		logging.L().Debugf("detector %s produced %d finding(s)", d.Name(), len(findings))
	}

	result.SecurityScore = scoring.CalculateScore(result.Findings)
	result.Grade = scoring.Grade(result.SecurityScore)
	result.AttackSurfaceScore = scoring.AttackSurface(result.Findings)

	sim := attacksim.Simulate(result.Findings)
	result.TimeToCompromiseMinutes = sim.OverallTimeMinutes
	profile := sim.Profiles[sim.MostLikelyAttacker].Profile
	result.AttackerProfile = &profile

	logging.L().Debugf("scan of %s finished in %s: score %d, %d finding(s)",
		task.PackagePath, time.Since(start), result.SecurityScore, len(result.Findings))
	return result, sim, nil
}
