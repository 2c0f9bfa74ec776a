package engine

import (
	"context"

	"fluttersec/internal/extract"
	"fluttersec/pkg/types"
)

// Detector is one stateless scanning pass over the extracted tree. Detectors
// only read the tree, share no state, and may run in any order. New detectors
// plug in here without touching the orchestrator.
type Detector interface {
	// Name returns the unique name of the detector.
	Name() string
	// Detect scans the extracted layout and returns its findings. Per-file
	// problems are handled inside the detector; a returned error means the
	// whole pass was interrupted (e.g. context cancellation).
	Detect(ctx context.Context, layout *extract.Layout) ([]types.Finding, error)
}
