package reporting

import (
	"fmt"
	"path/filepath"
	"strings"

	"fluttersec/pkg/types"
)

// Reporter renders an assembled analysis result. Reporters are pass-through
// views; they never alter the aggregate.
type Reporter interface {
	Generate(result *types.AnalysisResult, sim *types.AttackSimulation, outputPath string) error
}

// ForOutput picks a reporter from an explicit format or, failing that, the
// output path extension. Terminal is the default.
func ForOutput(format, outputPath string) (Reporter, error) {
	if format == "" && outputPath != "" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".html":
			format = "html"
		case ".json":
			format = "json"
		case ".md", ".markdown":
			format = "markdown"
		}
	}

	switch strings.ToLower(format) {
	case "html":
		return NewHTMLReporter(), nil
	case "json":
		return NewJSONReporter(), nil
	case "markdown":
		return NewMarkdownReporter(), nil
	case "", "terminal", "console":
		return NewConsoleReporter(false), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
