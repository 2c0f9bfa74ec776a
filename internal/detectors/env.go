package detectors

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fluttersec/internal/extract"
	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// EnvDetector finds bundled environment/config files and reports the
// sensitive keys they expose. One CRITICAL finding per matched file.
type EnvDetector struct {
	cfg       types.EnvConfig
	filenames map[string]bool
}

func NewEnvDetector(cfg types.EnvConfig) *EnvDetector {
	names := make(map[string]bool, len(cfg.Filenames))
	for _, n := range cfg.Filenames {
		names[strings.ToLower(n)] = true
	}
	return &EnvDetector{cfg: cfg, filenames: names}
}

func (d *EnvDetector) Name() string { return "env" }

func (d *EnvDetector) Detect(ctx context.Context, layout *extract.Layout) ([]types.Finding, error) {
	var findings []types.Finding
	seen := make(map[string]bool)

	for _, dir := range scanRoots(layout) {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if entry.IsDir() || seen[path] {
				return nil
			}
			if !d.filenames[strings.ToLower(entry.Name())] {
				return nil
			}
			seen[path] = true
			if f, ok := d.analyzeFile(path, layout.Root); ok {
				findings = append(findings, f)
			}
			return nil
		})
		if err != nil {
			return findings, err
		}
	}
	return findings, nil
}

// analyzeFile parses a matched file as line-oriented key=value text and
// builds the finding. Unreadable or oversized files are skipped silently.
func (d *EnvDetector) analyzeFile(path, root string) (types.Finding, bool) {
	if info, err := os.Stat(path); err != nil || info.Size() > d.cfg.MaxFileBytes {
		logging.L().Debugf("skipping env file %s: unreadable or too large", path)
		return types.Finding{}, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		logging.L().Debugf("skipping env file %s: %v", path, err)
		return types.Finding{}, false
	}

	relPath := relativeTo(path, root)
	keys := d.sensitiveKeys(string(content))

	preview := strings.Join(keys[:min(len(keys), 5)], ", ")
	overflow := ""
	if len(keys) > 5 {
		overflow = "..."
	}

	name := filepath.Base(path)
	return types.Finding{
		Severity: types.SeverityCritical,
		Title:    fmt.Sprintf("%s File Exposed", name),
		Description: fmt.Sprintf(
			"Environment configuration file found at '%s'. "+
				"This file is completely unprotected and can be extracted in < 30 seconds. "+
				"Found %d sensitive keys: %s%s",
			relPath, len(keys), preview, overflow),
		FilePath:    relPath,
		OWASP:       "M9: Reverse Engineering",
		CWE:         "CWE-312: Cleartext Storage of Sensitive Information",
		CVSSScore:   9.1,
		Remediation: envRemediation(name),
	}, true
}

// sensitiveKeys extracts key names classified as sensitive by the substring
// vocabulary. Comment lines and lines without '=' are ignored.
func (d *EnvDetector) sensitiveKeys(content string) []string {
	var keys []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key != "" && d.isSensitiveKey(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (d *EnvDetector) isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range d.cfg.SensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

func envRemediation(filename string) *types.Remediation {
	return &types.Remediation{
		Summary:   "Remove .env file from production builds",
		RootCause: fmt.Sprintf("The file '%s' was included in pubspec.yaml assets section", filename),
		WhyWrong: "Flutter bundles all assets directly into the APK/IPA. " +
			"Anyone can extract the file using simple unzip command. " +
			"This exposes all API endpoints, keys, and sensitive configuration.",
		FixSteps: []string{
			"1. Remove .env from pubspec.yaml assets section",
			"2. Create lib/core/config/app_config.dart with compile-time constants",
			"3. Replace dotenv.env['KEY'] with AppConfig.key",
			"4. Rebuild: flutter clean && flutter build apk --release",
			"5. Verify: Re-scan with fluttersec to confirm .env is removed",
		},
		CodeBefore: "# pubspec.yaml\nflutter:\n  assets:\n    - .env  # EXPOSED in production build",
		CodeAfter: "# pubspec.yaml\nflutter:\n  assets:\n    # - .env  # REMOVED for security\n\n" +
			"# lib/core/config/app_config.dart\nclass AppConfig {\n" +
			"  static const baseUrl = 'https://api.example.com';\n" +
			"  static const apiPrefix = '/api/v1';\n\n" +
			"  static String get apiBaseUrl => '$baseUrl$apiPrefix';\n}",
		Verification: "Run: fluttersec scan app-release.apk\nExpected: No .env findings",
		References: []string{
			"https://owasp.org/www-project-mobile-top-10/",
			"https://docs.flutter.dev/deployment/obfuscate",
		},
	}
}

// scanRoots returns the directories a content detector should walk: the
// flutter_assets tree and the generic assets tree. The flutter_assets dir
// nests under assets on Android; per-file dedup in the callers keeps a file
// from being reported twice.
func scanRoots(layout *extract.Layout) []string {
	var roots []string
	if layout.FlutterAssets != "" {
		roots = append(roots, layout.FlutterAssets)
	}
	if layout.Assets != "" {
		roots = append(roots, layout.Assets)
	}
	return roots
}

func relativeTo(path, root string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
