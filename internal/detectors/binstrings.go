package detectors

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grd/stat"

	"fluttersec/internal/extract"
	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// patternOrder fixes the evaluation and reporting order of the built-in
// string patterns. User-added patterns are appended alphabetically.
var patternOrder = []string{
	"api_key", "secret", "token", "url", "email", "ip", "aws_key", "private_key",
}

var patternTitles = map[string]string{
	"api_key":     "API Keys in Binary",
	"secret":      "Secrets in Binary",
	"token":       "Tokens in Binary",
	"url":         "URLs Exposed in Binary",
	"email":       "Email Addresses in Binary",
	"ip":          "IP Addresses in Binary",
	"aws_key":     "AWS Access Keys in Binary",
	"private_key": "Private Keys in Binary",
}

// BinaryStringDetector streams printable strings out of the platform's native
// code artifact and matches them against the pattern dictionary. One finding
// aggregates all matches of a pattern.
type BinaryStringDetector struct {
	cfg      types.BinaryConfig
	order    []string
	patterns map[string]*regexp.Regexp
}

func NewBinaryStringDetector(cfg types.BinaryConfig) (*BinaryStringDetector, error) {
	compiled := make(map[string]*regexp.Regexp, len(cfg.Patterns))
	for name, expr := range cfg.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", name, err)
		}
		compiled[name] = re
	}

	order := make([]string, 0, len(compiled))
	for _, name := range patternOrder {
		if _, ok := compiled[name]; ok {
			order = append(order, name)
		}
	}
	var extra []string
	for name := range compiled {
		if !contains(patternOrder, name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	return &BinaryStringDetector{cfg: cfg, order: order, patterns: compiled}, nil
}

func (d *BinaryStringDetector) Name() string { return "binstrings" }

func (d *BinaryStringDetector) Detect(ctx context.Context, layout *extract.Layout) ([]types.Finding, error) {
	if layout.NativeBinary == "" {
		return nil, nil
	}

	matches, err := d.scanBinary(ctx, layout.NativeBinary)
	if err != nil {
		// A truncated or unreadable binary is a local skip, not a failure.
		logging.L().Warnf("binary scan of %s skipped: %v", layout.NativeBinary, err)
		return nil, nil
	}

	binaryName := filepath.Base(layout.NativeBinary)
	var findings []types.Finding
	for _, name := range d.order {
		if set := matches[name]; len(set.samples) > 0 {
			findings = append(findings, d.buildFinding(name, set, binaryName))
		}
	}
	return findings, nil
}

// matchSet keeps unique matching strings per pattern, in encounter order.
type matchSet struct {
	samples []string
	seen    map[string]bool
}

func (m *matchSet) add(s string) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if !m.seen[s] {
		m.seen[s] = true
		m.samples = append(m.samples, s)
	}
}

// scanBinary streams the candidate strings once and feeds every pattern from
// the same pass.
func (d *BinaryStringDetector) scanBinary(ctx context.Context, path string) (map[string]*matchSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	matches := make(map[string]*matchSet, len(d.order))
	for _, name := range d.order {
		matches[name] = &matchSet{}
	}

	var lengths stat.IntSlice
	scanner := NewStringScanner(f, d.cfg.MinStringLength)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate, ok := scanner.Next()
		if !ok {
			break
		}
		lengths = append(lengths, int64(len(candidate)))

		for _, name := range d.order {
			if !d.patterns[name].MatchString(candidate) {
				continue
			}
			if name == "url" && d.whitelistedURL(candidate) {
				continue
			}
			matches[name].add(candidate)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lengths) > 0 {
		maxLen, _ := stat.Max(lengths)
		logging.L().Debugf("extracted %d candidate strings from %s (mean len %.1f, sd %.1f, max %.0f)",
			len(lengths), filepath.Base(path), stat.Mean(lengths), math.Sqrt(stat.Variance(lengths)), maxLen)
	}
	return matches, nil
}

// whitelistedURL reports whether the string contains a known-benign domain.
func (d *BinaryStringDetector) whitelistedURL(s string) bool {
	for _, domain := range d.cfg.WhitelistDomains {
		if strings.Contains(s, domain) {
			return true
		}
	}
	return false
}

func (d *BinaryStringDetector) buildFinding(pattern string, set *matchSet, binaryName string) types.Finding {
	samples := set.samples[:min(len(set.samples), 5)]
	var preview strings.Builder
	for _, s := range samples {
		fmt.Fprintf(&preview, "  - %s\n", s)
	}
	if len(set.samples) > 5 {
		fmt.Fprintf(&preview, "  ... and %d more", len(set.samples)-5)
	}

	title, ok := patternTitles[pattern]
	if !ok {
		title = fmt.Sprintf("%s Found", pattern)
	}

	return types.Finding{
		Severity: patternSeverity(pattern),
		Title:    title,
		Description: fmt.Sprintf("Found %d instances of %s in %s:\n\n%s",
			len(set.samples), pattern, binaryName, strings.TrimRight(preview.String(), "\n")),
		FilePath:    binaryName,
		OWASP:       "M9: Reverse Engineering",
		CWE:         "CWE-798: Use of Hard-coded Credentials",
		Remediation: binaryRemediation(pattern),
	}
}

// patternSeverity is the fixed severity per pattern category.
func patternSeverity(pattern string) types.Severity {
	switch pattern {
	case "aws_key", "private_key", "secret", "api_key", "token":
		return types.SeverityCritical
	case "url":
		return types.SeverityHigh
	case "email", "ip":
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

func binaryRemediation(pattern string) *types.Remediation {
	return &types.Remediation{
		Summary:   fmt.Sprintf("Obfuscate or encrypt %s in code", pattern),
		RootCause: "Sensitive strings are hardcoded in Dart/Flutter code",
		WhyWrong: "Strings in compiled binaries can be extracted using simple tools. " +
			"Hardcoded secrets, URLs, and keys are visible to attackers.",
		FixSteps: []string{
			"1. Move sensitive values to secure backend",
			"2. Use runtime key derivation instead of hardcoding",
			"3. Enable Dart code obfuscation: flutter build --obfuscate",
			"4. Consider string encryption for critical values",
			"5. Use ProGuard aggressive mode (Android)",
		},
		CodeBefore: "// BAD: Hardcoded in code\nconst apiKey = 'sk_live_123456789';\nconst apiUrl = 'https://api.example.com';",
		CodeAfter: "// GOOD: Fetch from secure backend\nclass SecureConfig {\n" +
			"  static Future<String> getApiKey() async {\n" +
			"    // Fetch from your secure backend\n" +
			"    final response = await api.getConfig();\n" +
			"    return decrypt(response.encryptedKey);\n  }\n}",
		Verification: "Run: strings libapp.so | grep -i 'api\\|secret'\nExpect: Obfuscated/encrypted values",
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
