package detectors

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"fluttersec/internal/extract"
	"fluttersec/pkg/types"
)

// AssetDetector flags bundled files whose extension or name marks them as
// sensitive: keys, certificates, keystores, databases, structured configs.
type AssetDetector struct {
	cfg        types.AssetConfig
	extensions map[string]bool
	filenames  map[string]bool
}

func NewAssetDetector(cfg types.AssetConfig) *AssetDetector {
	exts := make(map[string]bool, len(cfg.SensitiveExtensions))
	for _, e := range cfg.SensitiveExtensions {
		exts[strings.ToLower(e)] = true
	}
	names := make(map[string]bool, len(cfg.SensitiveFilenames))
	for _, n := range cfg.SensitiveFilenames {
		names[strings.ToLower(n)] = true
	}
	return &AssetDetector{cfg: cfg, extensions: exts, filenames: names}
}

func (d *AssetDetector) Name() string { return "assets" }

func (d *AssetDetector) Detect(ctx context.Context, layout *extract.Layout) ([]types.Finding, error) {
	var findings []types.Finding
	seen := make(map[string]bool)

	for _, dir := range scanRoots(layout) {
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if entry.IsDir() || seen[path] {
				return nil
			}
			seen[path] = true

			name := strings.ToLower(entry.Name())
			if d.whitelisted(name) {
				return nil
			}

			var reason string
			switch {
			case d.extensions[strings.ToLower(filepath.Ext(name))]:
				reason = "extension"
			case d.filenames[name]:
				reason = "filename"
			default:
				return nil
			}

			f, ferr := d.buildFinding(path, entry, layout.Root, reason)
			if ferr != nil {
				return nil // stat raced against deletion, skip
			}
			findings = append(findings, f)
			return nil
		})
		if err != nil {
			return findings, err
		}
	}
	return findings, nil
}

// whitelisted reports whether the name matches a known-benign Flutter build
// artifact. Substring match, case-insensitive.
func (d *AssetDetector) whitelisted(nameLower string) bool {
	for _, pattern := range d.cfg.WhitelistPatterns {
		if strings.Contains(nameLower, pattern) {
			return true
		}
	}
	return false
}

func (d *AssetDetector) buildFinding(path string, entry fs.DirEntry, root, reason string) (types.Finding, error) {
	info, err := entry.Info()
	if err != nil {
		return types.Finding{}, err
	}
	relPath := relativeTo(path, root)
	name := entry.Name()

	return types.Finding{
		Severity: assetSeverity(name),
		Title:    fmt.Sprintf("Sensitive File Exposed: %s", name),
		Description: fmt.Sprintf(
			"File '%s' (%d bytes) found at '%s'. Detected as sensitive %s. "+
				"This file should not be included in production builds.",
			name, info.Size(), relPath, reason),
		FilePath:    relPath,
		OWASP:       "M2: Insecure Data Storage",
		CWE:         "CWE-312: Cleartext Storage of Sensitive Information",
		Remediation: assetRemediation(name),
	}, nil
}

// assetSeverity applies the filename heuristics in priority order: key
// material and databases are critical, credential-looking names high,
// Firebase configs medium, everything else medium.
func assetSeverity(name string) types.Severity {
	lower := strings.ToLower(name)

	for _, token := range []string{".key", ".pem", ".p12", ".pfx", ".jks", "keystore"} {
		if strings.Contains(lower, token) {
			return types.SeverityCritical
		}
	}
	for _, token := range []string{".db", ".sqlite", ".realm"} {
		if strings.Contains(lower, token) {
			return types.SeverityCritical
		}
	}
	for _, token := range []string{"secret", "credential", "password"} {
		if strings.Contains(lower, token) {
			return types.SeverityHigh
		}
	}
	if strings.Contains(lower, "firebase") || strings.Contains(lower, "google-services") {
		return types.SeverityMedium
	}
	return types.SeverityMedium
}

func assetRemediation(name string) *types.Remediation {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "firebase") || strings.Contains(lower, "google-services") {
		return &types.Remediation{
			Summary:   "Restrict Firebase API keys in console",
			RootCause: "Firebase configuration files are expected in mobile apps",
			WhyWrong: "Firebase API keys are meant to be public but must be restricted. " +
				"Without restrictions, attackers can abuse your Firebase services.",
			FixSteps: []string{
				"1. Go to Firebase Console > Project Settings > API Keys",
				"2. Restrict Android API key to your package name + SHA-1",
				"3. Restrict iOS API key to your bundle ID",
				"4. Enable App Check for additional security",
				"5. Monitor Firebase usage for anomalies",
			},
			References: []string{"https://firebase.google.com/docs/projects/api-keys"},
		}
	}

	return &types.Remediation{
		Summary:   fmt.Sprintf("Remove %s from production build", name),
		RootCause: "File was included in assets via pubspec.yaml or build configuration",
		WhyWrong: "Sensitive files should never be bundled in production apps. " +
			"They can be extracted by anyone and may contain secrets.",
		FixSteps: []string{
			fmt.Sprintf("1. Remove %s from pubspec.yaml assets", name),
			"2. Use secure storage (Keychain/KeyStore) for secrets instead",
			"3. Fetch sensitive data from secure backend at runtime",
			"4. Rebuild and verify file is removed",
		},
		Verification: fmt.Sprintf("Run: fluttersec scan app.apk\nVerify: %s not found", name),
	}
}
