package attacksim

import "fluttersec/pkg/types"

// Attacker levels, weakest first. Selection walks this order and picks the
// first profile that can exploit; advanced is the guaranteed fallback.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

var levelOrder = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}

// attackerProfiles is process-wide immutable configuration. Accessors hand
// out copies so callers cannot mutate the table.
var attackerProfiles = map[string]types.AttackerProfile{
	LevelBeginner: {
		Level:       "Beginner (Script Kiddie)",
		TimeMinutes: 5,
		SuccessRate: 0.60,
		Tools:       []string{"unzip", "strings", "basic text editors"},
		Capabilities: []string{
			"Extract APK/IPA files",
			"View assets and configs",
			"Search for .env files",
			"Read basic text files",
		},
	},
	LevelIntermediate: {
		Level:       "Intermediate (Security Researcher)",
		TimeMinutes: 30,
		SuccessRate: 0.85,
		Tools:       []string{"APKTool", "JADX", "Burp Suite", "strings", "grep"},
		Capabilities: []string{
			"Everything from beginner",
			"Decompile code",
			"Analyze network traffic",
			"Intercept API calls",
			"Read manifest/plist files",
			"Extract strings from binaries",
		},
	},
	LevelAdvanced: {
		Level:       "Advanced (Professional Hacker)",
		TimeMinutes: 240,
		SuccessRate: 0.95,
		Tools:       []string{"Frida", "IDA Pro", "Ghidra", "Hopper", "reFlutter", "Blutter", "Custom scripts"},
		Capabilities: []string{
			"Everything from intermediate",
			"Runtime code injection",
			"Bypass SSL pinning",
			"Bypass root/jailbreak detection",
			"Dump complete Dart code",
			"Dynamic instrumentation",
			"Memory analysis",
			"Patch binaries",
		},
	},
}

// Profile returns a copy of the profile for a level.
func Profile(level string) (types.AttackerProfile, bool) {
	p, ok := attackerProfiles[level]
	if !ok {
		return types.AttackerProfile{}, false
	}
	return copyProfile(p), true
}

// Levels lists the attacker levels, weakest first.
func Levels() []string {
	out := make([]string, len(levelOrder))
	copy(out, levelOrder)
	return out
}

func copyProfile(p types.AttackerProfile) types.AttackerProfile {
	out := p
	out.Tools = append([]string(nil), p.Tools...)
	out.Capabilities = append([]string(nil), p.Capabilities...)
	return out
}

// DefenseRecommendations returns the hardening guidance matched to the
// attacker level that was selected for the scan.
func DefenseRecommendations(level string) []string {
	switch level {
	case LevelBeginner:
		return []string{
			"1. Remove .env files from production builds immediately",
			"2. Move sensitive data to compile-time constants",
			"3. Verify assets don't contain secrets",
			"4. This will block most unsophisticated attacks",
		}
	case LevelIntermediate:
		return []string{
			"1. Fix all beginner-level issues",
			"2. Enable code obfuscation (--obfuscate flag)",
			"3. Implement certificate pinning",
			"4. Add root/jailbreak detection",
			"5. Use ProGuard aggressive mode (Android)",
		}
	default:
		return []string{
			"1. Fix all intermediate-level issues",
			"2. Implement tamper detection",
			"3. Use native code for sensitive logic",
			"4. Add runtime integrity checks",
			"5. Implement Play Integrity API (Android)",
			"6. Monitor for suspicious behavior",
			"7. Consider bug bounty program",
			"Note: Advanced attackers are very difficult to stop completely",
		}
	}
}
