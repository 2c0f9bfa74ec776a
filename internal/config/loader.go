package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fluttersec/pkg/embedded"
	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// LoadConfig reads the scan configuration. An explicit path wins; otherwise
// the embedded default is used. A missing file falls back to defaults rather
// than failing so the scanner works out of the box.
func LoadConfig(configPath string) (*types.Config, error) {
	var configData []byte
	var err error

	if configPath != "" {
		configData, err = os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				logging.L().Warnf("config file %s not found, using defaults", configPath)
				return GetDefaultConfig(), nil
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		configData, err = embedded.GetFileContent("config.yaml")
		if err != nil {
			return GetDefaultConfig(), nil
		}
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(configData, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDefaultConfig returns the built-in vocabulary tables. These mirror
// pkg/embedded/config.yaml.
func GetDefaultConfig() *types.Config {
	return &types.Config{
		Output: types.Output{Format: "terminal"},
		Env: types.EnvConfig{
			Filenames: []string{
				".env", ".env.production", ".env.development", ".env.local",
				".env.staging", "config.json", "secrets.json", "credentials.json",
			},
			SensitiveKeyPatterns: []string{
				"api", "key", "secret", "token", "password", "auth",
				"url", "endpoint", "host", "server", "id", "credential",
			},
			MaxFileBytes: 2 * 1024 * 1024,
		},
		Assets: types.AssetConfig{
			SensitiveExtensions: []string{
				".key", ".pem", ".p12", ".pfx", ".jks", ".keystore",
				".db", ".sqlite", ".sqlite3", ".realm",
				".json", ".xml", ".yaml", ".yml", ".toml", ".ini",
			},
			SensitiveFilenames: []string{
				"google-services.json", "GoogleService-Info.plist",
				"firebase_options.dart", "secrets.dart",
				"config.json", "settings.json", "credentials.json",
				"database.db", "app.db", "user.db",
				"keystore.jks", "key.jks", "release.keystore",
			},
			WhitelistPatterns: []string{
				"fontmanifest.json", "assetmanifest.json",
				"kernel_blob.bin", "isolate_snapshot",
			},
		},
		Binary: types.BinaryConfig{
			MinStringLength: 8,
			WhitelistDomains: []string{
				"schemas.android.com", "xmlpull.org", "w3.org",
				"apache.org", "eclipse.org", "tile.openstreetmap.org",
			},
			Patterns: map[string]string{
				"api_key":     `(?i)api[_-]?key|apikey`,
				"secret":      `(?i)secret|password|passwd|pwd`,
				"token":       `(?i)token|auth[_-]?token`,
				"url":         `https?://[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
				"email":       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
				"ip":          `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
				"aws_key":     `AKIA[0-9A-Z]{16}`,
				"private_key": `-----BEGIN (?:RSA )?PRIVATE KEY-----`,
			},
		},
	}
}

func validateConfig(cfg *types.Config) error {
	if cfg.Binary.MinStringLength <= 0 {
		return fmt.Errorf("binary.min_string_length must be positive, got %d", cfg.Binary.MinStringLength)
	}
	if len(cfg.Binary.Patterns) == 0 {
		return fmt.Errorf("binary.patterns must not be empty")
	}
	return nil
}
