package types

// Output holds report output settings.
type Output struct {
	Format string `yaml:"format"` // terminal, json, html, markdown
}

// EnvConfig drives the environment-file detector. Filenames is the exact set
// of config file names to look for; SensitiveKeyPatterns is the substring
// vocabulary used to classify keys, matched case-insensitively.
type EnvConfig struct {
	Filenames            []string `yaml:"filenames"`
	SensitiveKeyPatterns []string `yaml:"sensitive_key_patterns"`
	MaxFileBytes         int64    `yaml:"max_file_bytes"`
}

// AssetConfig drives the asset-exposure detector.
type AssetConfig struct {
	SensitiveExtensions []string `yaml:"sensitive_extensions"`
	SensitiveFilenames  []string `yaml:"sensitive_filenames"`
	WhitelistPatterns   []string `yaml:"whitelist_patterns"`
}

// BinaryConfig drives the binary-string detector. Patterns maps a category
// name to its regular expression; severity per category is fixed in code.
type BinaryConfig struct {
	MinStringLength  int               `yaml:"min_string_length"`
	WhitelistDomains []string          `yaml:"whitelist_domains"`
	Patterns         map[string]string `yaml:"patterns"`
}

// Config is the scan configuration, loaded from the embedded default or a
// yaml file on disk.
type Config struct {
	Output Output       `yaml:"output"`
	Env    EnvConfig    `yaml:"env"`
	Assets AssetConfig  `yaml:"assets"`
	Binary BinaryConfig `yaml:"binary"`
}
