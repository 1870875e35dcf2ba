package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the effective settings for one invocation.
type Config struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float64
	// ExcludeExts is the set of file extensions whose diff hunks are
	// dropped before the prompt is built. Fixed for the process lifetime.
	ExcludeExts   []string
	RedactSecrets bool
	NoColor       bool
}

// defaultExcludeExts covers binary and project-file formats that add noise
// without being reviewable.
var defaultExcludeExts = []string{
	".pbxproj",
	".storyboard",
	".svg",
	".png",
	".jpg",
	".jpeg",
	".gif",
	".ico",
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		MaxTokens:     2000,
		Temperature:   0.5,
		ExcludeExts:   append([]string(nil), defaultExcludeExts...),
		RedactSecrets: true,
	}
}

// Load builds the effective config by merging: defaults <- env <- overrides.
// The overrides map comes from CLI flags; only set values should be present.
// No configuration file is read.
func Load(overrides map[string]string) Config {
	cfg := Default()
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)
	return cfg
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REVIEWER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("REVIEWER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REVIEWER_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("REVIEWER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Temperature = f
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["provider"]; ok && v != "" {
		cfg.Provider = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["maxTokens"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.ExcludeExts = append(cfg.ExcludeExts, SplitExts(v)...)
	}
	if _, ok := overrides["noRedact"]; ok {
		cfg.RedactSecrets = false
	}
	if _, ok := overrides["noColor"]; ok {
		cfg.NoColor = true
	}
}

// SplitExts parses a comma-separated extension list, normalizing entries to
// a leading dot and skipping empties.
func SplitExts(s string) []string {
	var exts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		exts = append(exts, p)
	}
	return exts
}
