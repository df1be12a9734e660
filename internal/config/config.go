package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML config file. Zero values mean "not set"; CLI flags
// win over file values, file values win over defaults.
type Config struct {
	StartURL       string   `yaml:"start_url"`
	Mode           string   `yaml:"mode"` // auto|toc|nav
	OutputDir      string   `yaml:"output_dir"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	UserAgent      string   `yaml:"user_agent"`
	Headless       *bool    `yaml:"headless"`
	TocThreshold   int      `yaml:"toc_threshold"`
	DelayMs        int      `yaml:"delay_ms"`
	JitterMs       int      `yaml:"jitter_ms"`
	Exclude        []string `yaml:"exclude"`
	Include        []string `yaml:"include"`
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case "", "auto", "toc", "nav":
	default:
		return fmt.Errorf("mode must be auto, toc or nav, got %q", c.Mode)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if c.TocThreshold < 0 {
		return fmt.Errorf("toc_threshold must not be negative")
	}
	if c.DelayMs < 0 || c.JitterMs < 0 {
		return fmt.Errorf("delay_ms and jitter_ms must not be negative")
	}
	return nil
}

const defaultTemplate = `# tildabook configuration
# Seed URL: a table of contents or the first chapter.
start_url: ""

# auto decides by TOC link count; toc and nav force a traversal strategy.
mode: auto

# Output directory (default: output/<host>).
output_dir: ""

timeout_seconds: 45
user_agent: ""
headless: true

# A start page with more than this many same-site links is treated as a TOC.
toc_threshold: 20

# Politeness pause between chapter loads: delay_ms plus up to jitter_ms extra.
delay_ms: 1500
jitter_ms: 1000

# Drop harvested links containing any of these substrings.
exclude: []

# When set, keep only links matching at least one glob.
include: []
`

// WriteDefault creates a commented starter config. Refuses to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(defaultTemplate), 0644)
}
