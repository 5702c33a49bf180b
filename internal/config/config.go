// CLAUDE:SUMMARY Defines stylewatch config structs and parses YAML configuration files with defaults.
// Package config handles stylewatch configuration from YAML files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level stylewatch configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Browser BrowserConfig `yaml:"browser"`
	Capture CaptureConfig `yaml:"capture"`
	Journal JournalConfig `yaml:"journal"`
}

// HTTPConfig controls the REST surface.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	MemoryLimit      int64         `yaml:"memory_limit"`
	RecycleInterval  time.Duration `yaml:"recycle_interval"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	Stealth          string        `yaml:"stealth"` // headless | headful
	XvfbDisplay      string        `yaml:"xvfb_display"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// CaptureConfig tunes snapshot sampling.
type CaptureConfig struct {
	SampleLimit int           `yaml:"sample_limit"`
	Settle      time.Duration `yaml:"settle"`
}

// JournalConfig controls the optional SQLite capture journal.
type JournalConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a Config with every default applied, for callers
// running without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8086"
	}
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.Stealth == "" {
		c.Browser.Stealth = "headless"
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Capture.SampleLimit <= 0 {
		c.Capture.SampleLimit = 6
	}
	if c.Capture.Settle <= 0 {
		c.Capture.Settle = 100 * time.Millisecond
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "stylewatch.db"
	}
	if c.Journal.RetentionDays <= 0 {
		c.Journal.RetentionDays = 30
	}
}
