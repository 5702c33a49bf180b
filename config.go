package stylewatch

import "github.com/hazyhaar/stylewatch/internal/config"

// Configuration types re-exported for embedders.
type (
	Config        = config.Config
	HTTPConfig    = config.HTTPConfig
	BrowserConfig = config.BrowserConfig
	CaptureConfig = config.CaptureConfig
	JournalConfig = config.JournalConfig
)

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (*Config, error) { return config.LoadFile(path) }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config { return config.Default() }
