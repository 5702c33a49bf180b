package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stylewatch.yaml")
	data := `
browser:
  stealth: headful
capture:
  sample_limit: 3
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Browser.Stealth != "headful" {
		t.Errorf("Stealth = %q, want headful", cfg.Browser.Stealth)
	}
	if cfg.Capture.SampleLimit != 3 {
		t.Errorf("SampleLimit = %d, want 3", cfg.Capture.SampleLimit)
	}
	if cfg.Browser.MemoryLimit != 1<<30 {
		t.Errorf("MemoryLimit = %d, want default 1GiB", cfg.Browser.MemoryLimit)
	}
	if cfg.Browser.NavigateTimeout != 30*time.Second {
		t.Errorf("NavigateTimeout = %v, want default 30s", cfg.Browser.NavigateTimeout)
	}
	if cfg.Capture.Settle != 100*time.Millisecond {
		t.Errorf("Settle = %v, want default 100ms", cfg.Capture.Settle)
	}
	if cfg.HTTP.Addr == "" {
		t.Error("HTTP.Addr default missing")
	}
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("browser: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() error = nil, want parse error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Browser.Stealth != "headless" {
		t.Errorf("Stealth = %q, want headless", cfg.Browser.Stealth)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled = true, want off by default")
	}
	if cfg.Journal.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.Journal.RetentionDays)
	}
}
