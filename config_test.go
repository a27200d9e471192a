package rescan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	o := cfg.Outline
	if o.FlushInterval != 32*time.Millisecond {
		t.Errorf("FlushInterval = %v", o.FlushInterval)
	}
	if o.TotalFrames != 45 || o.Interpolation != 0.2 || o.LabelBudget != 40 || o.Easing != "linear" {
		t.Errorf("outline defaults = %+v", o)
	}
	if cfg.Debug || cfg.TrackChanges || o.OffThread {
		t.Errorf("flags should default off: %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig([]byte(`
debug: true
track_changes: true
outline:
  flush_interval: 50ms
  total_frames: 60
  easing: out-cubic
  off_thread: true
`))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug || !cfg.TrackChanges || !cfg.Outline.OffThread {
		t.Errorf("flags = %+v", cfg)
	}
	if cfg.Outline.FlushInterval != 50*time.Millisecond || cfg.Outline.TotalFrames != 60 {
		t.Errorf("outline = %+v", cfg.Outline)
	}
	if cfg.Outline.Interpolation != 0.2 {
		t.Errorf("unset interpolation = %v, want default", cfg.Outline.Interpolation)
	}
	if len(cfg.EngineOptions()) == 0 {
		t.Error("no engine options")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative frames", "outline:\n  total_frames: -1\n"},
		{"interpolation above one", "outline:\n  interpolation: 1.5\n"},
		{"unknown easing", "outline:\n  easing: wobble\n"},
		{"negative interval", "outline:\n  flush_interval: -5ms\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig([]byte(tt.yaml)); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	if _, err := LoadConfig([]byte("outline: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rescan.yaml")
	if err := os.WriteFile(path, []byte("outline:\n  label_budget: 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Outline.LabelBudget != 20 {
		t.Errorf("LabelBudget = %d, want 20", cfg.Outline.LabelBudget)
	}

	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
