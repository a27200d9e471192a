package rescan

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("rescan: invalid config")

const defaultFlushInterval = 32 * time.Millisecond

// Config is the file form of an engine and pipeline setup.
type Config struct {
	Debug        bool          `yaml:"debug"`
	TrackChanges bool          `yaml:"track_changes"`
	Outline      OutlineConfig `yaml:"outline"`
}

// OutlineConfig tunes the outline pipeline. Zero fields take defaults.
type OutlineConfig struct {
	// FlushInterval is how often accumulated renders are resolved to
	// outlines.
	FlushInterval time.Duration `yaml:"flush_interval"`
	// FrameInterval is the off-thread worker's tick.
	FrameInterval time.Duration `yaml:"frame_interval"`
	TotalFrames   int           `yaml:"total_frames"`
	Interpolation float64       `yaml:"interpolation"`
	LabelBudget   int           `yaml:"label_budget"`
	Easing        string        `yaml:"easing"` // linear | in-quad | out-quad | in-out-quad | out-cubic | in-out-cubic | out-expo
	OffThread     bool          `yaml:"off_thread"`
}

func (c *OutlineConfig) defaults() {
	if c.FlushInterval <= 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = defaultFrameInterval
	}
	if c.TotalFrames <= 0 {
		c.TotalFrames = defaultTotalFrames
	}
	if c.Interpolation <= 0 || c.Interpolation > 1 {
		c.Interpolation = defaultInterpolation
	}
	if c.LabelBudget <= 0 {
		c.LabelBudget = defaultLabelBudget
	}
	if c.Easing == "" {
		c.Easing = "linear"
	}
}

// DefaultConfig returns a config with every default filled in.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Outline.defaults()
	return cfg
}

// LoadConfig parses YAML over the defaults.
func LoadConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "rescan: parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Outline.defaults()
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "rescan: read config %s", path)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "rescan: config %s", path)
	}
	return cfg, nil
}

// Validate rejects values that defaults would silently replace.
func (c *Config) Validate() error {
	o := c.Outline
	switch {
	case o.FlushInterval < 0:
		return errors.Wrapf(ErrInvalidConfig, "flush_interval %v is negative", o.FlushInterval)
	case o.FrameInterval < 0:
		return errors.Wrapf(ErrInvalidConfig, "frame_interval %v is negative", o.FrameInterval)
	case o.TotalFrames < 0:
		return errors.Wrapf(ErrInvalidConfig, "total_frames %d is negative", o.TotalFrames)
	case o.Interpolation < 0 || o.Interpolation > 1:
		return errors.Wrapf(ErrInvalidConfig, "interpolation %v not in [0, 1]", o.Interpolation)
	case o.LabelBudget < 0:
		return errors.Wrapf(ErrInvalidConfig, "label_budget %d is negative", o.LabelBudget)
	}
	if o.Easing != "" {
		if _, ok := easingByName(o.Easing); !ok {
			return errors.Wrapf(ErrInvalidConfig, "unknown easing %q", o.Easing)
		}
	}
	return nil
}

// EngineOptions returns the engine options the config selects.
func (c *Config) EngineOptions() []Option {
	return []Option{WithDebug(c.Debug)}
}
