package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/weightsync/engine/core"
)

// DefaultConfigFile is looked up in the working directory when no config is given.
const DefaultConfigFile = "weightsync.toml"

type Config struct {
	// The application name used in log messages.
	Name     string `toml:"name"`
	LogLevel string `toml:"log_level"`
	// Workers loading linked libraries.
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
	// Watch linked libraries and the weight file for changes.
	Watch  bool         `toml:"watch"`
	Resync ResyncConfig `toml:"resync"`
}

// ResyncConfig controls how long the post-load resync waits for the scene.
type ResyncConfig struct {
	PollInterval string  `toml:"poll_interval"`
	MaxInterval  string  `toml:"max_interval"`
	Multiplier   float64 `toml:"multiplier"`
	Timeout      string  `toml:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:      "weightsync",
		LogLevel:  "info",
		Workers:   max(1, min(runtime.NumCPU(), 4)),
		QueueSize: 64,
		Resync: ResyncConfig{
			PollInterval: "100ms",
			MaxInterval:  "1s",
			Multiplier:   2,
			Timeout:      "30s",
		},
	}
}

// LoadConfig reads a TOML config on top of the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size must not be negative, got %d", c.QueueSize)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	_, err := c.Gate()
	return err
}

func (c *Config) Level() (core.LogLevel, error) {
	if c.LogLevel == "" {
		return core.InfoLevel, nil
	}
	return core.ParseLogLevel(c.LogLevel)
}

// Gate converts the resync settings into a readiness gate configuration.
func (c *Config) Gate() (core.GateConfig, error) {
	gate := core.DefaultGateConfig()
	gate.Multiplier = c.Resync.Multiplier

	for _, d := range []struct {
		name  string
		value string
		out   *time.Duration
	}{
		{"poll_interval", c.Resync.PollInterval, &gate.Interval},
		{"max_interval", c.Resync.MaxInterval, &gate.MaxInterval},
		{"timeout", c.Resync.Timeout, &gate.Timeout},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return core.GateConfig{}, fmt.Errorf("resync.%s: %w", d.name, err)
		}
		if parsed < 0 {
			return core.GateConfig{}, fmt.Errorf("resync.%s must not be negative", d.name)
		}
		*d.out = parsed
	}
	return gate, nil
}
