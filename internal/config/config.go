// Package config loads the runtime settings of the simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zeusync/btree/internal/core/observability/log"
)

const EnvPrefix = "BTSIM"

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Sim       SimConfig       `mapstructure:"sim"`
	Inspector InspectorConfig `mapstructure:"inspector"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"` // json | console
}

type SimConfig struct {
	TickRate time.Duration `mapstructure:"tick_rate"`
	// Frames caps the number of steps; 0 runs until every agent is done.
	Frames          int  `mapstructure:"frames"`
	Agents          int  `mapstructure:"agents"`
	Concurrency     int  `mapstructure:"concurrency"`
	RestartOnSettle bool `mapstructure:"restart_on_settle"`
}

type InspectorConfig struct {
	// Addr enables the websocket inspector when non-empty, e.g. ":7070".
	Addr string `mapstructure:"addr"`
	// AllowedOrigins lists the websocket origins that are permitted.
	// An empty slice allows all origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// SetDefaults registers every key so that environment overrides apply even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("sim.tick_rate", "16ms")
	v.SetDefault("sim.frames", 0)
	v.SetDefault("sim.agents", 1)
	v.SetDefault("sim.concurrency", 0)
	v.SetDefault("sim.restart_on_settle", false)
	v.SetDefault("inspector.addr", "")
	v.SetDefault("inspector.allowed_origins", []string{})
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads the optional YAML file at path on top of defaults and BTSIM_*
// environment variables. v may carry flag bindings; nil starts from scratch.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Encoding != "json" && c.Log.Encoding != "console" {
		errs = append(errs, fmt.Errorf("log.encoding must be json or console, got %q", c.Log.Encoding))
	}
	if c.Sim.TickRate < 0 {
		errs = append(errs, fmt.Errorf("sim.tick_rate must not be negative, got %s", c.Sim.TickRate))
	}
	if c.Sim.Frames < 0 {
		errs = append(errs, fmt.Errorf("sim.frames must not be negative, got %d", c.Sim.Frames))
	}
	if c.Sim.Agents < 1 {
		errs = append(errs, fmt.Errorf("sim.agents must be at least 1, got %d", c.Sim.Agents))
	}
	if c.Metrics.Addr != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	lvl, _ := log.ParseLevel(c.Log.Level)
	return lvl
}
