// Package config holds the settings of the goggp tool: which backend to
// use, how to run simulations, logging and metrics. Settings come from a
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/goggp/pkg/statemachine"
)

// Config is the root configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// EngineConfig selects and tunes the state machine backend.
type EngineConfig struct {
	Backend         string `yaml:"backend"`          // prover, propnet
	MaxDepth        int    `yaml:"max_depth"`        // prover recursion ceiling
	MaxPropositions int    `yaml:"max_propositions"` // propnet grounding bound
}

// SimulationConfig configures playout runs.
type SimulationConfig struct {
	Workers  int    `yaml:"workers"` // 0 = one per CPU
	Playouts int    `yaml:"playouts"`
	MaxSteps int    `yaml:"max_steps"` // 0 = unbounded
	Seed     uint64 `yaml:"seed"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend: string(statemachine.BackendPropnet),
		},
		Simulation: SimulationConfig{
			Playouts: 1000,
			MaxSteps: 1000,
			Seed:     1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes configuration to a YAML file, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("GOGGP_BACKEND"); v != "" {
		c.Engine.Backend = v
	}
	if v := os.Getenv("GOGGP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GOGGP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GOGGP_WORKERS %q: %w", v, err)
		}
		c.Simulation.Workers = n
	}
	if v := os.Getenv("GOGGP_PLAYOUTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid GOGGP_PLAYOUTS %q: %w", v, err)
		}
		c.Simulation.Playouts = n
	}
	return nil
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	if _, err := statemachine.ParseBackend(c.Engine.Backend); err != nil {
		return err
	}
	if c.Engine.MaxDepth < 0 || c.Engine.MaxPropositions < 0 {
		return fmt.Errorf("engine limits must not be negative")
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("simulation workers must not be negative: %d", c.Simulation.Workers)
	}
	if c.Simulation.Playouts <= 0 {
		return fmt.Errorf("simulation playouts must be positive: %d", c.Simulation.Playouts)
	}
	if c.Simulation.MaxSteps < 0 {
		return fmt.Errorf("simulation max_steps must not be negative: %d", c.Simulation.MaxSteps)
	}
	valid := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}

// StateMachineOptions converts the engine settings; the logger is supplied
// by the caller.
func (c *Config) StateMachineOptions() statemachine.Options {
	return statemachine.Options{
		Backend:         statemachine.Backend(c.Engine.Backend),
		MaxDepth:        c.Engine.MaxDepth,
		MaxPropositions: c.Engine.MaxPropositions,
	}
}
