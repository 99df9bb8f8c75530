package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/goggp/pkg/statemachine"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, statemachine.BackendPropnet, cfg.StateMachineOptions().Backend)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goggp.yaml")
	data := []byte(`
engine:
  backend: prover
  max_depth: 64
simulation:
  workers: 3
  playouts: 50
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prover", cfg.Engine.Backend)
	assert.Equal(t, 64, cfg.Engine.MaxDepth)
	assert.Equal(t, 3, cfg.Simulation.Workers)
	assert.Equal(t, 50, cfg.Simulation.Playouts)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 1000, cfg.Simulation.MaxSteps)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unterminated"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOGGP_BACKEND", "prover")
	t.Setenv("GOGGP_LOG_LEVEL", "warn")
	t.Setenv("GOGGP_WORKERS", "8")
	t.Setenv("GOGGP_PLAYOUTS", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prover", cfg.Engine.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Simulation.Workers)
	assert.Equal(t, 12, cfg.Simulation.Playouts)
}

func TestEnvOverrides_BadNumber(t *testing.T) {
	t.Setenv("GOGGP_WORKERS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "GOGGP_WORKERS")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "goggp.yaml")
	cfg := DefaultConfig()
	cfg.Engine.Backend = "prover"
	cfg.Simulation.Seed = 42
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Engine.Backend = "oracle" }, "unknown backend"},
		{"negative workers", func(c *Config) { c.Simulation.Workers = -1 }, "workers"},
		{"zero playouts", func(c *Config) { c.Simulation.Playouts = 0 }, "playouts"},
		{"negative steps", func(c *Config) { c.Simulation.MaxSteps = -3 }, "max_steps"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
		{"negative limits", func(c *Config) { c.Engine.MaxDepth = -1 }, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}
