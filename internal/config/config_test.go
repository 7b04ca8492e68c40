package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexaworld/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hexworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, world.DefaultGenConfig(), cfg.GenConfig())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  size: 12
  seed: 77
  observation_range: 2
sampler:
  horizon: 4
run:
  ticks: 250
  interval_ms: 40
  log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.World.Size)
	assert.Equal(t, int64(77), cfg.World.Seed)
	assert.Equal(t, 2, cfg.World.ObservationRange)
	assert.Equal(t, 4, cfg.Sampler.Horizon)
	assert.Equal(t, uint64(250), cfg.Run.Ticks)
	assert.Equal(t, 40*time.Millisecond, cfg.Run.Interval())

	// Untouched keys keep their defaults.
	def := Default()
	assert.Equal(t, def.World.RatioMovable, cfg.World.RatioMovable)
	assert.Equal(t, def.Run.DBPath, cfg.Run.DBPath)
	assert.Equal(t, def.Run.FlushEvery, cfg.Run.FlushEvery)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "world:\n  sise: 12\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"horizon zero", func(c *Config) { c.Sampler.Horizon = 0 }, nil},
		{"horizon too long", func(c *Config) { c.Sampler.Horizon = 9 }, nil},
		{"negative interval", func(c *Config) { c.Run.IntervalMs = -1 }, nil},
		{"bad log level", func(c *Config) { c.Run.LogLevel = "loud" }, nil},
		{"world too small", func(c *Config) { c.World.Size = 1 }, world.ErrTooSmall},
		{"overcrowded", func(c *Config) { c.World.RatioMovable = 0.95 }, world.ErrOvercrowded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
