// Package config loads run configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexaworld/internal/sampler"
	"github.com/talgya/hexaworld/internal/world"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	World   World   `yaml:"world"`
	Sampler Sampler `yaml:"sampler"`
	Run     Run     `yaml:"run"`
}

type World struct {
	Size               int     `yaml:"size"`
	Seed               int64   `yaml:"seed"`
	RatioObstacles     float64 `yaml:"ratio_obstacles"`
	RatioMovable       float64 `yaml:"ratio_movable"`
	RatioMoving        float64 `yaml:"ratio_moving"`
	ObstacleClustering float64 `yaml:"obstacle_clustering"`
	ObservationRange   int     `yaml:"observation_range"`
}

type Sampler struct {
	Horizon int `yaml:"horizon"`
}

type Run struct {
	Ticks      uint64 `yaml:"ticks"`
	IntervalMs int    `yaml:"interval_ms"`
	FlushEvery uint64 `yaml:"flush_every"`
	DBPath     string `yaml:"db_path"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	gen := world.DefaultGenConfig()
	return Config{
		World: World{
			Size:               gen.Size,
			Seed:               gen.Seed,
			RatioObstacles:     gen.RatioObstacles,
			RatioMovable:       gen.RatioMovable,
			RatioMoving:        gen.RatioMoving,
			ObstacleClustering: gen.ObstacleClustering,
			ObservationRange:   gen.ObservationRange,
		},
		Sampler: Sampler{Horizon: 3},
		Run: Run{
			Ticks:      10000,
			FlushEvery: 500,
			DBPath:     "data/rollouts.db",
			LogLevel:   "info",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML into cfg, rejecting unknown keys, then validates.
func Decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.GenConfig().Validate(); err != nil {
		return fmt.Errorf("%w: world: %w", ErrInvalid, err)
	}
	if c.Sampler.Horizon < 1 || c.Sampler.Horizon > sampler.MaxHorizon {
		return fmt.Errorf("%w: sampler.horizon %d not in [1, %d]", ErrInvalid, c.Sampler.Horizon, sampler.MaxHorizon)
	}
	if c.Run.IntervalMs < 0 {
		return fmt.Errorf("%w: run.interval_ms %d is negative", ErrInvalid, c.Run.IntervalMs)
	}
	if _, err := ParseLevel(c.Run.LogLevel); err != nil {
		return fmt.Errorf("%w: run.log_level: %w", ErrInvalid, err)
	}
	return nil
}

// GenConfig converts the world section for world.Generate.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Size:               c.World.Size,
		Seed:               c.World.Seed,
		RatioObstacles:     c.World.RatioObstacles,
		RatioMovable:       c.World.RatioMovable,
		RatioMoving:        c.World.RatioMoving,
		ObstacleClustering: c.World.ObstacleClustering,
		ObservationRange:   c.World.ObservationRange,
	}
}

// Interval returns the tick pacing as a duration.
func (r Run) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
	}
}
