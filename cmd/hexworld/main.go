// Command hexworld generates a hex world and records a rollout of
// sampler-driven actions and the observations they produce.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexaworld/internal/config"
	"github.com/talgya/hexaworld/internal/engine"
	"github.com/talgya/hexaworld/internal/entropy"
	"github.com/talgya/hexaworld/internal/persistence"
	"github.com/talgya/hexaworld/internal/sampler"
	"github.com/talgya/hexaworld/internal/world"
)

func main() {
	// ── Configuration ─────────────────────────────────────────────────
	cfg := config.Default()
	if path := os.Getenv("HEXWORLD_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			fatal("failed to load config", err)
		}
		cfg = loaded
	}
	cfg.Run.DBPath = envOrDefault("HEXWORLD_DB", cfg.Run.DBPath)
	cfg.Run.Ticks = uint64(envIntOrDefault("HEXWORLD_TICKS", int(cfg.Run.Ticks)))

	level, err := config.ParseLevel(cfg.Run.LogLevel)
	if err != nil {
		fatal("bad log level", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Pin the seed so the episode record can reproduce the world.
	cfg.World.Seed = entropy.Resolve(cfg.World.Seed)
	slog.Info("hexworld rollout", "seed", cfg.World.Seed, "size", cfg.World.Size, "ticks", cfg.Run.Ticks)

	// ── World ─────────────────────────────────────────────────────────
	w, err := world.Generate(cfg.GenConfig())
	if err != nil {
		fatal("failed to generate world", err)
	}
	for k, n := range w.Grid.Counts() {
		slog.Info("cells", "kind", world.KindName(k), "count", n)
	}
	slog.Info("world ready",
		"side", w.Grid.Side(),
		"movers", len(w.Movers),
		"agent", w.Agent.Position,
		"observation_len", world.ObservationLen(w.Range),
	)

	policy, err := sampler.New(cfg.Sampler.Horizon, rand.New(rand.NewSource(cfg.World.Seed+1)))
	if err != nil {
		fatal("failed to build sampler", err)
	}
	slog.Info("sampler ready", "horizon", policy.Horizon(), "endpoints", len(policy.Endpoints()))

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.Run.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.Run.DBPath)
	if err != nil {
		fatal("failed to open database", err)
	}
	defer db.Close()

	cfgJSON, _ := json.Marshal(cfg)
	ep, err := db.BeginEpisode(persistence.Episode{
		Seed:             cfg.World.Seed,
		Size:             cfg.World.Size,
		ObservationRange: cfg.World.ObservationRange,
		Horizon:          cfg.Sampler.Horizon,
		ConfigJSON:       string(cfgJSON),
	})
	if err != nil {
		fatal("failed to register episode", err)
	}
	slog.Info("recording episode", "id", ep.ID, "db", cfg.Run.DBPath)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(w)
	rec := persistence.NewRecorder(db, ep)

	eng := engine.NewEngine(sim, policy)
	eng.MaxTicks = cfg.Run.Ticks
	eng.Interval = cfg.Run.Interval()
	eng.FlushEvery = cfg.Run.FlushEvery
	eng.OnTick = rec.Record
	eng.OnFlush = func(tick uint64) error {
		if err := rec.Flush(tick); err != nil {
			return err
		}
		slog.Debug("flushed", "tick", tick, "saved", rec.Saved())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Run(ctx); err != nil {
		fatal("rollout failed", err)
	}

	// ── Summary ───────────────────────────────────────────────────────
	stats := sim.Stats()
	slog.Info("rollout complete",
		"episode", ep.ID,
		"ticks", humanize.Comma(int64(stats.Ticks)),
		"saved", humanize.Comma(int64(rec.Saved())),
		"agent_moved", stats.AgentOutcomes[world.OutcomeName(world.OutcomeMoved)],
		"agent_pushed", stats.AgentOutcomes[world.OutcomeName(world.OutcomePushed)],
		"agent_blocked", stats.AgentOutcomes[world.OutcomeName(world.OutcomeBlocked)],
		"mover_bounced", stats.MoverOutcomes[world.OutcomeName(world.OutcomeBounced)],
	)
	if fi, err := os.Stat(cfg.Run.DBPath); err == nil {
		slog.Info("database size", "bytes", humanize.Bytes(uint64(fi.Size())))
	}

	fmt.Println(sim.Snapshot())
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring non-integer env value", "key", key, "value", v)
		return def
	}
	return n
}
