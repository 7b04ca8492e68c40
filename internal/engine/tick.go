// Package engine provides the tick-based driving loop around a world.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/talgya/hexaworld/internal/world"
)

// Policy chooses the agent's next action.
type Policy interface {
	Sample() world.Action
}

// Engine drives the simulation forward with actions from a policy.
type Engine struct {
	Tick       uint64        // Ticks run by this engine
	Speed      float64       // Multiplier on Interval: 2.0 runs twice as fast
	Interval   time.Duration // Base tick interval, 0 = as fast as possible
	MaxTicks   uint64        // Stop after this many ticks, 0 = unbounded
	FlushEvery uint64        // Call OnFlush every N ticks, 0 = only at stop

	// Callbacks, populated during setup.
	OnTick  func(res TickResult)
	OnFlush func(tick uint64) error

	sim     *Simulation
	policy  Policy
	running atomic.Bool
	paused  atomic.Bool
}

// NewEngine creates an engine with default settings.
func NewEngine(sim *Simulation, policy Policy) *Engine {
	return &Engine{
		Speed:  1.0,
		sim:    sim,
		policy: policy,
	}
}

// Run steps the simulation until ctx is cancelled, Stop is called or
// MaxTicks is reached. OnFlush runs every FlushEvery ticks and once more
// on the way out; its error ends the run.
func (e *Engine) Run(ctx context.Context) error {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick, "max_ticks", e.MaxTicks, "interval", e.Interval)

	var flushed uint64
	flush := func() error {
		if e.OnFlush == nil || flushed == e.Tick {
			return nil
		}
		flushed = e.Tick
		if err := e.OnFlush(e.Tick); err != nil {
			return fmt.Errorf("flush at tick %d: %w", e.Tick, err)
		}
		return nil
	}

	for e.running.Load() {
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if e.paused.Load() {
			// Paused: sleep briefly and check again.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()

		e.step()

		if e.FlushEvery > 0 && e.Tick%e.FlushEvery == 0 {
			if err := flush(); err != nil {
				return err
			}
		}

		// Sleep for the remainder of the tick interval, adjusted for speed.
		if e.Interval > 0 && e.Speed > 0 {
			target := time.Duration(float64(e.Interval) / e.Speed)
			if elapsed := time.Since(start); elapsed < target {
				if !sleep(ctx, target-elapsed) {
					break
				}
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	slog.Info("simulation engine stopped", "tick", e.Tick)
	return nil
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Pause suspends stepping without leaving Run.
func (e *Engine) Pause() {
	e.paused.Store(true)
}

// Resume continues after Pause.
func (e *Engine) Resume() {
	e.paused.Store(false)
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	return e.paused.Load()
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	res := e.sim.Step(e.policy.Sample())
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(res)
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
