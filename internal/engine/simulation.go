// Simulation owns a world and serialises ticks against it.
package engine

import (
	"sync"

	"github.com/talgya/hexaworld/internal/world"
)

// Simulation wraps a world with a tick counter and outcome statistics.
// All access goes through its methods, which hold one lock per full tick.
type Simulation struct {
	mu       sync.Mutex
	world    *world.World
	lastTick uint64
	stats    SimStats
}

// TickResult is the outcome of one tick.
type TickResult struct {
	Tick uint64 `json:"tick"`
	world.StepResult
}

// SimStats tracks aggregate outcome counts since the simulation started.
type SimStats struct {
	Ticks         uint64         `json:"ticks"`
	AgentOutcomes map[string]int `json:"agent_outcomes"`
	MoverOutcomes map[string]int `json:"mover_outcomes"`
}

// NewSimulation creates a Simulation around an already populated world.
func NewSimulation(w *world.World) *Simulation {
	return &Simulation{
		world: w,
		stats: SimStats{
			AgentOutcomes: make(map[string]int),
			MoverOutcomes: make(map[string]int),
		},
	}
}

// Step applies the agent's action, moves every mover and returns the
// resulting observation.
func (s *Simulation) Step(action world.Action) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.world.Step(action)
	s.lastTick++

	s.stats.Ticks++
	s.stats.AgentOutcomes[world.OutcomeName(res.AgentOutcome)]++
	for o, n := range res.MoverOutcomes {
		s.stats.MoverOutcomes[world.OutcomeName(o)] += n
	}

	return TickResult{Tick: s.lastTick, StepResult: res}
}

// Observe returns the agent's current observation without advancing time.
func (s *Simulation) Observe() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Observe()
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTick
}

// Stats returns a copy of the outcome statistics.
func (s *Simulation) Stats() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := SimStats{
		Ticks:         s.stats.Ticks,
		AgentOutcomes: make(map[string]int, len(s.stats.AgentOutcomes)),
		MoverOutcomes: make(map[string]int, len(s.stats.MoverOutcomes)),
	}
	for k, v := range s.stats.AgentOutcomes {
		out.AgentOutcomes[k] = v
	}
	for k, v := range s.stats.MoverOutcomes {
		out.MoverOutcomes[k] = v
	}
	return out
}

// Snapshot renders the world as text.
func (s *Simulation) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.String()
}

// View calls fn with the world under the tick lock. fn must not retain w or
// call back into the simulation.
func (s *Simulation) View(fn func(w *world.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.world)
}
