package world

import (
	"errors"
	"fmt"
)

var (
	ErrTooSmall     = errors.New("world too small")
	ErrOvercrowded  = errors.New("not enough free cells")
	ErrRange        = errors.New("invalid observation range")
	ErrInconsistent = errors.New("entities inconsistent with grid")
)

// MinSize is the smallest world that still has an interior cell for the agent.
const MinSize = 2

// World holds the grid and the registry of entities that move on it.
// It is not safe for concurrent use.
type World struct {
	Grid   *Grid
	Agent  *Entity
	Movers []*Entity // Resolved in this order every tick
	Range  int       // Observation range in rings
}

// StepResult is what one tick reports back to the driver.
type StepResult struct {
	Action       Action    `json:"action"`
	AgentOutcome Outcome   `json:"agent_outcome"`
	Observation  []float64 `json:"observation"`

	// MoverOutcomes counts the outcomes of autonomous movers this tick.
	MoverOutcomes map[Outcome]int `json:"mover_outcomes"`
}

// NewWorld assembles a world from a populated grid and its entities, and
// checks that the entity registry agrees with the physical layer.
func NewWorld(g *Grid, agent *Entity, movers []*Entity, obsRange int) (*World, error) {
	if obsRange < 1 {
		return nil, fmt.Errorf("%w: %d", ErrRange, obsRange)
	}
	w := &World{Grid: g, Agent: agent, Movers: movers, Range: obsRange}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks the world invariants: border ring made of obstacles,
// every entity sitting on a cell of its own kind, one entity per cell, and
// no stray Moving or Agent cells without an owner.
func (w *World) Validate() error {
	g := w.Grid
	side := g.Side()
	for r := 0; r < side; r++ {
		for col := 0; col < side; col++ {
			c := Cell{Row: r, Col: col}
			if g.IsBorder(c) && g.Kind(c) != KindObstacle {
				return fmt.Errorf("%w: border cell %v is %s", ErrInconsistent, c, KindName(g.Kind(c)))
			}
		}
	}

	if w.Agent == nil {
		return fmt.Errorf("%w: no agent", ErrInconsistent)
	}
	if w.Agent.Autonomous() {
		return fmt.Errorf("%w: agent has stir %d", ErrInconsistent, w.Agent.Stir)
	}

	seen := make(map[Cell]bool, len(w.Movers)+1)
	check := func(e *Entity) error {
		if e.Direction < 0 || e.Direction >= NumDirections {
			return fmt.Errorf("%w: entity %d direction %d", ErrInconsistent, e.ID, e.Direction)
		}
		if seen[e.Position] {
			return fmt.Errorf("%w: two entities at %v", ErrInconsistent, e.Position)
		}
		seen[e.Position] = true
		if got := g.Kind(e.Position); got != e.Kind() {
			return fmt.Errorf("%w: entity %d at %v sits on %s", ErrInconsistent, e.ID, e.Position, KindName(got))
		}
		return nil
	}

	if err := check(w.Agent); err != nil {
		return err
	}
	for _, m := range w.Movers {
		if !m.Autonomous() {
			return fmt.Errorf("%w: mover %d has no stir", ErrInconsistent, m.ID)
		}
		if err := check(m); err != nil {
			return err
		}
	}

	counts := g.Counts()
	if counts[KindAgent] != 1 || counts[KindMoving] != len(w.Movers) {
		return fmt.Errorf("%w: grid has %d agent and %d moving cells for %d movers",
			ErrInconsistent, counts[KindAgent], counts[KindMoving], len(w.Movers))
	}
	return nil
}

// Step advances the world one tick: the agent acts first, then every mover
// in registration order tries to go straight ahead. It returns the
// observation taken after all moves.
func (w *World) Step(action Action) StepResult {
	res := StepResult{
		Action:        action,
		AgentOutcome:  w.Resolve(w.Agent, action.Rotation, action.Forward != 0),
		MoverOutcomes: make(map[Outcome]int),
	}
	for _, m := range w.Movers {
		res.MoverOutcomes[w.Resolve(m, 0, true)]++
	}
	res.Observation = w.Observe()
	return res
}

// Observe encodes the agent's current view.
func (w *World) Observe() []float64 {
	return Observe(w.Grid, w.Agent.Position, w.Agent.Direction, w.Range)
}

// MoverAt returns the mover occupying c, if any.
func (w *World) MoverAt(c Cell) *Entity {
	for _, m := range w.Movers {
		if m.Position == c {
			return m
		}
	}
	return nil
}
