// Package sampler generates exploration actions as random walks over
// precomputed action sequences, grouped by where they end up.
package sampler

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/talgya/hexaworld/internal/world"
)

// MaxHorizon bounds the sequence length; enumeration costs 6^horizon.
const MaxHorizon = 5

var (
	ErrHorizon     = errors.New("horizon out of range")
	ErrNoEndpoints = errors.New("no reachable endpoints")
)

// Trajectory is a fixed-length sequence of actions.
type Trajectory []world.Action

// Sampler serves actions one at a time from trajectories chosen by first
// picking a uniform endpoint, then a uniform trajectory reaching it. This
// keeps the walk from favouring displacements that many action sequences
// happen to share.
type Sampler struct {
	horizon   int
	groups    map[world.Cell][]Trajectory
	endpoints []world.Cell // Sorted, so draws depend only on the rng
	queue     []world.Action
	rng       *rand.Rand
}

// New enumerates every trajectory of the given horizon and groups them by
// their free-space endpoint.
func New(horizon int, rng *rand.Rand) (*Sampler, error) {
	if horizon < 1 || horizon > MaxHorizon {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrHorizon, horizon, MaxHorizon)
	}

	groups := make(map[world.Cell][]Trajectory)
	for _, traj := range enumerate(horizon) {
		end := Endpoint(traj)
		groups[end] = append(groups[end], traj)
	}
	if len(groups) == 0 {
		return nil, ErrNoEndpoints
	}

	endpoints := make([]world.Cell, 0, len(groups))
	for c := range groups {
		endpoints = append(endpoints, c)
	}
	sort.Slice(endpoints, func(i, j int) bool {
		if endpoints[i].Row != endpoints[j].Row {
			return endpoints[i].Row < endpoints[j].Row
		}
		return endpoints[i].Col < endpoints[j].Col
	})

	return &Sampler{
		horizon:   horizon,
		groups:    groups,
		endpoints: endpoints,
		rng:       rng,
	}, nil
}

// enumerate lists all 6^horizon sequences with the last step varying
// fastest.
func enumerate(horizon int) []Trajectory {
	total := 1
	for i := 0; i < horizon; i++ {
		total *= len(world.Actions)
	}

	out := make([]Trajectory, total)
	for n := range out {
		traj := make(Trajectory, horizon)
		rem := n
		for step := horizon - 1; step >= 0; step-- {
			traj[step] = world.Actions[rem%len(world.Actions)]
			rem /= len(world.Actions)
		}
		out[n] = traj
	}
	return out
}

// Endpoint simulates a trajectory in an empty, unbounded grid from the
// origin facing direction 0 and returns where it ends. The final heading
// is discarded.
func Endpoint(traj Trajectory) world.Cell {
	var pos world.Cell
	var heading world.Direction
	for _, a := range traj {
		heading = heading.Rotate(a.Rotation)
		if a.Forward != 0 {
			pos = world.Neighbor(pos, heading)
		}
	}
	return pos
}

// Sample returns the next action, drawing a new trajectory when the current
// one is used up.
func (s *Sampler) Sample() world.Action {
	if len(s.queue) == 0 {
		end := s.endpoints[s.rng.Intn(len(s.endpoints))]
		options := s.groups[end]
		traj := options[s.rng.Intn(len(options))]
		s.queue = append(s.queue[:0], traj...)
	}

	a := s.queue[0]
	s.queue = s.queue[1:]
	return a
}

// Reset drops whatever remains of the current trajectory.
func (s *Sampler) Reset() {
	s.queue = s.queue[:0]
}

// Horizon returns the trajectory length.
func (s *Sampler) Horizon() int {
	return s.horizon
}

// Endpoints returns the reachable endpoints in sorted order.
func (s *Sampler) Endpoints() []world.Cell {
	out := make([]world.Cell, len(s.endpoints))
	copy(out, s.endpoints)
	return out
}

// Trajectories returns the trajectories ending at c, in enumeration order.
func (s *Sampler) Trajectories(c world.Cell) []Trajectory {
	return s.groups[c]
}

// Pending returns the number of actions left in the current trajectory.
func (s *Sampler) Pending() int {
	return len(s.queue)
}
