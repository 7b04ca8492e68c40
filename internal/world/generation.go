// World generation: border ring, then obstacles, movable blocks, movers and
// finally the agent, each placed on distinct free interior cells.
package world

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexaworld/internal/entropy"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Size             int     // Grid side is Size+1, border included
	Seed             int64   // Random seed (0 = random)
	RatioObstacles   float64 // Obstacles per Size² cells
	RatioMovable     float64 // Movable blocks per Size² cells
	RatioMoving      float64 // Autonomous movers per Size² cells
	ObservationRange int     // Rings sampled around the agent

	// ObstacleClustering blends simplex noise into obstacle placement:
	// 0 scatters obstacles uniformly, 1 follows the noise field and
	// produces wall-like clusters.
	ObstacleClustering float64
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:             20,
		Seed:             0,
		RatioObstacles:   0.05,
		RatioMovable:     0.05,
		RatioMoving:      0.05,
		ObservationRange: 3,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Size:             8,
		Seed:             42,
		RatioObstacles:   0.1,
		RatioMovable:     0.1,
		RatioMoving:      0.05,
		ObservationRange: 2,
	}
}

// Counts returns how many obstacles, movable blocks and movers the config
// asks for.
func (cfg GenConfig) Counts() (obstacles, movable, moving int) {
	area := float64(cfg.Size * cfg.Size)
	return int(cfg.RatioObstacles * area), int(cfg.RatioMovable * area), int(cfg.RatioMoving * area)
}

// Validate checks the config without generating anything.
func (cfg GenConfig) Validate() error {
	if cfg.Size < MinSize {
		return fmt.Errorf("%w: size %d, need at least %d", ErrTooSmall, cfg.Size, MinSize)
	}
	if cfg.ObservationRange < 1 {
		return fmt.Errorf("%w: %d", ErrRange, cfg.ObservationRange)
	}
	for name, v := range map[string]float64{
		"obstacles":  cfg.RatioObstacles,
		"movable":    cfg.RatioMovable,
		"moving":     cfg.RatioMoving,
		"clustering": cfg.ObstacleClustering,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("ratio %s %.3f outside [0, 1]", name, v)
		}
	}

	obstacles, movable, moving := cfg.Counts()
	interior := (cfg.Size - 1) * (cfg.Size - 1)
	if need := obstacles + movable + moving + 1; need > interior {
		return fmt.Errorf("%w: need %d cells, interior has %d", ErrOvercrowded, need, interior)
	}
	return nil
}

// Generate creates a populated world.
func Generate(cfg GenConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := entropy.Resolve(cfg.Seed)
	rng := rand.New(rand.NewSource(seed))

	draw := func(k Kind) float64 {
		return NominalAppearance(k) + rng.NormFloat64()*AppearanceStdDev
	}

	g := NewGrid(cfg.Size)
	for _, c := range g.Cells(KindObstacle) {
		g.Set(c, KindObstacle, draw(KindObstacle))
	}

	nObstacles, nMovable, nMoving := cfg.Counts()

	// Obstacles.
	for _, c := range pickObstacles(g.Cells(KindEmpty), nObstacles, cfg.ObstacleClustering, seed, rng) {
		g.Set(c, KindObstacle, draw(KindObstacle))
	}

	// Remaining placements draw from one shuffled list of free cells.
	free := g.Cells(KindEmpty)
	rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	for _, c := range free[:nMovable] {
		g.Set(c, KindMovable, draw(KindMovable))
	}
	free = free[nMovable:]

	movers := make([]*Entity, 0, nMoving)
	for i, c := range free[:nMoving] {
		m := &Entity{
			ID:        i + 1,
			Position:  c,
			Direction: Direction(rng.Intn(NumDirections)),
			Stir:      rng.Intn(2)*2 - 1,
		}
		g.Set(c, KindMoving, draw(KindMoving))
		movers = append(movers, m)
	}
	free = free[nMoving:]

	agent := &Entity{ID: 0, Position: free[0], Direction: Direction(rng.Intn(NumDirections))}
	g.Set(agent.Position, KindAgent, draw(KindAgent))

	w, err := NewWorld(g, agent, movers, cfg.ObservationRange)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	slog.Debug("world generated",
		"size", cfg.Size,
		"seed", seed,
		"obstacles", nObstacles,
		"movable", nMovable,
		"movers", nMoving,
		"agent", agent.Position,
	)
	return w, nil
}

// pickObstacles chooses n cells from candidates. With clustering 0 the choice
// is uniform; higher values rank cells by simplex noise so obstacles gather
// into ridges.
func pickObstacles(candidates []Cell, n int, clustering float64, seed int64, rng *rand.Rand) []Cell {
	if clustering <= 0 {
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		return candidates[:n]
	}

	noise := opensimplex.NewNormalized(seed)
	type scored struct {
		cell  Cell
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		// Offset → cartesian: odd rows sit half a cell to the right.
		x := float64(c.Col) + 0.5*float64(Mod(c.Row, 2))
		y := float64(c.Row) * math.Sqrt(3.0) / 2.0
		ranked[i] = scored{
			cell:  c,
			score: clustering*octaveNoise(noise, x, y, 3, 0.15, 0.5) + (1-clustering)*rng.Float64(),
		}
	}

	// Sort by score descending; ties keep row-major order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]Cell, n)
	for i := range out {
		out[i] = ranked[i].cell
	}
	return out
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
