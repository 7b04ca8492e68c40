package world

import "fmt"

// Kind is the physical occupant of a cell.
type Kind uint8

const (
	KindEmpty    Kind = iota // Free floor
	KindObstacle             // Static wall, also the border ring
	KindMovable              // Passive block, can be pushed
	KindMoving               // Autonomous mover
	KindAgent                // The controlled agent
)

// AppearanceStdDev is the noise applied around each kind's nominal appearance.
const AppearanceStdDev = 0.1

// NominalAppearance returns the mean visual value for a kind.
func NominalAppearance(k Kind) float64 {
	switch k {
	case KindObstacle:
		return 0.5
	case KindMovable:
		return 1
	case KindMoving, KindAgent:
		return 1.5
	default:
		return 0
	}
}

// KindName returns a human-readable name for a kind.
func KindName(k Kind) string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindObstacle:
		return "Obstacle"
	case KindMovable:
		return "Movable"
	case KindMoving:
		return "Moving"
	case KindAgent:
		return "Agent"
	default:
		return "Unknown"
	}
}

// Grid holds the physical and visual layers of the world. Both layers share
// one row-major index and are only ever swapped together.
type Grid struct {
	size     int
	physical []Kind
	visual   []float64
}

// NewGrid creates an empty grid for a world of the given size. The border
// ring sits at index 0 and index size, so rows and cols span [0, size].
// The border is filled with obstacles of nominal appearance; callers that
// want noisy borders overwrite them with Set.
func NewGrid(size int) *Grid {
	side := size + 1
	g := &Grid{
		size:     size,
		physical: make([]Kind, side*side),
		visual:   make([]float64, side*side),
	}
	for i := 0; i < side; i++ {
		for _, c := range []Cell{{0, i}, {size, i}, {i, 0}, {i, size}} {
			g.Set(c, KindObstacle, NominalAppearance(KindObstacle))
		}
	}
	return g
}

// Size returns the world size the grid was created for.
func (g *Grid) Size() int {
	return g.size
}

// Side returns the number of cells along each axis.
func (g *Grid) Side() int {
	return g.size + 1
}

// InBounds returns true if both coordinates are within [0, side).
func (g *Grid) InBounds(c Cell) bool {
	side := g.Side()
	return c.Row >= 0 && c.Row < side && c.Col >= 0 && c.Col < side
}

// IsBorder reports whether the cell lies on the outer obstacle ring.
func (g *Grid) IsBorder(c Cell) bool {
	return c.Row == 0 || c.Col == 0 || c.Row == g.size || c.Col == g.size
}

func (g *Grid) index(c Cell) int {
	return c.Row*g.Side() + c.Col
}

// Kind returns the physical occupant of a cell. Out-of-bounds cells read as
// obstacles.
func (g *Grid) Kind(c Cell) Kind {
	if !g.InBounds(c) {
		return KindObstacle
	}
	return g.physical[g.index(c)]
}

// Appearance returns the visual value of a cell, or 0 outside the grid.
func (g *Grid) Appearance(c Cell) float64 {
	if !g.InBounds(c) {
		return 0
	}
	return g.visual[g.index(c)]
}

// Set writes both layers of a cell. Out-of-bounds writes are ignored.
func (g *Grid) Set(c Cell, k Kind, appearance float64) {
	if !g.InBounds(c) {
		return
	}
	i := g.index(c)
	g.physical[i] = k
	g.visual[i] = appearance
}

// Swap exchanges the contents of two cells in both layers.
func (g *Grid) Swap(a, b Cell) {
	i, j := g.index(a), g.index(b)
	g.physical[i], g.physical[j] = g.physical[j], g.physical[i]
	g.visual[i], g.visual[j] = g.visual[j], g.visual[i]
}

// Lookup returns the neighbor of c in dir together with its occupant.
// Neighbors outside the grid report KindObstacle.
func (g *Grid) Lookup(c Cell, dir Direction) (Cell, Kind) {
	next := Neighbor(c, dir)
	return next, g.Kind(next)
}

// Cells returns every cell holding the given kind, in row-major order.
func (g *Grid) Cells(k Kind) []Cell {
	var out []Cell
	side := g.Side()
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			if g.physical[r*side+c] == k {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}

// Counts returns a summary of the kind distribution.
func (g *Grid) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, k := range g.physical {
		counts[k]++
	}
	return counts
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{
		size:     g.size,
		physical: make([]Kind, len(g.physical)),
		visual:   make([]float64, len(g.visual)),
	}
	copy(out.physical, g.physical)
	copy(out.visual, g.visual)
	return out
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d, side=%d)", g.size, g.Side())
}
