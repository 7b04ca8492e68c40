// Package world provides the hex grid, its occupants, movement resolution and
// the agent's observation encoder.
//
// Cells are addressed in offset coordinates (row, col) with odd rows shoved
// half a cell to the right. The axial form (q, r) is derived on demand for
// distance calculations.
package world

// NumDirections is the number of discrete headings on the hex grid.
const NumDirections = 6

// Direction is one of six hex headings. 0 points along +col, increasing
// counter-clockwise.
type Direction int

// Rotate returns the direction turned by delta steps, wrapped into [0, 6).
func (d Direction) Rotate(delta int) Direction {
	return Direction(Mod(int(d)+delta, NumDirections))
}

// Mod returns a mod n in [0, n) for positive n, also for negative a.
func Mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Cell is a position on the grid in offset coordinates.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Neighbor returns the adjacent cell in the given direction. Adjacency
// depends on row parity. No bounds checking is done.
func Neighbor(c Cell, dir Direction) Cell {
	parity := Mod(c.Row, 2)
	switch Direction(Mod(int(dir), NumDirections)) {
	case 0:
		return Cell{Row: c.Row, Col: c.Col + 1}
	case 1:
		return Cell{Row: c.Row - 1, Col: c.Col + parity}
	case 2:
		return Cell{Row: c.Row - 1, Col: c.Col + parity - 1}
	case 3:
		return Cell{Row: c.Row, Col: c.Col - 1}
	case 4:
		return Cell{Row: c.Row + 1, Col: c.Col + parity - 1}
	default:
		return Cell{Row: c.Row + 1, Col: c.Col + parity}
	}
}

// Walk returns the cell reached after steps moves in one direction.
func Walk(c Cell, dir Direction, steps int) Cell {
	for i := 0; i < steps; i++ {
		c = Neighbor(c, dir)
	}
	return c
}

// HexCoord represents a position using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates,
// indexed by Direction.
var HexNeighborDirections = [NumDirections]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Axial converts an offset cell to axial coordinates.
func (c Cell) Axial() HexCoord {
	// row - parity is always even, so the division is exact.
	return HexCoord{Q: c.Col - (c.Row-Mod(c.Row, 2))/2, R: c.Row}
}

// Distance returns the hex distance between two cells.
func Distance(a, b Cell) int {
	ha, hb := a.Axial(), b.Axial()
	dq := abs(ha.Q - hb.Q)
	dr := abs(ha.R - hb.R)
	ds := abs(ha.S() - hb.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
