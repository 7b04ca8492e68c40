package world

// ObservationLen returns the length of the vector Observe produces for a
// range of rng rings: ring r contributes 2r+1 samples.
func ObservationLen(rng int) int {
	if rng < 1 {
		return 0
	}
	return rng * (rng + 2)
}

// Observe samples the visual layer along the frontal arc of each ring
// around at, in the frame of heading. Ring r starts r steps towards
// heading-1, then sweeps r steps towards heading+1 and r steps towards
// heading+2, sampling after every step. Cells outside the grid read as 0.
// Rings are concatenated from the innermost outwards.
func Observe(g *Grid, at Cell, heading Direction, rng int) []float64 {
	cells := ObservedCells(at, heading, rng)
	obs := make([]float64, len(cells))
	for i, c := range cells {
		obs[i] = g.Appearance(c)
	}
	return obs
}

// ObservedCells returns the cells Observe samples, in the same order.
// Cells may lie outside the grid.
func ObservedCells(at Cell, heading Direction, rng int) []Cell {
	cells := make([]Cell, 0, ObservationLen(rng))

	for r := 1; r <= rng; r++ {
		c := Walk(at, heading.Rotate(-1), r)
		cells = append(cells, c)

		for _, leg := range [2]Direction{heading.Rotate(1), heading.Rotate(2)} {
			for i := 0; i < r; i++ {
				c = Neighbor(c, leg)
				cells = append(cells, c)
			}
		}
	}

	return cells
}
