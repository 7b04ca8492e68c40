package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationLen(t *testing.T) {
	assert.Equal(t, 0, ObservationLen(0))
	assert.Equal(t, 3, ObservationLen(1))
	assert.Equal(t, 8, ObservationLen(2))
	assert.Equal(t, 15, ObservationLen(3))
	assert.Equal(t, 24, ObservationLen(4))
}

// labelledGrid gives every interior cell a distinct appearance so samples
// can be traced back to cells.
func labelledGrid(size int) *Grid {
	g := NewGrid(size)
	for r := 1; r < size; r++ {
		for c := 1; c < size; c++ {
			g.Set(Cell{r, c}, KindEmpty, float64(r*100+c))
		}
	}
	return g
}

func TestObserveFirstRingFacesHeading(t *testing.T) {
	g := labelledGrid(10)
	at := Cell{Row: 5, Col: 5}

	for h := Direction(0); h < NumDirections; h++ {
		obs := Observe(g, at, h, 1)
		want := []float64{
			g.Appearance(Neighbor(at, h.Rotate(-1))),
			g.Appearance(Neighbor(at, h)),
			g.Appearance(Neighbor(at, h.Rotate(1))),
		}
		assert.Equal(t, want, obs, "heading %d", h)
	}
}

func TestObservedCellsHeadingZero(t *testing.T) {
	got := ObservedCells(Cell{2, 2}, 0, 1)
	assert.Equal(t, []Cell{{3, 2}, {2, 3}, {1, 2}}, got)
}

func TestObservedCellsLieOnRings(t *testing.T) {
	at := Cell{Row: 7, Col: 6}
	for h := Direction(0); h < NumDirections; h++ {
		cells := ObservedCells(at, h, 4)
		require.Len(t, cells, ObservationLen(4))

		i := 0
		for r := 1; r <= 4; r++ {
			ring := make(map[Cell]bool)
			for k := 0; k < 2*r+1; k++ {
				c := cells[i]
				i++
				assert.Equal(t, r, Distance(at, c), "heading %d ring %d cell %v", h, r, c)
				ring[c] = true
			}
			assert.Len(t, ring, 2*r+1, "ring %d repeats a cell", r)
		}
	}
}

func TestObserveOutOfBoundsReadsZero(t *testing.T) {
	g := labelledGrid(6)
	at := Cell{Row: 1, Col: 1}

	for h := Direction(0); h < NumDirections; h++ {
		cells := ObservedCells(at, h, 3)
		obs := Observe(g, at, h, 3)
		require.Len(t, obs, len(cells))
		for i, c := range cells {
			if g.InBounds(c) {
				assert.Equal(t, g.Appearance(c), obs[i])
			} else {
				assert.Zero(t, obs[i], "cell %v", c)
			}
		}
	}
}

func TestObservationLengthIndependentOfContent(t *testing.T) {
	for _, seed := range []int64{3, 5, 8} {
		cfg := SmallTestConfig()
		cfg.Seed = seed
		cfg.ObservationRange = 3
		w, err := Generate(cfg)
		require.NoError(t, err)
		assert.Len(t, w.Observe(), ObservationLen(3))
	}
}

func TestObserveRotatesWithAgent(t *testing.T) {
	w := mustParse(t, `
X  X  X  X  X  X
 X  .  .  .  .  X
X  .  a0 O  .  X
 X  .  .  .  .  X
X  .  .  .  .  X
 X  X  X  X  X  X
`)
	// Facing the block: it is the middle sample of ring 1.
	obs := w.Observe()
	assert.Equal(t, NominalAppearance(KindMovable), obs[1])

	// Turning left moves it to the first sample.
	w.Step(Action{Rotation: 1})
	obs = w.Observe()
	assert.Equal(t, NominalAppearance(KindMovable), obs[0])
	assert.Equal(t, NominalAppearance(KindEmpty), obs[1])
}
