package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCounts(t *testing.T) {
	cfg := SmallTestConfig()
	w, err := Generate(cfg)
	require.NoError(t, err)

	obstacles, movable, moving := cfg.Counts()
	counts := w.Grid.Counts()
	border := 4 * cfg.Size

	assert.Equal(t, border+obstacles, counts[KindObstacle])
	assert.Equal(t, movable, counts[KindMovable])
	assert.Equal(t, moving, counts[KindMoving])
	assert.Equal(t, 1, counts[KindAgent])
	assert.Len(t, w.Movers, moving)
	assert.Equal(t, cfg.Size, w.Grid.Size())
	assert.Equal(t, cfg.Size+1, w.Grid.Side())
	require.NoError(t, w.Validate())

	for _, m := range w.Movers {
		assert.Contains(t, []int{-1, 1}, m.Stir)
	}
	assert.Zero(t, w.Agent.Stir)
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a, err := Generate(cfg)
	require.NoError(t, err)
	b, err := Generate(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
	assert.Equal(t, a.Grid.visual, b.Grid.visual)
	assert.Equal(t, a.Observe(), b.Observe())

	cfg.Seed++
	c, err := Generate(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a.Grid.visual, c.Grid.visual)
}

func TestGenerateAppearanceNoise(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 5
	w, err := Generate(cfg)
	require.NoError(t, err)

	side := w.Grid.Side()
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			cell := Cell{Row: r, Col: c}
			kind := w.Grid.Kind(cell)
			v := w.Grid.Appearance(cell)
			if kind == KindEmpty {
				assert.Zero(t, v)
				continue
			}
			// Six standard deviations.
			assert.Less(t, math.Abs(v-NominalAppearance(kind)), 6*AppearanceStdDev, "cell %v", cell)
		}
	}
}

func TestGenerateClustered(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.ObstacleClustering = 1
	cfg.RatioObstacles = 0.2
	w, err := Generate(cfg)
	require.NoError(t, err)

	obstacles, _, _ := cfg.Counts()
	assert.Equal(t, 4*cfg.Size+obstacles, w.Grid.Counts()[KindObstacle])
	require.NoError(t, w.Validate())
}

func TestGenConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenConfig)
		want   error
	}{
		{"too small", func(c *GenConfig) { c.Size = 1 }, ErrTooSmall},
		{"overcrowded", func(c *GenConfig) {
			c.RatioObstacles, c.RatioMovable, c.RatioMoving = 0.5, 0.5, 0.5
		}, ErrOvercrowded},
		{"no room for agent", func(c *GenConfig) {
			c.Size = 2
			c.RatioObstacles = 0.25
		}, ErrOvercrowded},
		{"zero range", func(c *GenConfig) { c.ObservationRange = 0 }, ErrRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SmallTestConfig()
			tt.mutate(&cfg)
			_, err := Generate(cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	cfg := SmallTestConfig()
	cfg.RatioMovable = 1.5
	assert.Error(t, cfg.Validate())
}

func TestGenerateMinimalWorld(t *testing.T) {
	w, err := Generate(GenConfig{Size: 2, Seed: 1, ObservationRange: 1})
	require.NoError(t, err)
	assert.Equal(t, Cell{1, 1}, w.Agent.Position)

	// Nowhere to go: every forward step is blocked.
	res := w.Step(Action{Forward: 1})
	assert.Equal(t, OutcomeBlocked, res.AgentOutcome)
}
