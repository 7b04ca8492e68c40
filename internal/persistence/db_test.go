package persistence

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexaworld/internal/engine"
	"github.com/talgya/hexaworld/internal/sampler"
	"github.com/talgya/hexaworld/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "rollouts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEpisodeRoundTrip(t *testing.T) {
	db := openTestDB(t)

	ep, err := db.BeginEpisode(Episode{Seed: 42, Size: 8, ObservationRange: 2, Horizon: 3, ConfigJSON: `{"size":8}`})
	require.NoError(t, err)
	require.NotEmpty(t, ep.ID)
	assert.NotZero(t, ep.CreatedAt)

	steps := []Step{
		{Tick: 1, Rotation: -1, Forward: 1, Outcome: "moved", Observation: []float64{0, 1.1, 0.4}},
		{Tick: 2, Rotation: 0, Forward: 0, Outcome: "rotated", Observation: []float64{0.5, 0, 0}},
	}
	require.NoError(t, db.SaveSteps(ep.ID, steps))
	require.NoError(t, db.SaveSteps(ep.ID, nil))

	got, err := db.LoadSteps(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, steps, got)

	n, err := db.StepCount(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	eps, err := db.Episodes()
	require.NoError(t, err)
	require.Len(t, eps, 1)
	assert.Equal(t, ep, eps[0])
}

func TestSaveStepsRejectsDuplicateTick(t *testing.T) {
	db := openTestDB(t)
	ep, err := db.BeginEpisode(Episode{Size: 4, ObservationRange: 1, Horizon: 1, ConfigJSON: "{}"})
	require.NoError(t, err)

	step := Step{Tick: 1, Outcome: "blocked", Observation: []float64{0.5}}
	require.NoError(t, db.SaveSteps(ep.ID, []Step{step}))

	// The failed batch rolls back entirely.
	err = db.SaveSteps(ep.ID, []Step{{Tick: 2, Outcome: "moved"}, step})
	assert.Error(t, err)

	n, err := db.StepCount(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEpisodesAreSeparate(t *testing.T) {
	db := openTestDB(t)
	a, err := db.BeginEpisode(Episode{Seed: 1, ConfigJSON: "{}"})
	require.NoError(t, err)
	b, err := db.BeginEpisode(Episode{Seed: 2, ConfigJSON: "{}"})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	require.NoError(t, db.SaveSteps(a.ID, []Step{{Tick: 1, Outcome: "moved", Observation: []float64{1}}}))

	n, err := db.StepCount(b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	eps, err := db.Episodes()
	require.NoError(t, err)
	assert.Len(t, eps, 2)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollouts.db")
	db, err := Open(path)
	require.NoError(t, err)
	ep, err := db.BeginEpisode(Episode{Seed: 9, ConfigJSON: "{}"})
	require.NoError(t, err)
	require.NoError(t, db.SaveSteps(ep.ID, []Step{{Tick: 1, Outcome: "rotated", Observation: []float64{0}}}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	n, err := db.StepCount(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorderWithEngine(t *testing.T) {
	db := openTestDB(t)

	cfg := world.SmallTestConfig()
	w, err := world.Generate(cfg)
	require.NoError(t, err)
	policy, err := sampler.New(2, rand.New(rand.NewSource(cfg.Seed+1)))
	require.NoError(t, err)

	ep, err := db.BeginEpisode(Episode{Seed: cfg.Seed, Size: cfg.Size, ObservationRange: cfg.ObservationRange, Horizon: 2, ConfigJSON: "{}"})
	require.NoError(t, err)
	rec := NewRecorder(db, ep)

	var produced []engine.TickResult
	e := engine.NewEngine(engine.NewSimulation(w), policy)
	e.MaxTicks = 7
	e.FlushEvery = 3
	e.OnTick = func(res engine.TickResult) {
		produced = append(produced, res)
		rec.Record(res)
	}
	e.OnFlush = rec.Flush

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 7, rec.Saved())
	assert.Zero(t, rec.Pending())

	steps, err := db.LoadSteps(ep.ID)
	require.NoError(t, err)
	require.Len(t, steps, len(produced))
	for i, res := range produced {
		assert.Equal(t, uint64(i+1), steps[i].Tick)
		assert.Equal(t, res.Action.Rotation, steps[i].Rotation)
		assert.Equal(t, res.Action.Forward, steps[i].Forward)
		assert.Equal(t, world.OutcomeName(res.AgentOutcome), steps[i].Outcome)
		assert.Equal(t, res.Observation, steps[i].Observation)
		assert.Len(t, steps[i].Observation, world.ObservationLen(cfg.ObservationRange))
	}
}

func TestRecorderKeepsBufferOnError(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "rollouts.db"))
	require.NoError(t, err)
	ep, err := db.BeginEpisode(Episode{ConfigJSON: "{}"})
	require.NoError(t, err)

	rec := NewRecorder(db, ep)
	rec.Record(engine.TickResult{Tick: 1, StepResult: world.StepResult{Observation: []float64{0.5}}})
	require.NoError(t, db.Close())

	assert.Error(t, rec.Flush(1))
	assert.Equal(t, 1, rec.Pending())
	assert.Zero(t, rec.Saved())
	assert.Equal(t, ep, rec.Episode())
}
