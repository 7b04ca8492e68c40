package persistence

import (
	"github.com/talgya/hexaworld/internal/engine"
	"github.com/talgya/hexaworld/internal/world"
)

// Recorder buffers ticks of one episode and writes them in batches.
// Wire Record to Engine.OnTick and Flush to Engine.OnFlush.
type Recorder struct {
	db      *DB
	episode Episode
	buf     []Step
	saved   int
}

// NewRecorder creates a recorder for an episode already registered with
// BeginEpisode.
func NewRecorder(db *DB, ep Episode) *Recorder {
	return &Recorder{db: db, episode: ep}
}

// Record buffers one tick.
func (r *Recorder) Record(res engine.TickResult) {
	r.buf = append(r.buf, Step{
		Tick:        res.Tick,
		Rotation:    res.Action.Rotation,
		Forward:     res.Action.Forward,
		Outcome:     world.OutcomeName(res.AgentOutcome),
		Observation: res.Observation,
	})
}

// Flush writes the buffered steps. The buffer is kept on error so a later
// flush can retry.
func (r *Recorder) Flush(uint64) error {
	if err := r.db.SaveSteps(r.episode.ID, r.buf); err != nil {
		return err
	}
	r.saved += len(r.buf)
	r.buf = r.buf[:0]
	return nil
}

// Episode returns the episode being recorded.
func (r *Recorder) Episode() Episode {
	return r.episode
}

// Saved returns how many steps have been written so far.
func (r *Recorder) Saved() int {
	return r.saved
}

// Pending returns how many steps are buffered but not yet written.
func (r *Recorder) Pending() int {
	return len(r.buf)
}
