// Package persistence provides SQLite storage for generated rollouts: the
// actions taken and the observations they produced. World state itself is
// never stored.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for rollout storage.
type DB struct {
	conn *sqlx.DB
}

// Episode describes one recorded run.
type Episode struct {
	ID               string `db:"id" json:"id"`
	CreatedAt        int64  `db:"created_at" json:"created_at"` // Unix seconds
	Seed             int64  `db:"seed" json:"seed"`
	Size             int    `db:"size" json:"size"`
	ObservationRange int    `db:"observation_range" json:"observation_range"`
	Horizon          int    `db:"horizon" json:"horizon"`
	ConfigJSON       string `db:"config_json" json:"config_json"`
}

// Step is one recorded tick.
type Step struct {
	Tick        uint64    `json:"tick"`
	Rotation    int       `json:"rotation"`
	Forward     int       `json:"forward"`
	Outcome     string    `json:"outcome"`
	Observation []float64 `json:"observation"`
}

type stepRow struct {
	Tick        uint64 `db:"tick"`
	Rotation    int    `db:"rotation"`
	Forward     int    `db:"forward"`
	Outcome     string `db:"outcome"`
	Observation []byte `db:"observation"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS episodes (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		size INTEGER NOT NULL,
		observation_range INTEGER NOT NULL,
		horizon INTEGER NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		episode_id TEXT NOT NULL REFERENCES episodes(id),
		tick INTEGER NOT NULL,
		rotation INTEGER NOT NULL,
		forward INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		observation BLOB NOT NULL,
		PRIMARY KEY (episode_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_episodes_created ON episodes(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginEpisode registers a new episode and returns it with its ID and
// creation time filled in.
func (db *DB) BeginEpisode(ep Episode) (Episode, error) {
	ep.ID = uuid.NewString()
	ep.CreatedAt = time.Now().Unix()

	_, err := db.conn.NamedExec(`INSERT INTO episodes
		(id, created_at, seed, size, observation_range, horizon, config_json)
		VALUES (:id, :created_at, :seed, :size, :observation_range, :horizon, :config_json)`, ep)
	if err != nil {
		return Episode{}, fmt.Errorf("insert episode: %w", err)
	}
	return ep, nil
}

// SaveSteps appends a batch of steps to an episode in one transaction.
func (db *DB) SaveSteps(episodeID string, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO steps
		(episode_id, tick, rotation, forward, outcome, observation)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range steps {
		_, err := stmt.Exec(episodeID, s.Tick, s.Rotation, s.Forward, s.Outcome, EncodeObservation(s.Observation))
		if err != nil {
			return fmt.Errorf("insert step %d: %w", s.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("steps saved", "episode", episodeID, "count", len(steps), "last_tick", steps[len(steps)-1].Tick)
	return nil
}

// LoadSteps returns every step of an episode in tick order.
func (db *DB) LoadSteps(episodeID string) ([]Step, error) {
	var rows []stepRow
	err := db.conn.Select(&rows,
		"SELECT tick, rotation, forward, outcome, observation FROM steps WHERE episode_id = ? ORDER BY tick",
		episodeID,
	)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, len(rows))
	for i, r := range rows {
		obs, err := DecodeObservation(r.Observation)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", r.Tick, err)
		}
		steps[i] = Step{
			Tick:        r.Tick,
			Rotation:    r.Rotation,
			Forward:     r.Forward,
			Outcome:     r.Outcome,
			Observation: obs,
		}
	}
	return steps, nil
}

// StepCount returns how many steps an episode has recorded.
func (db *DB) StepCount(episodeID string) (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM steps WHERE episode_id = ?", episodeID)
	return n, err
}

// Episodes returns all episodes, newest first.
func (db *DB) Episodes() ([]Episode, error) {
	var eps []Episode
	err := db.conn.Select(&eps,
		"SELECT id, created_at, seed, size, observation_range, horizon, config_json FROM episodes ORDER BY created_at DESC, id",
	)
	return eps, err
}
