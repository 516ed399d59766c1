// Package store keeps ranking results in a SQLite database so runs can be
// compared without re-reading result files.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ritzau/looprank/pkg/cycles"
	"github.com/ritzau/looprank/pkg/looprank"
	"github.com/ritzau/looprank/pkg/rank"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id       TEXT PRIMARY KEY,
	casename TEXT NOT NULL,
	scenario TEXT NOT NULL,
	method   TEXT NOT NULL,
	boxes    INTEGER NOT NULL,
	created  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS rankings (
	run       TEXT NOT NULL REFERENCES runs(id),
	box       INTEGER NOT NULL,
	direction TEXT NOT NULL,
	position  INTEGER NOT NULL,
	variable  TEXT NOT NULL,
	score     REAL NOT NULL,
	PRIMARY KEY (run, box, direction, position)
);
CREATE TABLE IF NOT EXISTS loops (
	run      TEXT NOT NULL REFERENCES runs(id),
	box      INTEGER NOT NULL,
	position INTEGER NOT NULL,
	members  BLOB NOT NULL,
	score    REAL NOT NULL,
	PRIMARY KEY (run, box, position)
);
`

// Run identifies one ranked series of boxes
type Run struct {
	ID       string
	Case     string
	Scenario string
	Method   string
	Boxes    int
	Created  time.Time
}

// Store is a SQLite backed result store
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Runs are saved from several goroutines; SQLite takes one writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path
func (s *Store) Path() string { return s.path }

// SaveRun stores every ranking and loop list of a series in one transaction
func (s *Store) SaveRun(ctx context.Context, run Run, series *looprank.BoxSeries) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, casename, scenario, method, boxes, created) VALUES(?,?,?,?,?,?)`,
		run.ID, run.Case, run.Scenario, run.Method, len(series.Boxes), run.Created.UnixNano()); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, result := range series.Boxes {
		box := i + 1
		for _, r := range result.Rankings() {
			for pos, e := range r.List {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO rankings(run, box, direction, position, variable, score) VALUES(?,?,?,?,?,?)`,
					run.ID, box, string(r.Direction), pos, e.Variable, e.Score); err != nil {
					return fmt.Errorf("insert %s ranking of box %d: %w", r.Direction, box, err)
				}
			}
		}
		for pos, l := range result.Loops {
			members, err := json.Marshal(l.Variables)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO loops(run, box, position, members, score) VALUES(?,?,?,?,?)`,
				run.ID, box, pos, members, l.Score); err != nil {
				return fmt.Errorf("insert loop of box %d: %w", box, err)
			}
		}
	}

	return tx.Commit()
}

// Runs lists stored runs, oldest first
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, casename, scenario, method, boxes, created FROM runs ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Case, &r.Scenario, &r.Method, &r.Boxes, &created); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Created = time.Unix(0, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Ranking returns a stored ranking list in its original order
func (s *Store) Ranking(ctx context.Context, runID string, box int, direction looprank.Direction) (rank.List, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT variable, score FROM rankings WHERE run = ? AND box = ? AND direction = ? ORDER BY position`,
		runID, box, string(direction))
	if err != nil {
		return nil, fmt.Errorf("select ranking: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list rank.List
	for rows.Next() {
		var e rank.Entry
		if err := rows.Scan(&e.Variable, &e.Score); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s ranking of box %d in run %s", ErrNotFound, direction, box, runID)
	}
	return list, nil
}

// Loops returns the stored feedback loops of a box, highest score first
func (s *Store) Loops(ctx context.Context, runID string, box int) ([]cycles.LoopScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT members, score FROM loops WHERE run = ? AND box = ? ORDER BY position`, runID, box)
	if err != nil {
		return nil, fmt.Errorf("select loops: %w", err)
	}
	defer func() { _ = rows.Close() }()

	loops := make([]cycles.LoopScore, 0)
	for rows.Next() {
		var members []byte
		var l cycles.LoopScore
		if err := rows.Scan(&members, &l.Score); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(members, &l.Variables); err != nil {
			return nil, fmt.Errorf("decode loop members: %w", err)
		}
		loops = append(loops, l)
	}
	return loops, rows.Err()
}
