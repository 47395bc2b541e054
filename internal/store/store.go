// Package store persists analysis runs in a local SQLite database so batch
// jobs can be reviewed after the fact.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"stem-strain/internal/stats"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("store: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	image_path TEXT NOT NULL,
	separation REAL NOT NULL,
	atom_count_a INTEGER NOT NULL,
	atom_count_b INTEGER NOT NULL,
	summary_json TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is one persisted analysis.
type Run struct {
	ID         string
	ImagePath  string
	Separation float64
	AtomCountA int
	AtomCountB int
	Summary    *stats.Summary
	CreatedAt  time.Time
}

// Store wraps the runs database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists a run and returns its generated id.
func (s *Store) SaveRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, image_path, separation, atom_count_a, atom_count_b, summary_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ImagePath, r.Separation, r.AtomCountA, r.AtomCountB, string(summary), r.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.ID, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, image_path, separation, atom_count_a, atom_count_b, summary_json, created_at
		 FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return r, err
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, image_path, separation, atom_count_a, atom_count_b, summary_json, created_at
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var r Run
	var summary string
	err := row.Scan(&r.ID, &r.ImagePath, &r.Separation, &r.AtomCountA, &r.AtomCountB, &summary, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if summary != "" && summary != "null" {
		r.Summary = &stats.Summary{}
		if err := json.Unmarshal([]byte(summary), r.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary for run %s: %w", r.ID, err)
		}
	}
	return &r, nil
}
