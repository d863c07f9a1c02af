// Package store persists run history in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/alxjhc/sf-airbnb/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	created_at   TEXT NOT NULL,
	dataset      TEXT NOT NULL,
	rows         INTEGER NOT NULL,
	seed         INTEGER NOT NULL,
	folds        INTEGER NOT NULL,
	metric       TEXT NOT NULL,
	best_family  TEXT NOT NULL,
	best_params  TEXT NOT NULL,
	final_metric REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS run_scores (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	rank    INTEGER NOT NULL,
	family  TEXT NOT NULL,
	params  TEXT NOT NULL,
	mean    REAL NOT NULL,
	std_err REAL NOT NULL,
	folds   INTEGER NOT NULL,
	PRIMARY KEY (run_id, rank)
);
`

// Store is the SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the run database. An empty path defaults to
// ~/.sf-airbnb/runs.db, creating the directory if necessary.
func Open(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".sf-airbnb")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir data dir: %w", err)
		}
		path = filepath.Join(dir, "runs.db")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// SaveRun records a report and its leaderboard.
func (s *Store) SaveRun(r *report.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, dataset, rows, seed, folds, metric, best_family, best_params, final_metric)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.CreatedAt.Format(time.RFC3339), r.Dataset, r.Rows, r.Seed, r.Folds,
		r.Metric, r.Best.Family, r.Best.Params, r.FinalMetric,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, e := range r.Leaderboard {
		_, err = tx.Exec(
			`INSERT INTO run_scores (run_id, rank, family, params, mean, std_err, folds)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, i+1, e.Family, e.Params, e.Mean, e.StdErr, e.Folds,
		)
		if err != nil {
			return fmt.Errorf("insert score: %w", err)
		}
	}
	return tx.Commit()
}

// RunSummary is one row of `runs` listing.
type RunSummary struct {
	ID          string
	CreatedAt   time.Time
	Dataset     string
	Rows        int
	Seed        int64
	Metric      string
	BestFamily  string
	BestParams  string
	FinalMetric float64
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, created_at, dataset, rows, seed, metric, best_family, best_params, final_metric
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Dataset, &r.Rows, &r.Seed, &r.Metric, &r.BestFamily, &r.BestParams, &r.FinalMetric); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
