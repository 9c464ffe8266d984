// Package ledger keeps a durable history of pipeline runs across restarts:
// what topic was picked, how the run ended, and where the video went.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	completed_at TEXT,
	topic        TEXT NOT NULL,
	state        TEXT NOT NULL,
	video_path   TEXT,
	youtube_id   TEXT,
	error        TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded pipeline run
type Run struct {
	RunID       string `json:"run_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Topic       string `json:"topic"`
	State       string `json:"state"`
	VideoPath   string `json:"video_path,omitempty"`
	YouTubeID   string `json:"youtube_id,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Store is a sqlite-backed run ledger
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error { return s.db.Close() }

// StartRun records a new run in the "running" state
func (s *Store) StartRun(ctx context.Context, runID, topic string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, topic, state) VALUES (?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), topic, "running",
	)
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// FinishRun records a run's terminal state
func (s *Store) FinishRun(ctx context.Context, runID, state, videoPath, youtubeID, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET completed_at = ?, state = ?, video_path = ?, youtube_id = ?, error = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339), state, videoPath, youtubeID, errMsg, runID,
	)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, COALESCE(completed_at, ''), topic, state,
		        COALESCE(video_path, ''), COALESCE(youtube_id, ''), COALESCE(error, '')
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.CompletedAt, &r.Topic, &r.State,
			&r.VideoPath, &r.YouTubeID, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
