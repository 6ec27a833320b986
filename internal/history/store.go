// Package history persists run records to SQLite so past runs can be
// compared after their on-disk caches have been pruned.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"vidmill/internal/report"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases must then be deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordRun stores a completed run and its per-video outcomes in one
// transaction.
func (s *Store) RecordRun(ctx context.Context, runLog report.RunLog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, completed_at, source, model, max_workers, frame_interval, total, successful, failed, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runLog.RunID,
		runLog.StartedAt.UTC().Format(time.RFC3339),
		runLog.CompletedAt.UTC().Format(time.RFC3339),
		runLog.Source,
		runLog.Model,
		runLog.MaxWorkers,
		runLog.FrameInterval,
		runLog.Totals.Total,
		runLog.Totals.Successful,
		runLog.Totals.Failed,
		runLog.Totals.Skipped,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, video := range runLog.Videos {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_videos (run_id, video_id, title, outcome, failed_stage, error, word_count, frame_count, worker_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runLog.RunID,
			video.VideoID,
			video.Title,
			string(video.Outcome),
			video.FailedStage,
			video.Error,
			video.WordCount,
			video.FrameCount,
			video.WorkerID,
		)
		if err != nil {
			return fmt.Errorf("insert run video %s: %w", video.VideoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RunSummary is one row of the run list.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Source      string
	Model       string
	Totals      report.Totals
}

// RecentRuns lists the most recently completed runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, completed_at, source, model, total, successful, failed, skipped
		FROM runs ORDER BY completed_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var summary RunSummary
		var startedAt, completedAt string
		if err := rows.Scan(&summary.RunID, &startedAt, &completedAt, &summary.Source, &summary.Model,
			&summary.Totals.Total, &summary.Totals.Successful, &summary.Totals.Failed, &summary.Totals.Skipped); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		summary.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		summary.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return summaries, nil
}

// VideoRecord is one per-video outcome from a stored run.
type VideoRecord struct {
	VideoID     string
	Title       string
	Outcome     string
	FailedStage string
	Error       string
	WordCount   int
	FrameCount  int
	WorkerID    int
}

// VideosForRun returns the per-video records of one run in insertion order.
func (s *Store) VideosForRun(ctx context.Context, runID string) ([]VideoRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, title, outcome, failed_stage, error, word_count, frame_count, worker_id
		FROM run_videos WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run videos: %w", err)
	}
	defer rows.Close()

	var records []VideoRecord
	for rows.Next() {
		var record VideoRecord
		if err := rows.Scan(&record.VideoID, &record.Title, &record.Outcome, &record.FailedStage,
			&record.Error, &record.WordCount, &record.FrameCount, &record.WorkerID); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate video rows: %w", err)
	}
	return records, nil
}
