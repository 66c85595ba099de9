package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the render history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logx.Infof("recorder: sqlite opened %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_jobs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id           TEXT NOT NULL,
			title            TEXT,
			target_date      TEXT,
			category         TEXT,
			status           TEXT NOT NULL,
			kind             TEXT,
			stage            TEXT,
			message          TEXT,
			output_path      TEXT,
			record_count     INTEGER,
			duration_seconds REAL,
			started_at       INTEGER NOT NULL,
			finished_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_render_jobs_finished ON render_jobs(finished_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordJob(ctx context.Context, rec *JobRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO render_jobs (
		job_id, title, target_date, category, status, kind, stage, message,
		output_path, record_count, duration_seconds, started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID, rec.Title, rec.TargetDate, rec.Category, rec.Status, rec.Kind, rec.Stage, rec.Message,
		rec.OutputPath, rec.RecordCount, rec.DurationSeconds,
		rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert render job: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Recent(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
		job_id, title, target_date, category, status, kind, stage, message,
		output_path, record_count, duration_seconds, started_at, finished_at
	FROM render_jobs ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query render jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRecord
	for rows.Next() {
		var rec JobRecord
		var started, finished int64
		if err := rows.Scan(
			&rec.JobID, &rec.Title, &rec.TargetDate, &rec.Category, &rec.Status, &rec.Kind, &rec.Stage, &rec.Message,
			&rec.OutputPath, &rec.RecordCount, &rec.DurationSeconds, &started, &finished,
		); err != nil {
			return nil, fmt.Errorf("scan render job: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
