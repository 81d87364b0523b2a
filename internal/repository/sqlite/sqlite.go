// Package sqlite implements the run-history repository on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"netspawn/internal/repository"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at dbPath.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		sources JSON NOT NULL,
		host_count INTEGER NOT NULL,
		connection_count INTEGER NOT NULL,
		subnet_count INTEGER NOT NULL,
		roles JSON NOT NULL,
		artifact_dir TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := r.db.Exec(schema)
	return err
}

// SaveRun inserts a run record.
func (r *Repository) SaveRun(ctx context.Context, run *repository.RunRecord) error {
	sources, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	roles, err := json.Marshal(run.Roles)
	if err != nil {
		return fmt.Errorf("marshal roles: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, sources, host_count, connection_count, subnet_count, roles, artifact_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), sources,
		run.HostCount, run.ConnectionCount, run.SubnetCount, roles, run.ArtifactDir)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun loads one run by ID.
func (r *Repository) GetRun(ctx context.Context, id string) (*repository.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, sources, host_count, connection_count, subnet_count, roles, artifact_dir
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*repository.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, sources, host_count, connection_count, subnet_count, roles, artifact_dir
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*repository.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*repository.RunRecord, error) {
	var run repository.RunRecord
	var createdAt string
	var sources, roles []byte

	if err := s.Scan(&run.ID, &createdAt, &sources, &run.HostCount,
		&run.ConnectionCount, &run.SubnetCount, &roles, &run.ArtifactDir); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run.CreatedAt = ts

	if err := json.Unmarshal(sources, &run.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	if err := json.Unmarshal(roles, &run.Roles); err != nil {
		return nil, fmt.Errorf("unmarshal roles: %w", err)
	}
	return &run, nil
}
