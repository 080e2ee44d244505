// Package sqlite archives snapshot records in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"femtrans/internal/persistence/core"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPath = "femtrans.db"

// Store persists records to a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating when needed) the database at path.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS snapshots (
		model TEXT NOT NULL,
		run_id TEXT NOT NULL,
		finished INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		document BLOB NOT NULL,
		PRIMARY KEY (model, run_id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

// Save inserts rec; an existing (model, run id) row is left untouched and
// reported as core.ErrExists.
func (s *Store) Save(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots(model,run_id,finished,created_at,document) VALUES(?,?,?,?,?) ON CONFLICT(model,run_id) DO NOTHING`,
		rec.Model, rec.RunID, rec.Finished, rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.Document)
	if err != nil {
		return fmt.Errorf("insert snapshot %s/%s: %w", rec.Model, rec.RunID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s/%s: %w", rec.Model, rec.RunID, core.ErrExists)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, model, runID string) (core.Record, error) {
	recs, err := s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = ? AND run_id = ?`, model, runID)
	if err != nil {
		return core.Record{}, err
	}
	if len(recs) == 0 {
		return core.Record{}, fmt.Errorf("%s/%s: %w", model, runID, core.ErrNotFound)
	}
	return recs[0], nil
}

func (s *Store) Latest(ctx context.Context, model string) (core.Record, error) {
	recs, err := s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = ? ORDER BY run_id DESC LIMIT 1`, model)
	if err != nil {
		return core.Record{}, err
	}
	if len(recs) == 0 {
		return core.Record{}, fmt.Errorf("%s: %w", model, core.ErrNotFound)
	}
	return recs[0], nil
}

func (s *Store) List(ctx context.Context, model string) ([]core.Record, error) {
	return s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = ? ORDER BY run_id`, model)
}

func (s *Store) Delete(ctx context.Context, model, runID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE model = ? AND run_id = ?`, model, runID)
	if err != nil {
		return false, fmt.Errorf("delete snapshot %s/%s: %w", model, runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []core.Record{}
	for rows.Next() {
		var (
			rec     core.Record
			created string
		)
		if err := rows.Scan(&rec.Model, &rec.RunID, &rec.Finished, &created, &rec.Document); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("snapshot %s/%s created_at: %w", rec.Model, rec.RunID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
