// Package postgres archives snapshot records in Postgres as JSONB documents.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"femtrans/internal/persistence/core"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/femtrans?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists records to the snapshots table.
type Store struct {
	db *sql.DB
}

// New opens the database at dsn (defaultDSN when empty), checks the
// connection and ensures the snapshots table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS snapshots (
		model TEXT NOT NULL,
		run_id TEXT NOT NULL,
		finished BOOLEAN NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		document JSONB NOT NULL,
		PRIMARY KEY (model, run_id)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure snapshots table: %w", err)
	}
	return nil
}

func (s *Store) Driver() core.Driver { return core.DriverPostgres }

// Save inserts rec inside a transaction. Postgres normalises the JSONB
// document, so Get returns an equivalent document rather than the same bytes.
func (s *Store) Save(ctx context.Context, rec core.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots(model,run_id,finished,created_at,document) VALUES($1,$2,$3,$4,$5) ON CONFLICT(model,run_id) DO NOTHING`,
		rec.Model, rec.RunID, rec.Finished, rec.CreatedAt.UTC(), rec.Document)
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
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) Get(ctx context.Context, model, runID string) (core.Record, error) {
	recs, err := s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = $1 AND run_id = $2`, model, runID)
	if err != nil {
		return core.Record{}, err
	}
	if len(recs) == 0 {
		return core.Record{}, fmt.Errorf("%s/%s: %w", model, runID, core.ErrNotFound)
	}
	return recs[0], nil
}

func (s *Store) Latest(ctx context.Context, model string) (core.Record, error) {
	recs, err := s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = $1 ORDER BY run_id DESC LIMIT 1`, model)
	if err != nil {
		return core.Record{}, err
	}
	if len(recs) == 0 {
		return core.Record{}, fmt.Errorf("%s: %w", model, core.ErrNotFound)
	}
	return recs[0], nil
}

func (s *Store) List(ctx context.Context, model string) ([]core.Record, error) {
	return s.query(ctx, `SELECT model, run_id, finished, created_at, document FROM snapshots WHERE model = $1 ORDER BY run_id`, model)
}

func (s *Store) Delete(ctx context.Context, model, runID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE model = $1 AND run_id = $2`, model, runID)
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
			created time.Time
		)
		if err := rows.Scan(&rec.Model, &rec.RunID, &rec.Finished, &created, &rec.Document); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		rec.CreatedAt = created.UTC()
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
