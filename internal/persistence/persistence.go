// Package persistence re-exports the snapshot archive abstractions and
// selects a driver.
package persistence

import (
	"context"
	"fmt"

	"femtrans/internal/infra/persistence/memory"
	"femtrans/internal/infra/persistence/postgres"
	"femtrans/internal/infra/persistence/sqlite"
	"femtrans/internal/persistence/core"
)

type (
	// Driver identifies an archive backend.
	Driver = core.Driver
	// Record is one archived translation run.
	Record = core.Record
	// Store archives records by model and run id.
	Store = core.Store
)

const (
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

var (
	ErrExists   = core.ErrExists
	ErrNotFound = core.ErrNotFound
)

// Options select and configure a driver.
type Options struct {
	Driver Driver
	Path   string // sqlite database file
	DSN    string // postgres connection string
}

// Open returns the store named by opts.Driver; memory when empty.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		return sqlite.New(ctx, opts.Path)
	case DriverPostgres:
		return postgres.New(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", opts.Driver)
	}
}
