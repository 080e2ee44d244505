// Package core defines the snapshot archive abstractions shared by the
// persistence drivers.
package core

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverMemory   Driver = "memory"   // process memory (tests, dry runs)
	DriverSQLite   Driver = "sqlite"   // embedded file database
	DriverPostgres Driver = "postgres" // shared database
)

var (
	// ErrExists is returned when a record for the same model and run is saved twice.
	ErrExists = errors.New("snapshot already archived")
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("snapshot not found")
)

// Record is one archived translation run. Document holds the exported JSON
// snapshot verbatim.
type Record struct {
	Model     string    `json:"model"`
	RunID     string    `json:"run_id"`
	Finished  bool      `json:"finished"`
	CreatedAt time.Time `json:"created_at"`
	Document  []byte    `json:"document"`
}

// Store archives snapshot records keyed by model name and run id. Records of
// a model are listed in run id order; run ids are time ordered.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, model, runID string) (Record, error)
	Latest(ctx context.Context, model string) (Record, error)
	List(ctx context.Context, model string) ([]Record, error)
	Delete(ctx context.Context, model, runID string) (bool, error)
	Close() error
	Driver() Driver
}

// Validate checks the keys a record must carry.
func (r Record) Validate() error {
	switch {
	case r.Model == "":
		return errors.New("record model name required")
	case r.RunID == "":
		return errors.New("record run id required")
	case len(r.Document) == 0:
		return errors.New("record document required")
	}
	return nil
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	r.Document = append([]byte(nil), r.Document...)
	return r
}
