// Package blob re-exports the object store abstractions and selects a driver.
// It is the only package allowed to import the infra blob implementations.
package blob

import (
	"context"
	"fmt"

	"femtrans/internal/blob/core"
	"femtrans/internal/infra/blob/fs"
	"femtrans/internal/infra/blob/memory"
	"femtrans/internal/infra/blob/s3"
)

type (
	Driver     = core.Driver
	Object     = core.Object
	PutOptions = core.PutOptions
	Store      = core.Store
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

var (
	ErrExists     = core.ErrExists
	ErrNotFound   = core.ErrNotFound
	ErrInvalidKey = core.ErrInvalidKey
)

// S3Options configure the s3 driver. Credentials come from the AWS default
// chain unless AccessKeyID is set.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Options select and configure a driver.
type Options struct {
	Driver Driver
	Root   string // fs root directory
	S3     S3Options
}

// Open returns the store named by opts.Driver; memory when empty.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return memory.New(), nil
	case DriverFilesystem:
		return fs.New(opts.Root)
	case DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:          opts.S3.Bucket,
			Region:          opts.S3.Region,
			Endpoint:        opts.S3.Endpoint,
			PathStyle:       opts.S3.PathStyle,
			AccessKeyID:     opts.S3.AccessKeyID,
			SecretAccessKey: opts.S3.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", opts.Driver)
	}
}
