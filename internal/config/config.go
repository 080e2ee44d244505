// Package config loads translation settings from YAML and the environment.
//
// Environment variables take precedence over the file:
//
//	FEMTRANS_LOG_LEVEL, FEMTRANS_LOG_FORMAT
//	FEMTRANS_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	FEMTRANS_SQLITE_PATH, FEMTRANS_POSTGRES_DSN
//	FEMTRANS_BLOB_DRIVER: fs|s3|memory (default memory)
//	FEMTRANS_BLOB_FS_ROOT
//	FEMTRANS_BLOB_S3_BUCKET, FEMTRANS_BLOB_S3_REGION, FEMTRANS_BLOB_S3_ENDPOINT, FEMTRANS_BLOB_S3_PATH_STYLE
//	FEMTRANS_METRICS_FILE
//	FEMTRANS_SPLIT_DIRECT_MATRICES, FEMTRANS_SIZE_DIRECT_MATRICES, FEMTRANS_PARTITION_MODEL
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"femtrans/internal/pipeline"

	"gopkg.in/yaml.v3"
)

// Config is the full set of knobs for one translation run.
type Config struct {
	Pipeline pipeline.Config `yaml:"pipeline"`
	Log      Log             `yaml:"log"`
	Storage  Storage         `yaml:"storage"`
	Blob     Blob            `yaml:"blob"`
	Metrics  Metrics         `yaml:"metrics"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage selects the snapshot archive store.
type Storage struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

// Blob selects where exported documents are archived.
type Blob struct {
	Driver string `yaml:"driver"`
	Root   string `yaml:"root"`
	S3     S3     `yaml:"s3"`
}

type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type Metrics struct {
	// File receives the Prometheus text exposition after a run. Empty disables it.
	File string `yaml:"file"`
}

var (
	storageDrivers = []string{"memory", "sqlite", "postgres"}
	blobDrivers    = []string{"memory", "fs", "s3"}
	logFormats     = []string{"json", "console"}
)

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Pipeline: pipeline.DefaultConfig(),
		Log:      Log{Level: "info", Format: "console"},
		Storage:  Storage{Driver: "memory", Path: "femtrans.db"},
		Blob:     Blob{Driver: "memory", Root: "./blobdata"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	str("FEMTRANS_LOG_LEVEL", &c.Log.Level)
	str("FEMTRANS_LOG_FORMAT", &c.Log.Format)
	str("FEMTRANS_STORAGE_DRIVER", &c.Storage.Driver)
	str("FEMTRANS_SQLITE_PATH", &c.Storage.Path)
	str("FEMTRANS_POSTGRES_DSN", &c.Storage.DSN)
	str("FEMTRANS_BLOB_DRIVER", &c.Blob.Driver)
	str("FEMTRANS_BLOB_FS_ROOT", &c.Blob.Root)
	str("FEMTRANS_BLOB_S3_BUCKET", &c.Blob.S3.Bucket)
	str("FEMTRANS_BLOB_S3_REGION", &c.Blob.S3.Region)
	str("FEMTRANS_BLOB_S3_ENDPOINT", &c.Blob.S3.Endpoint)
	flag("FEMTRANS_BLOB_S3_PATH_STYLE", &c.Blob.S3.PathStyle)
	str("FEMTRANS_METRICS_FILE", &c.Metrics.File)
	flag("FEMTRANS_SPLIT_DIRECT_MATRICES", &c.Pipeline.SplitDirectMatrices)
	flag("FEMTRANS_PARTITION_MODEL", &c.Pipeline.PartitionModel)
	if v, ok := lookup("FEMTRANS_SIZE_DIRECT_MATRICES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FEMTRANS_SIZE_DIRECT_MATRICES: %w", err))
		} else {
			c.Pipeline.SizeDirectMatrices = n
		}
	}
	return errors.Join(errs...)
}

// Validate rejects unknown drivers and pipeline switch combinations that
// cannot run.
func (c Config) Validate() error {
	if !oneOf(c.Storage.Driver, storageDrivers) {
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if !oneOf(c.Blob.Driver, blobDrivers) {
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.S3.Bucket == "" {
		return errors.New("blob driver s3 requires a bucket")
	}
	if !oneOf(c.Log.Format, logFormats) {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return c.Pipeline.Validate()
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
