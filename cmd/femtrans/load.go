package main

import (
	"fmt"
	"os"

	"femtrans/internal/core"
	"femtrans/internal/snapshot"

	"go.uber.org/zap"
)

func loadModel(path string, logger *zap.Logger) (*core.Model, error) {
	if path == "" {
		return nil, fmt.Errorf("--input is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	m, err := snapshot.Decode(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
