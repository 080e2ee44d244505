// Package storetest holds the behaviour every snapshot archive driver must
// share, run from each driver's tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"femtrans/internal/persistence/core"
)

// Record builds a small record for model and runID.
func Record(model, runID string) core.Record {
	return core.Record{
		Model:     model,
		RunID:     runID,
		Finished:  true,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Document:  []byte(`{"version":1,"model":"` + model + `","nodes":[]}`),
	}
}

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) core.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		s := open(t)
		rec := Record("bracket", "0001")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := s.Get(ctx, "bracket", "0001")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Model != rec.Model || got.RunID != rec.RunID || !got.Finished || string(got.Document) != string(rec.Document) {
			t.Fatalf("unexpected record %+v", got)
		}
		if !got.CreatedAt.Equal(rec.CreatedAt) {
			t.Fatalf("expected created at %s, got %s", rec.CreatedAt, got.CreatedAt)
		}
	})

	t.Run("duplicate run", func(t *testing.T) {
		s := open(t)
		if err := s.Save(ctx, Record("bracket", "0001")); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := s.Save(ctx, Record("bracket", "0001")); !errors.Is(err, core.ErrExists) {
			t.Fatalf("expected ErrExists, got %v", err)
		}
		if err := s.Save(ctx, Record("frame", "0001")); err != nil {
			t.Fatalf("run ids are scoped by model: %v", err)
		}
	})

	t.Run("latest and list", func(t *testing.T) {
		s := open(t)
		for _, id := range []string{"0001", "0003", "0002"} {
			if err := s.Save(ctx, Record("bracket", id)); err != nil {
				t.Fatalf("save %s: %v", id, err)
			}
		}
		latest, err := s.Latest(ctx, "bracket")
		if err != nil || latest.RunID != "0003" {
			t.Fatalf("expected run 0003 as latest, got %+v (%v)", latest, err)
		}
		list, err := s.List(ctx, "bracket")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || list[0].RunID != "0001" || list[2].RunID != "0003" {
			t.Fatalf("expected run id order, got %+v", list)
		}
		if empty, err := s.List(ctx, "unknown"); err != nil || len(empty) != 0 {
			t.Fatalf("expected no records, got %+v (%v)", empty, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		s := open(t)
		if _, err := s.Get(ctx, "bracket", "0001"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.Latest(ctx, "bracket"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		if err := s.Save(ctx, Record("bracket", "0001")); err != nil {
			t.Fatalf("save: %v", err)
		}
		if ok, err := s.Delete(ctx, "bracket", "0001"); err != nil || !ok {
			t.Fatalf("expected the record deleted: %v %v", ok, err)
		}
		if ok, err := s.Delete(ctx, "bracket", "0001"); err != nil || ok {
			t.Fatalf("second delete must report nothing removed: %v %v", ok, err)
		}
	})

	t.Run("invalid record", func(t *testing.T) {
		s := open(t)
		if err := s.Save(ctx, core.Record{Model: "bracket"}); err == nil {
			t.Fatalf("expected a validation error")
		}
	})
}
