// Package blobtest holds the behaviour every blob driver must share, run
// from each driver's tests.
package blobtest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"femtrans/internal/blob/core"
)

// Run exercises a fresh store returned by open.
func Run(t *testing.T, open func(t *testing.T) core.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		s := open(t)
		obj, err := s.Put(ctx, "models/bracket/0001.json", strings.NewReader(`{"model":"bracket"}`), core.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"run-id": "0001"},
		})
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		if obj.Key != "models/bracket/0001.json" || obj.Size != int64(len(`{"model":"bracket"}`)) {
			t.Fatalf("unexpected object %+v", obj)
		}
		got, rc, err := s.Get(ctx, obj.Key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		body, _ := io.ReadAll(rc)
		_ = rc.Close()
		if string(body) != `{"model":"bracket"}` {
			t.Fatalf("unexpected body %q", body)
		}
		if got.ContentType != "application/json" || got.Metadata["run-id"] != "0001" {
			t.Fatalf("attributes lost: %+v", got)
		}
		if stat, err := s.Stat(ctx, obj.Key); err != nil || stat.Key != obj.Key {
			t.Fatalf("stat: %+v %v", stat, err)
		}
	})

	t.Run("write once", func(t *testing.T) {
		s := open(t)
		if _, err := s.Put(ctx, "a.json", strings.NewReader("1"), core.PutOptions{}); err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, err := s.Put(ctx, "a.json", strings.NewReader("2"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
			t.Fatalf("expected ErrExists, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		s := open(t)
		if _, _, err := s.Get(ctx, "nope.json"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound from get, got %v", err)
		}
		if _, err := s.Stat(ctx, "nope.json"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound from stat, got %v", err)
		}
	})

	t.Run("list by prefix", func(t *testing.T) {
		s := open(t)
		for _, key := range []string{"models/b/2.json", "models/a/1.json", "models/b/1.json", "other/x.json"} {
			if _, err := s.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
				t.Fatalf("put %s: %v", key, err)
			}
		}
		list, err := s.List(ctx, "models/b/")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 || list[0].Key != "models/b/1.json" || list[1].Key != "models/b/2.json" {
			t.Fatalf("expected key order under the prefix, got %+v", list)
		}
		all, _ := s.List(ctx, "")
		if len(all) != 4 {
			t.Fatalf("expected every object without a prefix, got %d", len(all))
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		if _, err := s.Put(ctx, "d.json", strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put: %v", err)
		}
		if ok, err := s.Delete(ctx, "d.json"); err != nil || !ok {
			t.Fatalf("delete: %v %v", ok, err)
		}
		if _, err := s.Stat(ctx, "d.json"); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("deleted object still visible: %v", err)
		}
	})

	t.Run("invalid keys", func(t *testing.T) {
		s := open(t)
		for _, key := range []string{"", "/abs.json", "../escape.json"} {
			if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
				t.Fatalf("%q: expected ErrInvalidKey, got %v", key, err)
			}
		}
	})
}
