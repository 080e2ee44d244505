package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"femtrans/internal/blob/blobtest"
	"femtrans/internal/blob/core"
)

func TestStoreContract(t *testing.T) {
	blobtest.Run(t, func(t *testing.T) core.Store { return New() })
}

func TestStoreIsolatesCallers(t *testing.T) {
	s := New()
	ctx := context.Background()
	meta := map[string]string{"run-id": "1"}
	if _, err := s.Put(ctx, "k.json", strings.NewReader("body"), core.PutOptions{Metadata: meta}); err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["run-id"] = "changed"
	obj, rc, err := s.Get(ctx, "k.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	if obj.Metadata["run-id"] != "1" {
		t.Fatalf("stored metadata must not alias the caller's map")
	}
	obj.Metadata["run-id"] = "mutated"
	if again, _ := s.Stat(ctx, "k.json"); again.Metadata["run-id"] != "1" {
		t.Fatalf("returned metadata must not alias the stored map")
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "body" {
		t.Fatalf("unexpected body %q", body)
	}
	if len(obj.Checksum) != 64 {
		t.Fatalf("expected a sha256 checksum, got %q", obj.Checksum)
	}
}
