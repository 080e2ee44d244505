package memory

import (
	"context"
	"testing"

	"femtrans/internal/persistence/core"
	"femtrans/internal/persistence/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) core.Store { return New() })
}

func TestStoreReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	rec := storetest.Record("bracket", "0001")
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec.Document[0] = 'X'
	got, _ := s.Get(ctx, "bracket", "0001")
	if got.Document[0] != '{' {
		t.Fatalf("stored document must not alias the caller's slice")
	}
	got.Document[0] = 'Y'
	again, _ := s.Latest(ctx, "bracket")
	if again.Document[0] != '{' {
		t.Fatalf("returned document must not alias the stored slice")
	}
}
