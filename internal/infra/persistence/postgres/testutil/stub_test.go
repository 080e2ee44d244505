package testutil

import (
	"context"
	"database/sql/driver"
	"io"
	"testing"
)

func named(values ...any) []driver.NamedValue {
	out := make([]driver.NamedValue, len(values))
	for i, v := range values {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func TestStubInsertConflictAndDelete(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	insert := "INSERT INTO runs(model,run_id,note) VALUES($1,$2,$3) ON CONFLICT(model,run_id) DO NOTHING"
	if res, err := conn.ExecContext(ctx, insert, named("a", "1", "first")); err != nil {
		t.Fatalf("insert: %v", err)
	} else if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("expected one row inserted, got %d", n)
	}
	res, err := conn.ExecContext(ctx, insert, named("a", "1", "again"))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 0 || conn.Tables["runs"][0]["note"] != "first" {
		t.Fatalf("conflicting insert must be ignored")
	}
	if _, err := conn.ExecContext(ctx, insert, named("b", "1", "other")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	res, err = conn.ExecContext(ctx, "DELETE FROM runs WHERE model = $1 AND run_id = $2", named("a", "1"))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 || len(conn.Tables["runs"]) != 1 {
		t.Fatalf("expected exactly one row removed, got %d", n)
	}
}

func TestStubSelect(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	conn.Tables["runs"] = []map[string]any{
		{"model": "a", "run_id": "2"},
		{"model": "b", "run_id": "9"},
		{"model": "a", "run_id": "1"},
		{"model": "a", "run_id": "3"},
	}
	rows, err := conn.QueryContext(ctx, "SELECT run_id FROM runs WHERE model = $1 ORDER BY run_id DESC LIMIT 2", named("a"))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer func() { _ = rows.Close() }()
	var got []string
	dest := make([]driver.Value, 1)
	for {
		if err := rows.Next(dest); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("next: %v", err)
		}
		got = append(got, dest[0].(string))
	}
	if len(got) != 2 || got[0] != "3" || got[1] != "2" {
		t.Fatalf("unexpected rows %v", got)
	}
}

func TestStubRejectsUnparseableSQL(t *testing.T) {
	_, conn := NewStubDB()
	if _, err := conn.QueryContext(context.Background(), "UPDATE runs SET x = 1", nil); err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, err := conn.QueryContext(context.Background(), "SELECT a FROM runs WHERE a = ?", named("x")); err == nil {
		t.Fatalf("expected an unsupported placeholder error")
	}
}
