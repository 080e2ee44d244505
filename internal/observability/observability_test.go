package observability

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"femtrans/internal/pipeline"
	"femtrans/pkg/domain"
	"femtrans/testutil"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderObserve(t *testing.T) {
	r := NewPrometheusRecorder()
	ctx := context.Background()
	r.Observe(ctx, "virtual_discrets", true, 2*time.Millisecond)
	r.Observe(ctx, "virtual_discrets", true, time.Millisecond)
	r.Observe(ctx, "split_direct_matrices", false, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)

	if got := promtest.ToFloat64(r.outcomes.WithLabelValues("virtual_discrets", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := promtest.ToFloat64(r.outcomes.WithLabelValues("split_direct_matrices", "error")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if n := promtest.CollectAndCount(r.duration); n != 2 {
		t.Fatalf("expected one histogram per pass, got %d", n)
	}
}

func TestPrometheusRecorderStats(t *testing.T) {
	r := NewPrometheusRecorder()
	r.RecordStats("bracket", map[domain.EntityKind]int{
		domain.EntityLoading:    3,
		domain.EntityConstraint: 1,
	})
	if got := promtest.ToFloat64(r.entities.WithLabelValues("bracket", string(domain.EntityLoading))); got != 3 {
		t.Fatalf("expected 3 loadings, got %v", got)
	}
	r.RecordStats("bracket", map[domain.EntityKind]int{domain.EntityLoading: 1})
	if got := promtest.ToFloat64(r.entities.WithLabelValues("bracket", string(domain.EntityLoading))); got != 1 {
		t.Fatalf("gauges must hold the latest count, got %v", got)
	}
}

func TestPrometheusRecorderTextfile(t *testing.T) {
	r := NewPrometheusRecorder()
	r.Observe(context.Background(), "remove_ineffectives", true, time.Millisecond)
	path := filepath.Join(t.TempDir(), "out", "femtrans.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(raw)
	for _, want := range []string{
		`femtrans_pass_runs_total{pass="remove_ineffectives",status="success"} 1`,
		"# TYPE femtrans_pass_duration_seconds histogram",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in\n%s", want, text)
		}
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files must not be left behind, got %d entries", len(entries))
	}
}

func TestJSONTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf, WithRunID("run-1"))
	_, span := tracer.Start(context.Background(), "assign_elements")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "make_cells_from_rbe")
	span.End(errors.New("no master"))

	spans := tracer.Spans()
	if len(spans) != 2 || spans[0].Status != "success" || spans[1].Error != "no master" {
		t.Fatalf("unexpected spans %+v", spans)
	}
	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var s Span
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		if s.RunID != "run-1" {
			t.Fatalf("expected the run id on every line, got %+v", s)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestPipelineWiring(t *testing.T) {
	b := testutil.NewModel(t, "wired")
	pos := b.Node(1, 0, 0, 0)
	b.Load(testutil.NodalForce(1, pos, domain.Vector3{1, 0, 0}, domain.Vector3{}))

	recorder := NewPrometheusRecorder()
	tracer := NewJSONTracer(nil)
	p := pipeline.New(pipeline.DefaultConfig(), pipeline.WithMetricsRecorder(recorder), pipeline.WithTracer(tracer))
	if _, err := p.Run(context.Background(), b.Model); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(tracer.Spans()) == 0 {
		t.Fatalf("expected pass spans")
	}
	if got := promtest.ToFloat64(recorder.entities.WithLabelValues("wired", string(domain.EntityLoading))); got < 1 {
		t.Fatalf("expected the entity gauges filled, got %v", got)
	}
}
