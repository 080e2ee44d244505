// Package observability provides the pass metrics recorder and tracer used by
// the translation pipeline.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"femtrans/internal/pipeline"
	"femtrans/pkg/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "femtrans"

var _ pipeline.MetricsRecorder = (*PrometheusRecorder)(nil)
var _ pipeline.StatsRecorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder keeps pass and entity metrics in its own registry, so
// several recorders can coexist in one process.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	entities *prometheus.GaugeVec
}

// NewPrometheusRecorder registers the pass duration histogram, the pass
// outcome counter and the entity gauges on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Time spent in each pipeline pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"pass"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_runs_total",
			Help:      "Pipeline pass runs by outcome.",
		}, []string{"pass", "status"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_entities",
			Help:      "Entity counts of the last finished model.",
		}, []string{"model", "kind"}),
	}
	r.registry.MustRegister(r.duration, r.outcomes, r.entities)
	return r
}

// Registry exposes the underlying registry for scraping or gathering.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a pass outcome.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
	r.outcomes.WithLabelValues(operation, status).Inc()
}

// RecordStats sets one gauge per entity kind.
func (r *PrometheusRecorder) RecordStats(model string, counts map[domain.EntityKind]int) {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		r.entities.WithLabelValues(model, k).Set(float64(counts[domain.EntityKind(k)]))
	}
}

// WriteText writes every gathered family in the text exposition format.
func (r *PrometheusRecorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// WriteTextfile writes the metrics to path through a temporary file, in the
// form the node exporter textfile collector picks up.
func (r *PrometheusRecorder) WriteTextfile(path string) (retErr error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".metrics-*")
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := r.WriteText(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
