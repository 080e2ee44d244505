package observability

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"femtrans/internal/pipeline"

	"go.uber.org/zap"
)

var _ pipeline.Tracer = (*JSONTracer)(nil)

// Span is one finished pass as written by JSONTracer.
type Span struct {
	RunID      string    `json:"run_id,omitempty"`
	Pass       string    `json:"pass"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTracer writes each finished span as a JSON line and keeps a copy.
type JSONTracer struct {
	mu     sync.Mutex
	runID  string
	spans  []Span
	enc    *json.Encoder
	logger *zap.Logger
	now    func() time.Time
}

// TracerOption configures a JSONTracer.
type TracerOption func(*JSONTracer)

// WithRunID stamps every span with the translation run id.
func WithRunID(id string) TracerOption {
	return func(t *JSONTracer) { t.runID = id }
}

// WithTracerLogger mirrors spans to the logger at Debug.
func WithTracerLogger(l *zap.Logger) TracerOption {
	return func(t *JSONTracer) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewJSONTracer returns a tracer writing to w; a nil writer only retains spans.
func NewJSONTracer(w io.Writer, opts ...TracerOption) *JSONTracer {
	t := &JSONTracer{logger: zap.NewNop(), now: func() time.Time { return time.Now().UTC() }}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Spans returns a copy of the finished spans in end order.
func (t *JSONTracer) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Span, len(t.spans))
	copy(out, t.spans)
	return out
}

// Start implements pipeline.Tracer.
func (t *JSONTracer) Start(ctx context.Context, operation string) (context.Context, pipeline.TraceSpan) {
	return ctx, &jsonSpan{tracer: t, pass: operation, started: t.now()}
}

type jsonSpan struct {
	tracer  *JSONTracer
	pass    string
	started time.Time
}

func (s *jsonSpan) End(err error) {
	t := s.tracer
	ended := t.now()
	span := Span{
		RunID:      t.runID,
		Pass:       s.pass,
		Status:     "success",
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
		EndedAt:    ended,
	}
	if err != nil {
		span.Status = "error"
		span.Error = err.Error()
	}

	t.mu.Lock()
	t.spans = append(t.spans, span)
	if t.enc != nil {
		if encErr := t.enc.Encode(span); encErr != nil {
			t.logger.Warn("trace span not written", zap.String("pass", s.pass), zap.Error(encErr))
		}
	}
	t.mu.Unlock()
	t.logger.Debug("pass span", zap.String("pass", s.pass), zap.String("status", span.Status), zap.Float64("duration_ms", span.DurationMS))
}
