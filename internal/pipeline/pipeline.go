// Package pipeline rewrites a Model into its analysis-ready form through a
// fixed sequence of passes, each gated by a Config switch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// Pass is one step of the pipeline. Apply must leave the model's catalogs and
// membership index consistent when it returns.
type Pass interface {
	Name() string
	Enabled(cfg Config) bool
	Apply(ctx context.Context, m *core.Model, cfg Config) error
}

// MetricsRecorder captures pass outcomes and durations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// StatsRecorder is implemented by recorders that also track entity counts.
type StatsRecorder interface {
	RecordStats(model string, counts map[domain.EntityKind]int)
}

// Tracer starts a span per pass.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended with the pass error, nil on success.
type TraceSpan interface {
	End(err error)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

type noopTracer struct{}

type noopSpan struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

func (noopSpan) End(error) {}

// Pipeline runs passes over a model once.
type Pipeline struct {
	cfg     Config
	passes  []Pass
	logger  *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	engine  *domain.RulesEngine
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for pass progress.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetricsRecorder sets the recorder observing every pass.
func WithMetricsRecorder(r MetricsRecorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.metrics = r
		}
	}
}

// WithTracer sets the tracer opening a span per pass.
func WithTracer(t Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithRulesEngine replaces the rules evaluated after the passes.
func WithRulesEngine(e *domain.RulesEngine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithPasses replaces the default pass sequence.
func WithPasses(passes ...Pass) Option {
	return func(p *Pipeline) {
		p.passes = append([]Pass(nil), passes...)
	}
}

// New returns a pipeline running DefaultPasses under cfg.
func New(cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		passes:  DefaultPasses(),
		logger:  zap.NewNop(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		engine:  core.NewDefaultRulesEngine(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() Config { return p.cfg }

// Passes returns the pass sequence in execution order.
func (p *Pipeline) Passes() []Pass { return append([]Pass(nil), p.passes...) }

// DefaultPasses returns the fixed pass order.
func DefaultPasses() []Pass {
	return []Pass{
		BuildCoordinateSystemsPass(),
		PropagateDOFSPass(),
		RemoveAssertionsMissingDOFSPass(),
		EmulateLocalDisplacementPass(),
		DisplayHomogeneousConstraintPass(),
		GenerateSkinPass(),
		EmulateAdditionalMassPass(),
		ReplaceCombinedLoadSetsPass(),
		ReplaceDirectMatricesPass(),
		RemoveRedundantSpcsPass(),
		RemoveIneffectivesPass(),
		VirtualDiscretsPass(),
		SplitDirectMatricesPass(),
		MakeCellsFromDirectMatricesPass(),
		MakeCellsFromRBEPass(),
		SplitElementsByDOFSPass(),
		AssignElementsPass(),
		FinishMeshPass(),
	}
}

// Run applies every enabled pass, marks the model finished and validates it.
// A model that is already finished is only validated. Blocking violations
// are returned as a *domain.RuleViolationError along with the result.
func (p *Pipeline) Run(ctx context.Context, m *core.Model) (domain.Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return domain.Result{}, err
	}
	if m.Finished() {
		p.logger.Debug("model already finished, skipping passes", zap.String("model", m.Name))
	} else {
		for _, pass := range p.passes {
			if !pass.Enabled(p.cfg) {
				p.logger.Debug("pass disabled", zap.String("pass", pass.Name()))
				continue
			}
			if err := p.apply(ctx, m, pass); err != nil {
				return domain.Result{}, fmt.Errorf("pass %s: %w", pass.Name(), err)
			}
		}
		m.MarkFinished()
	}

	res, err := m.Validate(ctx, p.engine)
	if err != nil {
		return domain.Result{}, err
	}
	if stats, ok := p.metrics.(StatsRecorder); ok {
		stats.RecordStats(m.Name, m.Stats().Counts())
	}
	if res.HasBlocking() {
		return res, &domain.RuleViolationError{Result: res}
	}
	return res, nil
}

func (p *Pipeline) apply(ctx context.Context, m *core.Model, pass Pass) (err error) {
	ctx, span := p.tracer.Start(ctx, pass.Name())
	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		p.metrics.Observe(ctx, pass.Name(), err == nil, elapsed)
		span.End(err)
		p.logger.Debug("pass finished",
			zap.String("pass", pass.Name()),
			zap.Duration("duration", elapsed),
			zap.Bool("success", err == nil))
	}()
	p.logger.Debug("pass started", zap.String("pass", pass.Name()))
	return pass.Apply(ctx, m, p.cfg)
}
