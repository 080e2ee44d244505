package core

import (
	"context"

	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// NewDefaultRulesEngine builds a rules engine with the built-in checks run
// over a finished model.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(ReferentialIntegrityRule())
	engine.Register(AnalysisReferencesRule())
	engine.Register(DOFCoverageRule())
	engine.Register(ElementMaterialRule())
	return engine
}

// Validate checks the mesh and evaluates the rules engine over the model.
// Mesh inconsistencies are reported as blocking violations.
func (m *Model) Validate(ctx context.Context, engine *domain.RulesEngine) (domain.Result, error) {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	var res domain.Result
	if err := m.mesh.Validate(); err != nil {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "mesh",
			Severity: domain.SeverityBlock,
			Message:  err.Error(),
			Entity:   domain.EntityCell,
		})
	}
	ruled, err := engine.Evaluate(ctx, m)
	if err != nil {
		return domain.Result{}, err
	}
	res.Merge(ruled)
	stats := m.Stats()
	m.logger.Debug("model validated",
		zap.String("model", m.Name),
		zap.Int("nodes", stats.Nodes),
		zap.Int("cells", stats.Cells),
		zap.Int("element_sets", stats.ElementSets),
		zap.Int("loadings", stats.Loadings),
		zap.Int("constraints", stats.Constraints),
		zap.Int("analyses", stats.Analyses),
		zap.Int("violations", len(res.Violations)))
	return res, nil
}
