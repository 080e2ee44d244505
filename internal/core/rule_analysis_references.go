package core

import (
	"context"
	"fmt"

	"femtrans/pkg/domain"
)

// AnalysisReferencesRule reports analyses pointing at load sets, constraint
// sets or objectives that do not exist.
func AnalysisReferencesRule() domain.Rule {
	return analysisReferencesRule{}
}

type analysisReferencesRule struct{}

func (analysisReferencesRule) Name() string { return "analysis_references" }

func (analysisReferencesRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, a := range view.ListAnalyses() {
		for _, ref := range a.LoadSets {
			if _, ok := view.FindLoadSet(ref); !ok {
				res.Violations = append(res.Violations, analysisViolation(a, fmt.Sprintf("load set %s not found", ref)))
			}
		}
		for _, ref := range a.ConstraintSets {
			if _, ok := view.FindConstraintSet(ref); !ok {
				res.Violations = append(res.Violations, analysisViolation(a, fmt.Sprintf("constraint set %s not found", ref)))
			}
		}
		for _, ref := range a.Objectives {
			if _, ok := view.FindObjective(ref); !ok {
				res.Violations = append(res.Violations, analysisViolation(a, fmt.Sprintf("objective %s not found", ref)))
			}
		}
	}
	return res, nil
}

func analysisViolation(a *domain.Analysis, message string) domain.Violation {
	return domain.Violation{
		Rule:     "analysis_references",
		Severity: domain.SeverityBlock,
		Message:  fmt.Sprintf("analysis %s: %s", a.Reference(), message),
		Entity:   domain.EntityAnalysis,
		EntityID: a.ID,
	}
}
