package core

import (
	"context"
	"fmt"

	"femtrans/pkg/domain"
)

// DOFCoverageRule warns about analyses requiring DOFs that no element or
// carrier provides at a node.
func DOFCoverageRule() domain.Rule {
	return dofCoverageRule{}
}

type dofCoverageRule struct{}

func (dofCoverageRule) Name() string { return "dof_coverage" }

func (dofCoverageRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, a := range view.ListAnalyses() {
		for _, node := range a.BoundaryNodes() {
			required := a.FindBoundaryDOFS(node)
			allowed, ok := view.NodeDOFS(node)
			if !ok {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "dof_coverage",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("analysis %s requires DOFs at unknown node position %d", a.Reference(), node),
					Entity:   domain.EntityNode,
					EntityID: node,
				})
				continue
			}
			if missing := required.Minus(allowed); !missing.Empty() {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "dof_coverage",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("analysis %s requires %s at node %d, not carried by any element", a.Reference(), missing.Labels(), view.NodeID(node)),
					Entity:   domain.EntityNode,
					EntityID: view.NodeID(node),
				})
			}
		}
	}
	return res, nil
}
