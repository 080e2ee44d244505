package core

import (
	"context"
	"fmt"

	"femtrans/pkg/domain"
)

// ElementMaterialRule warns about element sets whose material id does not
// resolve.
func ElementMaterialRule() domain.Rule {
	return elementMaterialRule{}
}

type elementMaterialRule struct{}

func (elementMaterialRule) Name() string { return "element_material" }

func (elementMaterialRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, es := range view.ListElementSets() {
		if es.MaterialID == domain.NoID {
			continue
		}
		if _, ok := view.GetMaterial(es.MaterialID); !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "element_material",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("element set %s references missing material %d", es.Reference(), es.MaterialID),
				Entity:   domain.EntityElementSet,
				EntityID: es.ID,
			})
		}
	}
	return res, nil
}
