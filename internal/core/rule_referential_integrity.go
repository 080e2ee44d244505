package core

import (
	"context"
	"fmt"

	"femtrans/pkg/domain"
)

// ReferentialIntegrityRule reports membership entries whose set or member no
// longer resolves.
func ReferentialIntegrityRule() domain.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return "referential_integrity" }

func (referentialIntegrityRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}

	for _, entry := range view.LoadingMemberships() {
		if _, ok := view.FindLoadSet(entry.Set); !ok {
			res.Violations = append(res.Violations, integrityViolation(domain.EntityLoadSet, entry.Set.ID,
				fmt.Sprintf("load set %s holds %s but does not exist", entry.Set, entry.Member)))
		}
		if _, ok := view.FindLoading(entry.Member); !ok {
			res.Violations = append(res.Violations, integrityViolation(domain.EntityLoading, entry.Member.ID,
				fmt.Sprintf("loading %s listed in load set %s does not exist", entry.Member, entry.Set)))
		}
	}
	for _, entry := range view.ConstraintMemberships() {
		if _, ok := view.FindConstraintSet(entry.Set); !ok {
			res.Violations = append(res.Violations, integrityViolation(domain.EntityConstraintSet, entry.Set.ID,
				fmt.Sprintf("constraint set %s holds %s but does not exist", entry.Set, entry.Member)))
		}
		if _, ok := view.FindConstraint(entry.Member); !ok {
			res.Violations = append(res.Violations, integrityViolation(domain.EntityConstraint, entry.Member.ID,
				fmt.Sprintf("constraint %s listed in constraint set %s does not exist", entry.Member, entry.Set)))
		}
	}

	return res, nil
}

func integrityViolation(kind domain.EntityKind, id int, message string) domain.Violation {
	return domain.Violation{
		Rule:     "referential_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   kind,
		EntityID: id,
	}
}
