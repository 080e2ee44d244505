// Package domain defines the entities, value types and validation
// primitives of a solver-neutral structural-analysis model.
package domain

import "fmt"

// EntityKind identifies the catalog an entity lives in.
type EntityKind string

// Entity kinds, one catalog each.
const (
	// EntityMaterial identifies a material record.
	EntityMaterial EntityKind = "material"
	// EntityElementSet identifies a set of elements sharing properties.
	EntityElementSet EntityKind = "element_set"
	// EntityLoading identifies a single load.
	EntityLoading EntityKind = "loading"
	// EntityLoadSet identifies a named aggregation of loadings.
	EntityLoadSet EntityKind = "load_set"
	// EntityConstraint identifies a single constraint.
	EntityConstraint EntityKind = "constraint"
	// EntityConstraintSet identifies a named aggregation of constraints.
	EntityConstraintSet EntityKind = "constraint_set"
	EntityObjective     EntityKind = "objective"
	EntityAnalysis      EntityKind = "analysis"
	// EntityCoordinateSystem identifies a local frame or orientation.
	EntityCoordinateSystem EntityKind = "coordinate_system"
	EntityValue            EntityKind = "value"
	// EntityNode and EntityCell identify mesh records in violations.
	EntityNode EntityKind = "node"
	EntityCell EntityKind = "cell"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities.
const (
	// SeverityBlock makes the model unusable for emission.
	SeverityBlock Severity = "block"
	// SeverityWarn is reported but does not stop the translation.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityKind `json:"entity"`
	EntityID int        `json:"entity_id"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Blocking returns only the blocking violations.
func (r Result) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	blocking := e.Result.Blocking()
	if len(blocking) == 0 {
		return "model rejected by validation rules"
	}
	first := blocking[0]
	return fmt.Sprintf("model rejected by validation rules: %d blocking violation(s), first: %s %d: %s",
		len(blocking), first.Entity, first.EntityID, first.Message)
}
