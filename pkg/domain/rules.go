package domain

import "context"

// Membership is one entry of a membership index: Member belongs to Set.
type Membership[S ~string, M ~string] struct {
	Set    Reference[S] `json:"set"`
	Member Reference[M] `json:"member"`
}

// RuleView provides read-only access to a model for rule evaluation.
type RuleView interface {
	ListAnalyses() []*Analysis
	ListElementSets() []*ElementSet
	LoadingMemberships() []Membership[LoadSetType, LoadingType]
	ConstraintMemberships() []Membership[ConstraintSetType, ConstraintType]
	FindLoading(ref Reference[LoadingType]) (*Loading, bool)
	FindLoadSet(ref Reference[LoadSetType]) (*LoadSet, bool)
	FindConstraint(ref Reference[ConstraintType]) (*Constraint, bool)
	FindConstraintSet(ref Reference[ConstraintSetType]) (*ConstraintSet, bool)
	FindObjective(ref Reference[ObjectiveType]) (*Objective, bool)
	GetMaterial(id int) (*Material, bool)
	NodeDOFS(position int) (DOFS, bool)
	NodeID(position int) int
}

// Rule defines an evaluation executed over a model.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in evaluation order.
func (e *RulesEngine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
