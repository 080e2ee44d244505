package core

import (
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// AddMaterial registers a material.
func (m *Model) AddMaterial(mat *domain.Material) error {
	_, err := m.materials.Add(mat)
	return err
}

// GetMaterial returns the material with internal id.
func (m *Model) GetMaterial(id int) (*domain.Material, bool) { return m.materials.Get(id) }

// FindMaterial resolves a material reference.
func (m *Model) FindMaterial(ref domain.Reference[domain.MaterialType]) (*domain.Material, bool) {
	return m.materials.Find(ref)
}

// ListMaterials returns materials in insertion order.
func (m *Model) ListMaterials() []*domain.Material { return m.materials.All() }

// AddElementSet registers an element set.
func (m *Model) AddElementSet(es *domain.ElementSet) error {
	_, err := m.elementSets.Add(es)
	return err
}

// GetElementSet returns the element set with internal id.
func (m *Model) GetElementSet(id int) (*domain.ElementSet, bool) { return m.elementSets.Get(id) }

// FindElementSet resolves an element set reference.
func (m *Model) FindElementSet(ref domain.Reference[domain.ElementSetType]) (*domain.ElementSet, bool) {
	return m.elementSets.Find(ref)
}

// FindElementSetByOriginalID resolves an untyped original id, as property
// cards in source decks do not say which element family they describe.
func (m *Model) FindElementSetByOriginalID(originalID int) (*domain.ElementSet, bool) {
	return m.elementSets.FindByOriginalID(originalID)
}

// ListElementSets returns element sets in insertion order.
func (m *Model) ListElementSets() []*domain.ElementSet { return m.elementSets.All() }

// FilterElementSets returns the element sets of the given families.
func (m *Model) FilterElementSets(types ...domain.ElementSetType) []*domain.ElementSet {
	return m.elementSets.Filter(types...)
}

// RemoveElementSet erases an element set; its cell group is left to the caller.
func (m *Model) RemoveElementSet(ref domain.Reference[domain.ElementSetType]) bool {
	return m.elementSets.Erase(ref)
}

// AddLoading registers a loading.
func (m *Model) AddLoading(l *domain.Loading) error {
	_, err := m.loadings.Add(l)
	return err
}

// GetLoading returns the loading with internal id.
func (m *Model) GetLoading(id int) (*domain.Loading, bool) { return m.loadings.Get(id) }

// FindLoading resolves a loading reference.
func (m *Model) FindLoading(ref domain.Reference[domain.LoadingType]) (*domain.Loading, bool) {
	return m.loadings.Find(ref)
}

// ListLoadings returns loadings in insertion order.
func (m *Model) ListLoadings() []*domain.Loading { return m.loadings.All() }

// RemoveLoading drops a loading from every load set, then erases it.
func (m *Model) RemoveLoading(ref domain.Reference[domain.LoadingType]) bool {
	if l, ok := m.loadings.Find(ref); ok {
		ref = l.Reference()
	}
	m.loadMembers.removeMember(ref)
	return m.loadings.Erase(ref)
}

// AddLoadSet registers a load set.
func (m *Model) AddLoadSet(ls *domain.LoadSet) error {
	_, err := m.loadSets.Add(ls)
	return err
}

// GetLoadSet returns the load set with internal id.
func (m *Model) GetLoadSet(id int) (*domain.LoadSet, bool) { return m.loadSets.Get(id) }

// FindLoadSet resolves a load set reference.
func (m *Model) FindLoadSet(ref domain.Reference[domain.LoadSetType]) (*domain.LoadSet, bool) {
	return m.loadSets.Find(ref)
}

// ListLoadSets returns load sets in insertion order.
func (m *Model) ListLoadSets() []*domain.LoadSet { return m.loadSets.All() }

// RemoveLoadSet disassociates a load set from every analysis and from the
// membership index, then erases it. Member loadings are kept.
func (m *Model) RemoveLoadSet(ref domain.Reference[domain.LoadSetType]) bool {
	ls, ok := m.loadSets.Find(ref)
	if !ok {
		return false
	}
	full := ls.Reference()
	for _, a := range m.analyses.All() {
		a.RemoveLoadSet(full)
	}
	m.loadMembers.dropSet(full)
	return m.loadSets.Erase(full)
}

// AddConstraint registers a constraint.
func (m *Model) AddConstraint(c *domain.Constraint) error {
	_, err := m.constraints.Add(c)
	return err
}

// GetConstraint returns the constraint with internal id.
func (m *Model) GetConstraint(id int) (*domain.Constraint, bool) { return m.constraints.Get(id) }

// FindConstraint resolves a constraint reference.
func (m *Model) FindConstraint(ref domain.Reference[domain.ConstraintType]) (*domain.Constraint, bool) {
	return m.constraints.Find(ref)
}

// ListConstraints returns constraints in insertion order.
func (m *Model) ListConstraints() []*domain.Constraint { return m.constraints.All() }

// RemoveConstraint drops a constraint from every constraint set, then erases it.
func (m *Model) RemoveConstraint(ref domain.Reference[domain.ConstraintType]) bool {
	if c, ok := m.constraints.Find(ref); ok {
		ref = c.Reference()
	}
	m.constraintMembers.removeMember(ref)
	return m.constraints.Erase(ref)
}

// RemoveConstraintFromSet drops a constraint from one constraint set and
// erases it from the catalog.
func (m *Model) RemoveConstraintFromSet(ref domain.Reference[domain.ConstraintType], set domain.Reference[domain.ConstraintSetType]) bool {
	if c, ok := m.constraints.Find(ref); ok {
		ref = c.Reference()
	}
	if cs, ok := m.constraintSets.Find(set); ok {
		set = cs.Reference()
	}
	m.constraintMembers.removeFromSet(ref, set)
	return m.constraints.Erase(ref)
}

// DetachConstraintFromSet drops a constraint from one constraint set and
// keeps it in the catalog.
func (m *Model) DetachConstraintFromSet(ref domain.Reference[domain.ConstraintType], set domain.Reference[domain.ConstraintSetType]) {
	if c, ok := m.constraints.Find(ref); ok {
		ref = c.Reference()
	}
	if cs, ok := m.constraintSets.Find(set); ok {
		set = cs.Reference()
	}
	m.constraintMembers.removeFromSet(ref, set)
}

// AddConstraintSet registers a constraint set.
func (m *Model) AddConstraintSet(cs *domain.ConstraintSet) error {
	_, err := m.constraintSets.Add(cs)
	return err
}

// GetConstraintSet returns the constraint set with internal id.
func (m *Model) GetConstraintSet(id int) (*domain.ConstraintSet, bool) {
	return m.constraintSets.Get(id)
}

// FindConstraintSet resolves a constraint set reference.
func (m *Model) FindConstraintSet(ref domain.Reference[domain.ConstraintSetType]) (*domain.ConstraintSet, bool) {
	return m.constraintSets.Find(ref)
}

// ListConstraintSets returns constraint sets in insertion order.
func (m *Model) ListConstraintSets() []*domain.ConstraintSet { return m.constraintSets.All() }

// RemoveConstraintSet disassociates a constraint set from every analysis and
// from the membership index, then erases it.
func (m *Model) RemoveConstraintSet(ref domain.Reference[domain.ConstraintSetType]) bool {
	cs, ok := m.constraintSets.Find(ref)
	if !ok {
		return false
	}
	full := cs.Reference()
	for _, a := range m.analyses.All() {
		a.RemoveConstraintSet(full)
	}
	m.constraintMembers.dropSet(full)
	return m.constraintSets.Erase(full)
}

// AddObjective registers an objective.
func (m *Model) AddObjective(o *domain.Objective) error {
	_, err := m.objectives.Add(o)
	return err
}

// GetObjective returns the objective with internal id.
func (m *Model) GetObjective(id int) (*domain.Objective, bool) { return m.objectives.Get(id) }

// FindObjective resolves an objective reference.
func (m *Model) FindObjective(ref domain.Reference[domain.ObjectiveType]) (*domain.Objective, bool) {
	return m.objectives.Find(ref)
}

// ListObjectives returns objectives in insertion order.
func (m *Model) ListObjectives() []*domain.Objective { return m.objectives.All() }

// RemoveObjective disassociates an objective from every analysis, then
// erases it.
func (m *Model) RemoveObjective(ref domain.Reference[domain.ObjectiveType]) bool {
	o, ok := m.objectives.Find(ref)
	if !ok {
		return false
	}
	full := o.Reference()
	for _, a := range m.analyses.All() {
		a.RemoveObjective(full)
	}
	return m.objectives.Erase(full)
}

// AddAnalysis registers an analysis.
func (m *Model) AddAnalysis(a *domain.Analysis) error {
	_, err := m.analyses.Add(a)
	return err
}

// GetAnalysis returns the analysis with internal id.
func (m *Model) GetAnalysis(id int) (*domain.Analysis, bool) { return m.analyses.Get(id) }

// FindAnalysis resolves an analysis reference.
func (m *Model) FindAnalysis(ref domain.Reference[domain.AnalysisType]) (*domain.Analysis, bool) {
	return m.analyses.Find(ref)
}

// ListAnalyses returns analyses in insertion order.
func (m *Model) ListAnalyses() []*domain.Analysis { return m.analyses.All() }

// AddCoordinateSystem registers a coordinate system.
func (m *Model) AddCoordinateSystem(cs *domain.CoordinateSystem) error {
	_, err := m.coordinateSystems.Add(cs)
	return err
}

// GetCoordinateSystem returns the coordinate system with internal id.
func (m *Model) GetCoordinateSystem(id int) (*domain.CoordinateSystem, bool) {
	return m.coordinateSystems.Get(id)
}

// FindCoordinateSystem resolves a coordinate system reference.
func (m *Model) FindCoordinateSystem(ref domain.Reference[domain.CoordinateSystemType]) (*domain.CoordinateSystem, bool) {
	return m.coordinateSystems.Find(ref)
}

// ListCoordinateSystems returns coordinate systems in insertion order.
func (m *Model) ListCoordinateSystems() []*domain.CoordinateSystem {
	return m.coordinateSystems.All()
}

// AddValue registers a value, merging placeholders. It returns the value
// kept in the catalog.
func (m *Model) AddValue(v *domain.Value) (*domain.Value, error) {
	return m.values.Add(v)
}

// GetValue returns the value with internal id.
func (m *Model) GetValue(id int) (*domain.Value, bool) { return m.values.Get(id) }

// FindValue resolves a value reference, placeholders included.
func (m *Model) FindValue(ref domain.Reference[domain.ValueType]) (*domain.Value, bool) {
	return m.values.Find(ref)
}

// ListValues returns the non-placeholder values in insertion order.
func (m *Model) ListValues() []*domain.Value { return m.values.All() }

func (m *Model) warnUnresolved(kind domain.EntityKind, ref string, from string) {
	m.logger.Warn("unresolved reference",
		zap.String("kind", string(kind)),
		zap.String("reference", ref),
		zap.String("from", from),
		zap.Error(domain.UnresolvedReferenceError{Entity: kind, Reference: ref, From: from}))
}
