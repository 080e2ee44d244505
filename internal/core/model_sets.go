package core

import (
	"femtrans/pkg/domain"
)

// CommonLoadSet returns the load set applied to every analysis, creating it
// on first use.
func (m *Model) CommonLoadSet() *domain.LoadSet {
	if ls, ok := m.loadSets.Find(domain.CommonLoadSetRef()); ok {
		return ls
	}
	ls := domain.NewLoadSet(domain.LoadSetAll, domain.CommonSetID)
	// Cannot collide: the lookup above missed on the only key it has.
	_, _ = m.loadSets.Add(ls)
	return ls
}

// CommonConstraintSet returns the constraint set applied to every analysis,
// creating it on first use.
func (m *Model) CommonConstraintSet() *domain.ConstraintSet {
	if cs, ok := m.constraintSets.Find(domain.CommonConstraintSetRef()); ok {
		return cs
	}
	cs := domain.NewConstraintSet(domain.ConstraintSetAll, domain.CommonSetID)
	_, _ = m.constraintSets.Add(cs)
	return cs
}

// AddLoadingIntoLoadSet records that a loading belongs to a load set. A load
// set that does not exist yet is synthesized from the reference.
func (m *Model) AddLoadingIntoLoadSet(loading domain.Reference[domain.LoadingType], set domain.Reference[domain.LoadSetType]) error {
	ls, ok := m.loadSets.Find(set)
	if !ok {
		if !set.HasOriginalID() {
			return domain.UnresolvedReferenceError{Entity: domain.EntityLoadSet, Reference: set.String(), From: loading.String()}
		}
		ls = domain.NewLoadSet(set.Type, set.OriginalID)
		if _, err := m.loadSets.Add(ls); err != nil {
			return err
		}
	}
	if l, found := m.loadings.Find(loading); found {
		loading = l.Reference()
	}
	m.loadMembers.add(ls.Reference(), loading)
	return nil
}

// AddConstraintIntoConstraintSet records that a constraint belongs to a
// constraint set. A constraint set that does not exist yet is synthesized
// from the reference.
func (m *Model) AddConstraintIntoConstraintSet(constraint domain.Reference[domain.ConstraintType], set domain.Reference[domain.ConstraintSetType]) error {
	cs, ok := m.constraintSets.Find(set)
	if !ok {
		if !set.HasOriginalID() {
			return domain.UnresolvedReferenceError{Entity: domain.EntityConstraintSet, Reference: set.String(), From: constraint.String()}
		}
		cs = domain.NewConstraintSet(set.Type, set.OriginalID)
		if _, err := m.constraintSets.Add(cs); err != nil {
			return err
		}
	}
	if c, found := m.constraints.Find(constraint); found {
		constraint = c.Reference()
	}
	m.constraintMembers.add(cs.Reference(), constraint)
	return nil
}

func (m *Model) fullLoadSetRef(set domain.Reference[domain.LoadSetType]) domain.Reference[domain.LoadSetType] {
	if ls, ok := m.loadSets.Find(set); ok {
		return ls.Reference()
	}
	return set
}

func (m *Model) fullConstraintSetRef(set domain.Reference[domain.ConstraintSetType]) domain.Reference[domain.ConstraintSetType] {
	if cs, ok := m.constraintSets.Find(set); ok {
		return cs.Reference()
	}
	return set
}

// LoadingsByLoadSet returns the loadings of a load set, found through both
// of its keys, each loading once, in membership order.
func (m *Model) LoadingsByLoadSet(set domain.Reference[domain.LoadSetType]) []*domain.Loading {
	var out []*domain.Loading
	seen := make(map[*domain.Loading]struct{})
	for _, ref := range m.loadMembers.members(m.fullLoadSetRef(set)) {
		l, ok := m.loadings.Find(ref)
		if !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// ConstraintsByConstraintSet returns the constraints of a constraint set,
// found through both of its keys, each constraint once, in membership order.
func (m *Model) ConstraintsByConstraintSet(set domain.Reference[domain.ConstraintSetType]) []*domain.Constraint {
	var out []*domain.Constraint
	seen := make(map[*domain.Constraint]struct{})
	for _, ref := range m.constraintMembers.members(m.fullConstraintSetRef(set)) {
		c, ok := m.constraints.Find(ref)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ConstraintSetsByConstraint returns the constraint sets holding a
// constraint, in catalog order.
func (m *Model) ConstraintSetsByConstraint(ref domain.Reference[domain.ConstraintType]) []*domain.ConstraintSet {
	if c, ok := m.constraints.Find(ref); ok {
		ref = c.Reference()
	}
	holders := make(map[*domain.ConstraintSet]struct{})
	for _, key := range m.constraintMembers.setsOf(ref) {
		if cs, ok := m.constraintSets.Find(key); ok {
			holders[cs] = struct{}{}
		}
	}
	var out []*domain.ConstraintSet
	for _, cs := range m.constraintSets.All() {
		if _, ok := holders[cs]; ok {
			out = append(out, cs)
		}
	}
	return out
}

// LoadSetsByLoading returns the load sets holding a loading, in catalog order.
func (m *Model) LoadSetsByLoading(ref domain.Reference[domain.LoadingType]) []*domain.LoadSet {
	if l, ok := m.loadings.Find(ref); ok {
		ref = l.Reference()
	}
	holders := make(map[*domain.LoadSet]struct{})
	for _, key := range m.loadMembers.setsOf(ref) {
		if ls, ok := m.loadSets.Find(key); ok {
			holders[ls] = struct{}{}
		}
	}
	var out []*domain.LoadSet
	for _, ls := range m.loadSets.All() {
		if _, ok := holders[ls]; ok {
			out = append(out, ls)
		}
	}
	return out
}

// LoadSetSize returns the number of loadings in a load set.
func (m *Model) LoadSetSize(set domain.Reference[domain.LoadSetType]) int {
	return len(m.LoadingsByLoadSet(set))
}

// ConstraintSetSize returns the number of constraints in a constraint set.
func (m *Model) ConstraintSetSize(set domain.Reference[domain.ConstraintSetType]) int {
	return len(m.ConstraintsByConstraintSet(set))
}

// LoadingMemberships lists every loading membership entry.
func (m *Model) LoadingMemberships() []domain.Membership[domain.LoadSetType, domain.LoadingType] {
	return m.loadMembers.entries()
}

// ConstraintMemberships lists every constraint membership entry.
func (m *Model) ConstraintMemberships() []domain.Membership[domain.ConstraintSetType, domain.ConstraintType] {
	return m.constraintMembers.entries()
}

// LoadSetsOf returns the load sets an analysis exercises: the common load
// set first when it exists, then the referenced sets that resolve.
func (m *Model) LoadSetsOf(a *domain.Analysis) []*domain.LoadSet {
	var out []*domain.LoadSet
	seen := make(map[*domain.LoadSet]struct{})
	if common, ok := m.loadSets.Find(domain.CommonLoadSetRef()); ok {
		out = append(out, common)
		seen[common] = struct{}{}
	}
	for _, ref := range a.LoadSets {
		ls, ok := m.loadSets.Find(ref)
		if !ok {
			m.warnUnresolved(domain.EntityLoadSet, ref.String(), a.Reference().String())
			continue
		}
		if _, dup := seen[ls]; dup {
			continue
		}
		seen[ls] = struct{}{}
		out = append(out, ls)
	}
	return out
}

// ConstraintSetsOf returns the constraint sets an analysis exercises: the
// common constraint set first when it exists, then the referenced sets that
// resolve.
func (m *Model) ConstraintSetsOf(a *domain.Analysis) []*domain.ConstraintSet {
	var out []*domain.ConstraintSet
	seen := make(map[*domain.ConstraintSet]struct{})
	if common, ok := m.constraintSets.Find(domain.CommonConstraintSetRef()); ok {
		out = append(out, common)
		seen[common] = struct{}{}
	}
	for _, ref := range a.ConstraintSets {
		cs, ok := m.constraintSets.Find(ref)
		if !ok {
			m.warnUnresolved(domain.EntityConstraintSet, ref.String(), a.Reference().String())
			continue
		}
		if _, dup := seen[cs]; dup {
			continue
		}
		seen[cs] = struct{}{}
		out = append(out, cs)
	}
	return out
}

// ConstraintsOf returns every constraint an analysis exercises, each once.
func (m *Model) ConstraintsOf(a *domain.Analysis) []*domain.Constraint {
	var out []*domain.Constraint
	seen := make(map[*domain.Constraint]struct{})
	for _, cs := range m.ConstraintSetsOf(a) {
		for _, c := range m.ConstraintsByConstraintSet(cs.Reference()) {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// LoadingsOf returns every loading an analysis exercises, each once.
func (m *Model) LoadingsOf(a *domain.Analysis) []*domain.Loading {
	var out []*domain.Loading
	seen := make(map[*domain.Loading]struct{})
	for _, ls := range m.LoadSetsOf(a) {
		for _, l := range m.LoadingsByLoadSet(ls.Reference()) {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}

// AssertionsOf returns the assertion objectives of an analysis.
func (m *Model) AssertionsOf(a *domain.Analysis) []*domain.Objective {
	var out []*domain.Objective
	for _, ref := range a.Objectives {
		o, ok := m.objectives.Find(ref)
		if !ok {
			m.warnUnresolved(domain.EntityObjective, ref.String(), a.Reference().String())
			continue
		}
		if o.IsAssertion() {
			out = append(out, o)
		}
	}
	return out
}

// ActiveLoadSets returns the load sets used by any analysis, in first-seen
// order.
func (m *Model) ActiveLoadSets() []*domain.LoadSet {
	var out []*domain.LoadSet
	seen := make(map[*domain.LoadSet]struct{})
	for _, a := range m.analyses.All() {
		for _, ls := range m.LoadSetsOf(a) {
			if _, dup := seen[ls]; dup {
				continue
			}
			seen[ls] = struct{}{}
			out = append(out, ls)
		}
	}
	return out
}

// ActiveConstraintSets returns the constraint sets used by any analysis, in
// first-seen order.
func (m *Model) ActiveConstraintSets() []*domain.ConstraintSet {
	var out []*domain.ConstraintSet
	seen := make(map[*domain.ConstraintSet]struct{})
	for _, a := range m.analyses.All() {
		for _, cs := range m.ConstraintSetsOf(a) {
			if _, dup := seen[cs]; dup {
				continue
			}
			seen[cs] = struct{}{}
			out = append(out, cs)
		}
	}
	return out
}

func (m *Model) loadSetUsage() map[*domain.LoadSet]int {
	usage := make(map[*domain.LoadSet]int)
	for _, a := range m.analyses.All() {
		for _, ls := range m.LoadSetsOf(a) {
			usage[ls]++
		}
	}
	return usage
}

func (m *Model) constraintSetUsage() map[*domain.ConstraintSet]int {
	usage := make(map[*domain.ConstraintSet]int)
	for _, a := range m.analyses.All() {
		for _, cs := range m.ConstraintSetsOf(a) {
			usage[cs]++
		}
	}
	return usage
}

// CommonLoadSets returns, in catalog order, the load sets used by every
// analysis. DLOAD sets are never common.
func (m *Model) CommonLoadSets() []*domain.LoadSet {
	n := m.analyses.Len()
	if n == 0 {
		return nil
	}
	usage := m.loadSetUsage()
	var out []*domain.LoadSet
	for _, ls := range m.loadSets.All() {
		if ls.Type != domain.LoadSetDLoad && usage[ls] == n {
			out = append(out, ls)
		}
	}
	return out
}

// UncommonLoadSets returns, in catalog order, the active load sets that are
// not common.
func (m *Model) UncommonLoadSets() []*domain.LoadSet {
	n := m.analyses.Len()
	usage := m.loadSetUsage()
	var out []*domain.LoadSet
	for _, ls := range m.loadSets.All() {
		count := usage[ls]
		if count > 0 && (count < n || ls.Type == domain.LoadSetDLoad) {
			out = append(out, ls)
		}
	}
	return out
}

// CommonConstraintSets returns, in catalog order, the constraint sets used
// by every analysis.
func (m *Model) CommonConstraintSets() []*domain.ConstraintSet {
	n := m.analyses.Len()
	if n == 0 {
		return nil
	}
	usage := m.constraintSetUsage()
	var out []*domain.ConstraintSet
	for _, cs := range m.constraintSets.All() {
		if usage[cs] == n {
			out = append(out, cs)
		}
	}
	return out
}

// UncommonConstraintSets returns, in catalog order, the active constraint
// sets that are not common.
func (m *Model) UncommonConstraintSets() []*domain.ConstraintSet {
	n := m.analyses.Len()
	usage := m.constraintSetUsage()
	var out []*domain.ConstraintSet
	for _, cs := range m.constraintSets.All() {
		if count := usage[cs]; count > 0 && count < n {
			out = append(out, cs)
		}
	}
	return out
}
