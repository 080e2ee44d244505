package domain

import "sort"

// AnalysisType identifies the solution sequence of an analysis.
type AnalysisType string

// Analysis kinds.
const (
	AnalysisLinearMecaStat      AnalysisType = "LINEAR_MECA_STAT"
	AnalysisLinearModal         AnalysisType = "LINEAR_MODAL"
	AnalysisLinearDynaModalFreq AnalysisType = "LINEAR_DYNA_MODAL_FREQ"
	AnalysisNonLinearMecaStat   AnalysisType = "NONLINEAR_MECA_STAT"
)

// Analysis references the sets and objectives it exercises and tracks the
// DOFs its boundary conditions require per node position. The common load
// and constraint sets apply implicitly and are not listed.
type Analysis struct {
	Identity[AnalysisType]
	Label          string                         `json:"label,omitempty"`
	LoadSets       []Reference[LoadSetType]       `json:"load_sets,omitempty"`
	ConstraintSets []Reference[ConstraintSetType] `json:"constraint_sets,omitempty"`
	Objectives     []Reference[ObjectiveType]     `json:"objectives,omitempty"`
	BoundaryDOFS   map[int]DOFS                   `json:"boundary_dofs,omitempty"`
}

// NewAnalysis returns an analysis with no references.
func NewAnalysis(typ AnalysisType, originalID int, label string) *Analysis {
	return &Analysis{Identity: NewIdentity(typ, originalID), Label: label}
}

// AddLoadSet references a load set once.
func (a *Analysis) AddLoadSet(ref Reference[LoadSetType]) {
	if !a.ContainsLoadSet(ref) {
		a.LoadSets = append(a.LoadSets, ref)
	}
}

// AddConstraintSet references a constraint set once.
func (a *Analysis) AddConstraintSet(ref Reference[ConstraintSetType]) {
	if !a.ContainsConstraintSet(ref) {
		a.ConstraintSets = append(a.ConstraintSets, ref)
	}
}

// AddObjective references an objective once.
func (a *Analysis) AddObjective(ref Reference[ObjectiveType]) {
	if !a.ContainsObjective(ref) {
		a.Objectives = append(a.Objectives, ref)
	}
}

// ContainsLoadSet reports whether ref is referenced.
func (a *Analysis) ContainsLoadSet(ref Reference[LoadSetType]) bool {
	return indexOfRef(a.LoadSets, ref) >= 0
}

// ContainsConstraintSet reports whether ref is referenced.
func (a *Analysis) ContainsConstraintSet(ref Reference[ConstraintSetType]) bool {
	return indexOfRef(a.ConstraintSets, ref) >= 0
}

// ContainsObjective reports whether ref is referenced.
func (a *Analysis) ContainsObjective(ref Reference[ObjectiveType]) bool {
	return indexOfRef(a.Objectives, ref) >= 0
}

// RemoveLoadSet drops every reference matching ref.
func (a *Analysis) RemoveLoadSet(ref Reference[LoadSetType]) {
	a.LoadSets = removeRef(a.LoadSets, ref)
}

// RemoveConstraintSet drops every reference matching ref.
func (a *Analysis) RemoveConstraintSet(ref Reference[ConstraintSetType]) {
	a.ConstraintSets = removeRef(a.ConstraintSets, ref)
}

// RemoveObjective drops every reference matching ref.
func (a *Analysis) RemoveObjective(ref Reference[ObjectiveType]) {
	a.Objectives = removeRef(a.Objectives, ref)
}

// AddBoundaryDOFS records DOFs required at a node.
func (a *Analysis) AddBoundaryDOFS(node int, dofs DOFS) {
	if dofs.Empty() {
		return
	}
	if a.BoundaryDOFS == nil {
		a.BoundaryDOFS = make(map[int]DOFS)
	}
	a.BoundaryDOFS[node] |= dofs
}

// FindBoundaryDOFS returns the DOFs required at a node.
func (a *Analysis) FindBoundaryDOFS(node int) DOFS { return a.BoundaryDOFS[node] }

// BoundaryNodes returns the nodes with required DOFs, ascending.
func (a *Analysis) BoundaryNodes() []int {
	out := make([]int, 0, len(a.BoundaryDOFS))
	for n := range a.BoundaryDOFS {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func indexOfRef[K ~string](refs []Reference[K], ref Reference[K]) int {
	for i, r := range refs {
		if r.Matches(ref) {
			return i
		}
	}
	return -1
}

func removeRef[K ~string](refs []Reference[K], ref Reference[K]) []Reference[K] {
	out := refs[:0]
	for _, r := range refs {
		if !r.Matches(ref) {
			out = append(out, r)
		}
	}
	return out
}
