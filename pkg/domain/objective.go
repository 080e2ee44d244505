package domain

// ObjectiveType identifies the kind of objective.
type ObjectiveType string

// Objective kinds. The first three are assertions used for regression
// checks, the rest parameterize analyses.
const (
	ObjectiveNodalDisplacementAssertion        ObjectiveType = "NODAL_DISPLACEMENT_ASSERTION"
	ObjectiveNodalComplexDisplacementAssertion ObjectiveType = "NODAL_COMPLEX_DISPLACEMENT_ASSERTION"
	ObjectiveFrequencyAssertion                ObjectiveType = "FREQUENCY_ASSERTION"
	ObjectiveFrequencyTarget                   ObjectiveType = "FREQUENCY_TARGET"
	ObjectiveFrequencyBand                     ObjectiveType = "FREQUENCY_BAND"
	ObjectiveModalDamping                      ObjectiveType = "MODAL_DAMPING"
	ObjectiveNonLinearStrategy                 ObjectiveType = "NONLINEAR_STRATEGY"
)

// Assertion holds the expected result of a regression check.
type Assertion struct {
	Tolerance float64 `json:"tolerance"`
	// Nodal assertions.
	Node      int     `json:"node"`
	DOF       DOF     `json:"dof"`
	Value     float64 `json:"value,omitempty"`
	Imaginary float64 `json:"imaginary,omitempty"`
	Instant   float64 `json:"instant,omitempty"`
	Frequency float64 `json:"frequency,omitempty"`
	// Frequency assertions.
	Number int `json:"number,omitempty"`
}

// FrequencyBand bounds a modal extraction.
type FrequencyBand struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	NumMax int     `json:"num_max"`
	Norm   string  `json:"norm"`
}

// Objective is an assertion or an analysis parameter.
type Objective struct {
	Identity[ObjectiveType]
	Assertion  *Assertion            `json:"assertion,omitempty"`
	Band       *FrequencyBand        `json:"band,omitempty"`
	Value      *Reference[ValueType] `json:"value,omitempty"`
	Increments int                   `json:"increments,omitempty"`
}

// NewNodalDisplacementAssertion builds an assertion on node/dof.
func NewNodalDisplacementAssertion(originalID, node int, dof DOF, value, tolerance float64) *Objective {
	return &Objective{
		Identity:  NewIdentity(ObjectiveNodalDisplacementAssertion, originalID),
		Assertion: &Assertion{Node: node, DOF: dof, Value: value, Tolerance: tolerance},
	}
}

// NewFrequencyAssertion builds an assertion on the n-th eigen frequency.
func NewFrequencyAssertion(originalID, number int, value, tolerance float64) *Objective {
	return &Objective{
		Identity:  NewIdentity(ObjectiveFrequencyAssertion, originalID),
		Assertion: &Assertion{Node: NoNode, Number: number, Value: value, Tolerance: tolerance},
	}
}

// NewFrequencyBand builds a band parameter; norm defaults to MASS.
func NewFrequencyBand(originalID int, lower, upper float64, numMax int, norm string) *Objective {
	if norm == "" {
		norm = "MASS"
	}
	return &Objective{
		Identity: NewIdentity(ObjectiveFrequencyBand, originalID),
		Band:     &FrequencyBand{Lower: lower, Upper: upper, NumMax: numMax, Norm: norm},
	}
}

// IsAssertion reports whether the objective is a regression check.
func (o *Objective) IsAssertion() bool {
	switch o.Type {
	case ObjectiveNodalDisplacementAssertion, ObjectiveNodalComplexDisplacementAssertion, ObjectiveFrequencyAssertion:
		return true
	}
	return false
}

// IsNodal reports whether the assertion targets a node DOF.
func (o *Objective) IsNodal() bool {
	return o.Type == ObjectiveNodalDisplacementAssertion || o.Type == ObjectiveNodalComplexDisplacementAssertion
}

// NodePositions returns the nodes a nodal assertion checks.
func (o *Objective) NodePositions() []int {
	if !o.IsNodal() || o.Assertion == nil || o.Assertion.Node == NoNode {
		return nil
	}
	return []int{o.Assertion.Node}
}

// DOFSForNode returns the DOFs a nodal assertion checks at node.
func (o *Objective) DOFSForNode(node int) DOFS {
	if !o.IsNodal() || o.Assertion == nil || o.Assertion.Node != node {
		return NoDOFS
	}
	return DOFSOf(o.Assertion.DOF)
}
