package domain

// ElementSetType identifies the element family of an ElementSet.
type ElementSetType string

// Element set families.
const (
	ElementCircularSectionBeam    ElementSetType = "CIRCULAR_SECTION_BEAM"
	ElementRectangularSectionBeam ElementSetType = "RECTANGULAR_SECTION_BEAM"
	ElementGenericSectionBeam     ElementSetType = "GENERIC_SECTION_BEAM"
	ElementStructuralSegment      ElementSetType = "STRUCTURAL_SEGMENT"
	ElementShell                  ElementSetType = "SHELL"
	ElementContinuum              ElementSetType = "CONTINUUM"
	ElementDiscrete0D             ElementSetType = "DISCRETE_0D"
	ElementDiscrete1D             ElementSetType = "DISCRETE_1D"
	ElementNodalMass              ElementSetType = "NODAL_MASS"
	ElementStiffnessMatrix        ElementSetType = "STIFFNESS_MATRIX"
	ElementMassMatrix             ElementSetType = "MASS_MATRIX"
	ElementDampingMatrix          ElementSetType = "DAMPING_MATRIX"
	ElementRbar                   ElementSetType = "RBAR"
	ElementRbe3                   ElementSetType = "RBE3"
	ElementScalarSpring           ElementSetType = "SCALAR_SPRING"
)

// BeamModel selects the beam theory.
type BeamModel string

// Beam theories.
const (
	BeamEuler      BeamModel = "EULER"
	BeamTimoshenko BeamModel = "TIMOSHENKO"
)

// BeamSection describes a beam cross-section.
type BeamSection struct {
	Model  BeamModel `json:"model"`
	Radius float64   `json:"radius,omitempty"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Area   float64   `json:"area,omitempty"`
}

// Discrete carries the stiffness of a discrete point or segment element.
// Nodes is used when the element set has no cell group yet.
type Discrete struct {
	DOFS      DOFS      `json:"dofs"`
	Nodes     []int     `json:"nodes,omitempty"`
	Stiffness DOFMatrix `json:"stiffness"`
	Mass      float64   `json:"mass,omitempty"`
}

// HasRotations reports whether the element carries rotational stiffness or
// was declared with rotational DOFs.
func (d *Discrete) HasRotations() bool {
	return d.DOFS.ContainsAnyOf(Rotations) || d.Stiffness.HasRotations()
}

// RigidElement is the payload of RBAR and RBE3 element sets.
type RigidElement struct {
	Master     int  `json:"master"`
	MasterDOFS DOFS `json:"master_dofs"`
	SlaveDOFS  DOFS `json:"slave_dofs"`
}

// SpringCells lists the cells of a scalar spring acting between two DOFs.
type SpringCells struct {
	DOF1  DOF   `json:"dof1"`
	DOF2  DOF   `json:"dof2"`
	Cells []int `json:"cells"`
}

// ScalarSpring is the payload of SCALAR_SPRING element sets.
type ScalarSpring struct {
	Stiffness float64       `json:"stiffness"`
	Damping   float64       `json:"damping"`
	ByDOFS    []SpringCells `json:"by_dofs"`
}

// AddSpring registers cell for the (dof1, dof2) pair.
func (s *ScalarSpring) AddSpring(cell int, dof1, dof2 DOF) {
	for i := range s.ByDOFS {
		if s.ByDOFS[i].DOF1 == dof1 && s.ByDOFS[i].DOF2 == dof2 {
			s.ByDOFS[i].Cells = append(s.ByDOFS[i].Cells, cell)
			return
		}
	}
	s.ByDOFS = append(s.ByDOFS, SpringCells{DOF1: dof1, DOF2: dof2, Cells: []int{cell}})
}

// ElementSet groups cells sharing an element family, a material and
// family-specific properties. CellGroup and MaterialID are non-owning.
type ElementSet struct {
	Identity[ElementSetType]
	Name          string        `json:"name,omitempty"`
	CellGroup     string        `json:"cell_group,omitempty"`
	MaterialID    int           `json:"material_id,omitempty"`
	AdditionalRho float64       `json:"additional_rho,omitempty"`
	Beam          *BeamSection  `json:"beam,omitempty"`
	Discrete      *Discrete     `json:"discrete,omitempty"`
	Matrix        *DOFMatrix    `json:"matrix,omitempty"`
	Rigid         *RigidElement `json:"rigid,omitempty"`
	Spring        *ScalarSpring `json:"spring,omitempty"`
	NodalMass     float64       `json:"nodal_mass,omitempty"`
}

// NewElementSet returns an element set of the given family.
func NewElementSet(typ ElementSetType, originalID int) *ElementSet {
	es := &ElementSet{Identity: NewIdentity(typ, originalID)}
	switch typ {
	case ElementCircularSectionBeam, ElementRectangularSectionBeam, ElementGenericSectionBeam:
		es.Beam = &BeamSection{Model: BeamEuler}
	case ElementDiscrete0D, ElementDiscrete1D:
		es.Discrete = &Discrete{}
	case ElementStiffnessMatrix, ElementMassMatrix, ElementDampingMatrix:
		es.Matrix = &DOFMatrix{}
	case ElementRbar, ElementRbe3:
		es.Rigid = &RigidElement{}
	case ElementScalarSpring:
		es.Spring = &ScalarSpring{}
	}
	return es
}

// IsBeam reports whether the set is a beam family.
func (es *ElementSet) IsBeam() bool {
	switch es.Type {
	case ElementCircularSectionBeam, ElementRectangularSectionBeam, ElementGenericSectionBeam, ElementStructuralSegment:
		return true
	}
	return false
}

// IsShell reports whether the set is a shell.
func (es *ElementSet) IsShell() bool { return es.Type == ElementShell }

// IsMatrix reports whether the set is a direct matrix.
func (es *ElementSet) IsMatrix() bool {
	switch es.Type {
	case ElementStiffnessMatrix, ElementMassMatrix, ElementDampingMatrix:
		return true
	}
	return false
}

// IsDiscrete reports whether the set is a discrete point or segment.
func (es *ElementSet) IsDiscrete() bool {
	return es.Type == ElementDiscrete0D || es.Type == ElementDiscrete1D
}

// DOFSForNode returns the DOFs the element family activates at a node it
// connects.
func (es *ElementSet) DOFSForNode(node int) DOFS {
	switch {
	case es.IsBeam(), es.IsShell():
		return AllDOFS
	case es.Type == ElementRbar || es.Type == ElementRbe3:
		return AllDOFS
	case es.IsMatrix():
		return es.Matrix.DOFSForNode(node)
	case es.IsDiscrete():
		if es.Discrete.HasRotations() {
			return AllDOFS
		}
		return Translations
	case es.Type == ElementScalarSpring:
		var dofs DOFS
		for _, s := range es.Spring.ByDOFS {
			dofs |= DOFSOf(s.DOF1, s.DOF2)
		}
		return dofs
	default:
		return Translations
	}
}

// HasAdditionalMass reports whether a distributed non-structural mass is set.
func (es *ElementSet) HasAdditionalMass() bool { return es.AdditionalRho != 0 }

// Clone returns a deep copy keeping the identity; callers reset it when the
// copy is registered as a new entity.
func (es *ElementSet) Clone() *ElementSet {
	out := *es
	if es.Beam != nil {
		b := *es.Beam
		out.Beam = &b
	}
	if es.Discrete != nil {
		d := *es.Discrete
		d.Nodes = append([]int(nil), es.Discrete.Nodes...)
		d.Stiffness = es.Discrete.Stiffness.Clone()
		out.Discrete = &d
	}
	if es.Matrix != nil {
		m := es.Matrix.Clone()
		out.Matrix = &m
	}
	if es.Rigid != nil {
		r := *es.Rigid
		out.Rigid = &r
	}
	if es.Spring != nil {
		s := ScalarSpring{Stiffness: es.Spring.Stiffness, Damping: es.Spring.Damping}
		for _, sc := range es.Spring.ByDOFS {
			s.ByDOFS = append(s.ByDOFS, SpringCells{DOF1: sc.DOF1, DOF2: sc.DOF2, Cells: append([]int(nil), sc.Cells...)})
		}
		out.Spring = &s
	}
	return &out
}
