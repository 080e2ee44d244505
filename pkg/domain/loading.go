package domain

// LoadingType identifies the kind of load.
type LoadingType string

// Load kinds.
const (
	LoadNodalForce   LoadingType = "NODAL_FORCE"
	LoadGravity      LoadingType = "GRAVITY"
	LoadRotation     LoadingType = "ROTATION"
	LoadForceSurface LoadingType = "FORCE_SURFACE"
	LoadPressionFace LoadingType = "PRESSION_FACE"
	LoadForceLine    LoadingType = "FORCE_LINE"
)

// ApplicationType classifies what a load is applied to.
type ApplicationType string

// Load application targets.
const (
	ApplicationNode    ApplicationType = "NODE"
	ApplicationElement ApplicationType = "ELEMENT"
	ApplicationLoadSet ApplicationType = "LOADSET"
)

// Loading is a single load. Node loads target node positions, element loads
// target cell positions and cell groups, global loads target the whole set.
type Loading struct {
	Identity[LoadingType]
	Application ApplicationType `json:"application"`
	Nodes       []int           `json:"nodes,omitempty"`
	Cells       []int           `json:"cells,omitempty"`
	CellGroups  []string        `json:"cell_groups,omitempty"`
	// Face lists the node ids of the loaded face when a surface load is
	// applied to a face of a higher-dimensional cell.
	Face     []int   `json:"face,omitempty"`
	Force    Vector3 `json:"force,omitempty"`
	Moment   Vector3 `json:"moment,omitempty"`
	Pressure float64 `json:"pressure,omitempty"`
	// Acceleration and Direction describe gravity; Speed, Center and
	// Direction describe rotation.
	Acceleration float64 `json:"acceleration,omitempty"`
	Speed        float64 `json:"speed,omitempty"`
	Center       Vector3 `json:"center,omitempty"`
	Direction    Vector3 `json:"direction,omitempty"`
}

// NewLoading returns a loading with the default application of its kind.
func NewLoading(typ LoadingType, originalID int) *Loading {
	l := &Loading{Identity: NewIdentity(typ, originalID)}
	switch typ {
	case LoadNodalForce:
		l.Application = ApplicationNode
	case LoadForceSurface, LoadPressionFace, LoadForceLine:
		l.Application = ApplicationElement
	default:
		l.Application = ApplicationLoadSet
	}
	return l
}

// LoadingDimension is the topological dimension a load acts on.
func (l *Loading) LoadingDimension() int {
	switch l.Type {
	case LoadForceSurface, LoadPressionFace:
		return 2
	case LoadForceLine:
		return 1
	default:
		return 0
	}
}

// Ineffective reports whether the load has no effect on any solution.
func (l *Loading) Ineffective() bool {
	switch l.Type {
	case LoadNodalForce:
		return l.Force.IsZero() && l.Moment.IsZero()
	case LoadGravity:
		return l.Acceleration == 0 || l.Direction.IsZero()
	case LoadRotation:
		return l.Speed == 0
	case LoadForceSurface, LoadForceLine:
		return l.Force.IsZero() && l.Moment.IsZero()
	case LoadPressionFace:
		return l.Pressure == 0
	}
	return false
}

// Scale multiplies the load magnitude by coef.
func (l *Loading) Scale(coef float64) {
	l.Force = l.Force.Scale(coef)
	l.Moment = l.Moment.Scale(coef)
	l.Pressure *= coef
	l.Acceleration *= coef
	l.Speed *= coef
}

// DOFSForNode returns the DOFs a node load acts on.
func (l *Loading) DOFSForNode(node int) DOFS {
	if l.Application != ApplicationNode || !containsInt(l.Nodes, node) {
		return NoDOFS
	}
	var dofs DOFS
	for i := 0; i < 3; i++ {
		if l.Force[i] != 0 {
			dofs |= DOFSOf(DOF(i))
		}
		if l.Moment[i] != 0 {
			dofs |= DOFSOf(DOF(i + 3))
		}
	}
	return dofs
}

// NodePositions returns the nodes a node load is applied to.
func (l *Loading) NodePositions() []int {
	if l.Application != ApplicationNode {
		return nil
	}
	return l.Nodes
}

// ClearTargets drops every cell and group target of an element load.
func (l *Loading) ClearTargets() {
	l.Cells = nil
	l.CellGroups = nil
	l.Face = nil
}

// Clone returns a deep copy keeping the identity.
func (l *Loading) Clone() *Loading {
	out := *l
	out.Nodes = append([]int(nil), l.Nodes...)
	out.Cells = append([]int(nil), l.Cells...)
	out.CellGroups = append([]string(nil), l.CellGroups...)
	out.Face = append([]int(nil), l.Face...)
	return &out
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func removeInt(values []int, v int) []int {
	out := values[:0]
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
