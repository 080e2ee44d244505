package domain

// ConstraintType identifies the kind of constraint.
type ConstraintType string

// Constraint kinds.
const (
	ConstraintSPC        ConstraintType = "SPC"
	ConstraintRigid      ConstraintType = "RIGID"
	ConstraintQuasiRigid ConstraintType = "QUASI_RIGID"
	ConstraintRBE3       ConstraintType = "RBE3"
	ConstraintLMPC       ConstraintType = "LMPC"
)

// NoNode marks an unset node position.
const NoNode = -1

// RBE3Slave is one weighted slave of an RBE3 coupling.
type RBE3Slave struct {
	Node        int     `json:"node"`
	DOFS        DOFS    `json:"dofs"`
	Coefficient float64 `json:"coefficient"`
}

// Participation is the contribution of one node to a linear multi-point
// constraint, one coefficient per DOF.
type Participation struct {
	Node         int        `json:"node"`
	Coefficients [6]float64 `json:"coefficients"`
}

// Constraint is a single boundary condition. Which fields are meaningful
// depends on Type:
//
//	SPC         Nodes, DOFS, Values
//	RIGID       Master, Slaves
//	QUASI_RIGID Slaves, DOFS
//	RBE3        Master, DOFS (master), RBE3Slaves
//	LMPC        Participations, Value
type Constraint struct {
	Identity[ConstraintType]
	Nodes          []int           `json:"nodes,omitempty"`
	DOFS           DOFS            `json:"dofs"`
	Values         [6]float64      `json:"values"`
	Master         int             `json:"master"`
	Slaves         []int           `json:"slaves,omitempty"`
	RBE3Slaves     []RBE3Slave     `json:"rbe3_slaves,omitempty"`
	Participations []Participation `json:"participations,omitempty"`
	Value          float64         `json:"value,omitempty"`
}

// NewConstraint returns an empty constraint of the given kind.
func NewConstraint(typ ConstraintType, originalID int) *Constraint {
	return &Constraint{Identity: NewIdentity(typ, originalID), Master: NoNode}
}

// NewSPC returns a single-point constraint blocking dofs at value.
func NewSPC(originalID int, dofs DOFS, value float64, nodes ...int) *Constraint {
	c := NewConstraint(ConstraintSPC, originalID)
	c.DOFS = dofs
	for _, d := range dofs.List() {
		c.Values[d] = value
	}
	for _, n := range nodes {
		c.AddNode(n)
	}
	return c
}

// AddNode appends a node to an SPC once.
func (c *Constraint) AddNode(node int) {
	if !containsInt(c.Nodes, node) {
		c.Nodes = append(c.Nodes, node)
	}
}

// SetDOF blocks d at value on an SPC.
func (c *Constraint) SetDOF(d DOF, value float64) {
	c.DOFS |= DOFSOf(d)
	c.Values[d] = value
}

// ValueForDOF returns the prescribed SPC value of d.
func (c *Constraint) ValueForDOF(d DOF) float64 { return c.Values[d] }

// AddSlave appends a slave node of a RIGID or QUASI_RIGID constraint.
func (c *Constraint) AddSlave(node int) {
	if !containsInt(c.Slaves, node) {
		c.Slaves = append(c.Slaves, node)
	}
}

// AddRBE3Slave appends a weighted slave.
func (c *Constraint) AddRBE3Slave(node int, dofs DOFS, coefficient float64) {
	c.RBE3Slaves = append(c.RBE3Slaves, RBE3Slave{Node: node, DOFS: dofs, Coefficient: coefficient})
}

// AddParticipation adds coefficients for node to an LMPC, merging with an
// existing participation of the same node.
func (c *Constraint) AddParticipation(node int, coefficients [6]float64) {
	for i := range c.Participations {
		if c.Participations[i].Node == node {
			for d := range coefficients {
				c.Participations[i].Coefficients[d] += coefficients[d]
			}
			return
		}
	}
	c.Participations = append(c.Participations, Participation{Node: node, Coefficients: coefficients})
}

// NodePositions returns every node the constraint touches.
func (c *Constraint) NodePositions() []int {
	switch c.Type {
	case ConstraintSPC:
		return c.Nodes
	case ConstraintRigid:
		out := make([]int, 0, len(c.Slaves)+1)
		if c.Master != NoNode {
			out = append(out, c.Master)
		}
		return append(out, c.Slaves...)
	case ConstraintQuasiRigid:
		return c.Slaves
	case ConstraintRBE3:
		out := make([]int, 0, len(c.RBE3Slaves)+1)
		if c.Master != NoNode {
			out = append(out, c.Master)
		}
		for _, s := range c.RBE3Slaves {
			out = append(out, s.Node)
		}
		return out
	case ConstraintLMPC:
		out := make([]int, 0, len(c.Participations))
		for _, p := range c.Participations {
			out = append(out, p.Node)
		}
		return out
	}
	return nil
}

// DOFSForNode returns the DOFs the constraint acts on at node.
func (c *Constraint) DOFSForNode(node int) DOFS {
	switch c.Type {
	case ConstraintSPC:
		if containsInt(c.Nodes, node) {
			return c.DOFS
		}
	case ConstraintRigid:
		if node == c.Master || containsInt(c.Slaves, node) {
			return AllDOFS
		}
	case ConstraintQuasiRigid:
		if containsInt(c.Slaves, node) {
			return c.DOFS
		}
	case ConstraintRBE3:
		if node == c.Master {
			return c.DOFS
		}
		var dofs DOFS
		for _, s := range c.RBE3Slaves {
			if s.Node == node {
				dofs |= s.DOFS
			}
		}
		return dofs
	case ConstraintLMPC:
		var dofs DOFS
		for _, p := range c.Participations {
			if p.Node != node {
				continue
			}
			for d, coef := range p.Coefficients {
				if coef != 0 {
					dofs |= DOFSOf(DOF(d))
				}
			}
		}
		return dofs
	}
	return NoDOFS
}

// RemoveNode detaches node from the constraint.
func (c *Constraint) RemoveNode(node int) {
	switch c.Type {
	case ConstraintSPC:
		c.Nodes = removeInt(c.Nodes, node)
	case ConstraintRigid, ConstraintQuasiRigid:
		c.Slaves = removeInt(c.Slaves, node)
	case ConstraintRBE3:
		out := c.RBE3Slaves[:0]
		for _, s := range c.RBE3Slaves {
			if s.Node != node {
				out = append(out, s)
			}
		}
		c.RBE3Slaves = out
	case ConstraintLMPC:
		out := c.Participations[:0]
		for _, p := range c.Participations {
			if p.Node != node {
				out = append(out, p)
			}
		}
		c.Participations = out
	}
}

// CompletelyRigid reports whether a QUASI_RIGID constraint couples every DOF.
func (c *Constraint) CompletelyRigid() bool { return c.DOFS == AllDOFS }

// Ineffective reports whether the constraint binds nothing.
func (c *Constraint) Ineffective() bool {
	switch c.Type {
	case ConstraintSPC:
		return len(c.Nodes) == 0 || c.DOFS.Empty()
	case ConstraintRigid, ConstraintQuasiRigid:
		return len(c.Slaves) == 0
	case ConstraintRBE3:
		return len(c.RBE3Slaves) == 0
	case ConstraintLMPC:
		return len(c.Participations) == 0
	}
	return false
}

// Clone returns a deep copy keeping the identity.
func (c *Constraint) Clone() *Constraint {
	out := *c
	out.Nodes = append([]int(nil), c.Nodes...)
	out.Slaves = append([]int(nil), c.Slaves...)
	out.RBE3Slaves = append([]RBE3Slave(nil), c.RBE3Slaves...)
	out.Participations = append([]Participation(nil), c.Participations...)
	return &out
}
