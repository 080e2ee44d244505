package snapshot

import "femtrans/pkg/domain"

// remapper rewrites the node and cell addresses carried by entities: ids to
// positions on ingestion, positions to ids on export.
type remapper struct {
	node func(int) (int, error)
	cell func(int) (int, error)
}

func (r remapper) nodes(in []int) ([]int, error) {
	if len(in) == 0 {
		return in, nil
	}
	out := make([]int, len(in))
	for i, n := range in {
		mapped, err := r.node(n)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}

func (r remapper) optionalNode(n int) (int, error) {
	if n == domain.NoNode {
		return n, nil
	}
	return r.node(n)
}

func (r remapper) matrix(m *domain.DOFMatrix) error {
	if m == nil || m.Len() == 0 {
		return nil
	}
	var out domain.DOFMatrix
	for _, c := range m.Components {
		row, err := r.node(c.RowNode)
		if err != nil {
			return err
		}
		col, err := r.node(c.ColNode)
		if err != nil {
			return err
		}
		out.Set(row, c.RowDOF, col, c.ColDOF, c.Value)
	}
	*m = out
	return nil
}

func (r remapper) elementSet(es *domain.ElementSet) error {
	if es.Discrete != nil {
		nodes, err := r.nodes(es.Discrete.Nodes)
		if err != nil {
			return err
		}
		es.Discrete.Nodes = nodes
		if err := r.matrix(&es.Discrete.Stiffness); err != nil {
			return err
		}
	}
	if err := r.matrix(es.Matrix); err != nil {
		return err
	}
	if es.Rigid != nil {
		master, err := r.optionalNode(es.Rigid.Master)
		if err != nil {
			return err
		}
		es.Rigid.Master = master
	}
	return nil
}

func (r remapper) loading(l *domain.Loading) error {
	nodes, err := r.nodes(l.Nodes)
	if err != nil {
		return err
	}
	l.Nodes = nodes
	if len(l.Cells) == 0 {
		return nil
	}
	cells := make([]int, len(l.Cells))
	for i, c := range l.Cells {
		if cells[i], err = r.cell(c); err != nil {
			return err
		}
	}
	l.Cells = cells
	return nil
}

func (r remapper) constraint(c *domain.Constraint) error {
	var err error
	if c.Nodes, err = r.nodes(c.Nodes); err != nil {
		return err
	}
	if c.Slaves, err = r.nodes(c.Slaves); err != nil {
		return err
	}
	if c.Type == domain.ConstraintRigid || c.Type == domain.ConstraintRBE3 {
		if c.Master, err = r.optionalNode(c.Master); err != nil {
			return err
		}
	}
	for i := range c.RBE3Slaves {
		if c.RBE3Slaves[i].Node, err = r.node(c.RBE3Slaves[i].Node); err != nil {
			return err
		}
	}
	for i := range c.Participations {
		if c.Participations[i].Node, err = r.node(c.Participations[i].Node); err != nil {
			return err
		}
	}
	return nil
}

func (r remapper) objective(o *domain.Objective) error {
	if o.Assertion == nil || !o.IsNodal() {
		return nil
	}
	node, err := r.optionalNode(o.Assertion.Node)
	if err != nil {
		return err
	}
	o.Assertion.Node = node
	return nil
}

func (r remapper) analysis(a *domain.Analysis) error {
	if len(a.BoundaryDOFS) == 0 {
		return nil
	}
	out := make(map[int]domain.DOFS, len(a.BoundaryDOFS))
	for n, dofs := range a.BoundaryDOFS {
		mapped, err := r.node(n)
		if err != nil {
			return err
		}
		out[mapped] |= dofs
	}
	a.BoundaryDOFS = out
	return nil
}
