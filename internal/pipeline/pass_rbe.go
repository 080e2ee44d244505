package pipeline

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// MakeCellsFromRBEPass expands the rigid constraints of common constraint
// sets into element sets: RIGID and QUASI_RIGID become RBAR segments from
// the master to each slave, RBE3 becomes one element set per distinct
// (slave DOFs, coefficient) pair. The expanded constraint leaves its set.
func MakeCellsFromRBEPass() Pass { return makeCellsFromRBEPass{} }

type makeCellsFromRBEPass struct{}

func (makeCellsFromRBEPass) Name() string { return "make_cells_from_rbe" }

func (makeCellsFromRBEPass) Enabled(cfg Config) bool { return cfg.MakeCellsFromRBE }

func (makeCellsFromRBEPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, cs := range m.CommonConstraintSets() {
		for _, c := range m.ConstraintsByConstraintSet(cs.Reference()) {
			var err error
			switch c.Type {
			case domain.ConstraintRigid:
				err = expandRigid(m, c)
			case domain.ConstraintQuasiRigid:
				err = expandQuasiRigid(m, c)
			case domain.ConstraintRBE3:
				err = expandRBE3(m, c)
			default:
				continue
			}
			if err != nil {
				return err
			}
			m.RemoveConstraintFromSet(c.Reference(), cs.Reference())
		}
	}
	return nil
}

// rbeName suffixes prefix with the constraint's source id, or its internal
// id for synthesized constraints.
func rbeName(prefix string, c *domain.Constraint) string {
	if c.OriginalID != domain.NoOriginalID {
		return fmt.Sprintf("%s_%d", prefix, c.OriginalID)
	}
	return fmt.Sprintf("%s_i%d", prefix, c.ID)
}

func expandRigid(m *core.Model, c *domain.Constraint) error {
	if c.Master == domain.NoNode {
		return domain.Unsupported(domain.EntityConstraint, c.ID, "RIGID constraint without master node")
	}
	return newRbar(m, rbeName("RBE2", c), "RBE2", c.Master, c.Slaves...)
}

func expandQuasiRigid(m *core.Model, c *domain.Constraint) error {
	if !c.CompletelyRigid() {
		m.Logger().Warn("partially rigid constraint translated as fully rigid",
			zap.Int("id", c.ID),
			zap.Int("original_id", c.OriginalID),
			zap.Stringer("dofs", c.DOFS))
	}
	if len(c.Slaves) != 2 {
		return domain.Unsupported(domain.EntityConstraint, c.ID, "QUASI_RIGID constraint needs exactly 2 slaves, got %d", len(c.Slaves))
	}
	return newRbar(m, rbeName("RBAR", c), "RBAR", c.Slaves[0], c.Slaves[1])
}

func newRbar(m *core.Model, name, comment string, master int, slaves ...int) error {
	mat := domain.NewMaterial(domain.NoOriginalID, domain.RigidNature(1, 0))
	if err := m.AddMaterial(mat); err != nil {
		return err
	}
	es, err := m.NewVirtualElementSet(domain.ElementRbar, name, comment, mat.ID)
	if err != nil {
		return err
	}
	es.Rigid.Master = master
	es.Rigid.MasterDOFS = domain.AllDOFS
	es.Rigid.SlaveDOFS = domain.AllDOFS
	group, err := findGroup(m, name)
	if err != nil {
		return err
	}
	m.Mesh().AllowDOFS(master, domain.AllDOFS)
	for _, slave := range slaves {
		if _, err := addVirtualCell(m, group, mesh.Seg2, master, slave); err != nil {
			return err
		}
		m.Mesh().AllowDOFS(slave, domain.AllDOFS)
	}
	return nil
}

type rbe3Weight struct {
	dofs        domain.DOFS
	coefficient float64
}

func expandRBE3(m *core.Model, c *domain.Constraint) error {
	if c.Master == domain.NoNode {
		return domain.Unsupported(domain.EntityConstraint, c.ID, "RBE3 constraint without master node")
	}
	var order []rbe3Weight
	slaves := make(map[rbe3Weight][]int)
	for _, s := range c.RBE3Slaves {
		w := rbe3Weight{dofs: s.DOFS, coefficient: s.Coefficient}
		if _, ok := slaves[w]; !ok {
			order = append(order, w)
		}
		slaves[w] = append(slaves[w], s.Node)
	}
	for i, w := range order {
		mat := domain.NewMaterial(domain.NoOriginalID, domain.RigidNature(domain.Unavailable, w.coefficient))
		if err := m.AddMaterial(mat); err != nil {
			return err
		}
		name := rbeName(fmt.Sprintf("RBE3_%d", i+1), c)
		es, err := m.NewVirtualElementSet(domain.ElementRbe3, name, "RBE3", mat.ID)
		if err != nil {
			return err
		}
		es.Rigid.Master = c.Master
		es.Rigid.MasterDOFS = c.DOFS
		es.Rigid.SlaveDOFS = w.dofs
		group, err := findGroup(m, name)
		if err != nil {
			return err
		}
		for _, slave := range slaves[w] {
			if _, err := addVirtualCell(m, group, mesh.Seg2, c.Master, slave); err != nil {
				return err
			}
		}
		m.Logger().Debug("rbe3 expanded",
			zap.Int("constraint_id", c.ID),
			zap.String("group", name),
			zap.Int("slaves", len(slaves[w])))
	}
	return nil
}
