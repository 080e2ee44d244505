package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
)

const (
	rigidDisplayGroup = "VRigid"
	rbe3DisplayGroup  = "VRBE3"
	displayBeamRadius = 0.001
)

// DisplayHomogeneousConstraintPass mirrors RIGID and RBE3 constraints into
// near-zero stiffness beams from the master to each slave so viewers can
// draw the coupling.
func DisplayHomogeneousConstraintPass() Pass { return displayHomogeneousConstraintPass{} }

type displayHomogeneousConstraintPass struct{}

func (displayHomogeneousConstraintPass) Name() string { return "display_homogeneous_constraint" }

func (displayHomogeneousConstraintPass) Enabled(cfg Config) bool {
	return cfg.DisplayHomogeneousConstraint
}

func (displayHomogeneousConstraintPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	groups := make(map[string]*mesh.CellGroup)
	for _, cs := range m.ActiveConstraintSets() {
		for _, c := range m.ConstraintsByConstraintSet(cs.Reference()) {
			var name string
			var slaves []int
			switch c.Type {
			case domain.ConstraintRigid:
				name, slaves = rigidDisplayGroup, c.Slaves
			case domain.ConstraintRBE3:
				name = rbe3DisplayGroup
				for _, s := range c.RBE3Slaves {
					slaves = append(slaves, s.Node)
				}
			default:
				continue
			}
			if c.Master == domain.NoNode {
				continue
			}
			group, ok := groups[name]
			if !ok {
				var err error
				if group, err = newDisplayBeamGroup(m, name); err != nil {
					return err
				}
				groups[name] = group
			}
			m.Mesh().AllowDOFS(c.Master, domain.AllDOFS)
			for _, slave := range slaves {
				if _, err := addVirtualCell(m, group, mesh.Seg2, c.Master, slave); err != nil {
					return err
				}
				m.Mesh().AllowDOFS(slave, domain.AllDOFS)
			}
		}
	}
	return nil
}

func newDisplayBeamGroup(m *core.Model, name string) (*mesh.CellGroup, error) {
	es, err := m.NewVirtualElementSet(domain.ElementCircularSectionBeam, name, "", m.VirtualMaterial().ID)
	if err != nil {
		return nil, err
	}
	es.Beam.Radius = displayBeamRadius
	es.Beam.Model = domain.BeamEuler
	return findGroup(m, name)
}
