package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// EmulateLocalDisplacementPass rewrites SPCs on nodes whose displacements are
// expressed in a local coordinate system into global linear multi-point
// constraints, one per blocked DOF.
func EmulateLocalDisplacementPass() Pass { return emulateLocalDisplacementPass{} }

type emulateLocalDisplacementPass struct{}

func (emulateLocalDisplacementPass) Name() string { return "emulate_local_displacement" }

func (emulateLocalDisplacementPass) Enabled(cfg Config) bool { return cfg.EmulateLocalDisplacement }

var globalAxes = [3]domain.Vector3{domain.XAxis, domain.YAxis, domain.ZAxis}

func (emulateLocalDisplacementPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	type rewrite struct {
		spc   *domain.Constraint
		lmpcs []*domain.Constraint
	}
	var rewrites []rewrite

	for _, c := range m.ListConstraints() {
		if c.Type != domain.ConstraintSPC {
			continue
		}
		var lmpcs []*domain.Constraint
		for _, pos := range append([]int(nil), c.Nodes...) {
			node, ok := m.Mesh().FindNode(pos)
			if !ok || node.DisplacementCS == domain.GlobalCS {
				continue
			}
			cs, ok := m.GetCoordinateSystem(node.DisplacementCS)
			if !ok {
				return domain.UnresolvedReferenceError{
					Entity:    domain.EntityCoordinateSystem,
					Reference: domain.RefByID(domain.CoordinateCartesian, node.DisplacementCS).String(),
					From:      "node",
				}
			}
			cs.UpdateLocalBase(node.Coordinates)
			for _, d := range c.DOFSForNode(pos).List() {
				participation := cs.VectorToGlobal(globalAxes[int(d)%3])
				var coefficients [6]float64
				offset := 0
				if d.IsRotation() {
					offset = 3
				}
				copy(coefficients[offset:offset+3], participation[:])
				lmpc := domain.NewConstraint(domain.ConstraintLMPC, domain.NoOriginalID)
				lmpc.Value = c.ValueForDOF(d)
				lmpc.AddParticipation(pos, coefficients)
				lmpcs = append(lmpcs, lmpc)
			}
			c.RemoveNode(pos)
		}
		if len(lmpcs) > 0 {
			rewrites = append(rewrites, rewrite{spc: c, lmpcs: lmpcs})
		}
	}

	for _, rw := range rewrites {
		holders := m.ConstraintSetsByConstraint(rw.spc.Reference())
		for _, lmpc := range rw.lmpcs {
			if err := m.AddConstraint(lmpc); err != nil {
				return err
			}
			for _, cs := range holders {
				if err := m.AddConstraintIntoConstraintSet(lmpc.Reference(), cs.Reference()); err != nil {
					return err
				}
			}
		}
		m.Logger().Debug("local displacement emulated",
			zap.Int("spc_id", rw.spc.ID), zap.Int("lmpcs", len(rw.lmpcs)))
		if len(rw.spc.NodePositions()) == 0 {
			m.RemoveConstraint(rw.spc.Reference())
		}
	}
	return nil
}
