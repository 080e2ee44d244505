package pipeline

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats/scalar"
)

// spcValueTolerance bounds the difference under which two SPC values on the
// same node DOF count as equal.
const spcValueTolerance = 1e-9

type nodeDOF struct {
	node int
	dof  domain.DOF
}

func sameSPCValue(a, b float64) bool {
	return scalar.EqualWithinAbsOrRel(a, b, spcValueTolerance, spcValueTolerance)
}

// RemoveRedundantSpcsPass drops, per analysis, SPC DOFs already blocked at
// the same value by an earlier SPC of the analysis. Two SPCs blocking the
// same node DOF at different values contradict each other. An SPC that other
// analyses still need is left untouched; the analysis gets a trimmed copy.
func RemoveRedundantSpcsPass() Pass { return removeRedundantSpcsPass{} }

type removeRedundantSpcsPass struct{}

func (removeRedundantSpcsPass) Name() string { return "remove_redundant_spcs" }

func (removeRedundantSpcsPass) Enabled(cfg Config) bool { return cfg.RemoveRedundantSpcs }

func (removeRedundantSpcsPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, a := range m.ListAnalyses() {
		blocked := make(map[nodeDOF]float64)
		for _, c := range m.ConstraintsOf(a) {
			if c.Type != domain.ConstraintSPC {
				continue
			}
			dropped := make(map[int]domain.DOFS)
			var order []int
			for _, node := range c.Nodes {
				var redundant domain.DOFS
				for _, d := range c.DOFS.List() {
					key := nodeDOF{node: node, dof: d}
					value := c.ValueForDOF(d)
					previous, ok := blocked[key]
					if !ok {
						blocked[key] = value
						continue
					}
					if !sameSPCValue(previous, value) {
						return domain.ModelContradictionError{
							Entity: domain.EntityAnalysis,
							ID:     a.ID,
							Reason: fmt.Sprintf("node %d dof %s is blocked at %g and at %g", m.NodeID(node), d, previous, value),
						}
					}
					redundant |= domain.DOFSOf(d)
				}
				if !redundant.Empty() {
					dropped[node] = redundant
					order = append(order, node)
				}
			}
			if len(order) == 0 {
				continue
			}
			if err := detachSPCNodes(m, a, c, order, dropped); err != nil {
				return err
			}
			for _, node := range order {
				m.Logger().Debug("redundant spc removed",
					zap.Int("analysis_id", a.ID),
					zap.Int("constraint_id", c.ID),
					zap.Int("node_id", m.NodeID(node)),
					zap.Stringer("dofs", dropped[node]))
			}
		}
	}
	return nil
}

// detachSPCNodes removes the dropped DOFs of spc at each node for analysis a.
// When every other analysis reaching spc blocks the same DOFs elsewhere, spc
// itself is trimmed. Otherwise spc moves to a new set kept by those analyses
// and a receives a trimmed copy instead.
func detachSPCNodes(m *core.Model, a *domain.Analysis, spc *domain.Constraint, nodes []int, dropped map[int]domain.DOFS) error {
	others := analysesNeedingSPC(m, a, spc, dropped)
	if len(others) == 0 {
		holders := m.ConstraintSetsByConstraint(spc.Reference())
		kept := remainderSPCs(spc, nodes, dropped)
		for _, node := range nodes {
			spc.RemoveNode(node)
		}
		return addIntoSets(m, kept, holders)
	}

	trimmed := spc.Clone()
	trimmed.Identity = domain.NewIdentity(domain.ConstraintSPC, domain.NoOriginalID)
	for _, node := range nodes {
		trimmed.RemoveNode(node)
	}
	replacements := remainderSPCs(spc, nodes, dropped)
	if !trimmed.Ineffective() {
		replacements = append([]*domain.Constraint{trimmed}, replacements...)
	}

	users := make(map[*domain.ConstraintSet][]*domain.Analysis)
	for _, b := range m.ListAnalyses() {
		if b == a {
			continue
		}
		for _, cs := range m.ConstraintSetsOf(b) {
			users[cs] = append(users[cs], b)
		}
	}
	var private *domain.ConstraintSet
	for _, cs := range m.ConstraintSetsOf(a) {
		if !containsConstraint(m.ConstraintsByConstraintSet(cs.Reference()), spc) {
			continue
		}
		m.DetachConstraintFromSet(spc.Reference(), cs.Reference())
		shared := users[cs]
		if len(shared) > 0 {
			keep := domain.NewConstraintSet(domain.ConstraintSetSPC, domain.NoOriginalID)
			if err := m.AddConstraintSet(keep); err != nil {
				return err
			}
			if err := m.AddConstraintIntoConstraintSet(spc.Reference(), keep.Reference()); err != nil {
				return err
			}
			for _, b := range shared {
				b.AddConstraintSet(keep.Reference())
			}
		}
		if len(replacements) == 0 {
			continue
		}
		if len(shared) > 0 {
			if private == nil {
				private = domain.NewConstraintSet(domain.ConstraintSetSPC, domain.NoOriginalID)
				if err := m.AddConstraintSet(private); err != nil {
					return err
				}
				a.AddConstraintSet(private.Reference())
			}
			cs = private
		}
		if err := addIntoSets(m, replacements, []*domain.ConstraintSet{cs}); err != nil {
			return err
		}
	}
	return nil
}

// analysesNeedingSPC returns the analyses other than a that reach spc and do
// not block every dropped DOF at the same value through another SPC.
func analysesNeedingSPC(m *core.Model, a *domain.Analysis, spc *domain.Constraint, dropped map[int]domain.DOFS) []*domain.Analysis {
	var out []*domain.Analysis
	for _, b := range m.ListAnalyses() {
		if b == a {
			continue
		}
		constraints := m.ConstraintsOf(b)
		if !containsConstraint(constraints, spc) {
			continue
		}
		if !coveredElsewhere(constraints, spc, dropped) {
			out = append(out, b)
		}
	}
	return out
}

func coveredElsewhere(constraints []*domain.Constraint, spc *domain.Constraint, dropped map[int]domain.DOFS) bool {
	for node, dofs := range dropped {
		for _, d := range dofs.List() {
			covered := false
			for _, o := range constraints {
				if o == spc || o.Type != domain.ConstraintSPC {
					continue
				}
				if o.DOFSForNode(node).Contains(d) && sameSPCValue(o.ValueForDOF(d), spc.ValueForDOF(d)) {
					covered = true
					break
				}
			}
			if !covered {
				return false
			}
		}
	}
	return true
}

// remainderSPCs builds, per node, an SPC holding the DOFs of spc that stay
// blocked once the dropped ones are removed.
func remainderSPCs(spc *domain.Constraint, nodes []int, dropped map[int]domain.DOFS) []*domain.Constraint {
	var out []*domain.Constraint
	for _, node := range nodes {
		remaining := spc.DOFS.Minus(dropped[node])
		if remaining.Empty() {
			continue
		}
		kept := domain.NewConstraint(domain.ConstraintSPC, domain.NoOriginalID)
		kept.AddNode(node)
		for _, d := range remaining.List() {
			kept.SetDOF(d, spc.ValueForDOF(d))
		}
		out = append(out, kept)
	}
	return out
}

func addIntoSets(m *core.Model, constraints []*domain.Constraint, sets []*domain.ConstraintSet) error {
	for _, c := range constraints {
		if c.ID == domain.NoID {
			if err := m.AddConstraint(c); err != nil {
				return err
			}
		}
		for _, cs := range sets {
			if err := m.AddConstraintIntoConstraintSet(c.Reference(), cs.Reference()); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsConstraint(constraints []*domain.Constraint, c *domain.Constraint) bool {
	for _, o := range constraints {
		if o == c {
			return true
		}
	}
	return false
}
