package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// BuildCoordinateSystemsPass resolves the basis of every coordinate system.
func BuildCoordinateSystemsPass() Pass { return buildCoordinateSystemsPass{} }

type buildCoordinateSystemsPass struct{ always }

func (buildCoordinateSystemsPass) Name() string { return "build_coordinate_systems" }

func (buildCoordinateSystemsPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, cs := range m.ListCoordinateSystems() {
		if err := cs.Build(); err != nil {
			return err
		}
	}
	return nil
}

// PropagateDOFSPass allows at every node the DOFs its elements activate, and
// records on each analysis the DOFs its boundary conditions require.
func PropagateDOFSPass() Pass { return propagateDOFSPass{} }

type propagateDOFSPass struct{ always }

func (propagateDOFSPass) Name() string { return "propagate_dofs" }

func (propagateDOFSPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	msh := m.Mesh()
	for _, es := range m.ListElementSets() {
		for _, pos := range m.ElementNodePositions(es) {
			msh.AllowDOFS(pos, es.DOFSForNode(pos))
		}
	}
	for _, a := range m.ListAnalyses() {
		for _, c := range m.ConstraintsOf(a) {
			for _, pos := range c.NodePositions() {
				a.AddBoundaryDOFS(pos, c.DOFSForNode(pos))
			}
		}
		for _, l := range m.LoadingsOf(a) {
			for _, pos := range l.NodePositions() {
				a.AddBoundaryDOFS(pos, l.DOFSForNode(pos))
			}
		}
	}
	return nil
}

// RemoveAssertionsMissingDOFSPass drops assertions checking a DOF that
// neither the node nor the analysis boundary conditions provide.
func RemoveAssertionsMissingDOFSPass() Pass { return removeAssertionsMissingDOFSPass{} }

type removeAssertionsMissingDOFSPass struct{ always }

func (removeAssertionsMissingDOFSPass) Name() string { return "remove_assertions_missing_dofs" }

func (removeAssertionsMissingDOFSPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	var unreachable []*domain.Objective
	seen := make(map[*domain.Objective]struct{})
	for _, a := range m.ListAnalyses() {
		for _, o := range m.AssertionsOf(a) {
			for _, pos := range o.NodePositions() {
				checked := o.DOFSForNode(pos)
				if checked.Empty() {
					continue
				}
				nodeDOFS, _ := m.NodeDOFS(pos)
				if nodeDOFS.Plus(a.FindBoundaryDOFS(pos)).ContainsAll(checked) {
					continue
				}
				if _, dup := seen[o]; !dup {
					seen[o] = struct{}{}
					unreachable = append(unreachable, o)
				}
			}
		}
	}
	for _, o := range unreachable {
		m.Logger().Debug("removed unreachable assertion",
			zap.Int("id", o.ID), zap.Int("original_id", o.OriginalID))
		m.RemoveObjective(o.Reference())
	}
	return nil
}
