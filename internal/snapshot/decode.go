package snapshot

import (
	"fmt"
	"io"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// Decode reads a document and builds the model it describes.
func Decode(r io.Reader, logger *zap.Logger) (*core.Model, error) {
	doc, err := Read(r)
	if err != nil {
		return nil, err
	}
	return doc.Build(logger)
}

// Build creates a model over a fresh mesh. Entities are registered through
// the model API in dependency order, memberships last, so that catalog ids
// follow document order.
func (d *Document) Build(logger *zap.Logger) (*core.Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	msh := mesh.New(mesh.WithLogger(logger))
	if err := d.buildMesh(msh); err != nil {
		return nil, err
	}
	m := core.NewModel(d.Model, msh, core.WithLogger(logger))
	toPositions := remapper{
		node: func(id int) (int, error) { return msh.FindOrReserveNode(id), nil },
		cell: func(id int) (int, error) {
			pos, ok := msh.FindCellPosition(id)
			if !ok {
				return 0, domain.UnresolvedReferenceError{Entity: domain.EntityCell, Reference: fmt.Sprintf("cell %d", id), From: "loading"}
			}
			return pos, nil
		},
	}

	for _, cs := range d.CoordinateSystems {
		if err := m.AddCoordinateSystem(cs); err != nil {
			return nil, err
		}
	}
	for _, v := range d.Values {
		if _, err := m.AddValue(v); err != nil {
			return nil, err
		}
	}
	for _, mat := range d.Materials {
		if err := m.AddMaterial(mat); err != nil {
			return nil, err
		}
	}
	for _, es := range d.ElementSets {
		fillPayload(es)
		if err := toPositions.elementSet(es); err != nil {
			return nil, fmt.Errorf("element set %d: %w", es.OriginalID, err)
		}
		if err := m.AddElementSet(es); err != nil {
			return nil, err
		}
	}
	for _, l := range d.Loadings {
		if l.Application == "" {
			l.Application = domain.NewLoading(l.Type, l.OriginalID).Application
		}
		if err := toPositions.loading(l); err != nil {
			return nil, fmt.Errorf("loading %d: %w", l.OriginalID, err)
		}
		if err := m.AddLoading(l); err != nil {
			return nil, err
		}
	}
	for _, ls := range d.LoadSets {
		if ls.LoadSet == nil {
			return nil, fmt.Errorf("load set without type")
		}
		if err := m.AddLoadSet(ls.LoadSet); err != nil {
			return nil, err
		}
	}
	for _, ls := range d.LoadSets {
		for _, ref := range ls.Loadings {
			if err := m.AddLoadingIntoLoadSet(ref, ls.Reference()); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range d.Constraints {
		if c.Type != domain.ConstraintRigid && c.Type != domain.ConstraintRBE3 {
			c.Master = domain.NoNode
		} else if c.Master == domain.NoID {
			return nil, domain.UnresolvedReferenceError{Entity: domain.EntityNode, Reference: "master node", From: fmt.Sprintf("%s constraint %d", c.Type, c.OriginalID)}
		}
		if err := toPositions.constraint(c); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", c.OriginalID, err)
		}
		if err := m.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	for _, cs := range d.ConstraintSets {
		if cs.ConstraintSet == nil {
			return nil, fmt.Errorf("constraint set without type")
		}
		if err := m.AddConstraintSet(cs.ConstraintSet); err != nil {
			return nil, err
		}
	}
	for _, cs := range d.ConstraintSets {
		for _, ref := range cs.Constraints {
			if err := m.AddConstraintIntoConstraintSet(ref, cs.Reference()); err != nil {
				return nil, err
			}
		}
	}
	for _, o := range d.Objectives {
		if o.Assertion != nil && !o.IsNodal() {
			o.Assertion.Node = domain.NoNode
		}
		if err := toPositions.objective(o); err != nil {
			return nil, fmt.Errorf("objective %d: %w", o.OriginalID, err)
		}
		if err := m.AddObjective(o); err != nil {
			return nil, err
		}
	}
	for _, a := range d.Analyses {
		if err := toPositions.analysis(a); err != nil {
			return nil, fmt.Errorf("analysis %d: %w", a.OriginalID, err)
		}
		if err := m.AddAnalysis(a); err != nil {
			return nil, err
		}
	}
	for _, ma := range d.MaterialAssignments {
		if _, ok := m.GetMaterial(ma.MaterialID); !ok {
			return nil, domain.UnresolvedReferenceError{Entity: domain.EntityMaterial, Reference: fmt.Sprintf("material %d", ma.MaterialID), From: "material assignment"}
		}
		for _, g := range ma.Groups {
			m.AssignMaterial(ma.MaterialID, g)
		}
	}
	if d.Finished {
		m.MarkFinished()
	}
	logger.Debug("snapshot decoded",
		zap.String("model", d.Model),
		zap.Int("nodes", len(d.Nodes)),
		zap.Int("cells", len(d.Cells)))
	return m, nil
}

func (d *Document) buildMesh(msh *mesh.Mesh) error {
	for _, n := range d.Nodes {
		pos := msh.AddNode(n.ID, n.Coordinates, n.DisplacementCS)
		msh.AllowDOFS(pos, n.DOFS)
	}
	for _, c := range d.Cells {
		typ, ok := mesh.CellTypeByName(c.Type)
		if !ok {
			return domain.Unsupported(domain.EntityCell, c.ID, "unknown cell type %q", c.Type)
		}
		if _, err := msh.AddCell(c.ID, typ, c.Nodes, c.Virtual); err != nil {
			return err
		}
	}
	for _, g := range d.Groups {
		group, err := msh.CreateCellGroup(g.Name, g.OriginalID, g.Comment)
		if err != nil {
			return err
		}
		for _, id := range g.Cells {
			group.AddCell(id)
		}
	}
	return nil
}

// fillPayload gives an element set decoded without its variant payload the
// empty payload of its type.
func fillPayload(es *domain.ElementSet) {
	fresh := domain.NewElementSet(es.Type, es.OriginalID)
	if es.Beam == nil {
		es.Beam = fresh.Beam
	}
	if es.Discrete == nil {
		es.Discrete = fresh.Discrete
	}
	if es.Matrix == nil {
		es.Matrix = fresh.Matrix
	}
	if es.Rigid == nil {
		es.Rigid = fresh.Rigid
	}
	if es.Spring == nil {
		es.Spring = fresh.Spring
	}
}
