package snapshot

import (
	"fmt"

	"femtrans/internal/core"
	"femtrans/pkg/domain"
)

// FromModel exports a model. Entities are copied before their node and cell
// positions are rewritten to ids; the model itself is left untouched. Output
// order is catalog order so two exports of the same model are identical.
func FromModel(m *core.Model) (*Document, error) {
	msh := m.Mesh()
	doc := &Document{Version: CurrentVersion, Model: m.Name, Finished: m.Finished()}

	for _, n := range msh.Nodes() {
		if n.Reserved {
			continue
		}
		doc.Nodes = append(doc.Nodes, Node{ID: n.ID, Coordinates: n.Coordinates, DOFS: n.DOFS, DisplacementCS: n.DisplacementCS})
	}
	for _, c := range msh.Cells() {
		doc.Cells = append(doc.Cells, Cell{ID: c.ID, Type: c.Type.Name, Nodes: append([]int(nil), c.Nodes...), Virtual: c.Virtual, ElementID: c.ElementID})
	}
	for _, g := range msh.Groups() {
		doc.Groups = append(doc.Groups, Group{Name: g.Name, OriginalID: g.OriginalID, Comment: g.Comment, Cells: append([]int(nil), g.Cells...)})
	}

	toIDs := remapper{
		node: func(pos int) (int, error) {
			id := m.NodeID(pos)
			if id < 0 {
				return 0, fmt.Errorf("no node at position %d", pos)
			}
			return id, nil
		},
		cell: func(pos int) (int, error) {
			c, ok := msh.FindCell(pos)
			if !ok {
				return 0, fmt.Errorf("no cell at position %d", pos)
			}
			return c.ID, nil
		},
	}

	doc.CoordinateSystems = m.ListCoordinateSystems()
	doc.Values = m.ListValues()
	doc.Materials = m.ListMaterials()
	for _, es := range m.ListElementSets() {
		out := es.Clone()
		if err := toIDs.elementSet(out); err != nil {
			return nil, fmt.Errorf("element set %d: %w", es.ID, err)
		}
		doc.ElementSets = append(doc.ElementSets, out)
	}
	for _, l := range m.ListLoadings() {
		out := l.Clone()
		if err := toIDs.loading(out); err != nil {
			return nil, fmt.Errorf("loading %d: %w", l.ID, err)
		}
		doc.Loadings = append(doc.Loadings, out)
	}
	for _, ls := range m.ListLoadSets() {
		entry := LoadSet{LoadSet: ls}
		for _, l := range m.LoadingsByLoadSet(ls.Reference()) {
			entry.Loadings = append(entry.Loadings, l.Reference())
		}
		doc.LoadSets = append(doc.LoadSets, entry)
	}
	for _, c := range m.ListConstraints() {
		out := c.Clone()
		if err := toIDs.constraint(out); err != nil {
			return nil, fmt.Errorf("constraint %d: %w", c.ID, err)
		}
		doc.Constraints = append(doc.Constraints, out)
	}
	for _, cs := range m.ListConstraintSets() {
		entry := ConstraintSet{ConstraintSet: cs}
		for _, c := range m.ConstraintsByConstraintSet(cs.Reference()) {
			entry.Constraints = append(entry.Constraints, c.Reference())
		}
		doc.ConstraintSets = append(doc.ConstraintSets, entry)
	}
	for _, o := range m.ListObjectives() {
		out := cloneObjective(o)
		if err := toIDs.objective(out); err != nil {
			return nil, fmt.Errorf("objective %d: %w", o.ID, err)
		}
		doc.Objectives = append(doc.Objectives, out)
	}
	for _, a := range m.ListAnalyses() {
		out := cloneAnalysis(a)
		if err := toIDs.analysis(out); err != nil {
			return nil, fmt.Errorf("analysis %d: %w", a.ID, err)
		}
		doc.Analyses = append(doc.Analyses, out)
	}
	for _, mat := range m.ListMaterials() {
		if groups := m.MaterialAssignmentGroups(mat.ID); len(groups) > 0 {
			doc.MaterialAssignments = append(doc.MaterialAssignments, MaterialAssignment{MaterialID: mat.ID, Groups: groups})
		}
	}
	return doc, nil
}

func cloneObjective(o *domain.Objective) *domain.Objective {
	out := *o
	if o.Assertion != nil {
		a := *o.Assertion
		out.Assertion = &a
	}
	if o.Band != nil {
		b := *o.Band
		out.Band = &b
	}
	if o.Value != nil {
		v := *o.Value
		out.Value = &v
	}
	return &out
}

func cloneAnalysis(a *domain.Analysis) *domain.Analysis {
	out := *a
	out.LoadSets = append([]domain.Reference[domain.LoadSetType](nil), a.LoadSets...)
	out.ConstraintSets = append([]domain.Reference[domain.ConstraintSetType](nil), a.ConstraintSets...)
	out.Objectives = append([]domain.Reference[domain.ObjectiveType](nil), a.Objectives...)
	out.BoundaryDOFS = nil
	for n, dofs := range a.BoundaryDOFS {
		out.AddBoundaryDOFS(n, dofs)
	}
	return &out
}
