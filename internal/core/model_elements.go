package core

import (
	"femtrans/pkg/domain"
)

// VirtualMaterial returns the near-zero stiffness material carried by
// synthetic elements, creating it on first use.
func (m *Model) VirtualMaterial() *domain.Material {
	if mat, ok := m.materials.Get(m.virtualMaterialID); ok {
		return mat
	}
	mat := domain.NewMaterial(domain.NoOriginalID, domain.ElasticNature(1e-12, 0, 0))
	mat.Virtual = true
	_, _ = m.materials.Add(mat)
	m.virtualMaterialID = mat.ID
	return mat
}

// NewVirtualElementSet registers an element set of typ over a fresh cell
// group, both synthesized by the pipeline.
func (m *Model) NewVirtualElementSet(typ domain.ElementSetType, groupName, comment string, materialID int) (*domain.ElementSet, error) {
	if _, err := m.mesh.CreateCellGroup(groupName, domain.NoOriginalID, comment); err != nil {
		return nil, err
	}
	es := domain.NewElementSet(typ, domain.NoOriginalID)
	es.Name = groupName
	es.CellGroup = groupName
	es.MaterialID = materialID
	if err := m.AddElementSet(es); err != nil {
		return nil, err
	}
	return es, nil
}

// ElementNodePositions returns the nodes an element set connects: the
// matrix nodes of direct matrices, else the nodes of its cell group, else
// the explicit nodes of a discrete element.
func (m *Model) ElementNodePositions(es *domain.ElementSet) []int {
	switch {
	case es.Matrix != nil && es.IsMatrix():
		return es.Matrix.NodePositions()
	case es.CellGroup != "":
		return m.mesh.GroupNodePositions(es.CellGroup)
	case es.Discrete != nil:
		return es.Discrete.Nodes
	}
	return nil
}

// ElementCellIDs returns the cell ids of an element set's group.
func (m *Model) ElementCellIDs(es *domain.ElementSet) []int {
	if es.CellGroup == "" {
		return nil
	}
	g, ok := m.mesh.FindGroup(es.CellGroup)
	if !ok {
		return nil
	}
	return append([]int(nil), g.Cells...)
}

// ResetMaterialAssignments drops every material-to-cell-group assignment.
func (m *Model) ResetMaterialAssignments() {
	m.materialAssignments = make(map[int][]string)
}

// HasMaterialAssignments reports whether any assignment exists.
func (m *Model) HasMaterialAssignments() bool { return len(m.materialAssignments) > 0 }

// AssignMaterial records that the cells of group are made of material.
func (m *Model) AssignMaterial(materialID int, group string) {
	for _, g := range m.materialAssignments[materialID] {
		if g == group {
			return
		}
	}
	m.materialAssignments[materialID] = append(m.materialAssignments[materialID], group)
}

// MaterialAssignment returns the cell ids assigned to a material, empty when
// there are none.
func (m *Model) MaterialAssignment(materialID int) []int {
	out := []int{}
	for _, name := range m.materialAssignments[materialID] {
		if g, ok := m.mesh.FindGroup(name); ok {
			out = append(out, g.Cells...)
		}
	}
	return out
}

// MaterialAssignmentGroups returns the cell group names assigned to a material.
func (m *Model) MaterialAssignmentGroups(materialID int) []string {
	return append([]string(nil), m.materialAssignments[materialID]...)
}

// NodeDOFS returns the DOFs allowed at a node position.
func (m *Model) NodeDOFS(position int) (domain.DOFS, bool) {
	n, ok := m.mesh.FindNode(position)
	if !ok {
		return domain.NoDOFS, false
	}
	return n.DOFS, true
}

// NodeID returns the source id of the node at position, or -1.
func (m *Model) NodeID(position int) int {
	n, ok := m.mesh.FindNode(position)
	if !ok {
		return -1
	}
	return n.ID
}
