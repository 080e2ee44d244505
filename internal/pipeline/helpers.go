package pipeline

import (
	"fmt"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
)

// always is embedded by passes that run regardless of the configuration.
type always struct{}

func (always) Enabled(Config) bool { return true }

// addVirtualCell creates a virtual cell over node positions and appends it to
// group. It returns the new cell id.
func addVirtualCell(m *core.Model, group *mesh.CellGroup, typ mesh.CellType, positions ...int) (int, error) {
	ids := make([]int, 0, len(positions))
	for _, pos := range positions {
		id := m.NodeID(pos)
		if id < 0 {
			return 0, fmt.Errorf("no node at position %d", pos)
		}
		ids = append(ids, id)
	}
	cellPos, err := m.Mesh().AddCell(mesh.AutoID, typ, ids, true)
	if err != nil {
		return 0, err
	}
	cell, _ := m.Mesh().FindCell(cellPos)
	if group != nil {
		group.AddCell(cell.ID)
	}
	return cell.ID, nil
}

// findGroup resolves a cell group the pass itself just created.
func findGroup(m *core.Model, name string) (*mesh.CellGroup, error) {
	g, ok := m.Mesh().FindGroup(name)
	if !ok {
		return nil, fmt.Errorf("cell group %s not found", name)
	}
	return g, nil
}
