package pipeline

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
)

// GenerateSkinPass creates a virtual surface cell for element loads applied
// to a face of a higher-dimensional cell and retargets the load to it.
func GenerateSkinPass() Pass { return generateSkinPass{} }

type generateSkinPass struct{}

func (generateSkinPass) Name() string { return "generate_skin" }

func (generateSkinPass) Enabled(cfg Config) bool { return cfg.CreateSkin }

func (generateSkinPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, l := range m.ListLoadings() {
		if l.Application != domain.ApplicationElement {
			continue
		}
		if !cellDimensionGreaterThan(m, l, l.LoadingDimension()) {
			continue
		}
		if l.Type != domain.LoadForceSurface {
			return domain.Unsupported(domain.EntityLoading, l.ID, "skin generation is only implemented for %s, got %s", domain.LoadForceSurface, l.Type)
		}
		if len(l.Face) == 0 {
			continue
		}
		typ, ok := mesh.SurfaceType(len(l.Face))
		if !ok {
			return domain.Unsupported(domain.EntityLoading, l.ID, "no surface cell type with %d nodes", len(l.Face))
		}
		cellPos, err := m.Mesh().AddCell(mesh.AutoID, typ, l.Face, true)
		if err != nil {
			return err
		}
		cell, _ := m.Mesh().FindCell(cellPos)
		name := fmt.Sprintf("C%d", cell.ID)
		if _, err := m.NewVirtualElementSet(domain.ElementContinuum, name, "", domain.NoID); err != nil {
			return err
		}
		group, err := findGroup(m, name)
		if err != nil {
			return err
		}
		group.AddCell(cell.ID)
		l.ClearTargets()
		l.CellGroups = []string{name}
	}
	return nil
}

// cellDimensionGreaterThan reports whether a cell targeted by l has a
// dimension above dim.
func cellDimensionGreaterThan(m *core.Model, l *domain.Loading, dim int) bool {
	msh := m.Mesh()
	for _, pos := range l.Cells {
		if c, ok := msh.FindCell(pos); ok && c.Type.Dimension > dim {
			return true
		}
	}
	for _, name := range l.CellGroups {
		g, ok := msh.FindGroup(name)
		if !ok {
			continue
		}
		for _, id := range g.Cells {
			if c, ok := msh.CellByID(id); ok && c.Type.Dimension > dim {
				return true
			}
		}
	}
	return false
}
