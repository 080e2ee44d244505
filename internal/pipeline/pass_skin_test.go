package pipeline

import (
	"context"
	"errors"
	"testing"

	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
	"femtrans/testutil"
)

func hexaModel(t *testing.T) (*testutil.ModelBuilder, int) {
	t.Helper()
	b := testutil.NewModel(t, "skin")
	b.Nodes(1, 8)
	id := b.Cell(mesh.Hexa8, 1, 2, 3, 4, 5, 6, 7, 8)
	pos, _ := b.Mesh.FindCellPosition(id)
	return b, pos
}

func TestGenerateSkinRetargetsFaceLoad(t *testing.T) {
	b, hexa := hexaModel(t)
	l := domain.NewLoading(domain.LoadForceSurface, 1)
	l.Cells = []int{hexa}
	l.Face = []int{1, 2, 3, 4}
	l.Force = domain.Vector3{0, 0, 1}
	b.Load(l)

	if err := GenerateSkinPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(l.Cells) != 0 || len(l.Face) != 0 || len(l.CellGroups) != 1 {
		t.Fatalf("expected the load retargeted to one group, got %+v", l)
	}
	name := l.CellGroups[0]
	g, ok := b.Mesh.FindGroup(name)
	if !ok || len(g.Cells) != 1 {
		t.Fatalf("expected skin group %s with one cell", name)
	}
	skin, _ := b.Mesh.CellByID(g.Cells[0])
	if skin.Type != mesh.Quad4 || !skin.Virtual {
		t.Fatalf("expected a virtual QUAD4 skin cell, got %+v", skin)
	}
	sets := testutil.ElementSetsNamed(b.Model, name)
	if len(sets) != 1 || sets[0].Type != domain.ElementContinuum {
		t.Fatalf("expected a continuum element set over the skin")
	}
}

func TestGenerateSkinRejectsOtherFaceLoads(t *testing.T) {
	b, hexa := hexaModel(t)
	l := domain.NewLoading(domain.LoadPressionFace, 1)
	l.Cells = []int{hexa}
	l.Face = []int{1, 2, 3, 4}
	l.Pressure = 2
	b.Load(l)

	err := GenerateSkinPass().Apply(context.Background(), b.Model, Config{})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestGenerateSkinIgnoresSurfaceCells(t *testing.T) {
	b := testutil.NewModel(t, "skin")
	b.Nodes(1, 4)
	id := b.Cell(mesh.Quad4, 1, 2, 3, 4)
	pos, _ := b.Mesh.FindCellPosition(id)
	l := domain.NewLoading(domain.LoadForceSurface, 1)
	l.Cells = []int{pos}
	l.Force = domain.Vector3{0, 0, 1}
	b.Load(l)

	if err := GenerateSkinPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(l.Cells) != 1 || b.Mesh.CellCount() != 1 {
		t.Fatalf("load on a surface cell must be left alone")
	}
}
