package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"

	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
	"femtrans/testutil"
)

type componentKey struct {
	rowNode, colNode int
	rowDOF, colDOF   domain.DOF
}

func sumComponents(into map[componentKey]float64, k *domain.DOFMatrix) {
	for _, c := range k.Components {
		into[componentKey{c.RowNode, c.ColNode, c.RowDOF, c.ColDOF}] += c.Value
	}
}

// chainMatrix couples DX of consecutive nodes as a spring chain.
func chainMatrix(nodes []int) *domain.ElementSet {
	es := domain.NewElementSet(domain.ElementStiffnessMatrix, 100)
	es.Name = "K"
	for i, n := range nodes {
		es.Matrix.Set(n, domain.DX, n, domain.DX, float64(10+i))
		if i+1 < len(nodes) {
			next := nodes[i+1]
			es.Matrix.Set(n, domain.DX, next, domain.DX, -1)
			es.Matrix.Set(next, domain.DX, n, domain.DX, -1)
		}
	}
	return es
}

func TestSplitDirectMatricesBoundsParts(t *testing.T) {
	b := testutil.NewModel(t, "split")
	nodes := b.Nodes(1, 25)
	original := b.ElementSet(chainMatrix(nodes))
	want := make(map[componentKey]float64)
	sumComponents(want, original.Matrix)

	cfg := Config{SplitDirectMatrices: true, SizeDirectMatrices: 10}
	if _, err := New(cfg).Run(context.Background(), b.Model); err != nil {
		t.Fatalf("run: %v", err)
	}

	if _, ok := b.Model.GetElementSet(original.ID); ok {
		t.Fatalf("split matrix should be removed")
	}
	got := make(map[componentKey]float64)
	parts := 0
	for _, es := range b.Model.ListElementSets() {
		if !es.IsMatrix() {
			continue
		}
		parts++
		if n := len(es.Matrix.NodePositions()); n > 10 {
			t.Fatalf("part %d spans %d nodes", es.ID, n)
		}
		if es.OriginalID != domain.NoOriginalID {
			t.Fatalf("parts must not reuse the source id")
		}
		sumComponents(got, es.Matrix)
	}
	if parts < 3 {
		t.Fatalf("expected the matrix split into several parts, got %d", parts)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d components, got %d", len(want), len(got))
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("component %+v: expected %g, got %g", key, value, got[key])
		}
	}
}

func TestSplitDirectMatricesLeavesSmallMatrices(t *testing.T) {
	b := testutil.NewModel(t, "small")
	original := b.ElementSet(chainMatrix(b.Nodes(1, 4)))
	if err := SplitDirectMatricesPass().Apply(context.Background(), b.Model, Config{SizeDirectMatrices: 4}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := b.Model.GetElementSet(original.ID); !ok {
		t.Fatalf("matrix within the bound must be kept")
	}
}

func TestSplitDirectMatricesRejectsTinySize(t *testing.T) {
	b := testutil.NewModel(t, "tiny")
	b.ElementSet(chainMatrix(b.Nodes(1, 4)))
	err := SplitDirectMatricesPass().Apply(context.Background(), b.Model, Config{SizeDirectMatrices: 1})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestReplaceDirectMatricesConservesStiffness(t *testing.T) {
	b := testutil.NewModel(t, "replace")
	n := b.Nodes(1, 4)
	k := domain.NewElementSet(domain.ElementStiffnessMatrix, 1)
	k.Matrix.Set(n[0], domain.DX, n[0], domain.DX, 4)
	k.Matrix.Set(n[0], domain.DX, n[1], domain.DX, -1)
	k.Matrix.Set(n[1], domain.DX, n[0], domain.DX, -1)
	k.Matrix.Set(n[1], domain.DX, n[1], domain.DX, 6)
	k.Matrix.Set(n[1], domain.DX, n[2], domain.DX, -2)
	k.Matrix.Set(n[2], domain.DX, n[1], domain.DX, -2)
	k.Matrix.Set(n[2], domain.DX, n[2], domain.DX, 5)
	k.Matrix.Set(n[3], domain.DX, n[3], domain.DX, 7)
	b.ElementSet(k)
	b.Load(testutil.NodalForce(1, n[3], domain.Vector3{0, 1, 0}, domain.Vector3{}))

	want := make(map[componentKey]float64)
	sumComponents(want, k.Matrix)
	if err := ReplaceDirectMatricesPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	got := make(map[componentKey]float64)
	for _, es := range b.Model.ListElementSets() {
		if es.IsMatrix() {
			t.Fatalf("matrix %d should have been replaced", es.ID)
		}
		if es.IsDiscrete() {
			sumComponents(got, &es.Discrete.Stiffness)
		}
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d components, got %d", len(want), len(got))
	}
	for key, value := range want {
		if math.Abs(got[key]-value) > 1e-12 {
			t.Fatalf("component %+v: expected %g, got %g", key, value, got[key])
		}
	}

	if segments := len(b.Model.FilterElementSets(domain.ElementDiscrete1D)); segments != 2 {
		t.Fatalf("expected 2 discrete segments, got %d", segments)
	}
	points := testutil.ElementSetsNamed(b.Model, "MTN3")
	if len(points) != 1 || points[0].Type != domain.ElementDiscrete0D {
		t.Fatalf("expected the isolated node as discrete point MTN3, got %+v", points)
	}
	cells := b.Model.ElementCellIDs(points[0])
	if len(cells) != 1 {
		t.Fatalf("expected one point cell, got %d", len(cells))
	}
	if c, _ := b.Mesh.CellByID(cells[0]); c.Type != mesh.Point1 || !c.Virtual {
		t.Fatalf("expected a virtual POINT1 cell, got %+v", c)
	}

	spcs := b.Model.ConstraintsByConstraintSet(domain.CommonConstraintSetRef())
	if len(spcs) != 4 {
		t.Fatalf("expected one SPC per node, got %d", len(spcs))
	}
	for _, c := range spcs {
		want := domain.DOFSOf(domain.DY, domain.DZ)
		if c.Nodes[0] == n[3] {
			want = domain.DOFSOf(domain.DZ)
		}
		if c.DOFS != want {
			t.Fatalf("node %d: expected %s blocked, got %s", c.Nodes[0], want, c.DOFS)
		}
	}
}

func TestReplaceDirectMatricesRejectsMassMatrix(t *testing.T) {
	b := testutil.NewModel(t, "mass")
	n := b.Nodes(1, 1)
	mass := domain.NewElementSet(domain.ElementMassMatrix, 1)
	mass.Matrix.Set(n[0], domain.DX, n[0], domain.DX, 1)
	b.ElementSet(mass)
	err := ReplaceDirectMatricesPass().Apply(context.Background(), b.Model, Config{})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestMakeCellsFromDirectMatrices(t *testing.T) {
	b := testutil.NewModel(t, "cells")
	es := b.ElementSet(chainMatrix(b.Nodes(1, 3)))
	if err := MakeCellsFromDirectMatricesPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if es.CellGroup != "DM1" {
		t.Fatalf("expected group DM1, got %q", es.CellGroup)
	}
	g, ok := b.Mesh.FindGroup("DM1")
	if !ok || g.Comment != "Direct Matrix K" || len(g.Cells) != 1 {
		t.Fatalf("unexpected group %+v", g)
	}
	c, _ := b.Mesh.CellByID(g.Cells[0])
	if c.Type.Name != "POLY3" || !c.Virtual {
		t.Fatalf("expected a virtual POLY3 cell, got %+v", c)
	}
	if got := b.Mesh.GroupNodePositions("DM1"); len(got) != 3 {
		t.Fatalf("expected the cell over the 3 matrix nodes, got %v", got)
	}
}

func TestMakeCellsFromDirectMatricesTooLarge(t *testing.T) {
	b := testutil.NewModel(t, "large")
	b.ElementSet(chainMatrix(b.Nodes(1, mesh.MaxPolygonNodes+1)))
	err := MakeCellsFromDirectMatricesPass().Apply(context.Background(), b.Model, Config{})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestCellTypeForNodeCount(t *testing.T) {
	cases := []struct {
		nodes int
		want  string
	}{
		{1, "POINT1"},
		{2, "SEG2"},
		{5, "POLY5"},
		{mesh.MaxPolygonNodes, "POLY20"},
	}
	for _, tc := range cases {
		typ, err := cellTypeForNodeCount(tc.nodes)
		if err != nil {
			t.Fatalf("%d nodes: %v", tc.nodes, err)
		}
		if typ.Name != tc.want {
			t.Fatalf("%d nodes: expected %s, got %s", tc.nodes, tc.want, typ.Name)
		}
	}
	if _, err := cellTypeForNodeCount(mesh.MaxPolygonNodes + 1); err == nil {
		t.Fatalf("expected an error above the polygon limit")
	}
}
