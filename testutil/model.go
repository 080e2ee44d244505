// Package testutil provides model fixtures and import guards shared by the
// package tests.
package testutil

import (
	"testing"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
)

// ModelBuilder assembles small models for tests. Every helper fails the test
// on error so fixtures stay one line per entity.
type ModelBuilder struct {
	t     testing.TB
	Model *core.Model
	Mesh  *mesh.Mesh
}

// NewModel returns a builder over an empty in-memory mesh.
func NewModel(t testing.TB, name string, opts ...core.Option) *ModelBuilder {
	t.Helper()
	msh := mesh.New()
	return &ModelBuilder{t: t, Model: core.NewModel(name, msh, opts...), Mesh: msh}
}

// Node defines node id at (x, y, z) in the global frame and returns its
// position.
func (b *ModelBuilder) Node(id int, x, y, z float64) int {
	return b.Mesh.AddNode(id, domain.Vector3{x, y, z}, domain.GlobalCS)
}

// Nodes defines count nodes with ids first, first+1, ... on the x axis and
// returns their positions.
func (b *ModelBuilder) Nodes(first, count int) []int {
	out := make([]int, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, b.Node(first+i, float64(i), 0, 0))
	}
	return out
}

// Cell adds a cell over node ids and returns its id.
func (b *ModelBuilder) Cell(typ mesh.CellType, nodeIDs ...int) int {
	b.t.Helper()
	pos, err := b.Mesh.AddCell(mesh.AutoID, typ, nodeIDs, false)
	if err != nil {
		b.t.Fatalf("add cell: %v", err)
	}
	c, _ := b.Mesh.FindCell(pos)
	return c.ID
}

// Group creates a cell group holding cellIDs.
func (b *ModelBuilder) Group(name string, cellIDs ...int) *mesh.CellGroup {
	b.t.Helper()
	g, err := b.Mesh.CreateCellGroup(name, domain.NoOriginalID, "")
	if err != nil {
		b.t.Fatalf("create group %s: %v", name, err)
	}
	for _, id := range cellIDs {
		g.AddCell(id)
	}
	return g
}

// Material registers an elastic material.
func (b *ModelBuilder) Material(originalID int, e, nu, rho float64) *domain.Material {
	b.t.Helper()
	mat := domain.NewMaterial(originalID, domain.ElasticNature(e, nu, rho))
	if err := b.Model.AddMaterial(mat); err != nil {
		b.t.Fatalf("add material: %v", err)
	}
	return mat
}

// ElementSet registers es.
func (b *ModelBuilder) ElementSet(es *domain.ElementSet) *domain.ElementSet {
	b.t.Helper()
	if err := b.Model.AddElementSet(es); err != nil {
		b.t.Fatalf("add element set: %v", err)
	}
	return es
}

// Analysis registers an analysis referencing the given sets.
func (b *ModelBuilder) Analysis(typ domain.AnalysisType, originalID int, loadSets []*domain.LoadSet, constraintSets []*domain.ConstraintSet) *domain.Analysis {
	b.t.Helper()
	a := domain.NewAnalysis(typ, originalID, "")
	for _, ls := range loadSets {
		a.AddLoadSet(ls.Reference())
	}
	for _, cs := range constraintSets {
		a.AddConstraintSet(cs.Reference())
	}
	if err := b.Model.AddAnalysis(a); err != nil {
		b.t.Fatalf("add analysis: %v", err)
	}
	return a
}

// LoadSet registers a load set.
func (b *ModelBuilder) LoadSet(typ domain.LoadSetType, originalID int) *domain.LoadSet {
	b.t.Helper()
	ls := domain.NewLoadSet(typ, originalID)
	if err := b.Model.AddLoadSet(ls); err != nil {
		b.t.Fatalf("add load set: %v", err)
	}
	return ls
}

// ConstraintSet registers a constraint set.
func (b *ModelBuilder) ConstraintSet(typ domain.ConstraintSetType, originalID int) *domain.ConstraintSet {
	b.t.Helper()
	cs := domain.NewConstraintSet(typ, originalID)
	if err := b.Model.AddConstraintSet(cs); err != nil {
		b.t.Fatalf("add constraint set: %v", err)
	}
	return cs
}

// Load registers l and puts it into sets, the common load set when none is
// given.
func (b *ModelBuilder) Load(l *domain.Loading, sets ...*domain.LoadSet) *domain.Loading {
	b.t.Helper()
	if err := b.Model.AddLoading(l); err != nil {
		b.t.Fatalf("add loading: %v", err)
	}
	if len(sets) == 0 {
		sets = []*domain.LoadSet{b.Model.CommonLoadSet()}
	}
	for _, ls := range sets {
		if err := b.Model.AddLoadingIntoLoadSet(l.Reference(), ls.Reference()); err != nil {
			b.t.Fatalf("add loading into load set: %v", err)
		}
	}
	return l
}

// Constrain registers c and puts it into sets, the common constraint set
// when none is given.
func (b *ModelBuilder) Constrain(c *domain.Constraint, sets ...*domain.ConstraintSet) *domain.Constraint {
	b.t.Helper()
	if err := b.Model.AddConstraint(c); err != nil {
		b.t.Fatalf("add constraint: %v", err)
	}
	if len(sets) == 0 {
		sets = []*domain.ConstraintSet{b.Model.CommonConstraintSet()}
	}
	for _, cs := range sets {
		if err := b.Model.AddConstraintIntoConstraintSet(c.Reference(), cs.Reference()); err != nil {
			b.t.Fatalf("add constraint into constraint set: %v", err)
		}
	}
	return c
}

// NodalForce builds a node load of force f and moment mo at node position.
func NodalForce(originalID, node int, f, mo domain.Vector3) *domain.Loading {
	l := domain.NewLoading(domain.LoadNodalForce, originalID)
	l.Nodes = []int{node}
	l.Force = f
	l.Moment = mo
	return l
}

// ElementSetsNamed returns the element sets whose name is name.
func ElementSetsNamed(m *core.Model, name string) []*domain.ElementSet {
	var out []*domain.ElementSet
	for _, es := range m.ListElementSets() {
		if es.Name == name {
			out = append(out, es)
		}
	}
	return out
}
