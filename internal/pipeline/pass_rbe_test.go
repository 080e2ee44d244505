package pipeline

import (
	"context"
	"errors"
	"testing"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
	"femtrans/testutil"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRigidConstraintBecomesRbar(t *testing.T) {
	b := testutil.NewModel(t, "rigid")
	n := b.Nodes(1, 3)
	c := domain.NewConstraint(domain.ConstraintRigid, 10)
	c.Master = n[0]
	c.AddSlave(n[1])
	c.AddSlave(n[2])
	b.Constrain(c)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)

	if err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	sets := testutil.ElementSetsNamed(b.Model, "RBE2_10")
	if len(sets) != 1 {
		t.Fatalf("expected element set RBE2_10, got %d", len(sets))
	}
	es := sets[0]
	if es.Type != domain.ElementRbar || es.Rigid.Master != n[0] || es.Rigid.SlaveDOFS != domain.AllDOFS {
		t.Fatalf("unexpected rbar %+v %+v", es, es.Rigid)
	}
	cells := b.Model.ElementCellIDs(es)
	if len(cells) != 2 {
		t.Fatalf("expected one segment per slave, got %d", len(cells))
	}
	for _, id := range cells {
		cell, _ := b.Mesh.CellByID(id)
		if cell.Type != mesh.Seg2 || cell.Nodes[0] != 1 {
			t.Fatalf("expected a segment from the master, got %+v", cell)
		}
	}
	mat, ok := b.Model.GetMaterial(es.MaterialID)
	if !ok {
		t.Fatalf("rbar material missing")
	}
	if nature, ok := mat.Nature(domain.NatureRigid); !ok || nature.Rigidity != 1 {
		t.Fatalf("expected a rigid nature, got %+v", mat.Natures)
	}
	for _, pos := range n {
		if dofs, _ := b.Model.NodeDOFS(pos); dofs != domain.AllDOFS {
			t.Fatalf("node %d: expected every DOF, got %s", pos, dofs)
		}
	}
	if _, ok := b.Model.FindConstraint(c.Reference()); ok {
		t.Fatalf("expanded constraint should be erased")
	}
}

func TestRigidConstraintWithoutMaster(t *testing.T) {
	b := testutil.NewModel(t, "rigid")
	n := b.Nodes(1, 2)
	c := domain.NewConstraint(domain.ConstraintRigid, 10)
	c.AddSlave(n[1])
	b.Constrain(c)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)

	err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestQuasiRigidConstraint(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	b := testutil.NewModel(t, "quasi", core.WithLogger(zap.New(obs)))
	n := b.Nodes(1, 2)
	c := domain.NewConstraint(domain.ConstraintQuasiRigid, 11)
	c.DOFS = domain.Translations
	c.AddSlave(n[0])
	c.AddSlave(n[1])
	b.Constrain(c)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)

	if err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	sets := testutil.ElementSetsNamed(b.Model, "RBAR_11")
	if len(sets) != 1 || sets[0].Rigid.Master != n[0] {
		t.Fatalf("expected RBAR_11 mastered by the first slave, got %+v", sets)
	}
	if logs.FilterMessage("partially rigid constraint translated as fully rigid").Len() != 1 {
		t.Fatalf("expected a warning for the partially rigid constraint")
	}
}

func TestQuasiRigidConstraintNeedsTwoSlaves(t *testing.T) {
	b := testutil.NewModel(t, "quasi")
	n := b.Nodes(1, 3)
	c := domain.NewConstraint(domain.ConstraintQuasiRigid, 11)
	c.DOFS = domain.AllDOFS
	for _, pos := range n {
		c.AddSlave(pos)
	}
	b.Constrain(c)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)

	err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{})
	if !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported configuration, got %v", err)
	}
}

func TestRBE3GroupsSlavesByWeight(t *testing.T) {
	b := testutil.NewModel(t, "rbe3")
	n := b.Nodes(1, 4)
	c := domain.NewConstraint(domain.ConstraintRBE3, 12)
	c.Master = n[0]
	c.DOFS = domain.AllDOFS
	c.AddRBE3Slave(n[1], domain.Translations, 1)
	c.AddRBE3Slave(n[2], domain.Translations, 1)
	c.AddRBE3Slave(n[3], domain.Translations, 2)
	b.Constrain(c)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)

	if err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	cases := []struct {
		name        string
		cells       int
		coefficient float64
	}{
		{"RBE3_1_12", 2, 1},
		{"RBE3_2_12", 1, 2},
	}
	for _, tc := range cases {
		sets := testutil.ElementSetsNamed(b.Model, tc.name)
		if len(sets) != 1 {
			t.Fatalf("expected element set %s", tc.name)
		}
		es := sets[0]
		if es.Type != domain.ElementRbe3 || es.Rigid.MasterDOFS != domain.AllDOFS || es.Rigid.SlaveDOFS != domain.Translations {
			t.Fatalf("%s: unexpected payload %+v", tc.name, es.Rigid)
		}
		if got := len(b.Model.ElementCellIDs(es)); got != tc.cells {
			t.Fatalf("%s: expected %d cells, got %d", tc.name, tc.cells, got)
		}
		mat, _ := b.Model.GetMaterial(es.MaterialID)
		nature, ok := mat.Nature(domain.NatureRigid)
		if !ok || nature.Coefficient != tc.coefficient || nature.Rigidity != domain.Unavailable {
			t.Fatalf("%s: unexpected nature %+v", tc.name, mat.Natures)
		}
	}
}

func TestRBEOutsideCommonSetsIsKept(t *testing.T) {
	b := testutil.NewModel(t, "partial")
	n := b.Nodes(1, 2)
	mpc := b.ConstraintSet(domain.ConstraintSetMPC, 3)
	c := domain.NewConstraint(domain.ConstraintRigid, 10)
	c.Master = n[0]
	c.AddSlave(n[1])
	b.Constrain(c, mpc)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, []*domain.ConstraintSet{mpc})
	b.Analysis(domain.AnalysisLinearModal, 2, nil, nil)

	if err := MakeCellsFromRBEPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, ok := b.Model.FindConstraint(c.Reference()); !ok {
		t.Fatalf("constraint used by a single analysis must stay a constraint")
	}
	if n := len(b.Model.FilterElementSets(domain.ElementRbar)); n != 0 {
		t.Fatalf("expected no rbar, got %d", n)
	}
}
