package pipeline

import (
	"context"
	"testing"

	"femtrans/pkg/domain"
	"femtrans/testutil"
)

func spcsAt(constraints []*domain.Constraint, pos int) []*domain.Constraint {
	var out []*domain.Constraint
	for _, c := range constraints {
		if c.Type == domain.ConstraintSPC && !c.DOFSForNode(pos).Empty() {
			out = append(out, c)
		}
	}
	return out
}

func TestVirtualDiscretsCarryMissingRotations(t *testing.T) {
	b, pos, a := rotationModel(t)
	if _, err := New(DefaultConfig()).Run(context.Background(), b.Model); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := testutil.ElementSetsNamed(b.Model, fullCarrierGroup); len(got) != 1 {
		t.Fatalf("expected one %s carrier, got %d", fullCarrierGroup, len(got))
	}
	if got := testutil.ElementSetsNamed(b.Model, translationCarrierGroup); len(got) != 0 {
		t.Fatalf("translation carrier must not be created")
	}
	dofs, _ := b.Model.NodeDOFS(pos)
	if dofs != domain.AllDOFS {
		t.Fatalf("expected node to carry every DOF, got %s", dofs)
	}

	spcs := spcsAt(b.Model.ConstraintsOf(a), pos)
	if len(spcs) != 1 {
		t.Fatalf("expected exactly one pinning SPC, got %d", len(spcs))
	}
	if want := domain.DOFSOf(domain.RY, domain.RZ); spcs[0].DOFSForNode(pos) != want {
		t.Fatalf("expected pinned %s, got %s", want, spcs[0].DOFSForNode(pos))
	}
	holders := b.Model.ConstraintSetsByConstraint(spcs[0].Reference())
	if len(holders) != 1 || holders[0].Type != domain.ConstraintSetSPC {
		t.Fatalf("expected the SPC in a dedicated SPC set, got %+v", holders)
	}
	if !a.ContainsConstraintSet(holders[0].Reference()) {
		t.Fatalf("analysis must reference the pinning set")
	}
}

func TestVirtualDiscretsTranslationCarrier(t *testing.T) {
	b := testutil.NewModel(t, "translation")
	pos := b.Node(3, 1, 2, 3)
	first := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)
	second := b.Analysis(domain.AnalysisLinearModal, 2, nil, nil)
	first.AddBoundaryDOFS(pos, domain.DOFSOf(domain.DX))
	second.AddBoundaryDOFS(pos, domain.DOFSOf(domain.DY))

	if err := VirtualDiscretsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	carriers := testutil.ElementSetsNamed(b.Model, translationCarrierGroup)
	if len(carriers) != 1 || carriers[0].Discrete.DOFS != domain.Translations {
		t.Fatalf("expected one translation carrier, got %+v", carriers)
	}
	if cells := b.Model.ElementCellIDs(carriers[0]); len(cells) != 1 {
		t.Fatalf("expected one point cell, got %d", len(cells))
	}

	var sets []int
	for _, a := range []*domain.Analysis{first, second} {
		spcs := spcsAt(b.Model.ConstraintsOf(a), pos)
		if len(spcs) != 1 || spcs[0].DOFS != domain.DOFSOf(domain.DZ) {
			t.Fatalf("analysis %d: expected DZ pinned, got %+v", a.ID, spcs)
		}
		holders := b.Model.ConstraintSetsByConstraint(spcs[0].Reference())
		if len(holders) != 1 {
			t.Fatalf("expected one holder set, got %d", len(holders))
		}
		sets = append(sets, holders[0].ID)
	}
	if sets[0] == sets[1] {
		t.Fatalf("each analysis needs its own pinning set")
	}
}

func TestVirtualDiscretsLeavesCoveredNodes(t *testing.T) {
	b := testutil.NewModel(t, "covered")
	pos := b.Node(1, 0, 0, 0)
	b.Mesh.AllowDOFS(pos, domain.Translations)
	a := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, nil)
	a.AddBoundaryDOFS(pos, domain.DOFSOf(domain.DX, domain.DZ))

	if err := VirtualDiscretsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n := len(b.Model.ListElementSets()); n != 0 {
		t.Fatalf("expected no carrier, got %d element sets", n)
	}
	if n := len(b.Model.ListConstraints()); n != 0 {
		t.Fatalf("expected no SPC, got %d", n)
	}
}
