package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"femtrans/internal/core"
	"femtrans/pkg/domain"
	"femtrans/testutil"
)

// duplicatedSPCModel blocks DX of node 7 twice: at 0 in the common set and
// at value through an SPC set of the analysis.
func duplicatedSPCModel(t *testing.T, value float64, dofs domain.DOFS) (*testutil.ModelBuilder, int, *domain.Analysis, *domain.ConstraintSet) {
	t.Helper()
	b := testutil.NewModel(t, "spc")
	pos := b.Node(7, 0, 0, 0)
	b.Constrain(domain.NewSPC(1, domain.DOFSOf(domain.DX), 0, pos))
	set := b.ConstraintSet(domain.ConstraintSetSPC, 2)
	b.Constrain(domain.NewSPC(2, dofs, value, pos), set)
	a := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, []*domain.ConstraintSet{set})
	return b, pos, a, set
}

func TestRedundantSPCRemoved(t *testing.T) {
	b, pos, a, set := duplicatedSPCModel(t, 0, domain.DOFSOf(domain.DX))
	if _, err := New(DefaultConfig()).Run(context.Background(), b.Model); err != nil {
		t.Fatalf("run: %v", err)
	}

	var blockingDX int
	for _, c := range spcsAt(b.Model.ConstraintsOf(a), pos) {
		if c.DOFSForNode(pos).Contains(domain.DX) {
			blockingDX++
		}
	}
	if blockingDX != 1 {
		t.Fatalf("expected DX blocked once, got %d", blockingDX)
	}
	if _, ok := b.Model.FindConstraintSet(set.Reference()); ok {
		t.Fatalf("emptied SPC set should have been removed")
	}
	if a.ContainsConstraintSet(set.Reference()) {
		t.Fatalf("analysis still references the removed set")
	}
}

func TestRedundantSPCKeepsRemainingDOFs(t *testing.T) {
	b, pos, a, set := duplicatedSPCModel(t, 0, domain.DOFSOf(domain.DX, domain.DY))
	if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	original, ok := b.Model.FindConstraint(domain.RefByOriginal(domain.ConstraintSPC, 2))
	if !ok {
		t.Fatalf("original SPC should stay until ineffectives are removed")
	}
	if len(original.Nodes) != 0 {
		t.Fatalf("expected the node detached from the redundant SPC, got %v", original.Nodes)
	}
	var dy []*domain.Constraint
	for _, c := range b.Model.ConstraintsByConstraintSet(set.Reference()) {
		if c.DOFSForNode(pos) == domain.DOFSOf(domain.DY) {
			dy = append(dy, c)
		}
	}
	if len(dy) != 1 {
		t.Fatalf("expected DY kept by a new SPC in the same set, got %d", len(dy))
	}
	if got := spcsAt(b.Model.ConstraintsOf(a), pos); len(got) != 2 {
		t.Fatalf("expected the common DX SPC and the DY SPC, got %d", len(got))
	}
}

func TestContradictorySPCs(t *testing.T) {
	b, _, _, _ := duplicatedSPCModel(t, 0.1, domain.DOFSOf(domain.DX))
	_, err := New(DefaultConfig()).Run(context.Background(), b.Model)
	if !errors.Is(err, domain.ErrModelContradiction) {
		t.Fatalf("expected model contradiction, got %v", err)
	}
	var contradiction domain.ModelContradictionError
	if !errors.As(err, &contradiction) {
		t.Fatalf("expected typed contradiction, got %T", err)
	}
	if !strings.Contains(contradiction.Reason, "node 7") || !strings.Contains(contradiction.Reason, "DX") {
		t.Fatalf("reason should name the node and dof: %q", contradiction.Reason)
	}
	if contradiction.Entity != domain.EntityAnalysis {
		t.Fatalf("expected analysis entity, got %s", contradiction.Entity)
	}
}

func TestSPCsOfDistinctAnalysesAreIndependent(t *testing.T) {
	b := testutil.NewModel(t, "independent")
	pos := b.Node(1, 0, 0, 0)
	low := b.ConstraintSet(domain.ConstraintSetSPC, 1)
	high := b.ConstraintSet(domain.ConstraintSetSPC, 2)
	b.Constrain(domain.NewSPC(1, domain.DOFSOf(domain.DZ), 0, pos), low)
	b.Constrain(domain.NewSPC(2, domain.DOFSOf(domain.DZ), 1, pos), high)
	b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, []*domain.ConstraintSet{low})
	b.Analysis(domain.AnalysisLinearMecaStat, 2, nil, []*domain.ConstraintSet{high})

	if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("different analyses may block a DOF at different values: %v", err)
	}
	for _, c := range b.Model.ListConstraints() {
		if len(c.Nodes) != 1 {
			t.Fatalf("constraint %d lost its node", c.ID)
		}
	}
}

func blocksDOF(m *core.Model, a *domain.Analysis, pos int, d domain.DOF) int {
	n := 0
	for _, c := range m.ConstraintsOf(a) {
		if c.Type == domain.ConstraintSPC && c.DOFSForNode(pos).Contains(d) {
			n++
		}
	}
	return n
}

func TestRedundantSPCInSharedSet(t *testing.T) {
	cases := []struct {
		name string
		dofs domain.DOFS
	}{
		{"fully redundant", domain.DOFSOf(domain.DX)},
		{"partly redundant", domain.DOFSOf(domain.DX, domain.DY)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := testutil.NewModel(t, "shared")
			pos := b.Node(7, 0, 0, 0)
			own := b.ConstraintSet(domain.ConstraintSetSPC, 1)
			shared := b.ConstraintSet(domain.ConstraintSetSPC, 2)
			b.Constrain(domain.NewSPC(1, domain.DOFSOf(domain.DX), 0, pos), own)
			spc := b.Constrain(domain.NewSPC(2, tc.dofs, 0, pos), shared)
			first := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, []*domain.ConstraintSet{own, shared})
			second := b.Analysis(domain.AnalysisLinearMecaStat, 2, nil, []*domain.ConstraintSet{shared})

			if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if got := blocksDOF(b.Model, second, pos, domain.DX); got != 1 {
				t.Fatalf("second analysis must still block DX at node 7, got %d", got)
			}
			if got := blocksDOF(b.Model, first, pos, domain.DX); got != 1 {
				t.Fatalf("first analysis must block DX once, got %d", got)
			}
			if len(spc.Nodes) != 1 {
				t.Fatalf("shared SPC must keep its node, got %v", spc.Nodes)
			}
			for _, d := range tc.dofs.Minus(domain.DOFSOf(domain.DX)).List() {
				if blocksDOF(b.Model, first, pos, d) != 1 || blocksDOF(b.Model, second, pos, d) != 1 {
					t.Fatalf("%s must stay blocked once in both analyses", d)
				}
			}
		})
	}
}

func TestRedundantSPCInCommonSetUsedElsewhere(t *testing.T) {
	b := testutil.NewModel(t, "common")
	pos := b.Node(7, 0, 0, 0)
	own := b.ConstraintSet(domain.ConstraintSetSPC, 1)
	b.Constrain(domain.NewSPC(1, domain.DOFSOf(domain.DX), 0, pos), own)
	common := b.Constrain(domain.NewSPC(2, domain.DOFSOf(domain.DX), 0, pos))
	first := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, []*domain.ConstraintSet{own})
	second := b.Analysis(domain.AnalysisLinearMecaStat, 2, nil, nil)

	if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := blocksDOF(b.Model, first, pos, domain.DX); got != 1 {
		t.Fatalf("first analysis must block DX once, got %d", got)
	}
	if got := blocksDOF(b.Model, second, pos, domain.DX); got != 1 {
		t.Fatalf("second analysis must keep the common SPC, got %d", got)
	}
	if len(common.Nodes) != 1 {
		t.Fatalf("common SPC must keep its node")
	}
}

func TestRedundantSPCTrimmedWhenEveryAnalysisAgrees(t *testing.T) {
	b := testutil.NewModel(t, "agree")
	pos := b.Node(7, 0, 0, 0)
	first := b.ConstraintSet(domain.ConstraintSetSPC, 1)
	second := b.ConstraintSet(domain.ConstraintSetSPC, 2)
	b.Constrain(domain.NewSPC(1, domain.DOFSOf(domain.DX), 0, pos), first)
	spc := b.Constrain(domain.NewSPC(2, domain.DOFSOf(domain.DX), 0, pos), second)
	sets := []*domain.ConstraintSet{first, second}
	one := b.Analysis(domain.AnalysisLinearMecaStat, 1, nil, sets)
	two := b.Analysis(domain.AnalysisLinearMecaStat, 2, nil, sets)

	if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(spc.Nodes) != 0 {
		t.Fatalf("expected the duplicate trimmed in place, got %v", spc.Nodes)
	}
	if n := len(b.Model.ListConstraintSets()); n != 2 {
		t.Fatalf("no set should be created, got %d sets", n)
	}
	for _, a := range []*domain.Analysis{one, two} {
		if got := blocksDOF(b.Model, a, pos, domain.DX); got != 1 {
			t.Fatalf("analysis %d: expected DX blocked once, got %d", a.OriginalID, got)
		}
	}
}

func TestNearlyEqualSPCValuesAreRedundant(t *testing.T) {
	b, pos, a, _ := duplicatedSPCModel(t, 1e-13, domain.DOFSOf(domain.DX))
	if err := RemoveRedundantSpcsPass().Apply(context.Background(), b.Model, Config{}); err != nil {
		t.Fatalf("round-off differences must not contradict: %v", err)
	}
	if got := blocksDOF(b.Model, a, pos, domain.DX); got != 1 {
		t.Fatalf("expected DX blocked once, got %d", got)
	}
}
