package pipeline

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// SplitElementsByDOFSPass splits scalar springs acting on several DOF pairs
// into one spring set per pair. Element set types the pass does not know are
// reported and left alone.
func SplitElementsByDOFSPass() Pass { return splitElementsByDOFSPass{} }

type splitElementsByDOFSPass struct{}

func (splitElementsByDOFSPass) Name() string { return "split_elements_by_dofs" }

func (splitElementsByDOFSPass) Enabled(cfg Config) bool { return cfg.SplitElementsByDOFS }

func (splitElementsByDOFSPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, es := range m.ListElementSets() {
		switch es.Type {
		case domain.ElementScalarSpring:
			if err := splitSpring(m, es); err != nil {
				return err
			}
		case domain.ElementCircularSectionBeam, domain.ElementRectangularSectionBeam,
			domain.ElementGenericSectionBeam, domain.ElementStructuralSegment,
			domain.ElementShell, domain.ElementContinuum,
			domain.ElementDiscrete0D, domain.ElementDiscrete1D, domain.ElementNodalMass,
			domain.ElementStiffnessMatrix, domain.ElementMassMatrix, domain.ElementDampingMatrix,
			domain.ElementRbar, domain.ElementRbe3:
		default:
			m.Logger().Warn("element set type not supported by spring splitting",
				zap.String("kind", string(es.Type)),
				zap.Int("id", es.ID),
				zap.Int("original_id", es.OriginalID))
		}
	}
	return nil
}

// splitSpring replaces es by one spring set per DOF pair. The source set and
// its group are removed only once every part exists; a failure removes the
// parts already created.
func splitSpring(m *core.Model, es *domain.ElementSet) error {
	if es.Spring == nil || len(es.Spring.ByDOFS) <= 1 {
		return nil
	}
	base, comment := es.CellGroup, ""
	if g, ok := m.Mesh().FindGroup(es.CellGroup); ok {
		comment = g.Comment
	}
	if base == "" {
		base = fmt.Sprintf("SPRING_%d", es.ID)
	}

	var parts []*domain.ElementSet
	rollback := func() {
		for _, p := range parts {
			m.RemoveElementSet(p.Reference())
			m.Mesh().RemoveGroup(p.CellGroup)
		}
	}
	for i, sc := range es.Spring.ByDOFS {
		name := fmt.Sprintf("%s_%d", base, i+1)
		split, err := m.NewVirtualElementSet(domain.ElementScalarSpring, name, comment, es.MaterialID)
		if err != nil {
			rollback()
			return fmt.Errorf("split spring %s: %w", es.Reference(), err)
		}
		parts = append(parts, split)
		split.Spring.Stiffness = es.Spring.Stiffness
		split.Spring.Damping = es.Spring.Damping
		group, err := findGroup(m, name)
		if err != nil {
			rollback()
			return err
		}
		for _, cell := range sc.Cells {
			split.Spring.AddSpring(cell, sc.DOF1, sc.DOF2)
			group.AddCell(cell)
		}
	}

	m.RemoveElementSet(es.Reference())
	if es.CellGroup != "" {
		m.Mesh().RemoveGroup(es.CellGroup)
	}
	m.Logger().Debug("scalar spring split",
		zap.Int("id", es.ID),
		zap.Int("original_id", es.OriginalID),
		zap.Int("parts", len(parts)))
	return nil
}
