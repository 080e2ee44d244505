package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// RemoveIneffectivesPass erases loadings and constraints that bind nothing,
// then the sets and element sets left empty.
func RemoveIneffectivesPass() Pass { return removeIneffectivesPass{} }

type removeIneffectivesPass struct{}

func (removeIneffectivesPass) Name() string { return "remove_ineffectives" }

func (removeIneffectivesPass) Enabled(cfg Config) bool { return cfg.RemoveIneffectives }

func (removeIneffectivesPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	log := m.Logger()
	for _, l := range m.ListLoadings() {
		if l.Ineffective() {
			log.Debug("ineffective loading removed", zap.Int("id", l.ID), zap.Int("original_id", l.OriginalID))
			m.RemoveLoading(l.Reference())
		}
	}
	for _, ls := range m.ListLoadSets() {
		if m.LoadSetSize(ls.Reference()) == 0 && len(ls.Embedded) == 0 {
			log.Debug("empty load set removed", zap.Int("id", ls.ID), zap.Int("original_id", ls.OriginalID))
			m.RemoveLoadSet(ls.Reference())
		}
	}
	for _, c := range m.ListConstraints() {
		if c.Ineffective() {
			log.Debug("ineffective constraint removed", zap.Int("id", c.ID), zap.Int("original_id", c.OriginalID))
			m.RemoveConstraint(c.Reference())
		}
	}
	for _, cs := range m.ListConstraintSets() {
		if m.ConstraintSetSize(cs.Reference()) == 0 {
			log.Debug("empty constraint set removed", zap.Int("id", cs.ID), zap.Int("original_id", cs.OriginalID))
			m.RemoveConstraintSet(cs.Reference())
		}
	}
	for _, es := range m.ListElementSets() {
		if es.CellGroup == "" {
			continue
		}
		g, ok := m.Mesh().FindGroup(es.CellGroup)
		if !ok || len(g.Cells) > 0 {
			continue
		}
		log.Debug("empty element set removed",
			zap.String("kind", string(domain.EntityElementSet)),
			zap.Int("id", es.ID),
			zap.String("cell_group", es.CellGroup))
		m.RemoveElementSet(es.Reference())
	}
	return nil
}
