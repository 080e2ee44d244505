package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// ReplaceCombinedLoadSetsPass flattens scaled load set embeddings: every
// loading of an embedded set is cloned, scaled and added to the outer set.
// Only one level of embedding is flattened.
func ReplaceCombinedLoadSetsPass() Pass { return replaceCombinedLoadSetsPass{} }

type replaceCombinedLoadSetsPass struct{}

func (replaceCombinedLoadSetsPass) Name() string { return "replace_combined_load_sets" }

func (replaceCombinedLoadSetsPass) Enabled(cfg Config) bool { return cfg.ReplaceCombinedLoadSets }

func (replaceCombinedLoadSetsPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	for _, ls := range m.ListLoadSets() {
		if len(ls.Embedded) == 0 {
			continue
		}
		for _, embedded := range ls.Embedded {
			inner, ok := m.FindLoadSet(embedded.LoadSet)
			if !ok {
				m.Logger().Warn("embedded load set not found",
					zap.String("kind", string(domain.EntityLoadSet)),
					zap.String("reference", embedded.LoadSet.String()),
					zap.Int("id", ls.ID),
					zap.Int("original_id", ls.OriginalID))
				continue
			}
			for _, l := range m.LoadingsByLoadSet(inner.Reference()) {
				scaled := l.Clone()
				scaled.ResetIdentity()
				scaled.Scale(embedded.Coefficient)
				if err := m.AddLoading(scaled); err != nil {
					return err
				}
				if err := m.AddLoadingIntoLoadSet(scaled.Reference(), ls.Reference()); err != nil {
					return err
				}
				m.Logger().Debug("embedded loading scaled",
					zap.Int("loading_id", l.ID),
					zap.Int("clone_id", scaled.ID),
					zap.Float64("coefficient", embedded.Coefficient),
					zap.Int("load_set_id", ls.ID))
			}
		}
		ls.Embedded = nil
	}
	return nil
}
