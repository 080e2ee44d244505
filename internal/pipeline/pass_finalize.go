package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/pkg/domain"
)

// AssignElementsPass back-references cells to their element set, regenerates
// material assignments from the element sets (dropping stale ones) and adds a default static analysis when loads or
// constraints exist without any analysis.
func AssignElementsPass() Pass { return assignElementsPass{} }

type assignElementsPass struct{ always }

func (assignElementsPass) Name() string { return "assign_elements" }

func (assignElementsPass) Apply(_ context.Context, m *core.Model, cfg Config) error {
	for _, es := range m.ListElementSets() {
		if es.CellGroup == "" {
			continue
		}
		m.Mesh().AssignElementID(m.ElementCellIDs(es), es.ID)
	}

	if cfg.PartitionModel {
		if m.HasMaterialAssignments() {
			m.Logger().Warn("material assignments are not generated for partitioned models")
		}
	} else {
		m.ResetMaterialAssignments()
		for _, es := range m.ListElementSets() {
			if es.MaterialID == domain.NoID || es.CellGroup == "" {
				continue
			}
			m.AssignMaterial(es.MaterialID, es.CellGroup)
		}
	}

	if len(m.ListAnalyses()) == 0 && (len(m.ListLoadings()) > 0 || len(m.ListConstraints()) > 0) {
		if err := m.AddAnalysis(domain.NewAnalysis(domain.AnalysisLinearMecaStat, 1, "")); err != nil {
			return err
		}
		m.Logger().Debug("default linear static analysis added")
	}
	return nil
}

// FinishMeshPass closes out the mesh geometry.
func FinishMeshPass() Pass { return finishMeshPass{} }

type finishMeshPass struct{ always }

func (finishMeshPass) Name() string { return "finish_mesh" }

func (finishMeshPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	m.Mesh().Finish()
	return nil
}
