package pipeline

import (
	"context"
	"fmt"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"
)

// EmulateAdditionalMassPass turns the distributed non-structural mass of an
// element set into a copy of the set made of a mass-only material.
func EmulateAdditionalMassPass() Pass { return emulateAdditionalMassPass{} }

type emulateAdditionalMassPass struct{}

func (emulateAdditionalMassPass) Name() string { return "emulate_additional_mass" }

func (emulateAdditionalMassPass) Enabled(cfg Config) bool { return cfg.EmulateAdditionalMass }

func (emulateAdditionalMassPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	var clones []*domain.ElementSet
	for _, es := range m.ListElementSets() {
		if !es.HasAdditionalMass() {
			continue
		}
		mat := domain.NewMaterial(domain.NoOriginalID, domain.ElasticNature(0, 0, es.AdditionalRho))
		if err := m.AddMaterial(mat); err != nil {
			return err
		}

		clone := es.Clone()
		clone.ResetIdentity()
		clone.AdditionalRho = 0
		clone.MaterialID = mat.ID
		name := fmt.Sprintf("VAM_%d", len(clones)+1)
		group, err := m.Mesh().CreateCellGroup(name, domain.NoOriginalID, "")
		if err != nil {
			return err
		}
		clone.Name = name
		clone.CellGroup = name
		for _, id := range m.ElementCellIDs(es) {
			cell, ok := m.Mesh().CellByID(id)
			if !ok {
				continue
			}
			pos, err := m.Mesh().AddCell(mesh.AutoID, cell.Type, cell.Nodes, cell.Virtual)
			if err != nil {
				return err
			}
			copied, _ := m.Mesh().FindCell(pos)
			group.AddCell(copied.ID)
		}
		clones = append(clones, clone)
	}
	for _, clone := range clones {
		if err := m.AddElementSet(clone); err != nil {
			return err
		}
	}
	return nil
}
