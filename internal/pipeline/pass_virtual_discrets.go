package pipeline

import (
	"context"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

const (
	translationCarrierGroup = "VDiscrT"
	fullCarrierGroup        = "VDiscrTR"
)

// VirtualDiscretsPass gives nodes the DOFs their analyses require but no
// element provides. A point cell is attached to a near-zero stiffness
// discrete carrier; the carrier DOFs an analysis does not need are pinned
// by an SPC in a constraint set dedicated to that analysis.
func VirtualDiscretsPass() Pass { return virtualDiscretsPass{} }

type virtualDiscretsPass struct{}

func (virtualDiscretsPass) Name() string { return "virtual_discrets" }

func (virtualDiscretsPass) Enabled(cfg Config) bool { return cfg.VirtualDiscrets }

func (virtualDiscretsPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	analyses := m.ListAnalyses()
	if len(analyses) == 0 {
		return nil
	}
	c := &carriers{m: m, spcSets: make(map[int]*domain.ConstraintSet)}
	for pos := 0; pos < m.Mesh().NodeCount(); pos++ {
		dofs, _ := m.NodeDOFS(pos)
		var missing domain.DOFS
		for _, a := range analyses {
			required := a.FindBoundaryDOFS(pos)
			if !dofs.ContainsAll(required) {
				missing |= required.Minus(dofs)
			}
		}
		if missing.Empty() {
			continue
		}

		group, carried, err := c.carrierFor(missing)
		if err != nil {
			return err
		}
		if _, err := addVirtualCell(m, group, mesh.Point1, pos); err != nil {
			return err
		}
		m.Mesh().AllowDOFS(pos, carried)
		added := carried.Minus(dofs).Minus(missing)
		m.Logger().Debug("virtual discrete added",
			zap.Int("node_id", m.NodeID(pos)),
			zap.Stringer("missing", missing),
			zap.String("group", group.Name))

		for _, a := range analyses {
			extra := added.Minus(a.FindBoundaryDOFS(pos)).Minus(dofs)
			if extra.Empty() {
				continue
			}
			if err := c.pin(a, pos, extra); err != nil {
				return err
			}
		}
	}
	return nil
}

// carriers lazily creates the two carrier groups and the per-analysis SPC
// sets.
type carriers struct {
	m           *core.Model
	translation *mesh.CellGroup
	full        *mesh.CellGroup
	spcSets     map[int]*domain.ConstraintSet
}

func (c *carriers) carrierFor(missing domain.DOFS) (*mesh.CellGroup, domain.DOFS, error) {
	if missing.ContainsAnyOf(domain.Rotations) {
		if c.full == nil {
			g, err := c.newCarrier(fullCarrierGroup, domain.AllDOFS)
			if err != nil {
				return nil, domain.NoDOFS, err
			}
			c.full = g
		}
		return c.full, domain.AllDOFS, nil
	}
	if c.translation == nil {
		g, err := c.newCarrier(translationCarrierGroup, domain.Translations)
		if err != nil {
			return nil, domain.NoDOFS, err
		}
		c.translation = g
	}
	return c.translation, domain.Translations, nil
}

func (c *carriers) newCarrier(name string, dofs domain.DOFS) (*mesh.CellGroup, error) {
	es, err := c.m.NewVirtualElementSet(domain.ElementDiscrete0D, name, "", c.m.VirtualMaterial().ID)
	if err != nil {
		return nil, err
	}
	es.Discrete.DOFS = dofs
	return findGroup(c.m, name)
}

func (c *carriers) pin(a *domain.Analysis, pos int, dofs domain.DOFS) error {
	cs, ok := c.spcSets[a.ID]
	if !ok {
		cs = domain.NewConstraintSet(domain.ConstraintSetSPC, domain.NoOriginalID)
		if err := c.m.AddConstraintSet(cs); err != nil {
			return err
		}
		a.AddConstraintSet(cs.Reference())
		c.spcSets[a.ID] = cs
	}
	spc := domain.NewSPC(domain.NoOriginalID, dofs, 0, pos)
	if err := c.m.AddConstraint(spc); err != nil {
		return err
	}
	return c.m.AddConstraintIntoConstraintSet(spc.Reference(), cs.Reference())
}
