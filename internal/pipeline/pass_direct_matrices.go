package pipeline

import (
	"context"
	"fmt"
	"sort"

	"femtrans/internal/core"
	"femtrans/internal/mesh"
	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// ReplaceDirectMatricesPass disassembles stiffness matrices into discrete
// elements: a lone diagonal block becomes a discrete point, every coupled
// node pair becomes a discrete segment carrying both coupling blocks and a
// share of each node's diagonal block. DOFs the discretes add beyond what
// the node owns or needs are blocked by SPCs in the common constraint set.
func ReplaceDirectMatricesPass() Pass { return replaceDirectMatricesPass{} }

type replaceDirectMatricesPass struct{}

func (replaceDirectMatricesPass) Name() string { return "replace_direct_matrices" }

func (replaceDirectMatricesPass) Enabled(cfg Config) bool { return cfg.ReplaceDirectMatrices }

func (replaceDirectMatricesPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	existing := m.ListElementSets()
	var matrices []*domain.ElementSet
	for _, es := range existing {
		if es.IsMatrix() {
			matrices = append(matrices, es)
		}
	}
	if len(matrices) == 0 {
		return nil
	}

	owned := ownedDOFS(m, existing)
	required := make(map[int]domain.DOFS)
	added := make(map[int]domain.DOFS)
	d := &disassembler{m: m, material: m.VirtualMaterial().ID, required: required, added: added}

	for _, es := range matrices {
		if es.Type != domain.ElementStiffnessMatrix && es.Matrix.Len() > 0 {
			return domain.Unsupported(domain.EntityElementSet, es.ID, "%s cannot be replaced by discrete elements, only %s", es.Type, domain.ElementStiffnessMatrix)
		}
		for _, pos := range es.Matrix.NodePositions() {
			required[pos] |= domain.NoDOFS
		}
		for _, pair := range es.Matrix.NodePairs() {
			var err error
			if pair.Diagonal() {
				if len(es.Matrix.FindInPairs(pair.First)) != 0 {
					// Shared out among the segments of the node.
					continue
				}
				err = d.point(es.Matrix, pair.First)
			} else {
				err = d.segment(es.Matrix, pair.First, pair.Second)
			}
			if err != nil {
				return err
			}
		}
	}

	positions := make([]int, 0, len(added))
	for pos := range added {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	common := m.CommonConstraintSet()
	for _, pos := range positions {
		needed := required[pos]
		for _, l := range m.ListLoadings() {
			needed |= l.DOFSForNode(pos)
		}
		for _, c := range m.ListConstraints() {
			needed |= c.DOFSForNode(pos)
		}
		extra := added[pos].Minus(owned[pos]).Minus(needed)
		if extra.Empty() {
			continue
		}
		spc := domain.NewSPC(domain.NoOriginalID, extra, 0, pos)
		if err := m.AddConstraint(spc); err != nil {
			return err
		}
		if err := m.AddConstraintIntoConstraintSet(spc.Reference(), common.Reference()); err != nil {
			return err
		}
		m.Logger().Debug("virtual spc added", zap.Int("node_id", m.NodeID(pos)), zap.Stringer("dofs", extra))
	}

	for _, es := range matrices {
		m.Logger().Debug("direct matrix replaced", zap.Int("id", es.ID), zap.Int("original_id", es.OriginalID))
		m.RemoveElementSet(es.Reference())
	}
	return nil
}

// ownedDOFS returns, per node position, the DOFs provided by the cells of
// real element sets.
func ownedDOFS(m *core.Model, sets []*domain.ElementSet) map[int]domain.DOFS {
	owned := make(map[int]domain.DOFS)
	for _, es := range sets {
		if es.CellGroup == "" || es.IsMatrix() {
			continue
		}
		dofs := domain.Translations
		if es.IsBeam() || es.IsShell() {
			dofs = domain.AllDOFS
		}
		for _, pos := range m.Mesh().GroupNodePositions(es.CellGroup) {
			owned[pos] |= dofs
		}
	}
	return owned
}

type disassembler struct {
	m        *core.Model
	material int
	count    int
	required map[int]domain.DOFS
	added    map[int]domain.DOFS
}

func (d *disassembler) newDiscrete(typ domain.ElementSetType, prefix string) (*domain.ElementSet, *mesh.CellGroup, error) {
	d.count++
	name := fmt.Sprintf("%s%d", prefix, d.count)
	es, err := d.m.NewVirtualElementSet(typ, name, "", d.material)
	if err != nil {
		return nil, nil, err
	}
	group, err := findGroup(d.m, name)
	if err != nil {
		return nil, nil, err
	}
	return es, group, nil
}

func (d *disassembler) point(k *domain.DOFMatrix, node int) error {
	es, group, err := d.newDiscrete(domain.ElementDiscrete0D, "MTN")
	if err != nil {
		return err
	}
	es.Discrete.Nodes = []int{node}
	for _, c := range k.Submatrix(node, node) {
		if c.Value == 0 {
			continue
		}
		es.Discrete.Stiffness.Add(c.RowNode, c.RowDOF, c.ColNode, c.ColDOF, c.Value)
		d.required[node] |= domain.DOFSOf(c.RowDOF, c.ColDOF)
	}
	if _, err := addVirtualCell(d.m, group, mesh.Point1, node); err != nil {
		return err
	}
	d.carry(es, node)
	return nil
}

func (d *disassembler) segment(k *domain.DOFMatrix, i, j int) error {
	es, group, err := d.newDiscrete(domain.ElementDiscrete1D, "MTL")
	if err != nil {
		return err
	}
	es.Discrete.Nodes = []int{i, j}
	// Coupling blocks belong to this pair only; diagonal blocks are shared by
	// every segment of the node.
	shares := map[[2]int]float64{
		{i, j}: 1,
		{j, i}: 1,
		{i, i}: float64(len(k.FindInPairs(i))),
		{j, j}: float64(len(k.FindInPairs(j))),
	}
	for _, block := range [][2]int{{i, i}, {i, j}, {j, i}, {j, j}} {
		for _, c := range k.Submatrix(block[0], block[1]) {
			if c.Value == 0 {
				continue
			}
			es.Discrete.Stiffness.Add(c.RowNode, c.RowDOF, c.ColNode, c.ColDOF, c.Value/shares[block])
			d.required[c.RowNode] |= domain.DOFSOf(c.RowDOF)
			d.required[c.ColNode] |= domain.DOFSOf(c.ColDOF)
		}
	}
	if _, err := addVirtualCell(d.m, group, mesh.Seg2, i, j); err != nil {
		return err
	}
	d.carry(es, i, j)
	return nil
}

// carry allows at nodes the DOFs the discrete element activates.
func (d *disassembler) carry(es *domain.ElementSet, nodes ...int) {
	dofs := domain.Translations
	if es.Discrete.HasRotations() {
		dofs = domain.AllDOFS
	}
	for _, n := range nodes {
		d.added[n] |= dofs
		d.m.Mesh().AllowDOFS(n, dofs)
	}
}

// SplitDirectMatricesPass splits direct matrices over more nodes than
// SizeDirectMatrices. Nodes are dealt into stacks of half that size in
// first-seen pair order and one sub-matrix is built per pair of stacks;
// the three stack pairs inside an aligned stack couple share a sub-matrix.
func SplitDirectMatricesPass() Pass { return splitDirectMatricesPass{} }

type splitDirectMatricesPass struct{}

func (splitDirectMatricesPass) Name() string { return "split_direct_matrices" }

func (splitDirectMatricesPass) Enabled(cfg Config) bool { return cfg.SplitDirectMatrices }

func (splitDirectMatricesPass) Apply(_ context.Context, m *core.Model, cfg Config) error {
	sizeMax := cfg.SizeDirectMatrices
	if sizeMax < 2 {
		return domain.Unsupported(domain.EntityElementSet, domain.NoID, "cannot split direct matrices to a size under 2 (got %d)", sizeMax)
	}
	sizeStack := sizeMax / 2

	var erased, parts []*domain.ElementSet
	for _, es := range m.ListElementSets() {
		if !es.IsMatrix() || len(es.Matrix.NodePositions()) <= sizeMax {
			continue
		}
		stackOf := make(map[int]int)
		stack := func(node int) int {
			if s, ok := stackOf[node]; ok {
				return s
			}
			s := len(stackOf) / sizeStack
			stackOf[node] = s
			return s
		}

		byStacks := make(map[[2]int]*domain.ElementSet)
		byPair := make(map[domain.NodePair]*domain.ElementSet)
		var split []*domain.ElementSet
		for _, pair := range es.Matrix.NodePairs() {
			si, sj := stack(pair.First), stack(pair.Second)
			key := [2]int{min(si, sj), max(si, sj)}
			part, ok := byStacks[key]
			if !ok {
				part = es.Clone()
				part.ResetIdentity()
				part.Matrix = &domain.DOFMatrix{}
				split = append(split, part)
				byStacks[key] = part
				first, second := key[0]-key[0]%2, key[1]-key[1]%2
				if first == second {
					byStacks[[2]int{first, first}] = part
					byStacks[[2]int{first, first + 1}] = part
					byStacks[[2]int{first + 1, first + 1}] = part
				}
			}
			byPair[pair] = part
		}
		for _, c := range es.Matrix.Components {
			byPair[domain.MakeNodePair(c.RowNode, c.ColNode)].Matrix.Set(c.RowNode, c.RowDOF, c.ColNode, c.ColDOF, c.Value)
		}

		m.Logger().Debug("direct matrix split",
			zap.Int("id", es.ID),
			zap.Int("nodes", len(stackOf)),
			zap.Int("parts", len(split)))
		erased = append(erased, es)
		parts = append(parts, split...)
	}

	for _, es := range erased {
		m.RemoveElementSet(es.Reference())
	}
	for _, part := range parts {
		if err := m.AddElementSet(part); err != nil {
			return err
		}
	}
	return nil
}

// MakeCellsFromDirectMatricesPass gives every direct matrix without geometry
// a cell group holding one virtual cell over all of its nodes.
func MakeCellsFromDirectMatricesPass() Pass { return makeCellsFromDirectMatricesPass{} }

type makeCellsFromDirectMatricesPass struct{}

func (makeCellsFromDirectMatricesPass) Name() string { return "make_cells_from_direct_matrices" }

func (makeCellsFromDirectMatricesPass) Enabled(cfg Config) bool {
	return cfg.MakeCellsFromDirectMatrices
}

func (makeCellsFromDirectMatricesPass) Apply(_ context.Context, m *core.Model, _ Config) error {
	idx := 0
	for _, es := range m.ListElementSets() {
		if !es.IsMatrix() || es.CellGroup != "" {
			continue
		}
		nodes := es.Matrix.NodePositions()
		if len(nodes) == 0 {
			continue
		}
		typ, err := cellTypeForNodeCount(len(nodes))
		if err != nil {
			return domain.Unsupported(domain.EntityElementSet, es.ID, "%v", err)
		}
		idx++
		group, err := m.Mesh().CreateCellGroup(fmt.Sprintf("DM%d", idx), domain.NoOriginalID, "Direct Matrix "+es.Name)
		if err != nil {
			return err
		}
		es.CellGroup = group.Name
		if _, err := addVirtualCell(m, group, typ, nodes...); err != nil {
			return err
		}
		m.Logger().Debug("direct matrix cells built", zap.String("group", group.Name), zap.String("element_set", es.Name))
	}
	return nil
}

// cellTypeForNodeCount maps a node count to the cell type spanning them.
func cellTypeForNodeCount(n int) (mesh.CellType, error) {
	switch {
	case n == 1:
		return mesh.Point1, nil
	case n == 2:
		return mesh.Seg2, nil
	case n <= mesh.MaxPolygonNodes:
		typ, _ := mesh.Polygon(n)
		return typ, nil
	default:
		return mesh.CellType{}, fmt.Errorf("element size %d exceeds the maximum size of %d", n, mesh.MaxPolygonNodes)
	}
}
