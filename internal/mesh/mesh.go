// Package mesh stores nodes, cells and cell groups of a model together with
// the DOFs allowed at every node.
package mesh

import (
	"errors"
	"fmt"

	"femtrans/pkg/domain"

	"go.uber.org/zap"
)

// AutoID asks AddCell to assign the next free cell id.
const AutoID = 0

// Node is a mesh point. Position is its dense index in the mesh.
type Node struct {
	ID             int            `json:"id"`
	Position       int            `json:"-"`
	Coordinates    domain.Vector3 `json:"coordinates"`
	DOFS           domain.DOFS    `json:"dofs"`
	DisplacementCS int            `json:"displacement_cs,omitempty"`
	Reserved       bool           `json:"reserved,omitempty"`
}

// Cell is an element topology instance. Nodes holds node ids.
type Cell struct {
	ID        int      `json:"id"`
	Position  int      `json:"-"`
	Type      CellType `json:"type"`
	Nodes     []int    `json:"nodes"`
	Virtual   bool     `json:"virtual,omitempty"`
	ElementID int      `json:"element_id,omitempty"`
}

// CellGroup is a named list of cell ids.
type CellGroup struct {
	Name       string `json:"name"`
	OriginalID int    `json:"original_id"`
	Comment    string `json:"comment,omitempty"`
	Cells      []int  `json:"cells"`
}

// AddCell appends a cell id to the group.
func (g *CellGroup) AddCell(cellID int) { g.Cells = append(g.Cells, cellID) }

// Mesh is the in-memory geometry store.
type Mesh struct {
	logger      *zap.Logger
	nodes       []Node
	nodeByID    map[int]int
	cells       []Cell
	cellByID    map[int]int
	lastCellID  int
	groups      []*CellGroup
	groupByName map[string]*CellGroup
	finished    bool
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithLogger sets the logger used for warnings.
func WithLogger(l *zap.Logger) Option {
	return func(m *Mesh) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns an empty mesh.
func New(opts ...Option) *Mesh {
	m := &Mesh{
		logger:      zap.NewNop(),
		nodeByID:    make(map[int]int),
		cellByID:    make(map[int]int),
		groupByName: make(map[string]*CellGroup),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddNode defines node id at coords, filling a previously reserved slot when
// there is one. It returns the node position.
func (m *Mesh) AddNode(id int, coords domain.Vector3, displacementCS int) int {
	if pos, ok := m.nodeByID[id]; ok {
		n := &m.nodes[pos]
		n.Coordinates = coords
		n.DisplacementCS = displacementCS
		n.Reserved = false
		return pos
	}
	pos := len(m.nodes)
	m.nodes = append(m.nodes, Node{ID: id, Position: pos, Coordinates: coords, DisplacementCS: displacementCS})
	m.nodeByID[id] = pos
	return pos
}

// FindOrReserveNode returns the position of node id, reserving a slot for a
// node that is referenced before it is defined.
func (m *Mesh) FindOrReserveNode(id int) int {
	if pos, ok := m.nodeByID[id]; ok {
		return pos
	}
	pos := len(m.nodes)
	m.nodes = append(m.nodes, Node{ID: id, Position: pos, Reserved: true})
	m.nodeByID[id] = pos
	return pos
}

// FindNodePosition resolves a node id.
func (m *Mesh) FindNodePosition(id int) (int, bool) {
	pos, ok := m.nodeByID[id]
	return pos, ok
}

// FindNode returns the node at position.
func (m *Mesh) FindNode(position int) (Node, bool) {
	if position < 0 || position >= len(m.nodes) {
		return Node{}, false
	}
	return m.nodes[position], true
}

// NodeCount returns the number of node slots, reserved ones included.
func (m *Mesh) NodeCount() int { return len(m.nodes) }

// Nodes returns a copy of every node in position order.
func (m *Mesh) Nodes() []Node { return append([]Node(nil), m.nodes...) }

// AllowDOFS adds dofs to the DOFs allowed at a node.
func (m *Mesh) AllowDOFS(position int, dofs domain.DOFS) {
	if position < 0 || position >= len(m.nodes) {
		return
	}
	m.nodes[position].DOFS |= dofs
}

// AddCell creates a cell over node ids and returns its position. Unknown
// node ids are reserved.
func (m *Mesh) AddCell(id int, typ CellType, nodeIDs []int, virtual bool) (int, error) {
	if len(nodeIDs) != typ.NumNodes {
		return -1, fmt.Errorf("cell %d of type %s needs %d nodes, got %d", id, typ, typ.NumNodes, len(nodeIDs))
	}
	if id == AutoID {
		id = m.lastCellID + 1
	}
	if _, ok := m.cellByID[id]; ok {
		return -1, fmt.Errorf("cell %d already exists", id)
	}
	if id > m.lastCellID {
		m.lastCellID = id
	}
	for _, n := range nodeIDs {
		m.FindOrReserveNode(n)
	}
	pos := len(m.cells)
	m.cells = append(m.cells, Cell{ID: id, Position: pos, Type: typ, Nodes: append([]int(nil), nodeIDs...), Virtual: virtual})
	m.cellByID[id] = pos
	return pos, nil
}

// FindCell returns the cell at position.
func (m *Mesh) FindCell(position int) (Cell, bool) {
	if position < 0 || position >= len(m.cells) {
		return Cell{}, false
	}
	return m.cells[position], true
}

// FindCellPosition resolves a cell id.
func (m *Mesh) FindCellPosition(id int) (int, bool) {
	pos, ok := m.cellByID[id]
	return pos, ok
}

// CellByID returns the cell with the given id.
func (m *Mesh) CellByID(id int) (Cell, bool) {
	pos, ok := m.cellByID[id]
	if !ok {
		return Cell{}, false
	}
	return m.FindCell(pos)
}

// CellCount returns the number of cells.
func (m *Mesh) CellCount() int { return len(m.cells) }

// Cells returns a copy of every cell in position order.
func (m *Mesh) Cells() []Cell {
	return append([]Cell(nil), m.cells...)
}

// CellNodePositions returns the node positions of a cell.
func (m *Mesh) CellNodePositions(cellID int) []int {
	c, ok := m.CellByID(cellID)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(c.Nodes))
	for _, id := range c.Nodes {
		out = append(out, m.nodeByID[id])
	}
	return out
}

// CreateCellGroup registers a new empty group.
func (m *Mesh) CreateCellGroup(name string, originalID int, comment string) (*CellGroup, error) {
	if name == "" {
		return nil, errors.New("cell group name required")
	}
	if _, ok := m.groupByName[name]; ok {
		return nil, fmt.Errorf("cell group %s already exists", name)
	}
	g := &CellGroup{Name: name, OriginalID: originalID, Comment: comment}
	m.groups = append(m.groups, g)
	m.groupByName[name] = g
	return g, nil
}

// FindGroup resolves a group by name.
func (m *Mesh) FindGroup(name string) (*CellGroup, bool) {
	g, ok := m.groupByName[name]
	return g, ok
}

// Groups returns the groups in creation order.
func (m *Mesh) Groups() []*CellGroup { return append([]*CellGroup(nil), m.groups...) }

// RemoveGroup drops a group; its cells stay in the mesh.
func (m *Mesh) RemoveGroup(name string) bool {
	if _, ok := m.groupByName[name]; !ok {
		return false
	}
	delete(m.groupByName, name)
	for i, g := range m.groups {
		if g.Name == name {
			m.groups = append(m.groups[:i], m.groups[i+1:]...)
			break
		}
	}
	return true
}

// GroupNodePositions returns the distinct node positions of a group's cells
// in first-seen order.
func (m *Mesh) GroupNodePositions(name string) []int {
	g, ok := m.groupByName[name]
	if !ok {
		return nil
	}
	seen := make(map[int]struct{})
	var out []int
	for _, cellID := range g.Cells {
		for _, pos := range m.CellNodePositions(cellID) {
			if _, dup := seen[pos]; dup {
				continue
			}
			seen[pos] = struct{}{}
			out = append(out, pos)
		}
	}
	return out
}

// AssignElementID back-references cells to the element set owning them.
func (m *Mesh) AssignElementID(cellIDs []int, elementID int) {
	for _, id := range cellIDs {
		if pos, ok := m.cellByID[id]; ok {
			m.cells[pos].ElementID = elementID
		}
	}
}

// Finish closes out the geometry. Reserved nodes left undefined are
// reported.
func (m *Mesh) Finish() {
	if m.finished {
		return
	}
	for i := range m.nodes {
		if m.nodes[i].Reserved {
			m.logger.Warn("node referenced but never defined", zap.Int("node_id", m.nodes[i].ID))
		}
	}
	m.finished = true
}

// Finished reports whether Finish ran.
func (m *Mesh) Finished() bool { return m.finished }

// Validate checks that cells and groups only reference existing records.
func (m *Mesh) Validate() error {
	var errs []error
	for _, c := range m.Cells() {
		for _, n := range c.Nodes {
			pos, ok := m.nodeByID[n]
			if !ok {
				errs = append(errs, fmt.Errorf("cell %d references unknown node %d", c.ID, n))
				continue
			}
			if m.nodes[pos].Reserved {
				errs = append(errs, fmt.Errorf("cell %d references undefined node %d", c.ID, n))
			}
		}
	}
	for _, g := range m.groups {
		for _, id := range g.Cells {
			if _, ok := m.CellByID(id); !ok {
				errs = append(errs, fmt.Errorf("group %s references unknown cell %d", g.Name, id))
			}
		}
	}
	return errors.Join(errs...)
}
