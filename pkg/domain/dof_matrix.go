package domain

import "sort"

// MatrixComponent is one coefficient of a sparse nodal matrix, addressed by
// (row node position, row DOF, column node position, column DOF).
type MatrixComponent struct {
	RowNode int     `json:"row_node"`
	RowDOF  DOF     `json:"row_dof"`
	ColNode int     `json:"col_node"`
	ColDOF  DOF     `json:"col_dof"`
	Value   float64 `json:"value"`
}

// NodePair is an unordered pair of node positions stored as (min, max).
type NodePair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// MakeNodePair orders a and b.
func MakeNodePair(a, b int) NodePair {
	if a > b {
		a, b = b, a
	}
	return NodePair{First: a, Second: b}
}

// Diagonal reports whether both sides are the same node.
func (p NodePair) Diagonal() bool { return p.First == p.Second }

type matrixKey struct {
	rowNode, colNode int
	rowDOF, colDOF   DOF
}

// DOFMatrix is a sparse matrix over node DOFs. Components keep insertion
// order; setting an existing coefficient overwrites it in place.
type DOFMatrix struct {
	Components []MatrixComponent `json:"components"`
	index      map[matrixKey]int
}

func (m *DOFMatrix) ensureIndex() {
	if m.index != nil && len(m.index) == len(m.Components) {
		return
	}
	m.index = make(map[matrixKey]int, len(m.Components))
	for i, c := range m.Components {
		m.index[matrixKey{c.RowNode, c.ColNode, c.RowDOF, c.ColDOF}] = i
	}
}

// Set stores a coefficient.
func (m *DOFMatrix) Set(rowNode int, rowDOF DOF, colNode int, colDOF DOF, value float64) {
	m.ensureIndex()
	key := matrixKey{rowNode, colNode, rowDOF, colDOF}
	if i, ok := m.index[key]; ok {
		m.Components[i].Value = value
		return
	}
	m.index[key] = len(m.Components)
	m.Components = append(m.Components, MatrixComponent{RowNode: rowNode, RowDOF: rowDOF, ColNode: colNode, ColDOF: colDOF, Value: value})
}

// Add accumulates into a coefficient.
func (m *DOFMatrix) Add(rowNode int, rowDOF DOF, colNode int, colDOF DOF, value float64) {
	current, _ := m.Value(rowNode, rowDOF, colNode, colDOF)
	m.Set(rowNode, rowDOF, colNode, colDOF, current+value)
}

// Value returns a stored coefficient.
func (m *DOFMatrix) Value(rowNode int, rowDOF DOF, colNode int, colDOF DOF) (float64, bool) {
	m.ensureIndex()
	i, ok := m.index[matrixKey{rowNode, colNode, rowDOF, colDOF}]
	if !ok {
		return 0, false
	}
	return m.Components[i].Value, true
}

// Len returns the number of stored coefficients.
func (m *DOFMatrix) Len() int { return len(m.Components) }

// Clear drops every coefficient.
func (m *DOFMatrix) Clear() {
	m.Components = nil
	m.index = nil
}

// Clone returns an independent copy.
func (m *DOFMatrix) Clone() DOFMatrix {
	out := DOFMatrix{Components: make([]MatrixComponent, len(m.Components))}
	copy(out.Components, m.Components)
	return out
}

// NodePositions returns the distinct node positions, ascending.
func (m *DOFMatrix) NodePositions() []int {
	seen := make(map[int]struct{})
	for _, c := range m.Components {
		seen[c.RowNode] = struct{}{}
		seen[c.ColNode] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// NodePairs returns the distinct unordered node pairs, ascending.
func (m *DOFMatrix) NodePairs() []NodePair {
	seen := make(map[NodePair]struct{})
	for _, c := range m.Components {
		seen[MakeNodePair(c.RowNode, c.ColNode)] = struct{}{}
	}
	out := make([]NodePair, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Second < out[j].Second
	})
	return out
}

// Submatrix returns the coefficients coupling row node to column node, in
// insertion order.
func (m *DOFMatrix) Submatrix(rowNode, colNode int) []MatrixComponent {
	var out []MatrixComponent
	for _, c := range m.Components {
		if c.RowNode == rowNode && c.ColNode == colNode {
			out = append(out, c)
		}
	}
	return out
}

// FindInPairs returns the other nodes coupled to node, ascending.
func (m *DOFMatrix) FindInPairs(node int) []int {
	seen := make(map[int]struct{})
	for _, c := range m.Components {
		switch {
		case c.RowNode == node && c.ColNode != node:
			seen[c.ColNode] = struct{}{}
		case c.ColNode == node && c.RowNode != node:
			seen[c.RowNode] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// DOFSForNode returns the DOFs the matrix couples at node.
func (m *DOFMatrix) DOFSForNode(node int) DOFS {
	var dofs DOFS
	for _, c := range m.Components {
		if c.RowNode == node {
			dofs |= DOFSOf(c.RowDOF)
		}
		if c.ColNode == node {
			dofs |= DOFSOf(c.ColDOF)
		}
	}
	return dofs
}

// HasRotations reports whether any coefficient involves a rotational DOF.
func (m *DOFMatrix) HasRotations() bool {
	for _, c := range m.Components {
		if c.RowDOF.IsRotation() || c.ColDOF.IsRotation() {
			return true
		}
	}
	return false
}
