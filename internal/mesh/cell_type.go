package mesh

import "fmt"

// CellType describes a cell topology.
type CellType struct {
	Code      int    `json:"code"`
	Name      string `json:"name"`
	NumNodes  int    `json:"num_nodes"`
	Dimension int    `json:"dimension"`
	Polygon   bool   `json:"polygon,omitempty"`
}

func (t CellType) String() string { return t.Name }

// MaxPolygonNodes is the largest generic polygon cell available.
const MaxPolygonNodes = 20

// Standard cell types.
var (
	Point1  = CellType{Code: 1, Name: "POINT1", NumNodes: 1, Dimension: 0}
	Seg2    = CellType{Code: 2, Name: "SEG2", NumNodes: 2, Dimension: 1}
	Seg3    = CellType{Code: 3, Name: "SEG3", NumNodes: 3, Dimension: 1}
	Tri3    = CellType{Code: 4, Name: "TRI3", NumNodes: 3, Dimension: 2}
	Quad4   = CellType{Code: 5, Name: "QUAD4", NumNodes: 4, Dimension: 2}
	Tri6    = CellType{Code: 6, Name: "TRI6", NumNodes: 6, Dimension: 2}
	Quad8   = CellType{Code: 7, Name: "QUAD8", NumNodes: 8, Dimension: 2}
	Quad9   = CellType{Code: 8, Name: "QUAD9", NumNodes: 9, Dimension: 2}
	Tetra4  = CellType{Code: 9, Name: "TETRA4", NumNodes: 4, Dimension: 3}
	Pyra5   = CellType{Code: 10, Name: "PYRA5", NumNodes: 5, Dimension: 3}
	Penta6  = CellType{Code: 11, Name: "PENTA6", NumNodes: 6, Dimension: 3}
	Hexa8   = CellType{Code: 12, Name: "HEXA8", NumNodes: 8, Dimension: 3}
	Tetra10 = CellType{Code: 13, Name: "TETRA10", NumNodes: 10, Dimension: 3}
	Penta15 = CellType{Code: 14, Name: "PENTA15", NumNodes: 15, Dimension: 3}
	Hexa20  = CellType{Code: 15, Name: "HEXA20", NumNodes: 20, Dimension: 3}
)

var standardTypes = []CellType{Point1, Seg2, Seg3, Tri3, Quad4, Tri6, Quad8, Quad9, Tetra4, Pyra5, Penta6, Hexa8, Tetra10, Penta15, Hexa20}

// Polygon returns the generic POLYn type for 3 <= n <= MaxPolygonNodes.
func Polygon(n int) (CellType, bool) {
	if n < 3 || n > MaxPolygonNodes {
		return CellType{}, false
	}
	return CellType{Code: 100 + n, Name: fmt.Sprintf("POLY%d", n), NumNodes: n, Dimension: 2, Polygon: true}, true
}

// CellTypeByName resolves a type name such as "QUAD4" or "POLY7".
func CellTypeByName(name string) (CellType, bool) {
	for _, t := range standardTypes {
		if t.Name == name {
			return t, true
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "POLY%d", &n); err == nil {
		return Polygon(n)
	}
	return CellType{}, false
}

// SurfaceType returns the standard two-dimensional type with numNodes nodes.
func SurfaceType(numNodes int) (CellType, bool) {
	for _, t := range standardTypes {
		if t.Dimension == 2 && t.NumNodes == numNodes {
			return t, true
		}
	}
	return CellType{}, false
}
