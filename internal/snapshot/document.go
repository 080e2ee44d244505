// Package snapshot reads and writes the solver-neutral JSON document a model
// is ingested from and exported to.
//
// Documents address nodes and cells by their mesh ids and every other entity
// by its catalog id or original id. Internally the model works on node and
// cell positions; Decode and FromModel translate between the two.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"

	"femtrans/pkg/domain"
)

// CurrentVersion is the document schema version written by FromModel.
const CurrentVersion = 1

// Document is the serialized form of a model.
type Document struct {
	Version  int    `json:"version"`
	Model    string `json:"model"`
	RunID    string `json:"run_id,omitempty"`
	Finished bool   `json:"finished,omitempty"`

	Nodes  []Node  `json:"nodes"`
	Cells  []Cell  `json:"cells,omitempty"`
	Groups []Group `json:"groups,omitempty"`

	CoordinateSystems []*domain.CoordinateSystem `json:"coordinate_systems,omitempty"`
	Values            []*domain.Value            `json:"values,omitempty"`
	Materials         []*domain.Material         `json:"materials,omitempty"`
	ElementSets       []*domain.ElementSet       `json:"element_sets,omitempty"`
	Loadings          []*domain.Loading          `json:"loadings,omitempty"`
	LoadSets          []LoadSet                  `json:"load_sets,omitempty"`
	Constraints       []*domain.Constraint       `json:"constraints,omitempty"`
	ConstraintSets    []ConstraintSet            `json:"constraint_sets,omitempty"`
	Objectives        []*domain.Objective        `json:"objectives,omitempty"`
	Analyses          []*domain.Analysis         `json:"analyses,omitempty"`

	MaterialAssignments []MaterialAssignment `json:"material_assignments,omitempty"`
}

// Node is a mesh point. DisplacementCS is the catalog id of the coordinate
// system its displacements are expressed in, 0 for the global frame.
type Node struct {
	ID             int            `json:"id"`
	Coordinates    domain.Vector3 `json:"coordinates"`
	DOFS           domain.DOFS    `json:"dofs,omitempty"`
	DisplacementCS int            `json:"displacement_cs,omitempty"`
}

// Cell lists its nodes by id. Type is a cell type name such as "QUAD4".
type Cell struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	Nodes     []int  `json:"nodes"`
	Virtual   bool   `json:"virtual,omitempty"`
	ElementID int    `json:"element_id,omitempty"`
}

// Group is a named list of cell ids.
type Group struct {
	Name       string `json:"name"`
	OriginalID int    `json:"original_id"`
	Comment    string `json:"comment,omitempty"`
	Cells      []int  `json:"cells"`
}

// LoadSet carries the set and the loadings it holds.
type LoadSet struct {
	*domain.LoadSet
	Loadings []domain.Reference[domain.LoadingType] `json:"loadings,omitempty"`
}

// ConstraintSet carries the set and the constraints it holds.
type ConstraintSet struct {
	*domain.ConstraintSet
	Constraints []domain.Reference[domain.ConstraintType] `json:"constraints,omitempty"`
}

// MaterialAssignment lists the cell groups a material applies to. It is
// written on export only.
type MaterialAssignment struct {
	MaterialID int      `json:"material_id"`
	Groups     []string `json:"groups"`
}

// Read decodes a document and checks its version.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc.Version == 0 {
		doc.Version = CurrentVersion
	}
	if doc.Version != CurrentVersion {
		return nil, domain.Unsupported("", 0, "snapshot version %d (supported: %d)", doc.Version, CurrentVersion)
	}
	if doc.Model == "" {
		return nil, fmt.Errorf("decode snapshot: model name required")
	}
	return &doc, nil
}

// Write encodes the document as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Marshal returns the indented JSON encoding of the document.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
