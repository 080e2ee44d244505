package snapshot

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"femtrans/internal/pipeline"
	"femtrans/pkg/domain"
)

const bracketDocument = `{
  "version": 1,
  "model": "bracket",
  "nodes": [
    {"id": 10, "coordinates": [0, 0, 0], "dofs": ["DX", "DY", "DZ"]},
    {"id": 20, "coordinates": [1, 0, 0]},
    {"id": 30, "coordinates": [1, 1, 0]}
  ],
  "cells": [
    {"id": 1, "type": "SEG2", "nodes": [10, 20]},
    {"id": 2, "type": "SEG2", "nodes": [20, 30]}
  ],
  "groups": [{"name": "BEAMS", "original_id": 1, "cells": [1, 2]}],
  "materials": [
    {"id": 5, "original_id": 1, "type": "MATERIAL", "natures": [{"type": "ELASTIC", "e": 210000, "nu": 0.3, "rho": 7.8e-9}]}
  ],
  "element_sets": [
    {"original_id": 1, "type": "CIRCULAR_SECTION_BEAM", "cell_group": "BEAMS", "material_id": 5, "beam": {"model": "EULER", "radius": 0.01}}
  ],
  "loadings": [
    {"original_id": 1, "type": "NODAL_FORCE", "nodes": [30], "force": [0, -100, 0]}
  ],
  "load_sets": [
    {"original_id": 1, "type": "LOAD", "loadings": [{"type": "NODAL_FORCE", "original_id": 1}]}
  ],
  "constraints": [
    {"original_id": 1, "type": "SPC", "nodes": [10], "dofs": 123456}
  ],
  "constraint_sets": [
    {"original_id": 1, "type": "SPC", "constraints": [{"type": "SPC", "original_id": 1}]}
  ],
  "objectives": [
    {"original_id": 1, "type": "NODAL_DISPLACEMENT_ASSERTION", "assertion": {"tolerance": 0.01, "node": 30, "dof": "DY", "value": -0.5}}
  ],
  "analyses": [
    {
      "original_id": 1,
      "type": "LINEAR_MECA_STAT",
      "label": "static",
      "load_sets": [{"type": "LOAD", "original_id": 1}],
      "constraint_sets": [{"type": "SPC", "original_id": 1}],
      "objectives": [{"type": "NODAL_DISPLACEMENT_ASSERTION", "original_id": 1}]
    }
  ]
}`

func TestDecodeMapsNodeIDsToPositions(t *testing.T) {
	m, err := Decode(strings.NewReader(bracketDocument), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Name != "bracket" || m.Finished() {
		t.Fatalf("unexpected model %q finished=%v", m.Name, m.Finished())
	}
	stats := m.Stats()
	if stats.Nodes != 3 || stats.Cells != 2 || stats.Analyses != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	force, ok := m.FindLoading(domain.RefByOriginal(domain.LoadNodalForce, 1))
	if !ok || len(force.Nodes) != 1 || force.Nodes[0] != 2 {
		t.Fatalf("expected the force at node position 2, got %+v", force)
	}
	if force.Application != domain.ApplicationNode {
		t.Fatalf("expected the default application, got %s", force.Application)
	}
	spc, ok := m.FindConstraint(domain.RefByOriginal(domain.ConstraintSPC, 1))
	if !ok || spc.Nodes[0] != 0 || spc.DOFS != domain.AllDOFS || spc.Master != domain.NoNode {
		t.Fatalf("unexpected spc %+v", spc)
	}
	assertion, _ := m.FindObjective(domain.RefByOriginal(domain.ObjectiveNodalDisplacementAssertion, 1))
	if assertion.Assertion.Node != 2 {
		t.Fatalf("expected the assertion at node position 2, got %d", assertion.Assertion.Node)
	}
	if dofs, _ := m.NodeDOFS(0); dofs != domain.Translations {
		t.Fatalf("expected declared dofs on node 10, got %s", dofs)
	}

	if got := m.LoadingsByLoadSet(domain.RefByOriginal(domain.LoadSetLoad, 1)); len(got) != 1 || got[0] != force {
		t.Fatalf("unexpected load set content %+v", got)
	}
	if got := m.ConstraintsByConstraintSet(domain.RefByOriginal(domain.ConstraintSetSPC, 1)); len(got) != 1 || got[0] != spc {
		t.Fatalf("unexpected constraint set content %+v", got)
	}
	beam, ok := m.FindElementSetByOriginalID(1)
	if !ok || beam.MaterialID != 5 || beam.Beam.Radius != 0.01 {
		t.Fatalf("unexpected beam %+v", beam)
	}
	if _, ok := m.GetMaterial(5); !ok {
		t.Fatalf("material must keep its document id")
	}
}

func TestExportRestoresNodeIDs(t *testing.T) {
	m, err := Decode(strings.NewReader(bracketDocument), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	doc, err := FromModel(m)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.Version != CurrentVersion || len(doc.Nodes) != 3 || doc.Nodes[2].ID != 30 {
		t.Fatalf("unexpected nodes %+v", doc.Nodes)
	}
	if got := doc.Loadings[0].Nodes; len(got) != 1 || got[0] != 30 {
		t.Fatalf("expected node id 30 on the force, got %v", got)
	}
	if got := doc.Constraints[0].Nodes; len(got) != 1 || got[0] != 10 {
		t.Fatalf("expected node id 10 on the spc, got %v", got)
	}
	if doc.Objectives[0].Assertion.Node != 30 {
		t.Fatalf("expected node id 30 on the assertion")
	}
	if len(doc.LoadSets) != 1 || len(doc.LoadSets[0].Loadings) != 1 {
		t.Fatalf("expected load set membership exported, got %+v", doc.LoadSets)
	}

	force, _ := m.FindLoading(domain.RefByOriginal(domain.LoadNodalForce, 1))
	if force.Nodes[0] != 2 {
		t.Fatalf("export must not rewrite the model's entities")
	}
}

func TestExportIsStableAcrossRoundTrips(t *testing.T) {
	m, err := Decode(strings.NewReader(bracketDocument), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	first, err := FromModel(m)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	firstJSON, err := first.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := Decode(bytes.NewReader(firstJSON), nil)
	if err != nil {
		t.Fatalf("decode exported document: %v", err)
	}
	second, err := FromModel(again)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	secondJSON, _ := second.Marshal()
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatalf("round trip changed the document:\n%s\n---\n%s", firstJSON, secondJSON)
	}
}

func TestTranslatedModelExport(t *testing.T) {
	m, err := Decode(strings.NewReader(bracketDocument), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := pipeline.New(pipeline.DefaultConfig()).Run(context.Background(), m); err != nil {
		t.Fatalf("run: %v", err)
	}
	doc, err := FromModel(m)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !doc.Finished {
		t.Fatalf("expected a finished document")
	}
	if len(doc.MaterialAssignments) != 1 || doc.MaterialAssignments[0].MaterialID != 5 || doc.MaterialAssignments[0].Groups[0] != "BEAMS" {
		t.Fatalf("unexpected material assignments %+v", doc.MaterialAssignments)
	}
	for _, c := range doc.Cells {
		if c.ElementID == 0 {
			t.Fatalf("cell %d lost its element back-reference", c.ID)
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	finished, err := Decode(&buf, nil)
	if err != nil {
		t.Fatalf("decode finished document: %v", err)
	}
	if !finished.Finished() {
		t.Fatalf("finished flag must survive ingestion")
	}
	if got := finished.MaterialAssignmentGroups(5); len(got) != 1 || got[0] != "BEAMS" {
		t.Fatalf("expected material assignments restored, got %v", got)
	}
}

func TestReadRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"future version", `{"version": 2, "model": "m", "nodes": []}`, domain.ErrUnsupportedConfiguration},
		{"unknown field", `{"model": "m", "nodes": [], "meshes": []}`, nil},
		{"missing name", `{"nodes": []}`, nil},
	}
	for _, tc := range cases {
		_, err := Read(strings.NewReader(tc.doc))
		if err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDecodeRejectsUnknownCells(t *testing.T) {
	unknownType := `{"model": "m", "nodes": [{"id": 1, "coordinates": [0, 0, 0]}], "cells": [{"id": 1, "type": "BRICK", "nodes": [1]}]}`
	if _, err := Decode(strings.NewReader(unknownType), nil); !errors.Is(err, domain.ErrUnsupportedConfiguration) {
		t.Fatalf("expected unsupported cell type, got %v", err)
	}
	unknownCell := `{"model": "m", "nodes": [], "loadings": [{"original_id": 1, "type": "FORCE_SURFACE", "cells": [9]}]}`
	if _, err := Decode(strings.NewReader(unknownCell), nil); !errors.Is(err, domain.ErrUnresolvedReference) {
		t.Fatalf("expected unresolved cell, got %v", err)
	}
}

func TestDecodeRequiresRigidMaster(t *testing.T) {
	for _, typ := range []string{"RIGID", "RBE3"} {
		doc := `{"model": "m", "nodes": [{"id": 1, "coordinates": [0, 0, 0]}, {"id": 2, "coordinates": [1, 0, 0]}],
  "constraints": [{"original_id": 4, "type": "` + typ + `", "slaves": [2]}]}`
		_, err := Decode(strings.NewReader(doc), nil)
		if !errors.Is(err, domain.ErrUnresolvedReference) {
			t.Fatalf("%s: expected a missing master reported, got %v", typ, err)
		}
	}
	withMaster := `{"model": "m", "nodes": [{"id": 1, "coordinates": [0, 0, 0]}, {"id": 2, "coordinates": [1, 0, 0]}],
  "constraints": [{"original_id": 4, "type": "RIGID", "master": 1, "slaves": [2]}]}`
	m, err := Decode(strings.NewReader(withMaster), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, ok := m.FindConstraint(domain.RefByOriginal(domain.ConstraintRigid, 4))
	if !ok || c.Master != 0 || len(c.Slaves) != 1 || c.Slaves[0] != 1 {
		t.Fatalf("expected master and slave mapped to positions, got %+v", c)
	}
}
