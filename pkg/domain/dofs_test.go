package domain

import (
	"encoding/json"
	"testing"
)

func TestDOFSFromCode(t *testing.T) {
	cases := []struct {
		code int
		want DOFS
	}{
		{0, NoDOFS},
		{123, Translations},
		{456, Rotations},
		{123456, AllDOFS},
		{31, DOFSOf(DX, DZ)},
		{1010, DOFSOf(DX)},
	}
	for _, tc := range cases {
		got, err := DOFSFromCode(tc.code)
		if err != nil {
			t.Fatalf("code %d: %v", tc.code, err)
		}
		if got != tc.want {
			t.Fatalf("code %d: expected %s, got %s", tc.code, tc.want, got)
		}
	}
	if _, err := DOFSFromCode(17); err == nil {
		t.Fatalf("expected digit 7 to be rejected")
	}
	if _, err := DOFSFromCode(-1); err == nil {
		t.Fatalf("expected negative code to be rejected")
	}
}

func TestDOFSSetOperations(t *testing.T) {
	s := DOFSOf(DX, DY, RZ)
	if s.Size() != 3 || s.Code() != 126 {
		t.Fatalf("unexpected size %d or code %d", s.Size(), s.Code())
	}
	if got := s.Minus(Translations); got != DOFSOf(RZ) {
		t.Fatalf("unexpected difference %s", got)
	}
	if got := s.Intersect(Rotations); got != DOFSOf(RZ) {
		t.Fatalf("unexpected intersection %s", got)
	}
	if !s.Plus(DOFSOf(DZ)).ContainsAll(Translations) {
		t.Fatalf("expected every translation after union")
	}
	if s.ContainsAnyOf(DOFSOf(RX, RY)) || !s.ContainsAnyOf(Rotations) {
		t.Fatalf("unexpected overlap with rotations")
	}
	if !NoDOFS.Empty() || s.Empty() {
		t.Fatalf("unexpected emptiness")
	}
	if s.String() != "[DX DY RZ]" {
		t.Fatalf("unexpected label %q", s.String())
	}
	if s.Labels() != "DX DY RZ" || NoDOFS.Labels() != "" {
		t.Fatalf("unexpected bare labels %q", s.Labels())
	}
	if !RY.IsRotation() || DZ.IsRotation() {
		t.Fatalf("unexpected rotation classification")
	}
}

func TestParseDOF(t *testing.T) {
	if d, err := ParseDOF(" rz "); err != nil || d != RZ {
		t.Fatalf("expected RZ, got %v %v", d, err)
	}
	if _, err := ParseDOF("DW"); err == nil {
		t.Fatalf("expected unknown label to fail")
	}
}

func TestDOFSJSON(t *testing.T) {
	raw, err := json.Marshal(DOFSOf(DX, RY))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `["DX","RY"]` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	var fromLabels, fromCode DOFS
	if err := json.Unmarshal([]byte(`["dz","RX"]`), &fromLabels); err != nil {
		t.Fatalf("unmarshal labels: %v", err)
	}
	if fromLabels != DOFSOf(DZ, RX) {
		t.Fatalf("unexpected labels decode %s", fromLabels)
	}
	if err := json.Unmarshal([]byte(`123`), &fromCode); err != nil {
		t.Fatalf("unmarshal code: %v", err)
	}
	if fromCode != Translations {
		t.Fatalf("unexpected code decode %s", fromCode)
	}
	if err := json.Unmarshal([]byte(`["XX"]`), &fromCode); err == nil {
		t.Fatalf("expected unknown label to fail")
	}
}
