package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestReferenceMatches(t *testing.T) {
	byOriginal := RefByOriginal(LoadNodalForce, 4)
	full := Reference[LoadingType]{Type: LoadNodalForce, ID: 9, OriginalID: 4}
	cases := []struct {
		name string
		a, b Reference[LoadingType]
		want bool
	}{
		{"same id", RefByID(LoadNodalForce, 9), full, true},
		{"different id", RefByID(LoadNodalForce, 8), full, false},
		{"original key", byOriginal, full, true},
		{"original key scoped by type", RefByOriginal(LoadGravity, 4), full, false},
		{"id against original only", RefByID(LoadNodalForce, 9), byOriginal, false},
	}
	for _, tc := range cases {
		if got := tc.a.Matches(tc.b); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
	if (Reference[LoadingType]{OriginalID: NoOriginalID}).Valid() {
		t.Fatalf("empty reference must be invalid")
	}
	if s := full.String(); s != "NODAL_FORCE#9(orig 4)" {
		t.Fatalf("unexpected label %q", s)
	}
}

func TestIdentityReset(t *testing.T) {
	l := NewLoading(LoadGravity, 3)
	l.ID = 12
	if !l.IsOriginal() || l.Reference().ID != 12 {
		t.Fatalf("unexpected identity %+v", l.Identity)
	}
	l.ResetIdentity()
	if l.IsOriginal() || l.Reference().Valid() {
		t.Fatalf("reset identity must clear both keys")
	}
}

func TestTypedErrors(t *testing.T) {
	err := Unsupported(EntityElementSet, 7, "matrix over %d nodes", 25)
	if !errors.Is(err, ErrUnsupportedConfiguration) || errors.Is(err, ErrModelContradiction) {
		t.Fatalf("unexpected error classification")
	}
	if !strings.Contains(err.Error(), "element_set 7") || !strings.Contains(err.Error(), "25 nodes") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	unresolved := UnresolvedReferenceError{Entity: EntityLoadSet, Reference: "LOAD(orig 3)", From: "analysis 1"}
	if !errors.Is(unresolved, ErrUnresolvedReference) || !strings.Contains(unresolved.Error(), "referenced by analysis 1") {
		t.Fatalf("unexpected unresolved reference error %q", unresolved.Error())
	}
}
