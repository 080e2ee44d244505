package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DOF is one of the six degrees of freedom of a node.
type DOF uint8

// Degrees of freedom in canonical order: three translations then three rotations.
const (
	DX DOF = iota
	DY
	DZ
	RX
	RY
	RZ
)

var dofLabels = [...]string{"DX", "DY", "DZ", "RX", "RY", "RZ"}

// AllDOFList lists every DOF in canonical order.
var AllDOFList = []DOF{DX, DY, DZ, RX, RY, RZ}

func (d DOF) String() string {
	if int(d) < len(dofLabels) {
		return dofLabels[d]
	}
	return fmt.Sprintf("DOF(%d)", uint8(d))
}

// IsRotation reports whether d is one of RX, RY, RZ.
func (d DOF) IsRotation() bool { return d >= RX && d <= RZ }

// ParseDOF converts a label such as "DX" or "rz" to a DOF.
func ParseDOF(label string) (DOF, error) {
	upper := strings.ToUpper(strings.TrimSpace(label))
	for i, l := range dofLabels {
		if l == upper {
			return DOF(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dof %q", label)
}

// DOFS is a set of degrees of freedom stored as a bitmask.
type DOFS uint8

// Frequently used DOF sets.
const (
	NoDOFS       DOFS = 0
	Translations DOFS = 0b000111
	Rotations    DOFS = 0b111000
	AllDOFS      DOFS = 0b111111
)

// DOFSOf builds a set from individual DOFs.
func DOFSOf(dofs ...DOF) DOFS {
	var s DOFS
	for _, d := range dofs {
		s |= 1 << d
	}
	return s
}

// DOFSFromCode decodes a Nastran-style component code such as 123 or 456.
func DOFSFromCode(code int) (DOFS, error) {
	var s DOFS
	if code < 0 {
		return NoDOFS, fmt.Errorf("invalid dof code %d", code)
	}
	for code > 0 {
		digit := code % 10
		code /= 10
		if digit == 0 {
			continue
		}
		if digit > 6 {
			return NoDOFS, fmt.Errorf("invalid dof digit %d", digit)
		}
		s |= 1 << DOF(digit-1)
	}
	return s, nil
}

// Plus returns the union of both sets.
func (s DOFS) Plus(o DOFS) DOFS { return s | o }

// Minus returns the DOFs of s that are not in o.
func (s DOFS) Minus(o DOFS) DOFS { return s &^ o }

// Intersect returns the DOFs present in both sets.
func (s DOFS) Intersect(o DOFS) DOFS { return s & o }

// Contains reports whether d is in the set.
func (s DOFS) Contains(d DOF) bool { return s&(1<<d) != 0 }

// ContainsAll reports whether every DOF of o is in s.
func (s DOFS) ContainsAll(o DOFS) bool { return s&o == o }

// ContainsAnyOf reports whether s and o share at least one DOF.
func (s DOFS) ContainsAnyOf(o DOFS) bool { return s&o != 0 }

// Empty reports whether the set has no DOF.
func (s DOFS) Empty() bool { return s&AllDOFS == 0 }

// Size returns the number of DOFs in the set.
func (s DOFS) Size() int {
	n := 0
	for _, d := range AllDOFList {
		if s.Contains(d) {
			n++
		}
	}
	return n
}

// List returns the DOFs in canonical order.
func (s DOFS) List() []DOF {
	out := make([]DOF, 0, 6)
	for _, d := range AllDOFList {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

// Code returns the Nastran-style component code, e.g. 123456.
func (s DOFS) Code() int {
	code := 0
	for _, d := range s.List() {
		code = code*10 + int(d) + 1
	}
	return code
}

func (s DOFS) String() string {
	return "[" + s.Labels() + "]"
}

// Labels joins the DOF labels with spaces, without brackets, for messages.
func (s DOFS) Labels() string {
	labels := make([]string, 0, 6)
	for _, d := range s.List() {
		labels = append(labels, d.String())
	}
	return strings.Join(labels, " ")
}

// MarshalJSON encodes the set as a list of labels.
func (s DOFS) MarshalJSON() ([]byte, error) {
	labels := make([]string, 0, 6)
	for _, d := range s.List() {
		labels = append(labels, d.String())
	}
	return json.Marshal(labels)
}

// UnmarshalJSON accepts either a list of labels or a component code.
func (s *DOFS) UnmarshalJSON(data []byte) error {
	var code int
	if err := json.Unmarshal(data, &code); err == nil {
		decoded, err := DOFSFromCode(code)
		if err != nil {
			return err
		}
		*s = decoded
		return nil
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("decode dofs: %w", err)
	}
	var out DOFS
	for _, l := range labels {
		d, err := ParseDOF(l)
		if err != nil {
			return err
		}
		out |= 1 << d
	}
	*s = out
	return nil
}

// MarshalJSON encodes a DOF by label.
func (d DOF) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// UnmarshalJSON decodes a DOF label.
func (d *DOF) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("decode dof: %w", err)
	}
	parsed, err := ParseDOF(label)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
