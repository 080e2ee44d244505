package domain

// ValueType identifies the kind of a reusable value.
type ValueType string

// Value kinds.
const (
	ValueStepRange     ValueType = "STEP_RANGE"
	ValueFunctionTable ValueType = "FUNCTION_TABLE"
	ValueScalar        ValueType = "SCALAR"
)

// ValueParameter names the physical quantity along an axis of a value.
type ValueParameter string

// Axis parameters.
const (
	ParameterNone      ValueParameter = "NONE"
	ParameterFrequency ValueParameter = "FREQ"
	ParameterDamping   ValueParameter = "DAMP"
)

// StepRange is an arithmetic sequence of values.
type StepRange struct {
	Start float64 `json:"start"`
	Step  float64 `json:"step"`
	Count int     `json:"count"`
}

// Point is one (x, y) entry of a function table.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Value is a reusable numeric definition. A placeholder stands in for a
// value referenced before its definition and only carries axis parameters.
type Value struct {
	Identity[ValueType]
	PlaceHolder bool           `json:"placeholder,omitempty"`
	ParaX       ValueParameter `json:"para_x,omitempty"`
	ParaY       ValueParameter `json:"para_y,omitempty"`
	Scalar      float64        `json:"scalar,omitempty"`
	Range       *StepRange     `json:"range,omitempty"`
	Points      []Point        `json:"points,omitempty"`
}

// NewPlaceHolder returns a placeholder for a value of typ known only by its
// original id.
func NewPlaceHolder(typ ValueType, originalID int, paraX, paraY ValueParameter) *Value {
	return &Value{Identity: NewIdentity(typ, originalID), PlaceHolder: true, ParaX: paraX, ParaY: paraY}
}

// CopyParameters copies axis parameters from another value.
func (v *Value) CopyParameters(from *Value) {
	v.ParaX = from.ParaX
	v.ParaY = from.ParaY
}
