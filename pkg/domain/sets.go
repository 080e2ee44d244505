package domain

// LoadSetType identifies the role of a load set.
type LoadSetType string

// Load set roles. LoadSetAll is the common set applied to every analysis.
const (
	LoadSetLoad     LoadSetType = "LOAD"
	LoadSetDLoad    LoadSetType = "DLOAD"
	LoadSetExciteID LoadSetType = "EXCITEID"
	LoadSetAll      LoadSetType = "ALL"
)

// EmbeddedLoadSet records a scaled reference to another load set.
type EmbeddedLoadSet struct {
	LoadSet     Reference[LoadSetType] `json:"load_set"`
	Coefficient float64                `json:"coefficient"`
}

// LoadSet is a named aggregation of loadings. Members live in the model's
// membership index.
type LoadSet struct {
	Identity[LoadSetType]
	Embedded []EmbeddedLoadSet `json:"embedded,omitempty"`
}

// NewLoadSet returns a load set.
func NewLoadSet(typ LoadSetType, originalID int) *LoadSet {
	return &LoadSet{Identity: NewIdentity(typ, originalID)}
}

// Embed appends a scaled reference to another load set.
func (ls *LoadSet) Embed(ref Reference[LoadSetType], coefficient float64) {
	ls.Embedded = append(ls.Embedded, EmbeddedLoadSet{LoadSet: ref, Coefficient: coefficient})
}

// CommonLoadSetRef is the reference of the load set shared by every analysis.
func CommonLoadSetRef() Reference[LoadSetType] {
	return RefByOriginal(LoadSetAll, CommonSetID)
}

// ConstraintSetType identifies the role of a constraint set.
type ConstraintSetType string

// Constraint set roles. ConstraintSetAll is the common set.
const (
	ConstraintSetSPC ConstraintSetType = "SPC"
	ConstraintSetMPC ConstraintSetType = "MPC"
	ConstraintSetAll ConstraintSetType = "ALL"
)

// ConstraintSet is a named aggregation of constraints.
type ConstraintSet struct {
	Identity[ConstraintSetType]
}

// NewConstraintSet returns a constraint set.
func NewConstraintSet(typ ConstraintSetType, originalID int) *ConstraintSet {
	return &ConstraintSet{Identity: NewIdentity(typ, originalID)}
}

// CommonConstraintSetRef is the reference of the constraint set shared by
// every analysis.
func CommonConstraintSetRef() Reference[ConstraintSetType] {
	return RefByOriginal(ConstraintSetAll, CommonSetID)
}
