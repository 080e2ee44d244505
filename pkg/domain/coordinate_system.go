package domain

// CoordinateSystemType identifies how a coordinate system is defined.
type CoordinateSystemType string

// Coordinate system kinds.
const (
	CoordinateCartesian   CoordinateSystemType = "CARTESIAN"
	CoordinateCylindrical CoordinateSystemType = "CYLINDRICAL"
	CoordinateOrientation CoordinateSystemType = "ORIENTATION"
)

// GlobalCS is the id used by nodes expressed in the global frame.
const GlobalCS = NoID

const degenerateTolerance = 1e-12

// CoordinateSystem is defined by an origin, a first axis and a vector lying
// in the first plane. Build resolves the orthonormal basis. Cylindrical
// systems use Axis2 of the basis as their axis and have a point-dependent
// local basis, see UpdateLocalBase.
type CoordinateSystem struct {
	Identity[CoordinateSystemType]
	Origin Vector3    `json:"origin"`
	Axis   Vector3    `json:"axis"`
	Plane  Vector3    `json:"plane"`
	Basis  [3]Vector3 `json:"basis"`
	Built  bool       `json:"built,omitempty"`
	local  *[3]Vector3
}

// NewCoordinateSystem returns an unbuilt coordinate system.
func NewCoordinateSystem(typ CoordinateSystemType, originalID int, origin, axis, plane Vector3) *CoordinateSystem {
	return &CoordinateSystem{Identity: NewIdentity(typ, originalID), Origin: origin, Axis: axis, Plane: plane}
}

// Build resolves the orthonormal basis from the definition vectors.
func (cs *CoordinateSystem) Build() error {
	ex := cs.Axis.Unit()
	ez := ex.Cross(cs.Plane)
	if ex.Norm() < degenerateTolerance || ez.Norm() < degenerateTolerance {
		return Unsupported(EntityCoordinateSystem, cs.ID, "degenerate definition axes %v %v", cs.Axis, cs.Plane)
	}
	ez = ez.Unit()
	ey := ez.Cross(ex)
	cs.Basis = [3]Vector3{ex, ey, ez}
	cs.Built = true
	cs.local = nil
	return nil
}

// UpdateLocalBase moves the point-dependent basis of a cylindrical system to
// point. Other systems keep their fixed basis.
func (cs *CoordinateSystem) UpdateLocalBase(point Vector3) {
	if cs.Type != CoordinateCylindrical {
		return
	}
	axis := cs.Basis[2]
	rel := point.Sub(cs.Origin)
	radial := rel.Sub(axis.Scale(rel.Dot(axis)))
	if radial.Norm() < degenerateTolerance {
		// On the axis the radial direction is undefined; fall back to the
		// first basis vector.
		radial = cs.Basis[0]
	}
	er := radial.Unit()
	et := axis.Cross(er)
	cs.local = &[3]Vector3{er, et, axis}
}

// VectorToGlobal expresses a vector given in local components in the global
// frame.
func (cs *CoordinateSystem) VectorToGlobal(v Vector3) Vector3 {
	basis := cs.Basis
	if cs.local != nil {
		basis = *cs.local
	}
	return basis[0].Scale(v[0]).Add(basis[1].Scale(v[1])).Add(basis[2].Scale(v[2]))
}
