package domain

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a point or direction in model space.
type Vector3 [3]float64

// Unit axes of the global frame.
var (
	XAxis = Vector3{1, 0, 0}
	YAxis = Vector3{0, 1, 0}
	ZAxis = Vector3{0, 0, 1}
)

func (v Vector3) vec() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func fromVec(v r3.Vec) Vector3 { return Vector3{v.X, v.Y, v.Z} }

// Add returns v+o.
func (v Vector3) Add(o Vector3) Vector3 { return fromVec(r3.Add(v.vec(), o.vec())) }

// Sub returns v-o.
func (v Vector3) Sub(o Vector3) Vector3 { return fromVec(r3.Sub(v.vec(), o.vec())) }

// Scale returns f*v.
func (v Vector3) Scale(f float64) Vector3 { return fromVec(r3.Scale(f, v.vec())) }

// Dot returns the scalar product.
func (v Vector3) Dot(o Vector3) float64 { return r3.Dot(v.vec(), o.vec()) }

// Cross returns the vector product.
func (v Vector3) Cross(o Vector3) Vector3 { return fromVec(r3.Cross(v.vec(), o.vec())) }

// Norm returns the euclidean length.
func (v Vector3) Norm() float64 { return r3.Norm(v.vec()) }

// Unit returns v normalized; the zero vector is returned unchanged.
func (v Vector3) Unit() Vector3 {
	if v.Norm() == 0 {
		return v
	}
	return fromVec(r3.Unit(v.vec()))
}

// IsZero reports whether every component is exactly zero.
func (v Vector3) IsZero() bool { return v[0] == 0 && v[1] == 0 && v[2] == 0 }

// AlmostEqual compares component-wise within tol.
func (v Vector3) AlmostEqual(o Vector3, tol float64) bool {
	for i := range v {
		if math.Abs(v[i]-o[i]) > tol {
			return false
		}
	}
	return true
}
