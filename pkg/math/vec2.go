// Package math provides the float64 vector, quaternion and matrix types used
// by the mesh kernel. Vectors are thin wrappers over gonum's spatial types.
package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the default tolerance for near-equality checks.
const Epsilon = 1e-9

// Vec2 is a 2D vector in profile space.
type Vec2 r2.Vec

// V2 is shorthand for Vec2{X: x, Y: y}.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) r2() r2.Vec { return r2.Vec(v) }

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2(r2.Add(v.r2(), other.r2()))
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2(r2.Sub(v.r2(), other.r2()))
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2(r2.Scale(s, v.r2()))
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float64 {
	return r2.Dot(v.r2(), other.r2())
}

// Cross returns the z component of the 3D cross product.
func (v Vec2) Cross(other Vec2) float64 {
	return r2.Cross(v.r2(), other.r2())
}

// Length returns the magnitude.
func (v Vec2) Length() float64 {
	return r2.Norm(v.r2())
}

// Normalize returns a unit vector, or the zero vector when v has no length.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l < Epsilon {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float64 {
	return v.Sub(other).Length()
}

// Lerp interpolates between v and other.
func (v Vec2) Lerp(other Vec2, t float64) Vec2 {
	return v.Add(other.Sub(v).Scale(t))
}

// NearlyEqual reports whether v and other are within tol of each other.
func (v Vec2) NearlyEqual(other Vec2, tol float64) bool {
	return math.Abs(v.X-other.X) <= tol && math.Abs(v.Y-other.Y) <= tol
}

// Extend lifts v into 3D with the given z.
func (v Vec2) Extend(z float64) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: z}
}
