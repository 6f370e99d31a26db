package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector.
type Vec3 r3.Vec

// World axes.
var (
	UnitX = Vec3{X: 1}
	UnitY = Vec3{Y: 1}
	UnitZ = Vec3{Z: 1}
)

// V3 is shorthand for Vec3{X: x, Y: y, Z: z}.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) r3() r3.Vec { return r3.Vec(v) }

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3(r3.Add(v.r3(), other.r3()))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3(r3.Sub(v.r3(), other.r3()))
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3(r3.Scale(s, v.r3()))
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.r3(), other.r3())
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3(r3.Cross(v.r3(), other.r3()))
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return r3.Norm(v.r3())
}

// Normalize returns a unit vector. A vector shorter than Epsilon yields the
// zero vector instead of NaNs.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}

// Lerp interpolates between v and other.
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Add(other.Sub(v).Scale(t))
}

// NearlyEqual reports whether every component differs by at most tol.
func (v Vec3) NearlyEqual(other Vec3, tol float64) bool {
	return math.Abs(v.X-other.X) <= tol &&
		math.Abs(v.Y-other.Y) <= tol &&
		math.Abs(v.Z-other.Z) <= tol
}

// IsZero reports whether v is shorter than tol.
func (v Vec3) IsZero(tol float64) bool {
	return v.Length() < tol
}

// Rotate rotates v about axis (through the origin) by angle radians,
// right-handed.
func (v Vec3) Rotate(axis Vec3, angle float64) Vec3 {
	axis = axis.Normalize()
	if axis == (Vec3{}) || angle == 0 {
		return v
	}
	return Vec3(r3.NewRotation(angle, axis.r3()).Rotate(v.r3()))
}

// Reject returns the component of v perpendicular to the unit vector n.
func (v Vec3) Reject(n Vec3) Vec3 {
	return v.Sub(n.Scale(v.Dot(n)))
}

// XY returns the XY components as Vec2.
func (v Vec3) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// AnyPerpendicular returns a unit vector perpendicular to v, built against the
// world axis least aligned with it.
func (v Vec3) AnyPerpendicular() Vec3 {
	n := v.Normalize()
	ref := LeastAlignedAxis(n)
	return ref.Reject(n).Normalize()
}

// LeastAlignedAxis returns the world axis with the smallest |dot| against v.
// Ties prefer X, then Y.
func LeastAlignedAxis(v Vec3) Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	switch {
	case ax <= ay && ax <= az:
		return UnitX
	case ay <= az:
		return UnitY
	default:
		return UnitZ
	}
}
