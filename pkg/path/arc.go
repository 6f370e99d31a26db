package path

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// Arc is a circular arc. The start point is rotated about Axis (through
// Center) by Angle radians; a negative Angle runs clockwise.
type Arc struct {
	Center     math.Vec3
	Radius     float64
	Angle      float64
	StartPoint math.Vec3
	Axis       math.Vec3
	// RefAxis orients the profile along the arc. Zero means use Axis.
	RefAxis   math.Vec3
	Clockwise bool
}

// NewArc builds an arc from its center, start point, rotation axis and
// signed sweep angle. Radius and Clockwise are derived.
func NewArc(center, start, axis math.Vec3, angle float64) Arc {
	return Arc{
		Center:     center,
		Radius:     start.Distance(center),
		Angle:      angle,
		StartPoint: start,
		Axis:       axis.Normalize(),
		Clockwise:  angle < 0,
	}
}

// ArcThrough builds the arc that starts at p0, passes through thru and ends
// at p1.
func ArcThrough(p0, thru, p1 math.Vec3) (Arc, error) {
	a := p0.Sub(p1)
	b := thru.Sub(p1)
	axb := a.Cross(b)
	denom := 2 * axb.Dot(axb)
	if denom < 1e-12 {
		return Arc{}, ErrCollinear
	}
	num := b.Scale(a.Dot(a)).Sub(a.Scale(b.Dot(b))).Cross(axb)
	center := p1.Add(num.Scale(1 / denom))

	axis := thru.Sub(p0).Cross(p1.Sub(p0)).Normalize()
	r0 := p0.Sub(center)
	r1 := p1.Sub(center)
	angle := stdmath.Atan2(axis.Dot(r0.Cross(r1)), r0.Dot(r1))
	if angle <= 0 {
		angle += 2 * stdmath.Pi
	}
	return NewArc(center, p0, axis, angle), nil
}

// Length returns radius * |angle|.
func (a Arc) Length() float64 {
	return a.Radius * stdmath.Abs(a.Angle)
}

// PointAt rotates the start point by angle*t.
func (a Arc) PointAt(t float64) math.Vec3 {
	return a.Center.Add(a.StartPoint.Sub(a.Center).Rotate(a.Axis, a.Angle*t))
}

// TangentAt returns the unit direction of travel at t.
func (a Arc) TangentAt(t float64) math.Vec3 {
	radial := a.PointAt(t).Sub(a.Center)
	tan := a.Axis.Normalize().Cross(radial).Normalize()
	if a.Angle < 0 {
		return tan.Neg()
	}
	return tan
}

func (a Arc) Start() math.Vec3 { return a.StartPoint }
func (a Arc) End() math.Vec3   { return a.PointAt(1) }

// Midpoint returns the point halfway along the arc.
func (a Arc) Midpoint() math.Vec3 { return a.PointAt(0.5) }

// Reference returns RefAxis, or Axis when unset.
func (a Arc) Reference() math.Vec3 {
	if a.RefAxis.IsZero(math.Epsilon) {
		return a.Axis.Normalize()
	}
	return a.RefAxis.Normalize()
}

// Validate checks the arc invariants.
func (a Arc) Validate() error {
	switch {
	case a.Radius <= 0:
		return ErrNonPositiveRadius
	case a.Axis.IsZero(math.Epsilon):
		return ErrDegenerateAxis
	case (a.Angle < 0) != a.Clockwise:
		return ErrWindingMismatch
	case a.Angle == 0:
		return ErrZeroLength
	}
	r := a.StartPoint.Distance(a.Center)
	if stdmath.Abs(r-a.Radius) > 1e-6*stdmath.Max(1, a.Radius) {
		return fmt.Errorf("%w: |start-center|=%g radius=%g", ErrRadiusMismatch, r, a.Radius)
	}
	return nil
}
