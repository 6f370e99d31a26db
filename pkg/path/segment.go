// Package path models sweep paths as ordered sequences of straight and
// circular-arc segments.
package path

import (
	"errors"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// Errors returned by segment and path validation.
var (
	ErrEmptyPath          = errors.New("path has no segments")
	ErrZeroLength         = errors.New("segment has zero length")
	ErrNonPositiveRadius  = errors.New("arc radius must be positive")
	ErrWindingMismatch    = errors.New("arc angle sign disagrees with clockwise flag")
	ErrDegenerateAxis     = errors.New("arc axis is degenerate")
	ErrRadiusMismatch     = errors.New("arc start point is not on its circle")
	ErrCollinear          = errors.New("points are collinear")
	ErrDiscontinuous      = errors.New("path is discontinuous")
	ErrUnknownSegmentKind = errors.New("unknown segment kind")
)

// Segment is one piece of a path, parameterized over t in [0, 1].
type Segment interface {
	Length() float64
	PointAt(t float64) math.Vec3
	TangentAt(t float64) math.Vec3
	Start() math.Vec3
	End() math.Vec3
	Validate() error
}

// Line is a straight segment.
type Line struct {
	StartPoint math.Vec3
	EndPoint   math.Vec3
}

// NewLine creates a line from a to b.
func NewLine(a, b math.Vec3) Line {
	return Line{StartPoint: a, EndPoint: b}
}

// Length returns the line length.
func (l Line) Length() float64 {
	return l.StartPoint.Distance(l.EndPoint)
}

// PointAt returns start + (end - start) * t.
func (l Line) PointAt(t float64) math.Vec3 {
	return l.StartPoint.Lerp(l.EndPoint, t)
}

// TangentAt returns the constant unit direction.
func (l Line) TangentAt(float64) math.Vec3 {
	return l.Direction()
}

// Direction returns the unit direction, or zero for a degenerate line.
func (l Line) Direction() math.Vec3 {
	return l.EndPoint.Sub(l.StartPoint).Normalize()
}

func (l Line) Start() math.Vec3 { return l.StartPoint }
func (l Line) End() math.Vec3   { return l.EndPoint }

// Validate rejects zero-length lines.
func (l Line) Validate() error {
	if l.Length() < math.Epsilon {
		return ErrZeroLength
	}
	return nil
}
