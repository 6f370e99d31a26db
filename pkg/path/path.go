package path

import (
	"fmt"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

const (
	// ContinuityTolerance is the maximum gap between consecutive segments.
	ContinuityTolerance = 1e-3
	// ClosedTolerance is the maximum start/end gap of a closed path.
	ClosedTolerance = 1e-2
)

// Path is an ordered list of segments.
type Path struct {
	Segments []Segment
}

// New creates a path from segments.
func New(segs ...Segment) Path {
	return Path{Segments: segs}
}

// FromLine wraps a single line.
func FromLine(l Line) Path { return New(l) }

// FromArc wraps a single arc.
func FromArc(a Arc) Path { return New(a) }

// Polyline builds a path of lines through the given points.
func Polyline(points ...math.Vec3) Path {
	var p Path
	for i := 0; i+1 < len(points); i++ {
		p.Segments = append(p.Segments, NewLine(points[i], points[i+1]))
	}
	return p
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.Segments) }

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool { return len(p.Segments) == 0 }

// IsSingleSegment reports whether the path has exactly one segment.
func (p Path) IsSingleSegment() bool { return len(p.Segments) == 1 }

// SingleLine returns the only segment if it is a line.
func (p Path) SingleLine() (Line, bool) {
	if !p.IsSingleSegment() {
		return Line{}, false
	}
	l, ok := p.Segments[0].(Line)
	return l, ok
}

// SingleArc returns the only segment if it is an arc.
func (p Path) SingleArc() (Arc, bool) {
	if !p.IsSingleSegment() {
		return Arc{}, false
	}
	a, ok := p.Segments[0].(Arc)
	return a, ok
}

// Length returns the sum of segment lengths.
func (p Path) Length() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Length()
	}
	return total
}

// Start returns the first point of the path.
func (p Path) Start() math.Vec3 {
	if p.IsEmpty() {
		return math.Vec3{}
	}
	return p.Segments[0].Start()
}

// End returns the last point of the path.
func (p Path) End() math.Vec3 {
	if p.IsEmpty() {
		return math.Vec3{}
	}
	return p.Segments[len(p.Segments)-1].End()
}

// IsClosed reports whether the path ends where it starts.
func (p Path) IsClosed() bool {
	return !p.IsEmpty() && p.Length() > ClosedTolerance &&
		p.Start().Distance(p.End()) < ClosedTolerance
}

// Continuity reports whether every segment ends where the next begins. When
// it does not, index is the segment whose end is discontinuous; otherwise -1.
func (p Path) Continuity() (ok bool, index int) {
	for i := 0; i+1 < len(p.Segments); i++ {
		if p.Segments[i].End().Distance(p.Segments[i+1].Start()) > ContinuityTolerance {
			return false, i
		}
	}
	return true, -1
}

// Validate checks every segment and the continuity between them.
func (p Path) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPath
	}
	for i, s := range p.Segments {
		if s == nil {
			return fmt.Errorf("segment %d: %w", i, ErrUnknownSegmentKind)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	if ok, idx := p.Continuity(); !ok {
		return fmt.Errorf("%w after segment %d", ErrDiscontinuous, idx)
	}
	return nil
}

// locate maps a distance along the path to a segment and its local t.
func (p Path) locate(d float64) (Segment, float64) {
	if p.IsEmpty() {
		return nil, 0
	}
	for _, s := range p.Segments {
		l := s.Length()
		if d <= l {
			if l == 0 {
				return s, 0
			}
			return s, d / l
		}
		d -= l
	}
	return p.Segments[len(p.Segments)-1], 1
}

// PointAtDistance returns the point at distance d from the start, clamped to
// the path.
func (p Path) PointAtDistance(d float64) math.Vec3 {
	s, t := p.locate(d)
	if s == nil {
		return math.Vec3{}
	}
	return s.PointAt(t)
}

// TangentAtDistance returns the unit tangent at distance d from the start.
func (p Path) TangentAtDistance(d float64) math.Vec3 {
	s, t := p.locate(d)
	if s == nil {
		return math.Vec3{}
	}
	return s.TangentAt(t)
}
