// Package profile turns raw cross-section contours into a clean, oriented,
// triangulated 2D profile ready for sweeping, extrusion or revolution.
package profile

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// Errors returned by Process and the contour constructors.
var (
	ErrNoContours     = errors.New("no contours")
	ErrNoOuterContour = errors.New("no outer contour")
	ErrMultipleOuter  = errors.New("more than one outer contour")
	ErrTooFewPoints   = errors.New("contour has fewer than 3 points")
	ErrRadiusCount    = errors.New("fillet radius count does not match point count")
	ErrInvalidNumber  = errors.New("contour contains a non-finite value")
	ErrTriangulation  = errors.New("cap triangulation failed")
)

// MinPoints is the smallest usable contour.
const MinPoints = 3

// Contour is a closed loop of points. Radii[i] is the fillet radius applied at
// Points[i]; a nil Radii means every corner is sharp.
type Contour struct {
	Points []math.Vec2
	Radii  []float64
	Hole   bool
}

// NewContour creates a sharp-cornered outer contour.
func NewContour(points ...math.Vec2) Contour {
	return Contour{Points: points}
}

// NewHole creates a sharp-cornered hole contour.
func NewHole(points ...math.Vec2) Contour {
	return Contour{Points: points, Hole: true}
}

// Rect returns the axis-aligned rectangle spanning min..max, counter-clockwise
// from min.
func Rect(min, max math.Vec2) Contour {
	return NewContour(
		min,
		math.V2(max.X, min.Y),
		max,
		math.V2(min.X, max.Y),
	)
}

// WithRadius returns a copy of c with a fillet of radius r at every corner.
func (c Contour) WithRadius(r float64) Contour {
	radii := make([]float64, len(c.Points))
	for i := range radii {
		radii[i] = r
	}
	c.Radii = radii
	return c
}

// WithCornerRadius returns a copy of c with a fillet of radius r at corner i.
func (c Contour) WithCornerRadius(i int, r float64) Contour {
	radii := make([]float64, len(c.Points))
	copy(radii, c.Radii)
	radii[i] = r
	c.Radii = radii
	return c
}

// Radius returns the fillet radius at point i.
func (c Contour) Radius(i int) float64 {
	if i < len(c.Radii) {
		return c.Radii[i]
	}
	return 0
}

// Validate checks point count, radius count and finiteness.
func (c Contour) Validate() error {
	if len(c.Points) < MinPoints {
		return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(c.Points))
	}
	if c.Radii != nil && len(c.Radii) != len(c.Points) {
		return fmt.Errorf("%w: %d radii for %d points", ErrRadiusCount, len(c.Radii), len(c.Points))
	}
	for i, p := range c.Points {
		if !finite(p.X) || !finite(p.Y) || !finite(c.Radius(i)) {
			return fmt.Errorf("%w at point %d", ErrInvalidNumber, i)
		}
	}
	return nil
}

// FromWires builds contours from raw point loops. With autoDetect the loop
// with the largest absolute area becomes the outer contour; otherwise the
// first loop is. radii may be nil or shorter than points.
func FromWires(points [][]math.Vec2, radii [][]float64, autoDetect bool) ([]Contour, error) {
	if len(points) == 0 {
		return nil, ErrNoContours
	}
	outer := 0
	if autoDetect {
		best := -1.0
		for i, loop := range points {
			if a := stdmath.Abs(SignedArea(loop)); a > best {
				best, outer = a, i
			}
		}
	}
	contours := make([]Contour, len(points))
	for i, loop := range points {
		c := Contour{Points: loop, Hole: i != outer}
		if i < len(radii) {
			c.Radii = radii[i]
		}
		contours[i] = c
	}
	return contours, nil
}

// SignedArea returns the shoelace area of a closed loop; positive for
// counter-clockwise loops.
func SignedArea(loop []math.Vec2) float64 {
	n := len(loop)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += loop[i].Cross(loop[(i+1)%n])
	}
	return sum / 2
}

func finite(v float64) bool {
	return !stdmath.IsNaN(v) && !stdmath.IsInf(v, 0)
}
