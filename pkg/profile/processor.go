package profile

import (
	"fmt"
	stdmath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// DefaultTolerance is the distance below which consecutive points merge.
const DefaultTolerance = 1e-3

// maxPerturbations bounds the retries when a hole touches the outer
// boundary exactly.
const maxPerturbations = 3

// Processed is a cleaned profile. Points is the outer loop in
// counter-clockwise order and each hole loop is clockwise. TriVertices is
// the concatenation of the outer loop and the holes, so TriIndices address
// loop points directly.
type Processed struct {
	Points      []math.Vec2
	Holes       [][]math.Vec2
	TriVertices []math.Vec2
	TriIndices  []uint32
	// Open marks a polyline profile whose last point does not connect back
	// to the first. Only the revolution builder accepts open profiles.
	Open        bool
	Diagnostics Diagnostics
}

// NewOpen wraps an open polyline, such as a lathe curve, as a profile. It is
// neither filleted nor triangulated.
func NewOpen(points []math.Vec2) (*Processed, error) {
	pts, _ := dedupe(points, nil, DefaultTolerance)
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: open profile has %d usable points", ErrTooFewPoints, len(pts))
	}
	return &Processed{Points: pts, Open: true}, nil
}

// Loops returns the outer loop followed by the holes.
func (p *Processed) Loops() [][]math.Vec2 {
	loops := make([][]math.Vec2, 0, 1+len(p.Holes))
	loops = append(loops, p.Points)
	return append(loops, p.Holes...)
}

// PointCount returns the number of points across all loops.
func (p *Processed) PointCount() int {
	n := len(p.Points)
	for _, h := range p.Holes {
		n += len(h)
	}
	return n
}

// TriangleCount returns the number of cap triangles.
func (p *Processed) TriangleCount() int {
	return len(p.TriIndices) / 3
}

// Area returns the enclosed area, holes excluded.
func (p *Processed) Area() float64 {
	a := stdmath.Abs(SignedArea(p.Points))
	for _, h := range p.Holes {
		a -= stdmath.Abs(SignedArea(h))
	}
	return a
}

// Bounds returns the bounding box of the outer loop.
func (p *Processed) Bounds() (min, max math.Vec2) {
	b := toRing(p.Points).Bound()
	return math.V2(b.Min.X(), b.Min.Y()), math.V2(b.Max.X(), b.Max.Y())
}

// Contours converts the profile back into sharp contours.
func (p *Processed) Contours() []Contour {
	out := []Contour{NewContour(p.Points...)}
	for _, h := range p.Holes {
		out = append(out, NewHole(h...))
	}
	return out
}

// Processor normalizes contours.
type Processor struct {
	Tolerance float64
	Arc       ArcOptions
}

// NewProcessor returns a processor with default tolerances.
func NewProcessor() *Processor {
	return &Processor{Tolerance: DefaultTolerance, Arc: DefaultArcOptions()}
}

// Process runs Processor defaults over contours.
func Process(contours ...Contour) (*Processed, error) {
	return NewProcessor().Process(contours)
}

// Process expands fillets, subtracts holes, cleans and orients the loops and
// triangulates the cap.
func (pr *Processor) Process(contours []Contour) (*Processed, error) {
	if len(contours) == 0 {
		return nil, ErrNoContours
	}
	outerIdx := -1
	for i, c := range contours {
		if c.Hole {
			continue
		}
		if outerIdx >= 0 {
			return nil, fmt.Errorf("%w: contours %d and %d", ErrMultipleOuter, outerIdx, i)
		}
		outerIdx = i
	}
	if outerIdx < 0 {
		return nil, ErrNoOuterContour
	}

	res := &Processed{}
	outer, err := pr.prepare(contours[outerIdx], outerIdx, &res.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("outer contour: %w", err)
	}
	outer = orient(outer, true)

	var holes [][]math.Vec2
	for i, c := range contours {
		if !c.Hole {
			continue
		}
		hole, err := pr.prepare(c, i, &res.Diagnostics)
		if err != nil {
			res.Diagnostics.Add(DiagHoleSkipped, i, -1, "hole rejected: %v", err)
			continue
		}
		outer, holes = pr.subtract(outer, holes, orient(hole, false), i, &res.Diagnostics)
	}

	outer, _ = dedupe(outer, nil, pr.Tolerance)
	if len(outer) < MinPoints {
		return nil, fmt.Errorf("%w after cleanup", ErrTooFewPoints)
	}
	res.Points = orient(outer, true)
	for _, h := range holes {
		res.Holes = append(res.Holes, orient(h, false))
	}

	tris, fallback, err := triangulate(res.Points, res.Holes)
	if err != nil {
		return nil, err
	}
	if fallback {
		res.Diagnostics.Add(DiagTriangulationFallback, -1, -1, "constrained triangulation failed, used ear clipping")
	}
	res.TriVertices = concat(res.Points, res.Holes)
	res.TriIndices = tris
	return res, nil
}

// prepare validates one contour, expands its fillets and removes duplicate
// points.
func (pr *Processor) prepare(c Contour, index int, diags *Diagnostics) ([]math.Vec2, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	pts, radii := dedupe(c.Points, c.Radii, pr.Tolerance)
	if len(pts) < MinPoints {
		return nil, fmt.Errorf("%w: %d distinct points", ErrTooFewPoints, len(pts))
	}
	pts = expandFillets(pts, radii, pr.Arc, index, diags)
	pts, _ = dedupe(pts, nil, pr.Tolerance)
	if len(pts) < MinPoints || stdmath.Abs(SignedArea(pts)) < pr.Tolerance*pr.Tolerance {
		return nil, fmt.Errorf("%w: contour has no area", ErrTooFewPoints)
	}
	return pts, nil
}

// subtract removes hole from the running outer loop. Holes fully inside are
// kept as separate loops; holes crossing the boundary notch the outer loop.
// Any hole that cannot be applied leaves outer and holes unchanged.
func (pr *Processor) subtract(outer []math.Vec2, holes [][]math.Vec2, hole []math.Vec2, index int, diags *Diagnostics) ([]math.Vec2, [][]math.Vec2) {
	outerRing := toRing(outer)
	if !boundsOverlap(outerRing, toRing(hole)) {
		diags.Add(DiagHoleOutside, index, -1, "hole lies outside the outer contour")
		return outer, holes
	}

	var pieces [][]math.Vec2
	var err error
	shifted := hole
	for attempt := 0; attempt <= maxPerturbations; attempt++ {
		if attempt > 0 {
			shifted = perturb(hole, attempt, pr.Tolerance)
		}
		pieces, err = difference(outer, shifted)
		if err == nil {
			break
		}
	}
	if err != nil {
		diags.Add(DiagHoleSkipped, index, -1, "hole boundary is degenerate against the outer contour")
		return outer, holes
	}

	if pieces == nil {
		switch {
		case contains(outerRing, shifted[0]):
			for _, h := range holes {
				if loopsIntersect(h, shifted) || contains(toRing(h), shifted[0]) || contains(toRing(shifted), h[0]) {
					diags.Add(DiagHoleSkipped, index, -1, "hole overlaps another hole")
					return outer, holes
				}
			}
			return outer, append(holes, shifted)
		case contains(toRing(shifted), outer[0]):
			diags.Add(DiagHoleSkipped, index, -1, "hole covers the whole outer contour")
		default:
			diags.Add(DiagHoleOutside, index, -1, "hole lies outside the outer contour")
		}
		return outer, holes
	}

	best, bestArea := -1, 0.0
	for i, piece := range pieces {
		if a := stdmath.Abs(SignedArea(piece)); a > bestArea {
			best, bestArea = i, a
		}
	}
	if best < 0 || bestArea < pr.Tolerance*pr.Tolerance {
		diags.Add(DiagHoleSkipped, index, -1, "subtraction left no area")
		return outer, holes
	}
	if len(pieces) == 1 && stdmath.Abs(stdmath.Abs(SignedArea(outer))-bestArea) < pr.Tolerance*pr.Tolerance {
		diags.Add(DiagHoleOutside, index, -1, "hole only touches the outer contour")
		return outer, holes
	}
	if len(pieces) > 1 {
		diags.Add(DiagPiecesDropped, index, -1, "subtraction split the profile, kept the largest of %d pieces", len(pieces))
	}

	next := orient(pieces[best], true)
	next, _ = dedupe(next, nil, pr.Tolerance)
	nextRing := toRing(next)
	for _, h := range holes {
		if !holeInside(nextRing, next, h) {
			diags.Add(DiagHoleSkipped, index, -1, "subtraction would cut an existing hole")
			return outer, holes
		}
	}
	return next, holes
}

func holeInside(ring orb.Ring, outer, hole []math.Vec2) bool {
	for _, p := range hole {
		if !contains(ring, p) {
			return false
		}
	}
	return !loopsIntersect(outer, hole)
}

// perturb nudges a loop by a fraction of the tolerance to break exact
// vertex-on-edge contacts.
func perturb(loop []math.Vec2, attempt int, tol float64) []math.Vec2 {
	d := math.V2(0.37, 0.23).Scale(tol * 0.01 * float64(attempt))
	out := make([]math.Vec2, len(loop))
	for i, p := range loop {
		out[i] = p.Add(d)
	}
	return out
}
