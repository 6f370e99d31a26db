package profile

import (
	"errors"
	"fmt"
	stdmath "math"

	polyclip "github.com/akavel/polyclip-go"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

var errDegenerate = errors.New("degenerate intersection")

// segmentIntersection returns the parameters along p1p2 and q1q2 of their
// crossing point. Parallel segments report no crossing unless they overlap,
// which is reported as degenerate.
func segmentIntersection(p1, p2, q1, q2 math.Vec2) (a, b float64, hit bool, err error) {
	r := p2.Sub(p1)
	s := q2.Sub(q1)
	denom := r.Cross(s)
	qp := q1.Sub(p1)
	scale := r.Length() * s.Length()
	if stdmath.Abs(denom) <= 1e-12*scale {
		if stdmath.Abs(qp.Cross(r)) > 1e-9*stdmath.Max(1, r.Length()) {
			return 0, 0, false, nil
		}
		rr := r.Dot(r)
		if rr == 0 {
			return 0, 0, false, nil
		}
		t0 := qp.Dot(r) / rr
		t1 := t0 + s.Dot(r)/rr
		if stdmath.Max(t0, t1) < 0 || stdmath.Min(t0, t1) > 1 {
			return 0, 0, false, nil
		}
		return 0, 0, false, errDegenerate
	}
	a = qp.Cross(s) / denom
	b = qp.Cross(r) / denom
	const eps = 1e-9
	if a < -eps || a > 1+eps || b < -eps || b > 1+eps {
		return 0, 0, false, nil
	}
	if a < eps || a > 1-eps || b < eps || b > 1-eps {
		return a, b, true, errDegenerate
	}
	return a, b, true, nil
}

// loopsIntersect reports whether any edge of a touches any edge of b.
func loopsIntersect(a, b []math.Vec2) bool {
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			_, _, hit, err := segmentIntersection(a1, a2, b[j], b[(j+1)%len(b)])
			if hit || err != nil {
				return true
			}
		}
	}
	return false
}

// difference subtracts clip from subject and returns the resulting outer
// loops. It returns nil pieces when the loops do not touch, and
// errDegenerate when the result keeps part of clip as an interior hole,
// which happens when clip only touches subject from the inside.
func difference(subject, clip []math.Vec2) (pieces [][]math.Vec2, err error) {
	if !loopsIntersect(subject, clip) {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			pieces, err = nil, fmt.Errorf("%w: %v", errDegenerate, r)
		}
	}()
	result := toPolygon(subject).Construct(polyclip.DIFFERENCE, toPolygon(clip))

	loops := make([][]math.Vec2, 0, len(result))
	for _, c := range result {
		if loop := fromContour(c); len(loop) >= MinPoints {
			loops = append(loops, loop)
		}
	}
	for i, inner := range loops {
		for j, outer := range loops {
			if i != j && nested(outer, inner) {
				return nil, errDegenerate
			}
		}
	}
	return loops, nil
}

// nested reports whether every point of inner lies within outer.
func nested(outer, inner []math.Vec2) bool {
	ring := toRing(outer)
	for _, p := range inner {
		if !contains(ring, p) {
			return false
		}
	}
	return true
}

func toPolygon(loop []math.Vec2) polyclip.Polygon {
	c := make(polyclip.Contour, len(loop))
	for i, p := range loop {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return polyclip.Polygon{c}
}

func fromContour(c polyclip.Contour) []math.Vec2 {
	loop := make([]math.Vec2, 0, len(c))
	for _, p := range c {
		v := math.V2(p.X, p.Y)
		if n := len(loop); n > 0 && loop[n-1].NearlyEqual(v, 1e-12) {
			continue
		}
		loop = append(loop, v)
	}
	if n := len(loop); n > 1 && loop[n-1].NearlyEqual(loop[0], 1e-12) {
		loop = loop[:n-1]
	}
	return loop
}
