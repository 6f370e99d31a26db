package profile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// dedupe drops consecutive points closer than tol and a closing point that
// repeats the first. radii, when given, is filtered alongside; a dropped
// point passes its radius on to the kept one if larger.
func dedupe(loop []math.Vec2, radii []float64, tol float64) ([]math.Vec2, []float64) {
	out := make([]math.Vec2, 0, len(loop))
	var outR []float64
	if radii != nil {
		outR = make([]float64, 0, len(loop))
	}
	for i, p := range loop {
		r := 0.0
		if i < len(radii) {
			r = radii[i]
		}
		if len(out) > 0 && out[len(out)-1].Distance(p) < tol {
			if outR != nil && r > outR[len(outR)-1] {
				outR[len(outR)-1] = r
			}
			continue
		}
		out = append(out, p)
		if radii != nil {
			outR = append(outR, r)
		}
	}
	for len(out) > 1 && out[len(out)-1].Distance(out[0]) < tol {
		out = out[:len(out)-1]
		if outR != nil {
			last := outR[len(outR)-1]
			outR = outR[:len(outR)-1]
			if last > outR[0] {
				outR[0] = last
			}
		}
	}
	return out, outR
}

// orient returns loop in counter-clockwise order when ccw is set, clockwise
// otherwise. The input is not modified.
func orient(loop []math.Vec2, ccw bool) []math.Vec2 {
	area := SignedArea(loop)
	if (area >= 0) == ccw {
		return loop
	}
	return reversed(loop)
}

func reversed(loop []math.Vec2) []math.Vec2 {
	out := make([]math.Vec2, len(loop))
	for i, p := range loop {
		out[len(loop)-1-i] = p
	}
	return out
}

func toRing(loop []math.Vec2) orb.Ring {
	ring := make(orb.Ring, len(loop), len(loop)+1)
	for i, p := range loop {
		ring[i] = orb.Point{p.X, p.Y}
	}
	if len(loop) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

// contains reports whether p lies inside or on the boundary of ring.
func contains(ring orb.Ring, p math.Vec2) bool {
	return planar.RingContains(ring, orb.Point{p.X, p.Y})
}

// boundsOverlap reports whether the bounding boxes of a and b intersect.
func boundsOverlap(a, b orb.Ring) bool {
	return a.Bound().Intersects(b.Bound())
}
