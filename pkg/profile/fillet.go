package profile

import (
	stdmath "math"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// ArcOptions controls how fillet arcs are approximated.
type ArcOptions struct {
	// MaxStepDegrees is the largest angle covered by one arc chord.
	MaxStepDegrees float64
	// MaxStepLength is the largest arc length covered by one chord.
	MaxStepLength float64
	MinSegments   int
	MaxSegments   int
}

// DefaultArcOptions samples every 5 degrees or 100 units, 2 to 128 chords.
func DefaultArcOptions() ArcOptions {
	return ArcOptions{
		MaxStepDegrees: 5,
		MaxStepLength:  100,
		MinSegments:    2,
		MaxSegments:    128,
	}
}

// Segments returns the chord count for an arc of the given sweep and radius.
// The count is even so the arc midpoint is always a sample.
func (o ArcOptions) Segments(sweep, radius float64) int {
	sweep = stdmath.Abs(sweep)
	n := 0
	if o.MaxStepDegrees > 0 {
		n = int(stdmath.Ceil(sweep * 180 / stdmath.Pi / o.MaxStepDegrees))
	}
	if o.MaxStepLength > 0 {
		if m := int(stdmath.Ceil(sweep * radius / o.MaxStepLength)); m > n {
			n = m
		}
	}
	n = max(n, o.MinSegments)
	n = min(n, o.MaxSegments)
	if n%2 == 1 {
		n++
	}
	return n
}

// expandFillets replaces every filleted corner of loop with sampled arc
// points. The bound is on the tangent length r/tan(theta/2), not on r
// itself: it must not exceed half of either adjacent edge, so fillets on
// neighbouring corners never overlap. Corners that fail it stay sharp and
// are reported.
func expandFillets(loop []math.Vec2, radii []float64, opts ArcOptions, contour int, diags *Diagnostics) []math.Vec2 {
	n := len(loop)
	out := make([]math.Vec2, 0, n)
	for i, p := range loop {
		r := 0.0
		if i < len(radii) {
			r = radii[i]
		}
		if r <= 0 {
			out = append(out, p)
			continue
		}

		prev := loop[(i+n-1)%n]
		next := loop[(i+1)%n]
		lenIn := p.Distance(prev)
		lenOut := p.Distance(next)
		e1 := prev.Sub(p).Normalize()
		e2 := next.Sub(p).Normalize()
		theta := stdmath.Acos(clamp(e1.Dot(e2), -1, 1))
		if theta < 1e-6 || stdmath.Pi-theta < 1e-6 {
			diags.Add(DiagFilletSkipped, contour, i, "corner is straight or a cusp, fillet radius %g ignored", r)
			out = append(out, p)
			continue
		}

		half := theta / 2
		d := r / stdmath.Tan(half)
		if d > lenIn/2+1e-9 || d > lenOut/2+1e-9 {
			diags.Add(DiagFilletSkipped, contour, i,
				"fillet radius %g needs tangent length %.4g, edges are %.4g and %.4g", r, d, lenIn, lenOut)
			out = append(out, p)
			continue
		}

		t1 := p.Add(e1.Scale(d))
		t2 := p.Add(e2.Scale(d))
		center := p.Add(e1.Add(e2).Normalize().Scale(r / stdmath.Sin(half)))

		a1 := t1.Sub(center)
		a2 := t2.Sub(center)
		start := stdmath.Atan2(a1.Y, a1.X)
		sweep := stdmath.Atan2(a1.Cross(a2), a1.Dot(a2))
		segs := opts.Segments(sweep, r)

		out = append(out, t1)
		for k := 1; k < segs; k++ {
			s, c := stdmath.Sincos(start + sweep*float64(k)/float64(segs))
			out = append(out, center.Add(math.V2(c*r, s*r)))
		}
		out = append(out, t2)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return stdmath.Max(lo, stdmath.Min(hi, v))
}
