package mesh

import (
	"errors"
	stdmath "math"

	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/path"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// frame is an orthonormal basis at one path sample. Profile X maps to R and
// profile Y to U; R x U = T.
type frame struct {
	Pos, T, R, U math.Vec3
	Dist         float64
}

func (f frame) local(p math.Vec2) math.Vec3 {
	return f.R.Scale(p.X).Add(f.U.Scale(p.Y))
}

type pathSample struct {
	pos, tan math.Vec3
}

// parallelLimit is the |cos| above which two directions are treated as
// parallel when choosing a reference axis.
const parallelLimit = 0.99

// samplePath evaluates positions and tangents along the path. Lines
// contribute their end points and arcs a heuristic number of samples. A
// joint shared by two segments is emitted once with the averaged tangent.
func samplePath(pth path.Path, s Settings, diags *profile.Diagnostics) []pathSample {
	var out []pathSample
	for i, seg := range pth.Segments {
		if seg.Length() < math.Epsilon {
			diags.Add(profile.DiagZeroLengthSegment, -1, i, "zero-length path segment skipped")
			continue
		}
		steps := 1
		if arc, ok := seg.(path.Arc); ok {
			steps = s.Count(arc.Length(), arc.Radius)
		}
		for k := 0; k <= steps; k++ {
			t := float64(k) / float64(steps)
			smp := pathSample{pos: seg.PointAt(t), tan: seg.TangentAt(t)}
			if k == 0 && len(out) > 0 {
				last := &out[len(out)-1]
				if last.pos.Distance(smp.pos) <= path.ContinuityTolerance {
					avg := last.tan.Add(smp.tan).Normalize()
					if avg.IsZero(math.Epsilon) {
						avg = smp.tan
					}
					last.tan = avg
					continue
				}
			}
			out = append(out, smp)
		}
	}
	return out
}

// defaultUp picks the reference used to orient the profile on a straight
// start: ref when usable, else world Y, else world X.
func defaultUp(t, ref math.Vec3) math.Vec3 {
	for _, cand := range []math.Vec3{ref, math.UnitY, math.UnitX} {
		c := cand.Normalize()
		if c.IsZero(math.Epsilon) || stdmath.Abs(c.Dot(t)) > parallelLimit {
			continue
		}
		return c
	}
	return t.AnyPerpendicular()
}

// upFrom projects ref off the tangent t.
func upFrom(t, ref math.Vec3) (math.Vec3, bool) {
	up := ref.Reject(t).Normalize()
	return up, !up.IsZero(math.Epsilon)
}

func makeFrame(pos, t, up math.Vec3) frame {
	r := up.Cross(t).Normalize()
	return frame{Pos: pos, T: t, R: r, U: t.Cross(r)}
}

// transport carries up from sample (x0, t0) to (x1, t1) by double
// reflection, giving a rotation-minimizing frame.
func transport(x0, t0, u0, x1, t1 math.Vec3) math.Vec3 {
	v1 := x1.Sub(x0)
	c1 := v1.Dot(v1)
	u := u0
	if c1 > 1e-18 {
		uL := u0.Sub(v1.Scale(2 / c1 * v1.Dot(u0)))
		tL := t0.Sub(v1.Scale(2 / c1 * v1.Dot(t0)))
		v2 := t1.Sub(tL)
		c2 := v2.Dot(v2)
		u = uL
		if c2 > 1e-18 {
			u = uL.Sub(v2.Scale(2 / c2 * v2.Dot(uL)))
		}
	}
	if up, ok := upFrom(t1, u); ok {
		return up
	}
	return t1.AnyPerpendicular()
}

var errTooFewSamples = errors.New("too few path samples")

// buildFrames samples the path and attaches a frame to every sample. A
// single arc orients every frame from its reference axis; other paths use
// rotation-minimizing frames seeded from the first segment. Closed paths
// drop the duplicate end sample and spread the accumulated twist evenly.
func buildFrames(pth path.Path, s Settings, ref math.Vec3, diags *profile.Diagnostics) ([]frame, bool, error) {
	samples := samplePath(pth, s, diags)
	if len(samples) < 2 {
		return nil, false, errTooFewSamples
	}

	closed := false
	if pth.IsClosed() && len(samples) >= 4 {
		first, last := samples[0], samples[len(samples)-1]
		if first.pos.Distance(last.pos) < path.ClosedTolerance {
			samples = samples[:len(samples)-1]
			if avg := first.tan.Add(last.tan).Normalize(); !avg.IsZero(math.Epsilon) {
				samples[0].tan = avg
			}
			closed = true
		}
	}

	frames := make([]frame, len(samples))
	dist := 0.0
	arc, single := pth.SingleArc()
	for k, smp := range samples {
		if k > 0 {
			dist += smp.pos.Distance(samples[k-1].pos)
		}
		var up math.Vec3
		ok := false
		switch {
		case single:
			r := arc.Reference()
			if !ref.IsZero(math.Epsilon) {
				r = ref
			}
			up, ok = upFrom(smp.tan, r)
			if ok && stdmath.Abs(r.Normalize().Dot(smp.tan)) > 0.999 {
				ok = false
			}
		case k == 0:
			if a, isArc := pth.Segments[0].(path.Arc); isArc && ref.IsZero(math.Epsilon) {
				up, ok = upFrom(smp.tan, a.Reference())
			}
			if !ok {
				up, ok = upFrom(smp.tan, defaultUp(smp.tan, ref))
			}
		}
		if !ok {
			if k == 0 {
				up = smp.tan.AnyPerpendicular()
			} else {
				prev := frames[k-1]
				up = transport(prev.Pos, prev.T, prev.U, smp.pos, smp.tan)
			}
		}
		frames[k] = makeFrame(smp.pos, smp.tan, up)
		frames[k].Dist = dist
	}

	if closed && !single {
		n := len(frames)
		last := frames[n-1]
		wrapped := transport(last.Pos, last.T, last.U, frames[0].Pos, frames[0].T)
		t0 := frames[0].T
		phi := stdmath.Atan2(t0.Dot(wrapped.Cross(frames[0].U)), wrapped.Dot(frames[0].U))
		for k := range frames {
			f := frames[k]
			up := f.U.Rotate(f.T, phi*float64(k)/float64(n))
			frames[k] = makeFrame(f.Pos, f.T, up)
			frames[k].Dist = f.Dist
		}
	}
	return frames, closed, nil
}
