package mesh

import (
	"fmt"
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/sweepmesh/internal/logger"
	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

const (
	// AxisTolerance is the radius below which a profile point lies on the
	// rotation axis.
	AxisTolerance = 1e-5
	// fullTurnTolerance is how close |angle| must be to 2*pi to count as a
	// full revolution.
	fullTurnTolerance = 1e-4
)

// RevolutionSpec describes a lathe solid. Profile X is the distance from
// Axis and profile Y the height along it. Angle is signed, in radians.
// Segments <= 0 selects a count from Settings.
type RevolutionSpec struct {
	Profile  *profile.Processed
	Axis     math.Vec3
	Center   math.Vec3
	Angle    float64
	Segments int
}

// revLoop is one profile loop prepared for revolution.
type revLoop struct {
	pts    []math.Vec2
	normal []math.Vec2 // averaged outward normal per point
	acc    []float64
	closed bool
	// sign flips outward normals for clockwise open polylines.
	sign float64
}

// Revolve rotates the profile about the axis. Full turns wrap the last ring
// onto the first; partial turns add flat end faces from the cap
// triangulation. Points on the axis collapse to one shared vertex, so edges
// touching the axis become fans and edges lying on it emit nothing.
func Revolve(spec RevolutionSpec, settings Settings) (*Mesh, error) {
	p := spec.Profile
	if p == nil {
		return nil, ErrNilProfile
	}
	if len(p.Points) < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrTooFewProfilePoints, len(p.Points))
	}
	axis := spec.Axis.Normalize()
	if axis.IsZero(math.Epsilon) {
		return nil, ErrDegenerateAxis
	}
	settings = settings.orDefault()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	angle := clamp(spec.Angle, -2*stdmath.Pi, 2*stdmath.Pi)
	if stdmath.Abs(angle) < 1e-9 || stdmath.IsNaN(angle) {
		return nil, ErrZeroAngle
	}
	full := stdmath.Abs(stdmath.Abs(angle)-2*stdmath.Pi) < fullTurnTolerance

	m := &Mesh{}
	m.Diagnostics = append(m.Diagnostics, p.Diagnostics...)

	p, err := clipToAxis(p, &m.Diagnostics)
	if err != nil {
		return nil, err
	}

	maxR := 0.0
	for _, loop := range p.Loops() {
		for _, pt := range loop {
			maxR = stdmath.Max(maxR, pt.X)
		}
	}
	if maxR < AxisTolerance {
		return nil, fmt.Errorf("%w: profile lies on the axis", ErrTooFewProfilePoints)
	}
	segments := spec.Segments
	if segments <= 0 {
		segments = settings.Count(maxR*stdmath.Abs(angle), maxR)
	}

	ringCount := segments + 1
	if full {
		ringCount = segments
		angle = 2 * stdmath.Pi * sign(angle)
	}
	radial0 := math.LeastAlignedAxis(axis).Reject(axis).Normalize()
	radials := make([]math.Vec3, segments+1)
	for j := range radials {
		radials[j] = math.QuatFromAxisAngle(axis, angle*float64(j)/float64(segments)).Rotate(radial0)
	}
	rot := sign(angle)

	loops := prepareLoops(p)
	offs := loopOffsets(p.Loops())
	n := p.PointCount()

	// idx[j][i] is the vertex of profile point i on ring j.
	idx := make([][]uint32, ringCount)
	for j := range idx {
		idx[j] = make([]uint32, n)
	}
	for l, lp := range loops {
		for i, pt := range lp.pts {
			g := offs[l] + i
			nrm := lp.normal[i]
			u := 0.0
			if total := lp.acc[len(lp.pts)]; total > 0 {
				u = lp.acc[i] / total
			}
			if pt.X == 0 {
				an := axis.Scale(sign(nrm.Y))
				if nrm.Y == 0 {
					an = axis
				}
				v := m.addVertex(axis.Scale(pt.Y).Add(spec.Center), an, math.V2(u, 0))
				for j := range idx {
					idx[j][g] = v
				}
				continue
			}
			for j := 0; j < ringCount; j++ {
				r := radials[j]
				normal := r.Scale(nrm.X).Add(axis.Scale(nrm.Y))
				if !full && (j == 0 || j == segments) {
					normal = axis.Cross(r).Scale(rot)
					if j == 0 {
						normal = normal.Neg()
					}
				}
				pos := spec.Center.Add(axis.Scale(pt.Y)).Add(r.Scale(pt.X))
				idx[j][g] = m.addVertex(pos, normal.Normalize(), math.V2(u, float64(j)/float64(segments)))
			}
		}
	}

	for l, lp := range loops {
		edges := len(lp.pts) - 1
		if lp.closed || full {
			edges = len(lp.pts)
		}
		for i := 0; i < edges; i++ {
			i1 := (i + 1) % len(lp.pts)
			a2, b2 := lp.pts[i], lp.pts[i1]
			if a2.Distance(b2) < math.Epsilon {
				continue
			}
			aOn, bOn := a2.X == 0, b2.X == 0
			if aOn && bOn {
				continue
			}
			o2 := outward2D(a2, b2).Scale(lp.sign)
			ga, gb := offs[l]+i, offs[l]+i1
			for j := 0; j < segments; j++ {
				j0, j1 := j, j+1
				if full {
					j1 %= ringCount
				}
				mid := radials[j].Add(radials[j+1]).Normalize()
				if mid.IsZero(math.Epsilon) {
					mid = radials[j]
				}
				want := mid.Scale(o2.X).Add(axis.Scale(o2.Y))
				a0, b0, a1, b1 := idx[j0][ga], idx[j0][gb], idx[j1][ga], idx[j1][gb]
				switch {
				case aOn:
					m.addOriented(a0, b0, b1, want)
				case bOn:
					m.addOriented(a0, b0, a1, want)
				default:
					m.addOriented(a0, b0, b1, want)
					m.addOriented(a0, b1, a1, want)
				}
			}
		}
	}

	capped := !full && !p.Open
	if capped {
		startN := axis.Cross(radials[0]).Scale(-rot)
		endN := axis.Cross(radials[segments]).Scale(rot)
		tris := p.TriIndices
		for t := 0; t+2 < len(tris); t += 3 {
			a, b, c := tris[t], tris[t+1], tris[t+2]
			m.addOriented(idx[0][a], idx[0][b], idx[0][c], startN)
			last := idx[ringCount-1]
			m.addOriented(last[a], last[b], last[c], endN)
		}
	}

	for l, lp := range loops {
		edges := len(lp.pts) - 1
		if lp.closed {
			edges = len(lp.pts)
		}
		for i := 0; i < edges; i++ {
			a := offs[l] + i
			b := offs[l] + (i+1)%len(lp.pts)
			m.Edges = append(m.Edges, Edge{idx[0][a], idx[0][b]})
			if !full {
				m.Edges = append(m.Edges, Edge{idx[ringCount-1][a], idx[ringCount-1][b]})
			}
		}
	}

	m.ComputeBounds()
	logger.Debug("revolution built",
		zap.Int("segments", segments),
		zap.Bool("full", full),
		zap.Bool("capped", capped),
		zap.Int("triangles", m.TriangleCount()),
	)
	return m, nil
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// prepareLoops computes per-point outward normals and perimeter parameters.
func prepareLoops(p *profile.Processed) []revLoop {
	var loops []revLoop
	for _, pts := range p.Loops() {
		lp := revLoop{pts: pts, closed: !p.Open, sign: 1}
		if p.Open && profile.SignedArea(pts) < 0 {
			lp.sign = -1
		}
		lp.acc = perimeter(pts, lp.closed)
		lp.normal = make([]math.Vec2, len(pts))
		n := len(pts)
		for i := range pts {
			var sum math.Vec2
			if lp.closed || i > 0 {
				prev := pts[(i+n-1)%n]
				sum = sum.Add(outward2D(prev, pts[i]))
			}
			if lp.closed || i < n-1 {
				sum = sum.Add(outward2D(pts[i], pts[(i+1)%n]))
			}
			nrm := sum.Scale(lp.sign).Normalize()
			if nrm == (math.Vec2{}) {
				nrm = math.V2(1, 0)
			}
			lp.normal[i] = nrm
		}
		loops = append(loops, lp)
	}
	return loops
}

// clipToAxis removes the part of the profile at negative radius and snaps
// near-axis points onto the axis. A clipped closed profile is processed
// again so its cap triangulation matches the new outline.
func clipToAxis(p *profile.Processed, diags *profile.Diagnostics) (*profile.Processed, error) {
	changed := false
	var loops [][]math.Vec2
	for _, loop := range p.Loops() {
		var out []math.Vec2
		if p.Open {
			out = clipOpen(loop)
		} else {
			out = clipClosed(loop)
		}
		for i := range out {
			if stdmath.Abs(out[i].X) < AxisTolerance {
				if out[i].X != 0 {
					changed = true
				}
				out[i].X = 0
			}
		}
		if len(out) != len(loop) {
			changed = true
		} else {
			for i := range out {
				if out[i] != loop[i] {
					changed = true
					break
				}
			}
		}
		loops = append(loops, out)
	}
	if !changed {
		return p, nil
	}

	if p.Open {
		if len(loops[0]) < 2 {
			return nil, fmt.Errorf("%w: nothing left at positive radius", ErrTooFewProfilePoints)
		}
		diags.Add(profile.DiagProfileClipped, -1, -1, "open profile clipped to positive radius")
		out, err := profile.NewOpen(loops[0])
		if err != nil {
			return nil, err
		}
		return out, nil
	}

	if len(loops[0]) < profile.MinPoints {
		return nil, fmt.Errorf("%w: nothing left at positive radius", ErrTooFewProfilePoints)
	}
	contours := []profile.Contour{profile.NewContour(loops[0]...)}
	for _, h := range loops[1:] {
		if len(h) >= profile.MinPoints {
			contours = append(contours, profile.NewHole(h...))
		}
	}
	diags.Add(profile.DiagProfileClipped, -1, -1, "profile clipped to positive radius")
	out, err := profile.NewProcessor().Process(contours)
	if err != nil {
		return nil, fmt.Errorf("reprocessing clipped profile: %w", err)
	}
	return out, nil
}

func axisCrossing(a, b math.Vec2) math.Vec2 {
	t := a.X / (a.X - b.X)
	return math.V2(0, a.Y+(b.Y-a.Y)*t)
}

// clipClosed clips a loop to the half plane x >= 0.
func clipClosed(loop []math.Vec2) []math.Vec2 {
	var out []math.Vec2
	n := len(loop)
	for i := 0; i < n; i++ {
		a, b := loop[i], loop[(i+1)%n]
		if a.X >= 0 {
			out = append(out, a)
		}
		if (a.X < 0) != (b.X < 0) && a.X != 0 && b.X != 0 {
			out = append(out, axisCrossing(a, b))
		}
	}
	return out
}

// clipOpen clips a polyline to x >= 0 and keeps its longest surviving run.
func clipOpen(line []math.Vec2) []math.Vec2 {
	var runs [][]math.Vec2
	var cur []math.Vec2
	for i, a := range line {
		if a.X >= 0 {
			cur = append(cur, a)
		}
		if i+1 == len(line) {
			break
		}
		b := line[i+1]
		if (a.X < 0) != (b.X < 0) && a.X != 0 && b.X != 0 {
			c := axisCrossing(a, b)
			if a.X >= 0 {
				cur = append(cur, c)
				runs = append(runs, cur)
				cur = nil
			} else {
				cur = append(cur, c)
			}
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	var best []math.Vec2
	for _, r := range runs {
		if len(r) > len(best) {
			best = r
		}
	}
	return best
}
