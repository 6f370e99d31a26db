package mesh

import (
	"errors"
	"fmt"
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/sweepmesh/internal/logger"
	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/path"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// minTiltDot is the smallest |cos| between a tilt normal and the path
// tangent that still yields a usable cap plane.
const minTiltDot = 0.1

// SweepOptions tunes Sweep.
type SweepOptions struct {
	// TiltStart and TiltEnd are optional cap plane normals for mitred ends.
	TiltStart *math.Vec3
	TiltEnd   *math.Vec3
	// RefAxis orients the profile; zero selects world Y (or X).
	RefAxis  math.Vec3
	Settings Settings
}

// SweepSpec describes a swept solid from raw contours.
type SweepSpec struct {
	Contours  []profile.Contour
	Path      path.Path
	TiltStart *math.Vec3
	TiltEnd   *math.Vec3
	// Rotation turns the profile in its plane, in radians.
	Rotation float64
	// Anchor is the profile point placed on the path.
	Anchor  math.Vec2
	RefAxis math.Vec3
	Mirror  bool
	// Processor cleans the transformed contours; nil uses the defaults.
	Processor *profile.Processor
}

// ProfileTransform maps raw contour coordinates into the sweep plane: move
// Anchor to the origin, rotate, then mirror X if requested.
func (s SweepSpec) ProfileTransform() math.Mat4 {
	m := math.RotateAxis(math.UnitZ, s.Rotation).Mul(math.Translate(-s.Anchor.X, -s.Anchor.Y, 0))
	if s.Mirror {
		m = math.Scale(-1, 1, 1).Mul(m)
	}
	return m
}

// SweepSolid transforms and processes the contours of spec, then sweeps
// them along its path.
func SweepSolid(spec SweepSpec, settings Settings) (*Mesh, error) {
	xf := spec.ProfileTransform()
	contours := make([]profile.Contour, len(spec.Contours))
	for i, c := range spec.Contours {
		pts := make([]math.Vec2, len(c.Points))
		for j, p := range c.Points {
			pts[j] = xf.TransformPoint2(p)
		}
		contours[i] = profile.Contour{Points: pts, Radii: c.Radii, Hole: c.Hole}
	}
	pr := spec.Processor
	if pr == nil {
		pr = profile.NewProcessor()
	}
	p, err := pr.Process(contours)
	if err != nil {
		return nil, fmt.Errorf("processing sweep profile: %w", err)
	}
	return Sweep(p, spec.Path, SweepOptions{
		TiltStart: spec.TiltStart,
		TiltEnd:   spec.TiltEnd,
		RefAxis:   spec.RefAxis,
		Settings:  settings,
	})
}

// Sweep moves the profile along the path and skins consecutive rings with
// flat-shaded quads. Open paths are closed with a cap at each end.
func Sweep(p *profile.Processed, pth path.Path, opts SweepOptions) (*Mesh, error) {
	if err := checkClosedProfile(p); err != nil {
		return nil, err
	}
	if pth.IsEmpty() {
		return nil, ErrEmptyPath
	}
	if pth.Length() < math.Epsilon {
		return nil, ErrZeroLengthPath
	}
	settings := opts.Settings.orDefault()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	for i, seg := range pth.Segments {
		if seg == nil {
			return nil, fmt.Errorf("segment %d: %w", i, path.ErrUnknownSegmentKind)
		}
		if err := seg.Validate(); err != nil && !errors.Is(err, path.ErrZeroLength) {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	m := &Mesh{}
	m.Diagnostics = append(m.Diagnostics, p.Diagnostics...)
	if ok, idx := pth.Continuity(); !ok {
		m.Diagnostics.Add(profile.DiagDiscontinuousPath, -1, idx, "segment %d does not end where segment %d starts", idx, idx+1)
	}

	frames, closed, err := buildFrames(pth, settings, opts.RefAxis, &m.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZeroLengthPath, err)
	}

	first, last := frames[0], frames[len(frames)-1]
	var startN, endN math.Vec3
	var startTilted, endTilted bool
	if closed {
		if opts.TiltStart != nil || opts.TiltEnd != nil {
			m.Diagnostics.Add(profile.DiagTiltIgnored, -1, -1, "closed path has no caps, tilt ignored")
		}
	} else {
		startN, startTilted = capNormal(opts.TiltStart, first.T, -1, "start", &m.Diagnostics)
		endN, endTilted = capNormal(opts.TiltEnd, last.T, 1, "end", &m.Diagnostics)
	}

	verts := p.TriVertices
	rings := make([][]math.Vec3, len(frames))
	for k, f := range frames {
		ring := make([]math.Vec3, len(verts))
		for i, pt := range verts {
			loc := f.local(pt)
			switch {
			case k == 0 && startTilted:
				loc = loc.Add(f.T.Scale(-startN.Dot(loc) / startN.Dot(f.T)))
			case k == len(frames)-1 && endTilted:
				loc = loc.Add(f.T.Scale(-endN.Dot(loc) / endN.Dot(f.T)))
			}
			ring[i] = f.Pos.Add(loc)
		}
		rings[k] = ring
	}

	pairs := len(frames) - 1
	total := last.Dist
	if closed {
		pairs = len(frames)
		total += last.Pos.Distance(first.Pos)
	}

	loops := p.Loops()
	offs := loopOffsets(loops)
	skipped := 0
	for l, loop := range loops {
		acc := perimeter(loop, true)
		perim := acc[len(loop)]
		for i := range loop {
			j := (i + 1) % len(loop)
			a2, b2 := loop[i], loop[j]
			if a2.Distance(b2) < math.Epsilon {
				skipped++
				continue
			}
			o2 := outward2D(a2, b2)
			ia, ib := offs[l]+i, offs[l]+j
			u0, u1 := acc[i]/perim, acc[i+1]/perim
			for k := 0; k < pairs; k++ {
				k1 := (k + 1) % len(frames)
				v0, v1 := frames[k].Dist*UVScale, frames[k1].Dist*UVScale
				if k1 == 0 {
					v1 = total * UVScale
				}
				if !m.addQuad(
					rings[k][ia], rings[k][ib], rings[k1][ib], rings[k1][ia],
					frames[k].local(o2),
					[4]math.Vec2{{X: u0, Y: v0}, {X: u1, Y: v0}, {X: u1, Y: v1}, {X: u0, Y: v1}},
				) {
					skipped++
				}
			}
		}
	}
	if skipped > 0 {
		m.Diagnostics.Add(profile.DiagDegenerateFace, -1, -1, "%d degenerate side faces skipped", skipped)
	}

	if !closed {
		startBase := m.addCap(rings[0], verts, p.TriIndices, startN)
		endBase := m.addCap(rings[len(rings)-1], verts, p.TriIndices, endN)
		for l, loop := range loops {
			for i := range loop {
				a := uint32(offs[l] + i)
				b := uint32(offs[l] + (i+1)%len(loop))
				m.Edges = append(m.Edges, Edge{startBase + a, startBase + b}, Edge{endBase + a, endBase + b})
			}
		}
	}

	m.ComputeBounds()
	logger.Debug("sweep built",
		zap.Int("segments", pth.Len()),
		zap.Int("rings", len(frames)),
		zap.Bool("closed", closed),
		zap.Int("triangles", m.TriangleCount()),
	)
	return m, nil
}

// capNormal resolves the outward cap plane normal at one end. sign is -1 at
// the start and +1 at the end. It reports whether the cap is tilted.
func capNormal(tilt *math.Vec3, t math.Vec3, sign float64, end string, diags *profile.Diagnostics) (math.Vec3, bool) {
	def := t.Scale(sign)
	if tilt == nil {
		return def, false
	}
	n := tilt.Normalize()
	if n.IsZero(math.Epsilon) {
		diags.Add(profile.DiagTiltIgnored, -1, -1, "%s tilt is a zero vector", end)
		return def, false
	}
	d := n.Dot(t)
	switch {
	case stdmath.Abs(d) > 1-1e-6:
		return def, false
	case stdmath.Abs(d) < minTiltDot:
		diags.Add(profile.DiagTiltIgnored, -1, -1, "%s tilt is nearly parallel to the cap plane (cos %.3f)", end, d)
		return def, false
	}
	if d*sign < 0 {
		n = n.Neg()
	}
	return n, true
}

// addQuad emits a flat-shaded quad a0 b0 b1 a1 facing toward want. It
// returns false when the quad has no area.
func (m *Mesh) addQuad(a0, b0, b1, a1, want math.Vec3, uv [4]math.Vec2) bool {
	n := b1.Sub(a0).Cross(a1.Sub(b0))
	if n.IsZero(degenerateArea) {
		return false
	}
	flip := n.Dot(want) < 0
	if flip {
		n = n.Neg()
	}
	n = n.Normalize()
	i := m.addVertex(a0, n, uv[0])
	m.addVertex(b0, n, uv[1])
	m.addVertex(b1, n, uv[2])
	m.addVertex(a1, n, uv[3])
	if flip {
		m.addTriangle(i, i+2, i+1)
		m.addTriangle(i, i+3, i+2)
	} else {
		m.addTriangle(i, i+1, i+2)
		m.addTriangle(i, i+2, i+3)
	}
	return true
}

// addCap emits a cap on ring with its own vertices, every triangle wound
// toward n. It returns the index of the first cap vertex.
func (m *Mesh) addCap(ring []math.Vec3, verts []math.Vec2, tris []uint32, n math.Vec3) uint32 {
	base := uint32(len(m.Vertices))
	for i, p := range ring {
		m.addVertex(p, n, verts[i].Scale(UVScale))
	}
	for t := 0; t+2 < len(tris); t += 3 {
		m.addOriented(base+tris[t], base+tris[t+1], base+tris[t+2], n)
	}
	return base
}
