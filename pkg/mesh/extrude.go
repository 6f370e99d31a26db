package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sweepmesh/internal/logger"
	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

func checkClosedProfile(p *profile.Processed) error {
	switch {
	case p == nil:
		return ErrNilProfile
	case p.Open:
		return ErrOpenProfile
	case len(p.Points) < profile.MinPoints:
		return fmt.Errorf("%w: %d points", ErrTooFewProfilePoints, len(p.Points))
	}
	return nil
}

// Extrude builds a prism from z=0 to z=height: flat-shaded side quads with
// four vertices each, a bottom cap facing -Z and a top cap facing +Z.
func Extrude(p *profile.Processed, height float64) (*Mesh, error) {
	if err := checkClosedProfile(p); err != nil {
		return nil, err
	}
	if !(height > 0) {
		return nil, fmt.Errorf("%w: %g", ErrNonPositiveHeight, height)
	}

	m := &Mesh{}
	loops := p.Loops()
	for _, loop := range loops {
		acc := perimeter(loop, true)
		for i := range loop {
			a, b := loop[i], loop[(i+1)%len(loop)]
			if a.Distance(b) < math.Epsilon {
				continue
			}
			n := outward2D(a, b).Extend(0)
			u0, u1 := acc[i]*UVScale, acc[i+1]*UVScale
			v := height * UVScale
			i0 := m.addVertex(a.Extend(0), n, math.V2(u0, 0))
			m.addVertex(b.Extend(0), n, math.V2(u1, 0))
			m.addVertex(b.Extend(height), n, math.V2(u1, v))
			m.addVertex(a.Extend(height), n, math.V2(u0, v))
			m.addTriangle(i0, i0+1, i0+2)
			m.addTriangle(i0, i0+2, i0+3)
		}
	}

	bottom := uint32(len(m.Vertices))
	for _, pt := range p.TriVertices {
		m.addVertex(pt.Extend(0), math.UnitZ.Neg(), pt.Scale(UVScale))
	}
	top := uint32(len(m.Vertices))
	for _, pt := range p.TriVertices {
		m.addVertex(pt.Extend(height), math.UnitZ, pt.Scale(UVScale))
	}
	for t := 0; t+2 < len(p.TriIndices); t += 3 {
		a, b, c := p.TriIndices[t], p.TriIndices[t+1], p.TriIndices[t+2]
		m.addTriangle(bottom+a, bottom+c, bottom+b)
		m.addTriangle(top+a, top+b, top+c)
	}

	offs := loopOffsets(loops)
	for l, loop := range loops {
		for i := range loop {
			j := (i + 1) % len(loop)
			m.Edges = append(m.Edges,
				Edge{bottom + uint32(offs[l]+i), bottom + uint32(offs[l]+j)},
				Edge{top + uint32(offs[l]+i), top + uint32(offs[l]+j)},
			)
		}
	}

	m.Diagnostics = append(m.Diagnostics, p.Diagnostics...)
	m.ComputeBounds()
	logger.Debug("extrusion built",
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()),
		zap.Float64("height", height),
	)
	return m, nil
}
