// Package mesh builds triangle meshes from processed profiles by extrusion,
// sweeping along a path, or revolution about an axis.
package mesh

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/sweepmesh/pkg/math"
	"github.com/Faultbox/sweepmesh/pkg/profile"
)

// Errors returned by the builders.
var (
	ErrNilProfile          = errors.New("profile is nil")
	ErrTooFewProfilePoints = errors.New("profile has too few points")
	ErrOpenProfile         = errors.New("open profiles can only be revolved")
	ErrEmptyPath           = errors.New("path has no segments")
	ErrZeroLengthPath      = errors.New("path has zero length")
	ErrNonPositiveHeight   = errors.New("extrusion height must be positive")
	ErrDegenerateAxis      = errors.New("rotation axis is degenerate")
	ErrZeroAngle           = errors.New("revolution angle is zero")
	ErrInvalidSettings     = errors.New("invalid segment settings")
	ErrInvalidMesh         = errors.New("invalid mesh")
)

// UVScale converts model units to texture units.
const UVScale = 0.01

// Edge is a wireframe line between two vertex indices.
type Edge [2]uint32

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max math.Vec3
}

// Size returns Max - Min.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is an indexed triangle mesh. Normals parallel Vertices; UVs is either
// empty or parallel Vertices.
type Mesh struct {
	Vertices    []math.Vec3
	Normals     []math.Vec3
	Indices     []uint32
	UVs         []math.Vec2
	Edges       []Edge
	Bounds      *Bounds
	Diagnostics profile.Diagnostics
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no triangles.
func (m *Mesh) IsEmpty() bool { return len(m.Indices) == 0 }

func (m *Mesh) addVertex(p, n math.Vec3, uv math.Vec2) uint32 {
	m.Vertices = append(m.Vertices, p)
	m.Normals = append(m.Normals, n)
	m.UVs = append(m.UVs, uv)
	return uint32(len(m.Vertices) - 1)
}

func (m *Mesh) addTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// addOriented adds triangle abc, flipping it if its geometric normal points
// away from want. Triangles with no area are dropped.
func (m *Mesh) addOriented(a, b, c uint32, want math.Vec3) bool {
	n := triangleNormal(m.Vertices[a], m.Vertices[b], m.Vertices[c])
	if n.IsZero(degenerateArea) {
		return false
	}
	if n.Dot(want) < 0 {
		m.addTriangle(a, c, b)
	} else {
		m.addTriangle(a, b, c)
	}
	return true
}

// degenerateArea is the smallest doubled triangle area kept.
const degenerateArea = 1e-10

func triangleNormal(a, b, c math.Vec3) math.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}

// ComputeBounds recomputes and stores the bounding box.
func (m *Mesh) ComputeBounds() *Bounds {
	if len(m.Vertices) == 0 {
		m.Bounds = nil
		return nil
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		b.Min = math.V3(stdmath.Min(b.Min.X, v.X), stdmath.Min(b.Min.Y, v.Y), stdmath.Min(b.Min.Z, v.Z))
		b.Max = math.V3(stdmath.Max(b.Max.X, v.X), stdmath.Max(b.Max.Y, v.Y), stdmath.Max(b.Max.Z, v.Z))
	}
	m.Bounds = &b
	return m.Bounds
}

// Validate checks index ranges, normal lengths and finiteness.
func (m *Mesh) Validate() error {
	if len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, len(m.Normals), len(m.Vertices))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Vertices) {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrInvalidMesh, len(m.UVs), len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d at %d out of range", ErrInvalidMesh, idx, i)
		}
	}
	for i, n := range m.Normals {
		if !finite3(m.Vertices[i]) || !finite3(n) {
			return fmt.Errorf("%w: non-finite vertex or normal %d", ErrInvalidMesh, i)
		}
		if stdmath.Abs(n.Length()-1) > 1e-6 {
			return fmt.Errorf("%w: normal %d has length %g", ErrInvalidMesh, i, n.Length())
		}
	}
	for i, e := range m.Edges {
		if int(e[0]) >= len(m.Vertices) || int(e[1]) >= len(m.Vertices) {
			return fmt.Errorf("%w: edge %d out of range", ErrInvalidMesh, i)
		}
	}
	return nil
}

func finite3(v math.Vec3) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if stdmath.IsNaN(c) || stdmath.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	var sum float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		n := triangleNormal(m.Vertices[m.Indices[t]], m.Vertices[m.Indices[t+1]], m.Vertices[m.Indices[t+2]])
		sum += n.Length() / 2
	}
	return sum
}

// Volume returns the signed enclosed volume; positive for a closed mesh
// with outward winding.
func (m *Mesh) Volume() float64 {
	var sum float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Vertices[m.Indices[t]], m.Vertices[m.Indices[t+1]], m.Vertices[m.Indices[t+2]]
		sum += a.Dot(b.Cross(c))
	}
	return sum / 6
}

// OpenEdges counts undirected index edges not shared by exactly two
// triangles. A watertight mesh has none.
func (m *Mesh) OpenEdges() int {
	counts := make(map[[2]uint32]int)
	for t := 0; t+2 < len(m.Indices); t += 3 {
		for k := 0; k < 3; k++ {
			a, b := m.Indices[t+k], m.Indices[t+(k+1)%3]
			if a > b {
				a, b = b, a
			}
			counts[[2]uint32{a, b}]++
		}
	}
	open := 0
	for _, c := range counts {
		if c != 2 {
			open++
		}
	}
	return open
}

// Append merges o into m, offsetting its indices.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(len(m.Vertices))
	hadUVs := len(m.UVs) == len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	switch {
	case hadUVs && len(o.UVs) == len(o.Vertices):
		m.UVs = append(m.UVs, o.UVs...)
	default:
		m.UVs = nil
	}
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
	for _, e := range o.Edges {
		m.Edges = append(m.Edges, Edge{e[0] + base, e[1] + base})
	}
	m.Diagnostics = append(m.Diagnostics, o.Diagnostics...)
	m.ComputeBounds()
}

// Transform returns a copy of m with positions and normals transformed by t.
// Mirroring transforms keep outward winding.
func (m *Mesh) Transform(t math.Mat4) *Mesh {
	nm := t.NormalMatrix()
	out := &Mesh{
		Vertices:    make([]math.Vec3, len(m.Vertices)),
		Normals:     make([]math.Vec3, len(m.Normals)),
		Indices:     append([]uint32(nil), m.Indices...),
		UVs:         append([]math.Vec2(nil), m.UVs...),
		Edges:       append([]Edge(nil), m.Edges...),
		Diagnostics: append(profile.Diagnostics(nil), m.Diagnostics...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = t.TransformPoint(v)
	}
	for i, n := range m.Normals {
		out.Normals[i] = nm.TransformDirection(n).Normalize()
	}
	if t.Determinant3() < 0 {
		for k := 0; k+2 < len(out.Indices); k += 3 {
			out.Indices[k+1], out.Indices[k+2] = out.Indices[k+2], out.Indices[k+1]
		}
	}
	out.ComputeBounds()
	return out
}

// Flatten returns interleaving-free float32 arrays ready for GPU upload.
func (m *Mesh) Flatten() (positions, normals, uvs []float32, indices []uint32) {
	positions = make([]float32, 0, 3*len(m.Vertices))
	for _, v := range m.Vertices {
		positions = append(positions, float32(v.X), float32(v.Y), float32(v.Z))
	}
	normals = make([]float32, 0, 3*len(m.Normals))
	for _, n := range m.Normals {
		normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	if len(m.UVs) > 0 {
		uvs = make([]float32, 0, 2*len(m.UVs))
		for _, uv := range m.UVs {
			uvs = append(uvs, float32(uv.X), float32(uv.Y))
		}
	}
	return positions, normals, uvs, append([]uint32(nil), m.Indices...)
}

// perimeter returns the cumulative distance at each loop point, with the
// closing distance as the final entry.
func perimeter(loop []math.Vec2, closed bool) []float64 {
	acc := make([]float64, len(loop)+1)
	for i := 1; i < len(loop); i++ {
		acc[i] = acc[i-1] + loop[i].Distance(loop[i-1])
	}
	acc[len(loop)] = acc[len(loop)-1]
	if closed && len(loop) > 0 {
		acc[len(loop)] += loop[0].Distance(loop[len(loop)-1])
	}
	return acc
}

// outward2D returns the unit normal on the right of a->b. For a
// counter-clockwise outer loop or a clockwise hole this points away from the
// material.
func outward2D(a, b math.Vec2) math.Vec2 {
	d := b.Sub(a)
	return math.V2(d.Y, -d.X).Normalize()
}

// loopOffsets returns the start index of each loop in the concatenated
// vertex list.
func loopOffsets(loops [][]math.Vec2) []int {
	offs := make([]int, len(loops))
	n := 0
	for i, l := range loops {
		offs[i] = n
		n += len(l)
	}
	return offs
}
