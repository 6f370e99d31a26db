package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// WriteOBJ writes m as a Wavefront OBJ document. With reverse set the
// triangle winding is swapped and normals negated, for viewers expecting
// clockwise front faces.
func WriteOBJ(w io.Writer, m *Mesh, reverse bool) error {
	if m == nil {
		return ErrInvalidMesh
	}
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# sweepmesh: %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", v.X, v.Y, v.Z)
	}
	for _, n := range m.Normals {
		if reverse {
			n = n.Neg()
		}
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
	}
	hasUV := len(m.UVs) == len(m.Vertices) && len(m.UVs) > 0
	if hasUV {
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %.6f %.6f\n", uv.X, uv.Y)
		}
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t]+1, m.Indices[t+1]+1, m.Indices[t+2]+1
		if reverse {
			b, c = c, b
		}
		if hasUV {
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		} else {
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
	}
	return bw.Flush()
}

// SaveOBJ writes m to path, creating parent directories.
func SaveOBJ(path string, m *Mesh, reverse bool) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return WriteOBJ(f, m, reverse)
}
