package profile

import (
	"fmt"
	stdmath "math"
	"sort"

	"github.com/ByteArena/poly2tri-go"

	"github.com/Faultbox/sweepmesh/pkg/math"
)

// triangulate returns counter-clockwise triangles indexing the concatenation
// of outer and holes. It runs a constrained Delaunay triangulation and falls
// back to ear clipping when that rejects the input.
func triangulate(outer []math.Vec2, holes [][]math.Vec2) (indices []uint32, fallback bool, err error) {
	verts := concat(outer, holes)
	indices, err = triangulateCDT(outer, holes)
	if err == nil {
		return orientTriangles(verts, indices), false, nil
	}
	cdtErr := err

	outerIdx := make([]int, len(outer))
	for i := range outer {
		outerIdx[i] = i
	}
	holeIdx := make([][]int, len(holes))
	offset := len(outer)
	for h, hole := range holes {
		holeIdx[h] = make([]int, len(hole))
		for i := range hole {
			holeIdx[h][i] = offset + i
		}
		offset += len(hole)
	}
	indices, err = earClip(verts, bridgeHoles(verts, outerIdx, holeIdx))
	if err != nil {
		return nil, false, fmt.Errorf("%w (constrained: %v)", err, cdtErr)
	}
	return orientTriangles(verts, indices), true, nil
}

func concat(outer []math.Vec2, holes [][]math.Vec2) []math.Vec2 {
	n := len(outer)
	for _, h := range holes {
		n += len(h)
	}
	out := make([]math.Vec2, 0, n)
	out = append(out, outer...)
	for _, h := range holes {
		out = append(out, h...)
	}
	return out
}

func triangulateCDT(outer []math.Vec2, holes [][]math.Vec2) (indices []uint32, err error) {
	defer func() {
		if r := recover(); r != nil {
			indices, err = nil, fmt.Errorf("%w: %v", ErrTriangulation, r)
		}
	}()

	index := make(map[*poly2tri.Point]uint32)
	var next uint32
	points := func(loop []math.Vec2) []*poly2tri.Point {
		pts := make([]*poly2tri.Point, len(loop))
		for i, p := range loop {
			pts[i] = poly2tri.NewPoint(p.X, p.Y)
			index[pts[i]] = next
			next++
		}
		return pts
	}

	swctx := poly2tri.NewSweepContext(points(outer), false)
	for _, h := range holes {
		swctx.AddHole(points(h))
	}
	swctx.Triangulate()

	tris := swctx.GetTriangles()
	want := int(next) + 2*len(holes) - 2
	if len(tris) != want {
		return nil, fmt.Errorf("%w: %d triangles, want %d", ErrTriangulation, len(tris), want)
	}
	indices = make([]uint32, 0, 3*len(tris))
	for _, tr := range tris {
		for k := 0; k < 3; k++ {
			i, ok := index[tr.Points[k]]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected steiner point", ErrTriangulation)
			}
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// orientTriangles flips any clockwise triangle.
func orientTriangles(verts []math.Vec2, indices []uint32) []uint32 {
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := verts[indices[t]], verts[indices[t+1]], verts[indices[t+2]]
		if b.Sub(a).Cross(c.Sub(a)) < 0 {
			indices[t+1], indices[t+2] = indices[t+2], indices[t+1]
		}
	}
	return indices
}

// bridgeHoles splices each hole into the outer index loop through a
// mutually visible vertex pair, producing one weakly simple loop.
func bridgeHoles(verts []math.Vec2, outer []int, holes [][]int) []int {
	poly := append([]int(nil), outer...)
	rightmost := func(h []int) int {
		best := 0
		for i, v := range h {
			if verts[v].X > verts[h[best]].X {
				best = i
			}
		}
		return best
	}
	order := make([]int, len(holes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ha, hb := holes[order[a]], holes[order[b]]
		return verts[ha[rightmost(ha)]].X > verts[hb[rightmost(hb)]].X
	})

	for n, hi := range order {
		hole := holes[hi]
		m := rightmost(hole)
		mp := verts[hole[m]]

		cands := make([]int, len(poly))
		for i := range cands {
			cands[i] = i
		}
		sort.SliceStable(cands, func(a, b int) bool {
			return verts[poly[cands[a]]].Distance(mp) < verts[poly[cands[b]]].Distance(mp)
		})

		pending := make([][]int, 0, len(order)-n)
		for _, rest := range order[n:] {
			pending = append(pending, holes[rest])
		}

		bridge := -1
		for _, k := range cands {
			if visible(verts, mp, poly[k], poly, pending) {
				bridge = k
				break
			}
		}
		if bridge < 0 {
			bridge = cands[0]
		}

		spliced := make([]int, 0, len(poly)+len(hole)+2)
		spliced = append(spliced, poly[:bridge+1]...)
		for i := 0; i <= len(hole); i++ {
			spliced = append(spliced, hole[(m+i)%len(hole)])
		}
		spliced = append(spliced, poly[bridge:]...)
		poly = spliced
	}
	return poly
}

// visible reports whether the segment from p to verts[target] crosses no
// edge of poly or of the pending holes.
func visible(verts []math.Vec2, p math.Vec2, target int, poly []int, holes [][]int) bool {
	q := verts[target]
	blocked := func(loop []int) bool {
		for i := range loop {
			a, b := verts[loop[i]], verts[loop[(i+1)%len(loop)]]
			if a.NearlyEqual(q, 1e-12) || b.NearlyEqual(q, 1e-12) ||
				a.NearlyEqual(p, 1e-12) || b.NearlyEqual(p, 1e-12) {
				continue
			}
			if _, _, hit, err := segmentIntersection(p, q, a, b); hit || err != nil {
				return true
			}
		}
		return false
	}
	if blocked(poly) {
		return false
	}
	for _, h := range holes {
		if blocked(h) {
			return false
		}
	}
	return true
}

// earClip triangulates a counter-clockwise, weakly simple index loop.
func earClip(verts []math.Vec2, loop []int) ([]uint32, error) {
	poly := append([]int(nil), loop...)
	indices := make([]uint32, 0, 3*len(poly))
	const eps = 1e-12

	for len(poly) > 3 {
		n := len(poly)
		clipped := false
		for i := 0; i < n && !clipped; i++ {
			ia, ib, ic := poly[(i+n-1)%n], poly[i], poly[(i+1)%n]
			a, b, c := verts[ia], verts[ib], verts[ic]
			if b.Sub(a).Cross(c.Sub(b)) <= eps {
				continue
			}
			if anyInside(verts, poly, a, b, c) {
				continue
			}
			indices = append(indices, uint32(ia), uint32(ib), uint32(ic))
			poly = append(poly[:i], poly[i+1:]...)
			clipped = true
		}
		if clipped {
			continue
		}
		// No ear left: drop a collinear vertex if there is one.
		for i := 0; i < n && !clipped; i++ {
			a, b, c := verts[poly[(i+n-1)%n]], verts[poly[i]], verts[poly[(i+1)%n]]
			if stdmath.Abs(b.Sub(a).Cross(c.Sub(b))) <= 1e-9*stdmath.Max(1, a.Distance(c)) {
				poly = append(poly[:i], poly[i+1:]...)
				clipped = true
			}
		}
		if !clipped {
			return nil, fmt.Errorf("%w: no ear found with %d vertices left", ErrTriangulation, n)
		}
	}
	if len(poly) == 3 {
		a, b, c := verts[poly[0]], verts[poly[1]], verts[poly[2]]
		if b.Sub(a).Cross(c.Sub(a)) > eps {
			indices = append(indices, uint32(poly[0]), uint32(poly[1]), uint32(poly[2]))
		}
	}
	return indices, nil
}

func anyInside(verts []math.Vec2, poly []int, a, b, c math.Vec2) bool {
	for _, vi := range poly {
		p := verts[vi]
		if p.NearlyEqual(a, 1e-12) || p.NearlyEqual(b, 1e-12) || p.NearlyEqual(c, 1e-12) {
			continue
		}
		d1 := b.Sub(a).Cross(p.Sub(a))
		d2 := c.Sub(b).Cross(p.Sub(b))
		d3 := a.Sub(c).Cross(p.Sub(c))
		if d1 >= 0 && d2 >= 0 && d3 >= 0 {
			return true
		}
	}
	return false
}
