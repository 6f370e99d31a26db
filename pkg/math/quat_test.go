package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if math.Abs(length-1.0) > 1e-9 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatToMat4(t *testing.T) {
	m := QuatIdentity().ToMat4()
	identity := Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(m[i]-identity[i]) > 1e-12 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(UnitY, math.Pi/2)
	if math.Abs(q.W-math.Cos(math.Pi/4)) > 1e-9 {
		t.Errorf("QuatFromAxisAngle W: got %v", q.W)
	}
	if math.Abs(q.Y-math.Sin(math.Pi/4)) > 1e-9 {
		t.Errorf("QuatFromAxisAngle Y: got %v", q.Y)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	axis := V3(1, 2, 3)
	q := QuatFromAxisAngle(axis, 0.9)
	v := V3(-4, 0.5, 2)
	a := q.Rotate(v)
	b := q.ToMat4().TransformPoint(v)
	if !a.NearlyEqual(b, 1e-9) {
		t.Errorf("Rotate = %v, matrix = %v", a, b)
	}
	if c := v.Rotate(axis, 0.9); !a.NearlyEqual(c, 1e-9) {
		t.Errorf("Vec3.Rotate = %v, want %v", c, a)
	}
}
