package math

import (
	"math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	got := V2(1, 2).Add(V2(3, 4))
	want := V2(4, 6)
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	if got := V2(3, 4).Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
}

func TestVec2Normalize(t *testing.T) {
	l := V2(3, 4).Normalize().Length()
	if math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec2.Normalize().Length() = %v, want 1", l)
	}
	if z := (Vec2{}).Normalize(); z != (Vec2{}) {
		t.Errorf("Vec2{}.Normalize() = %v, want zero", z)
	}
}

func TestVec2Cross(t *testing.T) {
	if c := V2(1, 0).Cross(V2(0, 1)); c != 1 {
		t.Errorf("Vec2.Cross() = %v, want 1", c)
	}
}

func TestVec3Cross(t *testing.T) {
	got := UnitX.Cross(UnitY)
	if got != UnitZ {
		t.Errorf("Vec3.Cross() = %v, want %v", got, UnitZ)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	n := V3(1e-12, 0, 0).Normalize()
	if n != (Vec3{}) || math.IsNaN(n.X) {
		t.Errorf("Vec3.Normalize() of tiny vector = %v, want zero", n)
	}
}

func TestVec3Rotate(t *testing.T) {
	got := UnitX.Rotate(UnitZ, math.Pi/2)
	if !got.NearlyEqual(UnitY, 1e-12) {
		t.Errorf("Vec3.Rotate() = %v, want %v", got, UnitY)
	}
}

func TestLeastAlignedAxis(t *testing.T) {
	tests := []struct {
		in   Vec3
		want Vec3
	}{
		{UnitZ, UnitX},
		{UnitX, UnitY},
		{V3(0.1, 0.9, 0.05), UnitZ},
	}
	for _, tt := range tests {
		if got := LeastAlignedAxis(tt.in); got != tt.want {
			t.Errorf("LeastAlignedAxis(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAnyPerpendicular(t *testing.T) {
	for _, v := range []Vec3{UnitX, UnitY, UnitZ, V3(1, 2, 3)} {
		p := v.AnyPerpendicular()
		if math.Abs(p.Dot(v)) > 1e-12 || math.Abs(p.Length()-1) > 1e-12 {
			t.Errorf("AnyPerpendicular(%v) = %v", v, p)
		}
	}
}
