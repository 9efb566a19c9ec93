package math

import (
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := v.LengthSq(); got != 49 {
		t.Errorf("Vec3.LengthSq() = %v, want 49", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	n := v.Normalize()
	l := n.Length()
	if l < 0.99999 || l > 1.00001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	// Zero vector stays zero rather than producing NaN.
	z := Vec3{}.Normalize()
	if z != (Vec3{}) {
		t.Errorf("Vec3{}.Normalize() = %v, want zero vector", z)
	}
}

func TestCloseEnough(t *testing.T) {
	tests := []struct {
		a, b, epsilon float32
		want          bool
	}{
		{1.0, 1.0, 1e-6, true},
		{1.0, 1.0 + 5e-4, 1e-3, true},
		{1.0, 1.0 + 5e-4, 1e-5, false},
		{-2.0, -2.0 + 1e-7, 1e-6, true},
		{0, 0, 0, true}, // equal values match even at zero epsilon
		{1.0, 1.0000001, 0, false},
	}

	for _, tc := range tests {
		if got := CloseEnough(tc.a, tc.b, tc.epsilon); got != tc.want {
			t.Errorf("CloseEnough(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.epsilon, got, tc.want)
		}
	}
}

func TestCloseEnoughVec3(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{1, 2, 3.0001}
	if !CloseEnoughVec3(a, b, 1e-3) {
		t.Error("expected vectors to match within 1e-3")
	}
	if CloseEnoughVec3(a, b, 1e-5) {
		t.Error("expected vectors not to match within 1e-5")
	}
}

func TestCloseEnoughVec2(t *testing.T) {
	a := Vec2{0.5, 0.25}
	b := Vec2{0.5, 0.2500001}
	if !CloseEnoughVec2(a, b, 1e-5) {
		t.Error("expected texcoords to match within 1e-5")
	}
}
