package math

import (
	gomath "math"
	"testing"
)

func approxVec3(a, b Vec3, eps float32) bool {
	return CloseEnoughVec3(a, b, eps)
}

func TestMat4Identity(t *testing.T) {
	m := Identity()
	v := Vec3{1, 2, 3}
	if got := m.TransformVec3(v); got != v {
		t.Errorf("Identity().TransformVec3(%v) = %v", v, got)
	}
}

func TestMat4Translate(t *testing.T) {
	m := Translate(1, 2, 3)
	got := m.TransformVec3(Vec3{0, 0, 0})
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Translate.TransformVec3 = %v, want %v", got, want)
	}
}

func TestMat4RotateY(t *testing.T) {
	m := RotateY(float32(gomath.Pi / 2))
	got := m.TransformVec3(Vec3{1, 0, 0})
	want := Vec3{0, 0, -1}
	if !approxVec3(got, want, 1e-6) {
		t.Errorf("RotateY(pi/2).TransformVec3 = %v, want %v", got, want)
	}
}

func TestMat4Mul(t *testing.T) {
	// Translation after rotation should differ from rotation after translation.
	r := RotateY(float32(gomath.Pi / 2))
	tr := Translate(1, 0, 0)

	a := tr.Mul(r).TransformVec3(Vec3{1, 0, 0})
	b := r.Mul(tr).TransformVec3(Vec3{1, 0, 0})

	if !approxVec3(a, Vec3{1, 0, -1}, 1e-6) {
		t.Errorf("Translate*Rotate = %v, want {1 0 -1}", a)
	}
	if !approxVec3(b, Vec3{0, 0, -2}, 1e-6) {
		t.Errorf("Rotate*Translate = %v, want {0 0 -2}", b)
	}
}

func TestMat4LookAt(t *testing.T) {
	// Camera at +Z looking at origin: origin maps in front of the camera.
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	got := m.TransformVec3(Vec3{})
	if !approxVec3(got, Vec3{0, 0, -5}, 1e-5) {
		t.Errorf("LookAt origin = %v, want {0 0 -5}", got)
	}
}
