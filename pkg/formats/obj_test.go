package formats

import (
	"errors"
	"testing"

	"github.com/Faultbox/tribatch/pkg/math"
)

const fullQuadOBJ = `# a textured, lit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseOBJ_QuadFanTriangulation(t *testing.T) {
	obj, err := ParseOBJ([]byte(fullQuadOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if obj.Name != "quad" {
		t.Errorf("Name = %q, want %q", obj.Name, "quad")
	}
	if len(obj.Triangles) != 2 {
		t.Fatalf("got %d triangles, want 2 from a quad fan", len(obj.Triangles))
	}

	// Fan around corner 0: (0,1,2) and (0,2,3).
	t0, t1 := obj.Triangles[0], obj.Triangles[1]
	if t0.Verts[0] != (math.Vec3{}) || t1.Verts[0] != (math.Vec3{}) {
		t.Error("fan must pivot on the first corner")
	}
	if t1.Verts[2] != (math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("second fan triangle corner = %v", t1.Verts[2])
	}

	if t0.Norms == nil || t0.Norms[0] != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normals = %v", t0.Norms)
	}
	if t0.Tex == nil || t0.Tex[1] != (math.Vec2{X: 1, Y: 0}) {
		t.Errorf("texcoords = %v", t0.Tex)
	}
}

func TestParseOBJ_PositionsOnly(t *testing.T) {
	data := []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Triangles) != 1 {
		t.Fatalf("got %d triangles, want 1", len(obj.Triangles))
	}
	tri := obj.Triangles[0]
	if tri.Norms != nil || tri.Tex != nil {
		t.Error("positions-only face must not carry optional channels")
	}
}

func TestParseOBJ_NormalsWithoutTexcoords(t *testing.T) {
	data := []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n")

	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	tri := obj.Triangles[0]
	if tri.Norms == nil {
		t.Error("v//vn corners must carry normals")
	}
	if tri.Tex != nil {
		t.Error("v//vn corners must not carry texcoords")
	}
}

func TestParseOBJ_NegativeIndices(t *testing.T) {
	data := []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n")

	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	tri := obj.Triangles[0]
	if tri.Verts[1] != (math.Vec3{X: 1, Y: 0, Z: 0}) {
		t.Errorf("vertex 1 = %v, negative indices must count from the end", tri.Verts[1])
	}
}

func TestParseOBJ_CommentsAndUnknownDirectives(t *testing.T) {
	data := []byte(`# full-line comment
mtllib things.mtl
usemtl shiny
v 0 0 0
v 1 0 0  # trailing comment
v 0 1 0
s off
f 1 2 3
`)

	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Triangles) != 1 {
		t.Errorf("got %d triangles, want 1", len(obj.Triangles))
	}
}

func TestParseOBJ_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad float", "v one 2 3\n"},
		{"face with two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"texcoord out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/2 3/1\n"},
	}

	for _, tc := range tests {
		if _, err := ParseOBJ([]byte(tc.data)); !errors.Is(err, ErrMalformedOBJ) {
			t.Errorf("%s: ParseOBJ = %v, want ErrMalformedOBJ", tc.name, err)
		}
	}
}
