package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Faultbox/tribatch/pkg/math"
)

// createBinarySTL builds a minimal binary STL with the given facets.
func createBinarySTL(header string, facets [][4]math.Vec3) []byte {
	buf := new(bytes.Buffer)

	var h [80]byte
	copy(h[:], header)
	buf.Write(h[:])

	binary.Write(buf, binary.LittleEndian, uint32(len(facets)))
	for _, f := range facets {
		for _, v := range f { // normal then three vertices
			binary.Write(buf, binary.LittleEndian, v)
		}
		binary.Write(buf, binary.LittleEndian, uint16(0)) // attribute bytes
	}

	return buf.Bytes()
}

func TestParseSTL_Binary(t *testing.T) {
	facets := [][4]math.Vec3{
		{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}},
	}
	data := createBinarySTL("unit quad", facets)

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}

	if stl.Name != "unit quad" {
		t.Errorf("Name = %q, want %q", stl.Name, "unit quad")
	}
	if len(stl.Triangles) != 2 {
		t.Fatalf("got %d triangles, want 2", len(stl.Triangles))
	}

	tri := stl.Triangles[0]
	if tri.Verts[1] != (math.Vec3{X: 1, Y: 0, Z: 0}) {
		t.Errorf("vertex 1 = %v", tri.Verts[1])
	}
	if tri.Norms == nil || tri.Norms[0] != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normal = %v, want {0 0 1} on every corner", tri.Norms)
	}
	if tri.Tex != nil {
		t.Error("STL triangles must not carry texcoords")
	}
}

func TestParseSTL_BinaryZeroNormalRecomputed(t *testing.T) {
	facets := [][4]math.Vec3{
		{{}, {X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
	}
	data := createBinarySTL("", facets)

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}

	n := stl.Triangles[0].Norms[0]
	if !math.CloseEnoughVec3(n, math.Vec3{X: 0, Y: 0, Z: 1}, 1e-6) {
		t.Errorf("recomputed normal = %v, want {0 0 1}", n)
	}
}

func TestParseSTL_ASCII(t *testing.T) {
	data := []byte(`solid tetra part
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
endsolid tetra part
`)

	stl, err := ParseSTL(data)
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}

	if stl.Name != "tetra part" {
		t.Errorf("Name = %q, want %q", stl.Name, "tetra part")
	}
	if len(stl.Triangles) != 1 {
		t.Fatalf("got %d triangles, want 1", len(stl.Triangles))
	}
	tri := stl.Triangles[0]
	if tri.Verts[2] != (math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("vertex 2 = %v", tri.Verts[2])
	}
	if tri.Norms == nil || tri.Norms[2] != (math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normals = %v", tri.Norms)
	}
}

func TestParseSTL_ASCIIMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad facet", "solid x\nfacet 0 0 1\nendfacet\nendsolid"},
		{"bad vertex", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\nendloop\nendfacet\nendsolid"},
		{"wrong corner count", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid"},
		{"unknown keyword", "solid x\nwibble\nendsolid"},
	}

	for _, tc := range tests {
		if _, err := ParseSTL([]byte(tc.data)); !errors.Is(err, ErrMalformedSTL) {
			t.Errorf("%s: ParseSTL = %v, want ErrMalformedSTL", tc.name, err)
		}
	}
}

func TestParseSTL_Garbage(t *testing.T) {
	if _, err := ParseSTL([]byte("not a mesh at all")); !errors.Is(err, ErrMalformedSTL) {
		t.Errorf("ParseSTL = %v, want ErrMalformedSTL", err)
	}
}

func TestParseSTL_BinaryCountMismatchFallsThrough(t *testing.T) {
	// A truncated binary file no longer satisfies the size check and is not
	// valid ASCII either.
	facets := [][4]math.Vec3{
		{{X: 0, Y: 0, Z: 1}, {}, {X: 1}, {Y: 1}},
	}
	data := createBinarySTL("x", facets)

	if _, err := ParseSTL(data[:len(data)-10]); err == nil {
		t.Error("expected error for truncated binary STL")
	}
}
