// Package formats provides parsers for common triangle-mesh file formats.
package formats

import "github.com/Faultbox/tribatch/pkg/math"

// Triangle is one parsed triangle. Norms and Tex are nil when the source
// format does not carry that attribute, which matches the optional-channel
// arguments of the batch assembler.
type Triangle struct {
	Verts [3]math.Vec3
	Norms *[3]math.Vec3
	Tex   *[3]math.Vec2
}

// faceNormal computes a unit normal from the triangle winding. Returns the
// zero vector for degenerate triangles.
func faceNormal(verts [3]math.Vec3) math.Vec3 {
	e1 := verts[1].Sub(verts[0])
	e2 := verts[2].Sub(verts[0])
	return e1.Cross(e2).Normalize()
}
