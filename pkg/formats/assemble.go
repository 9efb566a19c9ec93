package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/tribatch/pkg/batch"
)

// ErrUnknownFormat is returned when a file extension maps to no parser.
var ErrUnknownFormat = errors.New("unknown mesh format")

// ParseFile dispatches on the file extension and returns the mesh name and
// its triangle soup. Supported extensions are .stl and .obj.
func ParseFile(path string) (string, []Triangle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		m, err := ParseSTLFile(path)
		if err != nil {
			return "", nil, err
		}
		return m.Name, m.Triangles, nil
	case ".obj":
		m, err := ParseOBJFile(path)
		if err != nil {
			return "", nil, err
		}
		return m.Name, m.Triangles, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Assemble feeds a triangle soup into an assembling batch, welding vertices
// within epsilon over the given search window. The batch must be between
// Begin and End.
func Assemble(b *batch.TriangleBatch, tris []Triangle, epsilon float32, checkRange int) error {
	for n, tri := range tris {
		if err := b.AddTriangle(tri.Verts, tri.Norms, tri.Tex, epsilon, checkRange); err != nil {
			return fmt.Errorf("triangle %d: %w", n, err)
		}
	}
	return nil
}
