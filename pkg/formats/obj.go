package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/tribatch/pkg/math"
)

// OBJ format errors.
var (
	ErrMalformedOBJ = errors.New("malformed OBJ data")
)

// OBJ represents a parsed Wavefront OBJ file, triangulated. Faces with more
// than three corners are split as a fan around their first vertex. A
// triangle carries Norms (Tex) only if every corner referenced a vn (vt).
type OBJ struct {
	Name      string
	Triangles []Triangle
}

// objCorner is one parsed face corner; ti and ni are -1 when absent.
type objCorner struct {
	vi, ti, ni int
}

// ParseOBJ parses Wavefront OBJ data. Unknown directives are ignored, which
// covers the material and grouping statements this library has no use for.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}

	var (
		positions []math.Vec3
		texcoords []math.Vec2
		normals   []math.Vec3
		line      int
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "o":
			if len(fields) > 1 && obj.Name == "" {
				obj.Name = fields[1]
			}

		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
			}
			positions = append(positions, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
			}
			texcoords = append(texcoords, math.Vec2{X: v[0], Y: v[1]})

		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
			}
			normals = append(normals, math.Vec3{X: v[0], Y: v[1], Z: v[2]})

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face with %d corners", ErrMalformedOBJ, line, len(fields)-1)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
				}
				corners = append(corners, c)
			}

			// Fan triangulation around the first corner.
			for i := 1; i+1 < len(corners); i++ {
				tri := buildTriangle([3]objCorner{corners[0], corners[i], corners[i+1]}, positions, texcoords, normals)
				obj.Triangles = append(obj.Triangles, tri)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ data: %w", err)
	}

	return obj, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// parseCorner parses one face corner reference: "v", "v/vt", "v//vn", or
// "v/vt/vn". Indices are 1-based; negative values count back from the end of
// the respective list. Returned indices are 0-based, -1 when absent.
func parseCorner(s string, numV, numT, numN int) (objCorner, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objCorner{}, fmt.Errorf("bad corner %q", s)
	}

	c := objCorner{vi: -1, ti: -1, ni: -1}

	vi, err := resolveIndex(parts[0], numV)
	if err != nil {
		return objCorner{}, fmt.Errorf("bad vertex index %q: %v", parts[0], err)
	}
	c.vi = vi

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], numT)
		if err != nil {
			return objCorner{}, fmt.Errorf("bad texcoord index %q: %v", parts[1], err)
		}
		c.ti = ti
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], numN)
		if err != nil {
			return objCorner{}, fmt.Errorf("bad normal index %q: %v", parts[2], err)
		}
		c.ni = ni
	}

	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d entries)", n, count)
	}
}

func buildTriangle(corners [3]objCorner, positions []math.Vec3, texcoords []math.Vec2, normals []math.Vec3) Triangle {
	var tri Triangle

	hasTex := true
	hasNorm := true
	for _, c := range corners {
		if c.ti < 0 {
			hasTex = false
		}
		if c.ni < 0 {
			hasNorm = false
		}
	}

	for i, c := range corners {
		tri.Verts[i] = positions[c.vi]
	}
	if hasTex {
		var tex [3]math.Vec2
		for i, c := range corners {
			tex[i] = texcoords[c.ti]
		}
		tri.Tex = &tex
	}
	if hasNorm {
		var nrm [3]math.Vec3
		for i, c := range corners {
			nrm[i] = normals[c.ni]
		}
		tri.Norms = &nrm
	}

	return tri
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d components, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
