package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/tribatch/pkg/math"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrMalformedSTL     = errors.New("malformed STL data")
)

const stlRecordSize = 50 // normal + 3 verts as float32 triples + u16 attribute

// STL represents a parsed stereolithography file. STL carries a per-facet
// normal and no texture coordinates, so every Triangle has Norms replicated
// across its corners and Tex nil.
type STL struct {
	Name      string
	Triangles []Triangle
}

// ParseSTL parses STL data, detecting the binary and ASCII variants.
func ParseSTL(data []byte) (*STL, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return nil, fmt.Errorf("%w: neither binary nor ASCII", ErrMalformedSTL)
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*STL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// isBinarySTL checks whether the declared triangle count matches the file
// size. ASCII files that happen to start with "solid" fail this check.
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	return len(data) == 84+int(count)*stlRecordSize
}

func parseBinarySTL(data []byte) (*STL, error) {
	header := strings.TrimRight(string(bytes.TrimRight(data[:80], "\x00")), " ")
	count := binary.LittleEndian.Uint32(data[80:84])

	stl := &STL{
		Name:      header,
		Triangles: make([]Triangle, 0, count),
	}

	rec := data[84:]
	for i := uint32(0); i < count; i++ {
		normal := readVec3(rec[0:12])
		tri := Triangle{
			Verts: [3]math.Vec3{
				readVec3(rec[12:24]),
				readVec3(rec[24:36]),
				readVec3(rec[36:48]),
			},
		}
		tri.Norms = facetNormals(normal, tri.Verts)
		stl.Triangles = append(stl.Triangles, tri)
		rec = rec[stlRecordSize:]
	}

	return stl, nil
}

func parseASCIISTL(data []byte) (*STL, error) {
	stl := &STL{}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var (
		normal  math.Vec3
		corners []math.Vec3
		line    int
	)

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				stl.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			// "facet normal nx ny nz"
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%w: line %d: bad facet", ErrMalformedSTL, line)
			}
			v, err := parseVec3(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSTL, line, err)
			}
			normal = v
			corners = corners[:0]
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: bad vertex", ErrMalformedSTL, line)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedSTL, line, err)
			}
			corners = append(corners, v)
		case "endfacet":
			if len(corners) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrMalformedSTL, line, len(corners))
			}
			tri := Triangle{Verts: [3]math.Vec3{corners[0], corners[1], corners[2]}}
			tri.Norms = facetNormals(normal, tri.Verts)
			stl.Triangles = append(stl.Triangles, tri)
		case "outer", "endloop", "endsolid":
			// structural keywords, nothing to record
		default:
			return nil, fmt.Errorf("%w: line %d: unknown keyword %q", ErrMalformedSTL, line, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedSTLData, err)
	}

	return stl, nil
}

// facetNormals replicates the facet normal to the three corners. Exporters
// commonly write zero normals; those are recomputed from the winding.
func facetNormals(normal math.Vec3, verts [3]math.Vec3) *[3]math.Vec3 {
	if normal.LengthSq() < 1e-10 {
		normal = faceNormal(verts)
	}
	return &[3]math.Vec3{normal, normal, normal}
}

func readVec3(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}
}

func parseVec3(fields []string) (math.Vec3, error) {
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return math.Vec3{}, err
		}
		out[i] = float32(v)
	}
	return math.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}
