// meshtool is a CLI utility for inspecting and converting triangle meshes.
package main

import (
	"flag"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/tribatch/pkg/batch"
	"github.com/Faultbox/tribatch/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "convert", "c":
		cmdConvert(args)
	case "verify":
		cmdVerify(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - triangle mesh batch utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.tbm>                    Show mesh information
  convert <in.stl|in.obj> <out.tbm>  Weld and index a mesh into a batch file
  verify <file.tbm>                  Check mesh integrity

Examples:
  meshtool info torus.tbm
  meshtool convert -epsilon 0.0001 part.stl part.tbm
  meshtool convert -versioned model.obj model.tbm
  meshtool verify part.tbm`)
}

// loadBatch reads a mesh file headlessly. Headerless files carry no channel
// flags, so both optional channels are attempted and short reads tolerated.
func loadBatch(path string, normals, texCoords bool) *batch.TriangleBatch {
	b := batch.New(nil)
	if err := b.LoadFile(path, normals, texCoords); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return b
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	normals := fs.Bool("normals", true, "Expect a normal channel in headerless files")
	texCoords := fs.Bool("texcoords", true, "Expect a texture coordinate channel in headerless files")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.tbm>")
		os.Exit(1)
	}

	b := loadBatch(fs.Arg(0), *normals, *texCoords)

	fmt.Printf("Mesh:      %s\n", fs.Arg(0))
	fmt.Printf("Vertices:  %d\n", b.VertexCount())
	fmt.Printf("Indices:   %d (%d triangles)\n", b.IndexCount(), b.IndexCount()/3)
	fmt.Printf("Radius:    %g\n", b.BoundingRadius())
	fmt.Printf("Normals:   %v\n", b.HasNormals())
	fmt.Printf("TexCoords: %v\n", b.HasTexCoords())
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	epsilon := fs.Float64("epsilon", 0.00001, "Vertex weld tolerance")
	checkRange := fs.Int("range", 64, "Dedup search window (0 disables welding)")
	maxVerts := fs.Int("max", batch.MaxVertexCount, "Batch vertex capacity")
	versioned := fs.Bool("versioned", false, "Write the self-describing header format")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert [options] <in.stl|in.obj> <out.tbm>")
		os.Exit(1)
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	name, tris, err := formats.ParseFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	b := batch.New(nil)
	if err := b.Begin(*maxVerts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := formats.Assemble(b, tris, float32(*epsilon), *checkRange); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := b.End(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	save := b.SaveFile
	if *versioned {
		save = b.SaveVersionedFile
	}
	if err := save(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	raw := len(tris) * 3
	welded := b.VertexCount()
	saved := 0.0
	if raw > 0 {
		saved = 100 * float64(raw-welded) / float64(raw)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	}
	fmt.Printf("Converted %s: %d triangles, %d -> %d vertices (%.1f%% welded)\n",
		name, len(tris), raw, welded, saved)
	fmt.Printf("Wrote %s\n", outPath)
}

func cmdVerify(args []string) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	normals := fs.Bool("normals", true, "Expect a normal channel in headerless files")
	texCoords := fs.Bool("texcoords", true, "Expect a texture coordinate channel in headerless files")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool verify <file.tbm>")
		os.Exit(1)
	}

	b := loadBatch(fs.Arg(0), *normals, *texCoords)

	problems := 0
	if b.IndexCount()%3 != 0 {
		fmt.Printf("FAIL: index count %d is not a multiple of 3\n", b.IndexCount())
		problems++
	}

	verts := b.VertexCount()
	for n, idx := range b.Indices() {
		if int(idx) >= verts {
			fmt.Printf("FAIL: index %d references vertex %d of %d\n", n, idx, verts)
			problems++
		}
	}

	if b.HasNormals() {
		for n, norm := range b.Normals() {
			length := float64(norm.Length())
			if gomath.Abs(length-1) > 0.01 {
				fmt.Printf("FAIL: normal %d has length %.4f\n", n, length)
				problems++
			}
		}
	}

	if problems > 0 {
		fmt.Printf("%s: %d problem(s) found\n", fs.Arg(0), problems)
		os.Exit(1)
	}
	fmt.Printf("%s: OK (%d vertices, %d triangles)\n", fs.Arg(0), verts, b.IndexCount()/3)
}
