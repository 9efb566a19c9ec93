package batch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/tribatch/pkg/math"
)

// Mesh codec errors.
var (
	ErrTruncatedMesh          = errors.New("truncated mesh data")
	ErrInvalidMeshHeader      = errors.New("invalid mesh header")
	ErrUnsupportedMeshVersion = errors.New("unsupported mesh format version")
)

// The legacy layout is headerless: {I:u32, V:u32, r:f32} followed by the
// index, position, normal and texcoord streams, all little-endian and
// packed. It carries no channel flags, so the reader has to be told which
// optional streams are present.
//
// The versioned layout prefixes a self-describing header so files survive a
// hasNormals/hasTexCoords mismatch. Readers detect it by magic and fall back
// to the legacy layout.
var meshMagic = [4]byte{'T', 'B', 'M', '1'}

const meshFormatVersion = 1

const (
	meshFlagNormals   = 1 << 0
	meshFlagTexCoords = 1 << 1
)

// Save writes the finalized mesh in the legacy headerless layout. The caller
// of Load must know out-of-band whether normals and texcoords are present.
func (b *TriangleBatch) Save(w io.Writer) error {
	if b.state != stateFinalized {
		return ErrNotFinalized
	}
	if err := b.writeHeader(w); err != nil {
		return err
	}
	return b.writePayload(w)
}

// SaveVersioned writes the mesh with a TBM1 magic, format version, and
// channel flags ahead of the legacy header, so the file self-describes its
// optional channels.
func (b *TriangleBatch) SaveVersioned(w io.Writer) error {
	if b.state != stateFinalized {
		return ErrNotFinalized
	}

	var flags uint8
	if b.normState == channelFinal {
		flags |= meshFlagNormals
	}
	if b.texState == channelFinal {
		flags |= meshFlagTexCoords
	}

	preamble := struct {
		Magic    [4]byte
		Version  uint16
		Flags    uint8
		Reserved uint8
	}{Magic: meshMagic, Version: meshFormatVersion, Flags: flags}

	if err := binary.Write(w, binary.LittleEndian, preamble); err != nil {
		return fmt.Errorf("writing mesh preamble: %w", err)
	}
	if err := b.writeHeader(w); err != nil {
		return err
	}
	return b.writePayload(w)
}

func (b *TriangleBatch) writeHeader(w io.Writer) error {
	header := struct {
		IndexCount  uint32
		VertexCount uint32
		Radius      float32
	}{uint32(b.numIndexes), uint32(b.numVerts), b.radius}

	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing mesh header: %w", err)
	}
	return nil
}

func (b *TriangleBatch) writePayload(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, b.indexes); err != nil {
		return fmt.Errorf("writing indices: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, b.verts); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	if b.normState == channelFinal {
		if err := binary.Write(w, binary.LittleEndian, b.norms); err != nil {
			return fmt.Errorf("writing normals: %w", err)
		}
	}
	if b.texState == channelFinal {
		if err := binary.Write(w, binary.LittleEndian, b.tex); err != nil {
			return fmt.Errorf("writing texcoords: %w", err)
		}
	}
	return nil
}

// Load reads a mesh into an idle batch and finalizes it, uploading the
// payload to the renderer as-is; no dedup or re-indexing occurs.
//
// normals and texCoords tell the reader which optional streams a legacy file
// carries; a versioned file overrides them with its own channel flags. A
// short read on an optional stream is tolerated and marks that channel
// absent.
func (b *TriangleBatch) Load(r io.Reader, normals, texCoords bool) error {
	if b.state != stateIdle {
		return ErrBatchInUse
	}

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return fmt.Errorf("%w: reading header: %v", ErrTruncatedMesh, err)
	}

	var indexCount, vertexCount uint32
	var radius float32

	if head == meshMagic {
		var rest struct {
			Version  uint16
			Flags    uint8
			Reserved uint8
		}
		if err := binary.Read(r, binary.LittleEndian, &rest); err != nil {
			return fmt.Errorf("%w: reading preamble: %v", ErrTruncatedMesh, err)
		}
		if rest.Version != meshFormatVersion {
			return fmt.Errorf("%w: %d", ErrUnsupportedMeshVersion, rest.Version)
		}
		normals = rest.Flags&meshFlagNormals != 0
		texCoords = rest.Flags&meshFlagTexCoords != 0

		if err := binary.Read(r, binary.LittleEndian, &indexCount); err != nil {
			return fmt.Errorf("%w: reading index count: %v", ErrTruncatedMesh, err)
		}
	} else {
		// Legacy layout: the four bytes already read are the index count.
		indexCount = binary.LittleEndian.Uint32(head[:])
	}

	if err := binary.Read(r, binary.LittleEndian, &vertexCount); err != nil {
		return fmt.Errorf("%w: reading vertex count: %v", ErrTruncatedMesh, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &radius); err != nil {
		return fmt.Errorf("%w: reading radius: %v", ErrTruncatedMesh, err)
	}

	if indexCount > MaxVertexCount || vertexCount > MaxVertexCount {
		return fmt.Errorf("%w: %d indices, %d vertices", ErrInvalidMeshHeader, indexCount, vertexCount)
	}

	indexes := make([]uint16, indexCount)
	if err := binary.Read(r, binary.LittleEndian, indexes); err != nil {
		return fmt.Errorf("%w: reading indices: %v", ErrTruncatedMesh, err)
	}
	verts := make([]math.Vec3, vertexCount)
	if err := binary.Read(r, binary.LittleEndian, verts); err != nil {
		return fmt.Errorf("%w: reading positions: %v", ErrTruncatedMesh, err)
	}

	// Normals precede texcoords. Running out of file on an optional stream
	// is not an error; the channel is simply absent.
	var norms []math.Vec3
	if normals {
		norms = make([]math.Vec3, vertexCount)
		if err := binary.Read(r, binary.LittleEndian, norms); err != nil {
			if !isShortRead(err) {
				return fmt.Errorf("reading normals: %w", err)
			}
			norms = nil
		}
	}
	var tex []math.Vec2
	if texCoords {
		tex = make([]math.Vec2, vertexCount)
		if err := binary.Read(r, binary.LittleEndian, tex); err != nil {
			if !isShortRead(err) {
				return fmt.Errorf("reading texcoords: %w", err)
			}
			tex = nil
		}
	}

	b.maxIndexes = int(indexCount)
	b.numIndexes = int(indexCount)
	b.numVerts = int(vertexCount)
	b.radius = radius
	b.verts = verts
	b.indexes = indexes

	b.norms = norms
	b.normState = channelAbsent
	if norms != nil {
		b.normState = channelActive
	}
	b.tex = tex
	b.texState = channelAbsent
	if tex != nil {
		b.texState = channelActive
	}

	b.upload()
	b.state = stateFinalized
	return nil
}

// SaveFile writes the mesh to a file in the legacy layout.
func (b *TriangleBatch) SaveFile(path string) error {
	return b.saveFile(path, b.Save)
}

// SaveVersionedFile writes the mesh to a file in the versioned layout.
func (b *TriangleBatch) SaveVersionedFile(path string) error {
	return b.saveFile(path, b.SaveVersioned)
}

func (b *TriangleBatch) saveFile(path string, write func(io.Writer) error) error {
	if b.state != stateFinalized {
		return ErrNotFinalized
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating mesh file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing mesh file: %w", err)
	}
	return nil
}

// LoadFile reads a mesh file into an idle batch.
func (b *TriangleBatch) LoadFile(path string, normals, texCoords bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening mesh file: %w", err)
	}
	defer f.Close()

	return b.Load(f, normals, texCoords)
}

// isShortRead reports whether err is a plain end-of-data condition rather
// than a real I/O failure.
func isShortRead(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
