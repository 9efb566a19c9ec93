// Package batch assembles untrusted triangle soup into compact indexed
// meshes. Triangles are added one at a time; coincident vertices are welded
// within a caller-tuned tolerance so each unique vertex is stored once and
// referenced through a 16-bit index array. A finalized batch hands its
// compacted streams to a Renderer collaborator and can be saved to or loaded
// from a binary mesh file.
package batch

import (
	"errors"
	"fmt"
	gomath "math"
	"unsafe"

	"github.com/Faultbox/tribatch/pkg/math"
)

// MaxVertexCount is the largest capacity Begin accepts. Indices are 16-bit,
// so neither the vertex count nor the index count may exceed it.
const MaxVertexCount = gomath.MaxUint16

// Batch lifecycle and capacity errors.
var (
	ErrInvalidCapacity  = errors.New("batch capacity out of range")
	ErrBatchFull        = errors.New("batch capacity exhausted")
	ErrNotAssembling    = errors.New("batch is not assembling")
	ErrNotFinalized     = errors.New("batch is not finalized")
	ErrBatchInUse       = errors.New("batch already holds a mesh")
)

// state tracks the batch lifecycle.
type state uint8

const (
	stateIdle state = iota
	stateAssembling
	stateFinalized
)

// channelState tracks an optional attribute channel. The original upstream
// design used a poisoned pointer value to distinguish "released" from "never
// used"; an explicit tag keeps those states apart without pointer tricks.
type channelState uint8

const (
	channelAbsent channelState = iota // never allocated, or dropped mid-assembly
	channelActive                     // workspace owned, attributes recorded
	channelFinal                      // compacted and handed to the renderer
)

// element sizes of the streams handed to the renderer
const (
	vec3Size  = int(unsafe.Sizeof(math.Vec3{}))
	vec2Size  = int(unsafe.Sizeof(math.Vec2{}))
	indexSize = int(unsafe.Sizeof(uint16(0)))
)

// TriangleBatch is a single mesh assembly session. Begin allocates a
// pessimistic workspace sized to the capacity, AddTriangle dedups incoming
// corners against recent vertices, End compacts the workspace and uploads
// the result. A batch is owned by one goroutine; none of its methods are
// safe for concurrent use.
type TriangleBatch struct {
	renderer Renderer
	state    state

	maxIndexes int
	numVerts   int
	numIndexes int

	// Workspace during assembly (sized maxIndexes), compacted exact-size
	// arrays after End or Load.
	verts   []math.Vec3
	norms   []math.Vec3
	tex     []math.Vec2
	indexes []uint16

	normState channelState
	texState  channelState

	radius float32
}

// New returns an empty batch bound to the given renderer. The renderer may
// be nil for headless use (assembly, persistence, inspection); Draw is then
// a no-op.
func New(r Renderer) *TriangleBatch {
	return &TriangleBatch{renderer: r}
}

// Begin starts assembling a mesh with room for maxVerts triangle corners.
// The same capacity bounds the index array and, pessimistically, the unique
// vertex arrays. Calling Begin on a batch that already holds a mesh releases
// the previous workspace and GPU handles first.
func (b *TriangleBatch) Begin(maxVerts int) error {
	if maxVerts < 1 || maxVerts > MaxVertexCount {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidCapacity, maxVerts, MaxVertexCount)
	}

	if b.state == stateFinalized && b.renderer != nil {
		b.renderer.ReleaseAll()
	}

	b.maxIndexes = maxVerts
	b.numVerts = 0
	b.numIndexes = 0
	b.radius = 0

	// The unique-vertex arrays will usually stay much shorter than the index
	// array; sizing them the same trades memory for zero reallocation during
	// assembly. End releases the slack.
	b.verts = make([]math.Vec3, maxVerts)
	b.norms = make([]math.Vec3, maxVerts)
	b.tex = make([]math.Vec2, maxVerts)
	b.indexes = make([]uint16, maxVerts)

	b.normState = channelActive
	b.texState = channelActive
	b.state = stateAssembling
	return nil
}

// AddTriangle adds one triangle to the mesh. Each corner is matched against
// the last checkRange unique vertices; within epsilon per component across
// all active channels the existing index is reused, otherwise the corner is
// appended as a new vertex. First match wins, so results are deterministic
// for a given insertion order.
//
// norms and texCoords are optional. Passing nil once drops that channel for
// the remainder of the batch and releases its workspace; it cannot be
// re-enabled. While the normal channel is active, incoming normals are
// normalized before matching and storage.
//
// Returns ErrBatchFull without consuming the triangle when the index array
// cannot take three more corners, leaving the count at a triangle boundary.
func (b *TriangleBatch) AddTriangle(verts [3]math.Vec3, norms *[3]math.Vec3, texCoords *[3]math.Vec2, epsilon float32, checkRange int) error {
	if b.state != stateAssembling {
		return ErrNotAssembling
	}
	if b.numIndexes+3 > b.maxIndexes {
		return ErrBatchFull
	}

	// A nil optional argument poisons its channel for the whole batch.
	if norms == nil && b.normState == channelActive {
		b.norms = nil
		b.normState = channelAbsent
	}
	if texCoords == nil && b.texState == channelActive {
		b.tex = nil
		b.texState = channelAbsent
	}

	var unitNorms [3]math.Vec3
	if b.normState == channelActive {
		for i := range norms {
			unitNorms[i] = norms[i].Normalize()
		}
	}

	// Only the most recent checkRange vertices are candidates. Smaller
	// windows are faster, larger windows weld more; the scan is
	// O(V * checkRange) per triangle either way.
	start := b.numVerts - checkRange
	if start < 0 {
		start = 0
	}

	for corner := 0; corner < 3; corner++ {
		match := -1
		for i := start; i < b.numVerts; i++ {
			if !math.CloseEnoughVec3(b.verts[i], verts[corner], epsilon) {
				continue
			}
			if b.normState == channelActive && !math.CloseEnoughVec3(b.norms[i], unitNorms[corner], epsilon) {
				continue
			}
			if b.texState == channelActive && !math.CloseEnoughVec2(b.tex[i], texCoords[corner], epsilon) {
				continue
			}
			match = i
			break
		}

		if match < 0 {
			match = b.numVerts
			b.verts[match] = verts[corner]
			if b.normState == channelActive {
				b.norms[match] = unitNorms[corner]
			}
			if b.texState == channelActive {
				b.tex[match] = texCoords[corner]
			}
			b.numVerts++
		}

		b.indexes[b.numIndexes] = uint16(match)
		b.numIndexes++
	}

	return nil
}

// End finalizes the batch: computes the bounding-sphere radius, compacts the
// workspace into exact-size arrays, uploads every active channel to the
// renderer, and releases the pessimistic workspace. After End the batch only
// accepts Draw, Save, Begin, and Close.
func (b *TriangleBatch) End() error {
	if b.state != stateAssembling {
		return ErrNotAssembling
	}

	var maxSq float32
	for i := 0; i < b.numVerts; i++ {
		if r := b.verts[i].LengthSq(); r > maxSq {
			maxSq = r
		}
	}
	b.radius = float32(gomath.Sqrt(float64(maxSq)))

	// Compacting into fresh arrays drops the maxIndexes-sized workspace.
	b.verts = append([]math.Vec3(nil), b.verts[:b.numVerts]...)
	if b.normState == channelActive {
		b.norms = append([]math.Vec3(nil), b.norms[:b.numVerts]...)
	}
	if b.texState == channelActive {
		b.tex = append([]math.Vec2(nil), b.tex[:b.numVerts]...)
	}
	b.indexes = append([]uint16(nil), b.indexes[:b.numIndexes]...)

	b.upload()
	b.state = stateFinalized
	return nil
}

// upload hands the compacted streams to the renderer and marks active
// channels final. Empty streams are not uploaded.
func (b *TriangleBatch) upload() {
	if b.renderer != nil && b.numVerts > 0 {
		b.renderer.UploadVertexStream(SlotPosition, vec3Bytes(b.verts), b.numVerts, vec3Size)
		if b.normState == channelActive {
			b.renderer.UploadVertexStream(SlotNormal, vec3Bytes(b.norms), b.numVerts, vec3Size)
		}
		if b.texState == channelActive {
			b.renderer.UploadVertexStream(SlotTexCoord, vec2Bytes(b.tex), b.numVerts, vec2Size)
		}
		if b.numIndexes > 0 {
			b.renderer.UploadIndexStream(indexBytes(b.indexes), b.numIndexes)
		}
	}

	if b.normState == channelActive {
		b.normState = channelFinal
	}
	if b.texState == channelActive {
		b.texState = channelFinal
	}
}

// Draw submits an indexed triangle draw of the batch's 16-bit indices.
// No-op unless the batch is finalized, non-empty, and has a renderer.
func (b *TriangleBatch) Draw() {
	if b.state != stateFinalized || b.numIndexes == 0 || b.renderer == nil {
		return
	}
	b.renderer.BindAndDrawTriangles(b.numIndexes)
}

// Close releases the workspace and, for a finalized batch, the renderer
// handles. The batch returns to its idle state and can be reused with Begin
// or Load.
func (b *TriangleBatch) Close() {
	if b.state == stateFinalized && b.renderer != nil {
		b.renderer.ReleaseAll()
	}

	b.verts = nil
	b.norms = nil
	b.tex = nil
	b.indexes = nil
	b.maxIndexes = 0
	b.numVerts = 0
	b.numIndexes = 0
	b.radius = 0
	b.normState = channelAbsent
	b.texState = channelAbsent
	b.state = stateIdle
}

// VertexCount returns the number of unique vertices stored so far.
func (b *TriangleBatch) VertexCount() int { return b.numVerts }

// IndexCount returns the number of triangle corners emitted so far.
// Always a multiple of three.
func (b *TriangleBatch) IndexCount() int { return b.numIndexes }

// BoundingRadius returns the maximum distance from the origin to any stored
// position. Zero until End or Load.
func (b *TriangleBatch) BoundingRadius() float32 { return b.radius }

// HasNormals reports whether the normal channel is still part of the batch.
func (b *TriangleBatch) HasNormals() bool { return b.normState != channelAbsent }

// HasTexCoords reports whether the texcoord channel is still part of the batch.
func (b *TriangleBatch) HasTexCoords() bool { return b.texState != channelAbsent }

// Indices returns a copy of the emitted index array.
func (b *TriangleBatch) Indices() []uint16 {
	return append([]uint16(nil), b.indexes[:b.numIndexes]...)
}

// Positions returns a copy of the unique vertex positions.
func (b *TriangleBatch) Positions() []math.Vec3 {
	return append([]math.Vec3(nil), b.verts[:b.numVerts]...)
}

// Normals returns a copy of the per-vertex normals, or nil if the channel
// was dropped.
func (b *TriangleBatch) Normals() []math.Vec3 {
	if b.normState == channelAbsent {
		return nil
	}
	return append([]math.Vec3(nil), b.norms[:b.numVerts]...)
}

// TexCoords returns a copy of the per-vertex texture coordinates, or nil if
// the channel was dropped.
func (b *TriangleBatch) TexCoords() []math.Vec2 {
	if b.texState == channelAbsent {
		return nil
	}
	return append([]math.Vec2(nil), b.tex[:b.numVerts]...)
}

// vec3Bytes views a Vec3 slice as its raw bytes for buffer upload.
func vec3Bytes(v []math.Vec3) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*vec3Size)
}

func vec2Bytes(v []math.Vec2) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*vec2Size)
}

func indexBytes(v []uint16) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*indexSize)
}
