package batch

// Slot identifies a vertex attribute stream handed to the renderer.
type Slot int

// Attribute slots, one per channel.
const (
	SlotPosition Slot = iota
	SlotNormal
	SlotTexCoord
)

// String returns a human-readable slot name.
func (s Slot) String() string {
	switch s {
	case SlotPosition:
		return "position"
	case SlotNormal:
		return "normal"
	case SlotTexCoord:
		return "texcoord"
	default:
		return "unknown"
	}
}

// Renderer receives the compacted mesh when a batch is finalized and owns the
// GPU-side buffers from then on. The batch never touches the graphics API
// itself; it hands over raw byte streams in native order with element counts.
//
// Upload calls happen once per channel at End or Load. BindAndDrawTriangles
// is called once per Draw with the retained 16-bit index count. ReleaseAll is
// called when the batch is closed or reused.
type Renderer interface {
	UploadVertexStream(slot Slot, data []byte, elementCount, elementSize int)
	UploadIndexStream(data []byte, indexCount int)
	BindAndDrawTriangles(indexCount int)
	ReleaseAll()
}
