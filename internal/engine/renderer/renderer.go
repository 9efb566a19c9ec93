// Package renderer provides the OpenGL side of mesh batches: retained
// vertex-array state fed by batch finalization and a minimal lit pipeline
// for drawing them.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/tribatch/internal/engine/shader"
	"github.com/Faultbox/tribatch/internal/logger"
	"github.com/Faultbox/tribatch/pkg/batch"
	"github.com/Faultbox/tribatch/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer owns the shader pipeline and global GL state.
type Renderer struct {
	config Config

	program       uint32
	locMVP        int32
	locModel      int32
	locLightDir   int32
	locBaseColor  int32
	locUseNormals int32
}

// New creates a new renderer. Must be called after the OpenGL context
// exists.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Log.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	program, err := shader.CompileProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.program = program
	r.locMVP = shader.GetUniform(program, "uMVP")
	r.locModel = shader.GetUniform(program, "uModel")
	r.locLightDir = shader.GetUniform(program, "uLightDir")
	r.locBaseColor = shader.GetUniform(program, "uBaseColor")
	r.locUseNormals = shader.GetUniform(program, "uUseNormals")

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Log.Info("closing renderer")
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BeginFrame clears the color and depth buffers.
func (r *Renderer) BeginFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawMesh binds the pipeline and submits the batch's indexed draw.
func (r *Renderer) DrawMesh(b *batch.TriangleBatch, mvp, model math.Mat4) {
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.locMVP, 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(r.locModel, 1, false, model.Ptr())
	gl.Uniform3f(r.locLightDir, 0.4, 0.7, 0.6)
	gl.Uniform3f(r.locBaseColor, 0.75, 0.75, 0.8)
	useNormals := int32(0)
	if b.HasNormals() {
		useNormals = 1
	}
	gl.Uniform1i(r.locUseNormals, useNormals)

	b.Draw()
}

// vertexComponents maps an attribute slot to its float component count.
func vertexComponents(slot batch.Slot) int32 {
	if slot == batch.SlotTexCoord {
		return 2
	}
	return 3
}

// MeshBuffers holds the GPU buffers of one finalized batch. It implements
// batch.Renderer: the batch hands it raw streams at End or Load and calls
// back into it for Draw and release.
type MeshBuffers struct {
	vao     uint32
	vbos    [3]uint32 // indexed by batch.Slot
	ebo     uint32
	created bool
}

// NewMeshBuffers returns empty GPU-side storage for one batch.
func NewMeshBuffers() *MeshBuffers {
	return &MeshBuffers{}
}

// ensureVAO creates the vertex array object on first upload.
func (m *MeshBuffers) ensureVAO() {
	if !m.created {
		gl.GenVertexArrays(1, &m.vao)
		m.created = true
	}
	gl.BindVertexArray(m.vao)
}

// UploadVertexStream uploads one attribute channel into its own buffer
// object and wires it to the attribute slot.
func (m *MeshBuffers) UploadVertexStream(slot batch.Slot, data []byte, elementCount, elementSize int) {
	m.ensureVAO()

	if m.vbos[slot] == 0 {
		gl.GenBuffers(1, &m.vbos[slot])
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbos[slot])
	gl.BufferData(gl.ARRAY_BUFFER, elementCount*elementSize, gl.Ptr(data), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(uint32(slot), vertexComponents(slot), gl.FLOAT, false, int32(elementSize), 0)
	gl.EnableVertexAttribArray(uint32(slot))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	logger.Log.Debug("vertex stream uploaded",
		zap.Stringer("slot", slot),
		zap.Int("elements", elementCount),
		zap.Int("bytes", len(data)),
	)
}

// UploadIndexStream uploads the 16-bit index array.
func (m *MeshBuffers) UploadIndexStream(data []byte, indexCount int) {
	m.ensureVAO()

	if m.ebo == 0 {
		gl.GenBuffers(1, &m.ebo)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)

	logger.Log.Debug("index stream uploaded", zap.Int("indices", indexCount))
}

// BindAndDrawTriangles submits an indexed triangle draw of 16-bit indices.
func (m *MeshBuffers) BindAndDrawTriangles(indexCount int) {
	if !m.created {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_SHORT, nil)
	gl.BindVertexArray(0)
}

// ReleaseAll deletes the GPU buffers. Safe to call on empty storage.
func (m *MeshBuffers) ReleaseAll() {
	for i := range m.vbos {
		if m.vbos[i] != 0 {
			gl.DeleteBuffers(1, &m.vbos[i])
			m.vbos[i] = 0
		}
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.created {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
		m.created = false
	}
}

const meshVertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aTexCoord;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec2 vTexCoord;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vNormal = mat3(uModel) * aNormal;
	vTexCoord = aTexCoord;
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;
in vec2 vTexCoord;

uniform vec3 uLightDir;
uniform vec3 uBaseColor;
uniform int uUseNormals;

out vec4 fragColor;

void main() {
	float light = 1.0;
	if (uUseNormals == 1) {
		vec3 n = normalize(vNormal);
		light = 0.25 + 0.75 * max(dot(n, normalize(uLightDir)), 0.0);
	}
	fragColor = vec4(uBaseColor * light, 1.0);
}
`
