// Package viewer implements the interactive mesh viewer loop.
package viewer

import (
	"fmt"
	gomath "math"
	"path/filepath"
	"strings"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/tribatch/internal/config"
	"github.com/Faultbox/tribatch/internal/engine/input"
	"github.com/Faultbox/tribatch/internal/engine/renderer"
	"github.com/Faultbox/tribatch/internal/engine/window"
	"github.com/Faultbox/tribatch/internal/logger"
	"github.com/Faultbox/tribatch/pkg/batch"
	"github.com/Faultbox/tribatch/pkg/formats"
	"github.com/Faultbox/tribatch/pkg/math"
)

// Options selects the mesh to display and how legacy mesh files are read.
type Options struct {
	MeshPath string

	// Channel hints for mesh files without a self-describing header.
	LegacyNormals   bool
	LegacyTexCoords bool
}

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	mesh *batch.TriangleBatch

	// Orbit camera state.
	yaw      float32
	pitch    float32
	distance float32
	dragging bool
	spinning bool
}

// New creates a viewer, opens the window and loads the mesh onto the GPU.
func New(cfg *config.Config, opts Options) (*Viewer, error) {
	v := &Viewer{
		config:   cfg,
		spinning: true,
	}

	// Window first: the GL context must exist before any GL call.
	var err error
	v.window, err = window.New(window.Config{
		Title:      "tribatch viewer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Graphics.Width,
		Height: cfg.Graphics.Height,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()

	v.mesh, err = loadMesh(cfg, opts)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.window.SetTitle(fmt.Sprintf("tribatch viewer - %s (%d verts, %d tris)",
		filepath.Base(opts.MeshPath), v.mesh.VertexCount(), v.mesh.IndexCount()/3))

	// Frame the mesh: far enough back that the bounding sphere fits.
	v.distance = v.mesh.BoundingRadius() * 2.5
	if v.distance <= 0 {
		v.distance = 1
	}
	v.pitch = 0.35

	return v, nil
}

// loadMesh reads the mesh at opts.MeshPath into a finalized batch. Native
// mesh files are loaded directly; STL and OBJ files are assembled with the
// configured weld tolerance.
func loadMesh(cfg *config.Config, opts Options) (*batch.TriangleBatch, error) {
	b := batch.New(renderer.NewMeshBuffers())

	if strings.EqualFold(filepath.Ext(opts.MeshPath), ".tbm") {
		if err := b.LoadFile(opts.MeshPath, opts.LegacyNormals, opts.LegacyTexCoords); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.MeshPath, err)
		}
		logger.Log.Info("mesh loaded",
			zap.String("path", opts.MeshPath),
			zap.Int("vertices", b.VertexCount()),
			zap.Int("indices", b.IndexCount()),
		)
		return b, nil
	}

	name, tris, err := formats.ParseFile(opts.MeshPath)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", opts.MeshPath, err)
	}

	start := time.Now()
	if err := b.Begin(cfg.Assembly.MaxVerts); err != nil {
		return nil, err
	}
	if err := formats.Assemble(b, tris, cfg.Assembly.Epsilon, cfg.Assembly.CheckRange); err != nil {
		return nil, fmt.Errorf("assemble %s: %w", opts.MeshPath, err)
	}
	if err := b.End(); err != nil {
		return nil, err
	}

	logger.Log.Info("mesh assembled",
		zap.String("name", name),
		zap.Int("triangles", len(tris)),
		zap.Int("vertices", b.VertexCount()),
		zap.Int("indices", b.IndexCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}

// Run starts the main viewer loop.
func (v *Viewer) Run() error {
	v.running = true
	lastTime := time.Now()

	logger.Log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		if v.spinning && !v.dragging {
			v.yaw += 0.5 * dt
		}

		v.render()
		v.window.SwapBuffers()
	}

	return nil
}

// handleEvents applies the frame's input events to the camera and window.
func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			v.renderer.Resize(event.Width, event.Height)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.spinning = !v.spinning
			}
		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = true
			}
		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			}
		case input.EventMouseMove:
			if v.dragging {
				v.yaw += float32(event.DeltaX) * 0.01
				v.pitch += float32(event.DeltaY) * 0.01
				if v.pitch > 1.5 {
					v.pitch = 1.5
				}
				if v.pitch < -1.5 {
					v.pitch = -1.5
				}
			}
		case input.EventMouseWheel:
			v.distance *= 1 - float32(event.ScrollY)*0.1
			min := v.mesh.BoundingRadius() * 1.1
			if min <= 0 {
				min = 0.1
			}
			if v.distance < min {
				v.distance = min
			}
		}
	}
}

// render draws the current frame.
func (v *Viewer) render() {
	v.renderer.BeginFrame()

	width, height := v.window.GetSize()
	aspect := float32(width) / float32(height)

	eye := math.Vec3{Y: v.distance * sin32(v.pitch), Z: v.distance * cos32(v.pitch)}
	view := math.LookAt(eye, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(0.9, aspect, v.distance*0.01, v.distance*10)
	model := math.RotateY(v.yaw)
	mvp := proj.Mul(view).Mul(model)

	v.renderer.DrawMesh(v.mesh, mvp, model)
}

func sin32(v float32) float32 { return float32(gomath.Sin(float64(v))) }
func cos32(v float32) float32 { return float32(gomath.Cos(float64(v))) }

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Log.Info("closing viewer")

	if v.mesh != nil {
		v.mesh.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
