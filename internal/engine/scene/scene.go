// Package scene renders computed terrain tiles and the contour
// post-process pass.
package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/krzyz/topo-renderer/internal/engine/camera"
	"github.com/krzyz/topo-renderer/internal/engine/framebuffer"
	"github.com/krzyz/topo-renderer/internal/engine/lighting"
	"github.com/krzyz/topo-renderer/internal/engine/terrain"
	"github.com/krzyz/topo-renderer/internal/geo"
)

// Config contains scene configuration options.
type Config struct {
	Width     int32
	Height    int32
	PixelizeN int
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		PixelizeN: 1,
	}
}

// Scene owns the offscreen target, the tile renderer and the contour
// pass, and exposes depth-readback picking over the rendered frame.
type Scene struct {
	config Config

	framebuffer *framebuffer.Framebuffer

	terrainRenderer *TerrainRenderer
	postProcessor   *PostProcessor

	// Directional light shared with the terrain shader.
	Sun *lighting.Sun

	frame geo.TangentFrame
}

// New creates a scene with its render passes. The tangent frame anchors
// all uploaded tiles to a common local coordinate system.
func New(cfg Config, frame geo.TangentFrame) (*Scene, error) {
	s := &Scene{
		config: cfg,
		Sun:    lighting.NewSun(),
		frame:  frame,
	}

	var err error
	s.framebuffer, err = framebuffer.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	s.terrainRenderer, err = NewTerrainRenderer()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating terrain renderer: %w", err)
	}

	s.postProcessor, err = NewPostProcessor()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating postprocessor: %w", err)
	}
	s.postProcessor.PixelizeN = cfg.PixelizeN

	return s, nil
}

// Frame returns the tangent frame tiles are rendered in.
func (s *Scene) Frame() geo.TangentFrame {
	return s.frame
}

// AddTile uploads a computed tile to the GPU.
func (s *Scene) AddTile(t *terrain.Tile) error {
	return s.terrainRenderer.UploadTile(t, s.frame)
}

// RemoveTile drops a tile's GPU resources.
func (s *Scene) RemoveTile(loc geo.GeoLocation) {
	s.terrainRenderer.RemoveTile(loc)
}

// TileCount returns the number of resident tiles.
func (s *Scene) TileCount() int {
	return s.terrainRenderer.TileCount()
}

// Render draws the terrain offscreen and composites the contoured image
// to the framebuffer that is bound when it returns.
func (s *Scene) Render(cam *camera.Camera) {
	// Terrain pass into the offscreen target
	restore := s.framebuffer.BindWithViewport()
	s.framebuffer.Clear(0.53, 0.71, 0.92, 1.0)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	s.terrainRenderer.Render(
		cam.ViewProjection(),
		s.Sun.Direction(),
		s.Sun.Ambient,
		s.Sun.Diffuse,
		int32(cam.Mode),
	)

	restore()

	// Contour pass to the restored render target
	s.postProcessor.Render(s.framebuffer)
}

// Resize updates the scene dimensions.
func (s *Scene) Resize(width, height int32) {
	if width == s.config.Width && height == s.config.Height {
		return
	}
	s.config.Width = width
	s.config.Height = height
	s.framebuffer.Resize(width, height)
}

// PickDistance reads scene depth under window coordinates (x, y), with
// origin at the top-left, and returns the view-space distance in meters.
// ok is false when the cursor is over the sky.
func (s *Scene) PickDistance(x, y int32) (dist float32, ok bool) {
	_, height := s.framebuffer.Size()
	depth := s.framebuffer.ReadDepth(x, height-1-y)
	if depth >= 0.9999 {
		return 0, false
	}
	return camera.DistFromDepth(depth), true
}

// ColorTexture returns the rendered color texture.
func (s *Scene) ColorTexture() uint32 {
	return s.framebuffer.ColorTexture()
}

// CaptureImage captures the current rendered scene as RGBA pixel data.
// Returns the pixel data and dimensions. Pixels are in correct orientation (top-to-bottom).
func (s *Scene) CaptureImage() ([]byte, int32, int32) {
	width, height := s.framebuffer.Size()
	pixels := s.framebuffer.ReadPixels()

	// Flip vertically (OpenGL has origin at bottom-left, we need top-left)
	rowSize := int(width) * 4
	flipped := make([]byte, len(pixels))
	for y := 0; y < int(height); y++ {
		srcRow := (int(height) - 1 - y) * rowSize
		dstRow := y * rowSize
		copy(flipped[dstRow:dstRow+rowSize], pixels[srcRow:srcRow+rowSize])
	}

	return flipped, width, height
}

// Destroy releases all resources.
func (s *Scene) Destroy() {
	if s.terrainRenderer != nil {
		s.terrainRenderer.Destroy()
	}
	if s.postProcessor != nil {
		s.postProcessor.Destroy()
	}
	if s.framebuffer != nil {
		s.framebuffer.Destroy()
	}
}
