// Package app wires configuration, logging, tile fetching, the normal
// pipeline and the renderer into the interactive viewer.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/krzyz/topo-renderer/internal/config"
	"github.com/krzyz/topo-renderer/internal/engine/camera"
	"github.com/krzyz/topo-renderer/internal/engine/debug"
	"github.com/krzyz/topo-renderer/internal/engine/input"
	"github.com/krzyz/topo-renderer/internal/engine/scene"
	"github.com/krzyz/topo-renderer/internal/engine/terrain"
	"github.com/krzyz/topo-renderer/internal/engine/window"
	"github.com/krzyz/topo-renderer/internal/fetch"
	"github.com/krzyz/topo-renderer/internal/geo"
)

// App is the interactive terrain viewer.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window      *window.Window
	scene       *scene.Scene
	cam         *camera.Camera
	input       *input.Input
	pipeline    *terrain.Pipeline
	client      *fetch.Client
	screenshots *debug.ScreenshotCapture

	center      geo.GeoLocation
	results     <-chan fetch.Result
	cancelFetch context.CancelFunc

	running bool
	looking bool
}

// New creates the viewer. The OpenGL context is created here, so it
// must be called from the main goroutine.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	center, err := geo.ParseLocation(cfg.Terrain.Location)
	if err != nil {
		return nil, fmt.Errorf("terrain location: %w", err)
	}

	a := &App{
		cfg:         cfg,
		log:         log,
		input:       input.New(),
		center:      center,
		screenshots: debug.NewScreenshotCapture("screenshots", "topo"),
	}

	a.window, err = window.New(window.Config{
		Title:      "topo-renderer",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := gl.Init(); err != nil {
		a.window.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	// Anchor the render frame at the center of the reference tile.
	lat, lon := center.Degrees()
	origin := geo.GeoCoord{
		Longitude: float32(lon) + 0.5,
		Latitude:  float32(lat) + 0.5,
	}

	width, height := a.window.GetDrawableSize()
	a.scene, err = scene.New(scene.Config{
		Width:     int32(width),
		Height:    int32(height),
		PixelizeN: cfg.Rendering.PixelizeN,
	}, geo.NewTangentFrame(origin))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("creating scene: %w", err)
	}
	a.scene.Sun.Theta = cfg.Rendering.SunTheta
	a.scene.Sun.Phi = cfg.Rendering.SunPhi
	a.scene.Sun.Ambient = cfg.Rendering.AmbientStrength
	a.scene.Sun.Diffuse = cfg.Rendering.DiffuseStrength

	a.cam = camera.New(float32(width) / float32(height))

	a.pipeline = terrain.NewPipeline(log)
	a.client = fetch.NewClient(cfg.Terrain.BackendURL, cfg.Terrain.CacheDir, log)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelFetch = cancel
	a.results = a.client.FetchArea(ctx, center, cfg.Terrain.TileRadius)

	log.Info("viewer initialized",
		zap.Stringer("center", center),
		zap.Int("tile_radius", cfg.Terrain.TileRadius))

	return a, nil
}

// Run starts the main loop and blocks until quit.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting render loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		forward, right, up := a.input.MovementAxes()
		a.cam.HandleMovement(forward, right, up, dt)

		a.drainTiles()

		a.render()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("tiles", a.scene.TileCount()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, e := range a.input.Events() {
		switch e.Type {
		case input.EventQuit:
			a.running = false

		case input.EventWindowResize:
			width, height := a.window.GetDrawableSize()
			a.scene.Resize(int32(width), int32(height))
			a.cam.Aspect = float32(width) / float32(height)

		case input.EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				a.running = false
			case sdl.SCANCODE_TAB:
				a.cam.CycleViewMode()
				a.log.Info("view mode changed", zap.Stringer("mode", a.cam.Mode))
			case sdl.SCANCODE_F12:
				a.captureScreenshot()
			}

		case input.EventMouseDown:
			switch e.Button {
			case sdl.BUTTON_RIGHT:
				a.looking = true
				a.window.SetRelativeMouseMode(true)
			case sdl.BUTTON_LEFT:
				a.pick(int32(e.MouseX), int32(e.MouseY))
			}

		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_RIGHT {
				a.looking = false
				a.window.SetRelativeMouseMode(false)
			}

		case input.EventMouseMove:
			if a.looking {
				a.cam.HandleLook(float32(e.MouseDX), float32(e.MouseDY))
			}

		case input.EventMouseWheel:
			a.cam.HandleZoom(e.WheelY)
		}
	}
}

// drainTiles moves finished downloads into the pipeline and re-uploads
// every tile whose normals were touched by stitching.
func (a *App) drainTiles() {
	for {
		select {
		case res, ok := <-a.results:
			if !ok {
				a.results = nil
				return
			}
			if res.Err != nil {
				a.log.Warn("tile fetch failed",
					zap.Stringer("location", res.Location), zap.Error(res.Err))
				continue
			}
			a.addTile(res)
		default:
			return
		}
	}
}

func (a *App) addTile(res fetch.Result) {
	tr, err := res.Tile.CoordinateTransform()
	if err != nil {
		a.log.Warn("tile has unusable georeferencing",
			zap.Stringer("location", res.Location), zap.Error(err))
		return
	}

	tile, err := terrain.NewTile(res.Location, res.Tile.Width, res.Tile.Height, res.Tile.Samples, tr)
	if err != nil {
		a.log.Warn("rejecting tile", zap.Error(err))
		return
	}

	for _, touched := range a.pipeline.AddTile(tile) {
		if err := a.scene.AddTile(touched); err != nil {
			a.log.Warn("uploading tile",
				zap.Stringer("location", touched.Location), zap.Error(err))
		}
	}
}

func (a *App) render() {
	width, height := a.window.GetDrawableSize()

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	a.scene.Render(a.cam)
}

func (a *App) pick(x, y int32) {
	dist, ok := a.scene.PickDistance(x, y)
	if !ok {
		a.log.Info("picked sky")
		return
	}
	a.log.Info("picked terrain", zap.Float32("distance_m", dist))
}

func (a *App) captureScreenshot() {
	pixels, width, height := a.scene.CaptureImage()
	path, err := a.screenshots.CaptureFromPixels(pixels, int(width), int(height))
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.cancelFetch != nil {
		a.cancelFetch()
	}
	if a.scene != nil {
		a.scene.Destroy()
	}
	if a.window != nil {
		a.window.Close()
	}
}
