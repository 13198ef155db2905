package main

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	rl "github.com/gen2brain/raylib-go/raylib"

	"portalscene/internal/config"
	"portalscene/internal/debug"
	"portalscene/internal/engine3D"
	"portalscene/internal/engine3D/glsl"
	"portalscene/internal/engine3D/loop"
	"portalscene/internal/engine3D/particle"
	"portalscene/internal/engine3D/stage"
	"portalscene/internal/engine3D/viewport"
	"portalscene/internal/params"
	"portalscene/internal/scene"
	"portalscene/internal/utils"
)

// rlHost exposes the raylib window to the frame loop.
type rlHost struct{}

func (rlHost) ShouldClose() bool { return rl.WindowShouldClose() }

func (rlHost) Size() (int, int) { return rl.GetScreenWidth(), rl.GetScreenHeight() }

type Window struct {
	cfg        config.Config
	pixelRatio func() float64
	hostRatio  float64

	viewport *viewport.Viewport
	stage    *stage.Stage
	renderer *engine3D.Renderer
	binding  *params.Binding
	overlay  *debug.DebugOverlay
	watcher  *glsl.Watcher
	loop     *loop.Loop

	task       *scene.Task
	cancelLoad context.CancelFunc
	attached   bool
	result     scene.Result
	loadErr    error

	frame loop.Frame
}

// NewWindow builds the scene for the current window. pixelRatio is asked
// again on every resize since the window may have moved to another screen.
func NewWindow(ctx context.Context, cfg config.Config, pixelRatio func() float64) *Window {
	vpConfig := cfg.ViewportConfig()
	class := viewport.Classify(rl.GetScreenWidth(), vpConfig)
	preset := vpConfig.PresetFor(class)

	box := particle.Box{
		Min: mgl32.Vec3(cfg.Scene.FireflyMin),
		Max: mgl32.Vec3(cfg.Scene.FireflyMax),
	}

	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	renderer := engine3D.NewRenderer(engine3D.Options{
		FovY:                cfg.Scene.FOV,
		Near:                cfg.Scene.Near,
		Far:                 cfg.Scene.Far,
		PoleLightColor:      engine3D.ParamsColor(cfg.Scene.PoleLightColor),
		PortalFallbackColor: engine3D.ParamsColor(cfg.Scene.PortalFallbackColor),
		Shaders:             glsl.Library{Dir: cfg.Assets.Shaders},
		FireflyBox:          box,
	})

	binding, err := params.Bind(cfg.ParamsValues(), renderer.FireflyUniforms, renderer.PortalUniforms)
	if err != nil {
		utils.Warn("Params: %v, using defaults", err)
		binding, _ = params.Bind(params.Defaults(), renderer.FireflyUniforms, renderer.PortalUniforms)
	}

	overlay := debug.NewDebugOverlay(cfg.Debug.Panel, class)
	overlay.ShowBoundingBoxes = cfg.Debug.BoundingBoxes

	window := &Window{
		cfg:        cfg,
		pixelRatio: pixelRatio,
		viewport:   viewport.New(vpConfig),
		stage:      stage.New(preset, box, rand.New(rand.NewSource(seed))),
		renderer:   renderer,
		binding:    binding,
		overlay:    overlay,
	}
	renderer.SetFireflies(window.stage.Field())
	renderer.SetCamera(window.stage.Orbit.Position(), window.stage.Orbit.Target())
	utils.Info("Spawned %d fireflies for %s", preset.FireflyCount, class)

	if cfg.Assets.WatchShader {
		if cfg.Assets.Shaders == "" {
			utils.Warn("watch_shaders set without a shader directory; nothing to watch")
		} else if watcher, err := glsl.Watch(cfg.Assets.Shaders); err != nil {
			utils.Warn("Shader watch disabled: %v", err)
		} else {
			window.watcher = watcher
			utils.Info("Watching %s for shader changes", cfg.Assets.Shaders)
		}
	}

	loadCtx, cancel := context.WithCancel(ctx)
	window.cancelLoad = cancel
	window.task = scene.Load(loadCtx, sceneRequest(cfg, class))
	utils.Info("Loading %s and %s (%s)", cfg.Assets.Texture, cfg.Assets.Model, class)

	window.loop = loop.New(rlHost{}, loop.Options{
		OnResize: window.Resize,
		OnFrame:  window.Frame,
	})

	return window
}

func (window *Window) Run(ctx context.Context) error {
	return window.loop.Run(ctx)
}

// Resize recomputes sizes against the current host pixel ratio and, when the
// device class changes, moves the camera to the class preset. The firefly
// field is left as spawned.
func (window *Window) Resize(width, height int) {
	window.hostRatio = window.pixelRatio()
	change := window.viewport.Resize(width, height, window.hostRatio)
	window.renderer.Resize(change.Sizes)

	if window.stage.Apply(change) {
		window.renderer.SetCamera(window.stage.Orbit.Position(), window.stage.Orbit.Target())
		window.overlay.SetClass(change.Class)
		utils.Info("Device class %s, pixel ratio %.2f", change.Class, change.Sizes.PixelRatio)
	}
	utils.Debug("Resize %dx%d, buffer %dx%d", width, height, change.Sizes.BufferWidth, change.Sizes.BufferHeight)
}

func (window *Window) Frame(f loop.Frame) {
	window.frame = f

	// Moving to a monitor with another scale changes the ratio but not the size.
	if window.pixelRatio() != window.hostRatio {
		window.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	window.overlay.Update()
	window.handleInput()

	orbit := window.stage.Orbit
	orbit.Update()
	window.renderer.SetCamera(orbit.Position(), orbit.Target())

	elapsed := float32(f.Elapsed.Seconds())
	window.renderer.FireflyUniforms.SetFloat(engine3D.UniformTime, elapsed)
	window.renderer.PortalUniforms.SetFloat(engine3D.UniformTime, elapsed)

	window.pollAssets()
	window.pollShaders()

	window.renderer.ShowBounds = window.overlay.ShowBoundingBoxes
	window.renderer.ClearColor = window.binding.ClearRGBA()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	window.renderer.Draw(rl.GetScreenWidth(), rl.GetScreenHeight())
	window.overlay.Draw(window.binding, window.sceneInfo(), debug.FrameInfo{
		Sizes:   window.viewport.Sizes(),
		Class:   window.viewport.Class(),
		Elapsed: f.Elapsed,
	})
	rl.EndDrawing()
}

func (window *Window) handleInput() {
	if rl.IsKeyPressed(rl.KeyF5) {
		for _, name := range glsl.Names() {
			window.renderer.ReloadShader(name)
		}
	}

	if window.overlay.CapturesMouse() {
		return
	}

	orbit := window.stage.Orbit
	height := window.viewport.Sizes().Height
	delta := rl.GetMouseDelta()

	switch {
	case rl.IsMouseButtonDown(rl.MouseLeftButton):
		orbit.Rotate(delta.X, delta.Y, height)
	case rl.IsMouseButtonDown(rl.MouseRightButton), rl.IsMouseButtonDown(rl.MouseMiddleButton):
		orbit.Pan(delta.X, delta.Y, height, float64(mgl32.DegToRad(window.cfg.Scene.FOV)))
	}

	orbit.Zoom(rl.GetMouseWheelMove())
}

// pollAssets attaches the background load once it finishes. Missing nodes
// are logged and the rest of the scene is drawn anyway.
func (window *Window) pollAssets() {
	if window.attached {
		return
	}
	res, err := window.task.Result()
	if errors.Is(err, scene.ErrPending) {
		return
	}
	window.attached = true
	window.result = res
	window.loadErr = err

	var nodeErr *scene.NodeError
	switch {
	case errors.As(err, &nodeErr):
		utils.Warn("Scene loaded with missing nodes:\n%v", err)
	case err != nil:
		utils.Error("Scene load failed:\n%v", err)
	}

	if attachErr := window.renderer.AttachAssets(res); attachErr != nil {
		utils.Error("Failed to attach assets: %v", attachErr)
		window.loadErr = errors.Join(window.loadErr, attachErr)
	}
}

func (window *Window) pollShaders() {
	if window.watcher == nil {
		return
	}
	for _, name := range window.watcher.Drain() {
		window.renderer.ReloadShader(name)
	}
}

func (window *Window) sceneInfo() debug.SceneInfo {
	return debug.SceneInfo{
		Loading:     !window.attached,
		LoadErr:     window.loadErr,
		TexturePath: window.result.TexturePath,
		ModelPath:   window.result.ModelPath,
		Bindings:    window.result.Bindings,
		Shaders:     window.renderer.ShaderOrigins(),
		Status:      window.renderer.Status(),
	}
}

func (window *Window) Close() {
	window.loop.Stop()
	window.cancelLoad()
	if window.watcher != nil {
		if err := window.watcher.Close(); err != nil {
			utils.Warn("Shader watcher: %v", err)
		}
	}
	window.overlay.Unload()
	window.renderer.Unload()
}
