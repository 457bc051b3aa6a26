// Package app runs the demo host: it opens the window, feeds the scenery
// renderer with the sky, the observer and the clock every frame, and draws
// the settings panel and message console on top.
package app

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/config"
	"github.com/Faultbox/scenery3d/internal/engine/camera"
	"github.com/Faultbox/scenery3d/internal/engine/debug"
	"github.com/Faultbox/scenery3d/internal/engine/input"
	"github.com/Faultbox/scenery3d/internal/engine/projection"
	"github.com/Faultbox/scenery3d/internal/engine/renderer"
	"github.com/Faultbox/scenery3d/internal/engine/ui2d"
	"github.com/Faultbox/scenery3d/internal/engine/window"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/internal/gpu/glgpu"
	"github.com/Faultbox/scenery3d/internal/host"
	"github.com/Faultbox/scenery3d/internal/logger"
)

const (
	title = "Scenery3d"
	// minimalBrightness keeps a moonless night from going fully black.
	minimalBrightness = 0.01
	consoleLines      = 6
	consoleTTL        = 8 * time.Second
)

// App is the demo host instance.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	dev      *glgpu.Device
	renderer *renderer.Renderer
	input    *input.Input

	ui      *ui2d.Renderer
	uiCtx   *ui2d.Context
	panel   *host.SettingsPanel
	console *ui2d.Console

	demo      *host.Demo
	landscape *host.Landscape
	clock     *host.Clock
	observer  host.Observer
	camera    *camera.LookCamera
	kind      projection.Kind

	capturer   *debug.Capturer
	screenshot bool

	// dragging is set while the left button drags the view rather than
	// the panel.
	dragging     bool
	lastX, lastY int
}

// New opens the window and creates every subsystem.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:      cfg,
		log:      logger.Named("app"),
		console:  ui2d.NewConsole(consoleLines, consoleTTL),
		capturer: debug.NewCapturer(cfg.Window.ScreenshotDir, "scenery3d"),
		observer: host.Observer{
			Latitude:  cfg.Scene.Latitude,
			Longitude: cfg.Scene.Longitude,
		},
	}
	a.log.Info("initializing",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("projection", cfg.Window.Projection),
	)

	kind, err := projection.ParseKind(cfg.Window.Projection)
	if err != nil {
		a.log.Warn("falling back to perspective", zap.Error(err))
	}
	a.kind = kind

	// the window creates the GL context everything below needs
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	a.dev, err = glgpu.New(logger.Named("glgpu"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("create device: %w", err)
	}

	w, h := a.window.DrawableSize()
	a.ui, err = ui2d.New(w, h)
	if err != nil {
		a.dev.Close()
		a.window.Close()
		return nil, fmt.Errorf("create ui: %w", err)
	}
	a.uiCtx = ui2d.NewContext(a.ui)
	a.panel = host.NewSettingsPanel(a.uiCtx)

	a.renderer = renderer.New(a.dev, logger.Named("renderer"), a.onMessage)
	a.renderer.SetTextPainter(ui2d.NewOverlay(a.ui, 1))
	a.applySettings()

	now := time.Now()
	a.demo = host.NewDemo(a.dev, cfg.Scene)
	a.landscape = host.NewLandscape()
	a.clock = host.NewClock(host.JulianDay(now), cfg.Scene.TimeRate, now)
	a.camera = camera.NewLookCamera(cfg.Window.FOV)
	a.camera.SetDirection(a.demo.Mesh.ViewDirection())
	a.input = input.New()

	a.log.Info("initialized", zap.String("gl_renderer", a.dev.Caps().Renderer))
	return a, nil
}

// onMessage shows renderer messages on the console.
func (a *App) onMessage(msg string) {
	a.log.Warn("renderer message", zap.String("message", msg))
	a.console.Push(msg, time.Now())
}

// Run runs the main loop until the window is closed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	a.log.Info("starting main loop")
	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()
		a.update(now, dt)
		a.render(now, dt)
		if a.screenshot {
			a.screenshot = false
			a.capture(now)
		}
		a.window.SwapBuffers()

		frameCount++
		if since := now.Sub(fpsTimer); since >= time.Second {
			fps := float64(frameCount) / since.Seconds()
			a.window.SetTitle(fmt.Sprintf("%s - %.0f fps", title, fps))
			a.log.Debug("fps", zap.Float64("fps", fps), zap.Any("stats", a.renderer.Stats()))
			frameCount = 0
			fpsTimer = now
		}
	}
	return nil
}

// Close releases everything in reverse creation order.
func (a *App) Close() {
	a.log.Info("closing")

	if a.demo != nil {
		a.demo.Mesh.GLUnload()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.ui != nil {
		a.ui.Close()
	}
	if a.dev != nil {
		a.dev.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

func (a *App) handleEvents() {
	for _, ev := range a.input.Events() {
		switch ev.Type {
		case input.EventWindowResize:
			w, h := a.window.DrawableSize()
			a.ui.Resize(w, h)

		case input.EventKeyDown:
			a.handleKey(ev.Key)

		case input.EventMouseDown:
			if ev.Button == sdl.BUTTON_LEFT {
				a.dragging = !a.overPanel(ev.MouseX, ev.MouseY)
				a.lastX, a.lastY = ev.MouseX, ev.MouseY
			}

		case input.EventMouseUp:
			if ev.Button == sdl.BUTTON_LEFT {
				a.dragging = false
			}

		case input.EventMouseMove:
			if a.dragging {
				a.camera.HandleDrag(float32(ev.MouseX-a.lastX), float32(ev.MouseY-a.lastY))
			}
			a.lastX, a.lastY = ev.MouseX, ev.MouseY

		case input.EventMouseWheel:
			a.camera.HandleZoom(ev.WheelY)
		}
	}
}

func (a *App) handleKey(sc sdl.Scancode) {
	switch act := keyAction(sc); act {
	case actionNone:
	case actionQuit:
		a.running = false
	case actionPanel:
		a.panel.Open = !a.panel.Open
	case actionFullscreen:
		a.window.ToggleFullscreen()
		a.cfg.Window.Fullscreen = a.window.Fullscreen()
	case actionFreezeShadows:
		if a.renderer.ToggleFixShadowData() {
			a.console.Push("Shadow frusta frozen", time.Now())
		} else {
			a.console.Push("Shadow frusta released", time.Now())
		}
	case actionFaster, actionSlower:
		now := time.Now()
		a.clock.SetRate(nextRate(a.clock.Rate(), act == actionFaster), now)
		a.console.Push(fmt.Sprintf("Time rate %gx", a.clock.Rate()), now)
	case actionScreenshot:
		a.screenshot = true
	case actionLandscape:
		a.landscape.SetVisible(!a.landscape.Visible())
		if a.landscape.Visible() {
			a.console.Push("Landscape shown", time.Now())
		} else {
			a.console.Push("Landscape hidden", time.Now())
		}
	case actionProjection:
		a.kind = (a.kind + 1) % (projection.KindStereographic + 1)
		a.cfg.Window.Projection = a.kind.String()
		a.console.Push("Projection: "+a.kind.String(), time.Now())
	default:
		if applyToggle(&a.cfg.Render, act) {
			a.applySettings()
		}
	}
}

// applySettings pushes the render config to the renderer. The debug
// overlay also raises the log level.
func (a *App) applySettings() {
	a.renderer.ApplySettings(a.cfg.Render)
	if a.cfg.Render.Debug {
		logger.SetLevel("debug")
	} else {
		logger.SetLevel(a.cfg.Logging.Level)
	}
}

// capture saves the back buffer before it is swapped.
func (a *App) capture(now time.Time) {
	w, h := a.window.DrawableSize()
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	path, err := a.capturer.Capture(pixels, w, h, now)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		a.console.Push("Screenshot failed", now)
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
	a.console.Push("Saved "+path, now)
}

// overPanel reports whether window point x, y is inside the open panel.
func (a *App) overPanel(x, y int) bool {
	return a.panel.Contains(a.toDrawable(x, y))
}

// toDrawable converts window coordinates to framebuffer pixels.
func (a *App) toDrawable(x, y int) (float32, float32) {
	ww, wh := a.window.GetSize()
	dw, dh := a.window.DrawableSize()
	if ww == 0 || wh == 0 {
		return float32(x), float32(y)
	}
	return float32(x) * float32(dw) / float32(ww), float32(y) * float32(dh) / float32(wh)
}

func (a *App) update(now time.Time, dt time.Duration) {
	in := a.input
	forward := in.Axis(sdl.SCANCODE_W, sdl.SCANCODE_S)
	right := in.Axis(sdl.SCANCODE_D, sdl.SCANCODE_A)
	if forward != 0 || right != 0 {
		a.demo.Mesh.MoveEye(a.camera.Walk(forward, right, dt.Seconds()))
	}
	a.demo.Mesh.SetViewDirection(a.camera.Direction())
	a.demo.Animate(a.clock.WallMS(now))

	ui := a.uiCtx.Input()
	mx, my := in.MousePosition()
	ui.MouseX, ui.MouseY = a.toDrawable(mx, my)
	ui.MouseLeftDown = in.IsButtonHeld(sdl.BUTTON_LEFT)
}

func (a *App) render(now time.Time, dt time.Duration) {
	w, h := a.window.DrawableSize()
	jd := a.clock.JD(now)
	sky := a.observer.Compute(jd)
	a.landscape.Update(dt, sky.Sun)

	light := sky.Inputs()
	light.Landscape = a.landscape
	light.MinimalBrightness = minimalBrightness

	proj := projection.New(a.kind, projection.View{
		Dir:      a.camera.Direction(),
		Up:       mgl64.Vec3{0, 0, 1},
		FOV:      a.camera.FOV,
		Viewport: [4]int{0, 0, w, h},
	})

	a.dev.BindFramebuffer(gpu.DefaultFramebuffer)
	a.dev.Viewport(0, 0, w, h)
	c := skyColor(float32(sky.Sun.Z()))
	gl.ClearColor(c[0], c[1], c[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	// renderer text is queued on the ui and drawn in End
	a.ui.Begin()
	a.renderer.Draw(renderer.Frame{
		Projection: proj,
		JD:         jd,
		WallMS:     a.clock.WallMS(now),
		Light:      light,
	}, a.demo.Mesh)

	a.uiCtx.Begin()
	changed, save := a.panel.Draw(&a.cfg.Render)
	if changed {
		a.applySettings()
	}
	if save {
		if err := a.cfg.Save(); err != nil {
			a.log.Error("failed to save config", zap.Error(err))
			a.console.Push("Could not save settings", now)
		} else {
			a.console.Push("Settings saved", now)
		}
	}
	a.console.Draw(a.ui, now)
	a.ui.End()
}
