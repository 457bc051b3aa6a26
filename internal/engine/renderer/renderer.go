// Package renderer draws a loaded scenery once per frame.
//
// With a perspective host projection the scene is drawn directly. Any other
// projection goes through the cubemap stage, which captures the scene around
// the eye and reprojects it. Both paths can add cascaded shadow maps for the
// dominant light. Draw never returns an error: failures degrade the output,
// are logged, and are reported once through the message callback.
package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/lighting"
	"github.com/Faultbox/scenery3d/internal/engine/projection"
	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/engine/shadow"
	"github.com/Faultbox/scenery3d/internal/gpu"
)

// User-facing messages.
const (
	MsgShaderError   = "Scenery3d shader error, can't draw. Check debug output for details."
	MsgShadowsFailed = "Shadow mapping can not be used on your hardware, check logs for details"
	MsgSceneFailed   = "Scenery3d scene could not be uploaded, check logs for details"
)

// Torch defaults.
const (
	DefaultTorchBrightness = 0.5
	DefaultTorchRange      = 5.0
)

// minTextureUnits covers four material textures plus four shadow cascades.
const minTextureUnits = 8

// shadowCasterOpacity is the opacity from which a material casts shadows.
const shadowCasterOpacity = 0.2

// MessageFunc receives short human-readable failure reports.
type MessageFunc func(msg string)

// Frame is the host state for one Draw call.
type Frame struct {
	Projection projection.Projector
	// JD is the simulation time as a Julian day.
	JD float64
	// WallMS is the wall clock in milliseconds.
	WallMS int64
	// Light carries the ephemeris and landscape inputs. The renderer fills in
	// its own shadow, torch and brightness settings.
	Light lighting.Inputs
}

// Stats counts the work of the last frame.
type Stats struct {
	Triangles        int
	Models           int
	MaterialSwitches int
	ShaderSwitches   int
	ShadowPasses     int
	ColorPasses      int
	FaceRefreshes    int
}

// Renderer owns every GPU resource it draws with. All calls must come from
// the thread owning the device.
type Renderer struct {
	dev     gpu.Device
	log     *zap.Logger
	caps    gpu.Caps
	shaders *shader.Manager
	shadows *shadow.Stage
	cube    *cubemap.Stage
	painter TextPainter

	onMessage MessageFunc
	shown     map[string]bool

	params          shader.Params
	cubemapMode     cubemap.Mode
	cubemapSize     int
	shadowmapSize   int
	simpleShadows   bool
	perFaceShadows  bool
	torchBrightness float32
	torchRange      float32
	debug           bool
	text            bool

	reinitCubemap        bool
	reinitShadows        bool
	cubemapFailed        bool
	cubemapUsedLastFrame bool
	lastDrawnPosition    mgl64.Vec3

	// valid during Draw
	sc              scene.Scene
	frame           Frame
	info            scene.Info
	light           lighting.Info
	requiresCubemap bool
	refresh         cubemap.Refresh
	projection      mgl32.Mat4
	modelView       mgl32.Mat4
	cubeMVP         []mgl32.Mat4
	pass            passState
	stats           Stats

	debugVBO gpu.Buffer
	debugIBO gpu.Buffer
}

// New probes dev and returns a renderer with default settings. onMessage
// and log may be nil.
func New(dev gpu.Device, log *zap.Logger, onMessage MessageFunc) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if onMessage == nil {
		onMessage = func(string) {}
	}
	r := &Renderer{
		dev:             dev,
		log:             log,
		onMessage:       onMessage,
		shown:           make(map[string]bool),
		shaders:         shader.NewManager(dev, log.Named("shader")),
		shadows:         shadow.New(dev, log.Named("shadow")),
		cubemapMode:     cubemap.ModeTextures,
		cubemapSize:     cubemap.DefaultSize,
		shadowmapSize:   shadow.DefaultSize,
		torchBrightness: DefaultTorchBrightness,
		torchRange:      DefaultTorchRange,
		params: shader.Params{
			PixelLighting:       true,
			Shadows:             true,
			ShadowFilterQuality: shader.FilterLow,
			FrustumSplits:       shader.MaxFrustumSplits,
		},
		pass: passState{seen: make(map[*shader.Program]bool)},
	}
	r.cube = cubemap.New(dev, log.Named("cubemap"), r.message)
	r.probe()
	return r
}

// probe adapts the defaults to what the context supports.
func (r *Renderer) probe() {
	caps := r.dev.Caps()
	r.caps = caps
	r.params.OpenGLES = caps.OpenGLES

	r.log.Debug("graphics context",
		zap.String("renderer", caps.Renderer),
		zap.String("version", caps.Version),
		zap.Int("max_framebuffer_size", caps.MaxFramebufferSize),
		zap.Bool("geometry_shader", caps.GeometryShader),
		zap.Int("texture_units", caps.MaxTextureUnits),
		zap.Int("combined_texture_units", caps.MaxCombinedUnits))

	if !caps.Framebuffers {
		r.log.Warn("no framebuffer support, shadows disabled and display limited to perspective projection")
		r.cubemapSize = 0
		r.shadowmapSize = 0
	}
	r.cubemapSize = r.clampSize(r.cubemapSize)
	r.shadowmapSize = r.clampSize(r.shadowmapSize)

	if !caps.GeometryShader {
		r.log.Warn("geometry shader not supported")
	}
	if caps.MaxTextureUnits < minTextureUnits || caps.MaxCombinedUnits < minTextureUnits {
		r.log.Warn("insufficient texture units for all effects",
			zap.Int("have", caps.MaxTextureUnits),
			zap.Int("want", minTextureUnits))
	}
	if !caps.ShadowSupport {
		r.log.Warn("shadows are not supported by the graphics context")
		r.params.Shadows = false
	}
	if !caps.ShadowFiltering {
		r.params.ShadowFilterQuality = shader.FilterOff
	}
}

// clampSize limits a framebuffer size to what the context can allocate.
func (r *Renderer) clampSize(n int) int {
	if n < 0 || !r.caps.Framebuffers {
		return 0
	}
	if limit := r.caps.MaxFramebufferSize; limit > 0 && n > limit {
		r.log.Warn("framebuffer size reduced to the context maximum",
			zap.Int("requested", n),
			zap.Int("max", limit))
		return limit
	}
	return n
}

// message reports msg once until the settings change.
func (r *Renderer) message(msg string) {
	if r.shown[msg] {
		return
	}
	r.shown[msg] = true
	r.onMessage(msg)
}

// SetTextPainter sets where the debug overlay and the coordinates text go.
// Without one both are skipped.
func (r *Renderer) SetTextPainter(p TextPainter) { r.painter = p }

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Params returns the shader parameters the next frame starts from.
func (r *Renderer) Params() shader.Params { return r.params }

// Caps returns the probed context capabilities.
func (r *Renderer) Caps() gpu.Caps { return r.caps }

// CubemapMode returns the mode in use, which can differ from the requested
// one after a fallback.
func (r *Renderer) CubemapMode() cubemap.Mode {
	if r.cube.Created() {
		return r.cube.Mode()
	}
	return r.cubemapMode
}

// Close releases every GPU resource.
func (r *Renderer) Close() {
	r.cube.Delete()
	r.shadows.Delete()
	r.shaders.Clear()
	if r.debugVBO != 0 {
		r.dev.DeleteBuffers(r.debugVBO, r.debugIBO)
		r.debugVBO, r.debugIBO = 0, 0
	}
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
