// Package shadow renders cascaded shadow maps for the directional light.
//
// The camera frustum is first restricted to the part of the scene it can
// actually see, then split into cascades. Each cascade gets a depth-only
// framebuffer whose light projection is cropped to the convex focus body of
// that cascade: the split frustum clipped by the scene box and extruded
// towards the light.
package shadow

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/lighting"
	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// DefaultSize is the default shadow map resolution.
const DefaultSize = 1024

// FirstTextureUnit is the unit the first cascade's depth map is bound to.
const FirstTextureUnit = 4

// Depth bias applied while rendering the depth passes.
const (
	polygonOffsetFactor = 0.5
	polygonOffsetUnits  = 2
)

// DrawFunc draws every shadow caster of the scene with the given light
// matrices into the bound framebuffer. It returns false when the scene could
// not be drawn, which aborts the frame.
type DrawFunc func(projection, modelView mgl32.Mat4) bool

// Cascade is the render state of one split.
type Cascade struct {
	Frustum geom.Frustum
	// Lookup takes world space to shadow texture space.
	Lookup mgl32.Mat4
	// FrustumSize holds the light-space extent of the cascade: the crop
	// scale relative to the full ortho extent and the light-space near/far.
	FrustumSize mgl32.Vec4

	body geom.Polyhedron
}

// Stage owns the cascade framebuffers and the frusta they are fitted to.
type Stage struct {
	dev gpu.Device
	log *zap.Logger

	size       int
	hwSamplers bool
	fbos       []gpu.Framebuffer
	textures   []gpu.Texture
	cascades   []Cascade

	camFrustum geom.Frustum
	orthoNear  float32
	orthoFar   float32
	fixed      bool
}

// New returns a stage without GPU resources. A nil logger disables logging.
func New(dev gpu.Device, log *zap.Logger) *Stage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stage{
		dev:       dev,
		log:       log,
		orthoNear: 0.1,
		orthoFar:  1000,
	}
}

// Init allocates one depth map per cascade of size² texels. Hardware depth
// compare is used unless PCSS or an ES context needs raw depth taps; the
// returned flag reports that choice. Partial allocations are released on
// failure.
func (s *Stage) Init(p shader.Params, size int) (hwSamplers bool, err error) {
	s.Delete()

	splits := p.FrustumSplits
	if splits < 1 || splits > shader.MaxFrustumSplits {
		return false, fmt.Errorf("shadow: invalid cascade count %d", splits)
	}
	caps := s.dev.Caps()
	if !caps.ShadowSupport {
		s.log.Warn("tried to initialize shadows without shadow support")
		return false, fmt.Errorf("shadow: %w", gpu.ErrUnsupported)
	}
	if size <= 0 {
		return false, fmt.Errorf("shadow: invalid map size %d", size)
	}

	pcss := p.PCSSEnabled()
	desc := gpu.TextureDesc{
		Format:      gpu.FormatDepth16,
		Size:        size,
		Filter:      gpu.FilterNearest,
		Wrap:        gpu.WrapClampToBorder,
		BorderColor: [4]float32{1, 1, 1, 1},
	}
	if pcss {
		desc.Format = gpu.FormatDepth32F
	}
	hw := !pcss && !caps.OpenGLES
	desc.Compare = hw
	if hw && p.ShadowFilterQuality.UsesHardwareFilter() {
		desc.Filter = gpu.FilterLinear
	}

	for i := 0; i < splits; i++ {
		tex, err := s.dev.NewTexture2D(desc)
		if err != nil {
			s.Delete()
			return false, fmt.Errorf("shadow: depth map %d: %w", i, err)
		}
		s.textures = append(s.textures, tex)

		fb, err := s.dev.NewFramebuffer(gpu.FramebufferDesc{
			Depth: gpu.Attachment{Kind: gpu.AttachTexture2D, Texture: tex},
		})
		if err != nil {
			s.log.Warn("shadow framebuffer incomplete", zap.Int("cascade", i), zap.Error(err))
			s.Delete()
			return false, fmt.Errorf("shadow: framebuffer %d: %w", i, err)
		}
		s.fbos = append(s.fbos, fb)
	}

	s.size = size
	s.hwSamplers = hw
	s.cascades = make([]Cascade, splits)
	s.log.Debug("shadow maps initialized",
		zap.Int("cascades", splits),
		zap.Int("size", size),
		zap.Bool("hw_samplers", hw),
		zap.Bool("pcss", pcss))
	return hw, nil
}

// Delete releases every GPU object. It is safe to call repeatedly.
func (s *Stage) Delete() {
	if len(s.fbos) == 0 && len(s.textures) == 0 {
		return
	}
	s.dev.DeleteFramebuffers(s.fbos...)
	s.dev.DeleteTextures(s.textures...)
	s.fbos = nil
	s.textures = nil
	s.cascades = nil
	s.size = 0
	s.hwSamplers = false
	s.log.Debug("shadow maps cleaned up")
}

// Created reports whether the cascade framebuffers exist.
func (s *Stage) Created() bool { return len(s.fbos) > 0 }

// Splits returns the number of cascades.
func (s *Stage) Splits() int { return len(s.cascades) }

// Size returns the map resolution.
func (s *Stage) Size() int { return s.size }

// HardwareSamplers reports whether the maps use depth compare mode.
func (s *Stage) HardwareSamplers() bool { return s.hwSamplers }

// Texture returns the depth map of cascade i.
func (s *Stage) Texture(i int) gpu.Texture { return s.textures[i] }

// Cascade returns the state of cascade i.
func (s *Stage) Cascade(i int) *Cascade { return &s.cascades[i] }

// CameraFrustum returns the camera frustum restricted to the shadow range.
func (s *Stage) CameraFrustum() *geom.Frustum { return &s.camFrustum }

// LightOrtho returns the near and far planes of the whole-scene light projection.
func (s *Stage) LightOrtho() (near, far float32) { return s.orthoNear, s.orthoFar }

// Fixed reports whether the shadow data is frozen.
func (s *Stage) Fixed() bool { return s.fixed }

// ToggleFixed freezes or releases the frusta so the current cascades can be
// inspected from another viewpoint.
func (s *Stage) ToggleFixed() bool {
	s.fixed = !s.fixed
	s.camFrustum.SaveDrawingCorners()
	for i := range s.cascades {
		if s.fixed {
			s.cascades[i].Frustum.SaveDrawingCorners()
		} else {
			s.cascades[i].Frustum.ResetCorners()
		}
	}
	return s.fixed
}

// Adjust fits the camera frustum to the part of box it sees and recomputes
// the cascade splits over that range.
func (s *Stage) Adjust(eye, dir, up mgl32.Vec3, fov, aspect float32, box geom.AABB, info scene.Info) {
	if s.fixed || len(s.cascades) == 0 {
		return
	}

	s.camFrustum.SetCamInternals(fov, aspect, info.CamNearZ, info.ShadowFarZ)
	s.camFrustum.CalcFrustum(eye, dir, up)

	var p geom.Polyhedron
	p.Add(&s.camFrustum)
	p.Intersect(box)
	p.MakeUniqueVerts()

	minZ, maxZ := info.CamNearZ, info.ShadowFarZ
	if p.VertCount() > 0 {
		minZ, maxZ = math32.MaxFloat32, -math32.MaxFloat32
		vDir := dir.Normalize()
		for _, v := range p.Verts() {
			dist := v.Sub(eye).Dot(vDir)
			minZ = math32.Min(minZ, dist)
			maxZ = math32.Max(maxZ, dist)
		}
		// the log split needs a positive near plane
		minZ = math32.Max(minZ, info.CamNearZ)
		maxZ = math32.Max(maxZ, minZ+info.CamNearZ)
	}

	s.camFrustum.SetCamInternals(fov, aspect, minZ, maxZ)
	s.camFrustum.CalcFrustum(eye, dir, up)

	frusta := make([]geom.Frustum, len(s.cascades))
	for i := range frusta {
		frusta[i] = s.cascades[i].Frustum
		frusta[i].SetCamInternals(fov, aspect, minZ, maxZ)
	}
	geom.ComputeFrustumSplits(frusta, eye, dir, up, info.ShadowSplitWeight)
	for i := range frusta {
		s.cascades[i].Frustum = frusta[i]
	}
}

// Render draws the depth pass of every cascade. Cascades with an empty focus
// body, or every cascade when nothing casts shadows, are only cleared.
// Render returns false when draw fails; the frame must then be abandoned.
// On return the default framebuffer is bound and depth test, depth writes,
// culling and polygon offset are disabled. The viewport is left at the map
// size.
func (s *Stage) Render(light lighting.Info, box geom.AABB, mode geom.ZMode, draw DrawFunc) bool {
	if s.fixed || len(s.cascades) == 0 {
		return true
	}

	dev := s.dev
	dev.Enable(gpu.PolygonOffsetFill)
	dev.PolygonOffset(polygonOffsetFactor, polygonOffsetUnits)
	dev.Enable(gpu.DepthTest)
	dev.DepthMask(true)
	dev.Enable(gpu.CullFace)
	dev.CullFace(gpu.FaceFront)
	dev.Viewport(0, 0, s.size, s.size)

	var extent float32
	extent, s.orthoNear, s.orthoFar = geom.ComputeOrthoProjVals(light.Direction, box)
	lightProj := mgl32.Ortho(-extent, extent, -extent, extent, s.orthoNear, s.orthoFar)
	lightMV := light.ShadowModelView

	ok := true
	for i := range s.cascades {
		c := &s.cascades[i]
		c.body.Clear()
		c.body.Add(&c.Frustum)
		c.body.Intersect(box)
		c.body.Extrude(light.Direction, box)

		dev.BindFramebuffer(s.fbos[i])
		dev.Clear(gpu.ClearDepth)

		if light.Caster == lighting.CasterNone || c.body.VertCount() == 0 {
			continue
		}

		crop := geom.ComputeCropMatrix(c.body.Verts(), lightProj, lightMV, s.size, mode)
		c.Lookup = crop.Lookup
		depth := s.orthoFar - s.orthoNear
		c.FrustumSize = mgl32.Vec4{
			crop.OrthoScale[0] / extent,
			crop.OrthoScale[1] / extent,
			(0.5*crop.OrthoScale[2]+0.5)*depth + s.orthoNear,
			(0.5*crop.OrthoScale[3]+0.5)*depth + s.orthoNear,
		}

		if !draw(crop.Projection, lightMV) {
			ok = false
			break
		}
	}

	dev.BindFramebuffer(gpu.DefaultFramebuffer)
	dev.Disable(gpu.PolygonOffsetFill)
	dev.PolygonOffset(0, 0)
	dev.DepthMask(false)
	dev.Disable(gpu.DepthTest)
	dev.CullFace(gpu.FaceBack)
	dev.Disable(gpu.CullFace)
	return ok
}

// FocusBody returns the focus polyhedron built for cascade i by the last Render.
func (s *Stage) FocusBody(i int) *geom.Polyhedron { return &s.cascades[i].body }

// SplitData returns the far boundary of each cascade in the clip space of
// projection. Boundaries between cascades sit in the middle of the overlap.
func (s *Stage) SplitData(projection mgl32.Mat4) mgl32.Vec4 {
	var out mgl32.Vec4
	n := len(s.cascades)
	for i := 0; i < n && i < 4; i++ {
		z := s.cascades[i].Frustum.ZFar
		if i+1 < n {
			z = (z + s.cascades[i+1].Frustum.ZNear) / 2
		}
		out[i] = 0.5*(-z*projection[10]+projection[14])/z + 0.5
	}
	return out
}

// OrthoScales returns FrustumSize of every cascade.
func (s *Stage) OrthoScales() []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(s.cascades))
	for i := range s.cascades {
		out[i] = s.cascades[i].FrustumSize
	}
	return out
}

// Bind binds the depth maps to consecutive units starting at FirstTextureUnit.
func (s *Stage) Bind() {
	for i, tex := range s.textures {
		s.dev.BindTexture(FirstTextureUnit+i, gpu.Texture2D, tex)
	}
}
