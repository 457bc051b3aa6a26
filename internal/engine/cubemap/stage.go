// Package cubemap captures the scene into six cube faces around the eye and
// reprojects them through a non-linear host projection.
//
// The faces are drawn with a 90 degree perspective camera, either into six
// 2D textures or into the layers of one cube texture, optionally all at once
// through a geometry shader. A subdivided cube mesh is then projected on the
// CPU with the host projection and drawn textured with the captured faces.
package cubemap

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/projection"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/gpu"
)

// DefaultSize is the default face resolution.
const DefaultSize = 1024

// User-facing messages.
const (
	MsgUnsupported   = "Your hardware does not support cubemapping, please switch to 'Perspective' projection!"
	MsgGSUnsupported = "Geometry shader is not supported. Falling back to '6 Textures' mode."
	MsgInitFailed    = "Cannot use cubemapping with current settings"
)

// Painter draws the scene for the stage.
type Painter interface {
	// RenderShadows refits and renders the shadow maps for a view along
	// viewDir. It returns false when the frame must be abandoned.
	RenderShadows(viewDir mgl32.Vec3, fov, aspect float32) bool
	// DrawFace draws the scene into the bound target. cubeMVP is set when
	// all six faces are drawn in one layered pass.
	DrawFace(projection, modelView mgl32.Mat4, cubeMVP []mgl32.Mat4) bool
}

// Frame holds what Generate needs from the current frame.
type Frame struct {
	Sample  Sample
	Eye     mgl32.Vec3
	ViewDir mgl32.Vec3
	Near    float32
	Far     float32
	Refresh Refresh

	// Shadows requests shadow passes. Without PerFaceShadows one pass is
	// fitted to the host view described by FOV and Aspect; with it every
	// drawn face gets its own pass.
	Shadows        bool
	PerFaceShadows bool
	FOV            float32
	Aspect         float32

	// Viewport is restored when Generate returns.
	Viewport [4]int
}

// Stage owns the capture targets and the reprojection mesh.
type Stage struct {
	dev    gpu.Device
	log    *zap.Logger
	notify func(string)

	// FallbackRenderers lists GL renderer substrings of drivers that cannot
	// render into cube textures. They are forced to ModeTextures.
	FallbackRenderers []string

	*Scheduler

	mode      Mode
	size      int
	created   bool
	rotations [FaceCount]mgl32.Mat4

	cubeTex   gpu.Texture
	cubeDepth gpu.Texture
	faceTex   [FaceCount]gpu.Texture
	depthRB   gpu.Renderbuffer
	cubeFBO   gpu.Framebuffer
	faceFBO   [FaceCount]gpu.Framebuffer

	mesh        Mesh
	transformed []mgl32.Vec3
	vbo         gpu.Buffer
	streamVBO   gpu.Buffer
	ibo         gpu.Buffer

	dominant int
	second   int
}

// New returns a stage without GPU resources. notify receives user-facing
// messages and may be nil, as may log.
func New(dev gpu.Device, log *zap.Logger, notify func(string)) *Stage {
	if log == nil {
		log = zap.NewNop()
	}
	if notify == nil {
		notify = func(string) {}
	}
	return &Stage{
		dev:               dev,
		log:               log,
		notify:            notify,
		FallbackRenderers: []string{"ANGLE"},
		Scheduler:         NewScheduler(),
		second:            FaceEast,
	}
}

// Init creates the capture targets for mode at size² texels per face and
// returns the mode actually used. Unsupported modes fall back to
// ModeTextures. On failure nothing stays allocated.
func (s *Stage) Init(mode Mode, size int) (Mode, error) {
	s.log.Debug("initializing cubemap", zap.Stringer("mode", mode), zap.Int("size", size))
	s.Delete()

	if size <= 0 {
		s.log.Warn("cubemapping not supported or disabled")
		s.notify(MsgUnsupported)
		return mode, fmt.Errorf("cubemap: %w", gpu.ErrUnsupported)
	}

	caps := s.dev.Caps()
	if mode == ModeCubemapGSAccel && !caps.GeometryShader {
		s.notify(MsgGSUnsupported)
		s.log.Warn("geometry shader not supported, falling back", zap.Stringer("mode", ModeTextures))
		mode = ModeTextures
	}
	if match := s.fallbackRenderer(caps.Renderer); match != "" && mode.UsesCubeTexture() {
		s.notify(fmt.Sprintf("Falling back to '6 Textures' because of %s bug", match))
		s.log.Warn("renderer cannot draw into cube textures, falling back",
			zap.String("renderer", caps.Renderer),
			zap.Stringer("mode", ModeTextures))
		mode = ModeTextures
	}

	s.mode = mode
	s.size = size
	s.created = true
	if err := s.createTargets(caps.OpenGLES); err != nil {
		s.log.Warn("cubemap targets unusable", zap.Error(err))
		s.notify(MsgInitFailed)
		s.Delete()
		return mode, err
	}

	s.rotations = Rotations(mode)
	s.mesh = NewMesh()
	s.transformed = make([]mgl32.Vec3, len(s.mesh.Vertices))
	s.vbo = s.dev.NewBuffer(gpu.ArrayBuffer, gpu.StaticDraw)
	s.dev.UploadFloats(s.vbo, s.mesh.bufferData())
	s.streamVBO = s.dev.NewBuffer(gpu.ArrayBuffer, gpu.StreamDraw)
	s.ibo = s.dev.NewBuffer(gpu.ElementArrayBuffer, gpu.StaticDraw)
	s.dev.UploadIndices16(s.ibo, s.mesh.Indices)

	s.Invalidate()
	s.log.Debug("cubemap initialized",
		zap.Stringer("mode", mode),
		zap.Int("vertices", len(s.mesh.Vertices)),
		zap.Int("indices", len(s.mesh.Indices)))
	return mode, nil
}

func (s *Stage) fallbackRenderer(renderer string) string {
	r := strings.ToLower(renderer)
	for _, name := range s.FallbackRenderers {
		if name != "" && strings.Contains(r, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func (s *Stage) createTargets(es bool) error {
	dev := s.dev
	color := gpu.TextureDesc{
		Format: gpu.FormatRGBA8,
		Size:   s.size,
		Filter: gpu.FilterLinear,
		Wrap:   gpu.WrapClampToEdge,
	}
	var err error

	if s.mode.UsesCubeTexture() {
		if s.cubeTex, err = dev.NewTextureCube(color); err != nil {
			return fmt.Errorf("cubemap: color cube: %w", err)
		}
	} else {
		for i := range s.faceTex {
			if s.faceTex[i], err = dev.NewTexture2D(color); err != nil {
				return fmt.Errorf("cubemap: face %s: %w", FaceName(i), err)
			}
		}
	}

	if s.mode == ModeCubemapGSAccel {
		depth := color
		depth.Format = gpu.FormatDepth24
		if s.cubeDepth, err = dev.NewTextureCube(depth); err != nil {
			return fmt.Errorf("cubemap: depth cube: %w", err)
		}
		s.cubeFBO, err = dev.NewFramebuffer(gpu.FramebufferDesc{
			Color: gpu.Attachment{Kind: gpu.AttachLayered, Texture: s.cubeTex},
			Depth: gpu.Attachment{Kind: gpu.AttachLayered, Texture: s.cubeDepth},
		})
		if err != nil {
			return fmt.Errorf("cubemap: layered framebuffer: %w", err)
		}
		return nil
	}

	rbFormat := gpu.FormatDepth24
	if es {
		rbFormat = gpu.FormatDepth16
	}
	if s.depthRB, err = dev.NewRenderbuffer(rbFormat, s.size); err != nil {
		return fmt.Errorf("cubemap: depth renderbuffer: %w", err)
	}
	depth := gpu.Attachment{Kind: gpu.AttachRenderbuffer, Renderbuffer: s.depthRB}
	for i := range s.faceFBO {
		desc := gpu.FramebufferDesc{Depth: depth}
		if s.mode == ModeCubemap {
			desc.Color = gpu.Attachment{Kind: gpu.AttachCubeFace, Texture: s.cubeTex, Face: i}
		} else {
			desc.Color = gpu.Attachment{Kind: gpu.AttachTexture2D, Texture: s.faceTex[i]}
		}
		if s.faceFBO[i], err = dev.NewFramebuffer(desc); err != nil {
			return fmt.Errorf("cubemap: face %s framebuffer: %w", FaceName(i), err)
		}
	}
	return nil
}

// Delete releases every GPU object. It is safe to call repeatedly.
func (s *Stage) Delete() {
	if !s.created {
		return
	}
	dev := s.dev
	if s.cubeFBO != 0 {
		dev.DeleteFramebuffers(s.cubeFBO)
		s.cubeFBO = 0
	}
	for i, fb := range s.faceFBO {
		if fb != 0 {
			dev.DeleteFramebuffers(fb)
			s.faceFBO[i] = 0
		}
	}
	if s.depthRB != 0 {
		dev.DeleteRenderbuffers(s.depthRB)
		s.depthRB = 0
	}
	if s.cubeDepth != 0 {
		dev.DeleteTextures(s.cubeDepth)
		s.cubeDepth = 0
	}
	for i, tex := range s.faceTex {
		if tex != 0 {
			dev.DeleteTextures(tex)
			s.faceTex[i] = 0
		}
	}
	if s.cubeTex != 0 {
		dev.DeleteTextures(s.cubeTex)
		s.cubeTex = 0
	}
	for _, buf := range []*gpu.Buffer{&s.vbo, &s.streamVBO, &s.ibo} {
		if *buf != 0 {
			dev.DeleteBuffers(*buf)
			*buf = 0
		}
	}
	s.mesh = Mesh{}
	s.transformed = nil
	s.size = 0
	s.created = false
	s.log.Debug("cubemap objects cleaned up")
}

// Created reports whether the capture targets exist.
func (s *Stage) Created() bool { return s.created }

// Mode returns the mode chosen by the last successful Init.
func (s *Stage) Mode() Mode { return s.mode }

// Size returns the face resolution.
func (s *Stage) Size() int { return s.size }

// Rotation returns the view rotation of face.
func (s *Stage) Rotation(face int) mgl32.Mat4 { return s.rotations[face] }

// FaceTexture returns the 2D texture of face in ModeTextures.
func (s *Stage) FaceTexture(face int) gpu.Texture { return s.faceTex[face] }

// CubeTexture returns the cube texture in the cube texture modes.
func (s *Stage) CubeTexture() gpu.Texture { return s.cubeTex }

// FaceFramebuffer returns the target of face in the per-face modes.
func (s *Stage) FaceFramebuffer(face int) gpu.Framebuffer { return s.faceFBO[face] }

// LayeredFramebuffer returns the target of ModeCubemapGSAccel.
func (s *Stage) LayeredFramebuffer() gpu.Framebuffer { return s.cubeFBO }

// UpdateDominantFaces records the faces the view direction points at.
func (s *Stage) UpdateDominantFaces(dominant, second int) {
	s.dominant, s.second = dominant, second
}

// DominantFaces returns the faces recorded by UpdateDominantFaces.
func (s *Stage) DominantFaces() (dominant, second int) { return s.dominant, s.second }

// Generate redraws the faces f.Refresh asks for. It returns false when the
// painter failed; the frame must then be abandoned.
func (s *Stage) Generate(f Frame, p Painter) bool {
	if !s.created || f.Refresh == RefreshIdle {
		return true
	}

	layered := s.mode == ModeCubemapGSAccel
	if f.Shadows && (!f.PerFaceShadows || layered) {
		if !p.RenderShadows(f.ViewDir, f.FOV, f.Aspect) {
			return false
		}
	}

	dev := s.dev
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, f.Near, f.Far)
	eyeShift := mgl32.Translate3D(-f.Eye[0], -f.Eye[1], -f.Eye[2])
	s.beginCapture()

	ok := true
	if layered {
		dev.BindFramebuffer(s.cubeFBO)
		dev.Clear(gpu.ClearColor | gpu.ClearDepth)
		var cubeMVP [FaceCount]mgl32.Mat4
		for i, rot := range s.rotations {
			cubeMVP[i] = proj.Mul4(rot).Mul4(eyeShift)
		}
		ok = p.DrawFace(proj, eyeShift, cubeMVP[:])
	} else {
		for _, face := range f.Refresh.Faces(s.dominant, s.second) {
			rot := s.rotations[face]
			if f.Shadows && f.PerFaceShadows {
				dir := ViewDirection(rot)
				if face > FaceWest {
					// keep the light frustum off the up vector
					dir[0] += 1e-6
				}
				if !p.RenderShadows(dir, 90, 1) {
					ok = false
					break
				}
				s.beginCapture()
			}
			dev.BindFramebuffer(s.faceFBO[face])
			dev.Clear(gpu.ClearColor | gpu.ClearDepth)
			if !p.DrawFace(proj, rot.Mul4(eyeShift), nil) {
				ok = false
				break
			}
		}
	}

	dev.BindFramebuffer(gpu.DefaultFramebuffer)
	dev.DepthMask(false)
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.CullFace)
	vp := f.Viewport
	dev.Viewport(vp[0], vp[1], vp[2], vp[3])

	if ok && f.Refresh == RefreshFull {
		s.MarkRefreshed(f.Sample)
	}
	return ok
}

func (s *Stage) beginCapture() {
	s.dev.Viewport(0, 0, s.size, s.size)
	s.dev.Enable(gpu.DepthTest)
	s.dev.DepthMask(true)
	s.dev.Enable(gpu.CullFace)
}

// DrawFrom reprojects the captured faces through proj into the bound
// framebuffer with premultiplied alpha blending.
func (s *Stage) DrawFrom(proj projection.Projector, shaders *shader.Manager) error {
	if !s.created {
		return nil
	}
	cube := s.mode.UsesCubeTexture()
	prog, err := shaders.Cube(cube)
	if err != nil {
		return err
	}
	prog.Bind()

	proj.Project(s.mesh.Vertices, s.transformed)
	prog.SetMat4(shader.UniformMatProjection, proj.ProjectionMatrix())
	prog.SetInt(shader.UniformTexDiffuse, 0)

	dev := s.dev
	if cube {
		dev.SetVertexAttrib(gpu.AttribTexCoord, s.vbo, 3, 0, 0)
	} else {
		dev.SetVertexAttrib(gpu.AttribTexCoord, s.vbo, 2, 0, len(s.mesh.Vertices)*3*4)
	}
	dev.UploadFloats(s.streamVBO, flatten(s.transformed))
	dev.SetVertexAttrib(gpu.AttribPosition, s.streamVBO, 3, 0, 0)
	dev.BindIndexBuffer(s.ibo)

	dev.Enable(gpu.Blend)
	dev.BlendFunc(gpu.BlendOne, gpu.BlendOneMinusSrcAlpha)
	dev.Enable(gpu.DepthTest)
	dev.DepthMask(true)
	dev.Enable(gpu.CullFace)
	dev.Clear(gpu.ClearDepth)

	if cube {
		dev.BindTexture(0, gpu.TextureCube, s.cubeTex)
		dev.DrawElements(gpu.Triangles, len(s.mesh.Indices), gpu.Uint16, 0)
	} else {
		for i, tex := range s.faceTex {
			dev.BindTexture(0, gpu.Texture2D, tex)
			dev.DrawElements(gpu.Triangles, FaceIndices, gpu.Uint16, i*FaceIndices*gpu.Uint16.Size())
		}
	}

	dev.DisableVertexAttrib(gpu.AttribTexCoord)
	dev.DisableVertexAttrib(gpu.AttribPosition)
	dev.Disable(gpu.CullFace)
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.Blend)
	return nil
}

func flatten(v []mgl32.Vec3) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
