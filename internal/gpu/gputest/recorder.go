// Package gputest provides a recording gpu.Device for tests that need no
// graphics context.
package gputest

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// ErrCompile is returned by CompileProgram when FailCompile matches.
var ErrCompile = errors.New("gputest: injected compile failure")

// DrawCall is one DrawElements call with the state it was issued under.
type DrawCall struct {
	Framebuffer gpu.Framebuffer
	Program     gpu.Program
	Mode        gpu.Primitive
	Count       int
	Offset      int
	Enabled     [gpu.CapabilityCount]bool
	Cull        gpu.Face
	DepthMask   bool
	Viewport    [4]int
	Textures    map[int]gpu.Texture
}

// ClearCall is one Clear call.
type ClearCall struct {
	Framebuffer gpu.Framebuffer
	Mask        gpu.ClearMask
}

type texture struct {
	desc gpu.TextureDesc
	cube bool
}

// Recorder implements gpu.Device by recording calls.
type Recorder struct {
	DeviceCaps gpu.Caps

	// FailFramebuffer, when set, makes NewFramebuffer report an incomplete
	// framebuffer for every desc it returns true for.
	FailFramebuffer func(desc gpu.FramebufferDesc) bool
	// FailCompile, when set, makes CompileProgram fail for matching sources.
	FailCompile func(src gpu.ProgramSource) bool

	Draws   []DrawCall
	Clears  []ClearCall
	Uploads int

	next          uint32
	textures      map[gpu.Texture]texture
	renderbuffers map[gpu.Renderbuffer]bool
	framebuffers  map[gpu.Framebuffer]gpu.FramebufferDesc
	buffers       map[gpu.Buffer][]float32
	programs      map[gpu.Program]gpu.ProgramSource
	compiled      int

	framebuffer gpu.Framebuffer
	program     gpu.Program
	enabled     [gpu.CapabilityCount]bool
	cull        gpu.Face
	depthMask   bool
	viewport    [4]int
	units       map[int]gpu.Texture
	blend       [4]gpu.BlendFactor

	locations map[gpu.Program]map[string]int32
	names     map[int32]string
	uniforms  map[gpu.Program]map[string]any
}

// New returns a Recorder reporting a fully capable desktop context.
func New() *Recorder {
	return &Recorder{
		DeviceCaps: gpu.Caps{
			Framebuffers:       true,
			GeometryShader:     true,
			ShadowSupport:      true,
			ShadowFiltering:    true,
			SeamlessCubemap:    true,
			MaxFramebufferSize: 16384,
			MaxTextureUnits:    16,
			MaxCombinedUnits:   80,
			Renderer:           "gputest",
			Version:            "4.1 gputest",
		},
		textures:      make(map[gpu.Texture]texture),
		renderbuffers: make(map[gpu.Renderbuffer]bool),
		framebuffers:  make(map[gpu.Framebuffer]gpu.FramebufferDesc),
		buffers:       make(map[gpu.Buffer][]float32),
		programs:      make(map[gpu.Program]gpu.ProgramSource),
		units:         make(map[int]gpu.Texture),
		depthMask:     true,
		locations:     make(map[gpu.Program]map[string]int32),
		names:         make(map[int32]string),
		uniforms:      make(map[gpu.Program]map[string]any),
	}
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

// ResetCalls forgets recorded draws and clears but keeps objects and state.
func (r *Recorder) ResetCalls() {
	r.Draws = nil
	r.Clears = nil
	r.Uploads = 0
}

// Caps returns DeviceCaps.
func (r *Recorder) Caps() gpu.Caps { return r.DeviceCaps }

// NewTexture2D records a 2D texture.
func (r *Recorder) NewTexture2D(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Size <= 0 {
		return 0, fmt.Errorf("texture size %d: %w", desc.Size, gpu.ErrUnsupported)
	}
	t := gpu.Texture(r.id())
	r.textures[t] = texture{desc: desc}
	return t, nil
}

// NewTextureCube records a cube texture.
func (r *Recorder) NewTextureCube(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Size <= 0 {
		return 0, fmt.Errorf("cube texture size %d: %w", desc.Size, gpu.ErrUnsupported)
	}
	t := gpu.Texture(r.id())
	r.textures[t] = texture{desc: desc, cube: true}
	return t, nil
}

// DeleteTextures forgets textures.
func (r *Recorder) DeleteTextures(tex ...gpu.Texture) {
	for _, t := range tex {
		delete(r.textures, t)
	}
}

// NewRenderbuffer records a renderbuffer.
func (r *Recorder) NewRenderbuffer(format gpu.TextureFormat, size int) (gpu.Renderbuffer, error) {
	if size <= 0 {
		return 0, fmt.Errorf("renderbuffer size %d: %w", size, gpu.ErrUnsupported)
	}
	rb := gpu.Renderbuffer(r.id())
	r.renderbuffers[rb] = true
	return rb, nil
}

// DeleteRenderbuffers forgets renderbuffers.
func (r *Recorder) DeleteRenderbuffers(rb ...gpu.Renderbuffer) {
	for _, b := range rb {
		delete(r.renderbuffers, b)
	}
}

// NewFramebuffer records a framebuffer unless FailFramebuffer rejects it.
func (r *Recorder) NewFramebuffer(desc gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	if r.FailFramebuffer != nil && r.FailFramebuffer(desc) {
		return 0, fmt.Errorf("gputest: %w", gpu.ErrIncompleteFramebuffer)
	}
	fb := gpu.Framebuffer(r.id())
	r.framebuffers[fb] = desc
	r.framebuffer = gpu.DefaultFramebuffer
	return fb, nil
}

// DeleteFramebuffers forgets framebuffers.
func (r *Recorder) DeleteFramebuffers(fb ...gpu.Framebuffer) {
	for _, f := range fb {
		delete(r.framebuffers, f)
	}
}

// NewBuffer records a buffer.
func (r *Recorder) NewBuffer(target gpu.BufferTarget, usage gpu.BufferUsage) gpu.Buffer {
	b := gpu.Buffer(r.id())
	r.buffers[b] = nil
	return b
}

// DeleteBuffers forgets buffers.
func (r *Recorder) DeleteBuffers(buf ...gpu.Buffer) {
	for _, b := range buf {
		delete(r.buffers, b)
	}
}

// UploadFloats stores a copy of data.
func (r *Recorder) UploadFloats(buf gpu.Buffer, data []float32) {
	r.buffers[buf] = append([]float32(nil), data...)
	r.Uploads++
}

// UploadIndices16 counts the upload.
func (r *Recorder) UploadIndices16(buf gpu.Buffer, data []uint16) { r.Uploads++ }

// UploadIndices32 counts the upload.
func (r *Recorder) UploadIndices32(buf gpu.Buffer, data []uint32) { r.Uploads++ }

func (r *Recorder) SetVertexAttrib(loc int32, buf gpu.Buffer, size, stride, offset int) {}
func (r *Recorder) DisableVertexAttrib(loc int32)                                       {}
func (r *Recorder) BindIndexBuffer(buf gpu.Buffer)                                      {}

// DrawElements records the call with a snapshot of the current state.
func (r *Recorder) DrawElements(mode gpu.Primitive, count int, typ gpu.IndexType, offset int) {
	units := make(map[int]gpu.Texture, len(r.units))
	for k, v := range r.units {
		units[k] = v
	}
	r.Draws = append(r.Draws, DrawCall{
		Framebuffer: r.framebuffer,
		Program:     r.program,
		Mode:        mode,
		Count:       count,
		Offset:      offset,
		Enabled:     r.enabled,
		Cull:        r.cull,
		DepthMask:   r.depthMask,
		Viewport:    r.viewport,
		Textures:    units,
	})
}

func (r *Recorder) Enable(c gpu.Capability)  { r.enabled[c] = true }
func (r *Recorder) Disable(c gpu.Capability) { r.enabled[c] = false }
func (r *Recorder) CullFace(f gpu.Face)      { r.cull = f }
func (r *Recorder) DepthMask(on bool)        { r.depthMask = on }

func (r *Recorder) PolygonOffset(factor, units float32) {}

func (r *Recorder) BlendFunc(src, dst gpu.BlendFactor) {
	r.blend = [4]gpu.BlendFactor{src, dst, src, dst}
}

func (r *Recorder) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	r.blend = [4]gpu.BlendFactor{srcRGB, dstRGB, srcAlpha, dstAlpha}
}

func (r *Recorder) Viewport(x, y, w, h int) { r.viewport = [4]int{x, y, w, h} }

// Clear records the call.
func (r *Recorder) Clear(mask gpu.ClearMask) {
	r.Clears = append(r.Clears, ClearCall{Framebuffer: r.framebuffer, Mask: mask})
}

func (r *Recorder) BindFramebuffer(fb gpu.Framebuffer) { r.framebuffer = fb }

func (r *Recorder) BindTexture(unit int, target gpu.TextureTarget, tex gpu.Texture) {
	r.units[unit] = tex
}

// CompileProgram records a program unless FailCompile rejects the source.
func (r *Recorder) CompileProgram(src gpu.ProgramSource) (gpu.Program, error) {
	if r.FailCompile != nil && r.FailCompile(src) {
		return 0, fmt.Errorf("%s: %w", src.Name, ErrCompile)
	}
	p := gpu.Program(r.id())
	r.programs[p] = src
	r.compiled++
	return p, nil
}

// DeleteProgram forgets a program.
func (r *Recorder) DeleteProgram(p gpu.Program) {
	delete(r.programs, p)
}

func (r *Recorder) UseProgram(p gpu.Program) { r.program = p }

// UniformLocation hands out a distinct location per program and name.
func (r *Recorder) UniformLocation(p gpu.Program, name string) int32 {
	locs, ok := r.locations[p]
	if !ok {
		locs = make(map[string]int32)
		r.locations[p] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := int32(r.id())
	locs[name] = loc
	r.names[loc] = name
	return loc
}

func (r *Recorder) setUniform(loc int32, v any) {
	if loc < 0 {
		return
	}
	vals, ok := r.uniforms[r.program]
	if !ok {
		vals = make(map[string]any)
		r.uniforms[r.program] = vals
	}
	vals[r.names[loc]] = v
}

func (r *Recorder) Uniform1i(loc int32, v int32)           { r.setUniform(loc, v) }
func (r *Recorder) Uniform1f(loc int32, v float32)         { r.setUniform(loc, v) }
func (r *Recorder) Uniform2f(loc int32, v mgl32.Vec2)      { r.setUniform(loc, v) }
func (r *Recorder) Uniform3f(loc int32, v mgl32.Vec3)      { r.setUniform(loc, v) }
func (r *Recorder) Uniform4f(loc int32, v mgl32.Vec4)      { r.setUniform(loc, v) }
func (r *Recorder) UniformMat3(loc int32, m mgl32.Mat3)    { r.setUniform(loc, m) }
func (r *Recorder) UniformMat4(loc int32, m mgl32.Mat4)    { r.setUniform(loc, m) }
func (r *Recorder) Uniform4fv(loc int32, v []mgl32.Vec4)   { r.setUniform(loc, append([]mgl32.Vec4(nil), v...)) }
func (r *Recorder) UniformMat4v(loc int32, m []mgl32.Mat4) { r.setUniform(loc, append([]mgl32.Mat4(nil), m...)) }

// Uniform returns the last value set for name while p was bound.
func (r *Recorder) Uniform(p gpu.Program, name string) (any, bool) {
	v, ok := r.uniforms[p][name]
	return v, ok
}

// IsEnabled reports the current state of a capability.
func (r *Recorder) IsEnabled(c gpu.Capability) bool { return r.enabled[c] }

// CurrentFramebuffer returns the bound framebuffer.
func (r *Recorder) CurrentFramebuffer() gpu.Framebuffer { return r.framebuffer }

// CurrentViewport returns the last viewport.
func (r *Recorder) CurrentViewport() [4]int { return r.viewport }

// CurrentCull returns the culled face.
func (r *Recorder) CurrentCull() gpu.Face { return r.cull }

// CurrentBlend returns srcRGB, dstRGB, srcAlpha and dstAlpha.
func (r *Recorder) CurrentBlend() [4]gpu.BlendFactor { return r.blend }

// LiveTextures returns the number of textures not yet deleted.
func (r *Recorder) LiveTextures() int { return len(r.textures) }

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (r *Recorder) LiveFramebuffers() int { return len(r.framebuffers) }

// LiveRenderbuffers returns the number of renderbuffers not yet deleted.
func (r *Recorder) LiveRenderbuffers() int { return len(r.renderbuffers) }

// LiveBuffers returns the number of buffers not yet deleted.
func (r *Recorder) LiveBuffers() int { return len(r.buffers) }

// LivePrograms returns the number of programs not yet deleted.
func (r *Recorder) LivePrograms() int { return len(r.programs) }

// Compiled returns how many programs were compiled in total.
func (r *Recorder) Compiled() int { return r.compiled }

// TextureInfo returns the description of a live texture.
func (r *Recorder) TextureInfo(t gpu.Texture) (desc gpu.TextureDesc, cube, ok bool) {
	tex, ok := r.textures[t]
	return tex.desc, tex.cube, ok
}

// FramebufferInfo returns the description of a live framebuffer.
func (r *Recorder) FramebufferInfo(fb gpu.Framebuffer) (gpu.FramebufferDesc, bool) {
	d, ok := r.framebuffers[fb]
	return d, ok
}

// BufferData returns the last floats uploaded to buf.
func (r *Recorder) BufferData(buf gpu.Buffer) []float32 {
	return r.buffers[buf]
}

// ProgramSource returns the source a live program was compiled from.
func (r *Recorder) ProgramSource(p gpu.Program) (gpu.ProgramSource, bool) {
	src, ok := r.programs[p]
	return src, ok
}

// DrawsTo returns the recorded draws issued while fb was bound.
func (r *Recorder) DrawsTo(fb gpu.Framebuffer) []DrawCall {
	var out []DrawCall
	for _, d := range r.Draws {
		if d.Framebuffer == fb {
			out = append(out, d)
		}
	}
	return out
}

// ClearsOf returns the recorded clears issued while fb was bound.
func (r *Recorder) ClearsOf(fb gpu.Framebuffer) []ClearCall {
	var out []ClearCall
	for _, c := range r.Clears {
		if c.Framebuffer == fb {
			out = append(out, c)
		}
	}
	return out
}

var _ gpu.Device = (*Recorder)(nil)
