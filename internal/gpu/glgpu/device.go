// Package glgpu implements gpu.Device on top of an OpenGL 4.1 core context.
package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// Device drives the OpenGL context that is current on the calling thread.
type Device struct {
	caps gpu.Caps
	vao  uint32
	log  *zap.Logger

	// binding point and usage per buffer, uploads re-specify the whole store
	buffers map[gpu.Buffer]bufferInfo
}

// New initializes the GL bindings, probes the context and binds the
// vertex array object every draw goes through. The context must be current.
func New(log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	d := &Device{log: log, buffers: make(map[gpu.Buffer]bufferInfo)}
	d.caps = probe(log)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	if d.caps.SeamlessCubemap {
		gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	}

	return d, nil
}

// Close releases the vertex array object.
func (d *Device) Close() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

// Caps returns the probe result.
func (d *Device) Caps() gpu.Caps {
	return d.caps
}

func internalFormat(f gpu.TextureFormat) (internal int32, format, typ uint32) {
	switch f {
	case gpu.FormatDepth16:
		return gl.DEPTH_COMPONENT16, gl.DEPTH_COMPONENT, gl.UNSIGNED_SHORT
	case gpu.FormatDepth24:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT
	case gpu.FormatDepth32F:
		return gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}

func applyParams(target uint32, desc gpu.TextureDesc) {
	filter := int32(gl.NEAREST)
	if desc.Filter == gpu.FilterLinear {
		filter = gl.LINEAR
	}
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filter)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if desc.Wrap == gpu.WrapClampToBorder {
		wrap = gl.CLAMP_TO_BORDER
		border := desc.BorderColor
		gl.TexParameterfv(target, gl.TEXTURE_BORDER_COLOR, &border[0])
	}
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrap)
	if target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrap)
	}

	if desc.Compare {
		gl.TexParameteri(target, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(target, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}
}

// NewTexture2D allocates an uninitialized square 2D texture.
func (d *Device) NewTexture2D(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Size <= 0 {
		return 0, fmt.Errorf("texture size %d: %w", desc.Size, gpu.ErrUnsupported)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	internal, format, typ := internalFormat(desc.Format)
	size := int32(desc.Size)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, size, size, 0, format, typ, nil)
	applyParams(gl.TEXTURE_2D, desc)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := glError("texture 2D"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return gpu.Texture(id), nil
}

// NewTextureCube allocates an uninitialized cube texture with square faces.
func (d *Device) NewTextureCube(desc gpu.TextureDesc) (gpu.Texture, error) {
	if desc.Size <= 0 {
		return 0, fmt.Errorf("cube texture size %d: %w", desc.Size, gpu.ErrUnsupported)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)

	internal, format, typ := internalFormat(desc.Format)
	size := int32(desc.Size)
	for i := uint32(0); i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, internal, size, size, 0, format, typ, nil)
	}
	applyParams(gl.TEXTURE_CUBE_MAP, desc)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if err := glError("texture cube"); err != nil {
		gl.DeleteTextures(1, &id)
		return 0, err
	}
	return gpu.Texture(id), nil
}

// DeleteTextures releases textures. Zero handles are ignored.
func (d *Device) DeleteTextures(tex ...gpu.Texture) {
	for _, t := range tex {
		if t != 0 {
			id := uint32(t)
			gl.DeleteTextures(1, &id)
		}
	}
}

// NewRenderbuffer allocates a square renderbuffer.
func (d *Device) NewRenderbuffer(format gpu.TextureFormat, size int) (gpu.Renderbuffer, error) {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	gl.BindRenderbuffer(gl.RENDERBUFFER, id)
	internal, _, _ := internalFormat(format)
	gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internal), int32(size), int32(size))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	if err := glError("renderbuffer"); err != nil {
		gl.DeleteRenderbuffers(1, &id)
		return 0, err
	}
	return gpu.Renderbuffer(id), nil
}

// DeleteRenderbuffers releases renderbuffers. Zero handles are ignored.
func (d *Device) DeleteRenderbuffers(rb ...gpu.Renderbuffer) {
	for _, r := range rb {
		if r != 0 {
			id := uint32(r)
			gl.DeleteRenderbuffers(1, &id)
		}
	}
}

func attach(point uint32, a gpu.Attachment) {
	switch a.Kind {
	case gpu.AttachTexture2D:
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, point, gl.TEXTURE_2D, uint32(a.Texture), 0)
	case gpu.AttachCubeFace:
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, point, gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(a.Face), uint32(a.Texture), 0)
	case gpu.AttachLayered:
		gl.FramebufferTexture(gl.FRAMEBUFFER, point, uint32(a.Texture), 0)
	case gpu.AttachRenderbuffer:
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, point, gl.RENDERBUFFER, uint32(a.Renderbuffer))
	}
}

// NewFramebuffer creates a framebuffer and checks it for completeness.
// The previously bound framebuffer is not restored; the default one is bound.
func (d *Device) NewFramebuffer(desc gpu.FramebufferDesc) (gpu.Framebuffer, error) {
	var id uint32
	gl.GenFramebuffers(1, &id)
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)

	attach(gl.COLOR_ATTACHMENT0, desc.Color)
	attach(gl.DEPTH_ATTACHMENT, desc.Depth)
	if desc.Color.Kind == gpu.AttachNone {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		gl.DeleteFramebuffers(1, &id)
		d.log.Warn("framebuffer incomplete", zap.String("status", fmt.Sprintf("0x%x", status)))
		return 0, fmt.Errorf("status 0x%x: %w", status, gpu.ErrIncompleteFramebuffer)
	}
	return gpu.Framebuffer(id), nil
}

// DeleteFramebuffers releases framebuffers. Zero handles are ignored.
func (d *Device) DeleteFramebuffers(fb ...gpu.Framebuffer) {
	for _, f := range fb {
		if f != 0 {
			id := uint32(f)
			gl.DeleteFramebuffers(1, &id)
		}
	}
}

// BindFramebuffer makes fb the render target.
func (d *Device) BindFramebuffer(fb gpu.Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
}

// BindTexture binds tex to a texture unit.
func (d *Device) BindTexture(unit int, target gpu.TextureTarget, tex gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	if target == gpu.TextureCube {
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(tex))
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
}

func glError(what string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%x", what, code)
	}
	return nil
}

// Uniform setters.

func (d *Device) Uniform1i(loc int32, v int32)      { gl.Uniform1i(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)    { gl.Uniform1f(loc, v) }
func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) { gl.Uniform2f(loc, v[0], v[1]) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }

func (d *Device) Uniform4fv(loc int32, v []mgl32.Vec4) {
	if len(v) > 0 {
		gl.Uniform4fv(loc, int32(len(v)), &v[0][0])
	}
}

func (d *Device) UniformMat3(loc int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMat4v(loc int32, m []mgl32.Mat4) {
	if len(m) > 0 {
		gl.UniformMatrix4fv(loc, int32(len(m)), false, &m[0][0])
	}
}
