// Package gpu defines the graphics device the renderer draws through.
//
// A Device is owned by one graphics context. Components receive it at
// construction time instead of reaching for process-wide GL entry points,
// so everything above this package can run against a recording double.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrIncompleteFramebuffer is returned when a framebuffer fails its completeness check.
	ErrIncompleteFramebuffer = errors.New("framebuffer incomplete")
	// ErrUnsupported is returned when the context lacks a required feature.
	ErrUnsupported = errors.New("not supported by the graphics context")
)

// Object handles. Zero is never a valid object.
type (
	Texture      uint32
	Framebuffer  uint32
	Renderbuffer uint32
	Buffer       uint32
	Program      uint32
)

// DefaultFramebuffer is the window system framebuffer.
const DefaultFramebuffer Framebuffer = 0

// Caps is the result of probing a context once after creation.
type Caps struct {
	Framebuffers       bool
	GeometryShader     bool
	ShadowSupport      bool
	ShadowFiltering    bool
	SeamlessCubemap    bool
	OpenGLES           bool
	MaxFramebufferSize int
	MaxTextureUnits    int
	MaxCombinedUnits   int
	Renderer           string
	Version            string
}

// TextureFormat is an internal storage format.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatDepth16
	FormatDepth24
	FormatDepth32F
)

// IsDepth reports whether f is a depth format.
func (f TextureFormat) IsDepth() bool {
	return f != FormatRGBA8
}

// Filter is a texture min/mag filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Wrap is a texture wrap mode.
type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapClampToBorder
)

// TextureDesc describes a square 2D or cube texture.
type TextureDesc struct {
	Format      TextureFormat
	Size        int
	Filter      Filter
	Wrap        Wrap
	BorderColor [4]float32
	// Compare enables depth comparison (LEQUAL) for hardware shadow samplers.
	Compare bool
}

// AttachKind selects how a texture is attached to a framebuffer.
type AttachKind int

const (
	AttachNone AttachKind = iota
	AttachTexture2D
	AttachCubeFace
	AttachLayered
	AttachRenderbuffer
)

// Attachment is one framebuffer attachment point.
type Attachment struct {
	Kind         AttachKind
	Texture      Texture
	Face         int
	Renderbuffer Renderbuffer
}

// FramebufferDesc lists the attachments of a framebuffer. A framebuffer
// without a color attachment has its draw and read buffers disabled.
type FramebufferDesc struct {
	Color Attachment
	Depth Attachment
}

// TextureTarget is a texture binding point.
type TextureTarget int

const (
	Texture2D TextureTarget = iota
	TextureCube
)

// Capability is a server-side toggle.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
	Blend
	PolygonOffsetFill
	capabilityCount
)

// CapabilityCount is the number of Capability values.
const CapabilityCount = int(capabilityCount)

func (c Capability) String() string {
	switch c {
	case DepthTest:
		return "DepthTest"
	case CullFace:
		return "CullFace"
	case Blend:
		return "Blend"
	case PolygonOffsetFill:
		return "PolygonOffsetFill"
	}
	return "Unknown"
}

// Face selects which polygons are culled.
type Face int

const (
	FaceBack Face = iota
	FaceFront
)

// BlendFactor is a blend equation factor.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// ClearMask selects which buffers Clear touches.
type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
)

// BufferTarget is a buffer binding point.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// BufferUsage is a buffer usage hint.
type BufferUsage int

const (
	StaticDraw BufferUsage = iota
	StreamDraw
)

// Primitive is a draw mode.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
)

// IndexType is the element type of an index buffer.
type IndexType int

const (
	Uint16 IndexType = iota
	Uint32
)

// Size returns the byte size of one index.
func (t IndexType) Size() int {
	if t == Uint16 {
		return 2
	}
	return 4
}

// ProgramSource holds GLSL stages. Geometry may be empty.
type ProgramSource struct {
	Name     string
	Vertex   string
	Geometry string
	Fragment string
}

// Attribute locations shared by every program.
const (
	AttribPosition  int32 = 0
	AttribTexCoord  int32 = 1
	AttribNormal    int32 = 2
	AttribTangent   int32 = 3
	AttribBitangent int32 = 4
)

// Device is a graphics context. All calls must come from the thread that owns it.
type Device interface {
	Caps() Caps

	NewTexture2D(desc TextureDesc) (Texture, error)
	NewTextureCube(desc TextureDesc) (Texture, error)
	DeleteTextures(tex ...Texture)
	NewRenderbuffer(format TextureFormat, size int) (Renderbuffer, error)
	DeleteRenderbuffers(rb ...Renderbuffer)
	NewFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	DeleteFramebuffers(fb ...Framebuffer)

	NewBuffer(target BufferTarget, usage BufferUsage) Buffer
	DeleteBuffers(buf ...Buffer)
	UploadFloats(buf Buffer, data []float32)
	UploadIndices16(buf Buffer, data []uint16)
	UploadIndices32(buf Buffer, data []uint32)
	SetVertexAttrib(loc int32, buf Buffer, size, stride, offset int)
	DisableVertexAttrib(loc int32)
	BindIndexBuffer(buf Buffer)
	DrawElements(mode Primitive, count int, typ IndexType, offset int)

	Enable(c Capability)
	Disable(c Capability)
	CullFace(f Face)
	DepthMask(on bool)
	PolygonOffset(factor, units float32)
	BlendFunc(src, dst BlendFactor)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	Viewport(x, y, w, h int)
	Clear(mask ClearMask)
	BindFramebuffer(fb Framebuffer)
	BindTexture(unit int, target TextureTarget, tex Texture)

	CompileProgram(src ProgramSource) (Program, error)
	DeleteProgram(p Program)
	UseProgram(p Program)
	UniformLocation(p Program, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, v mgl32.Vec2)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	Uniform4fv(loc int32, v []mgl32.Vec4)
	UniformMat3(loc int32, m mgl32.Mat3)
	UniformMat4(loc int32, m mgl32.Mat4)
	UniformMat4v(loc int32, m []mgl32.Mat4)
}
