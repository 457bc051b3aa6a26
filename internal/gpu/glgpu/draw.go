package glgpu

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

var capabilities = [gpu.CapabilityCount]uint32{
	gpu.DepthTest:         gl.DEPTH_TEST,
	gpu.CullFace:          gl.CULL_FACE,
	gpu.Blend:             gl.BLEND,
	gpu.PolygonOffsetFill: gl.POLYGON_OFFSET_FILL,
}

var blendFactors = map[gpu.BlendFactor]uint32{
	gpu.BlendZero:             gl.ZERO,
	gpu.BlendOne:              gl.ONE,
	gpu.BlendSrcAlpha:         gl.SRC_ALPHA,
	gpu.BlendOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

type bufferInfo struct {
	target uint32
	usage  uint32
}

// NewBuffer creates an empty buffer object.
func (d *Device) NewBuffer(target gpu.BufferTarget, usage gpu.BufferUsage) gpu.Buffer {
	var id uint32
	gl.GenBuffers(1, &id)
	info := bufferInfo{target: bufferTarget(target), usage: gl.STATIC_DRAW}
	if usage == gpu.StreamDraw {
		info.usage = gl.STREAM_DRAW
	}
	d.buffers[gpu.Buffer(id)] = info
	return gpu.Buffer(id)
}

// DeleteBuffers releases buffer objects. Zero handles are ignored.
func (d *Device) DeleteBuffers(buf ...gpu.Buffer) {
	for _, b := range buf {
		if b != 0 {
			id := uint32(b)
			gl.DeleteBuffers(1, &id)
			delete(d.buffers, b)
		}
	}
}

func (d *Device) upload(buf gpu.Buffer, size int, data any) {
	info := d.buffers[buf]
	gl.BindBuffer(info.target, uint32(buf))
	if size == 0 {
		gl.BufferData(info.target, 0, nil, info.usage)
		return
	}
	gl.BufferData(info.target, size, gl.Ptr(data), info.usage)
}

// UploadFloats replaces the buffer contents.
func (d *Device) UploadFloats(buf gpu.Buffer, data []float32) {
	d.upload(buf, len(data)*4, data)
}

// UploadIndices16 replaces the buffer contents.
func (d *Device) UploadIndices16(buf gpu.Buffer, data []uint16) {
	d.upload(buf, len(data)*2, data)
}

// UploadIndices32 replaces the buffer contents.
func (d *Device) UploadIndices32(buf gpu.Buffer, data []uint32) {
	d.upload(buf, len(data)*4, data)
}

// SetVertexAttrib points a float attribute at buf and enables it.
func (d *Device) SetVertexAttrib(loc int32, buf gpu.Buffer, size, stride, offset int) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
	gl.VertexAttribPointer(uint32(loc), int32(size), gl.FLOAT, false, int32(stride), gl.PtrOffset(offset))
	gl.EnableVertexAttribArray(uint32(loc))
}

// DisableVertexAttrib disables an attribute array.
func (d *Device) DisableVertexAttrib(loc int32) {
	gl.DisableVertexAttribArray(uint32(loc))
}

// BindIndexBuffer binds the element array of the vertex array object.
func (d *Device) BindIndexBuffer(buf gpu.Buffer) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buf))
}

// DrawElements draws count indices starting at byte offset.
func (d *Device) DrawElements(mode gpu.Primitive, count int, typ gpu.IndexType, offset int) {
	glMode := uint32(gl.TRIANGLES)
	if mode == gpu.Lines {
		glMode = gl.LINES
	}
	glType := uint32(gl.UNSIGNED_SHORT)
	if typ == gpu.Uint32 {
		glType = gl.UNSIGNED_INT
	}
	gl.DrawElements(glMode, int32(count), glType, gl.PtrOffset(offset))
}

func (d *Device) Enable(c gpu.Capability)  { gl.Enable(capabilities[c]) }
func (d *Device) Disable(c gpu.Capability) { gl.Disable(capabilities[c]) }

// CullFace selects the culled faces.
func (d *Device) CullFace(f gpu.Face) {
	if f == gpu.FaceFront {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (d *Device) DepthMask(on bool)                   { gl.DepthMask(on) }
func (d *Device) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }

func (d *Device) BlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(blendFactors[src], blendFactors[dst])
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gpu.BlendFactor) {
	gl.BlendFuncSeparate(blendFactors[srcRGB], blendFactors[dstRGB], blendFactors[srcAlpha], blendFactors[dstAlpha])
}

func (d *Device) Viewport(x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

// Clear clears the selected buffers. Color is cleared to transparent black.
func (d *Device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColor != 0 {
		gl.ClearColor(0, 0, 0, 0)
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}
