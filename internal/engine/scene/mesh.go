package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// Vertex layout: position, texcoord, normal, tangent, bitangent.
const (
	vertexFloats = 3 + 2 + 3 + 3 + 3
	vertexStride = vertexFloats * 4
)

// ErrNoDevice is returned by GLLoad on a mesh built without a device.
var ErrNoDevice = errors.New("scene: mesh has no graphics device")

// Vertex is one interleaved mesh vertex.
type Vertex struct {
	Position  mgl32.Vec3
	TexCoord  mgl32.Vec2
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Mesh is an in-memory Scene.
type Mesh struct {
	dev gpu.Device

	vertices  []Vertex
	indices   []uint32
	objects   []Object
	materials []*Material
	aabb      geom.AABB
	info      Info

	eye     mgl64.Vec3
	viewDir mgl64.Vec3
	// gridOffset maps scene coordinates to grid coordinates.
	gridOffset mgl64.Vec3
	eyeLevel   float64
	groundZ    float64

	vbo, ibo gpu.Buffer
	loaded   bool
}

// IsGLReady reports whether GLLoad succeeded.
func (m *Mesh) IsGLReady() bool { return m.loaded }

// GLLoad uploads vertices and indices.
func (m *Mesh) GLLoad() error {
	if m.dev == nil {
		return ErrNoDevice
	}
	if len(m.indices) == 0 {
		return fmt.Errorf("scene: mesh %q has no triangles", m.info.GridName)
	}
	m.GLUnload()

	data := make([]float32, 0, len(m.vertices)*vertexFloats)
	for _, v := range m.vertices {
		data = append(data, v.Position[:]...)
		data = append(data, v.TexCoord[:]...)
		data = append(data, v.Normal[:]...)
		data = append(data, v.Tangent[:]...)
		data = append(data, v.Bitangent[:]...)
	}
	m.vbo = m.dev.NewBuffer(gpu.ArrayBuffer, gpu.StaticDraw)
	m.dev.UploadFloats(m.vbo, data)
	m.ibo = m.dev.NewBuffer(gpu.ElementArrayBuffer, gpu.StaticDraw)
	m.dev.UploadIndices32(m.ibo, m.indices)
	m.loaded = true
	return nil
}

// GLUnload frees the uploaded buffers. Safe to call repeatedly.
func (m *Mesh) GLUnload() {
	if m.vbo != 0 {
		m.dev.DeleteBuffers(m.vbo, m.ibo)
		m.vbo, m.ibo = 0, 0
	}
	m.loaded = false
}

// GLBind sets up the vertex attributes.
func (m *Mesh) GLBind() {
	m.dev.SetVertexAttrib(gpu.AttribPosition, m.vbo, 3, vertexStride, 0)
	m.dev.SetVertexAttrib(gpu.AttribTexCoord, m.vbo, 2, vertexStride, 3*4)
	m.dev.SetVertexAttrib(gpu.AttribNormal, m.vbo, 3, vertexStride, 5*4)
	m.dev.SetVertexAttrib(gpu.AttribTangent, m.vbo, 3, vertexStride, 8*4)
	m.dev.SetVertexAttrib(gpu.AttribBitangent, m.vbo, 3, vertexStride, 11*4)
	m.dev.BindIndexBuffer(m.ibo)
}

// GLRelease disables the vertex attributes.
func (m *Mesh) GLRelease() {
	for _, loc := range []int32{gpu.AttribPosition, gpu.AttribTexCoord, gpu.AttribNormal, gpu.AttribTangent, gpu.AttribBitangent} {
		m.dev.DisableVertexAttrib(loc)
	}
}

// GLDraw draws a range of the index buffer as triangles.
func (m *Mesh) GLDraw(start, count int) {
	m.dev.DrawElements(gpu.Triangles, count, gpu.Uint32, start*gpu.Uint32.Size())
}

func (m *Mesh) Objects() []Object { return m.objects }
func (m *Mesh) AABB() geom.AABB   { return m.aabb }
func (m *Mesh) Info() Info        { return m.info }

// Material returns the material at index, or nil when out of range.
func (m *Mesh) Material(index int) *Material {
	if index < 0 || index >= len(m.materials) {
		return nil
	}
	return m.materials[index]
}

// Materials returns all materials in index order.
func (m *Mesh) Materials() []*Material { return m.materials }

// TriangleCount returns the number of triangles over all groups.
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

func (m *Mesh) EyePosition() mgl64.Vec3   { return m.eye }
func (m *Mesh) ViewDirection() mgl64.Vec3 { return m.viewDir }
func (m *Mesh) EyeHeight() float64        { return m.eye.Z() - m.groundZ }

// GridPosition returns the eye position in grid coordinates.
func (m *Mesh) GridPosition() mgl64.Vec3 { return m.eye.Add(m.gridOffset) }

// SetEyePosition moves the observer.
func (m *Mesh) SetEyePosition(p mgl64.Vec3) { m.eye = p }

// SetViewDirection turns the observer. Zero vectors are ignored.
func (m *Mesh) SetViewDirection(d mgl64.Vec3) {
	if d.Len() == 0 {
		return
	}
	m.viewDir = d.Normalize()
}

// MoveEye translates the observer, keeping it at eye level above the ground.
func (m *Mesh) MoveEye(delta mgl64.Vec3) {
	m.eye = m.eye.Add(delta)
	if floor := m.groundZ + m.eyeLevel; m.eye.Z() < floor {
		m.eye[2] = floor
	}
}

var _ Scene = (*Mesh)(nil)
