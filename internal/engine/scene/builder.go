package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// DefaultEyeLevel is the observer height above the ground.
const DefaultEyeLevel = 1.65

// Builder assembles a Mesh from procedural shapes. Each shape becomes its
// own object with a single material group.
type Builder struct {
	mesh *Mesh
	// current object index, -1 when the next shape starts a new object
	current int
}

// NewBuilder starts an empty scene with default Info.
func NewBuilder() *Builder {
	return &Builder{
		mesh: &Mesh{
			info:     DefaultInfo(),
			aabb:     geom.NewAABB(),
			viewDir:  mgl64.Vec3{1, 0, 0},
			eyeLevel: DefaultEyeLevel,
		},
		current: -1,
	}
}

// Info sets the scene parameters.
func (b *Builder) Info(info Info) *Builder {
	b.mesh.info = info.Normalize()
	return b
}

// Ground sets the ground height and eye level used by MoveEye and EyeHeight.
func (b *Builder) Ground(z, eyeLevel float64) *Builder {
	b.mesh.groundZ = z
	b.mesh.eyeLevel = eyeLevel
	return b
}

// GridOffset sets the translation from scene to grid coordinates.
func (b *Builder) GridOffset(off mgl64.Vec3) *Builder {
	b.mesh.gridOffset = off
	return b
}

// Eye places the observer.
func (b *Builder) Eye(pos, dir mgl64.Vec3) *Builder {
	b.mesh.eye = pos
	b.mesh.SetViewDirection(dir)
	return b
}

// Material registers m and returns its index.
func (b *Builder) Material(m *Material) int {
	m.CalcTraits()
	b.mesh.materials = append(b.mesh.materials, m)
	return len(b.mesh.materials) - 1
}

// Object starts a named object. Following shapes become groups of it until
// EndObject is called.
func (b *Builder) Object(name string) *Builder {
	b.mesh.objects = append(b.mesh.objects, Object{Name: name})
	b.current = len(b.mesh.objects) - 1
	return b
}

// EndObject makes every following shape its own object again.
func (b *Builder) EndObject() *Builder {
	b.current = -1
	return b
}

// Quad adds a planar quad with corners in counter-clockwise order seen
// from the front side.
func (b *Builder) Quad(material int, p0, p1, p2, p3 mgl32.Vec3) *Builder {
	e1 := p1.Sub(p0)
	e2 := p3.Sub(p0)
	n := e1.Cross(e2).Normalize()
	t := e1.Normalize()
	bt := n.Cross(t)

	base := uint32(len(b.mesh.vertices))
	uv := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for i, p := range [4]mgl32.Vec3{p0, p1, p2, p3} {
		b.mesh.vertices = append(b.mesh.vertices, Vertex{
			Position: p, TexCoord: uv[i], Normal: n, Tangent: t, Bitangent: bt,
		})
		b.mesh.aabb.Expand(p)
	}
	b.addGroup(material, []uint32{base, base + 1, base + 2, base, base + 2, base + 3}, (p0.Add(p1).Add(p2).Add(p3)).Mul(0.25))
	return b
}

// Box adds an axis-aligned box with outward-facing sides.
func (b *Builder) Box(material int, box geom.AABB) *Builder {
	c := box.Corners()
	// corner bits: 1 = max X, 2 = max Y, 4 = max Z
	faces := [6][4]int{
		{0, 4, 6, 2}, // -X
		{1, 3, 7, 5}, // +X
		{0, 1, 5, 4}, // -Y
		{2, 6, 7, 3}, // +Y
		{0, 2, 3, 1}, // -Z
		{4, 5, 7, 6}, // +Z
	}
	start := len(b.mesh.indices)
	group := b.current
	if group < 0 {
		b.Object("box")
	}
	for _, f := range faces {
		b.Quad(material, c[f[0]], c[f[1]], c[f[2]], c[f[3]])
	}
	b.mergeGroupsFrom(start, material, box.Center())
	if group < 0 {
		b.EndObject()
	}
	return b
}

// GroundPlane adds a square ground of the given half size at height z,
// facing up.
func (b *Builder) GroundPlane(material int, halfSize, z float32) *Builder {
	return b.Quad(material,
		mgl32.Vec3{-halfSize, -halfSize, z},
		mgl32.Vec3{halfSize, -halfSize, z},
		mgl32.Vec3{halfSize, halfSize, z},
		mgl32.Vec3{-halfSize, halfSize, z})
}

func (b *Builder) addGroup(material int, idx []uint32, centroid mgl32.Vec3) {
	g := MaterialGroup{
		StartIndex:    len(b.mesh.indices),
		IndexCount:    len(idx),
		MaterialIndex: material,
		Centroid:      centroid,
	}
	b.mesh.indices = append(b.mesh.indices, idx...)
	if b.current < 0 {
		b.mesh.objects = append(b.mesh.objects, Object{Name: "quad", Groups: []MaterialGroup{g}})
		return
	}
	obj := &b.mesh.objects[b.current]
	obj.Groups = append(obj.Groups, g)
}

// mergeGroupsFrom collapses the groups of the current object that start at
// or after index start into one group.
func (b *Builder) mergeGroupsFrom(start, material int, centroid mgl32.Vec3) {
	obj := &b.mesh.objects[b.current]
	keep := obj.Groups[:0]
	for _, g := range obj.Groups {
		if g.StartIndex < start {
			keep = append(keep, g)
		}
	}
	obj.Groups = append(keep, MaterialGroup{
		StartIndex:    start,
		IndexCount:    len(b.mesh.indices) - start,
		MaterialIndex: material,
		Centroid:      centroid,
	})
}

// Build returns the mesh bound to dev. dev may be nil for CPU-only use.
func (b *Builder) Build(dev gpu.Device) *Mesh {
	m := b.mesh
	m.dev = dev
	if !m.aabb.Valid() {
		m.aabb = geom.AABB{}
	}
	return m
}
