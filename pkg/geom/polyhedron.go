package geom

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	clipEpsilon = 1e-5
	weldEpsilon = 1e-4
)

// Polyhedron is a convex body stored as a list of planar polygons plus the
// flattened vertex list used for bounding computations.
type Polyhedron struct {
	polys [][]mgl32.Vec3
	verts []mgl32.Vec3
}

// Clear empties the body.
func (p *Polyhedron) Clear() {
	p.polys = p.polys[:0]
	p.verts = p.verts[:0]
}

// Add appends the 6 faces of a frustum.
func (p *Polyhedron) Add(f *Frustum) {
	for _, q := range f.quads() {
		poly := []mgl32.Vec3{q[0], q[1], q[2], q[3]}
		p.polys = append(p.polys, poly)
	}
	p.rebuildVerts()
}

// Intersect clips the body against the 6 half-spaces of box, closing every
// cut with a cap polygon so the result stays a closed convex body.
func (p *Polyhedron) Intersect(box AABB) {
	for _, plane := range box.Planes() {
		p.clip(plane)
		if len(p.polys) == 0 {
			break
		}
	}
	p.rebuildVerts()
}

func (p *Polyhedron) clip(plane Plane) {
	var seam []mgl32.Vec3
	out := p.polys[:0]
	for _, poly := range p.polys {
		clipped, onPlane := clipPolygon(poly, plane)
		seam = append(seam, onPlane...)
		if len(clipped) >= 3 {
			out = append(out, clipped)
		}
	}
	p.polys = out

	seam = uniqueVerts(seam)
	if len(seam) >= 3 && len(p.polys) > 0 {
		p.polys = append(p.polys, sortAroundCentroid(seam, plane.Normal))
	}
}

// clipPolygon keeps the part of poly on the inside of plane. It also returns
// every output vertex that lies on the plane.
func clipPolygon(poly []mgl32.Vec3, plane Plane) (out, onPlane []mgl32.Vec3) {
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		da := plane.Distance(a)
		db := plane.Distance(b)

		if da >= -clipEpsilon {
			out = append(out, a)
			if da <= clipEpsilon {
				onPlane = append(onPlane, a)
			}
		}
		if (da > clipEpsilon && db < -clipEpsilon) || (da < -clipEpsilon && db > clipEpsilon) {
			t := da / (da - db)
			x := a.Add(b.Sub(a).Mul(t))
			out = append(out, x)
			onPlane = append(onPlane, x)
		}
	}
	return out, onPlane
}

func sortAroundCentroid(pts []mgl32.Vec3, normal mgl32.Vec3) []mgl32.Vec3 {
	var c mgl32.Vec3
	for _, v := range pts {
		c = c.Add(v)
	}
	c = c.Mul(1 / float32(len(pts)))

	u := pts[0].Sub(c)
	if u.Len() < clipEpsilon {
		u = pts[1].Sub(c)
	}
	u = u.Normalize()
	v := normal.Cross(u)

	sort.Slice(pts, func(i, j int) bool {
		di := pts[i].Sub(c)
		dj := pts[j].Sub(c)
		return math32.Atan2(di.Dot(v), di.Dot(u)) < math32.Atan2(dj.Dot(v), dj.Dot(u))
	})
	return pts
}

// Extrude adds, for every vertex, the point where a ray along dir leaves box.
func (p *Polyhedron) Extrude(dir mgl32.Vec3, box AABB) {
	if len(p.verts) == 0 {
		return
	}
	count := len(p.verts)
	for i := 0; i < count; i++ {
		v := p.verts[i]
		if t, ok := box.ExitDistance(v, dir); ok && t > 0 {
			p.verts = append(p.verts, v.Add(dir.Mul(t)))
		}
	}
}

// MakeUniqueVerts removes duplicate vertices.
func (p *Polyhedron) MakeUniqueVerts() {
	p.verts = uniqueVerts(p.verts)
}

// Verts returns the vertex list. The slice is owned by the body.
func (p *Polyhedron) Verts() []mgl32.Vec3 {
	return p.verts
}

// VertCount returns the number of vertices. Zero means an empty body.
func (p *Polyhedron) VertCount() int {
	return len(p.verts)
}

// PolyCount returns the number of faces.
func (p *Polyhedron) PolyCount() int {
	return len(p.polys)
}

func (p *Polyhedron) rebuildVerts() {
	p.verts = p.verts[:0]
	for _, poly := range p.polys {
		p.verts = append(p.verts, poly...)
	}
}

func uniqueVerts(in []mgl32.Vec3) []mgl32.Vec3 {
	out := in[:0]
	for _, v := range in {
		dup := false
		for _, u := range out {
			if nearlyEqual(u, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func nearlyEqual(a, b mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		tol := weldEpsilon * math32.Max(1, math32.Max(math32.Abs(a[i]), math32.Abs(b[i])))
		if math32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
