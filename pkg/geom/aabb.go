// Package geom provides the geometry helpers used to fit shadow maps:
// bounding boxes, view frusta, convex polyhedra and light-space crop matrices.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CornerCount is the number of corners of an AABB.
const CornerCount = 8

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB returns an empty (inverted) box ready to be expanded.
func NewAABB() AABB {
	inf := float32(math32.MaxFloat32)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Expand grows the box to contain p.
func (b *AABB) Expand(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Valid reports whether Min <= Max on every axis.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Center returns the center point of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Corner returns corner i. Bit 0 selects max X, bit 1 max Y, bit 2 max Z.
func (b AABB) Corner(i int) mgl32.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c[0] = b.Max[0]
	}
	if i&2 != 0 {
		c[1] = b.Max[1]
	}
	if i&4 != 0 {
		c[2] = b.Max[2]
	}
	return c
}

// Corners returns all 8 corners.
func (b AABB) Corners() [CornerCount]mgl32.Vec3 {
	var out [CornerCount]mgl32.Vec3
	for i := range out {
		out[i] = b.Corner(i)
	}
	return out
}

// Contains reports whether p lies inside the box, within eps.
func (b AABB) Contains(p mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i]-eps || p[i] > b.Max[i]+eps {
			return false
		}
	}
	return true
}

// Planes returns the 6 face planes of the box with normals pointing inward.
func (b AABB) Planes() [6]Plane {
	return [6]Plane{
		{Normal: mgl32.Vec3{1, 0, 0}, D: -b.Min[0]},
		{Normal: mgl32.Vec3{-1, 0, 0}, D: b.Max[0]},
		{Normal: mgl32.Vec3{0, 1, 0}, D: -b.Min[1]},
		{Normal: mgl32.Vec3{0, -1, 0}, D: b.Max[1]},
		{Normal: mgl32.Vec3{0, 0, 1}, D: -b.Min[2]},
		{Normal: mgl32.Vec3{0, 0, -1}, D: b.Max[2]},
	}
}

// ExitDistance returns the largest t >= 0 such that p + t*dir is still inside
// the box. p is expected to be inside. ok is false for a zero direction.
func (b AABB) ExitDistance(p, dir mgl32.Vec3) (t float32, ok bool) {
	t = math32.MaxFloat32
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			t = math32.Min(t, (b.Max[i]-p[i])/dir[i])
		case dir[i] < 0:
			t = math32.Min(t, (b.Min[i]-p[i])/dir[i])
		}
	}
	if t == math32.MaxFloat32 {
		return 0, false
	}
	return math32.Max(t, 0), true
}

// Plane is n·p + D = 0. Points with n·p + D >= 0 are on the inside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// PlaneFromPoints builds a plane through a, b, c with the normal (b-a)x(c-a).
func PlaneFromPoints(a, b, c mgl32.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Distance returns the signed distance of p to the plane.
func (p Plane) Distance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}
