package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Frustum corner indices.
const (
	NearTopLeft = iota
	NearTopRight
	NearBottomRight
	NearBottomLeft
	FarTopLeft
	FarTopRight
	FarBottomRight
	FarBottomLeft
)

// Frustum plane indices.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneTop
	PlaneBottom
	PlaneNear
	PlaneFar
)

// Frustum is a perspective view volume described by its camera internals,
// its 8 corners and its 6 inward-facing planes.
type Frustum struct {
	FOV    float32 // vertical field of view in degrees
	Aspect float32
	ZNear  float32
	ZFar   float32

	Corners [8]mgl32.Vec3
	Planes  [6]Plane

	drawCorners [8]mgl32.Vec3
	frozen      bool
}

// SetCamInternals stores the projection parameters.
func (f *Frustum) SetCamInternals(fovDeg, aspect, zNear, zFar float32) {
	f.FOV = fovDeg
	f.Aspect = aspect
	f.ZNear = zNear
	f.ZFar = zFar
}

// CalcFrustum recomputes corners and planes for a camera at pos looking along dir.
func (f *Frustum) CalcFrustum(pos, dir, up mgl32.Vec3) {
	d := dir.Normalize()
	x := d.Cross(up)
	if x.Len() < 1e-6 {
		// looking straight along up, any perpendicular works
		x = d.Cross(mgl32.Vec3{0, 1, 0})
		if x.Len() < 1e-6 {
			x = d.Cross(mgl32.Vec3{1, 0, 0})
		}
	}
	x = x.Normalize()
	y := x.Cross(d)

	tang := math32.Tan(mgl32.DegToRad(f.FOV) * 0.5)
	nh := f.ZNear * tang
	nw := nh * f.Aspect
	fh := f.ZFar * tang
	fw := fh * f.Aspect

	nc := pos.Add(d.Mul(f.ZNear))
	fc := pos.Add(d.Mul(f.ZFar))

	f.Corners[NearTopLeft] = nc.Add(y.Mul(nh)).Sub(x.Mul(nw))
	f.Corners[NearTopRight] = nc.Add(y.Mul(nh)).Add(x.Mul(nw))
	f.Corners[NearBottomRight] = nc.Sub(y.Mul(nh)).Add(x.Mul(nw))
	f.Corners[NearBottomLeft] = nc.Sub(y.Mul(nh)).Sub(x.Mul(nw))
	f.Corners[FarTopLeft] = fc.Add(y.Mul(fh)).Sub(x.Mul(fw))
	f.Corners[FarTopRight] = fc.Add(y.Mul(fh)).Add(x.Mul(fw))
	f.Corners[FarBottomRight] = fc.Sub(y.Mul(fh)).Add(x.Mul(fw))
	f.Corners[FarBottomLeft] = fc.Sub(y.Mul(fh)).Sub(x.Mul(fw))

	inside := pos.Add(d.Mul((f.ZNear + f.ZFar) * 0.5))
	c := f.Corners
	f.Planes[PlaneLeft] = orientedPlane(c[NearTopLeft], c[NearBottomLeft], c[FarBottomLeft], inside)
	f.Planes[PlaneRight] = orientedPlane(c[NearTopRight], c[FarTopRight], c[FarBottomRight], inside)
	f.Planes[PlaneTop] = orientedPlane(c[NearTopLeft], c[FarTopLeft], c[FarTopRight], inside)
	f.Planes[PlaneBottom] = orientedPlane(c[NearBottomLeft], c[NearBottomRight], c[FarBottomRight], inside)
	f.Planes[PlaneNear] = Plane{Normal: d, D: -d.Dot(nc)}
	f.Planes[PlaneFar] = Plane{Normal: d.Mul(-1), D: d.Dot(fc)}
}

func orientedPlane(a, b, c, inside mgl32.Vec3) Plane {
	p := PlaneFromPoints(a, b, c)
	if p.Distance(inside) < 0 {
		p.Normal = p.Normal.Mul(-1)
		p.D = -p.D
	}
	return p
}

// Contains reports whether v lies inside all 6 planes, within eps.
func (f *Frustum) Contains(v mgl32.Vec3, eps float32) bool {
	for _, p := range f.Planes {
		if p.Distance(v) < -eps {
			return false
		}
	}
	return true
}

// SaveDrawingCorners freezes the corners returned by DrawingCorners.
func (f *Frustum) SaveDrawingCorners() {
	f.drawCorners = f.Corners
	f.frozen = true
}

// ResetCorners releases a previous SaveDrawingCorners.
func (f *Frustum) ResetCorners() {
	f.frozen = false
}

// DrawingCorners returns the frozen corners if any, the live ones otherwise.
func (f *Frustum) DrawingCorners() [8]mgl32.Vec3 {
	if f.frozen {
		return f.drawCorners
	}
	return f.Corners
}

// quads returns the 6 faces of the frustum as corner loops.
func (f *Frustum) quads() [6][4]mgl32.Vec3 {
	c := f.Corners
	return [6][4]mgl32.Vec3{
		{c[NearTopLeft], c[NearTopRight], c[NearBottomRight], c[NearBottomLeft]},
		{c[FarTopRight], c[FarTopLeft], c[FarBottomLeft], c[FarBottomRight]},
		{c[NearTopLeft], c[NearBottomLeft], c[FarBottomLeft], c[FarTopLeft]},
		{c[NearTopRight], c[FarTopRight], c[FarBottomRight], c[NearBottomRight]},
		{c[NearTopLeft], c[FarTopLeft], c[FarTopRight], c[NearTopRight]},
		{c[NearBottomLeft], c[NearBottomRight], c[FarBottomRight], c[FarBottomLeft]},
	}
}
