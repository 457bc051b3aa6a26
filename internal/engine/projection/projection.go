// Package projection provides the host projections the renderer draws
// through: a linear perspective projection and non-linear azimuthal ones
// (fisheye, stereographic) that require cubemap reprojection.
package projection

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind is a projection type.
type Kind int

const (
	KindPerspective Kind = iota
	KindFisheye
	KindStereographic
)

var kindNames = [...]string{
	KindPerspective:   "perspective",
	KindFisheye:       "fisheye",
	KindStereographic: "stereographic",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses the names produced by String.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return KindPerspective, fmt.Errorf("unknown projection %q", s)
}

// View is the observer setup shared by all projections, in the horizontal
// frame (+X south, +Y east, +Z zenith).
type View struct {
	Dir mgl64.Vec3
	Up  mgl64.Vec3
	// FOV is the vertical field of view in degrees.
	FOV float64
	// Viewport is x, y, width, height in pixels.
	Viewport [4]int
	// CenterOffset shifts the projection center, in fractions of the viewport.
	CenterOffset mgl64.Vec2
}

// Projector is the host projection boundary.
type Projector interface {
	Kind() Kind
	// FOV returns the vertical field of view in degrees.
	FOV() float32
	Viewport() [4]int
	ViewportCenterOffset() mgl32.Vec2
	// ModelView rotates horizontal-frame directions into eye space.
	ModelView() mgl32.Mat4
	// ProjectionMatrix maps window coordinates produced by Project to clip space.
	ProjectionMatrix() mgl32.Mat4
	// Project maps horizontal-frame directions to window coordinates. The
	// z component orders points by angular distance from the view axis.
	Project(in, out []mgl32.Vec3)
}

// New returns a projector of the given kind.
func New(kind Kind, v View) Projector {
	b := newBase(kind, v)
	switch kind {
	case KindFisheye:
		return &azimuthal{base: b, radius: func(theta float64) float64 { return theta }}
	case KindStereographic:
		return &azimuthal{base: b, radius: func(theta float64) float64 { return 2 * math.Tan(theta/2) }}
	}
	return &Perspective{base: b}
}

type base struct {
	kind Kind
	view View
	mv   mgl64.Mat4
}

func newBase(kind Kind, v View) base {
	if v.Dir.Len() == 0 {
		v.Dir = mgl64.Vec3{1, 0, 0}
	}
	if v.Up.Len() == 0 {
		v.Up = mgl64.Vec3{0, 0, 1}
	}
	if v.FOV <= 0 {
		v.FOV = 60
	}
	dir := v.Dir.Normalize()
	up := v.Up
	if math.Abs(dir.Dot(up.Normalize())) > 0.9999 {
		up = mgl64.Vec3{1, 0, 0}
	}
	return base{
		kind: kind,
		view: v,
		mv:   mgl64.LookAtV(mgl64.Vec3{}, dir, up),
	}
}

func (b *base) Kind() Kind       { return b.kind }
func (b *base) FOV() float32     { return float32(b.view.FOV) }
func (b *base) Viewport() [4]int { return b.view.Viewport }

func (b *base) ViewportCenterOffset() mgl32.Vec2 {
	return mgl32.Vec2{float32(b.view.CenterOffset[0]), float32(b.view.CenterOffset[1])}
}

func (b *base) ModelView() mgl32.Mat4 { return mat32(b.mv) }

// ProjectionMatrix maps window pixels to normalized device coordinates and
// passes z through.
func (b *base) ProjectionMatrix() mgl32.Mat4 {
	vp := b.view.Viewport
	return mgl32.Ortho(float32(vp[0]), float32(vp[0]+vp[2]), float32(vp[1]), float32(vp[1]+vp[3]), 1, -1)
}

// center returns the projection center in window pixels.
func (b *base) center() (x, y float64) {
	vp := b.view.Viewport
	x = float64(vp[0]) + float64(vp[2])*(0.5+b.view.CenterOffset[0])
	y = float64(vp[1]) + float64(vp[3])*(0.5+b.view.CenterOffset[1])
	return x, y
}

// Perspective is the linear projection drawn directly without a cubemap.
type Perspective struct {
	base
}

// Aspect returns the viewport aspect ratio.
func (p *Perspective) Aspect() float64 {
	vp := p.view.Viewport
	if vp[3] == 0 {
		return 1
	}
	return float64(vp[2]) / float64(vp[3])
}

// Project applies the perspective projection.
func (p *Perspective) Project(in, out []mgl32.Vec3) {
	f := 1 / math.Tan(mgl64.DegToRad(p.view.FOV)/2)
	cx, cy := p.center()
	halfH := float64(p.view.Viewport[3]) / 2
	for i, v := range in {
		e := mgl64.TransformCoordinate(vec64(v), p.mv)
		depth := -e.Z()
		if depth <= 1e-9 {
			depth = 1e-9
		}
		out[i] = mgl32.Vec3{
			float32(cx + e.X()/depth*f*halfH),
			float32(cy + e.Y()/depth*f*halfH),
			float32(1 - 2/(1+depth)),
		}
	}
}

type azimuthal struct {
	base
	// radius maps the angle from the view axis to a distance on the image
	// plane for unit focal length.
	radius func(theta float64) float64
}

// Project maps each direction by its angle from the view axis.
func (a *azimuthal) Project(in, out []mgl32.Vec3) {
	halfFOV := mgl64.DegToRad(a.view.FOV) / 2
	scale := float64(a.view.Viewport[3]) / 2 / a.radius(halfFOV)
	cx, cy := a.center()
	for i, v := range in {
		e := mgl64.TransformCoordinate(vec64(v), a.mv)
		l := e.Len()
		if l == 0 {
			out[i] = mgl32.Vec3{float32(cx), float32(cy), 1}
			continue
		}
		e = e.Mul(1 / l)
		theta := math.Acos(mgl64.Clamp(-e.Z(), -1, 1))
		r := a.radius(math.Min(theta, math.Pi*0.999)) * scale
		planar := math.Hypot(e.X(), e.Y())
		var dx, dy float64
		if planar > 1e-12 {
			dx, dy = e.X()/planar, e.Y()/planar
		}
		out[i] = mgl32.Vec3{
			float32(cx + dx*r),
			float32(cy + dy*r),
			float32(2*theta/math.Pi - 1),
		}
	}
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func mat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
