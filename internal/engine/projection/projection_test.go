package projection

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func southView(fov float64) View {
	return View{
		Dir:      mgl64.Vec3{1, 0, 0},
		Up:       mgl64.Vec3{0, 0, 1},
		FOV:      fov,
		Viewport: [4]int{0, 0, 800, 600},
	}
}

func TestKindNames(t *testing.T) {
	for k := KindPerspective; k <= KindStereographic; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("mercator")
	assert.Error(t, err)
}

func TestNewSelectsKind(t *testing.T) {
	assert.IsType(t, &Perspective{}, New(KindPerspective, southView(60)))
	assert.Equal(t, KindFisheye, New(KindFisheye, southView(180)).Kind())
	assert.Equal(t, KindStereographic, New(KindStereographic, southView(180)).Kind())
}

func TestModelViewLooksAlongDir(t *testing.T) {
	p := New(KindPerspective, southView(60))
	e := p.ModelView().Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, -1, e.Z(), 1e-6)

	// the zenith is up on screen
	up := p.ModelView().Mul4x1(mgl32.Vec4{0, 0, 1, 0})
	assert.InDelta(t, 1, up.Y(), 1e-6)
}

func TestPerspectiveProject(t *testing.T) {
	p := New(KindPerspective, southView(90)).(*Perspective)
	assert.InDelta(t, 800.0/600.0, p.Aspect(), 1e-12)

	in := []mgl32.Vec3{
		{1, 0, 0}, // view center
		{1, 0, 1}, // top edge at 45 degrees
		{2, 0, 0}, // farther along the axis
	}
	out := make([]mgl32.Vec3, len(in))
	p.Project(in, out)

	assert.InDelta(t, 400, out[0].X(), 1e-3)
	assert.InDelta(t, 300, out[0].Y(), 1e-3)
	assert.InDelta(t, 600, out[1].Y(), 1e-3)
	assert.Greater(t, out[2].Z(), out[0].Z())
}

func TestPerspectiveCenterOffset(t *testing.T) {
	v := southView(60)
	v.CenterOffset = mgl64.Vec2{0.25, 0}
	p := New(KindPerspective, v)

	out := make([]mgl32.Vec3, 1)
	p.Project([]mgl32.Vec3{{1, 0, 0}}, out)
	assert.InDelta(t, 600, out[0].X(), 1e-3)
	assert.Equal(t, mgl32.Vec2{0.25, 0}, p.ViewportCenterOffset())
}

func TestFisheyeProject(t *testing.T) {
	p := New(KindFisheye, southView(180))

	in := []mgl32.Vec3{
		{1, 0, 0},  // center
		{0, 0, 1},  // zenith, 90 degrees off axis
		{0, 1, 0},  // east
		{-1, 0, 0}, // behind
	}
	out := make([]mgl32.Vec3, len(in))
	p.Project(in, out)

	assert.InDelta(t, 400, out[0].X(), 1e-3)
	assert.InDelta(t, 300, out[0].Y(), 1e-3)
	assert.InDelta(t, -1, out[0].Z(), 1e-6)

	// equidistant: 90 degrees lands on the top edge of a 180 degree view
	assert.InDelta(t, 400, out[1].X(), 1e-3)
	assert.InDelta(t, 600, out[1].Y(), 1e-3)
	assert.InDelta(t, 0, out[1].Z(), 1e-6)

	// east is to the left when facing south
	assert.InDelta(t, 100, out[2].X(), 1e-3)

	assert.InDelta(t, 1, out[3].Z(), 1e-6)
}

func TestStereographicCompressesCenter(t *testing.T) {
	fish := New(KindFisheye, southView(180))
	stereo := New(KindStereographic, southView(180))

	dir := []mgl32.Vec3{mgl32.Vec3{1, 0, 0.3}.Normalize()}
	a := make([]mgl32.Vec3, 1)
	b := make([]mgl32.Vec3, 1)
	fish.Project(dir, a)
	stereo.Project(dir, b)

	// both fill the same edge, stereographic keeps the center smaller
	assert.Less(t, b[0].Y()-300, a[0].Y()-300)
}

func TestProjectionMatrixMapsViewport(t *testing.T) {
	p := New(KindFisheye, southView(180))
	m := p.ProjectionMatrix()

	lo := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	hi := m.Mul4x1(mgl32.Vec4{800, 600, 1, 1})
	assert.InDelta(t, -1, lo.X(), 1e-6)
	assert.InDelta(t, -1, lo.Y(), 1e-6)
	assert.InDelta(t, -1, lo.Z(), 1e-6)
	assert.InDelta(t, 1, hi.X(), 1e-6)
	assert.InDelta(t, 1, hi.Y(), 1e-6)
	assert.InDelta(t, 1, hi.Z(), 1e-6)
}

func TestDefaults(t *testing.T) {
	p := New(KindPerspective, View{Viewport: [4]int{0, 0, 10, 10}})
	assert.Equal(t, float32(60), p.FOV())
	e := p.ModelView().Mul4x1(mgl32.Vec4{1, 0, 0, 0})
	assert.InDelta(t, -1, e.Z(), 1e-6)

	// looking straight up still yields a valid basis
	v := southView(90)
	v.Dir = mgl64.Vec3{0, 0, 1}
	up := New(KindFisheye, v)
	out := make([]mgl32.Vec3, 1)
	up.Project([]mgl32.Vec3{{0, 0, 1}}, out)
	assert.InDelta(t, 400, out[0].X(), 1e-3)
}
