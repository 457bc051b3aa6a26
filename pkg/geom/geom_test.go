package geom

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBox() AABB {
	return AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
}

func TestAABBCorners(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 2, 3}}
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, b.Corner(0))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Corner(7))
	assert.Equal(t, mgl32.Vec3{1, 0, 3}, b.Corner(5))

	for _, c := range b.Corners() {
		assert.True(t, b.Contains(c, 0))
		for _, p := range b.Planes() {
			assert.GreaterOrEqual(t, p.Distance(c), float32(-1e-6))
		}
	}
}

func TestAABBExpand(t *testing.T) {
	b := NewAABB()
	assert.False(t, b.Valid())
	b.Expand(mgl32.Vec3{1, -2, 3})
	// one point collapses the empty box onto it
	assert.Equal(t, b.Min, b.Max)
	assert.Equal(t, mgl32.Vec3{1, -2, 3}, b.Min)
	b.Expand(mgl32.Vec3{-1, 2, 0})
	require.True(t, b.Valid())
	assert.Equal(t, mgl32.Vec3{-1, -2, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Max)
	assert.Equal(t, mgl32.Vec3{0, 0, 1.5}, b.Center())
}

func TestAABBExitDistance(t *testing.T) {
	b := unitBox()
	d, ok := b.ExitDistance(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	require.True(t, ok)
	assert.InDelta(t, 1, d, 1e-6)

	d, ok = b.ExitDistance(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{1, 1, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.5, d, 1e-6)

	_, ok = b.ExitDistance(mgl32.Vec3{}, mgl32.Vec3{})
	assert.False(t, ok)
}

func TestFrustumCornersInsidePlanes(t *testing.T) {
	var f Frustum
	f.SetCamInternals(60, 1.5, 0.5, 20)
	f.CalcFrustum(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1})

	for i, c := range f.Corners {
		assert.True(t, f.Contains(c, 1e-3), "corner %d", i)
	}
	assert.True(t, f.Contains(mgl32.Vec3{1, 10, 3}, 0))
	assert.False(t, f.Contains(mgl32.Vec3{1, 0, 3}, 0), "behind the camera")
	assert.False(t, f.Contains(mgl32.Vec3{1, 30, 3}, 0), "past the far plane")

	assert.InDelta(t, 0.5, f.Planes[PlaneNear].Distance(mgl32.Vec3{1, 3, 3}), 1e-5)
}

func TestFrustumLookingAlongUp(t *testing.T) {
	var f Frustum
	f.SetCamInternals(90, 1, 1, 10)
	f.CalcFrustum(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 0, 1})
	for _, c := range f.Corners {
		assert.False(t, c.ApproxEqual(mgl32.Vec3{}))
		assert.True(t, f.Contains(c, 1e-3))
	}
}

func TestFrustumDrawingCornersFreeze(t *testing.T) {
	var f Frustum
	f.SetCamInternals(60, 1, 1, 10)
	f.CalcFrustum(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})
	f.SaveDrawingCorners()
	saved := f.Corners

	f.CalcFrustum(mgl32.Vec3{5, 5, 5}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1})
	assert.Equal(t, saved, f.DrawingCorners())

	f.ResetCorners()
	assert.Equal(t, f.Corners, f.DrawingCorners())
}

func TestComputeFrustumSplits(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		weight float32
	}{
		{"single", 1, 0.75},
		{"four log-linear", 4, 0.75},
		{"four linear", 4, 0},
		{"four logarithmic", 4, 1},
		{"auto weight", 4, -1},
	}

	pos := mgl32.Vec3{0, 0, 1.7}
	dir := mgl32.Vec3{1, 0, 0}
	up := mgl32.Vec3{0, 0, 1}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frusta := make([]Frustum, tt.n)
			for i := range frusta {
				frusta[i].SetCamInternals(60, 1.6, 0.3, 500)
			}
			ComputeFrustumSplits(frusta, pos, dir, up, tt.weight)

			assert.Equal(t, float32(0.3), frusta[0].ZNear)
			assert.Equal(t, float32(500), frusta[tt.n-1].ZFar)
			for i := 0; i < tt.n-1; i++ {
				assert.InDelta(t, frusta[i+1].ZNear*SplitOverlap, frusta[i].ZFar, 1e-4)
				assert.Less(t, frusta[i].ZNear, frusta[i+1].ZNear)
			}
		})
	}
}

func TestComputeFrustumSplitsAutoWeight(t *testing.T) {
	run := func(w float32) []Frustum {
		frusta := make([]Frustum, 4)
		for i := range frusta {
			frusta[i].SetCamInternals(60, 1, 1, 1000)
		}
		ComputeFrustumSplits(frusta, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, w)
		return frusta
	}
	auto := run(2)
	def := run(DefaultSplitWeight)
	for i := range auto {
		assert.Equal(t, def[i].ZNear, auto[i].ZNear)
		assert.Equal(t, def[i].ZFar, auto[i].ZFar)
	}
}

func TestPolyhedronFrustumOutsideBox(t *testing.T) {
	var f Frustum
	f.SetCamInternals(45, 1, 1, 5)
	f.CalcFrustum(mgl32.Vec3{10, 10, 10}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})

	var p Polyhedron
	p.Add(&f)
	require.Equal(t, 24, p.VertCount())

	p.Intersect(unitBox())
	assert.Equal(t, 0, p.VertCount())

	p.Extrude(mgl32.Vec3{0, 0, 1}, unitBox())
	assert.Equal(t, 0, p.VertCount())
}

func TestPolyhedronBoxInsideFrustum(t *testing.T) {
	var f Frustum
	f.SetCamInternals(90, 1, 0.1, 100)
	f.CalcFrustum(mgl32.Vec3{-10, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})

	box := unitBox()
	var p Polyhedron
	p.Add(&f)
	p.Intersect(box)
	p.MakeUniqueVerts()

	require.Equal(t, 8, p.VertCount())
	for _, c := range box.Corners() {
		found := false
		for _, v := range p.Verts() {
			if v.ApproxEqualThreshold(c, 1e-4) {
				found = true
				break
			}
		}
		assert.True(t, found, "corner %v", c)
	}
}

func TestPolyhedronPartialIntersection(t *testing.T) {
	var f Frustum
	f.SetCamInternals(60, 1, 0.5, 3)
	f.CalcFrustum(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0.2, 0.1}, mgl32.Vec3{0, 0, 1})

	box := unitBox()
	var p Polyhedron
	p.Add(&f)
	p.Intersect(box)
	p.MakeUniqueVerts()

	require.Greater(t, p.VertCount(), 3)
	for _, v := range p.Verts() {
		assert.True(t, box.Contains(v, 1e-3), "%v outside box", v)
		assert.True(t, f.Contains(v, 1e-3), "%v outside frustum", v)
	}
}

func TestPolyhedronExtrude(t *testing.T) {
	var f Frustum
	f.SetCamInternals(60, 1, 0.1, 0.5)
	f.CalcFrustum(mgl32.Vec3{0, 0, -0.5}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1})

	box := unitBox()
	var p Polyhedron
	p.Add(&f)
	p.Intersect(box)
	p.MakeUniqueVerts()
	before := p.VertCount()
	require.Greater(t, before, 0)

	p.Extrude(mgl32.Vec3{0, 0, 1}, box)
	require.Equal(t, 2*before, p.VertCount())
	for _, v := range p.Verts()[before:] {
		assert.InDelta(t, 1, v.Z(), 1e-5)
	}
}

func TestComputeOrthoProjVals(t *testing.T) {
	extent, near, far := ComputeOrthoProjVals(mgl32.Vec3{0, 0, 1}, unitBox())
	assert.InDelta(t, 1, extent, 1e-5)
	assert.InDelta(t, 0, near, 1e-5)
	assert.InDelta(t, 2, far, 1e-5)
}

func TestComputeCropMatrixTight(t *testing.T) {
	tests := []struct {
		name     string
		lightDir mgl32.Vec3
		box      AABB
	}{
		{"overhead", mgl32.Vec3{0.2, 0.1, 1}.Normalize(), unitBox()},
		{"low sun", mgl32.Vec3{1, 0.3, 0.8}.Normalize(), unitBox()},
		{"flat box", mgl32.Vec3{-0.3, 0.4, 1}.Normalize(), AABB{Min: mgl32.Vec3{-3, -2, 0}, Max: mgl32.Vec3{3, 2, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extent, near, far := ComputeOrthoProjVals(tt.lightDir, tt.box)
			lightProj := mgl32.Ortho(-extent, extent, -extent, extent, near, far)
			lightMV := LightView(tt.lightDir)

			corners := tt.box.Corners()
			crop := ComputeCropMatrix(corners[:], lightProj, lightMV, 1024, ZExtendFar)

			m := crop.Projection.Mul4(lightMV)
			minP := mgl32.Vec3{10, 10, 10}
			maxP := mgl32.Vec3{-10, -10, -10}
			for _, c := range corners {
				p := m.Mul4x1(c.Vec4(1)).Vec3()
				for k := 0; k < 3; k++ {
					if p[k] < minP[k] {
						minP[k] = p[k]
					}
					if p[k] > maxP[k] {
						maxP[k] = p[k]
					}
				}
			}

			const slack = 0.01
			for k := 0; k < 2; k++ {
				assert.GreaterOrEqual(t, minP[k], float32(-1-slack))
				assert.LessOrEqual(t, maxP[k], float32(1+slack))
				assert.Less(t, minP[k], float32(-0.9), "axis %d min not touching", k)
				assert.Greater(t, maxP[k], float32(0.9), "axis %d max not touching", k)
			}
			assert.InDelta(t, 0, minP[2], 1e-4)
			assert.InDelta(t, 1, maxP[2], 1e-4)

			assert.Greater(t, crop.OrthoScale.X(), float32(0))
			assert.Greater(t, crop.OrthoScale.Y(), float32(0))
		})
	}
}

func TestComputeCropMatrixFarAtOne(t *testing.T) {
	dir := mgl32.Vec3{0, 0.5, 1}.Normalize()
	extent, near, far := ComputeOrthoProjVals(dir, unitBox())
	lightProj := mgl32.Ortho(-extent, extent, -extent, extent, near, far)
	lightMV := LightView(dir)

	// a thin slab near the top of the box
	verts := []mgl32.Vec3{{-1, -1, 0.9}, {1, -1, 0.9}, {1, 1, 0.9}, {-1, 1, 0.9}, {-1, -1, 1}, {1, 1, 1}}
	crop := ComputeCropMatrix(verts, lightProj, lightMV, 2048, ZFarAtOne)
	assert.Equal(t, float32(1), crop.OrthoScale.W())

	ext := ComputeCropMatrix(verts, lightProj, lightMV, 2048, ZExtendFar)
	assert.Less(t, ext.OrthoScale.W(), float32(1))
}

func TestLookupMapsIntoUnitCube(t *testing.T) {
	dir := mgl32.Vec3{0.4, -0.2, 1}.Normalize()
	extent, near, far := ComputeOrthoProjVals(dir, unitBox())
	lightProj := mgl32.Ortho(-extent, extent, -extent, extent, near, far)
	corners := unitBox().Corners()
	crop := ComputeCropMatrix(corners[:], lightProj, LightView(dir), 1024, ZExtendFar)

	for _, c := range corners {
		p := crop.Lookup.Mul4x1(c.Vec4(1)).Vec3()
		for k := 0; k < 2; k++ {
			assert.GreaterOrEqual(t, p[k], float32(-0.01))
			assert.LessOrEqual(t, p[k], float32(1.01))
		}
	}
}

func TestLightUpVertical(t *testing.T) {
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, LightUp(mgl32.Vec3{0, 0, 1}))
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, LightUp(mgl32.Vec3{1, 0, 1}))
	m := LightView(mgl32.Vec3{0, 0, 1})
	for _, v := range m {
		assert.False(t, math32.IsNaN(v), "NaN in light view")
	}
}
