package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cropQuantizer is the step that crop scales are rounded to, which keeps the
// texel grid stable while the camera moves.
const cropQuantizer = 64

// ZMode selects how the far end of the crop range is chosen.
type ZMode int

const (
	// ZExtendFar pushes the far plane 5% past the focus body, clamped to 1.
	ZExtendFar ZMode = iota
	// ZFarAtOne keeps the light's own far plane.
	ZFarAtOne
)

var biasMatrix = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, 0.5, 0, 0,
	0, 0, 0.5, 0,
	0.5, 0.5, 0.5, 1,
}

// Crop is the light projection fitted to one cascade.
type Crop struct {
	// Projection is crop * lightProj.
	Projection mgl32.Mat4
	// Lookup takes world space to shadow texture space: bias * Projection * lightMV.
	Lookup mgl32.Mat4
	// OrthoScale holds (scaleX, scaleY, minZ, maxZ).
	OrthoScale mgl32.Vec4
}

// LightUp returns the up vector used to orient light space for dir.
func LightUp(dir mgl32.Vec3) mgl32.Vec3 {
	up := mgl32.Vec3{0, 0, 1}
	if dir.Normalize().Cross(up).Len() < 1e-4 {
		return mgl32.Vec3{0, 1, 0}
	}
	return up
}

// LightView returns the light model-view matrix looking from dir at the origin.
func LightView(dir mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(dir, mgl32.Vec3{}, LightUp(dir))
}

// ComputeOrthoProjVals returns the half extent and near/far distances of an
// orthographic light projection covering the whole box.
func ComputeOrthoProjVals(lightDir mgl32.Vec3, box AABB) (extent, near, far float32) {
	eye := lightDir
	vDir := eye.Mul(-1).Normalize()
	up := LightUp(lightDir)
	left := vDir.Cross(up).Normalize()
	up = left.Cross(vDir)

	near = math32.MaxFloat32
	far = -math32.MaxFloat32
	for _, v := range box.Corners() {
		toCam := v.Sub(eye)
		dist := toCam.Dot(vDir)
		near = math32.Min(near, dist)
		far = math32.Max(far, dist)

		extent = math32.Max(extent, math32.Abs(toCam.Dot(left)))
		extent = math32.Max(extent, math32.Abs(toCam.Dot(up)))
	}
	return extent, near, far
}

// ComputeCropMatrix fits lightProj to the light-space bounds of verts.
func ComputeCropMatrix(verts []mgl32.Vec3, lightProj, lightMV mgl32.Mat4, mapSize int, mode ZMode) Crop {
	lightMVP := lightProj.Mul4(lightMV)

	inf := float32(math32.MaxFloat32)
	minP := mgl32.Vec3{inf, inf, inf}
	maxP := mgl32.Vec3{-inf, -inf, -inf}
	for _, v := range verts {
		t := lightMVP.Mul4x1(v.Vec4(1))
		p := t.Vec3().Mul(1 / t.W())
		for k := 0; k < 3; k++ {
			minP[k] = math32.Min(minP[k], p[k])
			maxP[k] = math32.Max(maxP[k], p[k])
		}
	}

	minZ, maxZ := minP[2], maxP[2]
	if mode == ZExtendFar {
		maxZ = math32.Min(maxZ+(maxZ-minZ)*0.05, 1)
	} else {
		maxZ = 1
	}

	scaleX := 2 / (maxP[0] - minP[0])
	scaleY := 2 / (maxP[1] - minP[1])
	scaleZ := 1 / (maxZ - minZ)
	offsetZ := -minZ * scaleZ

	scaleX = 1 / math32.Ceil(1/scaleX*cropQuantizer) * cropQuantizer
	scaleY = 1 / math32.Ceil(1/scaleY*cropQuantizer) * cropQuantizer

	offsetX := -0.5 * (maxP[0] + minP[0]) * scaleX
	offsetY := -0.5 * (maxP[1] + minP[1]) * scaleY

	halfTex := 0.5 * float32(mapSize)
	offsetX = math32.Ceil(offsetX*halfTex) / halfTex
	offsetY = math32.Ceil(offsetY*halfTex) / halfTex

	crop := mgl32.Mat4{
		scaleX, 0, 0, 0,
		0, scaleY, 0, 0,
		0, 0, scaleZ, 0,
		offsetX, offsetY, offsetZ, 1,
	}

	proj := crop.Mul4(lightProj)
	return Crop{
		Projection: proj,
		Lookup:     biasMatrix.Mul4(proj).Mul4(lightMV),
		OrthoScale: mgl32.Vec4{scaleX, scaleY, minZ, maxZ},
	}
}
