package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SplitOverlap widens each cascade's far plane past the next cascade's near plane.
const SplitOverlap = 1.005

// DefaultSplitWeight is used when a scene does not provide a weight in [0,1].
const DefaultSplitWeight = 0.75

// ComputeFrustumSplits partitions the range carried by frusta[0] into
// len(frusta) cascades. Every frustum must already hold the same camera
// internals. weight blends the logarithmic (1) and the linear (0) scheme.
func ComputeFrustumSplits(frusta []Frustum, pos, dir, up mgl32.Vec3, weight float32) {
	n := len(frusta)
	if n == 0 {
		return
	}
	if weight < 0 || weight > 1 {
		weight = DefaultSplitWeight
	}

	zNear := frusta[0].ZNear
	zFar := frusta[0].ZFar
	ratio := zFar / zNear
	zRange := zFar - zNear

	for i := 1; i < n; i++ {
		s := float32(i) / float32(n)
		frusta[i].ZNear = weight*(zNear*math32.Pow(ratio, s)) + (1-weight)*(zNear+zRange*s)
		frusta[i-1].ZFar = frusta[i].ZNear * SplitOverlap
		frusta[i-1].CalcFrustum(pos, dir, up)
	}
	frusta[n-1].CalcFrustum(pos, dir, up)
}
