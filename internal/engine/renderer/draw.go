package renderer

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/lighting"
	"github.com/Faultbox/scenery3d/internal/engine/projection"
	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// worldUp is the zenith of the horizontal frame.
var worldUp = mgl32.Vec3{0, 0, 1}

// Draw renders sc for the host state in frame into the bound framebuffer.
// The color buffer is expected to hold the background already.
func (r *Renderer) Draw(frame Frame, sc scene.Scene) {
	if sc == nil || frame.Projection == nil {
		return
	}
	if !sc.IsGLReady() {
		if err := sc.GLLoad(); err != nil {
			r.log.Error("scene upload failed", zap.Error(err))
			r.message(MsgSceneFailed)
			return
		}
		r.cube.Invalidate()
	}

	r.sc = sc
	r.frame = frame
	r.info = sc.Info().Normalize()
	r.stats = Stats{}
	r.requiresCubemap = frame.Projection.Kind() != projection.KindPerspective
	defer func() { r.sc = nil }()

	// before scheduling, a new shadow setup invalidates the cubemap
	if r.params.Shadows {
		if r.reinitShadows || !r.shadows.Created() || r.cubemapUsedLastFrame != r.requiresCubemap {
			r.initShadows()
		}
	} else {
		r.shadows.Delete()
	}

	if r.requiresCubemap {
		if !r.cube.Created() || r.reinitCubemap {
			if !r.initCubemap() {
				return
			}
		}
		r.refresh = r.cube.Next(cubemap.Sample{
			JD:     frame.JD,
			WallMS: frame.WallMS,
			Eye:    sc.EyePosition(),
		})
		r.cube.UpdateDominantFaces(cubemap.DominantFaces(sc.ViewDirection()))
	} else {
		// cube targets are large, free them as soon as they are unused
		r.cube.Delete()
	}

	r.dev.Disable(gpu.Blend)

	r.calculateLighting()

	if r.requiresCubemap {
		r.drawWithCubemap()
	} else {
		r.drawDirect()
	}

	if r.text {
		r.drawCoordinatesText()
	}
	if r.debug {
		r.drawDebug()
	}

	r.lastDrawnPosition = sc.EyePosition()
	r.cubemapUsedLastFrame = r.requiresCubemap
}

// initCubemap (re)creates the cube targets. A failure is not retried until
// a setting changes.
func (r *Renderer) initCubemap() bool {
	if r.cubemapFailed && !r.reinitCubemap {
		return false
	}
	r.reinitCubemap = false
	mode, err := r.cube.Init(r.cubemapMode, r.cubemapSize)
	if err != nil {
		r.log.Warn("cubemapping unavailable", zap.Stringer("mode", mode), zap.Error(err))
		r.cubemapFailed = true
		return false
	}
	r.cubemapFailed = false
	return true
}

// initShadows (re)creates the cascade maps. On failure shadows are switched
// off until they are enabled again.
func (r *Renderer) initShadows() {
	r.reinitShadows = false
	r.params.FrustumSplits = shader.MaxFrustumSplits
	if r.simpleShadows {
		r.params.FrustumSplits = 1
	}
	hw, err := r.shadows.Init(r.params, r.shadowmapSize)
	if err != nil {
		r.log.Warn("shadow mapping unavailable", zap.Error(err))
		r.shadows.Delete()
		r.params.Shadows = false
		r.params.HWShadowSamplers = false
		r.message(MsgShadowsFailed)
		return
	}
	r.params.HWShadowSamplers = hw
	r.cube.Invalidate()
}

// calculateLighting evaluates the light model with the renderer's own
// settings applied to the host inputs.
func (r *Renderer) calculateLighting() {
	in := r.frame.Light
	in.Shadows = r.params.Shadows
	in.Torch = r.params.TorchLight
	in.TorchBrightness = r.torchBrightness
	in.TorchRange = r.torchRange
	in.UseTargetBrightness = r.requiresCubemap && r.cube.Lazy
	r.light = lighting.Compute(in)
}

// zMode selects how the light frustum's far plane is placed. Per-face
// shadow fits keep the extended far plane of the direct view.
func (r *Renderer) zMode() geom.ZMode {
	if r.requiresCubemap && !r.perFaceShadows {
		return geom.ZFarAtOne
	}
	return geom.ZExtendFar
}

// renderShadows refits the cascades to a view along dir and draws them.
func (r *Renderer) renderShadows(dir mgl32.Vec3, fov, aspect float32) bool {
	eye := vec32(r.sc.EyePosition())
	box := r.sc.AABB()
	r.shadows.Adjust(eye, dir, worldUp, fov, aspect, box, r.info)
	return r.shadows.Render(r.light, box, r.zMode(), r.drawShadowPass)
}

// drawShadowPass draws the casters into the bound cascade.
func (r *Renderer) drawShadowPass(proj, mv mgl32.Mat4) bool {
	r.projection = proj
	r.modelView = mv
	r.cubeMVP = nil
	p := r.params
	p.ShadowTransform = true
	r.stats.ShadowPasses++
	return r.drawArrays(p, false, false)
}

// drawDirect draws the scene through a perspective camera matching the
// host projection, including its viewport center offset.
func (r *Renderer) drawDirect() {
	proj := r.frame.Projection
	vp := proj.Viewport()
	fov := proj.FOV()
	aspect := float32(1)
	if vp[3] > 0 {
		aspect = float32(vp[2]) / float32(vp[3])
	}
	eye := vec32(r.sc.EyePosition())

	if r.params.Shadows {
		if !r.renderShadows(vec32(r.sc.ViewDirection()), fov, aspect) {
			return
		}
		r.dev.Viewport(vp[0], vp[1], vp[2], vp[3])
	}

	r.modelView = proj.ModelView().Mul4(mgl32.Translate3D(-eye[0], -eye[1], -eye[2]))
	r.projection = offsetPerspective(fov, aspect, r.info.CamNearZ, r.info.CamFarZ, proj.ViewportCenterOffset())
	r.cubeMVP = nil

	dev := r.dev
	dev.Enable(gpu.DepthTest)
	dev.DepthMask(true)
	dev.Clear(gpu.ClearDepth)
	dev.Enable(gpu.CullFace)

	r.stats.ColorPasses++
	r.drawArrays(r.params, true, false)

	dev.DepthMask(false)
	dev.Disable(gpu.DepthTest)
	dev.Disable(gpu.CullFace)
}

// offsetPerspective is a perspective projection whose center is shifted by
// offset, in fractions of the viewport.
func offsetPerspective(fovDeg, aspect, near, far float32, offset mgl32.Vec2) mgl32.Mat4 {
	fH := math32.Tan(fovDeg/360*math32.Pi) * near
	fW := fH * aspect
	h := 2 * fW * offset[0]
	v := -2 * fH * offset[1]
	return mgl32.Frustum(-fW+h, fW+h, -fH+v, fH+v, near, far)
}

// drawWithCubemap refreshes the faces the scheduler asked for and
// reprojects the cube through the host projection.
func (r *Renderer) drawWithCubemap() {
	proj := r.frame.Projection
	vp := proj.Viewport()
	aspect := float32(1)
	if vp[3] > 0 {
		aspect = float32(vp[2]) / float32(vp[3])
	}
	f := cubemap.Frame{
		Sample: cubemap.Sample{
			JD:     r.frame.JD,
			WallMS: r.frame.WallMS,
			Eye:    r.sc.EyePosition(),
		},
		Eye:            vec32(r.sc.EyePosition()),
		ViewDir:        vec32(r.sc.ViewDirection()),
		Near:           r.info.CamNearZ,
		Far:            r.info.CamFarZ,
		Refresh:        r.refresh,
		Shadows:        r.params.Shadows,
		PerFaceShadows: r.perFaceShadows,
		FOV:            proj.FOV(),
		Aspect:         aspect,
		Viewport:       vp,
	}
	if !r.cube.Generate(f, facePainter{r}) {
		return
	}
	if err := r.cube.DrawFrom(proj, r.shaders); err != nil {
		r.log.Error("cubemap reprojection failed", zap.Error(err))
		r.message(MsgShaderError)
	}
}

// facePainter lets the cubemap stage draw through the renderer.
type facePainter struct{ r *Renderer }

func (p facePainter) RenderShadows(viewDir mgl32.Vec3, fov, aspect float32) bool {
	return p.r.renderShadows(viewDir, fov, aspect)
}

func (p facePainter) DrawFace(proj, mv mgl32.Mat4, cubeMVP []mgl32.Mat4) bool {
	r := p.r
	r.projection = proj
	r.modelView = mv
	r.cubeMVP = cubeMVP
	params := r.params
	params.GeometryShader = cubeMVP != nil
	if cubeMVP != nil {
		r.stats.FaceRefreshes += cubemap.FaceCount
	} else {
		r.stats.FaceRefreshes++
	}
	r.stats.ColorPasses++
	return r.drawArrays(params, true, true)
}
