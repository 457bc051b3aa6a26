package renderer

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/lighting"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// TextPainter draws the 2D overlay. Coordinates are in pixels from the
// bottom-left corner of the viewport.
type TextPainter interface {
	SetColor(c mgl32.Vec4)
	DrawText(x, y float32, s string)
	TextWidth(s string) float32
	LineHeight() float32
	// DrawDepthTexture shows a depth map as a size² grayscale sprite.
	DrawDepthTexture(x, y, size float32, tex gpu.Texture)
}

// Overlay layout.
const (
	coordinatesWidth = 240
	depthSpriteSize  = 128
	cascadeColumn    = 290
)

var (
	coordinatesColor = mgl32.Vec4{1, 0.5, 1, 1}
	debugColor       = mgl32.Vec4{1, 0, 1, 1}
	frustumColor     = mgl32.Vec4{1, 1, 1, 1}
)

// sourceNames labels the directional light in the debug overlay.
var sourceNames = map[lighting.DirectionalSource]string{
	lighting.SourceSunBelowHorizon: "(Sun, below horiz.)",
	lighting.SourceSun:             "Sun",
	lighting.SourceMoon:            "Moon",
	lighting.SourceVenus:           "Venus",
	lighting.SourceVenusAmbient:    "(Venus, flooded by ambient)",
}

// frustumEdges indexes the 12 edges of a frustum's corners.
var frustumEdges = []uint16{
	geom.NearTopLeft, geom.NearTopRight,
	geom.NearTopRight, geom.NearBottomRight,
	geom.NearBottomRight, geom.NearBottomLeft,
	geom.NearBottomLeft, geom.NearTopLeft,
	geom.FarTopLeft, geom.FarTopRight,
	geom.FarTopRight, geom.FarBottomRight,
	geom.FarBottomRight, geom.FarBottomLeft,
	geom.FarBottomLeft, geom.FarTopLeft,
	geom.NearTopLeft, geom.FarTopLeft,
	geom.NearTopRight, geom.FarTopRight,
	geom.NearBottomRight, geom.FarBottomRight,
	geom.NearBottomLeft, geom.FarBottomLeft,
}

func (r *Renderer) viewportSize() (w, h float32) {
	vp := r.frame.Projection.Viewport()
	return float32(vp[2]), float32(vp[3])
}

// drawCoordinatesText prints the grid name and the eye position in the
// top-right corner.
func (r *Renderer) drawCoordinatesText() {
	p := r.painter
	if p == nil {
		return
	}
	w, h := r.viewportSize()
	p.SetColor(coordinatesColor)

	name := r.info.GridName
	x := w - 10 - max(coordinatesWidth, p.TextWidth(name))
	y := h - 60
	step := p.LineHeight()

	grid := r.sc.GridPosition()
	lines := []string{
		name,
		fmt.Sprintf("East:   %10.2fm", grid[0]),
		fmt.Sprintf("North:  %10.2fm", grid[1]),
		fmt.Sprintf("Height: %10.2fm", grid[2]),
		fmt.Sprintf("Eye:    %10.2fm", r.sc.EyeHeight()),
	}
	for _, s := range lines {
		p.DrawText(x, y, s)
		y -= step
	}
}

// drawDebug draws the frozen camera frustum and the lighting, shadow and
// frame statistics text.
func (r *Renderer) drawDebug() {
	if r.shadows.Created() && r.shadows.Fixed() && !r.params.OpenGLES {
		r.drawFrustumLines()
	}

	p := r.painter
	if p == nil {
		return
	}
	p.SetColor(debugColor)
	li := &r.light

	p.DrawText(20, 160, fmt.Sprintf("Ambient: %6.4f Directional: %6.4f. Shadows cast by: %s from %6.4f/%6.4f/%6.4f",
		li.Ambient[0], li.Directional[0], li.Caster, li.Direction[0], li.Direction[1], li.Direction[2]))
	p.DrawText(20, 145, fmt.Sprintf("Contributions: Ambient     Sun: %6.4f, Moon: %6.4f, Background+^L: %6.4f",
		li.SunAmbient, li.MoonAmbient, li.BackgroundAmbient))
	p.DrawText(20, 130, fmt.Sprintf("               Directional %6.4f by: %s, emissive factor: %g, landscape opacity: %g",
		li.Directional[0], sourceNames[li.Source], li.Emissive[0], li.LandscapeOpacity))
	p.DrawText(20, 115, fmt.Sprintf("Torch range %g, brightness %g/%g/%g",
		r.torchRange, li.TorchDiffuse[0], li.TorchDiffuse[1], li.TorchDiffuse[2]))

	box := r.sc.AABB()
	p.DrawText(10, 100, fmt.Sprintf("BB: %7.2f/%7.2f/%7.2f %7.2f/%7.2f/%7.2f",
		box.Min[0], box.Min[1], box.Min[2], box.Max[0], box.Max[1], box.Max[2]))

	w, h := r.viewportSize()
	step := p.LineHeight()

	if r.params.Shadows && r.shadows.Created() {
		x := w - 240
		for i := 0; i < r.shadows.Splits(); i++ {
			c := r.shadows.Cascade(i)
			y := h - 400
			p.DrawText(x, y, fmt.Sprintf("SM %d", i))
			y -= step
			p.DrawDepthTexture(x, y-depthSpriteSize, depthSpriteSize, r.shadows.Texture(i))
			y -= depthSpriteSize + step
			p.DrawText(x, y, fmt.Sprintf("cam n/f: %7.2f/%7.2f", c.Frustum.ZNear, c.Frustum.ZFar))
			y -= step
			p.DrawText(x, y, fmt.Sprintf("uv scale: %7.2f/%7.2f", c.FrustumSize[0], c.FrustumSize[1]))
			y -= step
			p.DrawText(x, y, fmt.Sprintf("ortho n/f: %7.2f/%7.2f", c.FrustumSize[2], c.FrustumSize[3]))
			x -= cascadeColumn
		}
		weight := r.info.ShadowSplitWeight
		if weight < 0 || weight > 1 {
			weight = geom.DefaultSplitWeight
		}
		near, far := r.shadows.LightOrtho()
		p.DrawText(w-240, h-375, fmt.Sprintf("Splitweight: %3.2f", weight))
		p.DrawText(w-240, h-390, fmt.Sprintf("Light near/far: %3.2f/%3.2f", near, far))
	}

	x, y := w-240, h-200
	eye := r.sc.EyePosition()
	dir := r.sc.ViewDirection()
	dominant, second := r.cube.DominantFaces()
	lines := []string{
		"Last frame stats:",
		fmt.Sprintf("%d tris, %d mdls", r.stats.Triangles, r.stats.Models),
		fmt.Sprintf("%d mats, %d shaders", r.stats.MaterialSwitches, r.stats.ShaderSwitches),
		"View Pos",
		fmt.Sprintf("%7.2f %7.2f %7.2f", eye[0], eye[1], eye[2]),
		"View Dir, dominant faces",
		fmt.Sprintf("%7.2f %7.2f %7.2f, %d/%d", dir[0], dir[1], dir[2], dominant, second),
	}
	if r.requiresCubemap {
		jd, wall := r.cube.LastRefresh()
		lines = append(lines,
			fmt.Sprintf("Last cubemap update: %dms ago", r.frame.WallMS-wall),
			fmt.Sprintf("Last cubemap update JDAY: %f", math.Abs(r.frame.JD-jd)/cubemap.JDSecond))
	}
	lines = append(lines, fmt.Sprintf("Venus: %t", li.Caster == lighting.CasterVenus))
	for _, s := range lines {
		p.DrawText(x, y, s)
		y -= step
	}
}

// drawFrustumLines draws the camera frustum the shadows were frozen with.
func (r *Renderer) drawFrustumLines() {
	prog, err := r.shaders.Debug()
	if err != nil {
		r.log.Warn("debug shader unavailable", zap.Error(err))
		return
	}

	dev := r.dev
	if r.debugVBO == 0 {
		r.debugVBO = dev.NewBuffer(gpu.ArrayBuffer, gpu.StreamDraw)
		r.debugIBO = dev.NewBuffer(gpu.ElementArrayBuffer, gpu.StaticDraw)
		dev.UploadIndices16(r.debugIBO, frustumEdges)
	}

	corners := r.shadows.CameraFrustum().DrawingCorners()
	data := make([]float32, 0, len(corners)*3)
	for _, c := range corners {
		data = append(data, c[:]...)
	}
	dev.UploadFloats(r.debugVBO, data)

	prog.Bind()
	prog.SetMat4(shader.UniformMatMVP, r.projection.Mul4(r.modelView))
	prog.SetVec4(shader.UniformVecColor, frustumColor)

	dev.SetVertexAttrib(gpu.AttribPosition, r.debugVBO, 3, 0, 0)
	dev.BindIndexBuffer(r.debugIBO)
	dev.DrawElements(gpu.Lines, len(frustumEdges), gpu.Uint16, 0)
	dev.DisableVertexAttrib(gpu.AttribPosition)
}
