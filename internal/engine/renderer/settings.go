package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/config"
	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
)

// settingsChanged re-arms the one-time messages and lets a failed cubemap
// be retried.
func (r *Renderer) settingsChanged() {
	clear(r.shown)
	r.cubemapFailed = false
}

// invalidate forces the next frame to redraw the whole cubemap.
func (r *Renderer) invalidate() {
	r.settingsChanged()
	r.cube.Invalidate()
}

// SetCubemapMode selects how the cubemap is captured.
func (r *Renderer) SetCubemapMode(m cubemap.Mode) {
	r.cubemapMode = m
	r.reinitCubemap = true
	r.invalidate()
}

// SetCubemapSize sets the edge length of a cube face in pixels.
func (r *Renderer) SetCubemapSize(size int) {
	r.cubemapSize = r.clampSize(size)
	r.reinitCubemap = true
	r.invalidate()
}

// SetShadowmapSize sets the edge length of each cascade map in pixels.
func (r *Renderer) SetShadowmapSize(size int) {
	r.shadowmapSize = r.clampSize(size)
	r.reinitShadows = true
	r.invalidate()
}

// SetShadowsEnabled turns shadow mapping on or off.
func (r *Renderer) SetShadowsEnabled(on bool) {
	r.params.Shadows = on
	r.reinitShadows = true
	r.invalidate()
}

// SetSimpleShadows selects one cascade instead of four.
func (r *Renderer) SetSimpleShadows(on bool) {
	r.simpleShadows = on
	r.reinitShadows = true
	r.invalidate()
}

// SetFullCubemapShadows fits a shadow pass to every cube face instead of
// one pass for the host view.
func (r *Renderer) SetFullCubemapShadows(on bool) {
	r.perFaceShadows = on
	r.invalidate()
}

// SetShadowFilterQuality selects the shadow filter. Without filtering
// support it is forced off.
func (r *Renderer) SetShadowFilterQuality(q shader.FilterQuality) {
	if !r.caps.ShadowFiltering {
		q = shader.FilterOff
	}
	r.params.ShadowFilterQuality = q
	r.reinitShadows = true
	r.invalidate()
}

// SetPCSS requests soft shadows. The maps are rebuilt because PCSS needs
// raw depth samples instead of hardware comparison.
func (r *Renderer) SetPCSS(on bool) {
	r.params.PCSS = on
	r.reinitShadows = true
	r.invalidate()
}

// SetBumpsEnabled turns bump mapping on or off.
func (r *Renderer) SetBumpsEnabled(on bool) {
	r.params.Bump = on
	r.invalidate()
}

// SetPixelLighting selects per-pixel instead of per-vertex lighting.
func (r *Renderer) SetPixelLighting(on bool) {
	r.params.PixelLighting = on
	r.invalidate()
}

// SetShadersEnabled sets the three shader features at once.
func (r *Renderer) SetShadersEnabled(pixelLighting, shadows, bump bool) {
	r.params.PixelLighting = pixelLighting
	r.params.Bump = bump
	if r.params.Shadows != shadows {
		r.params.Shadows = shadows
		r.reinitShadows = true
	}
	r.invalidate()
}

// SetTorchEnabled turns the torch light at the eye on or off.
func (r *Renderer) SetTorchEnabled(on bool) {
	r.params.TorchLight = on
	r.invalidate()
}

// SetTorchBrightness sets the torch diffuse intensity.
func (r *Renderer) SetTorchBrightness(v float32) {
	r.torchBrightness = v
	r.invalidate()
}

// SetTorchRange sets the distance at which the torch attenuates.
func (r *Renderer) SetTorchRange(v float32) {
	r.torchRange = v
	r.invalidate()
}

// SetLazyCubemap enables redrawing the cubemap only when needed.
func (r *Renderer) SetLazyCubemap(on bool) {
	r.cube.Lazy = on
	r.cube.Invalidate()
}

// SetLazyInterval sets the simulation seconds between lazy refreshes.
func (r *Renderer) SetLazyInterval(seconds float64) { r.cube.Interval = seconds }

// SetUpdateOnlyDominantOnMoving limits lazy refreshes while moving to the
// face in view.
func (r *Renderer) SetUpdateOnlyDominantOnMoving(on bool) { r.cube.OnlyDominantOnMove = on }

// SetUpdateSecondDominantOnMoving also refreshes the second face in view
// while moving.
func (r *Renderer) SetUpdateSecondDominantOnMoving(on bool) { r.cube.SecondDominantOnMove = on }

// SetCubemapFallbackRenderers sets the GL renderer substrings that force
// the textures mode.
func (r *Renderer) SetCubemapFallbackRenderers(names []string) {
	r.cube.FallbackRenderers = append([]string(nil), names...)
	r.reinitCubemap = true
	r.settingsChanged()
}

// SetDebugEnabled shows the debug overlay.
func (r *Renderer) SetDebugEnabled(on bool) { r.debug = on }

// SetTextEnabled shows the coordinates text.
func (r *Renderer) SetTextEnabled(on bool) { r.text = on }

// ToggleFixShadowData freezes or releases the shadow frusta and reports
// whether they are frozen.
func (r *Renderer) ToggleFixShadowData() bool { return r.shadows.ToggleFixed() }

// ApplySettings applies c in one go. Unknown mode names are logged and
// leave the current value in place.
func (r *Renderer) ApplySettings(c config.RenderConfig) {
	mode := r.cubemapMode
	if m, err := cubemap.ParseMode(c.CubemapMode); err != nil {
		r.log.Warn("ignoring cubemap mode", zap.Error(err))
	} else {
		mode = m
	}
	filter := r.params.ShadowFilterQuality
	if q, err := shader.ParseFilterQuality(c.ShadowFilter); err != nil {
		r.log.Warn("ignoring shadow filter", zap.Error(err))
	} else {
		filter = q
	}

	r.SetCubemapMode(mode)
	r.SetCubemapSize(c.CubemapSize)
	r.SetShadowmapSize(c.ShadowmapSize)
	r.SetShadowsEnabled(c.Shadows && r.caps.ShadowSupport)
	r.SetSimpleShadows(c.SimpleShadows)
	r.SetFullCubemapShadows(c.FullCubemapShadows)
	r.SetShadowFilterQuality(filter)
	r.SetPCSS(c.PCSS)
	r.SetBumpsEnabled(c.Bump)
	r.SetPixelLighting(c.PixelLighting)
	r.SetTorchEnabled(c.Torch)
	r.SetTorchBrightness(c.TorchBrightness)
	r.SetTorchRange(c.TorchRange)
	r.SetLazyCubemap(c.LazyDrawing)
	r.SetLazyInterval(c.LazyInterval)
	r.SetUpdateOnlyDominantOnMoving(c.UpdateOnlyDominantOnMoving)
	r.SetUpdateSecondDominantOnMoving(c.UpdateSecondDominantOnMoving)
	r.SetCubemapFallbackRenderers(c.CubemapFallbackRenderers)
	r.SetDebugEnabled(c.Debug)
	r.SetTextEnabled(c.Text)

	r.log.Info("render settings applied",
		zap.Stringer("cubemap_mode", mode),
		zap.Int("cubemap_size", r.cubemapSize),
		zap.Int("shadowmap_size", r.shadowmapSize),
		zap.Bool("shadows", r.params.Shadows),
		zap.Stringer("shadow_filter", r.params.ShadowFilterQuality),
		zap.Bool("lazy", r.cube.Lazy))
}
