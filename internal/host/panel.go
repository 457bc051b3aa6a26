package host

import (
	"github.com/Faultbox/scenery3d/internal/config"
	"github.com/Faultbox/scenery3d/internal/engine/cubemap"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/engine/ui2d"
)

// Panel geometry.
const (
	panelID     = "settings"
	panelX      = 10
	panelY      = 10
	panelWidth  = 260
	panelHeight = 330
	panelRow    = 18
)

// SettingsPanel edits a render config in place.
type SettingsPanel struct {
	ctx  *ui2d.Context
	Open bool
}

func NewSettingsPanel(ctx *ui2d.Context) *SettingsPanel {
	return &SettingsPanel{ctx: ctx}
}

// Contains reports whether the open panel covers canvas point x, y.
func (p *SettingsPanel) Contains(x, y float32) bool {
	ws := p.ctx.Window(panelID)
	if !p.Open || ws == nil {
		return false
	}
	return ui2d.Rect{X: ws.X, Y: ws.Y, W: ws.W, H: ws.H}.Contains(x, y)
}

// Draw shows the panel when open. It reports whether c changed and
// whether the save button was pressed.
func (p *SettingsPanel) Draw(c *config.RenderConfig) (changed, save bool) {
	if !p.Open {
		return false, false
	}
	ctx := p.ctx
	if !ctx.BeginWindow(panelID, panelX, panelY, panelWidth, panelHeight, "Scenery3d settings") {
		return false, false
	}
	defer ctx.EndWindow()

	toggle := func(id, label string, v *bool) {
		ctx.Row(panelRow)
		if nv := ctx.Checkbox(id, label, *v); nv != *v {
			*v = nv
			changed = true
		}
	}

	toggle("shadows", "Shadows", &c.Shadows)
	toggle("simple", "Simple shadows", &c.SimpleShadows)
	toggle("fullcube", "Shadows per cube face", &c.FullCubemapShadows)
	toggle("pcss", "Soft shadows (PCSS)", &c.PCSS)
	toggle("bump", "Bump mapping", &c.Bump)
	toggle("pixel", "Per-pixel lighting", &c.PixelLighting)
	toggle("torch", "Torch", &c.Torch)
	toggle("lazy", "Lazy cubemap", &c.LazyDrawing)
	toggle("debug", "Debug info", &c.Debug)
	toggle("text", "Coordinates", &c.Text)

	ctx.Separator()
	ctx.Row(panelRow)
	if ctx.Button("filter", 0, "Filter: "+c.ShadowFilter) {
		c.ShadowFilter = nextFilter(c.ShadowFilter)
		changed = true
	}
	ctx.Row(panelRow)
	if ctx.Button("mode", 0, "Cubemap: "+c.CubemapMode) {
		c.CubemapMode = nextMode(c.CubemapMode)
		changed = true
	}
	ctx.Row(panelRow)
	save = ctx.Button("save", 0, "Save")
	return changed, save
}

// nextFilter cycles through the filter qualities. Unknown names restart
// at the first one.
func nextFilter(name string) string {
	q, err := shader.ParseFilterQuality(name)
	if err != nil || q >= shader.FilterHighHardware {
		return shader.FilterOff.String()
	}
	return (q + 1).String()
}

func nextMode(name string) string {
	m, err := cubemap.ParseMode(name)
	if err != nil || m >= cubemap.ModeCubemapGSAccel {
		return cubemap.ModeTextures.String()
	}
	return (m + 1).String()
}
