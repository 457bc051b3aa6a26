package ui2d

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// Surface is a Canvas that can also preview depth textures.
type Surface interface {
	Canvas
	DrawDepthTexture(x, y, size float32, texture uint32)
}

// Overlay draws the scenery renderer's text on a Surface. It takes
// coordinates from the bottom-left corner and flips them for the surface.
type Overlay struct {
	surface Surface
	scale   float32
	color   Color
}

// NewOverlay creates an overlay drawing at scale.
func NewOverlay(s Surface, scale float32) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{surface: s, scale: scale, color: ColorWhite}
}

func (o *Overlay) SetColor(c mgl32.Vec4) { o.color = FromVec4(c) }

// DrawText draws s with its baseline cell's bottom-left corner at x, y.
func (o *Overlay) DrawText(x, y float32, s string) {
	_, h := o.surface.GetScreenSize()
	o.surface.DrawText(x, float32(h)-y-o.glyphHeight(), s, o.scale, o.color)
}

func (o *Overlay) TextWidth(s string) float32 {
	w, _ := o.surface.MeasureText(s, o.scale)
	return w
}

// LineHeight is one glyph plus two pixels of leading.
func (o *Overlay) LineHeight() float32 { return o.glyphHeight() + 2 }

// DrawDepthTexture shows tex with its bottom-left corner at x, y.
func (o *Overlay) DrawDepthTexture(x, y, size float32, tex gpu.Texture) {
	_, h := o.surface.GetScreenSize()
	o.surface.DrawDepthTexture(x, float32(h)-y-size, size, uint32(tex))
}

func (o *Overlay) glyphHeight() float32 {
	_, h := o.surface.MeasureText("M", o.scale)
	return h
}
