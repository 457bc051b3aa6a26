package ui2d

import (
	"image"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph atlas layout: printable ASCII in a 16x6 grid.
const (
	firstGlyph   = 32
	glyphCount   = 96
	atlasColumns = 16
	atlasRows    = glyphCount / atlasColumns
)

// Font is a fixed-width bitmap font rasterized into one texture.
type Font struct {
	atlas   *image.RGBA
	glyphW  int
	glyphH  int
	texture uint32
}

// NewFont rasterizes the 7x13 basic face and uploads it. A GL context must
// be current.
func NewFont() *Font {
	f := newAtlasFont(basicfont.Face7x13)
	f.upload()
	return f
}

// newAtlasFont rasterizes face without touching the GPU.
func newAtlasFont(face *basicfont.Face) *Font {
	f := &Font{
		glyphW: face.Advance,
		glyphH: face.Height,
	}
	f.atlas = image.NewRGBA(image.Rect(0, 0, atlasColumns*f.glyphW, atlasRows*f.glyphH))

	d := font.Drawer{
		Dst:  f.atlas,
		Src:  image.White,
		Face: face,
	}
	for i := 0; i < glyphCount; i++ {
		cx := (i % atlasColumns) * f.glyphW
		cy := (i / atlasColumns) * f.glyphH
		d.Dot = fixed.P(cx, cy+face.Ascent)
		d.DrawString(string(rune(firstGlyph + i)))
	}
	return f
}

func (f *Font) upload() {
	b := f.atlas.Bounds()
	gl.GenTextures(1, &f.texture)
	gl.BindTexture(gl.TEXTURE_2D, f.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&f.atlas.Pix[0]))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// GlyphSize returns the cell size in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphW, f.glyphH
}

// GetGlyphUV returns the atlas rectangle of r, top-left first. Runes
// outside printable ASCII map to '?'.
func (f *Font) GetGlyphUV(r rune) (u0, v0, u1, v1 float32) {
	i := int(r) - firstGlyph
	if i < 0 || i >= glyphCount {
		i = '?' - firstGlyph
	}
	b := f.atlas.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	cx := float32((i % atlasColumns) * f.glyphW)
	cy := float32((i / atlasColumns) * f.glyphH)
	return cx / w, cy / h, (cx + float32(f.glyphW)) / w, (cy + float32(f.glyphH)) / h
}

// MeasureText returns the size of text at scale. Lines are split on '\n'.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return float32(longest*f.glyphW) * scale, float32(len(lines)*f.glyphH) * scale
}

// TextureID returns the GL texture name of the atlas.
func (f *Font) TextureID() uint32 { return f.texture }

// Close deletes the atlas texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
