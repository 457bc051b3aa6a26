package ui2d

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"

	"github.com/Faultbox/scenery3d/internal/engine/renderer"
)

var _ renderer.TextPainter = (*Overlay)(nil)

var _ Surface = (*Renderer)(nil)

type drawnText struct {
	x, y  float32
	text  string
	color Color
}

type drawnSprite struct {
	x, y, size float32
	texture    uint32
}

// recordingSurface measures text with a 7x13 cell like the built-in font.
type recordingSurface struct {
	w, h    int
	rects   []Rect
	texts   []drawnText
	sprites []drawnSprite
}

func newSurface() *recordingSurface { return &recordingSurface{w: 800, h: 600} }

func (s *recordingSurface) DrawRect(x, y, w, h float32, _ Color) {
	s.rects = append(s.rects, Rect{x, y, w, h})
}
func (s *recordingSurface) DrawRectOutline(x, y, w, h, _ float32, _ Color) {
	s.rects = append(s.rects, Rect{x, y, w, h})
}
func (s *recordingSurface) DrawText(x, y float32, text string, _ float32, c Color) {
	s.texts = append(s.texts, drawnText{x, y, text, c})
}
func (s *recordingSurface) MeasureText(text string, scale float32) (float32, float32) {
	return float32(7*len(text)) * scale, 13 * scale
}
func (s *recordingSurface) GetScreenSize() (int, int) { return s.w, s.h }
func (s *recordingSurface) DrawDepthTexture(x, y, size float32, texture uint32) {
	s.sprites = append(s.sprites, drawnSprite{x, y, size, texture})
}

func (s *recordingSurface) textsOf(text string) []drawnText {
	var out []drawnText
	for _, t := range s.texts {
		if t.text == text {
			out = append(out, t)
		}
	}
	return out
}

func TestFontAtlasLayout(t *testing.T) {
	f := newAtlasFont(basicfont.Face7x13)

	gw, gh := f.GlyphSize()
	assert.Equal(t, 7, gw)
	assert.Equal(t, 13, gh)
	assert.Equal(t, 16*7, f.atlas.Bounds().Dx())
	assert.Equal(t, 6*13, f.atlas.Bounds().Dy())

	u0, v0, u1, v1 := f.GetGlyphUV('A')
	assert.InDelta(t, 7.0/112, u0, 1e-6)
	assert.InDelta(t, 26.0/78, v0, 1e-6)
	assert.InDelta(t, 14.0/112, u1, 1e-6)
	assert.InDelta(t, 39.0/78, v1, 1e-6)
}

func TestFontAtlasHasGlyphPixels(t *testing.T) {
	f := newAtlasFont(basicfont.Face7x13)

	inked := func(col, row int) bool {
		for y := row * 13; y < (row+1)*13; y++ {
			for x := col * 7; x < (col+1)*7; x++ {
				if f.atlas.RGBAAt(x, y).A > 0 {
					return true
				}
			}
		}
		return false
	}
	assert.False(t, inked(0, 0), "space")
	assert.True(t, inked(1, 2), "A")
	assert.True(t, inked(('#'-32)%16, ('#'-32)/16), "#")
}

func TestFontUnknownRunesUseQuestionMark(t *testing.T) {
	f := newAtlasFont(basicfont.Face7x13)

	a0, b0, c0, d0 := f.GetGlyphUV('?')
	for _, r := range []rune{'é', 0, 127, '\t'} {
		u0, v0, u1, v1 := f.GetGlyphUV(r)
		assert.Equal(t, [4]float32{a0, b0, c0, d0}, [4]float32{u0, v0, u1, v1}, "rune %q", r)
	}
}

func TestFontMeasureText(t *testing.T) {
	f := newAtlasFont(basicfont.Face7x13)

	w, h := f.MeasureText("ab\ncde", 2)
	assert.Equal(t, float32(42), w)
	assert.Equal(t, float32(52), h)

	w, h = f.MeasureText("", 1)
	assert.Zero(t, w)
	assert.Equal(t, float32(13), h)
}

func TestOverlayFlipsToTopLeft(t *testing.T) {
	s := newSurface()
	o := NewOverlay(s, 1)

	o.SetColor(mgl32.Vec4{1, 0, 1, 1})
	o.DrawText(10, 100, "hi")
	require.Len(t, s.texts, 1)
	assert.Equal(t, drawnText{10, 487, "hi", Color{1, 0, 1, 1}}, s.texts[0])

	assert.Equal(t, float32(15), o.LineHeight())
	assert.Equal(t, float32(21), o.TextWidth("abc"))

	o.DrawDepthTexture(5, 20, 128, 7)
	require.Len(t, s.sprites, 1)
	assert.Equal(t, drawnSprite{5, 452, 128, 7}, s.sprites[0])
}

func TestOverlayScale(t *testing.T) {
	s := newSurface()
	o := NewOverlay(s, 2)

	assert.Equal(t, float32(28), o.LineHeight())
	assert.Equal(t, float32(14), o.TextWidth("a"))

	o.DrawText(0, 0, "x")
	require.Len(t, s.texts, 1)
	assert.Equal(t, float32(600-26), s.texts[0].y)

	assert.Equal(t, float32(1), NewOverlay(s, 0).scale)
}

// panelFrame runs one frame of a window with one checkbox row and one
// button row.
func panelFrame(ctx *Context, checked *bool) (clicked bool) {
	ctx.Begin()
	if ctx.BeginWindow("settings", 10, 10, 200, 100, "Settings") {
		ctx.Row(rowHeight)
		*checked = ctx.Checkbox("shadows", "Shadows", *checked)
		ctx.Row(rowHeight)
		clicked = ctx.Button("reset", 80, "Reset")
		ctx.EndWindow()
	}
	return clicked
}

func TestCheckboxTogglesOnClick(t *testing.T) {
	s := newSurface()
	ctx := NewContext(s)
	in := ctx.Input()
	checked := false

	// first row: x 18, y 42
	in.MouseX, in.MouseY = 20, 45
	in.MouseLeftDown = true
	panelFrame(ctx, &checked)
	assert.False(t, checked, "flips on release")

	in.MouseLeftDown = false
	panelFrame(ctx, &checked)
	assert.True(t, checked)

	panelFrame(ctx, &checked)
	assert.True(t, checked)
}

func TestCheckboxIgnoresReleaseElsewhere(t *testing.T) {
	s := newSurface()
	ctx := NewContext(s)
	in := ctx.Input()
	checked := false

	in.MouseX, in.MouseY = 20, 45
	in.MouseLeftDown = true
	panelFrame(ctx, &checked)

	in.MouseX, in.MouseY = 400, 400
	in.MouseLeftDown = false
	panelFrame(ctx, &checked)
	assert.False(t, checked)
}

func TestButtonClicksOnPress(t *testing.T) {
	s := newSurface()
	ctx := NewContext(s)
	in := ctx.Input()
	checked := false

	// second row: y 42 + 18 + 4
	in.MouseX, in.MouseY = 30, 66
	in.MouseLeftDown = true
	assert.True(t, panelFrame(ctx, &checked))
	assert.False(t, panelFrame(ctx, &checked), "held")
	assert.False(t, checked)

	require.NotEmpty(t, s.textsOf("Reset"))
	require.NotEmpty(t, s.textsOf("Settings"))
}

func TestWindowDrag(t *testing.T) {
	s := newSurface()
	ctx := NewContext(s)
	in := ctx.Input()
	checked := false

	in.MouseX, in.MouseY = 50, 15
	in.MouseLeftDown = true
	panelFrame(ctx, &checked)
	ws := ctx.Window("settings")
	require.NotNil(t, ws)
	assert.True(t, ws.Moving)
	assert.Equal(t, float32(10), ws.X)

	in.MouseX, in.MouseY = 60, 40
	panelFrame(ctx, &checked)
	assert.Equal(t, float32(20), ws.X)
	assert.Equal(t, float32(35), ws.Y)

	in.MouseLeftDown = false
	panelFrame(ctx, &checked)
	assert.False(t, ws.Moving)
	assert.False(t, checked)
}

func TestWidgetsOutsideWindowDoNothing(t *testing.T) {
	s := newSurface()
	ctx := NewContext(s)

	assert.True(t, ctx.Checkbox("x", "X", true))
	assert.False(t, ctx.Button("b", 10, "B"))
	ctx.Label("nothing")
	ctx.Separator()
	assert.Empty(t, s.texts)
	assert.Empty(t, s.rects)
}

func TestConsoleKeepsNewestLines(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	c := NewConsole(2, 5*time.Second)

	c.Push("one", now)
	c.Push("two", now)
	c.Push("three", now)
	assert.Equal(t, []string{"two", "three"}, c.Lines(now))
}

func TestConsoleExpiresLines(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	c := NewConsole(10, 5*time.Second)

	c.Push("old", now)
	c.Push("new", now.Add(3*time.Second))
	assert.Equal(t, []string{"new"}, c.Lines(now.Add(6*time.Second)))
	assert.Empty(t, c.Lines(now.Add(9*time.Second)))
}

func TestConsoleDraw(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	s := newSurface()
	c := NewConsole(4, time.Minute)

	c.Draw(s, now)
	assert.Empty(t, s.rects)

	c.Push("Shadows could not be initialized", now)
	c.Push("ok", now)
	c.Draw(s, now)

	require.Len(t, s.rects, 1)
	require.Len(t, s.texts, 2)
	assert.Equal(t, ColorWarning, s.texts[0].color)
	assert.Less(t, s.texts[0].y, s.texts[1].y)
	assert.Less(t, s.rects[0].Y+s.rects[0].H, float32(600))
}
