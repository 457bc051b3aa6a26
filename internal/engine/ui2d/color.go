package ui2d

import "github.com/go-gl/mathgl/mgl32"

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Predefined colors for UI theming.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}

	// Night-sky theme
	ColorPanelBg      = Color{0.04, 0.06, 0.1, 0.85}
	ColorPanelBorder  = Color{0.25, 0.32, 0.45, 1}
	ColorButtonNormal = Color{0.1, 0.14, 0.22, 1}
	ColorButtonHover  = Color{0.18, 0.24, 0.36, 1}
	ColorButtonActive = Color{0.12, 0.35, 0.55, 1}
	ColorInputBg      = Color{0.03, 0.04, 0.07, 1}
	ColorText         = Color{0.9, 0.9, 0.9, 1}
	ColorTextDim      = Color{0.5, 0.55, 0.65, 1}
	ColorHighlight    = Color{0.95, 0.7, 0.3, 1}
	ColorWarning      = Color{1, 0.55, 0.3, 1}
)

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: 1.0,
	}
}

// FromVec4 converts an rgba vector.
func FromVec4(v mgl32.Vec4) Color {
	return Color{v[0], v[1], v[2], v[3]}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Lighten returns a lighter version of the color.
func (c Color) Lighten(factor float32) Color {
	return Color{
		R: c.R + (1-c.R)*factor,
		G: c.G + (1-c.G)*factor,
		B: c.B + (1-c.B)*factor,
		A: c.A,
	}
}
