package app

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/scenery3d/internal/config"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionPanel
	actionFullscreen
	actionFreezeShadows
	actionFaster
	actionSlower
	actionProjection
	actionScreenshot
	actionLandscape

	// render setting toggles
	actionShadows
	actionSimpleShadows
	actionTorch
	actionBump
	actionPixelLighting
	actionLazy
	actionDebug
	actionText
)

var bindings = map[sdl.Scancode]action{
	sdl.SCANCODE_ESCAPE:       actionQuit,
	sdl.SCANCODE_TAB:          actionPanel,
	sdl.SCANCODE_F11:          actionFullscreen,
	sdl.SCANCODE_F:            actionFreezeShadows,
	sdl.SCANCODE_RIGHTBRACKET: actionFaster,
	sdl.SCANCODE_LEFTBRACKET:  actionSlower,
	sdl.SCANCODE_P:            actionProjection,
	sdl.SCANCODE_F12:          actionScreenshot,
	sdl.SCANCODE_G:            actionLandscape,
	sdl.SCANCODE_F1:           actionShadows,
	sdl.SCANCODE_F2:           actionSimpleShadows,
	sdl.SCANCODE_F3:           actionTorch,
	sdl.SCANCODE_F4:           actionBump,
	sdl.SCANCODE_F5:           actionPixelLighting,
	sdl.SCANCODE_F6:           actionLazy,
	sdl.SCANCODE_F7:           actionDebug,
	sdl.SCANCODE_F8:           actionText,
}

func keyAction(sc sdl.Scancode) action { return bindings[sc] }

// applyToggle flips the render setting bound to act and reports whether
// act was a setting toggle.
func applyToggle(c *config.RenderConfig, act action) bool {
	var v *bool
	switch act {
	case actionShadows:
		v = &c.Shadows
	case actionSimpleShadows:
		v = &c.SimpleShadows
	case actionTorch:
		v = &c.Torch
	case actionBump:
		v = &c.Bump
	case actionPixelLighting:
		v = &c.PixelLighting
	case actionLazy:
		v = &c.LazyDrawing
	case actionDebug:
		v = &c.Debug
	case actionText:
		v = &c.Text
	default:
		return false
	}
	*v = !*v
	return true
}

// rates are the simulation speeds the time keys step through.
var rates = []float64{0, 1, 10, 60, 600, 3600, 36000}

// nextRate steps to the neighbouring rate. Rates between steps snap to the
// next one in the requested direction.
func nextRate(cur float64, faster bool) float64 {
	if faster {
		for _, r := range rates {
			if r > cur {
				return r
			}
		}
		return rates[len(rates)-1]
	}
	for i := len(rates) - 1; i >= 0; i-- {
		if rates[i] < cur {
			return rates[i]
		}
	}
	return rates[0]
}

var (
	dayColor   = mgl32.Vec3{0.45, 0.62, 0.85}
	duskColor  = mgl32.Vec3{0.35, 0.25, 0.3}
	nightColor = mgl32.Vec3{0.01, 0.015, 0.03}
)

// skyColor is the clear color for the sine of the sun altitude: night
// below -12 degrees of altitude, dusk at the horizon, day above 10.
func skyColor(sinSun float32) mgl32.Vec3 {
	const (
		night = -0.2079 // sin(-12°)
		day   = 0.1736  // sin(10°)
	)
	switch {
	case sinSun <= night:
		return nightColor
	case sinSun >= day:
		return dayColor
	case sinSun < 0:
		t := smoothstep(sinSun / night)
		return duskColor.Mul(1 - t).Add(nightColor.Mul(t))
	}
	t := smoothstep(sinSun / day)
	return duskColor.Mul(1 - t).Add(dayColor.Mul(t))
}

func smoothstep(t float32) float32 {
	t = math32.Max(0, math32.Min(1, t))
	return t * t * (3 - 2*t)
}
