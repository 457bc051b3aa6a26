package host

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/engine/lighting"
)

const (
	landscapeFPS = 60
	// horizonBand is the altitude range in degrees over which the horizon
	// goes from opaque to clear.
	horizonBand = 0.5
	// maxCatchUp is the longest update replayed step by step; longer gaps
	// snap to the targets.
	maxCatchUp = 2 * time.Second
)

// Landscape is a flat horizon whose night lights and visibility fade with
// a critically damped spring.
type Landscape struct {
	// HorizonAltitude is the horizon height in degrees.
	HorizonAltitude float64

	spring  harmonica.Spring
	pending time.Duration

	visible          bool
	targetLightscape float32

	lightscape, lightscapeVel float64
	fade, fadeVel             float64
}

var _ lighting.Landscape = (*Landscape)(nil)

// NewLandscape returns a visible landscape with the lights off.
func NewLandscape() *Landscape {
	return &Landscape{
		spring:  harmonica.NewSpring(harmonica.FPS(landscapeFPS), 4.0, 1.0),
		visible: true,
		fade:    1,
	}
}

// SetVisible fades the landscape in or out.
func (l *Landscape) SetVisible(on bool) { l.visible = on }

// Visible reports the fade target, not the current fade.
func (l *Landscape) Visible() bool { return l.visible }

// Update retargets the night lights for the sun direction and advances the
// springs by dt.
func (l *Landscape) Update(dt time.Duration, sun mgl64.Vec3) {
	sinSun := float32(0)
	if sun.Len() > 0 {
		sinSun = float32(sun.Normalize().Z())
	}
	l.targetLightscape = lighting.LightscapeBrightness(sinSun)

	l.pending += dt
	if l.pending > maxCatchUp {
		l.pending = 0
		l.lightscape, l.lightscapeVel = float64(l.targetLightscape), 0
		l.fade, l.fadeVel = l.fadeTarget(), 0
		return
	}
	step := time.Second / landscapeFPS
	for l.pending >= step {
		l.lightscape, l.lightscapeVel = l.spring.Update(l.lightscape, l.lightscapeVel, float64(l.targetLightscape))
		l.fade, l.fadeVel = l.spring.Update(l.fade, l.fadeVel, l.fadeTarget())
		l.pending -= step
	}
}

func (l *Landscape) fadeTarget() float64 {
	if l.visible {
		return 1
	}
	return 0
}

func (l *Landscape) TargetLightscapeBrightness() float32 { return l.targetLightscape }

func (l *Landscape) EffectiveLightscapeBrightness() float32 {
	return clamp01(float32(l.lightscape))
}

func (l *Landscape) EffectiveLandFade() float32 { return clamp01(float32(l.fade)) }

// Opacity is 1 below the horizon and 0 above it, with a linear ramp
// across horizonBand.
func (l *Landscape) Opacity(dir mgl64.Vec3) float32 {
	if dir.Len() == 0 {
		return 0
	}
	alt := lighting.Altitude(dir) - l.HorizonAltitude
	return clamp01(float32(0.5 - alt/horizonBand))
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}
