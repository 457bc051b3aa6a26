// Package lighting computes the per-frame light mixture of the scenery: the
// ambient and directional contributions of sun, moon and Venus, the active
// shadow caster and the light-space view matrix.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/pkg/geom"
)

const (
	lunarBrightnessFactor = 0.2
	venusBrightnessFactor = 0.005
	// fullMoonMagnitude normalizes the moon's visual magnitude to a brightness factor.
	fullMoonMagnitude = -12.73
)

// ShadowCaster is the body whose light casts shadows this frame.
type ShadowCaster int

const (
	CasterNone ShadowCaster = iota
	CasterSun
	CasterMoon
	CasterVenus
)

func (c ShadowCaster) String() string {
	switch c {
	case CasterSun:
		return "Sun"
	case CasterMoon:
		return "Moon"
	case CasterVenus:
		return "Venus"
	}
	return "None"
}

// DirectionalSource tells which branch produced the directional light.
type DirectionalSource int

const (
	SourceSunBelowHorizon DirectionalSource = iota
	SourceSun
	SourceMoon
	SourceVenus
	SourceVenusAmbient
)

func (s DirectionalSource) String() string {
	switch s {
	case SourceSun:
		return "Sun"
	case SourceMoon:
		return "Moon"
	case SourceVenus:
		return "Venus"
	case SourceVenusAmbient:
		return "Venus (ambient only)"
	}
	return "Sun (below horizon)"
}

// Landscape is the part of the host landscape the light model reads.
type Landscape interface {
	// TargetLightscapeBrightness is the value the lightscape fades towards.
	TargetLightscapeBrightness() float32
	// EffectiveLightscapeBrightness is the current, interpolated value.
	EffectiveLightscapeBrightness() float32
	// Opacity returns how much the landscape blocks the given alt-az direction, in [0,1].
	Opacity(dir mgl64.Vec3) float32
	// EffectiveLandFade is the landscape visibility in [0,1].
	EffectiveLandFade() float32
}

// Inputs is everything the light model needs for one frame.
type Inputs struct {
	// Alt-az positions, any length.
	Sun   mgl64.Vec3
	Moon  mgl64.Vec3
	Venus mgl64.Vec3

	MoonMagnitude   float32 // visual magnitude with extinction
	VenusPhaseAngle float32 // radians
	EclipseFactor   float32 // 1 without an eclipse

	MinimalBrightness float32
	Landscape         Landscape // nil when no landscape is loaded

	// UseTargetBrightness selects the target instead of the interpolated
	// lightscape brightness, for lazily refreshed cubemaps.
	UseTargetBrightness bool

	Shadows         bool
	Torch           bool
	TorchBrightness float32
	TorchRange      float32
	NightVision     bool
}

// Info is the lighting snapshot of one frame.
type Info struct {
	Ambient      mgl32.Vec3
	Directional  mgl32.Vec3
	Emissive     mgl32.Vec3
	Specular     mgl32.Vec3
	TorchDiffuse mgl32.Vec3

	TorchAttenuation float32

	BackgroundAmbient float32
	SunAmbient        float32
	MoonAmbient       float32
	LandscapeOpacity  float32

	Caster ShadowCaster
	Source DirectionalSource

	// Direction points from the scene towards the light, normalized.
	Direction mgl32.Vec3
	// ShadowModelView looks from Direction at the origin.
	ShadowModelView mgl32.Mat4
}

// Compute evaluates the light model. Every input yields a defined result.
func Compute(in Inputs) Info {
	sunPos := unit(in.Sun)
	moonPos := unit(in.Moon)
	venusPos := unit(in.Venus)

	sinSun := float32(sunPos.Z())
	sinMoon := float32(moonPos.Z())
	sinVenus := float32(venusPos.Z())
	moonFactor := in.MoonMagnitude / fullMoonMagnitude

	info := Info{
		Caster:            CasterNone,
		Source:            SourceSunBelowHorizon,
		BackgroundAmbient: in.MinimalBrightness,
	}
	ambient := in.MinimalBrightness
	var directional float32
	lightPos := sunPos

	emissive := LightscapeBrightness(sinSun)
	if l := in.Landscape; l != nil {
		if in.UseTargetBrightness {
			emissive = l.TargetLightscapeBrightness()
		} else {
			emissive = l.EffectiveLightscapeBrightness()
		}
	}

	// sun above -18 degrees
	if sinSun > -0.3 {
		info.SunAmbient = math32.Min(0.3, sinSun+0.3) * in.EclipseFactor
		ambient += info.SunAmbient
	}
	if sinMoon > 0 && sinSun < 0 {
		info.MoonAmbient = math32.Sqrt(math32.Max(0, sinMoon*moonFactor)) * lunarBrightnessFactor
		ambient += info.MoonAmbient
	}

	switch {
	case sinSun > -0.1:
		directional = math32.Min(0.7, math32.Sqrt(sinSun+0.1)) * in.EclipseFactor
		if in.Shadows {
			info.Caster = CasterSun
		}
		info.Source = SourceSun
	case sinMoon > 0:
		b := math32.Sqrt(sinMoon)*moonFactor*lunarBrightnessFactor - (ambient-0.05)*0.5
		if b > 0 {
			directional = b
			lightPos = moonPos
			if in.Shadows {
				info.Caster = CasterMoon
			}
		}
		info.Source = SourceMoon
	case sinVenus > 0:
		b := math32.Sqrt(sinVenus)*((math32.Cos(in.VenusPhaseAngle)+1)*0.5)*venusBrightnessFactor - (ambient-0.05)/2
		if b > 0 {
			directional = b
			lightPos = venusPos
			if in.Shadows {
				info.Caster = CasterVenus
			}
			info.Source = SourceVenus
		} else {
			info.Source = SourceVenusAmbient
		}
	}

	info.Direction = vec32(lightPos)
	info.ShadowModelView = geom.LightView(info.Direction)

	if directional > 0 && in.Landscape != nil {
		info.LandscapeOpacity = in.Landscape.Opacity(lightPos)
		directional *= 1 + in.Landscape.EffectiveLandFade()*(-info.LandscapeOpacity)
	}

	specular := math32.Min(ambient*directional*5, 1)

	var torch float32
	if in.Torch {
		torch = in.TorchBrightness
	}
	if in.TorchRange > 0 {
		info.TorchAttenuation = 1 / (in.TorchRange * in.TorchRange)
	}

	tint := func(v float32) mgl32.Vec3 {
		if in.NightVision {
			return mgl32.Vec3{v, 0, 0}
		}
		return mgl32.Vec3{v, v, v}
	}
	info.Ambient = tint(ambient)
	info.Directional = tint(directional)
	info.Emissive = tint(emissive)
	info.Specular = tint(specular)
	info.TorchDiffuse = tint(torch)

	return info
}

// LightscapeBrightness is the night-light ramp over the sine of the sun
// altitude: off above -3 degrees, fully on below -8. It stands in for the
// landscape's value when none is loaded.
func LightscapeBrightness(sinSun float32) float32 {
	switch {
	case sinSun < -0.14:
		return 1
	case sinSun < -0.05:
		return 1 - (sinSun+0.14)/(-0.05+0.14)
	}
	return 0
}

func unit(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
