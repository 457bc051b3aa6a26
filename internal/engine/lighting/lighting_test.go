package lighting

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sky places a body at the given altitude sine, due south.
func sky(sinAlt float64) mgl64.Vec3 {
	return mgl64.Vec3{math.Sqrt(1 - sinAlt*sinAlt), 0, sinAlt}
}

type fakeLandscape struct {
	target, effective, opacity, fade float32
}

func (l fakeLandscape) TargetLightscapeBrightness() float32    { return l.target }
func (l fakeLandscape) EffectiveLightscapeBrightness() float32 { return l.effective }
func (l fakeLandscape) Opacity(mgl64.Vec3) float32             { return l.opacity }
func (l fakeLandscape) EffectiveLandFade() float32             { return l.fade }

func baseInputs() Inputs {
	return Inputs{
		Sun:               sky(-0.9),
		Moon:              sky(-0.9),
		Venus:             sky(-0.9),
		MoonMagnitude:     fullMoonMagnitude,
		EclipseFactor:     1,
		MinimalBrightness: 0.05,
		Shadows:           true,
		TorchRange:        2,
	}
}

func TestComputeSources(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(in *Inputs)
		source      DirectionalSource
		caster      ShadowCaster
		directional float32
		ambient     float32
	}{
		{
			name:        "sun high",
			setup:       func(in *Inputs) { in.Sun = sky(0.5) },
			source:      SourceSun,
			caster:      CasterSun,
			directional: 0.7,
			ambient:     0.35,
		},
		{
			name:        "sun just below horizon",
			setup:       func(in *Inputs) { in.Sun = sky(-0.05) },
			source:      SourceSun,
			caster:      CasterSun,
			directional: float32(math.Sqrt(0.05)),
			ambient:     0.3,
		},
		{
			name: "moon at night",
			setup: func(in *Inputs) {
				in.Sun = sky(-0.5)
				in.Moon = sky(0.5)
			},
			source:      SourceMoon,
			caster:      CasterMoon,
			directional: float32(math.Sqrt(0.5)*0.2 - math.Sqrt(0.5)*0.2*0.5),
			ambient:     float32(0.05 + math.Sqrt(0.5)*0.2),
		},
		{
			name: "moon drowned by ambient",
			setup: func(in *Inputs) {
				in.Sun = sky(-0.5)
				in.Moon = sky(0.5)
				in.MinimalBrightness = 0.5
			},
			source:      SourceMoon,
			caster:      CasterNone,
			directional: 0,
			ambient:     float32(0.5 + math.Sqrt(0.5)*0.2),
		},
		{
			name:        "venus",
			setup:       func(in *Inputs) { in.Venus = sky(0.5); in.MinimalBrightness = 0 },
			source:      SourceVenus,
			caster:      CasterVenus,
			directional: float32(math.Sqrt(0.5)*0.005 + 0.025),
			ambient:     0,
		},
		{
			name:        "venus ambient only",
			setup:       func(in *Inputs) { in.Venus = sky(0.5); in.MinimalBrightness = 0.2 },
			source:      SourceVenusAmbient,
			caster:      CasterNone,
			directional: 0,
			ambient:     0.2,
		},
		{
			name:        "dark sky",
			setup:       func(in *Inputs) {},
			source:      SourceSunBelowHorizon,
			caster:      CasterNone,
			directional: 0,
			ambient:     0.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInputs()
			tt.setup(&in)
			info := Compute(in)

			assert.Equal(t, tt.source, info.Source)
			assert.Equal(t, tt.caster, info.Caster)
			assert.InDelta(t, tt.directional, info.Directional.X(), 1e-5)
			assert.InDelta(t, tt.ambient, info.Ambient.X(), 1e-5)
			assert.InDelta(t, 1, info.Direction.Len(), 1e-5)
		})
	}
}

func TestComputeShadowsDisabled(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(0.5)
	in.Shadows = false

	info := Compute(in)
	assert.Equal(t, SourceSun, info.Source)
	assert.Equal(t, CasterNone, info.Caster)
	assert.Greater(t, info.Directional.X(), float32(0))
}

func TestComputeLightDirectionFollowsCaster(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(-0.5)
	in.Moon = mgl64.Vec3{0, 1, 1}

	info := Compute(in)
	require.Equal(t, CasterMoon, info.Caster)
	assert.InDelta(t, 0, info.Direction.Sub(mgl32.Vec3{0, 1, 1}.Normalize()).Len(), 1e-5)

	// light looks at the origin from its direction
	p := info.ShadowModelView.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -1, p.Z(), 1e-5)
}

func TestComputeEclipse(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(0.5)
	in.EclipseFactor = 0.5

	info := Compute(in)
	assert.InDelta(t, 0.35, info.Directional.X(), 1e-5)
	assert.InDelta(t, 0.05+0.15, info.Ambient.X(), 1e-5)
}

func TestComputeNightVision(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(0.5)
	in.NightVision = true
	in.Torch = true
	in.TorchBrightness = 0.5

	info := Compute(in)
	for _, v := range []mgl32.Vec3{info.Ambient, info.Directional, info.Emissive, info.Specular, info.TorchDiffuse} {
		assert.Zero(t, v.Y())
		assert.Zero(t, v.Z())
	}
	assert.Equal(t, float32(0.5), info.TorchDiffuse.X())
}

func TestComputeTorch(t *testing.T) {
	in := baseInputs()
	in.TorchBrightness = 0.5
	in.TorchRange = 4

	info := Compute(in)
	assert.Zero(t, info.TorchDiffuse.X())
	assert.InDelta(t, 1.0/16, info.TorchAttenuation, 1e-7)

	in.Torch = true
	info = Compute(in)
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, info.TorchDiffuse)
}

func TestComputeSpecular(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(0.5)
	info := Compute(in)
	assert.Equal(t, float32(1), info.Specular.X())

	in = baseInputs()
	in.Sun = sky(-0.05)
	in.MinimalBrightness = 0
	info = Compute(in)
	want := info.Ambient.X() * info.Directional.X() * 5
	assert.InDelta(t, want, info.Specular.X(), 1e-6)
}

func TestEmissiveWithoutLandscape(t *testing.T) {
	tests := []struct {
		sinSun float64
		want   float32
	}{
		{-0.5, 1},
		{-0.095, 0.5},
		{-0.05, 0},
		{0.3, 0},
	}
	for _, tt := range tests {
		in := baseInputs()
		in.Sun = sky(tt.sinSun)
		info := Compute(in)
		assert.InDelta(t, tt.want, info.Emissive.X(), 1e-5, "sin %v", tt.sinSun)
	}
}

func TestEmissiveFromLandscape(t *testing.T) {
	in := baseInputs()
	in.Landscape = fakeLandscape{target: 0.8, effective: 0.3, fade: 1}

	assert.Equal(t, float32(0.3), Compute(in).Emissive.X())

	in.UseTargetBrightness = true
	assert.Equal(t, float32(0.8), Compute(in).Emissive.X())
}

func TestLandscapeOcclusion(t *testing.T) {
	in := baseInputs()
	in.Sun = sky(0.5)
	in.Landscape = fakeLandscape{opacity: 0.5, fade: 1}

	info := Compute(in)
	assert.Equal(t, float32(0.5), info.LandscapeOpacity)
	assert.InDelta(t, 0.35, info.Directional.X(), 1e-5)

	in.Landscape = fakeLandscape{opacity: 1, fade: 0}
	info = Compute(in)
	assert.InDelta(t, 0.7, info.Directional.X(), 1e-5)
}

func TestNoOcclusionWithoutDirectionalLight(t *testing.T) {
	in := baseInputs()
	in.Landscape = fakeLandscape{opacity: 1, fade: 1}
	info := Compute(in)
	assert.Zero(t, info.LandscapeOpacity)
}

func TestAltAzDirection(t *testing.T) {
	south := AltAzDirection(180, 0)
	assert.InDelta(t, 1, south.X(), 1e-9)
	east := AltAzDirection(90, 0)
	assert.InDelta(t, 1, east.Y(), 1e-9)
	assert.InDelta(t, 1, AltAzDirection(0, 90).Z(), 1e-9)

	assert.InDelta(t, 30, Altitude(AltAzDirection(123, 30)), 1e-9)
}

func TestCasterNames(t *testing.T) {
	assert.Equal(t, "Moon", CasterMoon.String())
	assert.Equal(t, "None", CasterNone.String())
	assert.Equal(t, "Venus (ambient only)", SourceVenusAmbient.String())
}
