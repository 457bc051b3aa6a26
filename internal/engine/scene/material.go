package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Illum is the illumination model of a material.
type Illum int

const (
	IllumDiffuse Illum = iota
	IllumDiffuseAndAmbient
	IllumSpecular
	IllumTranslucent
)

func (i Illum) String() string {
	switch i {
	case IllumDiffuse:
		return "diffuse"
	case IllumDiffuseAndAmbient:
		return "diffuse+ambient"
	case IllumSpecular:
		return "specular"
	case IllumTranslucent:
		return "translucent"
	}
	return "unknown"
}

// MaterialTraits are derived flags. The shader variant for a material
// depends only on these.
type MaterialTraits struct {
	Illum              Illum
	HasDiffuseTexture  bool
	HasEmissiveTexture bool
	HasBumpTexture     bool
	HasHeightTexture   bool
	HasSpecularity     bool
	HasTransparency    bool
	IsFading           bool
	IsFullyTransparent bool
	AlphaTest          bool
}

// Material is a surface description. The renderer never modifies it.
type Material struct {
	Name string

	Ka, Kd, Ks, Ke mgl32.Vec3
	// Ns is the specular exponent.
	Ns float32
	// D is the opacity in [0,1].
	D     float32
	Illum Illum

	// AlphaTest discards fragments below the scene transparency threshold.
	AlphaTest bool
	// Backface disables backface culling for this material.
	Backface bool
	// FadeValue is the visibility in [0,1] of time-dependent objects. Zero
	// is treated as fully visible when Fading is false.
	Fading    bool
	FadeValue float32

	Textures Textures
	Traits   MaterialTraits
}

// NewMaterial returns an opaque white diffuse material.
func NewMaterial(name string) *Material {
	m := &Material{
		Name:      name,
		Ka:        mgl32.Vec3{0.2, 0.2, 0.2},
		Kd:        mgl32.Vec3{0.8, 0.8, 0.8},
		Ns:        8,
		D:         1,
		Illum:     IllumDiffuseAndAmbient,
		FadeValue: 1,
	}
	m.CalcTraits()
	return m
}

// Opacity returns D scaled by the fade value.
func (m *Material) Opacity() float32 {
	if !m.Fading {
		return m.D
	}
	return m.D * m.FadeValue
}

// CalcTraits refreshes Traits from the material fields. Call it after
// changing any field.
func (m *Material) CalcTraits() {
	t := MaterialTraits{
		Illum:              m.Illum,
		HasDiffuseTexture:  m.Textures.Diffuse != 0,
		HasEmissiveTexture: m.Textures.Emissive != 0,
		HasBumpTexture:     m.Textures.Bump != 0,
		HasHeightTexture:   m.Textures.Height != 0,
		AlphaTest:          m.AlphaTest,
	}
	t.HasSpecularity = m.Illum == IllumSpecular && m.Ks != (mgl32.Vec3{})
	t.HasTransparency = m.Illum == IllumTranslucent || m.D < 1
	t.IsFading = m.Fading && m.FadeValue < 1
	t.IsFullyTransparent = m.Opacity() <= 0
	m.Traits = t
}
