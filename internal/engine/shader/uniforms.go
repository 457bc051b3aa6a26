package shader

// Uniform identifies a uniform shared by the renderer's programs.
type Uniform int

const (
	UniformMatProjection Uniform = iota
	UniformMatModelView
	UniformMatMVP
	UniformMatNormal
	// UniformMatCubeMVP is an array of six face matrices.
	UniformMatCubeMVP
	UniformMatShadow0
	UniformMatShadow1
	UniformMatShadow2
	UniformMatShadow3

	UniformLightDirectionView
	UniformMixAmbient
	UniformMixDiffuse
	UniformMixTorchDiffuse
	UniformMixEmissive
	UniformMixSpecular
	UniformMtlShininess
	UniformMtlAlpha
	UniformAlphaThreshold
	UniformTorchAttenuation

	UniformTexDiffuse
	UniformTexEmissive
	UniformTexBump
	UniformTexHeight
	UniformTexShadow0
	UniformTexShadow1
	UniformTexShadow2
	UniformTexShadow3

	// UniformVecSplitData holds the clip-space far boundary of each cascade.
	UniformVecSplitData
	// UniformVecLightOrthoScale is an array with one entry per cascade.
	UniformVecLightOrthoScale
	UniformVecColor

	uniformCount
)

var uniformNames = [uniformCount]string{
	UniformMatProjection: "u_mProjection",
	UniformMatModelView:  "u_mModelView",
	UniformMatMVP:        "u_mMVP",
	UniformMatNormal:     "u_mNormal",
	UniformMatCubeMVP:    "u_mCubeMVP",
	UniformMatShadow0:    "u_mShadow0",
	UniformMatShadow1:    "u_mShadow1",
	UniformMatShadow2:    "u_mShadow2",
	UniformMatShadow3:    "u_mShadow3",

	UniformLightDirectionView: "u_vLightDirectionView",
	UniformMixAmbient:         "u_vMixAmbient",
	UniformMixDiffuse:         "u_vMixDiffuse",
	UniformMixTorchDiffuse:    "u_vMixTorchDiffuse",
	UniformMixEmissive:        "u_vMixEmissive",
	UniformMixSpecular:        "u_vMixSpecular",
	UniformMtlShininess:       "u_vMatShininess",
	UniformMtlAlpha:           "u_vMatAlpha",
	UniformAlphaThreshold:     "u_fAlphaThresh",
	UniformTorchAttenuation:   "u_fTorchAttenuation",

	UniformTexDiffuse:  "u_texDiffuse",
	UniformTexEmissive: "u_texEmissive",
	UniformTexBump:     "u_texBump",
	UniformTexHeight:   "u_texHeight",
	UniformTexShadow0:  "u_texShadow0",
	UniformTexShadow1:  "u_texShadow1",
	UniformTexShadow2:  "u_texShadow2",
	UniformTexShadow3:  "u_texShadow3",

	UniformVecSplitData:       "u_vSplits",
	UniformVecLightOrthoScale: "u_vLightOrthoScale",
	UniformVecColor:           "u_vColor",
}

// Name returns the GLSL identifier of u.
func (u Uniform) Name() string {
	if u < 0 || u >= uniformCount {
		return ""
	}
	return uniformNames[u]
}

// ShadowMatrix returns the cascade matrix uniform of split i.
func ShadowMatrix(i int) Uniform { return UniformMatShadow0 + Uniform(i) }

// ShadowTexture returns the cascade sampler uniform of split i.
func ShadowTexture(i int) Uniform { return UniformTexShadow0 + Uniform(i) }
