package renderer

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/engine/lighting"
	"github.com/Faultbox/scenery3d/internal/engine/scene"
	"github.com/Faultbox/scenery3d/internal/engine/shader"
	"github.com/Faultbox/scenery3d/internal/engine/shadow"
	"github.com/Faultbox/scenery3d/internal/gpu"
)

// Material texture units.
const (
	unitDiffuse = iota
	unitEmissive
	unitBump
	unitHeight
)

// passState tracks the GPU state of one drawArrays call so redundant
// switches can be skipped.
type passState struct {
	params       shader.Params
	shading      bool
	additive     bool
	lastMaterial *scene.Material
	program      *shader.Program
	seen         map[*shader.Program]bool
	cull         bool
	blend        bool
	transparent  []*scene.MaterialGroup
}

// drawArrays draws every visible material group of the scene with the
// current matrices. Shading passes defer translucent and fading groups and
// draw them back to front; depth passes skip groups too transparent to
// cast shadows. It returns false when a shader is unavailable.
func (r *Renderer) drawArrays(params shader.Params, shading, additive bool) bool {
	switch r.light.Caster {
	case lighting.CasterVenus:
		// sharper shadows for a point-like source
		params.ShadowFilterQuality = shader.FilterOff
	case lighting.CasterNone:
		params.Shadows = false
	}

	sc := r.sc
	sc.GLBind()

	ps := &r.pass
	ps.params = params
	ps.shading = shading
	ps.additive = additive
	ps.lastMaterial = nil
	ps.program = nil
	ps.cull = true
	ps.blend = false
	ps.transparent = ps.transparent[:0]
	clear(ps.seen)

	ok := true
objects:
	for _, obj := range sc.Objects() {
		for i := range obj.Groups {
			g := &obj.Groups[i]
			mat := sc.Material(g.MaterialIndex)
			if mat == nil || mat.Traits.IsFullyTransparent {
				continue
			}
			if shading {
				if mat.Traits.HasTransparency || mat.Traits.IsFading {
					ps.transparent = append(ps.transparent, g)
					continue
				}
			} else if mat.Opacity() < shadowCasterOpacity {
				continue
			}
			if !r.drawMaterialGroup(g, mat) {
				ok = false
				break objects
			}
		}
	}

	if ok && len(ps.transparent) > 0 {
		eye := vec32(sc.EyePosition())
		slices.SortStableFunc(ps.transparent, func(a, b *scene.MaterialGroup) int {
			da := a.Centroid.Sub(eye).LenSqr()
			db := b.Centroid.Sub(eye).LenSqr()
			switch {
			case da > db:
				return -1
			case da < db:
				return 1
			}
			return 0
		})
		for _, g := range ps.transparent {
			if !r.drawMaterialGroup(g, sc.Material(g.MaterialIndex)) {
				ok = false
				break
			}
		}
	}

	sc.GLRelease()
	if !ps.cull {
		r.dev.Enable(gpu.CullFace)
	}
	if ps.blend {
		r.dev.Disable(gpu.Blend)
	}
	return ok
}

// drawMaterialGroup issues the draw call of g, switching shader, material
// uniforms and blend/cull state only when the material changes.
func (r *Renderer) drawMaterialGroup(g *scene.MaterialGroup, mat *scene.Material) bool {
	ps := &r.pass
	dev := r.dev

	if ps.lastMaterial != mat {
		r.stats.MaterialSwitches++
		ps.lastMaterial = mat

		prog, err := r.shaders.Scene(ps.params, mat.Traits)
		if err != nil {
			r.log.Error("no shader for material", zap.String("material", mat.Name), zap.Error(err))
			r.message(MsgShaderError)
			return false
		}
		if prog != ps.program {
			ps.program = prog
			prog.Bind()
			if !ps.seen[prog] {
				r.stats.ShaderSwitches++
				if ps.shading {
					r.setupPassUniforms(prog)
					r.setupFrameUniforms(prog)
				} else {
					prog.SetMat4(shader.UniformMatMVP, r.projection.Mul4(r.modelView))
					prog.SetFloat(shader.UniformAlphaThreshold, r.info.TransparencyThreshold)
				}
				ps.seen[prog] = true
			}
		}

		if ps.shading {
			r.setupMaterialUniforms(prog, mat)
		} else if mat.Textures.Diffuse != 0 {
			// alpha tested casters
			dev.BindTexture(unitDiffuse, gpu.Texture2D, mat.Textures.Diffuse)
			prog.SetInt(shader.UniformTexDiffuse, unitDiffuse)
		}

		if ps.shading && (mat.Traits.HasTransparency || mat.Traits.IsFading) {
			if !ps.blend {
				dev.Enable(gpu.Blend)
				if ps.additive {
					// keeps the captured faces' alpha usable for premultiplied compositing
					dev.BlendFuncSeparate(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha, gpu.BlendOne, gpu.BlendOneMinusSrcAlpha)
				} else {
					dev.BlendFunc(gpu.BlendSrcAlpha, gpu.BlendOneMinusSrcAlpha)
				}
				ps.blend = true
			}
		} else if ps.blend {
			dev.Disable(gpu.Blend)
			ps.blend = false
		}

		if ps.cull && mat.Backface {
			dev.Disable(gpu.CullFace)
			ps.cull = false
		} else if !ps.cull && !mat.Backface {
			dev.Enable(gpu.CullFace)
			ps.cull = true
		}
	}

	r.sc.GLDraw(g.StartIndex, g.IndexCount)
	r.stats.Models++
	r.stats.Triangles += g.IndexCount / 3
	return true
}

// setupPassUniforms sets what stays constant for a program during one pass.
func (r *Renderer) setupPassUniforms(prog *shader.Program) {
	prog.SetMat4(shader.UniformMatProjection, r.projection)
	prog.SetFloat(shader.UniformAlphaThreshold, r.info.TransparencyThreshold)
	prog.SetFloat(shader.UniformTorchAttenuation, r.light.TorchAttenuation)

	if r.params.Shadows && r.shadows.Created() && prog.Has(shader.UniformVecSplitData) {
		prog.SetVec4(shader.UniformVecSplitData, r.shadows.SplitData(r.projection))
		r.shadows.Bind()
		for i := 0; i < r.shadows.Splits(); i++ {
			prog.SetInt(shader.ShadowTexture(i), int32(shadow.FirstTextureUnit+i))
			prog.SetMat4(shader.ShadowMatrix(i), r.shadows.Cascade(i).Lookup)
		}
		if r.params.ShadowFilterQuality.Filtered() {
			prog.SetVec4s(shader.UniformVecLightOrthoScale, r.shadows.OrthoScales())
		}
	}

	if r.cubeMVP != nil && prog.Has(shader.UniformMatCubeMVP) {
		prog.SetMat4s(shader.UniformMatCubeMVP, r.cubeMVP)
	}
}

// setupFrameUniforms sets the transforms and the view-space light direction.
func (r *Renderer) setupFrameUniforms(prog *shader.Program) {
	prog.SetMat4(shader.UniformMatMVP, r.projection.Mul4(r.modelView))
	prog.SetMat4(shader.UniformMatModelView, r.modelView)

	if prog.Has(shader.UniformMatNormal) {
		normal := normalMatrix(r.modelView)
		prog.SetMat3(shader.UniformMatNormal, normal)
		prog.SetVec3(shader.UniformLightDirectionView, normal.Mul3x1(r.light.Direction))
	}
}

// normalMatrix is the inverse transpose of the upper 3x3 of mv.
func normalMatrix(mv mgl32.Mat4) mgl32.Mat3 {
	return mv.Mat3().Inv().Transpose()
}

// setupMaterialUniforms mixes the material colors with the light and binds
// its textures.
func (r *Renderer) setupMaterialUniforms(prog *shader.Program, mat *scene.Material) {
	li := &r.light
	prog.SetVec3(shader.UniformMixAmbient, mulVec(mat.Ka, li.Ambient))
	prog.SetVec3(shader.UniformMixDiffuse, mulVec(mat.Kd, li.Directional))
	prog.SetVec3(shader.UniformMixTorchDiffuse, mulVec(mat.Kd, li.TorchDiffuse))
	prog.SetVec3(shader.UniformMixEmissive, mulVec(mat.Ke, li.Emissive))
	prog.SetVec3(shader.UniformMixSpecular, mulVec(mat.Ks, li.Specular))
	prog.SetFloat(shader.UniformMtlShininess, mat.Ns)
	prog.SetFloat(shader.UniformMtlAlpha, materialAlpha(mat))

	dev := r.dev
	t := mat.Traits
	if t.HasDiffuseTexture {
		dev.BindTexture(unitDiffuse, gpu.Texture2D, mat.Textures.Diffuse)
		prog.SetInt(shader.UniformTexDiffuse, unitDiffuse)
	}
	if t.HasEmissiveTexture {
		dev.BindTexture(unitEmissive, gpu.Texture2D, mat.Textures.Emissive)
		prog.SetInt(shader.UniformTexEmissive, unitEmissive)
	}
	if r.params.Bump && t.HasBumpTexture {
		dev.BindTexture(unitBump, gpu.Texture2D, mat.Textures.Bump)
		prog.SetInt(shader.UniformTexBump, unitBump)
	}
	if r.params.Bump && t.HasHeightTexture {
		dev.BindTexture(unitHeight, gpu.Texture2D, mat.Textures.Height)
		prog.SetInt(shader.UniformTexHeight, unitHeight)
	}
}

// materialAlpha is 1 for opaque materials so captured cube faces stay
// opaque, the opacity otherwise, scaled by the fade value when fading.
func materialAlpha(mat *scene.Material) float32 {
	alpha := float32(1)
	if mat.Traits.HasTransparency {
		alpha = mat.D
	}
	if mat.Traits.IsFading {
		alpha *= mat.FadeValue
	}
	return alpha
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
