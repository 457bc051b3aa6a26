package glgpu

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/scenery3d/internal/gpu"
)

// requiredTextureUnits covers diffuse, emissive, bump, height and 4 cascades.
const requiredTextureUnits = 8

func probe(log *zap.Logger) gpu.Caps {
	caps := gpu.Caps{
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
	}
	caps.OpenGLES = strings.Contains(caps.Version, "OpenGL ES")

	// framebuffer objects, geometry shaders, depth textures and seamless
	// cube sampling are all core in 4.1
	caps.Framebuffers = true
	caps.GeometryShader = true
	caps.ShadowSupport = true
	caps.ShadowFiltering = !caps.OpenGLES
	caps.SeamlessCubemap = true

	var texSize, rbSize int32
	var viewport [2]int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &texSize)
	gl.GetIntegerv(gl.MAX_VIEWPORT_DIMS, &viewport[0])
	gl.GetIntegerv(gl.MAX_RENDERBUFFER_SIZE, &rbSize)
	caps.MaxFramebufferSize = int(min(texSize, rbSize, viewport[0], viewport[1]))

	var units, combined int32
	gl.GetIntegerv(gl.MAX_TEXTURE_IMAGE_UNITS, &units)
	gl.GetIntegerv(gl.MAX_COMBINED_TEXTURE_IMAGE_UNITS, &combined)
	caps.MaxTextureUnits = int(units)
	caps.MaxCombinedUnits = int(combined)

	log.Info("OpenGL context probed",
		zap.String("renderer", caps.Renderer),
		zap.String("version", caps.Version),
		zap.Int32("max_texture_size", texSize),
		zap.Int32("max_renderbuffer_size", rbSize),
		zap.Int32s("max_viewport_dims", viewport[:]),
		zap.Int("max_framebuffer_size", caps.MaxFramebufferSize),
		zap.Bool("geometry_shader", caps.GeometryShader),
		zap.Int("texture_units", caps.MaxTextureUnits),
		zap.Int("combined_texture_units", caps.MaxCombinedUnits),
	)
	if units < requiredTextureUnits || combined < requiredTextureUnits {
		log.Warn("insufficient texture units for all effects",
			zap.Int("have", int(min(units, combined))),
			zap.Int("want", requiredTextureUnits))
	}

	return caps
}
