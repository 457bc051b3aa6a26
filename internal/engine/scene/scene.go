// Package scene defines the boundary between the renderer and a loaded
// scenery: static geometry split into material groups, the materials
// themselves, the scene bounding box and the observer pose.
//
// Loading model files is not part of this package. Mesh is an in-memory
// implementation that procedural builders and tests fill directly.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/scenery3d/internal/gpu"
	"github.com/Faultbox/scenery3d/pkg/geom"
)

// Scene defaults.
const (
	DefaultCamNearZ              = 0.3
	DefaultCamFarZ               = 10000
	DefaultTransparencyThreshold = 0.5
	// DefaultShadowSplitWeight is out of [0,1], which selects the automatic weight.
	DefaultShadowSplitWeight = -1
	DefaultGridName          = "Unspecified Coordinate Frame"
)

// Info holds the per-scene rendering parameters.
type Info struct {
	CamNearZ float32
	CamFarZ  float32
	// ShadowFarZ bounds the shadow casting range, never beyond CamFarZ.
	ShadowFarZ            float32
	ShadowSplitWeight     float32
	TransparencyThreshold float32
	GridName              string
}

// DefaultInfo returns the parameters used when a scene specifies none.
func DefaultInfo() Info {
	return Info{
		CamNearZ:              DefaultCamNearZ,
		CamFarZ:               DefaultCamFarZ,
		ShadowFarZ:            DefaultCamFarZ,
		ShadowSplitWeight:     DefaultShadowSplitWeight,
		TransparencyThreshold: DefaultTransparencyThreshold,
		GridName:              DefaultGridName,
	}
}

// Normalize clamps ShadowFarZ to CamFarZ and fills a zero ShadowFarZ.
func (i Info) Normalize() Info {
	if i.ShadowFarZ <= 0 || i.ShadowFarZ > i.CamFarZ {
		i.ShadowFarZ = i.CamFarZ
	}
	return i
}

// MaterialGroup is a range of the index buffer sharing one material.
type MaterialGroup struct {
	StartIndex    int
	IndexCount    int
	MaterialIndex int
	// Centroid is the mean vertex position, used to depth sort transparent groups.
	Centroid mgl32.Vec3
}

// Object is a named, ordered list of material groups.
type Object struct {
	Name   string
	Groups []MaterialGroup
}

// Scene is a pre-loaded, pre-triangulated scenery the renderer draws.
type Scene interface {
	// IsGLReady reports whether the geometry has been uploaded.
	IsGLReady() bool
	// GLLoad uploads the geometry to the graphics device.
	GLLoad() error
	// GLBind binds the vertex and index buffers for drawing.
	GLBind()
	GLRelease()
	// GLDraw draws count indices starting at start.
	GLDraw(start, count int)

	Objects() []Object
	Material(index int) *Material
	AABB() geom.AABB
	Info() Info

	EyePosition() mgl64.Vec3
	ViewDirection() mgl64.Vec3
	// GridPosition is the eye position in the scene's grid coordinates
	// (easting, northing, height).
	GridPosition() mgl64.Vec3
	// EyeHeight is the eye height above the ground.
	EyeHeight() float64
}

// Textures referenced by a material. Zero means absent.
type Textures struct {
	Diffuse  gpu.Texture
	Emissive gpu.Texture
	Bump     gpu.Texture
	Height   gpu.Texture
}
