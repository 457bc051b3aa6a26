// Package shaders provides embedded GLSL shader sources.
//
// Sources carry no #version line. Every feature switch they test is
// prepended as a #define with value 0 or 1 before compilation.
package shaders

import _ "embed"

// SceneVertexShader is the vertex shader for lit scene rendering.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneGeometryShader replicates scene triangles into the six cube layers.
//
//go:embed scene.geom
var SceneGeometryShader string

// SceneFragmentShader is the fragment shader for lit scene rendering.
//
//go:embed scene.frag
var SceneFragmentShader string

// DepthVertexShader is the vertex shader for shadow map passes.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the fragment shader for shadow map passes.
//
//go:embed depth.frag
var DepthFragmentShader string

// CubeVertexShader is the vertex shader for cubemap reprojection.
//
//go:embed cube.vert
var CubeVertexShader string

// CubeFragmentShader samples either the cube texture or one face texture.
//
//go:embed cube.frag
var CubeFragmentShader string

// DebugVertexShader is the vertex shader for debug line rendering.
//
//go:embed debug.vert
var DebugVertexShader string

// DebugFragmentShader is the fragment shader for debug line rendering.
//
//go:embed debug.frag
var DebugFragmentShader string
