// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// TerrainVertexShader is the vertex shader for terrain rendering.
//
//go:embed terrain.vert
var TerrainVertexShader string

// TerrainFragmentShader is the fragment shader for terrain rendering.
//
//go:embed terrain.frag
var TerrainFragmentShader string

// PostprocessVertexShader is the vertex shader for the fullscreen pass.
//
//go:embed postprocess.vert
var PostprocessVertexShader string

// PostprocessFragmentShader draws contours over the scene color.
//
//go:embed postprocess.frag
var PostprocessFragmentShader string
