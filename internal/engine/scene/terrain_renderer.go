// Package scene renders computed terrain tiles and the contour
// post-process pass.
package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/krzyz/topo-renderer/internal/engine/scene/shaders"
	"github.com/krzyz/topo-renderer/internal/engine/shader"
	"github.com/krzyz/topo-renderer/internal/engine/terrain"
	"github.com/krzyz/topo-renderer/internal/geo"
	"github.com/krzyz/topo-renderer/pkg/math"
)

// tileEntry holds per-tile GPU resources.
type tileEntry struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	normalTex  uint32
	indexCount int32
	normalRot  math.Mat3
}

// TerrainRenderer draws terrain tiles with normals sampled from the
// precomputed normal-map textures.
type TerrainRenderer struct {
	program uint32

	// Uniform locations
	locViewProj  int32
	locNormalMap int32
	locNormalRot int32
	locSunDir    int32
	locAmbient   int32
	locDiffuse   int32
	locViewMode  int32

	tiles map[geo.GeoLocation]*tileEntry
}

// NewTerrainRenderer compiles the terrain shader.
func NewTerrainRenderer() (*TerrainRenderer, error) {
	program, err := shader.CompileProgram(shaders.TerrainVertexShader, shaders.TerrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	tr := &TerrainRenderer{
		program: program,
		tiles:   make(map[geo.GeoLocation]*tileEntry),
	}

	tr.locViewProj = shader.GetUniform(program, "uViewProj")
	tr.locNormalMap = shader.GetUniform(program, "uNormalMap")
	tr.locNormalRot = shader.GetUniform(program, "uNormalRot")
	tr.locSunDir = shader.GetUniform(program, "uSunDir")
	tr.locAmbient = shader.GetUniform(program, "uAmbient")
	tr.locDiffuse = shader.GetUniform(program, "uDiffuse")
	tr.locViewMode = shader.GetUniform(program, "uViewMode")

	return tr, nil
}

// UploadTile builds the tile mesh in the given tangent frame and uploads
// mesh plus normal map to the GPU. Re-uploading a resident tile replaces
// its resources, so seam normals refreshed by a late neighbor arrival
// take effect.
func (tr *TerrainRenderer) UploadTile(t *terrain.Tile, frame geo.TangentFrame) error {
	if t.Normals == nil {
		return fmt.Errorf("tile %s has no computed normals", t.Location)
	}

	tr.RemoveTile(t.Location)

	mesh := terrain.BuildMesh(t, frame.Transform)
	if len(mesh.Indices) == 0 {
		return fmt.Errorf("tile %s produced an empty mesh", t.Location)
	}

	entry := &tileEntry{indexCount: int32(len(mesh.Indices))}

	// Normals were computed against the tile-center tangent axes; one
	// rotation per tile carries them into the render frame.
	center := t.Transform.GeoCoordAt(float32(t.Width-1)/2, float32(t.Height-1)/2)
	entry.normalRot = frame.NormalRotation(center.Longitude, center.Latitude)

	gl.GenVertexArrays(1, &entry.vao)
	gl.BindVertexArray(entry.vao)

	// VBO
	gl.GenBuffers(1, &entry.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, entry.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*vertexSize, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// UV (location 1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// EBO
	gl.GenBuffers(1, &entry.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, entry.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	// Normal map texture
	gl.GenTextures(1, &entry.normalTex)
	gl.BindTexture(gl.TEXTURE_2D, entry.normalTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(t.Normals.Width), int32(t.Normals.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&t.Normals.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	tr.tiles[t.Location] = entry
	return nil
}

// RemoveTile releases the GPU resources of one tile.
func (tr *TerrainRenderer) RemoveTile(loc geo.GeoLocation) {
	entry, ok := tr.tiles[loc]
	if !ok {
		return
	}
	tr.destroyEntry(entry)
	delete(tr.tiles, loc)
}

// TileCount returns the number of resident tiles.
func (tr *TerrainRenderer) TileCount() int {
	return len(tr.tiles)
}

// Render draws every resident tile.
func (tr *TerrainRenderer) Render(viewProj math.Mat4, sunDir math.Vec3, ambient, diffuse float32, viewMode int32) {
	if len(tr.tiles) == 0 {
		return
	}

	gl.UseProgram(tr.program)
	gl.UniformMatrix4fv(tr.locViewProj, 1, false, &viewProj[0])
	gl.Uniform3f(tr.locSunDir, sunDir.X, sunDir.Y, sunDir.Z)
	gl.Uniform1f(tr.locAmbient, ambient)
	gl.Uniform1f(tr.locDiffuse, diffuse)
	gl.Uniform1i(tr.locViewMode, viewMode)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(tr.locNormalMap, 0)

	for _, entry := range tr.tiles {
		gl.UniformMatrix3fv(tr.locNormalRot, 1, false, entry.normalRot.Ptr())
		gl.BindTexture(gl.TEXTURE_2D, entry.normalTex)
		gl.BindVertexArray(entry.vao)
		gl.DrawElements(gl.TRIANGLES, entry.indexCount, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
}

func (tr *TerrainRenderer) destroyEntry(entry *tileEntry) {
	if entry.vao != 0 {
		gl.DeleteVertexArrays(1, &entry.vao)
	}
	if entry.vbo != 0 {
		gl.DeleteBuffers(1, &entry.vbo)
	}
	if entry.ebo != 0 {
		gl.DeleteBuffers(1, &entry.ebo)
	}
	if entry.normalTex != 0 {
		gl.DeleteTextures(1, &entry.normalTex)
	}
}

// Destroy releases all resources.
func (tr *TerrainRenderer) Destroy() {
	for loc, entry := range tr.tiles {
		tr.destroyEntry(entry)
		delete(tr.tiles, loc)
	}
	if tr.program != 0 {
		gl.DeleteProgram(tr.program)
		tr.program = 0
	}
}
