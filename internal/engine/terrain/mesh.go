package terrain

import (
	"github.com/krzyz/topo-renderer/pkg/math"
)

// Vertex is a terrain mesh vertex: a projected Cartesian position plus the
// normalized raster coordinate used to sample the tile's normal map.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// Mesh holds tile mesh data ready for GPU upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// ProjectFunc maps elevation (meters) and a geodetic coordinate (degrees) to
// a Cartesian position. geo.Transform projects onto the globe; a
// geo.TangentFrame's Transform projects into a local frame.
type ProjectFunc func(h, lonDeg, latDeg float32) math.Vec3

// BuildMesh projects every raster grid cell of a tile through project and
// triangulates the grid. Each quad is split along whichever diagonal
// connects the closer pair of opposing corners, which gives nicer triangles
// on ridges than a fixed split.
func BuildMesh(t *Tile, project ProjectFunc) *Mesh {
	w, h := t.Width, t.Height

	vertices := make([]Vertex, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			coord := t.Transform.GeoCoordAt(float32(x), float32(y))
			pos := project(t.ElevationAt(x, y), coord.Longitude, coord.Latitude)
			vertices = append(vertices, Vertex{
				Position: [3]float32{pos.X, pos.Y, pos.Z},
				UV: [2]float32{
					float32(x) / float32(w-1),
					float32(y) / float32(h-1),
				},
			})
		}
	}

	indices := make([]uint32, 0, (w-1)*(h-1)*6)
	pos := func(i uint32) math.Vec3 {
		p := vertices[i].Position
		return math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			nw := uint32(y*w + x)
			ne := nw + 1
			sw := nw + uint32(w)
			se := sw + 1

			nwse := pos(nw).Sub(pos(se)).LengthSq()
			nesw := pos(ne).Sub(pos(sw)).LengthSq()
			if nwse <= nesw {
				indices = append(indices,
					nw, sw, se,
					nw, se, ne,
				)
			} else {
				indices = append(indices,
					nw, sw, ne,
					ne, sw, se,
				)
			}
		}
	}

	return &Mesh{Vertices: vertices, Indices: indices}
}
