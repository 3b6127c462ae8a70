// Package terrain holds elevation tiles and computes their normal maps.
//
// Each tile is an independent raster of elevation samples. Normals are
// estimated from a weighted ring of neighbor samples; seams and corners
// between adjacent tiles are stitched by dedicated kernels so that shading
// is continuous across tile boundaries.
package terrain

import (
	"fmt"

	"github.com/krzyz/topo-renderer/internal/geo"
)

// Tile is a rectangular raster of elevation samples in meters plus its
// geospatial transform. Elevations are stored row-major, rows growing
// southward. Adjacent tiles duplicate their shared boundary samples.
type Tile struct {
	Location   geo.GeoLocation
	Width      int
	Height     int
	Elevations []float32
	Transform  geo.CoordinateTransform

	// Normals is written by the compute kernels and read by the renderer.
	// Cells not yet covered by a kernel pass are zero and must not be
	// sampled before computation completes.
	Normals *NormalMap
}

// NewTile creates a tile and its (uncomputed) normal map.
func NewTile(loc geo.GeoLocation, width, height int, elevations []float32, tr geo.CoordinateTransform) (*Tile, error) {
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("tile %s: raster %dx%d too small for normal estimation", loc, width, height)
	}
	if len(elevations) != width*height {
		return nil, fmt.Errorf("tile %s: %d elevation samples for %dx%d raster", loc, len(elevations), width, height)
	}
	return &Tile{
		Location:   loc,
		Width:      width,
		Height:     height,
		Elevations: elevations,
		Transform:  tr,
		Normals:    NewNormalMap(width, height),
	}, nil
}

// ElevationAt returns the elevation sample at raster cell (x, y).
func (t *Tile) ElevationAt(x, y int) float32 {
	return t.Elevations[y*t.Width+x]
}

// sameGrid reports whether two tiles have compatible raster dimensions for
// seam stitching.
func sameGrid(a, b *Tile) bool {
	return a.Width == b.Width && a.Height == b.Height
}
