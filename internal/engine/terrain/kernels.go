package terrain

import (
	"runtime"
	"sync"

	"github.com/krzyz/topo-renderer/internal/geo"
	"github.com/krzyz/topo-renderer/pkg/math"
)

// EdgeOrientation selects which boundary a pair of adjacent tiles shares.
type EdgeOrientation int

const (
	// EdgeLeftRight stitches the right column of the first tile to the
	// left column of the second.
	EdgeLeftRight EdgeOrientation = iota
	// EdgeTopBottom stitches the bottom row of the first tile to the top
	// row of the second.
	EdgeTopBottom
)

// sampleFunc returns the elevation of the stencil neighbor at offset
// (dx, dy) from the center cell, dx and dy in {-1, 0, 1}. Implementations
// may cross into a neighboring tile's raster.
type sampleFunc func(dx, dy int) float32

// estimateNormal computes the surface normal at a cell from its 8-neighbor
// elevation ring placed into local metric coordinates (x east, y north,
// z up). Six triangles around the center contribute cross products; the four
// diagonal triangles represent half a quad each and are weighted by 0.5.
//
// The interior, edge and corner kernels all feed this through their own
// samplers, keeping the formula in one place.
func estimateNormal(sample sampleFunc, scale geo.MetricScale) math.Vec3 {
	at := func(dx, dy int) math.Vec3 {
		// Raster rows grow southward, so the row above (dy = -1) is north.
		return math.Vec3{
			X: float32(dx) * scale.X,
			Y: float32(-dy) * scale.Y,
			Z: sample(dx, dy),
		}
	}

	c := at(0, 0)
	l := at(-1, 0)
	r := at(1, 0)
	t := at(0, -1)
	b := at(0, 1)
	tr := at(1, -1)
	br := at(1, 1)
	bl := at(-1, 1)

	sum := contribution(c, l, t).
		Add(contribution(c, t, tr).Scale(0.5)).
		Add(contribution(c, tr, r).Scale(0.5)).
		Add(contribution(c, r, br)).
		Add(contribution(c, b, bl).Scale(0.5)).
		Add(contribution(c, bl, l).Scale(0.5))

	// The winding above yields an inward-facing sum; flip it so normals
	// point away from the surface.
	n := sum.Neg()
	if n.LengthSq() < 1e-12 {
		// Degenerate ring (coincident samples); fall back to straight up
		// rather than propagating a NaN through normalization.
		return math.Vec3{Z: 1}
	}
	return n.Normalize()
}

func contribution(p0, p1, p2 math.Vec3) math.Vec3 {
	return p1.Sub(p0).Cross(p2.Sub(p1))
}

// ComputeInteriorNormals runs the interior kernel over every cell of the
// tile except the one-pixel border, which belongs to the edge and corner
// kernels. Rows are processed by a worker pool; cells are independent.
func ComputeInteriorNormals(t *Tile) {
	rows := make(chan int, t.Height)
	for y := 1; y < t.Height-1; y++ {
		rows <- y
	}
	close(rows)

	workers := runtime.NumCPU()
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for y := range rows {
				interiorRow(t, y)
			}
		}()
	}
	wg.Wait()
}

func interiorRow(t *Tile, y int) {
	if y < 1 || y >= t.Height-1 {
		return
	}
	scale := t.Transform.MetricScaleAt(float32(y))
	for x := 1; x < t.Width-1; x++ {
		n := estimateNormal(func(dx, dy int) float32 {
			return t.ElevationAt(x+dx, y+dy)
		}, scale)
		t.Normals.Set(x, y, n)
	}
}

// ComputeEdgeNormals runs the edge kernel along the shared boundary of two
// adjacent tiles, excluding the two endpoint cells which belong to corner
// junctions. The resulting normal is written identically into both tiles'
// normal maps. If either tile is absent or the rasters do not line up, the
// whole pass is skipped.
func ComputeEdgeNormals(a, b *Tile, orientation EdgeOrientation) {
	if a == nil || b == nil || !sameGrid(a, b) {
		return
	}
	switch orientation {
	case EdgeLeftRight:
		computeEdgeLeftRight(a, b)
	case EdgeTopBottom:
		computeEdgeTopBottom(a, b)
	}
}

// computeEdgeLeftRight stitches left's last column to right's first column.
// Both columns hold the same ground samples; stencil offsets dx <= 0 read
// the left tile, dx = +1 crosses into the right tile's second column.
func computeEdgeLeftRight(left, right *Tile) {
	w, h := left.Width, left.Height
	for y := 1; y < h-1; y++ {
		// Latitude varies along this seam, recompute per row.
		scale := left.Transform.MetricScaleAt(float32(y))
		n := estimateNormal(func(dx, dy int) float32 {
			if dx <= 0 {
				return left.ElevationAt(w-1+dx, y+dy)
			}
			return right.ElevationAt(1, y+dy)
		}, scale)

		left.Normals.Set(w-1, y, n)
		right.Normals.Set(0, y, n)
	}
}

// computeEdgeTopBottom stitches top's last row to bottom's first row. The
// whole seam lies on one raster row, so its latitude is constant and the
// metric scale is computed once.
func computeEdgeTopBottom(top, bottom *Tile) {
	w, h := top.Width, top.Height
	scale := top.Transform.MetricScaleAt(float32(h - 1))
	for x := 1; x < w-1; x++ {
		n := estimateNormal(func(dx, dy int) float32 {
			if dy <= 0 {
				return top.ElevationAt(x+dx, h-1+dy)
			}
			return bottom.ElevationAt(x+dx, 1)
		}, scale)

		top.Normals.Set(x, h-1, n)
		bottom.Normals.Set(x, 0, n)
	}
}

// ComputeCornerNormals runs the corner kernel for a four-tile junction. The
// quadrant names refer to raster orientation: tl is the tile north-west of
// the junction point, br south-east of it. One normal is produced and
// written into all four tiles' corner cells. If any of the four tiles is
// absent the junction is skipped entirely; partial stitching across two or
// three tiles is deliberately not attempted.
func ComputeCornerNormals(tl, tr, bl, br *Tile) {
	if tl == nil || tr == nil || bl == nil || br == nil {
		return
	}
	if !sameGrid(tl, tr) || !sameGrid(tl, bl) || !sameGrid(tl, br) {
		return
	}

	w, h := tl.Width, tl.Height
	scale := tl.Transform.MetricScaleAt(float32(h - 1))

	n := estimateNormal(func(dx, dy int) float32 {
		switch {
		case dx <= 0 && dy <= 0:
			return tl.ElevationAt(w-1+dx, h-1+dy)
		case dx > 0 && dy <= 0:
			return tr.ElevationAt(1, h-1+dy)
		case dx <= 0 && dy > 0:
			return bl.ElevationAt(w-1+dx, 1)
		default:
			return br.ElevationAt(1, 1)
		}
	}, scale)

	tl.Normals.Set(w-1, h-1, n)
	tr.Normals.Set(0, h-1, n)
	bl.Normals.Set(w-1, 0, n)
	br.Normals.Set(0, 0, n)
}
