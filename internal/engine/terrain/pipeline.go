package terrain

import (
	"sync"

	"go.uber.org/zap"

	"github.com/krzyz/topo-renderer/internal/geo"
)

// Pipeline owns the resident tile set and schedules normal computation.
//
// When a tile becomes resident its interior kernel runs first, then the edge
// kernel for every resident adjacent pair and the corner kernel for every
// junction that has all four tiles. Kernels for relations with missing
// neighbors are skipped; they run later when the missing tile arrives.
// All scheduling methods return only after the dispatched kernels have
// completed, so callers may upload normal maps immediately afterwards.
//
// Write disjointness is structural: the interior kernel never touches the
// one-pixel border, edge kernels own exactly the boundary minus endpoints,
// and the corner kernel owns exactly the four corner cells.
type Pipeline struct {
	mu    sync.RWMutex
	tiles map[geo.GeoLocation]*Tile
	log   *zap.Logger
}

// NewPipeline creates an empty pipeline. A nil logger disables logging.
func NewPipeline(log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		tiles: make(map[geo.GeoLocation]*Tile),
		log:   log,
	}
}

// AddTile makes a tile resident and computes every normal that the new
// residency makes computable. It returns the tiles whose normal maps were
// touched (always including the new tile) so the caller can refresh GPU
// textures.
func (p *Pipeline) AddTile(t *Tile) []*Tile {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tiles[t.Location] = t

	ComputeInteriorNormals(t)

	touched := map[geo.GeoLocation]*Tile{t.Location: t}

	// Seams with the four direct neighbors.
	north := p.tiles[t.Location.Shift(1, 0)]
	south := p.tiles[t.Location.Shift(-1, 0)]
	west := p.tiles[t.Location.Shift(0, -1)]
	east := p.tiles[t.Location.Shift(0, 1)]

	if east != nil {
		ComputeEdgeNormals(t, east, EdgeLeftRight)
		touched[east.Location] = east
	}
	if west != nil {
		ComputeEdgeNormals(west, t, EdgeLeftRight)
		touched[west.Location] = west
	}
	if north != nil {
		ComputeEdgeNormals(north, t, EdgeTopBottom)
		touched[north.Location] = north
	}
	if south != nil {
		ComputeEdgeNormals(t, south, EdgeTopBottom)
		touched[south.Location] = south
	}

	// The four junctions this tile participates in. Quadrants are in
	// raster orientation: tl is north-west of the junction point.
	junctions := [4][4]geo.GeoLocation{
		{t.Location.Shift(1, -1), t.Location.Shift(1, 0), t.Location.Shift(0, -1), t.Location},
		{t.Location.Shift(1, 0), t.Location.Shift(1, 1), t.Location, t.Location.Shift(0, 1)},
		{t.Location.Shift(0, -1), t.Location, t.Location.Shift(-1, -1), t.Location.Shift(-1, 0)},
		{t.Location, t.Location.Shift(0, 1), t.Location.Shift(-1, 0), t.Location.Shift(-1, 1)},
	}
	for _, j := range junctions {
		tl, tr, bl, br := p.tiles[j[0]], p.tiles[j[1]], p.tiles[j[2]], p.tiles[j[3]]
		if tl == nil || tr == nil || bl == nil || br == nil {
			continue
		}
		ComputeCornerNormals(tl, tr, bl, br)
		touched[tl.Location] = tl
		touched[tr.Location] = tr
		touched[bl.Location] = bl
		touched[br.Location] = br
	}

	p.log.Debug("tile normals computed",
		zap.Stringer("location", t.Location),
		zap.Int("width", t.Width),
		zap.Int("height", t.Height),
		zap.Int("touched", len(touched)),
	)

	result := make([]*Tile, 0, len(touched))
	for _, tile := range touched {
		result = append(result, tile)
	}
	return result
}

// RemoveTile evicts a tile. Seam normals already written into remaining
// neighbors stay valid; they are recomputed if the tile is reloaded.
func (p *Pipeline) RemoveTile(loc geo.GeoLocation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tiles, loc)
}

// Tile returns the resident tile at loc, or nil.
func (p *Pipeline) Tile(loc geo.GeoLocation) *Tile {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tiles[loc]
}

// Len returns the number of resident tiles.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.tiles)
}
