package terrain

import (
	"testing"

	"github.com/krzyz/topo-renderer/internal/geo"
)

func TestPipelineStitchesArrivingTiles(t *testing.T) {
	p := NewPipeline(nil)

	// Four tiles arriving out of order around the junction at 50N 21E.
	tiles := []*Tile{
		makeTile(t, 49, 21), // br of the junction
		makeTile(t, 50, 20), // tl
		makeTile(t, 49, 20), // bl
		makeTile(t, 50, 21), // tr
	}
	for _, tile := range tiles {
		p.AddTile(tile)
	}

	tl := p.Tile(geo.FromDegrees(50, 20))
	tr := p.Tile(geo.FromDegrees(50, 21))
	bl := p.Tile(geo.FromDegrees(49, 20))
	br := p.Tile(geo.FromDegrees(49, 21))
	w, h := tl.Width, tl.Height

	// Every cell of every tile must now be computed.
	for name, tile := range map[string]*Tile{"tl": tl, "tr": tr, "bl": bl, "br": br} {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// Outer boundary of the 2x2 block has no neighbors and
				// stays uncomputed; only check the stitched cells.
				interiorX := x > 0 && x < w-1
				interiorY := y > 0 && y < h-1
				sharedX := (x == w-1 && (tile == tl || tile == bl)) || (x == 0 && (tile == tr || tile == br))
				sharedY := (y == h-1 && (tile == tl || tile == tr)) || (y == 0 && (tile == bl || tile == br))

				shouldBe := (interiorX || sharedX) && (interiorY || sharedY)
				if shouldBe && !tile.Normals.Computed(x, y) {
					t.Fatalf("%s cell (%d, %d) should be computed", name, x, y)
				}
			}
		}
	}

	// Seam rows/columns agree pairwise.
	for y := 1; y < h-1; y++ {
		if tl.Normals.At(w-1, y) != tr.Normals.At(0, y) {
			t.Fatalf("tl/tr seam differs at row %d", y)
		}
		if bl.Normals.At(w-1, y) != br.Normals.At(0, y) {
			t.Fatalf("bl/br seam differs at row %d", y)
		}
	}
	for x := 1; x < w-1; x++ {
		if tl.Normals.At(x, h-1) != bl.Normals.At(x, 0) {
			t.Fatalf("tl/bl seam differs at column %d", x)
		}
		if tr.Normals.At(x, h-1) != br.Normals.At(x, 0) {
			t.Fatalf("tr/br seam differs at column %d", x)
		}
	}

	// All four tiles agree at the junction point.
	corner := tl.Normals.At(w-1, h-1)
	if tr.Normals.At(0, h-1) != corner ||
		bl.Normals.At(w-1, 0) != corner ||
		br.Normals.At(0, 0) != corner {
		t.Error("junction normal differs between the four tiles")
	}
}

func TestPipelineReportsTouchedTiles(t *testing.T) {
	p := NewPipeline(nil)

	first := p.AddTile(makeTile(t, 49, 20))
	if len(first) != 1 {
		t.Fatalf("lone tile should touch only itself, touched %d", len(first))
	}

	second := p.AddTile(makeTile(t, 49, 21))
	if len(second) != 2 {
		t.Fatalf("adjacent tile should touch both tiles, touched %d", len(second))
	}
}

func TestPipelineLoneTileHasUncomputedBorder(t *testing.T) {
	p := NewPipeline(nil)
	tile := makeTile(t, 49, 20)
	p.AddTile(tile)

	if tile.Normals.Computed(0, 0) || tile.Normals.Computed(tile.Width-1, tile.Height/2) {
		t.Error("border of a tile without neighbors must stay uncomputed")
	}
}

func TestPipelineRemoveAndReload(t *testing.T) {
	p := NewPipeline(nil)
	loc := geo.FromDegrees(49, 20)

	p.AddTile(makeTile(t, 49, 20))
	p.AddTile(makeTile(t, 49, 21))
	p.RemoveTile(loc)

	if p.Tile(loc) != nil {
		t.Fatal("removed tile still resident")
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}

	// Reload recomputes the seam against the still-resident neighbor.
	reloaded := makeTile(t, 49, 20)
	touched := p.AddTile(reloaded)
	if len(touched) != 2 {
		t.Fatalf("reload should re-stitch the seam, touched %d", len(touched))
	}
	if !reloaded.Normals.Computed(reloaded.Width-1, reloaded.Height/2) {
		t.Error("reloaded tile seam not recomputed")
	}
}
