package terrain

import "github.com/krzyz/topo-renderer/pkg/math"

// NormalMap stores one unit normal per raster cell as 8-bit RGBA, components
// mapped from [-1, 1] to [0, 255]. Alpha is unused and kept at 255 so the
// buffer uploads directly as an opaque texture.
type NormalMap struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewNormalMap allocates a zeroed normal map. A zero cell decodes to an
// invalid (non-unit) vector, which marks it as not yet computed.
func NewNormalMap(width, height int) *NormalMap {
	return &NormalMap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Set encodes a unit normal at cell (x, y).
func (m *NormalMap) Set(x, y int, n math.Vec3) {
	i := (y*m.Width + x) * 4
	m.Pix[i+0] = encodeComponent(n.X)
	m.Pix[i+1] = encodeComponent(n.Y)
	m.Pix[i+2] = encodeComponent(n.Z)
	m.Pix[i+3] = 255
}

// At decodes the normal at cell (x, y). The result carries up to one half
// quantization step of error per component and is not re-normalized.
func (m *NormalMap) At(x, y int) math.Vec3 {
	i := (y*m.Width + x) * 4
	return math.Vec3{
		X: decodeComponent(m.Pix[i+0]),
		Y: decodeComponent(m.Pix[i+1]),
		Z: decodeComponent(m.Pix[i+2]),
	}
}

// Computed reports whether cell (x, y) has been written by a kernel.
func (m *NormalMap) Computed(x, y int) bool {
	return m.Pix[(y*m.Width+x)*4+3] != 0
}

func encodeComponent(v float32) uint8 {
	scaled := (v*0.5 + 0.5) * 255.0
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return uint8(scaled + 0.5)
}

func decodeComponent(b uint8) float32 {
	return float32(b)/255.0*2.0 - 1.0
}
