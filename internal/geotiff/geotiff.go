// Package geotiff decodes the single-channel float32 GeoTIFF heightmaps
// served by the terrain backend. It is not a general TIFF reader: one sample
// per pixel, 32-bit IEEE floats, strip layout, no compression or Deflate.
package geotiff

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"

	"github.com/klauspost/compress/zlib"

	"github.com/krzyz/topo-renderer/internal/geo"
	"github.com/krzyz/topo-renderer/pkg/math"
)

// TIFF tag IDs used by the decoder.
const (
	tagImageWidth          = 256
	tagImageLength         = 257
	tagBitsPerSample       = 258
	tagCompression         = 259
	tagStripOffsets        = 273
	tagSamplesPerPixel     = 277
	tagRowsPerStrip        = 278
	tagStripByteCounts     = 279
	tagPredictor           = 317
	tagSampleFormat        = 339
	tagModelPixelScale     = 33550
	tagModelTiepoint       = 33922
	tagModelTransformation = 34264
)

const (
	compressionNone    = 1
	compressionDeflate = 8
	// Adobe-style Deflate, emitted by some writers.
	compressionDeflateOld = 32946

	sampleFormatFloat = 3
)

// GeoTIFF is a decoded heightmap raster plus its GeoTIFF georeferencing tags.
type GeoTIFF struct {
	Width      int
	Height     int
	Samples    []float32
	PixelScale []float64
	TiePoints  []float64
}

// ElevationAt returns the sample at raster cell (x, y).
func (g *GeoTIFF) ElevationAt(x, y int) float32 {
	return g.Samples[y*g.Width+x]
}

// CoordinateTransform builds the raster-to-geodetic transform from the
// ModelPixelScale and ModelTiepoint tags. Files carrying a full
// ModelTransformation matrix are not supported, matching the subset the
// backend produces.
func (g *GeoTIFF) CoordinateTransform() (geo.CoordinateTransform, error) {
	if len(g.PixelScale) != 3 {
		return geo.CoordinateTransform{}, fmt.Errorf("ModelPixelScale should have 3 values, got %d", len(g.PixelScale))
	}
	if len(g.TiePoints) != 6 {
		return geo.CoordinateTransform{}, fmt.Errorf("ModelTiepoint should have 6 values, got %d", len(g.TiePoints))
	}
	return geo.CoordinateTransform{
		RasterPoint: math.Vec2{X: float32(g.TiePoints[0]), Y: float32(g.TiePoints[1])},
		ModelPoint:  math.Vec2{X: float32(g.TiePoints[3]), Y: float32(g.TiePoints[4])},
		PixelScale:  math.Vec2{X: float32(g.PixelScale[0]), Y: float32(g.PixelScale[1])},
	}, nil
}

type ifdEntry struct {
	typ    uint16
	count  uint32
	raw    [4]byte
	offset uint32
}

// Decode parses a GeoTIFF heightmap from memory.
func Decode(data []byte) (*GeoTIFF, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("truncated header")
	}

	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a TIFF file")
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("bad TIFF magic")
	}

	ifdOffset := order.Uint32(data[4:8])
	entries, err := parseIFD(data, order, ifdOffset)
	if err != nil {
		return nil, fmt.Errorf("parsing IFD: %w", err)
	}

	if _, ok := entries[tagModelTransformation]; ok {
		return nil, fmt.Errorf("ModelTransformation is not supported, expected ModelPixelScale and ModelTiepoint")
	}

	width, err := uintTag(entries, data, order, tagImageWidth)
	if err != nil {
		return nil, err
	}
	height, err := uintTag(entries, data, order, tagImageLength)
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty raster %dx%d", width, height)
	}

	if v, err := uintTagDefault(entries, data, order, tagBitsPerSample, 1); err != nil || v != 32 {
		return nil, fmt.Errorf("expected 32 bits per sample, got %d", v)
	}
	if v, err := uintTagDefault(entries, data, order, tagSamplesPerPixel, 1); err != nil || v != 1 {
		return nil, fmt.Errorf("expected 1 sample per pixel, got %d", v)
	}
	if v, err := uintTagDefault(entries, data, order, tagSampleFormat, 1); err != nil || v != sampleFormatFloat {
		return nil, fmt.Errorf("expected IEEE float samples, got sample format %d", v)
	}
	if v, err := uintTagDefault(entries, data, order, tagPredictor, 1); err != nil || v != 1 {
		return nil, fmt.Errorf("predictor %d is not supported", v)
	}

	compression, err := uintTagDefault(entries, data, order, tagCompression, compressionNone)
	if err != nil {
		return nil, err
	}

	offsets, err := uintSliceTag(entries, data, order, tagStripOffsets)
	if err != nil {
		return nil, err
	}
	counts, err := uintSliceTag(entries, data, order, tagStripByteCounts)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(counts) {
		return nil, fmt.Errorf("%d strip offsets but %d byte counts", len(offsets), len(counts))
	}

	raw := make([]byte, 0, width*height*4)
	for i := range offsets {
		off, n := int(offsets[i]), int(counts[i])
		if off < 0 || off+n > len(data) {
			return nil, fmt.Errorf("strip %d out of bounds", i)
		}
		strip, err := decompressStrip(data[off:off+n], compression)
		if err != nil {
			return nil, fmt.Errorf("strip %d: %w", i, err)
		}
		raw = append(raw, strip...)
	}

	if len(raw) < int(width)*int(height)*4 {
		return nil, fmt.Errorf("raster data truncated: %d bytes for %dx%d float32", len(raw), width, height)
	}

	samples := make([]float32, width*height)
	for i := range samples {
		samples[i] = gomath.Float32frombits(order.Uint32(raw[i*4:]))
	}

	g := &GeoTIFF{
		Width:   int(width),
		Height:  int(height),
		Samples: samples,
	}
	if e, ok := entries[tagModelPixelScale]; ok {
		g.PixelScale, err = doubleSlice(e, data, order)
		if err != nil {
			return nil, fmt.Errorf("ModelPixelScale: %w", err)
		}
	}
	if e, ok := entries[tagModelTiepoint]; ok {
		g.TiePoints, err = doubleSlice(e, data, order)
		if err != nil {
			return nil, fmt.Errorf("ModelTiepoint: %w", err)
		}
	}
	return g, nil
}

func parseIFD(data []byte, order binary.ByteOrder, offset uint32) (map[uint16]ifdEntry, error) {
	if int(offset)+2 > len(data) {
		return nil, fmt.Errorf("IFD offset out of bounds")
	}
	count := int(order.Uint16(data[offset : offset+2]))
	base := int(offset) + 2
	if base+count*12 > len(data) {
		return nil, fmt.Errorf("IFD truncated")
	}

	entries := make(map[uint16]ifdEntry, count)
	for i := 0; i < count; i++ {
		e := data[base+i*12 : base+i*12+12]
		entry := ifdEntry{
			typ:   order.Uint16(e[2:4]),
			count: order.Uint32(e[4:8]),
		}
		copy(entry.raw[:], e[8:12])
		entry.offset = order.Uint32(e[8:12])
		entries[order.Uint16(e[0:2])] = entry
	}
	return entries, nil
}

func typeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 0
	}
}

// valueBytes returns the raw payload of an entry, following the offset
// indirection for payloads larger than four bytes.
func valueBytes(e ifdEntry, data []byte) ([]byte, error) {
	size := typeSize(e.typ)
	if size == 0 {
		return nil, fmt.Errorf("unsupported field type %d", e.typ)
	}
	total := size * int(e.count)
	if total <= 4 {
		return e.raw[:total], nil
	}
	if int(e.offset)+total > len(data) {
		return nil, fmt.Errorf("field value out of bounds")
	}
	return data[e.offset : int(e.offset)+total], nil
}

func uintValues(e ifdEntry, data []byte, order binary.ByteOrder) ([]uint32, error) {
	raw, err := valueBytes(e, data)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, e.count)
	for i := range out {
		switch e.typ {
		case 3:
			out[i] = uint32(order.Uint16(raw[i*2:]))
		case 4:
			out[i] = order.Uint32(raw[i*4:])
		default:
			return nil, fmt.Errorf("expected SHORT or LONG, got type %d", e.typ)
		}
	}
	return out, nil
}

func uintTag(entries map[uint16]ifdEntry, data []byte, order binary.ByteOrder, tag uint16) (uint32, error) {
	e, ok := entries[tag]
	if !ok {
		return 0, fmt.Errorf("missing required tag %d", tag)
	}
	vals, err := uintValues(e, data, order)
	if err != nil {
		return 0, fmt.Errorf("tag %d: %w", tag, err)
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("tag %d has no values", tag)
	}
	return vals[0], nil
}

func uintTagDefault(entries map[uint16]ifdEntry, data []byte, order binary.ByteOrder, tag uint16, def uint32) (uint32, error) {
	if _, ok := entries[tag]; !ok {
		return def, nil
	}
	return uintTag(entries, data, order, tag)
}

func uintSliceTag(entries map[uint16]ifdEntry, data []byte, order binary.ByteOrder, tag uint16) ([]uint32, error) {
	e, ok := entries[tag]
	if !ok {
		return nil, fmt.Errorf("missing required tag %d", tag)
	}
	vals, err := uintValues(e, data, order)
	if err != nil {
		return nil, fmt.Errorf("tag %d: %w", tag, err)
	}
	return vals, nil
}

func doubleSlice(e ifdEntry, data []byte, order binary.ByteOrder) ([]float64, error) {
	if e.typ != 12 {
		return nil, fmt.Errorf("expected DOUBLE, got type %d", e.typ)
	}
	raw, err := valueBytes(e, data)
	if err != nil {
		return nil, err
	}
	out := make([]float64, e.count)
	for i := range out {
		out[i] = gomath.Float64frombits(order.Uint64(raw[i*8:]))
	}
	return out, nil
}

func decompressStrip(strip []byte, compression uint32) ([]byte, error) {
	switch compression {
	case compressionNone:
		return strip, nil
	case compressionDeflate, compressionDeflateOld:
		r, err := zlib.NewReader(bytes.NewReader(strip))
		if err != nil {
			return nil, fmt.Errorf("opening deflate stream: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("inflating strip: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression %d", compression)
	}
}
