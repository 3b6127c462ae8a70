package geo

import "github.com/krzyz/topo-renderer/pkg/math"

// GeoCoord is a geodetic coordinate in degrees.
type GeoCoord struct {
	Longitude float32
	Latitude  float32
}

// CoordinateTransform is the affine mapping between raster grid coordinates
// and geodetic model coordinates of a tile. Raster rows grow downward while
// latitude grows upward, hence the sign flip on the y pixel scale.
type CoordinateTransform struct {
	RasterPoint math.Vec2
	ModelPoint  math.Vec2
	PixelScale  math.Vec2
}

// ToModel converts a raster coordinate to a geodetic (lon, lat) coordinate.
func (t CoordinateTransform) ToModel(coord math.Vec2) math.Vec2 {
	return math.Vec2{
		X: (coord.X-t.RasterPoint.X)*t.PixelScale.X + t.ModelPoint.X,
		Y: (coord.Y-t.RasterPoint.Y)*-t.PixelScale.Y + t.ModelPoint.Y,
	}
}

// ToRaster converts a geodetic (lon, lat) coordinate to a raster coordinate.
func (t CoordinateTransform) ToRaster(coord math.Vec2) math.Vec2 {
	return math.Vec2{
		X: (coord.X-t.ModelPoint.X)/t.PixelScale.X + t.RasterPoint.X,
		Y: (coord.Y-t.ModelPoint.Y)/-t.PixelScale.Y + t.RasterPoint.Y,
	}
}

// GeoCoordAt returns the geodetic coordinate of a raster grid cell.
func (t CoordinateTransform) GeoCoordAt(x, y float32) GeoCoord {
	model := t.ToModel(math.Vec2{X: x, Y: y})
	return GeoCoord{Longitude: model.X, Latitude: model.Y}
}

// MetricScale is the size of one raster pixel in meters at a given latitude.
// A degree of longitude shrinks toward the poles, so Y carries the
// cos(latitude) factor and must be recomputed per raster row.
type MetricScale struct {
	X float32
	Y float32
}

// MetricScaleAt computes the per-pixel metric scale for a tile transform at
// the latitude of raster row y.
func (t CoordinateTransform) MetricScaleAt(y float32) MetricScale {
	lat := t.GeoCoordAt(0, y).Latitude
	return MetricScaleAtLatitude(t.PixelScale, lat)
}

// MetricScaleAtLatitude computes the per-pixel metric scale from a pixel
// scale in degrees and a latitude in degrees.
func MetricScaleAtLatitude(pixelScale math.Vec2, latDeg float32) MetricScale {
	return MetricScale{
		X: math.Radians(abs(pixelScale.X)) * R0,
		Y: math.Radians(abs(pixelScale.Y)) * R0 * cos(math.Radians(latDeg)),
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
