package geo

import (
	gomath "math"

	"github.com/krzyz/topo-renderer/pkg/math"
)

// R0 is the reference sphere radius in meters used for the Earth embedding.
const R0 float32 = 6_371_000.0

// Transform projects a geodetic coordinate plus elevation h (meters) onto
// the reference sphere.
func Transform(h, lonDeg, latDeg float32) math.Vec3 {
	r := R0 + h
	lon := math.Radians(lonDeg)
	lat := math.Radians(latDeg)
	return math.Vec3{
		X: r * cos(lat) * cos(lon),
		Y: r * cos(lat) * sin(lon),
		Z: r * sin(lat),
	}
}

// ToGeodetic recovers the geodetic coordinate and elevation of a Cartesian
// position produced by Transform.
func ToGeodetic(p math.Vec3) (h, lonDeg, latDeg float32) {
	r := p.Length()
	lat := float32(gomath.Asin(float64(p.Z / r)))
	lon := float32(gomath.Atan2(float64(p.Y), float64(p.X)))
	return r - R0, math.Degrees(lon), math.Degrees(lat)
}

// TangentFrame is a local frame for close-range rendering around a reference
// point: the reference point sits at the origin with z pointing away from the
// Earth's center.
type TangentFrame struct {
	Origin GeoCoord
	rot    math.Mat3
}

// NewTangentFrame builds a tangent frame anchored at the given reference
// point on the sphere surface.
func NewTangentFrame(origin GeoCoord) TangentFrame {
	lon := math.Radians(origin.Longitude)
	lat := math.Radians(origin.Latitude)
	rot := math.Rotation3Y(lat - gomath.Pi/2).Mul(math.Rotation3Z(-lon))
	return TangentFrame{Origin: origin, rot: rot}
}

// Transform projects a geodetic coordinate plus elevation into the tangent
// frame. At the frame origin it yields (0, 0, h), agreeing with the spherical
// embedding up to the frame rotation and R0 offset.
func (f TangentFrame) Transform(h, lonDeg, latDeg float32) math.Vec3 {
	p := f.rot.MulVec3(Transform(h, lonDeg, latDeg))
	return math.Vec3{X: p.X, Y: p.Y, Z: p.Z - R0}
}

// NormalRotation returns the rotation taking a tile-local east/north/up
// normal at (lon, lat) into this frame.
func (f TangentFrame) NormalRotation(lonDeg, latDeg float32) math.Mat3 {
	return f.rot.Mul(NormalRotation(lonDeg, latDeg))
}

// NormalRotation returns the rotation taking a tile-local east/north/up
// normal into the world frame of the spherical embedding at (lon, lat).
func NormalRotation(lonDeg, latDeg float32) math.Mat3 {
	lon := math.Radians(lonDeg)
	lat := math.Radians(latDeg)

	east := math.Vec3{X: -sin(lon), Y: cos(lon), Z: 0}
	north := math.Vec3{X: -sin(lat) * cos(lon), Y: -sin(lat) * sin(lon), Z: cos(lat)}
	up := math.Vec3{X: cos(lat) * cos(lon), Y: cos(lat) * sin(lon), Z: sin(lat)}

	return math.Mat3{
		east.X, east.Y, east.Z,
		north.X, north.Y, north.Z,
		up.X, up.Y, up.Z,
	}
}

func sin(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos(x float32) float32 { return float32(gomath.Cos(float64(x))) }
