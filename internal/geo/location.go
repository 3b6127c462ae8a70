// Package geo provides geodetic coordinates, tile geolocation keys and the
// raster-to-geodetic projection used by the terrain pipeline.
package geo

import (
	"fmt"
	"strconv"
)

// GeoLocation identifies a one-degree terrain tile by the integer geodetic
// coordinate of its origin, e.g. 49N 20E.
type GeoLocation struct {
	Latitude  Latitude
	Longitude Longitude
}

// Latitude is a whole-degree latitude with hemisphere direction.
type Latitude struct {
	Degree    int
	Direction LatitudeDirection
}

// Longitude is a whole-degree longitude with hemisphere direction.
type Longitude struct {
	Degree    int
	Direction LongitudeDirection
}

// LatitudeDirection is the N/S hemisphere marker.
type LatitudeDirection byte

// LongitudeDirection is the E/W hemisphere marker.
type LongitudeDirection byte

const (
	North LatitudeDirection = 'N'
	South LatitudeDirection = 'S'

	East LongitudeDirection = 'E'
	West LongitudeDirection = 'W'
)

func (l Latitude) String() string {
	return fmt.Sprintf("%d%c", l.Degree, l.Direction)
}

func (l Longitude) String() string {
	return fmt.Sprintf("%d%c", l.Degree, l.Direction)
}

func (g GeoLocation) String() string {
	return fmt.Sprintf("%s %s", g.Latitude, g.Longitude)
}

// Degrees returns the signed (latitude, longitude) in degrees.
func (g GeoLocation) Degrees() (lat, lon int) {
	lat = g.Latitude.Degree
	if g.Latitude.Direction == South {
		lat = -lat
	}
	lon = g.Longitude.Degree
	if g.Longitude.Direction == West {
		lon = -lon
	}
	return lat, lon
}

// FromDegrees builds a GeoLocation from signed whole degrees.
func FromDegrees(lat, lon int) GeoLocation {
	g := GeoLocation{
		Latitude:  Latitude{Degree: lat, Direction: North},
		Longitude: Longitude{Degree: lon, Direction: East},
	}
	if lat < 0 {
		g.Latitude = Latitude{Degree: -lat, Direction: South}
	}
	if lon < 0 {
		g.Longitude = Longitude{Degree: -lon, Direction: West}
	}
	return g
}

// Shift returns the location moved by whole degrees north and east,
// wrapping longitude at the antimeridian.
func (g GeoLocation) Shift(dLat, dLon int) GeoLocation {
	lat, lon := g.Degrees()
	lat += dLat
	lon += dLon
	for lon >= 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return FromDegrees(lat, lon)
}

// RequestParams encodes the location as backend query parameters.
func (g GeoLocation) RequestParams() string {
	return fmt.Sprintf("latitude=%s&longitude=%s", g.Latitude, g.Longitude)
}

// ParseLocation parses strings like "49N 20E".
func ParseLocation(s string) (GeoLocation, error) {
	var latStr, lonStr string
	if _, err := fmt.Sscanf(s, "%s %s", &latStr, &lonStr); err != nil {
		return GeoLocation{}, fmt.Errorf("parsing location %q: %w", s, err)
	}

	lat, err := parseDegree(latStr)
	if err != nil {
		return GeoLocation{}, fmt.Errorf("parsing latitude %q: %w", latStr, err)
	}
	lon, err := parseDegree(lonStr)
	if err != nil {
		return GeoLocation{}, fmt.Errorf("parsing longitude %q: %w", lonStr, err)
	}

	g := GeoLocation{}
	switch lat.dir {
	case 'N', 'S':
		g.Latitude = Latitude{Degree: lat.deg, Direction: LatitudeDirection(lat.dir)}
	default:
		return GeoLocation{}, fmt.Errorf("latitude direction must be N or S, got %q", lat.dir)
	}
	switch lon.dir {
	case 'E', 'W':
		g.Longitude = Longitude{Degree: lon.deg, Direction: LongitudeDirection(lon.dir)}
	default:
		return GeoLocation{}, fmt.Errorf("longitude direction must be E or W, got %q", lon.dir)
	}
	return g, nil
}

type degreeDir struct {
	deg int
	dir byte
}

func parseDegree(s string) (degreeDir, error) {
	if len(s) < 2 {
		return degreeDir{}, fmt.Errorf("too short")
	}
	deg, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return degreeDir{}, err
	}
	if deg < 0 {
		return degreeDir{}, fmt.Errorf("degree must be non-negative, direction carries the sign")
	}
	return degreeDir{deg: deg, dir: s[len(s)-1]}, nil
}
