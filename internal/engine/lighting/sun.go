// Package lighting provides the directional sun light used for shading.
package lighting

import (
	gomath "math"

	"github.com/krzyz/topo-renderer/pkg/math"
)

// Sun is a directional light over the terrain. Angles are in degrees:
// Theta is the polar angle from the zenith (0 puts the sun straight
// overhead, 90 on the horizon) and Phi is the azimuth from local east.
type Sun struct {
	Theta float32
	Phi   float32

	Ambient float32
	Diffuse float32
}

// NewSun returns an afternoon sun with default shading strengths.
func NewSun() *Sun {
	return &Sun{
		Theta:   45,
		Phi:     135,
		Ambient: 0.1,
		Diffuse: 0.9,
	}
}

// Direction returns the unit vector pointing toward the sun in the
// z-up tangent frame.
func (s *Sun) Direction() math.Vec3 {
	theta := float64(math.Radians(s.Theta))
	phi := float64(math.Radians(s.Phi))

	st := gomath.Sin(theta)
	return math.Vec3{
		X: float32(st * gomath.Cos(phi)),
		Y: float32(st * gomath.Sin(phi)),
		Z: float32(gomath.Cos(theta)),
	}
}

// Advance moves the sun along its azimuth, wrapping at 360 degrees.
// Useful for a day cycle driven from the main loop.
func (s *Sun) Advance(degrees float32) {
	s.Phi += degrees
	for s.Phi >= 360 {
		s.Phi -= 360
	}
	for s.Phi < 0 {
		s.Phi += 360
	}
}
