package lighting

import (
	gomath "math"
	"testing"
)

func TestSunDirectionZenith(t *testing.T) {
	s := &Sun{Theta: 0, Phi: 0}
	d := s.Direction()
	if gomath.Abs(float64(d.Z-1)) > 1e-6 {
		t.Errorf("zenith sun direction = %v, want (0, 0, 1)", d)
	}
}

func TestSunDirectionHorizon(t *testing.T) {
	s := &Sun{Theta: 90, Phi: 0}
	d := s.Direction()
	if gomath.Abs(float64(d.X-1)) > 1e-6 || gomath.Abs(float64(d.Z)) > 1e-6 {
		t.Errorf("horizon sun direction = %v, want (1, 0, 0)", d)
	}

	s.Phi = 90
	d = s.Direction()
	if gomath.Abs(float64(d.Y-1)) > 1e-6 {
		t.Errorf("north horizon sun direction = %v, want (0, 1, 0)", d)
	}
}

func TestSunDirectionUnitLength(t *testing.T) {
	for theta := float32(0); theta <= 90; theta += 15 {
		for phi := float32(0); phi < 360; phi += 45 {
			s := &Sun{Theta: theta, Phi: phi}
			if l := s.Direction().Length(); gomath.Abs(float64(l-1)) > 1e-5 {
				t.Fatalf("direction at theta=%v phi=%v has length %v", theta, phi, l)
			}
		}
	}
}

func TestAdvanceWraps(t *testing.T) {
	s := &Sun{Phi: 350}
	s.Advance(20)
	if s.Phi != 10 {
		t.Errorf("phi = %v, want 10", s.Phi)
	}
	s.Advance(-30)
	if s.Phi != 340 {
		t.Errorf("phi = %v, want 340", s.Phi)
	}
}
