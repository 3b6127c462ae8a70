package math

import (
	gomath "math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if n.X != 0.6 || n.Y != 0.8 {
		t.Errorf("Vec3.Normalize() = %v, want (0.6, 0.8, 0)", n)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	got := (Vec3{}).Normalize()
	if got != (Vec3{}) {
		t.Errorf("Normalize(zero) = %v, want zero", got)
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); gomath.Abs(float64(got)-gomath.Pi) > 1e-6 {
		t.Errorf("Radians(180) = %v, want pi", got)
	}
	if got := Degrees(gomath.Pi / 2); gomath.Abs(float64(got)-90) > 1e-4 {
		t.Errorf("Degrees(pi/2) = %v, want 90", got)
	}
}

func TestMat3MulVec3(t *testing.T) {
	// Quarter turn around Z sends +X to +Y.
	m := Rotation3Z(Radians(90))
	got := m.MulVec3(Vec3{1, 0, 0})
	if gomath.Abs(float64(got.X)) > 1e-6 || gomath.Abs(float64(got.Y)-1) > 1e-6 {
		t.Errorf("Rotation3Z(90deg) * x = %v, want ~(0, 1, 0)", got)
	}
}

func TestMat3TransposeOfRotationIsInverse(t *testing.T) {
	m := Rotation3X(0.3).Mul(Rotation3Z(1.1))
	id := m.Mul(m.Transpose())
	want := Identity3()
	for i := range id {
		if gomath.Abs(float64(id[i]-want[i])) > 1e-5 {
			t.Fatalf("m * m^T != I at %d: got %v", i, id)
		}
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := Perspective(Radians(45), 16.0/9.0, 50, 500000)
	got := m.Mul(Identity())
	if got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
}

func TestLookToDirection(t *testing.T) {
	// Looking down -Z from origin: -Z maps to the view forward axis.
	view := LookTo(Vec3{}, Vec3{0, 0, -1}, Vec3{0, 1, 0})
	p := view.TransformPoint(Vec3{0, 0, -10})
	if p.Z >= 0 {
		t.Errorf("point ahead of camera should have negative view z, got %v", p)
	}
}

func TestQuatRotationArc(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec3
	}{
		{"x to y", Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"y to z", Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"antiparallel", Vec3{0, 0, 1}, Vec3{0, 0, -1}},
		{"identity", Vec3{1, 0, 0}, Vec3{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := QuatRotationArc(tt.from, tt.to)
			got := q.RotateVec3(tt.from)
			if got.Distance(tt.to) > 1e-5 {
				t.Errorf("rotating %v by arc quat = %v, want %v", tt.from, got, tt.to)
			}
		})
	}
}

func TestQuatRotateVec3AxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, Radians(90))
	got := q.RotateVec3(Vec3{1, 0, 0})
	if got.Distance(Vec3{0, 1, 0}) > 1e-5 {
		t.Errorf("90deg z rotation of +x = %v, want +y", got)
	}
}
