package math

import "math"

// Mat3 is a 3x3 matrix in column-major order (OpenGL compatible).
type Mat3 [9]float32

// Identity3 returns an identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Rotation3X returns a rotation matrix around the X axis.
// angle is in radians.
func Rotation3X(angle float32) Mat3 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat3{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	}
}

// Rotation3Y returns a rotation matrix around the Y axis.
// angle is in radians.
func Rotation3Y(angle float32) Mat3 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat3{
		c, 0, -s,
		0, 1, 0,
		s, 0, c,
	}
}

// Rotation3Z returns a rotation matrix around the Z axis.
// angle is in radians.
func Rotation3Z(angle float32) Mat3 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))

	return Mat3{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			result[col*3+row] =
				m[0*3+row]*other[col*3+0] +
					m[1*3+row]*other[col*3+1] +
					m[2*3+row]*other[col*3+2]
		}
	}
	return result
}

// MulVec3 multiplies the matrix by a vector.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat3) Ptr() *float32 {
	return &m[0]
}
