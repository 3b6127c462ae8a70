// Package camera provides the globe-aware camera used to view terrain.
package camera

import (
	gomath "math"

	"github.com/krzyz/topo-renderer/internal/geo"
	"github.com/krzyz/topo-renderer/pkg/math"
)

// Near and Far bound the depth range in meters. The far plane reaches
// past the horizon at cruising altitude.
const (
	Near float32 = 50
	Far  float32 = 500_000
)

// ViewMode selects the fragment output of the terrain pass.
type ViewMode int32

const (
	ViewDefault ViewMode = iota
	ViewLocalNormals
	ViewWorldNormals
)

func (m ViewMode) String() string {
	switch m {
	case ViewLocalNormals:
		return "local-normals"
	case ViewWorldNormals:
		return "world-normals"
	default:
		return "default"
	}
}

// Camera flies over terrain expressed in a local tangent frame. Up is
// the radial direction at the eye rather than a fixed world axis, so
// the horizon stays level even over long flights.
type Camera struct {
	Eye   math.Vec3
	Yaw   float32 // Radians around up, 0 faces local east
	Pitch float32 // Radians above the local horizontal plane

	Fov    float32 // Vertical field of view in radians
	Aspect float32

	Speed       float32 // Meters per second
	Sensitivity float32 // Radians per pixel of mouse motion

	Mode ViewMode
}

// New creates a camera hovering above the tangent frame origin.
func New(aspect float32) *Camera {
	return &Camera{
		Eye:         math.Vec3{X: 0, Y: 0, Z: 2000},
		Yaw:         0,
		Pitch:       -0.2,
		Fov:         math.Radians(45),
		Aspect:      aspect,
		Speed:       300,
		Sensitivity: 0.003,
	}
}

// Up returns the radial direction at the eye. In the tangent frame the
// planet center sits at (0, 0, -R0).
func (c *Camera) Up() math.Vec3 {
	radial := c.Eye.Add(math.Vec3{Z: geo.R0})
	if radial.LengthSq() < 1e-6 {
		return math.Vec3{Z: 1}
	}
	return radial.Normalize()
}

// Forward returns the unit view direction for the current yaw and pitch.
func (c *Camera) Forward() math.Vec3 {
	cp := cos(c.Pitch)
	local := math.Vec3{
		X: cp * cos(c.Yaw),
		Y: cp * sin(c.Yaw),
		Z: sin(c.Pitch),
	}
	// Carry the flat-frame direction onto the sphere's tangent plane.
	q := math.QuatRotationArc(math.Vec3{Z: 1}, c.Up())
	return q.RotateVec3(local)
}

// Right returns the unit vector to the camera's right.
func (c *Camera) Right() math.Vec3 {
	return c.Forward().Cross(c.Up()).Normalize()
}

// ViewMatrix returns the world-to-camera transform.
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookTo(c.Eye, c.Forward(), c.Up())
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.Fov, c.Aspect, Near, Far)
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// HandleLook updates yaw and pitch from a mouse delta in pixels.
func (c *Camera) HandleLook(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.Sensitivity
	c.Pitch -= deltaY * c.Sensitivity

	limit := float32(gomath.Pi/2) - 0.01
	if c.Pitch > limit {
		c.Pitch = limit
	}
	if c.Pitch < -limit {
		c.Pitch = -limit
	}
}

// HandleMovement moves the eye along the view axes. forward, right and
// up are input strengths in [-1, 1]; dt is the frame time in seconds.
func (c *Camera) HandleMovement(forward, right, up float32, dt float32) {
	step := c.Speed * dt
	c.Eye = c.Eye.
		Add(c.Forward().Scale(forward * step)).
		Add(c.Right().Scale(right * step)).
		Add(c.Up().Scale(up * step))
}

// HandleZoom scales movement speed with the scroll wheel.
func (c *Camera) HandleZoom(delta float32) {
	c.Speed *= 1 + delta*0.1
	if c.Speed < 10 {
		c.Speed = 10
	}
	if c.Speed > 50_000 {
		c.Speed = 50_000
	}
}

// CycleViewMode advances to the next fragment output mode.
func (c *Camera) CycleViewMode() {
	c.Mode = (c.Mode + 1) % 3
}

// DistFromDepth converts a normalized depth buffer value back to the
// eye-space distance in meters.
func DistFromDepth(depth float32) float32 {
	return Far * Near / (Far - depth*(Far-Near))
}

func sin(x float32) float32 { return float32(gomath.Sin(float64(x))) }
func cos(x float32) float32 { return float32(gomath.Cos(float64(x))) }
