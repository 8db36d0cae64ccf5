package scene

import (
	m "math"

	"github.com/dletozeun/3D/engine/math"
	"github.com/go-gl/mathgl/mgl32"
)

/**
 * @brief An orbit camera looking at a target point. The view matrix is only
 * rebuilt when the camera moved.
 */
type Camera struct {
	target   mgl32.Vec3
	distance float32
	// yaw around the world up axis, pitch above the horizon, in radians
	yaw   float32
	pitch float32

	fov    float32
	near   float32
	far    float32
	aspect float32

	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	isDirty    bool
	viewMatrix mgl32.Mat4
	position   mgl32.Vec3
}

const (
	minDistance float32 = 0.6
	maxDistance float32 = 10
	// 89 degrees, keeps the up vector usable
	pitchLimit float32 = 1.55334306
)

// NewCamera places the camera at eye, looking at target.
func NewCamera(eye, target mgl32.Vec3) *Camera {
	c := &Camera{
		target: target,
		fov:    mgl32.DegToRad(60),
		near:   0.1,
		far:    100,
		aspect: 1,
	}
	c.SetPosition(eye)
	return c
}

func (c *Camera) SetPosition(eye mgl32.Vec3) {
	offset := eye.Sub(c.target)
	c.distance = math.Clamp(offset.Len(), minDistance, maxDistance)
	if offset.Len() > 0 {
		c.yaw = float32(m.Atan2(float64(offset.X()), float64(offset.Z())))
		c.pitch = float32(m.Asin(float64(offset.Y() / offset.Len())))
	}
	c.pitch = math.Clamp(c.pitch, -pitchLimit, pitchLimit)
	c.isDirty = true
}

func (c *Camera) SetAspect(width, height uint32) {
	if height == 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(yaw, pitch float32) {
	c.yaw += yaw
	c.pitch = math.Clamp(c.pitch+pitch, -pitchLimit, pitchLimit)
	c.isDirty = true
}

// Zoom moves the camera toward its target by amount, away when negative.
func (c *Camera) Zoom(amount float32) {
	c.distance = math.Clamp(c.distance-amount, minDistance, maxDistance)
	c.isDirty = true
}

func (c *Camera) update() {
	if !c.isDirty {
		return
	}
	cosPitch := float32(m.Cos(float64(c.pitch)))
	offset := mgl32.Vec3{
		c.distance * cosPitch * float32(m.Sin(float64(c.yaw))),
		c.distance * float32(m.Sin(float64(c.pitch))),
		c.distance * cosPitch * float32(m.Cos(float64(c.yaw))),
	}
	c.position = c.target.Add(offset)
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, mgl32.Vec3{0, 1, 0})
	c.isDirty = false
}

func (c *Camera) Position() mgl32.Vec3 {
	c.update()
	return c.position
}

func (c *Camera) View() mgl32.Mat4 {
	c.update()
	return c.viewMatrix
}

func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *Camera) Far() float32 {
	return c.far
}
