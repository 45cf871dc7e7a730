package main

import (
	gomath "math"

	"github.com/cascbox/cascview/pkg/math"
)

// orbitCamera orbits a target point: drag rotates, wheel zooms. It
// satisfies the previewer's controls collaborator, which re-targets it
// whenever a new scene is installed.
type orbitCamera struct {
	target      math.Vec3
	yaw         float32 // radians around Y
	pitch       float32 // radians above the horizon
	distance    float32
	maxDistance float32
}

func newOrbitCamera() *orbitCamera {
	return &orbitCamera{
		yaw:         gomath.Pi / 4,
		pitch:       0.4,
		distance:    10,
		maxDistance: 1000,
	}
}

func (c *orbitCamera) SetTarget(target math.Vec3) {
	c.target = target
}

func (c *orbitCamera) SetMaxDistance(distance float32) {
	if distance > 0 {
		c.maxDistance = distance
	}
	c.clamp()
}

// SetDistance positions the camera at an absolute range, used when a
// new scene's framing takes effect.
func (c *orbitCamera) SetDistance(distance float32) {
	c.distance = distance
	c.clamp()
}

// Rotate applies a drag delta in pixels.
func (c *orbitCamera) Rotate(dx, dy float32) {
	const sensitivity = 0.01
	c.yaw += dx * sensitivity
	c.pitch += dy * sensitivity

	const maxPitch = gomath.Pi/2 - 0.05
	if c.pitch > maxPitch {
		c.pitch = maxPitch
	}
	if c.pitch < -maxPitch {
		c.pitch = -maxPitch
	}
}

// Zoom applies a wheel delta; positive moves closer.
func (c *orbitCamera) Zoom(delta float32) {
	c.distance -= delta * c.distance * 0.1
	c.clamp()
}

func (c *orbitCamera) clamp() {
	if c.distance < 0.5 {
		c.distance = 0.5
	}
	if c.distance > c.maxDistance {
		c.distance = c.maxDistance
	}
}

// View returns the camera's view matrix.
func (c *orbitCamera) View() math.Mat4 {
	cy := float32(gomath.Cos(float64(c.yaw)))
	sy := float32(gomath.Sin(float64(c.yaw)))
	cp := float32(gomath.Cos(float64(c.pitch)))
	sp := float32(gomath.Sin(float64(c.pitch)))

	eye := math.Vec3{
		X: c.target.X + c.distance*cp*sy,
		Y: c.target.Y + c.distance*sp,
		Z: c.target.Z + c.distance*cp*cy,
	}
	return math.LookAt(eye, c.target, math.Vec3{Y: 1})
}
