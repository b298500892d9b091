package controller

import (
	"math"

	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	moveStep   = 0.1
	rotateStep = 0.1
	zoomScale  = 10
)

// Camera is the mutable viewer state driven by keyboard and scroll input
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32 // theta, radians around Y
	Pitch    float32 // phi, radians around X
	FOV      float32 // raw zoom value; see FieldOfView
}

// NewCamera returns a camera at the origin looking down -Z
func NewCamera() Camera {
	return Camera{FOV: math.Pi / 3}
}

// Apply moves or rotates the camera for a movement key. It reports whether the
// key is a movement key.
func (c *Camera) Apply(key Key) bool {
	yaw := scene.YawMatrix(c.Yaw)

	switch key {
	case KeyW:
		c.Position = c.Position.Sub(yaw.Mul3x1(mgl32.Vec3{0, 0, moveStep}))
	case KeyS:
		c.Position = c.Position.Add(yaw.Mul3x1(mgl32.Vec3{0, 0, moveStep}))
	case KeyA:
		c.Position = c.Position.Sub(yaw.Mul3x1(mgl32.Vec3{moveStep, 0, 0}))
	case KeyD:
		c.Position = c.Position.Add(yaw.Mul3x1(mgl32.Vec3{moveStep, 0, 0}))
	case KeyE:
		c.Position[1] += moveStep
	case KeyQ:
		c.Position[1] -= moveStep
	case KeyLeft:
		c.Yaw -= rotateStep
	case KeyRight:
		c.Yaw += rotateStep
	case KeyUp:
		c.Pitch += rotateStep
	case KeyDown:
		c.Pitch -= rotateStep
	default:
		return false
	}
	return true
}

// Zoom applies a vertical scroll offset
func (c *Camera) Zoom(yoffset float64) {
	c.FOV += float32(yoffset / zoomScale)
}

// FieldOfView maps the raw zoom value to the angle handed to the evaluator,
// atan(FOV) + pi/2, which stays inside (0, pi) for any FOV.
func (c Camera) FieldOfView() float32 {
	return float32(math.Atan(float64(c.FOV)) + math.Pi/2)
}
