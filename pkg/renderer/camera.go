package renderer

import (
	"github.com/df07/go-shader-raytracer/pkg/scene"
)

// Camera generates primary rays for an image of a fixed size from the view uniforms
type Camera struct {
	view   scene.View
	width  int
	height int
	aspect float32
}

// NewCamera creates a camera for a width x height image
func NewCamera(view scene.View, width, height int) *Camera {
	return &Camera{
		view:   view,
		width:  width,
		height: height,
		aspect: float32(width) / float32(height),
	}
}

// GetRay returns the ray through the center of pixel (i, j), with j counted
// from the top row
func (c *Camera) GetRay(i, j int) Ray {
	x := (2*(float32(i)+0.5)/float32(c.width) - 1) * c.aspect
	y := 1 - 2*(float32(j)+0.5)/float32(c.height)
	return Ray{Origin: c.view.CameraPos, Direction: c.view.RayDirection(x, y)}
}
