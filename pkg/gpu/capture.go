package gpu

import (
	"image"

	"github.com/df07/go-shader-raytracer/pkg/loaders"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// CaptureFrame reads the current framebuffer into an image with the top row first
func CaptureFrame(width, height int) *image.RGBA {
	pix := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return loaders.FlipVertical(pix, width, height)
}
