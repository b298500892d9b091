package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// View holds the camera-related scalars the evaluator reads alongside the scene arrays
type View struct {
	CameraPos    mgl32.Vec3
	Theta        float32 // Yaw around the Y axis
	Phi          float32 // Pitch around the X axis
	FieldOfView  float32 // Full view angle in radians
	AmbientLight float32
}

// Bindings returns the view uniforms in ViewSchema order
func (v View) Bindings() []Binding {
	s := ViewSchema
	return []Binding{
		floatBinding(s[0], []float32{v.CameraPos[0], v.CameraPos[1], v.CameraPos[2]}),
		floatBinding(s[1], []float32{v.Theta}),
		floatBinding(s[2], []float32{v.Phi}),
		floatBinding(s[3], []float32{v.FieldOfView}),
		floatBinding(s[4], []float32{v.AmbientLight}),
	}
}

// YawMatrix returns the rotation the evaluator applies for Theta
func (v View) YawMatrix() mgl32.Mat3 {
	return YawMatrix(v.Theta)
}

// PitchMatrix returns the rotation the evaluator applies for Phi
func (v View) PitchMatrix() mgl32.Mat3 {
	return PitchMatrix(v.Phi)
}

// YawMatrix builds the column-major rotation used for both camera movement and
// ray generation. The fragment program constructs the same matrix.
func YawMatrix(r float32) mgl32.Mat3 {
	c, s := cos32(r), sin32(r)
	return mgl32.Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// PitchMatrix builds the column-major pitch rotation. Positive phi tilts the
// view direction (0,0,-1) upwards.
func PitchMatrix(phi float32) mgl32.Mat3 {
	c, s := cos32(phi), sin32(phi)
	return mgl32.Mat3{
		1, 0, 0,
		0, c, s,
		0, -s, c,
	}
}

// RayDirection returns the normalized primary ray direction through the image
// plane point (x, y), both in [-1, 1] with y up. The plane sits at distance
// tan(FieldOfView/2) in front of the camera, so a larger FieldOfView value
// narrows the view. fragment.glsl computes the same direction.
func (v View) RayDirection(x, y float32) mgl32.Vec3 {
	depth := float32(math.Tan(float64(v.FieldOfView) / 2))
	d := mgl32.Vec3{x, y, -depth}
	return v.YawMatrix().Mul3(v.PitchMatrix()).Mul3x1(d).Normalize()
}

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }
