package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraGetRay(t *testing.T) {
	view := scene.View{CameraPos: mgl32.Vec3{1, 2, 3}, FieldOfView: math.Pi / 2}

	tests := []struct {
		name     string
		width    int
		height   int
		i, j     int
		expected mgl32.Vec3
	}{
		{"center of odd image", 5, 5, 2, 2, mgl32.Vec3{0, 0, -1}},
		{"top row points up", 2, 2, 0, 0, mgl32.Vec3{-0.5, 0.5, -1}},
		{"bottom right", 2, 2, 1, 1, mgl32.Vec3{0.5, -0.5, -1}},
		{"wide image stretches x", 4, 2, 3, 0, mgl32.Vec3{1.5, 0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCamera(view, tt.width, tt.height)
			ray := camera.GetRay(tt.i, tt.j)
			if ray.Origin != view.CameraPos {
				t.Errorf("origin = %v, want %v", ray.Origin, view.CameraPos)
			}
			want := tt.expected.Normalize()
			if !ray.Direction.ApproxEqualThreshold(want, 1e-5) {
				t.Errorf("direction = %v, want %v", ray.Direction, want)
			}
		})
	}
}

func TestCameraFollowsView(t *testing.T) {
	view := scene.View{Theta: math.Pi / 2, FieldOfView: math.Pi / 2}
	ray := NewCamera(view, 1, 1).GetRay(0, 0)
	if !ray.Direction.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("direction = %v, want [1 0 0]", ray.Direction)
	}
}

func TestRayAt(t *testing.T) {
	ray := NewRay(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -4})
	if got := ray.At(2); got != (mgl32.Vec3{1, 0, -2}) {
		t.Errorf("At(2) = %v, want [1 0 -2]", got)
	}
}
