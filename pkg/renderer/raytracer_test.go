package renderer

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// matte builds an opaque object without specular highlights
func matte(kind scene.ObjectKind, p0, p1, p2 mgl32.Vec3, color mgl32.Vec3) scene.Object {
	o := scene.Object{Kind: kind, P0: p0, P1: p1, P2: p2, Color: color.Vec4(1)}
	scene.DefaultMaterial().Apply(&o)
	o.Specularity = mgl32.Vec4{}
	return o
}

func newTestRaytracer(t *testing.T, s *scene.Scene, width, height int) *Raytracer {
	t.Helper()
	rt := NewRaytracer(width, height, DefaultConfig())
	if err := rt.UploadScene(scene.Flatten(s)); err != nil {
		t.Fatalf("UploadScene() error = %v", err)
	}
	if err := rt.UploadView(scene.View{FieldOfView: math.Pi / 2, AmbientLight: 1}); err != nil {
		t.Fatalf("UploadView() error = %v", err)
	}
	return rt
}

func redSphereScene() *scene.Scene {
	s := scene.NewScene("red-sphere")
	s.AddObject(matte(scene.Sphere, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}))
	s.AddLight(mgl32.Vec3{0, 0, 0}, 1)
	return s
}

func TestRenderWithoutScene(t *testing.T) {
	rt := NewRaytracer(4, 4, DefaultConfig())
	if _, _, err := rt.Render(); !errors.Is(err, ErrNoScene) {
		t.Errorf("Render() error = %v, want ErrNoScene", err)
	}
}

func TestUploadSceneRejectsInvalidUniforms(t *testing.T) {
	u := scene.Flatten(redSphereScene())
	u.Colors = u.Colors[:2]

	rt := NewRaytracer(4, 4, DefaultConfig())
	if err := rt.UploadScene(u); err == nil {
		t.Error("Expected error for misaligned uniforms")
	}
	if _, _, err := rt.Render(); !errors.Is(err, ErrNoScene) {
		t.Errorf("rejected upload should leave the raytracer empty, got %v", err)
	}
}

func TestRenderSphere(t *testing.T) {
	rt := newTestRaytracer(t, redSphereScene(), 9, 9)

	img, stats, err := rt.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if stats.TotalPixels != 81 {
		t.Errorf("TotalPixels = %d, want 81", stats.TotalPixels)
	}
	if stats.HitPixels == 0 || stats.HitPixels == 81 {
		t.Errorf("HitPixels = %d, want the sphere to cover part of the image", stats.HitPixels)
	}

	center := img.RGBAAt(4, 4)
	if center.R < 200 || center.G != 0 || center.B != 0 {
		t.Errorf("center pixel = %v, want lit red", center)
	}

	corner := img.RGBAAt(0, 0)
	want := vec3ToColor(rt.backgroundGradient(NewCamera(rt.view, 9, 9).GetRay(0, 0)))
	if corner != want {
		t.Errorf("corner pixel = %v, want background %v", corner, want)
	}
}

func TestRenderDeterministicAcrossWorkers(t *testing.T) {
	s := redSphereScene()
	s.AddObject(matte(scene.Plane, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}, mgl32.Vec3{0.5, 0.5, 0.5}))

	render := func(workers int) []byte {
		rt := NewRaytracer(32, 24, Config{MaxDepth: 5, NumWorkers: workers, RowsPerTask: 5})
		rt.UploadScene(scene.Flatten(s))
		rt.UploadView(scene.View{CameraPos: mgl32.Vec3{0, 0.5, 2}, FieldOfView: 2, AmbientLight: 3})
		img, _, err := rt.Render()
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		return img.Pix
	}

	if !bytes.Equal(render(1), render(4)) {
		t.Error("Render() output depends on the worker count")
	}
}

func TestShadows(t *testing.T) {
	floor := matte(scene.Plane, mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
	blocker := matte(scene.Sphere, mgl32.Vec3{0, 2, -5}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

	lit := scene.NewScene("lit")
	lit.AddObject(floor)
	lit.AddLight(mgl32.Vec3{0, 10, -5}, 1)

	shadowed := scene.NewScene("shadowed")
	shadowed.AddObject(floor)
	shadowed.AddObject(blocker)
	shadowed.AddLight(mgl32.Vec3{0, 10, -5}, 1)

	ray := NewRay(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, -5})
	litColor := newTestRaytracer(t, lit, 1, 1).RayColor(ray)
	shadowColor := newTestRaytracer(t, shadowed, 1, 1).RayColor(ray)

	ambient := mgl32.Vec3{1, 1, 1}.Mul(ambientScale)
	if !shadowColor.ApproxEqualThreshold(ambient, 1e-5) {
		t.Errorf("shadowed color = %v, want ambient only %v", shadowColor, ambient)
	}
	if litColor.X() <= shadowColor.X() {
		t.Errorf("lit color %v should be brighter than shadowed %v", litColor, shadowColor)
	}
}

func TestAmbientLight(t *testing.T) {
	s := scene.NewScene("dark")
	s.AddObject(matte(scene.Sphere, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}))

	rt := newTestRaytracer(t, s, 1, 1)
	ray := NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})

	for _, ambient := range []float32{1, 3} {
		rt.UploadView(scene.View{FieldOfView: math.Pi / 2, AmbientLight: ambient})
		got := rt.RayColor(ray)
		want := mgl32.Vec3{0, ambientScale * ambient, 0}
		if !got.ApproxEqualThreshold(want, 1e-5) {
			t.Errorf("ambient %v: color = %v, want %v", ambient, got, want)
		}
	}
}

func TestSpecularHighlight(t *testing.T) {
	s := scene.NewScene("shiny")
	o := matte(scene.Sphere, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0.2, 0, 0})
	o.Specularity = mgl32.Vec4{0, 0, 1, 1}
	o.Shininess = 8
	s.AddObject(o)
	s.AddLight(mgl32.Vec3{0, 0, 0}, 1)

	rt := newTestRaytracer(t, s, 1, 1)
	got := rt.RayColor(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))

	// Light behind the eye: the highlight is at full strength
	if math.Abs(float64(got.Z()-1)) > 1e-5 {
		t.Errorf("specular blue = %v, want 1", got.Z())
	}
}

func TestMirrorReflectsBackground(t *testing.T) {
	s := scene.NewScene("mirror")
	mirror := matte(scene.Plane, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	mirror.Reflectance = 1
	s.AddObject(mirror)

	rt := newTestRaytracer(t, s, 1, 1)
	got := rt.RayColor(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	want := rt.backgroundGradient(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, 1}))
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("mirror color = %v, want reflected background %v", got, want)
	}
}

func TestTransparentPlanePassesThrough(t *testing.T) {
	s := scene.NewScene("glass")
	pane := matte(scene.Plane, mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	pane.Color[3] = 0
	pane.Refraction = 1.5
	s.AddObject(pane)

	rt := newTestRaytracer(t, s, 1, 1)
	ray := NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0.3, -1})
	got := rt.RayColor(ray)
	want := rt.backgroundGradient(ray)
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("color through pane = %v, want background %v", got, want)
	}
}

func TestMaxDepthStopsBounces(t *testing.T) {
	s := scene.NewScene("facing-mirrors")
	for _, z := range []float32{-1, 1} {
		m := matte(scene.Plane, mgl32.Vec3{0, 0, z}, mgl32.Vec3{0, 0, -z}, mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})
		m.Reflectance = 1
		s.AddObject(m)
	}

	rt := NewRaytracer(1, 1, Config{MaxDepth: 3})
	rt.UploadScene(scene.Flatten(s))
	got := rt.RayColor(NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}))
	if got != (mgl32.Vec3{}) {
		t.Errorf("color between perfect mirrors = %v, want black", got)
	}
}

func TestRefract(t *testing.T) {
	normal := mgl32.Vec3{0, 1, 0}

	straight, ok := refract(mgl32.Vec3{0, -1, 0}, normal, 1/1.5)
	if !ok || !straight.ApproxEqualThreshold(mgl32.Vec3{0, -1, 0}, 1e-6) {
		t.Errorf("refract at normal incidence = %v, %v", straight, ok)
	}

	same, ok := refract(mgl32.Vec3{1, -1, 0}.Normalize(), normal, 1)
	if !ok || !same.ApproxEqualThreshold(mgl32.Vec3{1, -1, 0}.Normalize(), 1e-6) {
		t.Errorf("refract with eta 1 = %v, want unchanged", same)
	}

	// Leaving glass at a grazing angle
	if _, ok := refract(mgl32.Vec3{1, -0.1, 0}.Normalize(), normal, 1.5); ok {
		t.Error("Expected total internal reflection")
	}
}

func TestTransmitThroughSphere(t *testing.T) {
	glass := scene.Object{Kind: scene.Sphere, Refraction: 1.5}
	dir := mgl32.Vec3{1, -1, 0}.Normalize()
	hit := HitRecord{Normal: mgl32.Vec3{0, 1, 0}, FrontFace: true}

	entering := transmit(&glass, hit, dir)
	if entering.X() >= dir.X() {
		t.Errorf("entering ray %v should bend towards the normal", entering)
	}

	flat := scene.Object{Kind: scene.Triangle, Refraction: 1.5}
	if got := transmit(&flat, hit, dir); got != dir {
		t.Errorf("flat objects should not bend rays, got %v", got)
	}
}

func TestVec3ToColor(t *testing.T) {
	tests := []struct {
		input    mgl32.Vec3
		expected [3]uint8
	}{
		{mgl32.Vec3{0, 0, 0}, [3]uint8{0, 0, 0}},
		{mgl32.Vec3{1, 1, 1}, [3]uint8{255, 255, 255}},
		{mgl32.Vec3{2, -1, 0.5}, [3]uint8{255, 0, 128}},
	}

	for _, tt := range tests {
		c := vec3ToColor(tt.input)
		if [3]uint8{c.R, c.G, c.B} != tt.expected || c.A != 255 {
			t.Errorf("vec3ToColor(%v) = %v, want %v", tt.input, c, tt.expected)
		}
	}
}
