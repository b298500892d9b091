package renderer

import (
	"math"

	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	tMin = 1e-3
	tMax = 1e6
)

// HitRecord describes a ray-object intersection
type HitRecord struct {
	T         float32
	Point     mgl32.Vec3
	Normal    mgl32.Vec3 // Always faces against the incoming ray
	FrontFace bool       // Ray arrived on the side the geometric normal points to
	Object    int
}

// hitObject intersects a ray with one object. Unknown kinds never hit.
func hitObject(o *scene.Object, ray Ray, limit float32) (float32, mgl32.Vec3, bool) {
	switch o.Kind {
	case scene.Sphere:
		return hitSphere(o.P0, o.Radius(), ray, limit)
	case scene.Plane:
		return hitPlane(o.P0, o.P1, ray, limit)
	case scene.Triangle:
		return hitTriangle(o.P0, o.P1, o.P2, ray, limit)
	}
	return 0, mgl32.Vec3{}, false
}

func hitSphere(center mgl32.Vec3, radius float32, ray Ray, limit float32) (float32, mgl32.Vec3, bool) {
	if radius <= 0 {
		return 0, mgl32.Vec3{}, false
	}
	oc := ray.Origin.Sub(center)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, mgl32.Vec3{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))

	t := -b - sq
	if t < tMin || t > limit {
		t = -b + sq
		if t < tMin || t > limit {
			return 0, mgl32.Vec3{}, false
		}
	}
	normal := ray.At(t).Sub(center).Mul(1 / radius)
	return t, normal, true
}

func hitPlane(point, normal mgl32.Vec3, ray Ray, limit float32) (float32, mgl32.Vec3, bool) {
	if normal.Len() == 0 {
		return 0, mgl32.Vec3{}, false
	}
	n := normal.Normalize()
	denom := n.Dot(ray.Direction)
	if float32(math.Abs(float64(denom))) < 1e-6 {
		return 0, mgl32.Vec3{}, false
	}
	t := point.Sub(ray.Origin).Dot(n) / denom
	if t < tMin || t > limit {
		return 0, mgl32.Vec3{}, false
	}
	return t, n, true
}

// hitTriangle uses the Moller-Trumbore test; the normal follows the p0, p1, p2 winding
func hitTriangle(p0, p1, p2 mgl32.Vec3, ray Ray, limit float32) (float32, mgl32.Vec3, bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	h := ray.Direction.Cross(e2)
	a := e1.Dot(h)
	if float32(math.Abs(float64(a))) < 1e-8 {
		return 0, mgl32.Vec3{}, false
	}
	f := 1 / a
	s := ray.Origin.Sub(p0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, mgl32.Vec3{}, false
	}
	q := s.Cross(e1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, mgl32.Vec3{}, false
	}
	t := f * e2.Dot(q)
	if t < tMin || t > limit {
		return 0, mgl32.Vec3{}, false
	}
	return t, e1.Cross(e2).Normalize(), true
}
