package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ObjectKind identifies the primitive type of an object. The numeric values are
// the ones the evaluator reads from objectTypes.
type ObjectKind int32

const (
	Sphere   ObjectKind = 0
	Plane    ObjectKind = 1
	Triangle ObjectKind = 2
)

// String returns the scene-file keyword for the kind
func (k ObjectKind) String() string {
	switch k {
	case Sphere:
		return "sphere"
	case Plane:
		return "plane"
	case Triangle:
		return "triangle"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int32(k))
	}
}

// ParseObjectKind maps a scene-file keyword to its kind
func ParseObjectKind(keyword string) (ObjectKind, bool) {
	switch keyword {
	case "sphere":
		return Sphere, true
	case "plane":
		return Plane, true
	case "triangle":
		return Triangle, true
	}
	return 0, false
}

// Object is one renderable primitive.
//
// The meaning of P0, P1 and P2 depends on Kind:
//   - Sphere: P0 is the center, P1.X() the radius.
//   - Plane: P0 is a point on the plane, P1 the normal.
//   - Triangle: P0, P1 and P2 are the vertices.
type Object struct {
	Kind        ObjectKind
	P0, P1, P2  mgl32.Vec3
	Color       mgl32.Vec4
	Specularity mgl32.Vec4
	Shininess   int32
	Reflectance float32
	Refraction  float32
}

// Radius returns the sphere radius stored in P1
func (o Object) Radius() float32 {
	return o.P1.X()
}

// Material holds the surface properties baked into every object declared while
// it is current.
type Material struct {
	Specularity mgl32.Vec4
	Phong       int32
	Reflectance float32
	Refraction  float32
}

// DefaultMaterial returns the material in effect at the start of every scene file
func DefaultMaterial() Material {
	return Material{
		Specularity: mgl32.Vec4{1, 1, 1, 1},
		Phong:       1,
		Reflectance: 0,
		Refraction:  1,
	}
}

// Apply copies the material properties into o
func (m Material) Apply(o *Object) {
	o.Specularity = m.Specularity
	o.Shininess = m.Phong
	o.Reflectance = m.Reflectance
	o.Refraction = m.Refraction
}

// LightSet stores point lights as two parallel sequences: three position
// components and one intensity per light.
type LightSet struct {
	Positions   []float32
	Intensities []float32
}

// Add appends one light
func (ls *LightSet) Add(position mgl32.Vec3, intensity float32) {
	ls.Positions = append(ls.Positions, position[0], position[1], position[2])
	ls.Intensities = append(ls.Intensities, intensity)
}

// Len returns the number of lights
func (ls LightSet) Len() int {
	return len(ls.Intensities)
}

// Position returns the position of light i
func (ls LightSet) Position(i int) mgl32.Vec3 {
	return mgl32.Vec3{ls.Positions[i*3], ls.Positions[i*3+1], ls.Positions[i*3+2]}
}

// Intensity returns the intensity of light i
func (ls LightSet) Intensity(i int) float32 {
	return ls.Intensities[i]
}

// Scene contains everything the evaluator draws: the ordered objects and the lights
type Scene struct {
	Name    string
	Objects []Object
	Lights  LightSet
}

// NewScene creates an empty scene
func NewScene(name string) *Scene {
	return &Scene{
		Name:    name,
		Objects: make([]Object, 0),
	}
}

// AddObject appends an object to the scene
func (s *Scene) AddObject(o Object) {
	s.Objects = append(s.Objects, o)
}

// AddLight appends a point light to the scene
func (s *Scene) AddLight(position mgl32.Vec3, intensity float32) {
	s.Lights.Add(position, intensity)
}

// CountKind returns the number of objects of the given kind
func (s *Scene) CountKind(kind ObjectKind) int {
	count := 0
	for _, o := range s.Objects {
		if o.Kind == kind {
			count++
		}
	}
	return count
}
