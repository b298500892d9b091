package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms is a scene deconstructed into the parallel arrays the evaluator
// indexes. Index i of every per-object array refers to the same object.
type Uniforms struct {
	ObjectTypes   []int32
	Xs            []float32 // 3 per object
	Ys            []float32 // 3 per object
	Zs            []float32 // 3 per object
	Colors        []float32 // 4 per object
	Specularities []float32 // 4 per object
	Shininesses   []int32
	Reflectances  []float32
	Refractions   []float32
	NumOfObjects  int32

	Lights           []float32 // 3 per light
	LightIntensities []float32
	LightNum         int32
}

// Flatten converts the scene's objects and lights into uniform arrays.
// All arrays are allocated once, sized by the object and light counts.
func Flatten(s *Scene) *Uniforms {
	n := len(s.Objects)
	u := &Uniforms{
		ObjectTypes:   make([]int32, n),
		Xs:            make([]float32, n*3),
		Ys:            make([]float32, n*3),
		Zs:            make([]float32, n*3),
		Colors:        make([]float32, n*4),
		Specularities: make([]float32, n*4),
		Shininesses:   make([]int32, n),
		Reflectances:  make([]float32, n),
		Refractions:   make([]float32, n),
		NumOfObjects:  int32(n),
	}

	for i, o := range s.Objects {
		u.ObjectTypes[i] = int32(o.Kind)
		copy(u.Xs[i*3:i*3+3], o.P0[:])
		copy(u.Ys[i*3:i*3+3], o.P1[:])
		copy(u.Zs[i*3:i*3+3], o.P2[:])
		copy(u.Colors[i*4:i*4+4], o.Color[:])
		copy(u.Specularities[i*4:i*4+4], o.Specularity[:])
		u.Shininesses[i] = o.Shininess
		u.Reflectances[i] = o.Reflectance
		u.Refractions[i] = o.Refraction
	}

	u.Lights = append(make([]float32, 0, len(s.Lights.Positions)), s.Lights.Positions...)
	u.LightIntensities = append(make([]float32, 0, len(s.Lights.Intensities)), s.Lights.Intensities...)
	u.LightNum = int32(len(u.LightIntensities))

	return u
}

// Object reassembles object i from the arrays
func (u *Uniforms) Object(i int) Object {
	return Object{
		Kind:        ObjectKind(u.ObjectTypes[i]),
		P0:          vec3At(u.Xs, i),
		P1:          vec3At(u.Ys, i),
		P2:          vec3At(u.Zs, i),
		Color:       vec4At(u.Colors, i),
		Specularity: vec4At(u.Specularities, i),
		Shininess:   u.Shininesses[i],
		Reflectance: u.Reflectances[i],
		Refraction:  u.Refractions[i],
	}
}

// Light returns the position and intensity of light i
func (u *Uniforms) Light(i int) (mgl32.Vec3, float32) {
	return vec3At(u.Lights, i), u.LightIntensities[i]
}

// Validate checks that every array agrees with the object and light counts and
// that the counts fit the evaluator's capacity.
func (u *Uniforms) Validate() error {
	n := int(u.NumOfObjects)
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"objectTypes", len(u.ObjectTypes), n},
		{"xs", len(u.Xs), n * 3},
		{"ys", len(u.Ys), n * 3},
		{"zs", len(u.Zs), n * 3},
		{"colors", len(u.Colors), n * 4},
		{"specularities", len(u.Specularities), n * 4},
		{"shininesses", len(u.Shininesses), n},
		{"reflectances", len(u.Reflectances), n},
		{"refractions", len(u.Refractions), n},
		{"lights", len(u.Lights), int(u.LightNum) * 3},
		{"lightIntensities", len(u.LightIntensities), int(u.LightNum)},
	}
	for _, c := range checks {
		if c.got != c.want {
			return fmt.Errorf("uniform %s has %d values, want %d", c.name, c.got, c.want)
		}
	}

	if n > MaxObjects {
		return fmt.Errorf("scene has %d objects, evaluator supports at most %d", n, MaxObjects)
	}
	if u.LightNum > MaxLights {
		return fmt.Errorf("scene has %d lights, evaluator supports at most %d", u.LightNum, MaxLights)
	}
	return nil
}

// Bindings returns the arrays in SceneSchema order
func (u *Uniforms) Bindings() []Binding {
	s := SceneSchema
	return []Binding{
		intBinding(s[0], u.ObjectTypes),
		floatBinding(s[1], u.Xs),
		floatBinding(s[2], u.Ys),
		floatBinding(s[3], u.Zs),
		floatBinding(s[4], u.Colors),
		floatBinding(s[5], u.Specularities),
		intBinding(s[6], u.Shininesses),
		floatBinding(s[7], u.Reflectances),
		floatBinding(s[8], u.Refractions),
		intBinding(s[9], []int32{u.NumOfObjects}),
		floatBinding(s[10], u.Lights),
		floatBinding(s[11], u.LightIntensities),
		intBinding(s[12], []int32{u.LightNum}),
	}
}

func vec3At(values []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{values[i*3], values[i*3+1], values[i*3+2]}
}

func vec4At(values []float32, i int) mgl32.Vec4 {
	return mgl32.Vec4{values[i*4], values[i*4+1], values[i*4+2], values[i*4+3]}
}
