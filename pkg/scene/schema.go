package scene

import (
	"fmt"
	"strings"
)

// Evaluator capacity. The fragment program declares its uniform arrays with
// these sizes, see ShaderDefines.
const (
	MaxObjects = 64
	MaxLights  = 16
)

// UniformType is the GLSL type of a single uniform element
type UniformType int

const (
	Int UniformType = iota
	Float
	Vec3
	Vec4
)

// Components returns the number of scalars in one element of the type
func (t UniformType) Components() int {
	switch t {
	case Vec3:
		return 3
	case Vec4:
		return 4
	default:
		return 1
	}
}

func (t UniformType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Vec3:
		return "vec3"
	case Vec4:
		return "vec4"
	default:
		return fmt.Sprintf("UniformType(%d)", int(t))
	}
}

// UniformSpec names one uniform the evaluator declares
type UniformSpec struct {
	Name  string
	Type  UniformType
	Array bool // Sized by MaxObjects or MaxLights in the program
}

// SceneSchema lists the uniforms produced by Flatten, in upload order.
// Renaming or reordering an entry must be mirrored in pkg/gpu/shaders/fragment.glsl.
var SceneSchema = []UniformSpec{
	{Name: "objectTypes", Type: Int, Array: true},
	{Name: "xs", Type: Vec3, Array: true},
	{Name: "ys", Type: Vec3, Array: true},
	{Name: "zs", Type: Vec3, Array: true},
	{Name: "colors", Type: Vec4, Array: true},
	{Name: "specularities", Type: Vec4, Array: true},
	{Name: "shininesses", Type: Int, Array: true},
	{Name: "reflectances", Type: Float, Array: true},
	{Name: "refractions", Type: Float, Array: true},
	{Name: "numOfObjects", Type: Int},
	{Name: "lights", Type: Vec3, Array: true},
	{Name: "lightIntensities", Type: Float, Array: true},
	{Name: "lightNum", Type: Int},
}

// ViewSchema lists the camera uniforms produced by View.Bindings, in upload order
var ViewSchema = []UniformSpec{
	{Name: "cameraPos", Type: Vec3},
	{Name: "theta", Type: Float},
	{Name: "phi", Type: Float},
	{Name: "fieldOfView", Type: Float},
	{Name: "ambientLight", Type: Float},
}

// Binding pairs a uniform spec with the data to upload for it. Exactly one of
// Ints or Floats is set, holding Count*Type.Components() scalars.
type Binding struct {
	Spec   UniformSpec
	Count  int
	Ints   []int32
	Floats []float32
}

func intBinding(spec UniformSpec, values []int32) Binding {
	return Binding{Spec: spec, Count: len(values), Ints: values}
}

func floatBinding(spec UniformSpec, values []float32) Binding {
	return Binding{Spec: spec, Count: len(values) / spec.Type.Components(), Floats: values}
}

// Len returns the number of scalars carried by the binding
func (b Binding) Len() int {
	if b.Ints != nil {
		return len(b.Ints)
	}
	return len(b.Floats)
}

// ShaderDefines returns the preprocessor lines that size the evaluator's arrays
func ShaderDefines() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#define MAX_OBJECTS %d\n", MaxObjects)
	fmt.Fprintf(&sb, "#define MAX_LIGHTS %d\n", MaxLights)
	return sb.String()
}
