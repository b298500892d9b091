package loaders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// objectSlots is the number of numeric fields every object block is padded or
// truncated to. Triangles use all of them.
const objectSlots = 13

// requiredFields is the number of numbers each kind actually reads
var requiredFields = map[scene.ObjectKind]int{
	scene.Sphere:   8,
	scene.Plane:    10,
	scene.Triangle: 13,
}

// buildObject converts an object block into a scene object carrying a copy of
// the current material. The token after the keyword is a marker and is skipped.
func buildObject(block string, m scene.Material, logger core.Logger) (scene.Object, error) {
	tokens := strings.Fields(block)
	if len(tokens) == 0 {
		return scene.Object{}, fmt.Errorf("empty block")
	}
	kind, ok := scene.ParseObjectKind(tokens[0])
	if !ok {
		return scene.Object{}, fmt.Errorf("unknown object type %q", tokens[0])
	}

	var values []float32
	if len(tokens) > 2 {
		for _, tok := range tokens[2:] {
			if strings.HasPrefix(tok, "}") {
				break
			}
			v, err := parseFloat32(tok)
			if err != nil {
				return scene.Object{}, err
			}
			values = append(values, v)
		}
	}

	if len(values) > objectSlots {
		logger.Printf("Warning: %s block has %d numbers, only the first %d are used\n",
			kind, len(values), objectSlots)
		values = values[:objectSlots]
	} else if len(values) < requiredFields[kind] {
		logger.Printf("Warning: %s block has %d numbers, expected %d; missing fields set to 0\n",
			kind, len(values), requiredFields[kind])
	}

	var info [objectSlots]float32
	copy(info[:], values)

	obj := scene.Object{Kind: kind}
	switch kind {
	case scene.Sphere:
		obj.P0 = mgl32.Vec3{info[0], info[1], info[2]}
		obj.P1 = mgl32.Vec3{info[3], 0, 0}
		obj.Color = mgl32.Vec4{info[4], info[5], info[6], info[7]}
	case scene.Plane:
		obj.P0 = mgl32.Vec3{info[0], info[1], info[2]}
		obj.P1 = mgl32.Vec3{info[3], info[4], info[5]}
		obj.Color = mgl32.Vec4{info[6], info[7], info[8], info[9]}
	case scene.Triangle:
		obj.P0 = mgl32.Vec3{info[0], info[1], info[2]}
		obj.P1 = mgl32.Vec3{info[3], info[4], info[5]}
		obj.P2 = mgl32.Vec3{info[6], info[7], info[8]}
		obj.Color = mgl32.Vec4{info[9], info[10], info[11], info[12]}
	}
	m.Apply(&obj)

	return obj, nil
}

// applyMaterial updates m with the keys present in a material block.
// Keys that do not appear keep their previous values.
func applyMaterial(block string, m *scene.Material) error {
	ts := newTokenStream(block)
	ts.next() // keyword

	for {
		key, ok := ts.next()
		if !ok {
			return nil
		}

		switch key {
		case "phong:":
			v, err := ts.readInt(key)
			if err != nil {
				return err
			}
			m.Phong = v
		case "spec:":
			for i := 0; i < 4; i++ {
				v, err := ts.readFloat(key)
				if err != nil {
					return err
				}
				m.Specularity[i] = v
			}
		case "reflectance:":
			v, err := ts.readFloat(key)
			if err != nil {
				return err
			}
			m.Reflectance = v
		case "refraction:":
			v, err := ts.readFloat(key)
			if err != nil {
				return err
			}
			m.Refraction = v
		}
	}
}

// buildLight reads a light block. Position defaults to the origin and
// intensity to 1; a repeated key overrides the earlier value.
func buildLight(block string) (mgl32.Vec3, float32, error) {
	position := mgl32.Vec3{0, 0, 0}
	intensity := float32(1)

	ts := newTokenStream(block)
	ts.next() // keyword

	for {
		key, ok := ts.next()
		if !ok {
			return position, intensity, nil
		}

		switch key {
		case "position:":
			for i := 0; i < 3; i++ {
				v, err := ts.readFloat(key)
				if err != nil {
					return mgl32.Vec3{}, 0, err
				}
				position[i] = v
			}
		case "intensity:":
			v, err := ts.readFloat(key)
			if err != nil {
				return mgl32.Vec3{}, 0, err
			}
			intensity = v
		}
	}
}

// tokenStream walks the whitespace-separated tokens of a block
type tokenStream struct {
	tokens []string
	pos    int
}

func newTokenStream(block string) *tokenStream {
	return &tokenStream{tokens: strings.Fields(block)}
}

func (ts *tokenStream) next() (string, bool) {
	if ts.pos >= len(ts.tokens) {
		return "", false
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	return tok, true
}

// readFloat reads the next token as a value for key
func (ts *tokenStream) readFloat(key string) (float32, error) {
	tok, ok := ts.next()
	if !ok {
		return 0, fmt.Errorf("missing value for %s", key)
	}
	return parseFloat32(tok)
}

// readInt reads the next token as an integer value for key
func (ts *tokenStream) readInt(key string) (int32, error) {
	tok, ok := ts.next()
	if !ok {
		return 0, fmt.Errorf("missing value for %s", key)
	}
	v, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q for %s", tok, key)
	}
	return int32(v), nil
}

func parseFloat32(tok string) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok)
	}
	return float32(v), nil
}
