package gpu

import (
	"fmt"

	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// Program is the linked ray casting program. It implements controller.Target;
// all methods must run on the thread that owns the GL context.
type Program struct {
	id        uint32
	locations map[string]int32
	logger    core.Logger
}

// NewProgram compiles the embedded shaders with the scene capacity defines
// and links them
func NewProgram(logger core.Logger) (*Program, error) {
	return NewProgramFromSource(vertexSource, fragmentSource, logger)
}

// NewProgramFromSource compiles and links the given shader sources
func NewProgramFromSource(vertexSrc, fragmentSrc string, logger core.Logger) (*Program, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	defines := scene.ShaderDefines()

	vertex, err := compileShader(injectDefines(vertexSrc, defines), gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer gl.DeleteShader(vertex)

	fragment, err := compileShader(injectDefines(fragmentSrc, defines), gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer gl.DeleteShader(fragment)

	id, err := linkProgram(vertex, fragment)
	if err != nil {
		return nil, err
	}

	return &Program{
		id:        id,
		locations: make(map[string]int32),
		logger:    logger,
	}, nil
}

// location looks up and caches a uniform location. -1 means the uniform was
// optimized away, and uploads to it are silently dropped by GL.
func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	if loc < 0 {
		p.logger.Printf("Warning: uniform %s not active in program\n", name)
	}
	p.locations[name] = loc
	return loc
}

// UploadScene sends the scene arrays in schema order
func (p *Program) UploadScene(u *scene.Uniforms) error {
	if err := u.Validate(); err != nil {
		return err
	}
	gl.UseProgram(p.id)
	for _, b := range u.Bindings() {
		if err := p.upload(b); err != nil {
			return err
		}
	}
	return checkError("upload scene")
}

// UploadView sends the camera and lighting scalars
func (p *Program) UploadView(v scene.View) error {
	gl.UseProgram(p.id)
	for _, b := range v.Bindings() {
		if err := p.upload(b); err != nil {
			return err
		}
	}
	return checkError("upload view")
}

// SetViewport resizes the GL viewport and updates the aspect ratio uniform
func (p *Program) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	if height == 0 {
		return
	}
	gl.UseProgram(p.id)
	gl.Uniform1f(p.location("aspectRatio"), float32(width)/float32(height))
}

// upload dispatches one binding to the matching glUniform call
func (p *Program) upload(b scene.Binding) error {
	// Empty arrays leave the previous contents; the count uniforms bound them
	if b.Count == 0 {
		return nil
	}
	loc := p.location(b.Spec.Name)
	count := int32(b.Count)

	switch b.Spec.Type {
	case scene.Int:
		if b.Spec.Array {
			gl.Uniform1iv(loc, count, &b.Ints[0])
		} else {
			gl.Uniform1i(loc, b.Ints[0])
		}
	case scene.Float:
		if b.Spec.Array {
			gl.Uniform1fv(loc, count, &b.Floats[0])
		} else {
			gl.Uniform1f(loc, b.Floats[0])
		}
	case scene.Vec3:
		if b.Spec.Array {
			gl.Uniform3fv(loc, count, &b.Floats[0])
		} else {
			gl.Uniform3f(loc, b.Floats[0], b.Floats[1], b.Floats[2])
		}
	case scene.Vec4:
		gl.Uniform4fv(loc, count, &b.Floats[0])
	default:
		return fmt.Errorf("uniform %s has unsupported type %v", b.Spec.Name, b.Spec.Type)
	}
	return nil
}

// Draw renders the quad with the program
func (p *Program) Draw(q *Quad) {
	gl.ClearColor(0.2, 0.2, 0.2, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(p.id)
	q.Draw()
	gl.UseProgram(0)
}

// Delete releases the program
func (p *Program) Delete() {
	gl.DeleteProgram(p.id)
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%04x", op, code)
	}
	return nil
}
