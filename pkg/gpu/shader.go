package gpu

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

//go:embed shaders/vertex.glsl
var vertexSource string

//go:embed shaders/fragment.glsl
var fragmentSource string

// injectDefines inserts defines on the line after the #version directive,
// which GLSL requires to come first. Sources without one get them prepended.
func injectDefines(source, defines string) string {
	if !strings.HasPrefix(strings.TrimSpace(source), "#version") {
		return defines + source
	}
	idx := strings.Index(source, "\n")
	if idx < 0 {
		return source + "\n" + defines
	}
	return source[:idx+1] + defines + source[idx+1:]
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile: %s", strings.TrimRight(string(log), "\x00"))
	}
	return shader, nil
}

func linkProgram(vertex, fragment uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link program: %s", strings.TrimRight(string(log), "\x00"))
	}
	return program, nil
}
