package gpu

import (
	"fmt"

	"github.com/df07/go-shader-raytracer/pkg/controller"
	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// InputHandler receives translated window events. controller.Controller
// implements it.
type InputHandler interface {
	HandleKey(key controller.Key, action controller.Action)
	HandleScroll(xoffset, yoffset float64)
	ShouldClose() bool
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
// glfw requires it to be created and used from the main OS thread.
type Window struct {
	window *glfw.Window
	logger core.Logger
}

// NewWindow initializes GLFW, opens a window and loads the GL functions
func NewWindow(width, height int, title string, logger core.Logger) (*Window, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	w, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	w.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		w.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Printf("OpenGL %s, GLSL %s, renderer %s\n",
		gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		gl.GoStr(gl.GetString(gl.RENDERER)))

	return &Window{window: w, logger: logger}, nil
}

// SetInputHandler routes key and scroll events to h
func (w *Window) SetInputHandler(h InputHandler) {
	w.window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if k := TranslateKey(key); k != controller.KeyUnknown {
			h.HandleKey(k, TranslateAction(action))
		}
		if h.ShouldClose() {
			w.window.SetShouldClose(true)
		}
	})
	w.window.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		h.HandleScroll(xoff, yoff)
	})
}

// SetResizeHandler registers fn for framebuffer size changes
func (w *Window) SetResizeHandler(fn func(width, height int)) {
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(width, height)
	})
}

// FramebufferSize returns the size in pixels, which differs from the window
// size on high density displays
func (w *Window) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}

// Run calls draw once per frame until the window is asked to close
func (w *Window) Run(draw func()) {
	for !w.window.ShouldClose() {
		draw()
		w.window.SwapBuffers()
		glfw.PollEvents()
	}
}

// Close destroys the window and terminates GLFW
func (w *Window) Close() {
	w.window.Destroy()
	glfw.Terminate()
}

// TranslateKey maps GLFW key codes to controller keys
func TranslateKey(key glfw.Key) controller.Key {
	switch key {
	case glfw.KeyW:
		return controller.KeyW
	case glfw.KeyA:
		return controller.KeyA
	case glfw.KeyS:
		return controller.KeyS
	case glfw.KeyD:
		return controller.KeyD
	case glfw.KeyQ:
		return controller.KeyQ
	case glfw.KeyE:
		return controller.KeyE
	case glfw.KeyLeft:
		return controller.KeyLeft
	case glfw.KeyRight:
		return controller.KeyRight
	case glfw.KeyUp:
		return controller.KeyUp
	case glfw.KeyDown:
		return controller.KeyDown
	case glfw.Key1:
		return controller.Key1
	case glfw.Key2:
		return controller.Key2
	case glfw.Key3:
		return controller.Key3
	case glfw.KeyP:
		return controller.KeyP
	case glfw.KeyEscape:
		return controller.KeyEscape
	default:
		return controller.KeyUnknown
	}
}

// TranslateAction maps GLFW key actions to controller actions
func TranslateAction(action glfw.Action) controller.Action {
	switch action {
	case glfw.Press:
		return controller.Press
	case glfw.Repeat:
		return controller.Repeat
	default:
		return controller.Release
	}
}
