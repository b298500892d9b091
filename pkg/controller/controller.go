package controller

import (
	"fmt"
	"path/filepath"

	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/loaders"
	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Target receives the uniform data. The GL program and the CPU renderer both
// implement it.
type Target interface {
	UploadScene(u *scene.Uniforms) error
	UploadView(v scene.View) error
}

// SceneBinding maps a key to a scene file and the view settings applied when
// that scene is loaded
type SceneBinding struct {
	Key          Key
	Path         string
	AmbientLight float32
	ResetCamera  *mgl32.Vec3 // nil keeps the current camera position
}

// DefaultBindings returns the three scenes bound to keys 1, 2 and 3
func DefaultBindings(dir string) []SceneBinding {
	return []SceneBinding{
		{Key: Key1, Path: filepath.Join(dir, "scene1.txt"), AmbientLight: 1},
		{Key: Key2, Path: filepath.Join(dir, "scene2.txt"), AmbientLight: 3},
		{Key: Key3, Path: filepath.Join(dir, "scene3.txt"), AmbientLight: 3, ResetCamera: &mgl32.Vec3{0, 4, 14}},
	}
}

// Controller owns the active scene and the camera, and pushes every change to
// its target. It is driven from the window's event loop and is not safe for
// concurrent use.
type Controller struct {
	target   Target
	bindings []SceneBinding
	logger   core.Logger

	camera   Camera
	ambient  float32
	scene    *scene.Scene
	uniforms *scene.Uniforms

	shouldClose bool
	onCapture   func()
}

// New creates a controller. No scene is active until LoadScene succeeds.
func New(target Target, bindings []SceneBinding, logger core.Logger) *Controller {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Controller{
		target:   target,
		bindings: bindings,
		logger:   logger,
		camera:   NewCamera(),
		ambient:  1,
	}
}

// SetCaptureHandler registers the function run when the capture key is pressed
func (c *Controller) SetCaptureHandler(fn func()) {
	c.onCapture = fn
}

// LoadScene parses the binding's file into a fresh scene and uploads it. The
// active scene is replaced only after the upload succeeds; on any error the
// previous scene, camera and ambient light stay in place.
func (c *Controller) LoadScene(b SceneBinding) error {
	s, err := loaders.LoadScene(b.Path, c.logger)
	if err != nil {
		return err
	}

	u := scene.Flatten(s)
	if err := u.Validate(); err != nil {
		return fmt.Errorf("%s: %w", b.Path, err)
	}
	if err := c.target.UploadScene(u); err != nil {
		return fmt.Errorf("upload %s: %w", b.Path, err)
	}

	c.scene = s
	c.uniforms = u
	c.ambient = b.AmbientLight
	if b.ResetCamera != nil {
		c.camera.Position = *b.ResetCamera
	}

	c.logger.Printf("Loaded scene %s: %d objects, %d lights\n", s.Name, len(s.Objects), s.Lights.Len())
	return c.pushView()
}

// HandleKey reacts to a key event
func (c *Controller) HandleKey(key Key, action Action) {
	if action == Release {
		return
	}

	if c.camera.Apply(key) {
		if err := c.pushView(); err != nil {
			c.logger.Printf("Error updating view: %v\n", err)
		}
		return
	}

	// Everything below fires once per press
	if action != Press {
		return
	}

	switch key {
	case KeyEscape:
		c.shouldClose = true
	case KeyP:
		if c.onCapture != nil {
			c.onCapture()
		}
	default:
		for _, b := range c.bindings {
			if b.Key != key {
				continue
			}
			if err := c.LoadScene(b); err != nil {
				c.logger.Printf("Error loading scene for key %s: %v\n", key, err)
			}
			return
		}
	}
}

// HandleScroll reacts to mouse wheel input; only the vertical offset is used
func (c *Controller) HandleScroll(xoffset, yoffset float64) {
	c.camera.Zoom(yoffset)
	if err := c.pushView(); err != nil {
		c.logger.Printf("Error updating view: %v\n", err)
	}
}

func (c *Controller) pushView() error {
	return c.target.UploadView(c.View())
}

// View returns the current view uniforms
func (c *Controller) View() scene.View {
	return scene.View{
		CameraPos:    c.camera.Position,
		Theta:        c.camera.Yaw,
		Phi:          c.camera.Pitch,
		FieldOfView:  c.camera.FieldOfView(),
		AmbientLight: c.ambient,
	}
}

// Camera returns a copy of the camera state
func (c *Controller) Camera() Camera {
	return c.camera
}

// Scene returns the active scene, or nil before the first successful load
func (c *Controller) Scene() *scene.Scene {
	return c.scene
}

// Uniforms returns the flattened arrays of the active scene
func (c *Controller) Uniforms() *scene.Uniforms {
	return c.uniforms
}

// ShouldClose reports whether Escape has been pressed
func (c *Controller) ShouldClose() bool {
	return c.shouldClose
}
