package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/df07/go-shader-raytracer/pkg/controller"
	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/gpu"
	"github.com/df07/go-shader-raytracer/pkg/loaders"
	"github.com/df07/go-shader-raytracer/pkg/renderer"
	"github.com/df07/go-shader-raytracer/pkg/scene"
)

func init() {
	// GLFW and the GL context must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	// Parse command line flags
	scenesDir := flag.String("scenes", "scenes", "Directory containing scene files")
	sceneID := flag.String("scene", "scene1", "Scene to start with (file name without extension)")
	width := flag.Int("width", 1000, "Window or image width")
	height := flag.Int("height", 1000, "Window or image height")
	headless := flag.Bool("headless", false, "Render one frame on the CPU and save it instead of opening a window")
	output := flag.String("out", "", "Output file for headless renders (default output/<scene>/render_<timestamp>.png)")
	list := flag.Bool("list", false, "List available scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		showHelp()
		return
	}

	if *list {
		if err := listScenes(*scenesDir); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := core.NewDefaultLogger()

	binding, err := resolveBinding(*scenesDir, *sceneID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if *headless {
		filename := *output
		if filename == "" {
			filename = filepath.Join(createOutputDir(*sceneID), fmt.Sprintf("render_%s.png", time.Now().Format("20060102_150405")))
		}
		if err := renderHeadless(*scenesDir, binding, *width, *height, filename, logger); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(*scenesDir, binding, *width, *height, logger); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Shader Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Controls:")
	fmt.Println("  W/S        move forward/back")
	fmt.Println("  A/D        move left/right")
	fmt.Println("  Q/E        move down/up")
	fmt.Println("  arrows     turn and look up/down")
	fmt.Println("  scroll     zoom")
	fmt.Println("  1/2/3      load scene1/scene2/scene3")
	fmt.Println("  P          save a screenshot")
	fmt.Println("  Esc        quit")
}

// listScenes prints the scenes found in dir
func listScenes(dir string) error {
	scenes, err := scene.ListScenes(dir)
	if err != nil {
		return err
	}
	for _, s := range scenes {
		fmt.Printf("  %-12s %s", s.ID, s.Name)
		if s.Description != "" {
			fmt.Printf(" - %s", s.Description)
		}
		fmt.Println()
	}
	return nil
}

// resolveBinding finds the key binding for a scene id. Scenes that are not
// bound to a key get default view settings.
func resolveBinding(scenesDir, sceneID string) (controller.SceneBinding, error) {
	info, err := scene.FindScene(scenesDir, sceneID)
	if err != nil {
		return controller.SceneBinding{}, err
	}
	for _, b := range controller.DefaultBindings(scenesDir) {
		if b.Path == info.FilePath {
			return b, nil
		}
	}
	return controller.SceneBinding{Key: controller.KeyUnknown, Path: info.FilePath, AmbientLight: 1}, nil
}

// createOutputDir returns the directory headless renders of a scene are saved to
func createOutputDir(sceneID string) string {
	base := filepath.Base(sceneID)
	base = base[:len(base)-len(filepath.Ext(base))]
	if base == "" || base == "." {
		base = "scene"
	}
	return filepath.Join("output", base)
}

// renderHeadless loads a scene through the controller into the CPU evaluator
// and writes one frame to filename
func renderHeadless(scenesDir string, binding controller.SceneBinding, width, height int, filename string, logger core.Logger) error {
	rt := renderer.NewRaytracer(width, height, renderer.DefaultConfig())
	ctrl := controller.New(rt, controller.DefaultBindings(scenesDir), logger)
	if err := ctrl.LoadScene(binding); err != nil {
		return err
	}

	startTime := time.Now()
	img, stats, err := rt.Render()
	if err != nil {
		return err
	}
	logger.Printf("Render completed in %v (%.1f%% coverage, average luminance %.3f)\n",
		time.Since(startTime), 100*stats.Coverage(), renderer.CalculateAverageLuminance(img))

	if err := loaders.SaveImage(filename, img); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	return nil
}

// runInteractive opens the window and hands input to the controller until
// Escape is pressed or the window is closed
func runInteractive(scenesDir string, binding controller.SceneBinding, width, height int, logger core.Logger) error {
	window, err := gpu.NewWindow(width, height, "Shader Raytracer", logger)
	if err != nil {
		return err
	}
	defer window.Close()

	program, err := gpu.NewProgram(logger)
	if err != nil {
		return err
	}
	defer program.Delete()

	quad := gpu.NewQuad()
	defer quad.Delete()

	ctrl := controller.New(program, controller.DefaultBindings(scenesDir), logger)
	if err := ctrl.LoadScene(binding); err != nil {
		return err
	}

	fbWidth, fbHeight := window.FramebufferSize()
	program.SetViewport(fbWidth, fbHeight)
	window.SetResizeHandler(func(w, h int) {
		fbWidth, fbHeight = w, h
		program.SetViewport(w, h)
	})

	ctrl.SetCaptureHandler(func() {
		img := gpu.CaptureFrame(fbWidth, fbHeight)
		filename := filepath.Join("screenshots", fmt.Sprintf("capture_%s.png", time.Now().Format("20060102_150405")))
		if err := loaders.SaveImage(filename, img); err != nil {
			logger.Printf("Error saving screenshot: %v\n", err)
			return
		}
		logger.Printf("Screenshot saved as %s\n", filename)
	})
	window.SetInputHandler(ctrl)

	window.Run(func() {
		program.Draw(quad)
	})
	return nil
}
