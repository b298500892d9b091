package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/df07/go-shader-raytracer/pkg/controller"
	"github.com/df07/go-shader-raytracer/pkg/core"
	"github.com/df07/go-shader-raytracer/pkg/loaders"
	"github.com/df07/go-shader-raytracer/pkg/renderer"
	"github.com/df07/go-shader-raytracer/pkg/scene"
)

// Server serves scene previews rendered by the CPU evaluator
type Server struct {
	port      int
	scenesDir string
	requests  atomic.Int64
}

// NewServer creates a new web server for the scene files in scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene  string  `json:"scene"`  // Scene id, the file name without extension
	Width  int     `json:"width"`  // Image width
	Height int     `json:"height"` // Image height
	Theta  float64 `json:"theta"`  // Camera yaw in radians
	Phi    float64 `json:"phi"`    // Camera pitch in radians
	Zoom   float64 `json:"zoom"`   // Raw field of view value before the atan mapping
}

// RenderResult is the payload of the "result" SSE event
type RenderResult struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels int     `json:"totalPixels"`
	HitPixels   int     `json:"hitPixels"`
	Coverage    float64 `json:"coverage"`
	Luminance   float64 `json:"luminance"` // Average luminance of the image
}

// UniformValues is one flattened uniform in the JSON inspection response
type UniformValues struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Count  int       `json:"count"`
	Ints   []int32   `json:"ints,omitempty"`
	Floats []float32 `json:"floats,omitempty"`
}

// UniformsResponse describes a parsed and flattened scene
type UniformsResponse struct {
	Scene        string           `json:"scene"`
	NumOfObjects int32            `json:"numOfObjects"`
	LightNum     int32            `json:"lightNum"`
	Uniforms     []UniformValues  `json:"uniforms"`
	View         []UniformValues  `json:"view"`
	Console      []ConsoleMessage `json:"console"`
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/uniforms", s.handleUniforms)
	mux.HandleFunc("/api/render", s.handleRender)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scene files with their header metadata
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if scenes == nil {
		scenes = []scene.SceneInfo{}
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleUniforms parses a scene and returns the arrays the viewer would upload
func (s *Server) handleUniforms(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("scene")
	if sceneID == "" {
		sceneID = "scene1" // Default scene
	}

	consoleChan := make(chan ConsoleMessage, 64)
	u, view, err := s.loadScene(sceneID, NewWebLogger(s.nextRequestID(), consoleChan))
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, UniformsResponse{
		Scene:        sceneID,
		NumOfObjects: u.NumOfObjects,
		LightNum:     u.LightNum,
		Uniforms:     toUniformValues(u.Bindings()),
		View:         toUniformValues(view.Bindings()),
		Console:      drainConsole(consoleChan),
	})
}

// handleRender renders a scene on the CPU and streams the diagnostics and the
// finished image over SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 64)
	u, view, err := s.loadScene(req.Scene, NewWebLogger(s.nextRequestID(), consoleChan))
	for _, msg := range drainConsole(consoleChan) {
		data, _ := json.Marshal(msg)
		s.sendSSEEvent(w, "console", string(data))
	}
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Scene error: %v", err))
		return
	}

	view.Theta = float32(req.Theta)
	view.Phi = float32(req.Phi)
	view.FieldOfView = controller.Camera{FOV: float32(req.Zoom)}.FieldOfView()

	startTime := time.Now()
	rt := renderer.NewRaytracer(req.Width, req.Height, renderer.DefaultConfig())
	if err := rt.UploadScene(u); err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}
	if err := rt.UploadView(view); err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}

	img, stats, err := rt.Render()
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("Render error: %v", err))
		return
	}

	imageData, err := s.imageToBase64PNG(img)
	if err != nil {
		s.sendSSEError(w, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	data, err := json.Marshal(RenderResult{
		ImageData: imageData,
		Stats: Stats{
			TotalPixels: stats.TotalPixels,
			HitPixels:   stats.HitPixels,
			Coverage:    stats.Coverage(),
			Luminance:   renderer.CalculateAverageLuminance(img),
		},
		ElapsedMs: time.Since(startTime).Milliseconds(),
	})
	if err != nil {
		s.sendSSEError(w, err.Error())
		return
	}
	s.sendSSEEvent(w, "result", string(data))

	// Send completion event
	s.sendSSEEvent(w, "complete", "Rendering completed")
}

// loadScene parses and flattens a scene file and derives the view the viewer
// would use for it: the key binding's ambient light and camera reset when
// the scene is bound to a key, defaults otherwise.
func (s *Server) loadScene(sceneID string, logger core.Logger) (*scene.Uniforms, scene.View, error) {
	info, err := scene.FindScene(s.scenesDir, sceneID)
	if err != nil {
		return nil, scene.View{}, err
	}

	sc, err := loaders.LoadScene(info.FilePath, logger)
	if err != nil {
		return nil, scene.View{}, err
	}
	u := scene.Flatten(sc)
	if err := u.Validate(); err != nil {
		return nil, scene.View{}, err
	}

	camera := controller.NewCamera()
	view := scene.View{FieldOfView: camera.FieldOfView(), AmbientLight: 1}
	for _, b := range controller.DefaultBindings(s.scenesDir) {
		if b.Path != info.FilePath {
			continue
		}
		view.AmbientLight = b.AmbientLight
		if b.ResetCamera != nil {
			view.CameraPos = *b.ResetCamera
		}
	}
	return u, view, nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}

	if sceneID := r.URL.Query().Get("scene"); sceneID != "" {
		req.Scene = sceneID
	} else {
		req.Scene = "scene1" // Default scene
	}

	var err error
	if req.Width, err = parseIntParam(r.URL.Query(), "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(r.URL.Query(), "height", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Theta, err = parseFloatParam(r.URL.Query(), "theta", 0, -2*math.Pi, 2*math.Pi); err != nil {
		return nil, err
	}
	if req.Phi, err = parseFloatParam(r.URL.Query(), "phi", 0, -math.Pi/2, math.Pi/2); err != nil {
		return nil, err
	}
	if req.Zoom, err = parseFloatParam(r.URL.Query(), "zoom", math.Pi/3, -100, 100); err != nil {
		return nil, err
	}

	// Performance warning
	if req.Width*req.Height > 1000*1000 {
		log.Printf("Render warning: %dx%d preview may render slowly", req.Width, req.Height)
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func (s *Server) nextRequestID() string {
	return fmt.Sprintf("req-%d", s.requests.Add(1))
}

// statusFor maps load errors to HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, scene.ErrSceneNotFound) {
		return http.StatusNotFound
	}
	return http.StatusUnprocessableEntity
}

func toUniformValues(bindings []scene.Binding) []UniformValues {
	values := make([]UniformValues, len(bindings))
	for i, b := range bindings {
		values[i] = UniformValues{
			Name:   b.Spec.Name,
			Type:   b.Spec.Type.String(),
			Count:  b.Count,
			Ints:   b.Ints,
			Floats: b.Floats,
		}
	}
	return values
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(w http.ResponseWriter, message string) error {
	return s.sendSSEEvent(w, "error", message)
}

// sendSSEEvent sends a generic SSE event
func (s *Server) sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if flusher, ok := w.(http.Flusher); ok {
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
		return nil
	}
	return fmt.Errorf("streaming not supported")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
