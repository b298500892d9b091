package renderer

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-shader-raytracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Config contains rendering configuration
type Config struct {
	MaxDepth    int // Maximum ray depth, primary ray included
	NumWorkers  int // Worker goroutines; 0 means one per CPU
	RowsPerTask int // Height of the band each worker task renders
}

// DefaultConfig returns the settings fragment.glsl is compiled with
func DefaultConfig() Config {
	return Config{
		MaxDepth:    5,
		NumWorkers:  0,
		RowsPerTask: 8,
	}
}

const (
	ambientScale = 0.1  // ambientLight is scaled by this before tinting the base color
	surfaceBias  = 1e-3 // secondary ray origins are pushed off the surface by this much
)

var (
	backgroundTop    = mgl32.Vec3{0.3, 0.35, 0.45}
	backgroundBottom = mgl32.Vec3{0.05, 0.05, 0.05}
)

// ErrNoScene is returned when rendering before any scene was uploaded
var ErrNoScene = errors.New("no scene uploaded")

type pointLight struct {
	position  mgl32.Vec3
	intensity float32
}

// Raytracer evaluates the uniform arrays on the CPU the same way fragment.glsl
// does on the GPU. It implements controller.Target.
type Raytracer struct {
	width  int
	height int
	config Config

	objects []scene.Object
	lights  []pointLight
	view    scene.View
	loaded  bool
}

// NewRaytracer creates a new raytracer for a width x height image
func NewRaytracer(width, height int, config Config) *Raytracer {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultConfig().MaxDepth
	}
	if config.RowsPerTask <= 0 {
		config.RowsPerTask = DefaultConfig().RowsPerTask
	}
	return &Raytracer{
		width:  width,
		height: height,
		config: config,
		view:   scene.View{FieldOfView: math.Pi / 2, AmbientLight: 1},
	}
}

// UploadScene validates the arrays and decodes them into objects and lights
func (rt *Raytracer) UploadScene(u *scene.Uniforms) error {
	if err := u.Validate(); err != nil {
		return err
	}

	objects := make([]scene.Object, u.NumOfObjects)
	for i := range objects {
		objects[i] = u.Object(i)
	}
	lights := make([]pointLight, u.LightNum)
	for i := range lights {
		lights[i].position, lights[i].intensity = u.Light(i)
	}

	rt.objects = objects
	rt.lights = lights
	rt.loaded = true
	return nil
}

// UploadView sets the camera and lighting scalars
func (rt *Raytracer) UploadView(v scene.View) error {
	rt.view = v
	return nil
}

// hitWorld finds the closest intersection along the ray
func (rt *Raytracer) hitWorld(ray Ray, limit float32) (HitRecord, bool) {
	var closest HitRecord
	hitAnything := false

	for i := range rt.objects {
		t, normal, ok := hitObject(&rt.objects[i], ray, limit)
		if !ok {
			continue
		}
		limit = t
		hitAnything = true

		closest = HitRecord{T: t, Point: ray.At(t), Object: i}
		closest.FrontFace = normal.Dot(ray.Direction) < 0
		if closest.FrontFace {
			closest.Normal = normal
		} else {
			closest.Normal = normal.Mul(-1)
		}
	}

	return closest, hitAnything
}

// occluded reports whether anything lies between point and a light at distance dist
func (rt *Raytracer) occluded(point, toLight mgl32.Vec3, dist float32) bool {
	shadowRay := Ray{Origin: point, Direction: toLight}
	_, hit := rt.hitWorld(shadowRay, dist-surfaceBias)
	return hit
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r Ray) mgl32.Vec3 {
	t := 0.5 * (r.Direction.Y() + 1)
	return backgroundBottom.Mul(1 - t).Add(backgroundTop.Mul(t))
}

// shade computes the local Phong color at a hit: ambient plus the diffuse and
// specular terms of every unshadowed light
func (rt *Raytracer) shade(hit HitRecord, ray Ray) mgl32.Vec3 {
	o := &rt.objects[hit.Object]
	base := o.Color.Vec3()
	spec := o.Specularity.Vec3()
	toEye := ray.Direction.Mul(-1)

	c := base.Mul(ambientScale * rt.view.AmbientLight)
	origin := hit.Point.Add(hit.Normal.Mul(surfaceBias))

	for _, l := range rt.lights {
		toLight := l.position.Sub(hit.Point)
		dist := toLight.Len()
		if dist == 0 {
			continue
		}
		toLight = toLight.Mul(1 / dist)

		diffuse := hit.Normal.Dot(toLight)
		if diffuse <= 0 || rt.occluded(origin, toLight, dist) {
			continue
		}
		c = c.Add(base.Mul(diffuse * l.intensity))

		highlight := reflect(toLight.Mul(-1), hit.Normal).Dot(toEye)
		if highlight > 0 {
			strength := float32(math.Pow(float64(highlight), float64(o.Shininess)))
			c = c.Add(spec.Mul(strength * l.intensity))
		}
	}
	return c
}

// rayColorRecursive returns the color seen along a ray. Reflectance splits the
// light between the local color and a mirror bounce; the color's alpha splits
// the remainder between the surface and a transmitted ray.
func (rt *Raytracer) rayColorRecursive(ray Ray, depth int) mgl32.Vec3 {
	hit, isHit := rt.hitWorld(ray, tMax)
	if !isHit {
		return rt.backgroundGradient(ray)
	}

	o := &rt.objects[hit.Object]
	r := mgl32.Clamp(o.Reflectance, 0, 1)
	a := mgl32.Clamp(o.Color.W(), 0, 1)

	c := rt.shade(hit, ray).Mul((1 - r) * a)
	if depth+1 >= rt.config.MaxDepth {
		return c
	}

	if r > 0 {
		bounce := offsetRay(hit, reflect(ray.Direction, hit.Normal))
		c = c.Add(rt.rayColorRecursive(bounce, depth+1).Mul(r))
	}
	if a < 1 {
		through := offsetRay(hit, transmit(o, hit, ray.Direction))
		c = c.Add(rt.rayColorRecursive(through, depth+1).Mul((1 - r) * (1 - a)))
	}
	return c
}

// RayColor returns the color for a primary ray
func (rt *Raytracer) RayColor(ray Ray) mgl32.Vec3 {
	return rt.rayColorRecursive(ray, 0)
}

// transmit returns the direction of the ray passing through a surface. Spheres
// bend it by their refraction index; flat objects are thin and let it through
// unchanged. Total internal reflection mirrors it instead.
func transmit(o *scene.Object, hit HitRecord, dir mgl32.Vec3) mgl32.Vec3 {
	if o.Kind != scene.Sphere || o.Refraction <= 0 {
		return dir
	}
	eta := 1 / o.Refraction
	if !hit.FrontFace {
		eta = o.Refraction
	}
	if t, ok := refract(dir, hit.Normal, eta); ok {
		return t
	}
	return reflect(dir, hit.Normal)
}

// offsetRay starts a secondary ray just off the surface on the side it travels to
func offsetRay(hit HitRecord, dir mgl32.Vec3) Ray {
	offset := hit.Normal.Mul(surfaceBias)
	if dir.Dot(hit.Normal) < 0 {
		offset = offset.Mul(-1)
	}
	return NewRay(hit.Point.Add(offset), dir)
}

func reflect(dir, normal mgl32.Vec3) mgl32.Vec3 {
	return dir.Sub(normal.Mul(2 * dir.Dot(normal)))
}

// refract follows the GLSL refract() definition
func refract(dir, normal mgl32.Vec3, eta float32) (mgl32.Vec3, bool) {
	cosi := normal.Dot(dir)
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return mgl32.Vec3{}, false
	}
	return dir.Mul(eta).Sub(normal.Mul(eta*cosi + float32(math.Sqrt(float64(k))))), true
}

// vec3ToColor converts a color to RGBA with clamping
func vec3ToColor(c mgl32.Vec3) color.RGBA {
	return color.RGBA{
		R: uint8(255*mgl32.Clamp(c.X(), 0, 1) + 0.5),
		G: uint8(255*mgl32.Clamp(c.Y(), 0, 1) + 0.5),
		B: uint8(255*mgl32.Clamp(c.Z(), 0, 1) + 0.5),
		A: 255,
	}
}

// RenderBounds renders the pixels inside bounds into img
func (rt *Raytracer) RenderBounds(img *image.RGBA, bounds image.Rectangle, camera *Camera) RenderStats {
	var stats RenderStats
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ray := camera.GetRay(i, j)
			if _, hit := rt.hitWorld(ray, tMax); hit {
				stats.HitPixels++
			}
			img.SetRGBA(i, j, vec3ToColor(rt.RayColor(ray)))
			stats.TotalPixels++
		}
	}
	return stats
}

// Render renders the current scene and view, splitting the image into bands
// rendered by a worker pool
func (rt *Raytracer) Render() (*image.RGBA, RenderStats, error) {
	if !rt.loaded {
		return nil, RenderStats{}, ErrNoScene
	}

	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	camera := NewCamera(rt.view, rt.width, rt.height)

	var tasks []RowTask
	for y := 0; y < rt.height; y += rt.config.RowsPerTask {
		bottom := min(y+rt.config.RowsPerTask, rt.height)
		tasks = append(tasks, RowTask{
			Bounds: image.Rect(0, y, rt.width, bottom),
			TaskID: len(tasks),
		})
	}

	pool := NewWorkerPool(rt, camera, img, len(tasks), rt.config.NumWorkers)
	pool.Start()
	for _, task := range tasks {
		pool.SubmitTask(task)
	}

	var stats RenderStats
	for range tasks {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	return img, stats, nil
}
