// Package config loads paint scenes: the volumes to paint, the brush, the
// cameras and the file paths the tools read and write.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/meshgen"
	"mesh-painter/internal/painter"
	"mesh-painter/internal/selector"
)

// Config holds the scene and all render settings.
type Config struct {
	// BaseDir anchors relative paths. Load sets it to the file's directory.
	BaseDir string `json:"-" toml:"-"`

	// Scene
	Painter  painter.Type  `json:"painter" toml:"painter"`
	Volumes  []Volume      `json:"volumes" toml:"volumes"`
	Instance Transform     `json:"instance" toml:"instance"`
	Camera   camera.Camera `json:"camera" toml:"camera"`
	Views    []View        `json:"views" toml:"views"`
	Brush    Brush         `json:"brush" toml:"brush"`

	// Paths
	Events    string `json:"events" toml:"events"`
	Project   string `json:"project" toml:"project"`
	OutputDir string `json:"output_dir" toml:"output_dir"`

	// Render settings
	RenderSize  int    `json:"render_size" toml:"render_size"`
	Supersample int    `json:"supersample" toml:"supersample"`
	Format      string `json:"format" toml:"format"`
	Workers     int    `json:"workers" toml:"workers"`
}

// Volume is one paintable part of the instance.
type Volume struct {
	Name      string         `json:"name" toml:"name"`
	Mesh      meshgen.Params `json:"mesh" toml:"mesh"`
	Transform Transform      `json:"transform" toml:"transform"`
}

// Transform places a volume or the instance. Rotate is XYZ Euler degrees;
// a zero Scale means 1.
type Transform struct {
	Translate mathutil.Vec3 `json:"translate" toml:"translate"`
	Rotate    mathutil.Vec3 `json:"rotate" toml:"rotate"`
	Scale     mathutil.Vec3 `json:"scale" toml:"scale"`
}

// Matrix returns translate × rotate × scale.
func (t Transform) Matrix() mathutil.Mat4 {
	s := t.Scale
	if s == (mathutil.Vec3{}) {
		s = mathutil.Vec3{1, 1, 1}
	}
	return mathutil.Compose(t.Translate, mathutil.EulerDegToMat3(t.Rotate), s)
}

// View is a preview camera orbiting the scene. Zero Distance fits the view
// to the scene bounds.
type View struct {
	Name        string  `json:"name" toml:"name"`
	Azimuth     float64 `json:"azimuth" toml:"azimuth"`
	Elevation   float64 `json:"elevation" toml:"elevation"`
	Distance    float64 `json:"distance,omitempty" toml:"distance,omitempty"`
	Perspective bool    `json:"perspective,omitempty" toml:"perspective,omitempty"`
}

// Camera builds the view's camera around pts for a size×size image.
func (v View) Camera(pts []mathutil.Vec3, size, margin int) camera.Camera {
	lo, hi := bounds(pts)
	dist := v.Distance
	if dist <= 0 {
		dist = 100
	}
	c := camera.Orbit(mathutil.Midpoint(lo, hi), dist, v.Azimuth, v.Elevation, size, size)
	c.Perspective = v.Perspective
	if !v.Perspective || v.Distance <= 0 {
		c.Fit(pts, margin)
	}
	return c
}

func bounds(pts []mathutil.Vec3) (lo, hi mathutil.Vec3) {
	if len(pts) == 0 {
		return lo, hi
	}
	lo, hi = pts[0], pts[0]
	for _, p := range pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Brush configures the selector of every volume and the initial cursor.
type Brush struct {
	Radius       float64 `json:"radius" toml:"radius"`
	MinEdge      float64 `json:"min_edge" toml:"min_edge"`
	EdgeLimit    float64 `json:"edge_limit,omitempty" toml:"edge_limit,omitempty"`
	Cursor       string  `json:"cursor" toml:"cursor"`
	FacingCutoff float64 `json:"facing_cutoff,omitempty" toml:"facing_cutoff,omitempty"`
}

// SelectorOptions converts the brush to selector options.
func (b Brush) SelectorOptions() (selector.Options, error) {
	opts := selector.Options{
		MinEdgeLength: b.MinEdge,
		EdgeLimit:     b.EdgeLimit,
		FacingCutoff:  b.FacingCutoff,
	}
	switch b.Cursor {
	case "", "sphere":
		opts.Cursor = selector.CursorSphere
	case "circle":
		opts.Cursor = selector.CursorCircle
	default:
		return opts, fmt.Errorf("config: unknown cursor %q", b.Cursor)
	}
	return opts, nil
}

// Load reads a JSON or TOML (by .toml extension) config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := decode(path, data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)

	return cfg, nil
}

func decode(path string, data []byte, v any) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, v)
	}
	return json.Unmarshal(data, v)
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Events != "" {
		c.Events = flags.Events
	}
	if flags.Project != "" {
		c.Project = flags.Project
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}
	if flags.Radius > 0 {
		c.Brush.Radius = flags.Radius
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	if c.Project == "" {
		c.Project = "paint.json"
	}
	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	c.Events = c.abs(c.Events)
	c.Project = c.abs(c.Project)
	c.OutputDir = c.abs(c.OutputDir)

	// Scene defaults
	if len(c.Volumes) == 0 {
		c.Volumes = []Volume{{Name: "plane", Mesh: meshgen.Params{Kind: "plane"}}}
	}
	for i := range c.Volumes {
		if c.Volumes[i].Name == "" {
			c.Volumes[i].Name = fmt.Sprintf("volume%d", i)
		}
	}
	if len(c.Views) == 0 {
		c.Views = []View{{Name: "default", Azimuth: -60, Elevation: 35}}
	}
	for i := range c.Views {
		if c.Views[i].Name == "" {
			c.Views[i].Name = fmt.Sprintf("view%d", i)
		}
	}
	if c.Brush.Radius <= 0 {
		c.Brush.Radius = painter.DefaultCursorRadius
	}
	if c.Brush.MinEdge <= 0 {
		c.Brush.MinEdge = selector.DefaultMinEdgeLength
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Events    string
	Project   string
	OutputDir string
	Format    string
	Size      int
	Radius    float64
	Workers   int
}
