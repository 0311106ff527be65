package config

import (
	"fmt"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/meshgen"
	"mesh-painter/internal/painter"
	"mesh-painter/internal/selector"
)

// cameraMargin is the border in pixels left by fitted cameras.
const cameraMargin = 16

// BuildVolumes generates each volume's base mesh and wraps it in a fresh
// selector configured from the brush.
func (c Config) BuildVolumes() ([]painter.Volume, error) {
	opts, err := c.Brush.SelectorOptions()
	if err != nil {
		return nil, err
	}
	out := make([]painter.Volume, 0, len(c.Volumes))
	for _, v := range c.Volumes {
		m, err := meshgen.Build(v.Mesh)
		if err != nil {
			return nil, fmt.Errorf("config: volume %q: %w", v.Name, err)
		}
		sel, err := selector.New(m.Vertices, m.Triangles, opts)
		if err != nil {
			return nil, fmt.Errorf("config: volume %q: %w", v.Name, err)
		}
		out = append(out, painter.Volume{Name: v.Name, Selector: sel, Matrix: v.Transform.Matrix()})
	}
	return out, nil
}

// WorldPoints returns the leaf corners of every volume in world space.
func WorldPoints(instance mathutil.Mat4, vols []painter.Volume) []mathutil.Vec3 {
	var pts []mathutil.Vec3
	for _, v := range vols {
		trafo := mathutil.Mat4Mul(instance, v.Matrix)
		for _, l := range v.Selector.LeafSnapshot() {
			for _, p := range l.Verts {
				pts = append(pts, trafo.MulPoint(p))
			}
		}
	}
	return pts
}

// PaintCamera is the configured camera, or the first view fitted to pts
// when none is set.
func (c Config) PaintCamera(pts []mathutil.Vec3) camera.Camera {
	if c.Camera.Width > 0 && c.Camera.Height > 0 {
		return c.Camera
	}
	v := View{Elevation: 90}
	if len(c.Views) > 0 {
		v = c.Views[0]
	}
	return v.Camera(pts, c.RenderSize, cameraMargin)
}

// NewPainter builds the volumes and a painter over them with the brush
// radius applied.
func (c Config) NewPainter() (*painter.Painter, error) {
	vols, err := c.BuildVolumes()
	if err != nil {
		return nil, err
	}
	inst := c.Instance.Matrix()
	p := painter.New(c.Painter, c.PaintCamera(WorldPoints(inst, vols)), inst, vols)
	p.SetCursorRadius(c.Brush.Radius)
	return p, nil
}
