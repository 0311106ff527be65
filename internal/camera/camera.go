// Package camera maps between world space and screen pixels for both
// orthographic and perspective views.
package camera

import (
	"math"

	"mesh-painter/internal/mathutil"
)

// DefaultFOV is the vertical field of view in degrees for perspective views.
const DefaultFOV = 35.0

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin mathutil.Vec3
	Dir    mathutil.Vec3
}

// At returns Origin + t*Dir.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Camera looks from Position toward Target. Screen y grows downward.
type Camera struct {
	Position    mathutil.Vec3 `json:"position" toml:"position"`
	Target      mathutil.Vec3 `json:"target" toml:"target"`
	Up          mathutil.Vec3 `json:"up" toml:"up"`
	Perspective bool          `json:"perspective,omitempty" toml:"perspective,omitempty"`
	FOV         float64       `json:"fov,omitempty" toml:"fov,omitempty"`
	// Zoom is pixels per world unit for orthographic views.
	Zoom   float64 `json:"zoom,omitempty" toml:"zoom,omitempty"`
	Width  int     `json:"width" toml:"width"`
	Height int     `json:"height" toml:"height"`
}

// Orbit places a camera on a Z-up sphere around target. Azimuth is
// measured from +X toward +Y, elevation from the XY plane, both in degrees.
func Orbit(target mathutil.Vec3, distance, azimuth, elevation float64, w, h int) Camera {
	az := mathutil.Deg2Rad(azimuth)
	el := mathutil.Deg2Rad(elevation)
	off := mathutil.Vec3{
		math.Cos(el) * math.Cos(az),
		math.Cos(el) * math.Sin(az),
		math.Sin(el),
	}.Scale(distance)
	up := mathutil.Vec3{0, 0, 1}
	if math.Abs(math.Sin(el)) > 0.999 {
		up = mathutil.Vec3{0, 1, 0}
	}
	return Camera{
		Position: target.Add(off),
		Target:   target,
		Up:       up,
		Zoom:     1,
		Width:    w,
		Height:   h,
	}
}

// Basis returns the right, up and forward unit vectors of the view.
func (c Camera) Basis() (right, up, forward mathutil.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	if forward == (mathutil.Vec3{}) {
		forward = mathutil.Vec3{0, 0, -1}
	}
	worldUp := c.Up
	if worldUp == (mathutil.Vec3{}) {
		worldUp = mathutil.Vec3{0, 0, 1}
	}
	right = forward.Cross(worldUp).Normalize()
	if right == (mathutil.Vec3{}) {
		right = forward.Cross(mathutil.Vec3{0, 1, 0}).Normalize()
	}
	up = right.Cross(forward)
	return right, up, forward
}

// Forward is the unit viewing direction.
func (c Camera) Forward() mathutil.Vec3 {
	_, _, f := c.Basis()
	return f
}

func (c Camera) focal() float64 {
	fov := c.FOV
	if fov <= 0 {
		fov = DefaultFOV
	}
	return float64(c.Height) / 2 / math.Tan(mathutil.Deg2Rad(fov/2))
}

// PixelsPerUnit is the screen size of one world unit at the target.
func (c Camera) PixelsPerUnit() float64 {
	if !c.Perspective {
		return c.Zoom
	}
	d := c.Target.Sub(c.Position).Len()
	if d < 1e-9 {
		return c.focal()
	}
	return c.focal() / d
}

// Project maps a world point to screen coordinates. depth is the distance
// in front of the camera along the view axis; points behind a perspective
// camera report ok=false.
func (c Camera) Project(p mathutil.Vec3) (x, y, depth float64, ok bool) {
	r, u, f := c.Basis()
	d := p.Sub(c.Position)
	cx, cy, cz := d.Dot(r), d.Dot(u), d.Dot(f)
	hw, hh := float64(c.Width)/2, float64(c.Height)/2
	if c.Perspective {
		if cz <= 1e-9 {
			return 0, 0, cz, false
		}
		k := c.focal() / cz
		return hw + cx*k, hh - cy*k, cz, true
	}
	return hw + cx*c.Zoom, hh - cy*c.Zoom, cz, true
}

// Unproject returns the world ray through screen point (x, y).
func (c Camera) Unproject(x, y float64) Ray {
	r, u, f := c.Basis()
	hw, hh := float64(c.Width)/2, float64(c.Height)/2
	if c.Perspective {
		k := 1 / c.focal()
		dir := f.Add(r.Scale((x - hw) * k)).Add(u.Scale((hh - y) * k))
		return Ray{Origin: c.Position, Dir: dir.Normalize()}
	}
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	o := c.Position.Add(r.Scale((x - hw) / zoom)).Add(u.Scale((hh - y) / zoom))
	return Ray{Origin: o, Dir: f}
}

// Scaled returns the same view rendered k times larger, for supersampling.
func (c Camera) Scaled(k int) Camera {
	c.Width *= k
	c.Height *= k
	c.Zoom *= float64(k)
	return c
}

// Fit re-aims the camera at the centre of pts and, for orthographic views,
// picks the zoom that frames them with margin pixels on each side. The
// viewing direction is kept; a perspective camera is moved along it until
// the points fit the field of view.
func (c *Camera) Fit(pts []mathutil.Vec3, margin int) {
	if len(pts) == 0 {
		return
	}
	r, u, f := c.Basis()
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	center := mathutil.Midpoint(lo, hi)

	var spanX, spanY, radius float64
	for _, p := range pts {
		d := p.Sub(center)
		spanX = math.Max(spanX, math.Abs(d.Dot(r)))
		spanY = math.Max(spanY, math.Abs(d.Dot(u)))
		radius = math.Max(radius, d.Len())
	}
	spanX = math.Max(spanX, 0.001)
	spanY = math.Max(spanY, 0.001)

	dist := c.Target.Sub(c.Position).Len()
	if dist < 1e-9 {
		dist = 1
	}
	c.Target = center
	availW := math.Max(float64(c.Width-2*margin), 1) / 2
	availH := math.Max(float64(c.Height-2*margin), 1) / 2
	if c.Perspective {
		need := math.Max(spanX/availW, spanY/availH) * c.focal()
		dist = math.Max(need+radius, radius*1.01+1e-3)
		c.Position = center.Sub(f.Scale(dist))
		return
	}
	c.Zoom = math.Min(availW/spanX, availH/spanY)
	c.Position = center.Sub(f.Scale(math.Max(dist, 2*radius+1)))
}

// ProjectAll projects a batch of points for rasterization. pz is negated
// depth so that larger values are nearer, the z-buffer convention of the
// rasterizer.
func (c Camera) ProjectAll(pts []mathutil.Vec3) (px, py, pz []float64) {
	n := len(pts)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)
	for i, p := range pts {
		x, y, d, ok := c.Project(p)
		if !ok {
			d = math.Inf(1)
		}
		px[i], py[i], pz[i] = x, y, -d
	}
	return px, py, pz
}
