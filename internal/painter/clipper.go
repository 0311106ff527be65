package painter

import (
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
)

// ClipStep is the clipper movement per Ctrl+wheel notch.
const ClipStep = 0.01

// Clipper is a view-aligned cutting plane through the instance bounding
// sphere. Position 0 disables it; position 1 clips the whole sphere. The
// camera-facing side of the plane is removed.
type Clipper struct {
	position float64
	normal   mathutil.Vec3
	center   mathutil.Vec3
	radius   float64
	plane    *geom.ClipPlane
}

// NewClipper creates an inactive clipper for a bounding sphere.
func NewClipper(center mathutil.Vec3, radius float64) *Clipper {
	return &Clipper{center: center, radius: radius}
}

// Position is the current clip ratio in [0, 1].
func (c *Clipper) Position() float64 { return c.position }

// Normal points at the removed side of the plane.
func (c *Clipper) Normal() mathutil.Vec3 { return c.normal }

// SetPosition moves the plane. A negative pos keeps the current ratio and
// only re-aims. Unless keepNormal is set (and a plane exists) the normal
// is taken from toCamera, the unit direction pointing at the viewer.
func (c *Clipper) SetPosition(pos float64, keepNormal bool, toCamera mathutil.Vec3) {
	normal := toCamera
	if keepNormal && c.plane != nil {
		normal = c.normal
	}
	if pos < 0 {
		pos = c.position
	}
	c.position = min(max(pos, 0), 1)
	c.normal = normal
	c.plane = &geom.ClipPlane{
		Normal: normal,
		Offset: -normal.Dot(c.center) - c.radius + 2*c.radius*c.position,
	}
}

// Plane returns the world-space clipping plane, nil while inactive.
func (c *Clipper) Plane() *geom.ClipPlane {
	if c.position == 0 || c.plane == nil {
		return nil
	}
	p := *c.plane
	return &p
}

// boundingSphere returns the centre of the bounding box of pts and the
// largest distance from it.
func boundingSphere(pts []mathutil.Vec3) (mathutil.Vec3, float64) {
	if len(pts) == 0 {
		return mathutil.Vec3{}, 0
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	c := mathutil.Midpoint(lo, hi)
	var r float64
	for _, p := range pts {
		r = max(r, p.Sub(c).Len())
	}
	return c, r
}
