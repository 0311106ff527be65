// Package geom holds the pure geometric predicates used by the paint engine
// and the ray caster. Nothing here allocates or panics; misses are reported
// through boolean sentinels.
package geom

import (
	"math"

	"mesh-painter/internal/mathutil"
)

// eps is the tolerance for parallel rays and degenerate triangles.
const eps = 1e-12

// Hit describes a ray–triangle intersection.
type Hit struct {
	Point  mathutil.Vec3
	Normal mathutil.Vec3 // unit facet normal, CCW winding
	T      float64       // distance along the ray in units of |dir|
	U, V   float64       // barycentric weights of b and c
}

// RayTriangle intersects the ray orig + t*dir (t >= 0) with triangle abc
// using the Möller–Trumbore algorithm. Both faces are hit.
func RayTriangle(orig, dir, a, b, c mathutil.Vec3) (Hit, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return Hit{}, false
	}
	inv := 1 / det
	s := orig.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return Hit{}, false
	}
	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return Hit{}, false
	}
	return Hit{
		Point:  orig.Add(dir.Scale(t)),
		Normal: e1.Cross(e2).Normalize(),
		T:      t,
		U:      u,
		V:      v,
	}, true
}

// RayTriangleClipped is RayTriangle followed by a clipping test. clipped is
// true when the ray reaches the triangle but the hit lies in the removed
// half-space. A nil plane never clips.
func RayTriangleClipped(orig, dir, a, b, c mathutil.Vec3, plane *ClipPlane) (hit Hit, ok, clipped bool) {
	hit, ok = RayTriangle(orig, dir, a, b, c)
	if !ok {
		return Hit{}, false, false
	}
	if plane != nil && plane.IsPointClipped(hit.Point) {
		return hit, false, true
	}
	return hit, true, false
}

// ProjectToPlane projects p onto the plane of triangle abc. dist is the
// signed distance of p from the plane along the CCW normal. A degenerate
// triangle returns p itself and ok=false.
func ProjectToPlane(p, a, b, c mathutil.Vec3) (proj mathutil.Vec3, dist float64, ok bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < eps {
		return p, 0, false
	}
	n = n.Scale(1 / l)
	dist = p.Sub(a).Dot(n)
	return p.Sub(n.Scale(dist)), dist, true
}

// PointInTriangle reports whether p, assumed to lie in the plane of abc,
// falls inside the triangle (boundary included).
func PointInTriangle(p, a, b, c mathutil.Vec3) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	dot00 := v0.Dot(v0)
	dot01 := v0.Dot(v1)
	dot02 := v0.Dot(v2)
	dot11 := v1.Dot(v1)
	dot12 := v1.Dot(v2)

	denom := dot00*dot11 - dot01*dot01
	if math.Abs(denom) < eps {
		return false
	}
	inv := 1 / denom
	u := (dot11*dot02 - dot01*dot12) * inv
	v := (dot00*dot12 - dot01*dot02) * inv
	const slack = 1e-9
	return u >= -slack && v >= -slack && u+v <= 1+slack
}

// SegmentDistSq returns the squared distance from p to the segment ab.
func SegmentDistSq(p, a, b mathutil.Vec3) float64 {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l < eps {
		return p.DistSq(a)
	}
	t := p.Sub(a).Dot(ab) / l
	t = clamp01(t)
	return p.DistSq(a.Add(ab.Scale(t)))
}

// SegmentSegmentDistSq returns the squared distance between segments p0p1
// and q0q1 (closest points computed as in Ericson, Real-Time Collision
// Detection, 5.1.9).
func SegmentSegmentDistSq(p0, p1, q0, q1 mathutil.Vec3) float64 {
	d1 := p1.Sub(p0)
	d2 := q1.Sub(q0)
	r := p0.Sub(q0)
	a := d1.LenSq()
	e := d2.LenSq()
	f := d2.Dot(r)

	var s, t float64
	switch {
	case a < eps && e < eps:
		return p0.DistSq(q0)
	case a < eps:
		t = clamp01(f / e)
	default:
		c := d1.Dot(r)
		if e < eps {
			s = clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > eps {
				s = clamp01((b*f - c*e) / denom)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = clamp01((b - c) / a)
			}
		}
	}
	c1 := p0.Add(d1.Scale(s))
	c2 := q0.Add(d2.Scale(t))
	return c1.DistSq(c2)
}

// LineDistSq returns the squared distance from p to the infinite line
// through orig with direction dir.
func LineDistSq(p, orig, dir mathutil.Vec3) float64 {
	l := dir.LenSq()
	if l < eps {
		return p.DistSq(orig)
	}
	w := p.Sub(orig)
	t := w.Dot(dir) / l
	return w.Sub(dir.Scale(t)).LenSq()
}

// Normal returns the unit CCW normal of abc, or zero for a degenerate triangle.
func Normal(a, b, c mathutil.Vec3) mathutil.Vec3 {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Area returns the area of triangle abc.
func Area(a, b, c mathutil.Vec3) float64 {
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Len()
}

// Centroid returns the barycenter of abc.
func Centroid(a, b, c mathutil.Vec3) mathutil.Vec3 {
	return a.Add(b).Add(c).Scale(1.0 / 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
