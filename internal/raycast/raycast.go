// Package raycast intersects camera rays with the current leaf triangles of
// a paintable volume.
package raycast

import (
	"math"

	"mesh-painter/internal/camera"
	"mesh-painter/internal/geom"
	"mesh-painter/internal/mathutil"
	"mesh-painter/internal/selector"
)

// Hit is a ray–mesh intersection. Point, Normal and Source are in mesh
// coordinates; World and Distance are in world space.
type Hit struct {
	Point    mathutil.Vec3
	Normal   mathutil.Vec3
	Facet    int // leaf triangle id, valid until the next selector mutation
	World    mathutil.Vec3
	Distance float64
}

// MeshRaycaster casts rays against one selector's leaves.
type MeshRaycaster struct {
	sel *selector.Selector
}

func New(sel *selector.Selector) *MeshRaycaster {
	return &MeshRaycaster{sel: sel}
}

// Unproject casts ray (world space) against the mesh placed by trafo and
// returns the nearest hit that the clipping plane (world space, nil for
// none) does not remove. clipped reports that the ray met the mesh only
// inside the removed half-space.
func (m *MeshRaycaster) Unproject(ray camera.Ray, trafo mathutil.Mat4, clip *geom.ClipPlane) (hit Hit, ok, clipped bool) {
	inv := trafo.AffineInverse()
	orig := inv.MulPoint(ray.Origin)
	dir := inv.MulDir(ray.Dir)

	var local *geom.ClipPlane
	if clip != nil {
		p := clip.Transformed(trafo)
		local = &p
	}

	best := math.Inf(1)
	for id := range m.sel.AllLeaves() {
		p := m.sel.Positions(id)
		h, hitOK, wasClipped := geom.RayTriangleClipped(orig, dir, p[0], p[1], p[2], local)
		if wasClipped {
			clipped = true
			continue
		}
		if !hitOK || h.T >= best {
			continue
		}
		best = h.T
		hit = Hit{Point: h.Point, Normal: h.Normal, Facet: id}
		ok = true
	}
	if !ok {
		return Hit{}, false, clipped
	}
	hit.World = trafo.MulPoint(hit.Point)
	hit.Distance = hit.World.Sub(ray.Origin).Len()
	return hit, true, false
}

// Closest casts ray against several volumes and picks the hit nearest the
// ray origin. volume is -1 when nothing was hit; clipped reports that some
// volume was met only behind the clipping plane.
func Closest(ray camera.Ray, casters []*MeshRaycaster, trafos []mathutil.Mat4, clip *geom.ClipPlane) (hit Hit, volume int, clipped bool) {
	volume = -1
	best := math.Inf(1)
	for i, c := range casters {
		h, ok, cl := c.Unproject(ray, trafos[i], clip)
		if cl {
			clipped = true
		}
		if ok && h.Distance < best {
			best = h.Distance
			hit = h
			volume = i
		}
	}
	return hit, volume, clipped
}
