package geom

import "mesh-painter/internal/mathutil"

// ClipPlane is the half-space boundary n·p + Offset = 0. Points on the
// positive side (n·p + Offset > 0) are clipped away.
type ClipPlane struct {
	Normal mathutil.Vec3
	Offset float64
}

// Distance returns the signed distance of p to the plane for a unit normal.
func (c ClipPlane) Distance(p mathutil.Vec3) float64 {
	return c.Normal.Dot(p) + c.Offset
}

// IsPointClipped reports whether p lies in the removed half-space.
func (c ClipPlane) IsPointClipped(p mathutil.Vec3) bool {
	return c.Distance(p) > 0
}

// Transformed returns the plane expressed in the coordinates of a space
// whose points map to the plane's space through m.
func (c ClipPlane) Transformed(m mathutil.Mat4) ClipPlane {
	// n·(M p) + d = (Lᵀ n)·p + (n·t + d)
	lin := m.Linear()
	return ClipPlane{
		Normal: lin.Transpose().MulVec3(c.Normal),
		Offset: c.Normal.Dot(m.Translation()) + c.Offset,
	}
}

// ClipTriangle returns the part of triangle abc on the kept side of the
// plane as zero, one or two triangles with abc's winding.
func (c ClipPlane) ClipTriangle(a, b, cc mathutil.Vec3) [][3]mathutil.Vec3 {
	in := [3]mathutil.Vec3{a, b, cc}
	var d [3]float64
	kept := 0
	for i, p := range in {
		d[i] = c.Distance(p)
		if d[i] <= 0 {
			kept++
		}
	}
	switch kept {
	case 0:
		return nil
	case 3:
		return [][3]mathutil.Vec3{in}
	}

	poly := make([]mathutil.Vec3, 0, 4)
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		if d[i] <= 0 {
			poly = append(poly, in[i])
		}
		if (d[i] <= 0) != (d[j] <= 0) {
			poly = append(poly, in[i].Lerp(in[j], d[i]/(d[i]-d[j])))
		}
	}
	out := make([][3]mathutil.Vec3, 0, 2)
	for k := 1; k+1 < len(poly); k++ {
		out = append(out, [3]mathutil.Vec3{poly[0], poly[k], poly[k+1]})
	}
	return out
}
